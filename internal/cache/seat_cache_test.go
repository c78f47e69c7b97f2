package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"

	"github.com/jmlee-dev/studycafe-backend/internal/cache"
)

func TestSeatBoard_HitAndMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := cache.NewSeatBoard(db, 5*time.Second)
	ctx := context.Background()

	mock.ExpectGet("kiosk:seat_board").RedisNil()
	_, ok := board.Get(ctx)
	assert.False(t, ok)

	payload := []byte(`[{"seat_id":1,"occupied":false}]`)
	mock.ExpectSet("kiosk:seat_board", payload, 5*time.Second).SetVal("OK")
	board.Set(ctx, payload)

	mock.ExpectGet("kiosk:seat_board").SetVal(string(payload))
	got, ok := board.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, payload, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatBoard_Invalidate(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := cache.NewSeatBoard(db, time.Second)
	ctx := context.Background()

	mock.ExpectDel("kiosk:seat_board").SetVal(1)
	board.Invalidate(ctx)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatBoard_NilClientIsNoop(t *testing.T) {
	board := cache.NewSeatBoard(nil, time.Second)
	ctx := context.Background()

	_, ok := board.Get(ctx)
	assert.False(t, ok)
	board.Set(ctx, []byte("x"))
	board.Invalidate(ctx)
}

func TestSeatBoard_RedisErrorIsMiss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	board := cache.NewSeatBoard(db, time.Second)

	mock.ExpectGet("kiosk:seat_board").SetErr(assert.AnError)
	_, ok := board.Get(context.Background())
	assert.False(t, ok)
}
