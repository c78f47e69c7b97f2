// Package cache holds the Redis-backed projections served to kiosks.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seatBoardKey = "kiosk:seat_board"

// SeatBoard caches the serialized seat listing shown on the kiosk
// floor map.  The payload is invalidated whenever a check-in or
// check-out mutates seat occupancy, so a few seconds of staleness is
// the worst case between ticks.  A nil Redis client turns every
// operation into a no-op and the kiosk falls back to the database.
type SeatBoard struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeatBoard wires the projection cache.  ttl bounds staleness in
// case an invalidation is lost.
func NewSeatBoard(rdb *redis.Client, ttl time.Duration) *SeatBoard {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SeatBoard{rdb: rdb, ttl: ttl}
}

// Get returns the cached payload and true on a hit.  Any Redis error
// is treated as a miss.
func (s *SeatBoard) Get(ctx context.Context) ([]byte, bool) {
	if s == nil || s.rdb == nil {
		return nil, false
	}
	b, err := s.rdb.Get(ctx, seatBoardKey).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

// Set stores the payload with the configured TTL.  Failures are
// ignored; the next read just misses.
func (s *SeatBoard) Set(ctx context.Context, payload []byte) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Set(ctx, seatBoardKey, payload, s.ttl).Err()
}

// Invalidate drops the cached board after seat occupancy changed.
func (s *SeatBoard) Invalidate(ctx context.Context) {
	if s == nil || s.rdb == nil {
		return
	}
	_ = s.rdb.Del(ctx, seatBoardKey).Err()
}
