package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test,
// mirroring t.Chdir which requires Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestHandleMessage_WritesLogLine(t *testing.T) {
	chdir(t, t.TempDir())

	ev := CheckoutCompletedEvent{
		UsageID:          11,
		SeatID:           3,
		SeatName:         "free",
		MemberID:         7,
		MemberRole:       "user",
		UsedMinutes:      95,
		RemainingMinutes: 25,
		AchievedTodoIDs:  []uint64{2},
		CheckedOutAt:     "2026-09-01T10:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "usage.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "usage_id=11")
	assert.Contains(t, line, "member_id=7")
	assert.Contains(t, line, "used=95min")
	assert.Contains(t, line, "remaining=25min")
	assert.Contains(t, line, "achieved_todos=1")
}

func TestHandleMessage_RejectsBadJSON(t *testing.T) {
	chdir(t, t.TempDir())
	assert.Error(t, handleMessage([]byte("{not json")))
}

func TestHandleMessage_AppendsAcrossMessages(t *testing.T) {
	chdir(t, t.TempDir())

	for i := 0; i < 2; i++ {
		body, err := json.Marshal(CheckoutCompletedEvent{UsageID: uint64(i + 1)})
		require.NoError(t, err)
		require.NoError(t, handleMessage(body))
	}

	data, err := os.ReadFile(filepath.Join("logs", "usage.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "usage_id=1")
	assert.Contains(t, string(data), "usage_id=2")
}
