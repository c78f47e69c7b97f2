package vision_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmlee-dev/studycafe-backend/internal/vision"
)

func TestCapture_DisabledReportsClean(t *testing.T) {
	c := vision.NewClient("", t.TempDir())
	res := c.Capture(context.Background(), 1, 1)
	assert.False(t, res.Detected)
	assert.Equal(t, "camera disabled", res.Message)
}

func TestCapture_CameraDownDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := vision.NewClient(srv.URL, t.TempDir())
	res := c.Capture(context.Background(), 3, 7)
	assert.False(t, res.Detected)
}

func TestCapture_DetectedSavesImage(t *testing.T) {
	img := []byte{0xFF, 0xD8, 0xFF, 0xE0} // jpeg magic, good enough
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]any{"job_id": 7})
	})
	mux.HandleFunc("/camera/lost-item/result/7", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"done":         true,
				"items":        []string{"umbrella"},
				"image_base64": base64.StdEncoding.EncodeToString(img),
			},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	dir := t.TempDir()
	c := vision.NewClient(srv.URL, dir)
	res := c.Capture(context.Background(), 3, 7)

	require.True(t, res.Detected)
	assert.Equal(t, []string{"umbrella"}, res.Items)
	require.NotEmpty(t, res.ImagePath)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	saved, err := os.ReadFile(filepath.Join(dir, files[0].Name()))
	require.NoError(t, err)
	assert.Equal(t, img, saved)
}

func TestCapture_CleanResult(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/checkout", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"job_id": 9})
	})
	mux.HandleFunc("/camera/lost-item/result/9", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"done": true, "items": []string{}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := vision.NewClient(srv.URL, t.TempDir())
	res := c.Capture(context.Background(), 1, 9)
	assert.False(t, res.Detected)
	assert.Equal(t, "clean", res.Message)
}

func TestNotifyCheckIn(t *testing.T) {
	var gotSeat, gotUsage uint64
	mux := http.NewServeMux()
	mux.HandleFunc("/camera/checkin", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var body struct {
			SeatID  uint64 `json:"seat_id"`
			UsageID uint64 `json:"usage_id"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotSeat, gotUsage = body.SeatID, body.UsageID
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := vision.NewClient(srv.URL, t.TempDir())
	err := c.NotifyCheckIn(context.Background(), 12, 34)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), gotSeat)
	assert.Equal(t, uint64(34), gotUsage)
}
