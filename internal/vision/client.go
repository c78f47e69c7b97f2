// Package vision talks to the camera collaborator that watches seats
// for left-behind items.  The collaborator is best effort: any
// transport failure, bad payload or timeout degrades to "nothing
// detected" so check-out never blocks on the camera rig.
package vision

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CaptureResult is what the settlement flow consumes.  Detected is
// authoritative; ImagePath and Items are informational and may be
// empty even when Detected is true (image save failures are not
// escalated).
type CaptureResult struct {
	Detected  bool     `json:"detected"`
	ImagePath string   `json:"image_path,omitempty"`
	Items     []string `json:"items,omitempty"`
	Message   string   `json:"message"`
}

// Client calls the camera HTTP API.  A zero BaseURL disables the
// collaborator entirely and every capture reports clean.
type Client struct {
	baseURL    string
	captureDir string
	http       *http.Client
	pollEvery  time.Duration
	pollMax    int
}

func NewClient(baseURL, captureDir string) *Client {
	return &Client{
		baseURL:    baseURL,
		captureDir: captureDir,
		http:       &http.Client{Timeout: 5 * time.Second},
		pollEvery:  300 * time.Millisecond,
		pollMax:    10,
	}
}

// Enabled reports whether a camera endpoint is configured.
func (c *Client) Enabled() bool { return c != nil && c.baseURL != "" }

type trackRequest struct {
	SeatID  uint64 `json:"seat_id"`
	UsageID uint64 `json:"usage_id"`
}

// NotifyCheckIn tells the camera to start tracking a seat.  Errors
// are returned for logging only; callers must not fail check-in on
// them.
func (c *Client) NotifyCheckIn(ctx context.Context, seatID, usageID uint64) error {
	if !c.Enabled() {
		return nil
	}
	body, _ := json.Marshal(trackRequest{SeatID: seatID, UsageID: usageID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/camera/checkin", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("camera checkin: status %d", res.StatusCode)
	}
	return nil
}

type checkoutResponse struct {
	JobID uint64 `json:"job_id"`
}

type resultEnvelope struct {
	Result struct {
		Done        bool     `json:"done"`
		Items       []string `json:"items"`
		ImageBase64 string   `json:"image_base64"`
	} `json:"result"`
}

// Capture asks the camera to inspect a seat for lost items and polls
// for the verdict.  The zero-value result (clean) is returned on any
// failure path: camera down, bad response, or poll timeout.
func (c *Client) Capture(ctx context.Context, seatID, usageID uint64) CaptureResult {
	if !c.Enabled() {
		return CaptureResult{Message: "camera disabled"}
	}

	body, _ := json.Marshal(trackRequest{SeatID: seatID, UsageID: usageID})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/camera/checkout", bytes.NewReader(body))
	if err != nil {
		return CaptureResult{Message: "camera error"}
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.http.Do(req)
	if err != nil {
		return CaptureResult{Message: "camera unreachable"}
	}
	var start checkoutResponse
	decodeErr := json.NewDecoder(res.Body).Decode(&start)
	res.Body.Close()
	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
		return CaptureResult{Message: fmt.Sprintf("camera status %d", res.StatusCode)}
	}
	jobID := usageID
	if decodeErr == nil && start.JobID != 0 {
		jobID = start.JobID
	}

	for i := 0; i < c.pollMax; i++ {
		select {
		case <-ctx.Done():
			return CaptureResult{Message: "camera timeout"}
		case <-time.After(c.pollEvery):
		}

		env, ok := c.pollResult(ctx, jobID)
		if !ok || !env.Result.Done {
			continue
		}
		if len(env.Result.Items) == 0 {
			return CaptureResult{Message: "clean"}
		}
		path := c.saveImage(env.Result.ImageBase64, seatID, usageID)
		return CaptureResult{
			Detected:  true,
			ImagePath: path,
			Items:     env.Result.Items,
			Message:   "detected",
		}
	}
	return CaptureResult{Message: "camera timeout"}
}

func (c *Client) pollResult(ctx context.Context, jobID uint64) (resultEnvelope, bool) {
	var env resultEnvelope
	url := fmt.Sprintf("%s/camera/lost-item/result/%d", c.baseURL, jobID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return env, false
	}
	res, err := c.http.Do(req)
	if err != nil {
		return env, false
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return env, false
	}
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return env, false
	}
	return env, true
}

// saveImage decodes the capture and writes it under the capture
// directory.  Returns the web-visible path, or "" when saving failed
// or there was no image.
func (c *Client) saveImage(imageB64 string, seatID, usageID uint64) string {
	if imageB64 == "" || c.captureDir == "" {
		return ""
	}
	raw, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return ""
	}
	if err := os.MkdirAll(c.captureDir, 0o755); err != nil {
		return ""
	}
	name := fmt.Sprintf("seat%d_usage%d_%s.jpg", seatID, usageID, uuid.NewString())
	full := filepath.Join(c.captureDir, name)
	if err := os.WriteFile(full, raw, 0o644); err != nil {
		return ""
	}
	return "/" + filepath.ToSlash(filepath.Join(filepath.Base(c.captureDir), name))
}
