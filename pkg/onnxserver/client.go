// Package onnxserver implements the MaskPredictor contract against an
// ONNX-runtime segmentation server speaking a JSON HTTP API.
package onnxserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/menta2k/maskvec/pkg/types"
)

// Client talks to a segmentation server over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// segmentRequest is the wire form of one refinement step
type segmentRequest struct {
	SessionID    string        `json:"session_id"`
	StepID       int           `json:"step_id"`
	Clicks       []types.Click `json:"clicks"`
	PreviousMask *maskPayload  `json:"previous_mask,omitempty"`
	UploadScale  float64       `json:"upload_scale"`
	PreviewScale float64       `json:"preview_scale"`
	ImageData    string        `json:"image_data,omitempty"`
}

// maskPayload carries a probability grid over the wire
type maskPayload struct {
	Data   []float64 `json:"data"`
	Width  int       `json:"width"`
	Height int       `json:"height"`
}

// segmentResponse is the server's answer for one step
type segmentResponse struct {
	SessionID string       `json:"session_id"`
	StepID    int          `json:"step_id"`
	Mask      *maskPayload `json:"mask"`
}

// NewClient creates a client for the given server URL. An empty URL
// defaults to a local server.
func NewClient(serverURL string) (*Client, error) {
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	return &Client{
		baseURL: strings.TrimSuffix(serverURL, "/"),
		httpClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
	}, nil
}

// Predict sends one refinement step to the server and returns the predicted
// grid. A default deadline is applied when the context has none; the server
// may hold a request while it computes the image embedding on the first
// step of a session.
func (c *Client) Predict(ctx context.Context, req *types.ModelRequest) (*types.Grid, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}

	wire := segmentRequest{
		SessionID:    req.SessionID.String(),
		StepID:       req.StepID,
		Clicks:       req.Clicks,
		UploadScale:  req.Profile.UploadScale,
		PreviewScale: req.Profile.PreviewScale,
		ImageData:    req.ImageData,
	}
	if req.PreviousMask != nil {
		wire.PreviousMask = &maskPayload{
			Data:   req.PreviousMask.Data,
			Width:  req.PreviousMask.Width,
			Height: req.PreviousMask.Height,
		}
	}

	respBody, err := c.sendRequest(ctx, "/v1/segment", wire)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	var resp segmentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Mask == nil {
		return nil, fmt.Errorf("no mask in response")
	}

	grid, err := types.NewGrid(resp.Mask.Data, resp.Mask.Width, resp.Mask.Height)
	if err != nil {
		return nil, fmt.Errorf("invalid mask in response: %w", err)
	}
	return grid, nil
}

// EndSession releases the server-side embedding state for a session
func (c *Client) EndSession(ctx context.Context, sessionID uuid.UUID) error {
	req, err := http.NewRequestWithContext(ctx, "DELETE", c.baseURL+"/v1/sessions/"+sessionID.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (c *Client) sendRequest(ctx context.Context, endpoint string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	return body, nil
}
