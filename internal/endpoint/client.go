package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jetsetgo/shopfloor-kiosk/internal/config"
	"github.com/jetsetgo/shopfloor-kiosk/internal/jobs"
)

// ErrTransport wraps failures to reach the endpoint or read its answer
var ErrTransport = errors.New("endpoint unreachable")

const errorPrefix = "ERROR:"

// RemoteError is an "ERROR: ..." answer from the spreadsheet
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Duplicate reports whether the spreadsheet rejected the job as already open
func (e *RemoteError) Duplicate() bool {
	return strings.Contains(e.Message, "ซ้ำกัน") ||
		strings.Contains(e.Message, "duplicate") ||
		strings.Contains(e.Message, "DUPLICATE")
}

// Client posts kiosk actions to the spreadsheet web app
type Client struct {
	url    string
	client *http.Client
}

// NewClient creates a new endpoint client
func NewClient(cfg config.EndpointConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
	}
}

// Submit sends a payload and returns the trimmed text answer. An answer that
// starts with ERROR: is returned as *RemoteError.
func (c *Client) Submit(ctx context.Context, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}

	// text/plain keeps the request "simple" for the web app's CORS handling
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: endpoint returned %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, errorPrefix) {
		return "", &RemoteError{Message: strings.Replace(text, "ERROR: ", "", 1)}
	}
	return text, nil
}

type openJobsResponse struct {
	Jobs []jobs.Job `json:"jobs"`
}

// FetchOpenJobs asks the spreadsheet for the open jobs of the scanned part.
// Closed jobs are dropped from the answer.
func (c *Client) FetchOpenJobs(ctx context.Context, scan map[string]any) ([]jobs.Job, error) {
	payload := make(map[string]any, len(scan)+1)
	for k, v := range scan {
		payload[k] = v
	}
	payload["action"] = "GET_OPEN_JOBS"

	text, err := c.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	var list []jobs.Job
	if strings.HasPrefix(text, "[") {
		err = json.Unmarshal([]byte(text), &list)
	} else {
		var resp openJobsResponse
		err = json.Unmarshal([]byte(text), &resp)
		list = resp.Jobs
	}
	if err != nil {
		return nil, fmt.Errorf("parse open jobs: %w", err)
	}

	open := make([]jobs.Job, 0, len(list))
	for _, j := range list {
		if j.Status.IsOpen() {
			open = append(open, j)
		}
	}
	return open, nil
}
