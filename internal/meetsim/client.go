package meetsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/okian/liftboard/internal/domain/types"
)

// Submission outcomes for one event.
const (
	outcomeAccepted  = "accepted"
	outcomeDuplicate = "duplicate"
	outcomeBusy      = "busy"
)

// Client is a small JSON client for the liftboard HTTP API.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for baseURL. A nil hc uses http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{base: baseURL, http: hc}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal request body: %w", err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, bytes.TrimSpace(data))
	}
	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp.StatusCode, nil
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	return nil
}

// CreateMeet creates a meet and returns it with its server id.
func (c *Client) CreateMeet(ctx context.Context, in types.MeetInput) (types.Meet, error) {
	var out types.Meet
	_, err := c.do(ctx, http.MethodPost, "/meets", in, &out)
	return out, err
}

// AddAthlete enters an athlete and returns it with its server id.
func (c *Client) AddAthlete(ctx context.Context, meetID string, in types.AthleteInput) (types.Athlete, error) {
	var out types.Athlete
	_, err := c.do(ctx, http.MethodPost, "/meets/"+url.PathEscape(meetID)+"/athletes", in, &out)
	return out, err
}

// PostEvent submits one table event and reports how the server took it.
func (c *Client) PostEvent(ctx context.Context, meetID string, in types.EventInput) (string, error) {
	status, err := c.do(ctx, http.MethodPost, "/meets/"+url.PathEscape(meetID)+"/events", in, nil)
	switch {
	case status == http.StatusTooManyRequests:
		return outcomeBusy, nil
	case err != nil:
		return "", err
	case status == http.StatusOK:
		return outcomeDuplicate, nil
	case status == http.StatusAccepted:
		return outcomeAccepted, nil
	default:
		return "", fmt.Errorf("%w: post event: %d", ErrUnexpectedStatus, status)
	}
}

// Leaderboard fetches the ranked board for a view and metric.
func (c *Client) Leaderboard(ctx context.Context, meetID, view, metric string) (types.Leaderboard, error) {
	q := url.Values{}
	q.Set("view", view)
	q.Set("metric", metric)
	var out types.Leaderboard
	_, err := c.do(ctx, http.MethodGet, "/meets/"+url.PathEscape(meetID)+"/leaderboard?"+q.Encode(), nil, &out)
	return out, err
}

// DeleteMeet removes a meet.
func (c *Client) DeleteMeet(ctx context.Context, meetID string) error {
	_, err := c.do(ctx, http.MethodDelete, "/meets/"+url.PathEscape(meetID), nil, nil)
	return err
}
