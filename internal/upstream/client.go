// Package upstream fetches full order detail from the provider when a
// webhook notification carries only a reference id.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client posts webhook-style action requests to the provider URL.
type Client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

func New(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:     url,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

type detailRequest struct {
	Action    string `json:"action"`
	OrderID   string `json:"order_id"`
	Timestamp string `json:"timestamp"`
}

// FetchOrderDetail pulls the full order document for a reference id. The
// call carries a bounded timeout; any failure is retryable from the caller's
// point of view and nothing is stored.
func (c *Client) FetchOrderDetail(ctx context.Context, orderID string) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(detailRequest{
		Action:    "order_details",
		OrderID:   orderID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("encode detail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build detail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("detail request: upstream status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read detail response: %w", err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode detail response: %w", err)
	}
	return doc, nil
}
