package mailbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nikolaef43/brenner-bot-sub013/internal/models"
)

// HTTPClient talks to the remote mailbox service over its JSON API.
type HTTPClient struct {
	base  string
	token string
	http  *http.Client
}

// NewHTTPClient creates a client for the mailbox service at baseURL.
// token, when non-empty, is sent as a Bearer credential.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		base:  baseURL,
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// ListMessages fetches GET {base}/threads/{id}/messages.
func (c *HTTPClient) ListMessages(ctx context.Context, threadID string) ([]models.Message, error) {
	u := fmt.Sprintf("%s/threads/%s/messages", c.base, url.PathEscape(threadID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("mailbox: build request: %w", err)
	}
	var out struct {
		Messages []models.Message `json:"messages"`
	}
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// Send posts POST {base}/messages.
func (c *HTTPClient) Send(ctx context.Context, sr SendRequest) (int64, error) {
	payload, err := json.Marshal(sr)
	if err != nil {
		return 0, fmt.Errorf("mailbox: marshal send: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/messages", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("mailbox: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	var out struct {
		ID int64 `json:"id"`
	}
	if err := c.do(req, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mailbox: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mailbox: %s %s: status %d: %s", req.Method, req.URL.Path, resp.StatusCode, body)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("mailbox: decode response: %w", err)
	}
	return nil
}
