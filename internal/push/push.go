// Package push provides the multicast push-gateway client. The gateway is an
// external HTTP service that fans a single message out to a list of device
// tokens and reports per-batch success and failure counts.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Message is one multicast push: a shared title/body plus a data payload,
// delivered to every token in the list.
type Message struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]string
}

// Result reports the gateway's delivery outcome for one multicast.
type Result struct {
	SuccessCount int `json:"success"`
	FailureCount int `json:"failure"`
}

// request is the wire format the gateway accepts.
type request struct {
	Tokens       []string          `json:"registration_ids"`
	Notification notification      `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Client sends multicast pushes to the configured gateway endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
}

// NewClient creates a push-gateway client.
func NewClient(url, apiKey string) (*Client, error) {
	if url == "" {
		return nil, fmt.Errorf("push gateway URL cannot be empty")
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		url:    url,
		apiKey: apiKey,
	}, nil
}

// SendMulticast sends one multicast push to every token in the message.
// Partial failures are reported in the Result, not as an error; an error
// means the gateway call itself failed.
func (c *Client) SendMulticast(ctx context.Context, msg *Message) (*Result, error) {
	if len(msg.Tokens) == 0 {
		return nil, fmt.Errorf("token list cannot be empty")
	}

	payload := request{
		Tokens: msg.Tokens,
		Notification: notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "key="+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call push gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("push gateway returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode push gateway response: %w", err)
	}

	slog.Debug("Push gateway multicast sent",
		"tokens", len(msg.Tokens),
		"success", result.SuccessCount,
		"failure", result.FailureCount,
	)

	return &result, nil
}
