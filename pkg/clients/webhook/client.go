package webhook

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Notifier delivers plain-text notifications.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Client posts {"text": ...} payloads to a chat-style incoming webhook.
type Client struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client for the given URL.
func NewClient(url string) (*Client, error) {
	if url == "" {
		return nil, errors.New("webhook url must not be empty")
	}

	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{httpClient: restyClient, url: url}, nil
}

type message struct {
	Text string `json:"text"`
}

// Notify posts text to the webhook.
func (c *Client) Notify(ctx context.Context, text string) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(message{Text: text}).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("webhook error: status=%d, body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
