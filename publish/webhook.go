// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethgrid/pester"

	"github.com/danielhkuo/quickly-elect/models"
)

const (
	DefaultWebhookTimeout = 10 * time.Second
	DefaultWebhookRetries = 3
)

// WebhookPayload is the JSON body POSTed to the webhook
type WebhookPayload struct {
	Election models.Election    `json:"election"`
	Result   models.TallyResult `json:"result"`
	Summary  string             `json:"summary"`
}

type WebhookOptions struct {
	Timeout    time.Duration
	MaxRetries int
	Backoff    pester.BackoffStrategy
}

// WebhookPublisher POSTs results as JSON. Network errors and 5xx answers
// are retried with backoff; after the last attempt the error is returned.
type WebhookPublisher struct {
	url    string
	client *pester.Client
}

func NewWebhookPublisher(url string, opts WebhookOptions) *WebhookPublisher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultWebhookTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultWebhookRetries
	}
	if opts.Backoff == nil {
		opts.Backoff = pester.ExponentialBackoff
	}

	client := pester.NewExtendedClient(&http.Client{Timeout: opts.Timeout})
	client.MaxRetries = opts.MaxRetries
	client.Backoff = opts.Backoff
	client.Concurrency = 1

	return &WebhookPublisher{url: url, client: client}
}

func (p *WebhookPublisher) Publish(ctx context.Context, e models.Election, result models.TallyResult) error {
	body, err := json.Marshal(WebhookPayload{
		Election: e,
		Result:   result,
		Summary:  Render(e, result),
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook answered %s", resp.Status)
	}
	return nil
}
