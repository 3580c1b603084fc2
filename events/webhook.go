package events

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Kariqs/amexan-wallet/models"
)

// WebhookPublisher POSTs each event's JSON payload to a fixed URL.
type WebhookPublisher struct {
	client *resty.Client
	url    string
}

func NewWebhookPublisher(url string, timeout time.Duration) *WebhookPublisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	return &WebhookPublisher{client: client, url: url}
}

func (p *WebhookPublisher) Name() string { return "webhook" }

func (p *WebhookPublisher) Publish(ctx context.Context, evt models.OutboxEvent) error {
	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("X-Event-ID", evt.EventID).
		SetHeader("X-Event-Topic", evt.Topic).
		SetBody([]byte(evt.Payload)).
		Post(p.url)
	if err != nil {
		return fmt.Errorf("webhook publish %s: %w", evt.EventID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook publish %s failed with status %d: %s", evt.EventID, resp.StatusCode(), string(resp.Body()))
	}
	return nil
}
