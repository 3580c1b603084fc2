package events

import (
	"context"

	"github.com/Kariqs/amexan-wallet/models"
)

// Publisher delivers one outbox event to a downstream system. Publishing
// the same event twice must be harmless; consumers dedupe on EventID.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, evt models.OutboxEvent) error
}
