package models

import (
	"time"

	"gorm.io/datatypes"
)

type OutboxEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	EventID   string         `gorm:"type:varchar(36);uniqueIndex;not null" json:"eventId"`
	Topic     string         `gorm:"type:varchar(100);not null" json:"topic"`
	Key       string         `gorm:"type:varchar(100);not null" json:"key"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`
	SentAt    *time.Time     `gorm:"index" json:"sentAt,omitempty"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&User{}, &Wallet{}, &Cart{}, &Category{}, &Product{}, &CartItem{},
		&PromoCode{}, &Transaction{}, &Payment{}, &Order{}, &OrderItem{},
		&AuditLog{}, &OutboxEvent{},
	}
}
