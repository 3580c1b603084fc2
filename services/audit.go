package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/models"
)

// OrderEvent is the payload relayed for every audit entry.
type OrderEvent struct {
	EventID    string    `json:"eventId"`
	Action     string    `json:"action"`
	OrderID    uint      `json:"orderId"`
	UserID     uint      `json:"userId"`
	Amount     string    `json:"amount,omitempty"`
	Details    string    `json:"details"`
	OccurredAt time.Time `json:"occurredAt"`
}

type AuditEntry struct {
	OrderID uint
	UserID  uint
	Action  string
	Details string
	Amount  string
}

// AuditLog appends order lifecycle entries. Every entry is written together
// with an outbox row in the caller's transaction.
type AuditLog struct {
	db    *gorm.DB
	topic string
	now   func() time.Time
}

func NewAuditLog(db *gorm.DB, topic string, now func() time.Time) *AuditLog {
	if now == nil {
		now = time.Now
	}
	if topic == "" {
		topic = "order-events"
	}
	return &AuditLog{db: db, topic: topic, now: now}
}

func (a *AuditLog) Append(tx *gorm.DB, entry AuditEntry) error {
	at := a.now()
	row := models.AuditLog{
		OrderID:   entry.OrderID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		Details:   entry.Details,
		CreatedAt: at,
	}
	if err := tx.Create(&row).Error; err != nil {
		return err
	}

	event := OrderEvent{
		EventID:    uuid.NewString(),
		Action:     entry.Action,
		OrderID:    entry.OrderID,
		UserID:     entry.UserID,
		Amount:     entry.Amount,
		Details:    entry.Details,
		OccurredAt: at.UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return tx.Create(&models.OutboxEvent{
		EventID:   event.EventID,
		Topic:     a.topic,
		Key:       strconv.FormatUint(uint64(entry.OrderID), 10),
		Payload:   datatypes.JSON(payload),
		CreatedAt: at,
	}).Error
}

// ForOrder lists an order's entries, oldest first.
func (a *AuditLog) ForOrder(ctx context.Context, orderID uint) ([]models.AuditLog, error) {
	var entries []models.AuditLog
	err := a.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&entries).Error
	if err != nil {
		return nil, Internal(err)
	}
	return entries, nil
}
