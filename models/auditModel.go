package models

import "time"

const (
	AuditOrderPlaced    = "ORDER_PLACED"
	AuditOrderCancelled = "ORDER_CANCELLED"
)

// AuditLog is append-only.
type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"orderId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Action    string    `gorm:"type:varchar(32);not null" json:"action"`
	Details   string    `gorm:"type:text" json:"details"`
	CreatedAt time.Time `json:"createdAt"`
}
