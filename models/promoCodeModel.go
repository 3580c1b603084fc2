package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromoCode rows are never edited once created; only the expiry sweep may
// flip IsActive from true to false.
type PromoCode struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	Code               string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"code"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"discountPercentage"`
	MinOrderAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"minOrderAmount"`
	ProductSpecific    bool            `gorm:"not null;default:false" json:"isProductSpecific"`
	ProductID          *uint           `json:"productId,omitempty"`
	Product            *Product        `gorm:"foreignKey:ProductID" json:"-"`
	IsActive           bool            `gorm:"not null;index" json:"isActive"`
	ExpiryDate         time.Time       `gorm:"not null;index" json:"expiryDate"`
	Lifecycle          `gorm:"embedded"`
}
