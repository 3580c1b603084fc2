package models

import "github.com/shopspring/decimal"

type Wallet struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    uint            `gorm:"uniqueIndex;not null" json:"userId"`
	Balance   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"balance"`
	Version   int64           `gorm:"not null;default:0" json:"-"`
	Lifecycle `gorm:"embedded"`
}
