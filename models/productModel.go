package models

import "github.com/shopspring/decimal"

type Category struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Lifecycle `gorm:"embedded"`
}

type Product struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"not null" json:"name"`
	Stock      int             `gorm:"not null;default:0" json:"stock"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	ImageURL   string          `json:"imageUrl"`
	IsActive   bool            `gorm:"not null" json:"isActive"`
	CategoryID uint            `gorm:"not null;index" json:"categoryId"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Lifecycle  `gorm:"embedded"`
}

// Sellable reports whether the product may go into a cart or an order.
func (p Product) Sellable() bool {
	return p.IsActive && p.IsLive()
}
