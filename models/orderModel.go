package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPlaced    OrderStatus = "PLACED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

const PaymentMethodWallet = "WALLET"

type TransactionKind string

const (
	TransactionPayment TransactionKind = "PAYMENT"
	TransactionRefund  TransactionKind = "REFUND"
	TransactionTopUp   TransactionKind = "TOP_UP"
)

type Order struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"userId"`
	PromoCodeID *uint           `json:"promoCodeId,omitempty"`
	PromoCode   *PromoCode      `gorm:"foreignKey:PromoCodeID" json:"-"`
	PaymentID   *uint           `json:"paymentId,omitempty"`
	Payment     *Payment        `gorm:"foreignKey:PaymentID" json:"payment,omitempty"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"totalAmount"`
	Status      OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	OrderDate   time.Time       `gorm:"not null" json:"orderDate"`
	Address     string          `gorm:"not null" json:"address"`
	PhoneNumber string          `gorm:"not null" json:"phoneNumber"`
	Items       []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	Lifecycle   `gorm:"embedded"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"orderId"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
}

// LineTotal is the snapshot price times quantity.
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type Payment struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amountPaid"`
	PaymentMethod string          `gorm:"type:varchar(20);not null" json:"paymentMethod"`
	PaymentDate   time.Time       `gorm:"not null" json:"paymentDate"`
	TransactionID uint            `gorm:"uniqueIndex;not null" json:"transactionId"`
	Transaction   *Transaction    `gorm:"foreignKey:TransactionID" json:"-"`
}

// Transaction is an attempted money movement. Payment attempts are written
// with Success=false before the funds check and flipped afterwards.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"userId"`
	Kind            TransactionKind `gorm:"type:varchar(16);not null" json:"kind"`
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Success         bool            `gorm:"not null;default:false" json:"success"`
	TransactionDate time.Time       `gorm:"not null" json:"transactionDate"`
}
