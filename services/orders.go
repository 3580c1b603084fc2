package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/utils"
)

const (
	msgOrderPlaced    = "Order placed successfully!"
	msgOrderCancelled = "Order cancelled successfully and amount refunded to your wallet."
)

// OrderObserver is told about order outcomes. The metrics package provides
// the production implementation.
type OrderObserver interface {
	OrderPlaced(total decimal.Decimal)
	OrderCancelled(refund decimal.Decimal)
	OrderFailed(op, code string)
}

type noopObserver struct{}

func (noopObserver) OrderPlaced(decimal.Decimal)    {}
func (noopObserver) OrderCancelled(decimal.Decimal) {}
func (noopObserver) OrderFailed(string, string)     {}

type OrderResult struct {
	OrderID uint   `json:"orderId"`
	Message string `json:"message"`
}

type OrderSummary struct {
	ID          uint               `json:"id"`
	TotalAmount decimal.Decimal    `json:"totalAmount"`
	Status      models.OrderStatus `json:"status"`
	OrderDate   time.Time          `json:"orderDate"`
}

type OrderDetail struct {
	Order models.Order      `json:"order"`
	Audit []models.AuditLog `json:"audit"`
}

type OrderEngineOptions struct {
	// Location is where "today" is evaluated for promo expiry.
	Location *time.Location
	Now      func() time.Time
	Observer OrderObserver
	Logger   *slog.Logger
}

// OrderEngine places and cancels orders. Every money movement it makes is
// part of one transaction together with the rows that justify it.
type OrderEngine struct {
	tx       *Transactor
	wallets  *WalletLedger
	carts    *CartStore
	catalog  *CatalogStore
	promos   *PromoService
	audit    *AuditLog
	observer OrderObserver
	loc      *time.Location
	now      func() time.Time
	log      *slog.Logger
}

func NewOrderEngine(tx *Transactor, wallets *WalletLedger, carts *CartStore, catalog *CatalogStore,
	promos *PromoService, audit *AuditLog, opts OrderEngineOptions) *OrderEngine {
	e := &OrderEngine{
		tx:       tx,
		wallets:  wallets,
		carts:    carts,
		catalog:  catalog,
		promos:   promos,
		audit:    audit,
		observer: opts.Observer,
		loc:      opts.Location,
		now:      opts.Now,
		log:      opts.Logger,
	}
	if e.observer == nil {
		e.observer = noopObserver{}
	}
	if e.loc == nil {
		e.loc = time.Local
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.log == nil {
		e.log = logger.Discard()
	}
	return e
}

func (e *OrderEngine) today() time.Time {
	return e.now().In(e.loc)
}

// quote is what the caller is about to pay for, computed outside of any lock.
type quote struct {
	user     models.User
	promo    *models.PromoCode
	lines    []Line
	subtotal decimal.Decimal
	discount decimal.Decimal
	total    decimal.Decimal
}

func (e *OrderEngine) quote(ctx context.Context, userID uint, promoCode string) (quote, error) {
	db := e.tx.DB().WithContext(ctx)

	user, err := findLiveUser(db, userID)
	if err != nil {
		return quote{}, err
	}
	if strings.TrimSpace(user.Address) == "" {
		return quote{}, ErrMissingAddress
	}
	if strings.TrimSpace(user.PhoneNumber) == "" {
		return quote{}, ErrMissingPhone
	}
	if _, err := e.wallets.Balance(ctx, userID); err != nil {
		return quote{}, err
	}

	cart, err := e.carts.lines(db, userID)
	if err != nil {
		return quote{}, Internal(err)
	}
	lines, err := linesOf(cart)
	if err != nil {
		return quote{}, err
	}

	q := quote{user: user, lines: lines, subtotal: Subtotal(lines)}
	if code := strings.TrimSpace(promoCode); code != "" {
		promo, err := e.promos.Lookup(ctx, code)
		if err != nil {
			return quote{}, err
		}
		discount, err := Evaluate(promo, q.subtotal, lines, e.today())
		if err != nil {
			return quote{}, err
		}
		q.promo = &promo
		q.discount = discount
	}
	q.total = utils.RoundMoney(q.subtotal.Sub(q.discount))
	return q, nil
}

// linesOf prices a cart at current catalog prices.
func linesOf(cart models.Cart) ([]Line, error) {
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}
	lines := make([]Line, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.Product == nil || !item.Product.Sellable() {
			name := ""
			if item.Product != nil {
				name = item.Product.Name
			}
			return nil, Invalidf(ErrProductInactive, "%s is no longer available.", fallback(name, "This product"))
		}
		lines = append(lines, Line{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}
	return lines, nil
}

func fallback(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func sameLines(a, b []Line) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].ProductID != b[i].ProductID || a[i].Quantity != b[i].Quantity || !a[i].UnitPrice.Equal(b[i].UnitPrice) {
			return false
		}
	}
	return true
}

// recordAttempt writes the payment attempt as a failed Transaction, or
// re-prices the existing one when an attempt is retried. It commits on its
// own so the attempt survives a rejected debit.
func (e *OrderEngine) recordAttempt(ctx context.Context, pending *models.Transaction, userID uint, amount decimal.Decimal) (*models.Transaction, error) {
	db := e.tx.DB().WithContext(ctx)
	if pending != nil {
		if pending.Amount.Equal(amount) {
			return pending, nil
		}
		if err := db.Model(pending).Update("amount", amount).Error; err != nil {
			return nil, Internal(err)
		}
		pending.Amount = amount
		return pending, nil
	}

	attempt := &models.Transaction{
		UserID:          userID,
		Kind:            models.TransactionPayment,
		Amount:          amount,
		Success:         false,
		TransactionDate: e.now(),
	}
	if err := db.Create(attempt).Error; err != nil {
		return nil, Internal(err)
	}
	return attempt, nil
}

// PlaceOrder turns the user's cart into an order paid from the wallet.
func (e *OrderEngine) PlaceOrder(ctx context.Context, userID uint, promoCode string) (OrderResult, error) {
	var (
		pending *models.Transaction
		order   models.Order
	)
	err := e.tx.Retry(ctx, func(ctx context.Context) error {
		q, err := e.quote(ctx, userID, promoCode)
		if err != nil {
			return err
		}
		if pending, err = e.recordAttempt(ctx, pending, userID, q.total); err != nil {
			return err
		}
		return e.tx.Once(ctx, func(tx *gorm.DB) error {
			placed, err := e.commitOrder(tx, q, pending)
			if err != nil {
				return err
			}
			order = placed
			return nil
		})
	})
	if err != nil {
		e.observer.OrderFailed("place", CodeOf(err))
		if KindOf(err) == KindInternal {
			e.log.Error("order placement failed", slog.Uint64("user_id", uint64(userID)), slog.Any("err", err))
		}
		return OrderResult{}, err
	}

	e.observer.OrderPlaced(order.TotalAmount)
	e.log.Info("order placed",
		slog.Uint64("order_id", uint64(order.ID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("total", order.TotalAmount.StringFixed(2)))
	return OrderResult{OrderID: order.ID, Message: msgOrderPlaced}, nil
}

// commitOrder is the atomic part of placement: debit, persist, clear.
func (e *OrderEngine) commitOrder(tx *gorm.DB, q quote, pending *models.Transaction) (models.Order, error) {
	userID := q.user.ID

	if _, err := e.wallets.Debit(tx, userID, q.total); err != nil {
		return models.Order{}, err
	}

	// Hold the cart so no line can be added or removed until commit, then
	// check it still matches what was priced.
	if _, err := e.carts.lockCart(tx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrEmptyCart
		}
		return models.Order{}, err
	}
	cart, err := e.carts.lines(tx, userID)
	if err != nil {
		return models.Order{}, err
	}
	current, err := linesOf(cart)
	if err != nil {
		return models.Order{}, err
	}
	if !sameLines(q.lines, current) {
		return models.Order{}, ErrConflict
	}

	now := e.now()
	order := models.Order{
		UserID:      userID,
		TotalAmount: q.total,
		Status:      models.OrderStatusPlaced,
		OrderDate:   now,
		Address:     q.user.Address,
		PhoneNumber: q.user.PhoneNumber,
		Lifecycle:   models.Active(),
	}
	if q.promo != nil {
		order.PromoCodeID = &q.promo.ID
	}
	if err := tx.Omit(clause.Associations).Create(&order).Error; err != nil {
		return models.Order{}, err
	}

	items := make([]models.OrderItem, 0, len(current))
	for _, l := range current {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}
	if err := tx.Create(&items).Error; err != nil {
		return models.Order{}, err
	}

	payment := models.Payment{
		AmountPaid:    q.total,
		PaymentMethod: models.PaymentMethodWallet,
		PaymentDate:   now,
		TransactionID: pending.ID,
	}
	if err := tx.Omit(clause.Associations).Create(&payment).Error; err != nil {
		return models.Order{}, err
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("payment_id", payment.ID).Error; err != nil {
		return models.Order{}, err
	}
	order.PaymentID = &payment.ID

	res := tx.Model(&models.Transaction{}).
		Where("id = ? AND success = ?", pending.ID, false).
		Updates(map[string]any{"success": true, "amount": q.total, "transaction_date": now})
	if res.Error != nil {
		return models.Order{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Order{}, ErrConflict
	}

	if err := e.audit.Append(tx, AuditEntry{
		OrderID: order.ID,
		UserID:  userID,
		Action:  models.AuditOrderPlaced,
		Details: fmt.Sprintf("Order successfully placed with total amount: %s", q.total.StringFixed(2)),
		Amount:  q.total.StringFixed(2),
	}); err != nil {
		return models.Order{}, err
	}

	if err := e.carts.clear(tx, cart.Items); err != nil {
		return models.Order{}, err
	}
	order.Items = items
	return order, nil
}

// CancelOrder refunds a placed order to the wallet and returns its stock.
func (e *OrderEngine) CancelOrder(ctx context.Context, userID, orderID uint) (OrderResult, error) {
	var refund decimal.Decimal
	err := e.tx.Run(ctx, func(tx *gorm.DB) error {
		if _, err := findLiveUser(tx, userID); err != nil {
			return err
		}

		var order models.Order
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Scopes(models.Live).
			First(&order, orderID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.UserID != userID {
			return ErrUnauthorized
		}
		switch order.Status {
		case models.OrderStatusCancelled:
			return ErrAlreadyCancelled
		case models.OrderStatusPlaced:
		default:
			return ErrNotCancellable
		}

		now := e.now()
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, models.OrderStatusPlaced).
			Updates(map[string]any{"status": models.OrderStatusCancelled, "order_date": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if _, err := e.wallets.Credit(tx, userID, order.TotalAmount); err != nil {
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Order("id").Find(&items).Error; err != nil {
			return err
		}
		for _, item := range items {
			if err := e.catalog.RestoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Create(&models.Transaction{
			UserID:          userID,
			Kind:            models.TransactionRefund,
			Amount:          order.TotalAmount,
			Success:         true,
			TransactionDate: now,
		}).Error; err != nil {
			return err
		}

		refund = order.TotalAmount
		return e.audit.Append(tx, AuditEntry{
			OrderID: order.ID,
			UserID:  userID,
			Action:  models.AuditOrderCancelled,
			Details: "Order has been cancelled and refunded.",
			Amount:  order.TotalAmount.StringFixed(2),
		})
	})
	if err != nil {
		e.observer.OrderFailed("cancel", CodeOf(err))
		if KindOf(err) == KindInternal {
			e.log.Error("order cancellation failed", slog.Uint64("order_id", uint64(orderID)), slog.Any("err", err))
		}
		return OrderResult{}, err
	}

	e.observer.OrderCancelled(refund)
	e.log.Info("order cancelled",
		slog.Uint64("order_id", uint64(orderID)),
		slog.Uint64("user_id", uint64(userID)),
		slog.String("refund", refund.StringFixed(2)))
	return OrderResult{OrderID: orderID, Message: msgOrderCancelled}, nil
}

// ListOrders returns the user's orders, newest first.
func (e *OrderEngine) ListOrders(ctx context.Context, userID uint) ([]OrderSummary, error) {
	db := e.tx.DB().WithContext(ctx)
	if _, err := findLiveUser(db, userID); err != nil {
		return nil, err
	}

	var orders []models.Order
	err := db.Scopes(models.Live).
		Where("user_id = ?", userID).
		Order("order_date DESC").Order("id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, Internal(err)
	}

	out := make([]OrderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, OrderSummary{ID: o.ID, TotalAmount: o.TotalAmount, Status: o.Status, OrderDate: o.OrderDate})
	}
	return out, nil
}

func (e *OrderEngine) GetOrder(ctx context.Context, userID, orderID uint) (OrderDetail, error) {
	db := e.tx.DB().WithContext(ctx)

	var order models.Order
	err := db.Scopes(models.Live).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Payment").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return OrderDetail{}, ErrOrderNotFound
	}
	if err != nil {
		return OrderDetail{}, Internal(err)
	}
	if order.UserID != userID {
		return OrderDetail{}, ErrUnauthorized
	}

	entries, err := e.audit.ForOrder(ctx, order.ID)
	if err != nil {
		return OrderDetail{}, err
	}
	return OrderDetail{Order: order, Audit: entries}, nil
}
