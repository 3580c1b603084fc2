package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/utils"
)

// Line is one priced cart line as the evaluator sees it.
type Line struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

func (l Line) Total() decimal.Decimal {
	return utils.LineTotal(l.UnitPrice, l.Quantity)
}

// Subtotal sums the line totals.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Total())
	}
	return sum
}

// dateOnly drops the clock part in t's own location.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Expired reports whether the promo's expiry date lies before today.
func Expired(promo models.PromoCode, today time.Time) bool {
	if promo.ExpiryDate.IsZero() {
		return false
	}
	return dateOnly(promo.ExpiryDate).Before(dateOnly(today))
}

// Evaluate validates promo against the subtotal and returns the discount
// amount. It does not touch storage.
func Evaluate(promo models.PromoCode, subtotal decimal.Decimal, lines []Line, today time.Time) (decimal.Decimal, error) {
	if !promo.IsActive || !promo.IsLive() {
		return decimal.Zero, ErrPromoInactive
	}
	if Expired(promo, today) {
		return decimal.Zero, ErrPromoExpired
	}
	if subtotal.LessThan(promo.MinOrderAmount) {
		return decimal.Zero, ErrPromoMinimumNotMet
	}

	var discount decimal.Decimal
	if promo.ProductSpecific && promo.ProductID != nil {
		for _, l := range lines {
			if l.ProductID == *promo.ProductID {
				discount = utils.Percent(l.Total(), promo.DiscountPercentage)
				break
			}
		}
	} else {
		discount = utils.Percent(subtotal, promo.DiscountPercentage)
	}

	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}
	return discount, nil
}

type PromoInput struct {
	Code               string          `json:"code" binding:"required,min=1,max=100"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	MinOrderAmount     decimal.Decimal `json:"minOrderAmount"`
	ProductSpecific    *bool           `json:"isProductSpecific" binding:"required"`
	ProductID          *uint           `json:"productId"`
	IsActive           *bool           `json:"isActive" binding:"required"`
	ExpiryDate         string          `json:"expiryDate" binding:"required"`
}

type PromoView struct {
	Code               string          `json:"code"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
	MinOrderAmount     decimal.Decimal `json:"minOrderAmount"`
	ProductSpecific    bool            `json:"isProductSpecific"`
	ProductName        string          `json:"productName"`
	IsActive           bool            `json:"isActive"`
	ExpiryDate         string          `json:"expiryDate"`
}

// PromoService owns promo code storage: lookup, creation and the expiry sweep.
type PromoService struct {
	db  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

func NewPromoService(db *gorm.DB, now func() time.Time, log *slog.Logger) *PromoService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.Discard()
	}
	return &PromoService{db: db, now: now, log: log}
}

// Lookup finds a promo by its code. Inactive codes are returned too; the
// evaluator decides whether they apply.
func (p *PromoService) Lookup(ctx context.Context, code string) (models.PromoCode, error) {
	var promo models.PromoCode
	err := p.db.WithContext(ctx).Where("code = ?", strings.TrimSpace(code)).First(&promo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.PromoCode{}, ErrPromoNotFound
	}
	if err != nil {
		return models.PromoCode{}, Internal(err)
	}
	return promo, nil
}

func (p *PromoService) Create(ctx context.Context, in PromoInput) (models.PromoCode, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" || len(code) > 100 {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Promo code must be between 1 and 100 characters")
	}
	if !in.DiscountPercentage.IsPositive() || in.DiscountPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Discount percentage must be greater than 0 and at most 100")
	}
	if !in.MinOrderAmount.IsPositive() {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Minimum order amount must be greater than 0")
	}
	if in.IsActive == nil {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Active status is required")
	}
	if in.ProductSpecific == nil {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Product specific flag is required")
	}
	expiry, err := time.Parse(time.DateOnly, in.ExpiryDate)
	if err != nil {
		return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Expiry date must be in the format YYYY-MM-DD")
	}

	promo := models.PromoCode{
		Code:               code,
		DiscountPercentage: in.DiscountPercentage,
		MinOrderAmount:     utils.RoundMoney(in.MinOrderAmount),
		ProductSpecific:    *in.ProductSpecific,
		IsActive:           *in.IsActive,
		ExpiryDate:         expiry,
		Lifecycle:          models.Active(),
	}

	db := p.db.WithContext(ctx)
	if *in.ProductSpecific {
		if in.ProductID == nil {
			return models.PromoCode{}, Invalidf(ErrPromoInvalid, "Product ID is required when the promo code is product-specific.")
		}
		var product models.Product
		if err := db.Scopes(models.Live).First(&product, *in.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.PromoCode{}, ErrProductNotFound
			}
			return models.PromoCode{}, Internal(err)
		}
		promo.ProductID = &product.ID
	}

	var existing int64
	if err := db.Model(&models.PromoCode{}).Where("code = ?", code).Count(&existing).Error; err != nil {
		return models.PromoCode{}, Internal(err)
	}
	if existing > 0 {
		return models.PromoCode{}, ErrPromoExists
	}

	if err := db.Omit("Product").Create(&promo).Error; err != nil {
		return models.PromoCode{}, Internal(err)
	}
	p.log.Info("promo code created", slog.String("code", promo.Code))
	return promo, nil
}

func (p *PromoService) List(ctx context.Context) ([]PromoView, error) {
	var promos []models.PromoCode
	err := p.db.WithContext(ctx).Scopes(models.Live).Preload("Product").Order("id").Find(&promos).Error
	if err != nil {
		return nil, Internal(err)
	}

	out := make([]PromoView, 0, len(promos))
	for _, promo := range promos {
		view := PromoView{
			Code:               promo.Code,
			DiscountPercentage: promo.DiscountPercentage,
			MinOrderAmount:     promo.MinOrderAmount,
			ProductSpecific:    promo.ProductSpecific,
			ProductName:        "Applicable to all products",
			IsActive:           promo.IsActive,
			ExpiryDate:         promo.ExpiryDate.Format(time.DateOnly),
		}
		if promo.ProductSpecific && promo.Product != nil {
			view.ProductName = promo.Product.Name
		}
		out = append(out, view)
	}
	return out, nil
}

// DeactivateExpired flips IsActive to false for every active code whose
// expiry date is before today. It never activates anything.
func (p *PromoService) DeactivateExpired(ctx context.Context) (int64, error) {
	today := dateOnly(p.now())

	var expired []models.PromoCode
	err := p.db.WithContext(ctx).
		Where("is_active = ? AND expiry_date < ?", true, today).
		Find(&expired).Error
	if err != nil {
		return 0, Internal(err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, promo := range expired {
		ids = append(ids, promo.ID)
	}

	res := p.db.WithContext(ctx).Model(&models.PromoCode{}).
		Where("id IN ? AND is_active = ?", ids, true).
		Update("is_active", false)
	if res.Error != nil {
		return 0, Internal(res.Error)
	}

	for _, promo := range expired {
		p.log.Info("deactivated expired promo code", slog.String("code", promo.Code))
	}
	return res.RowsAffected, nil
}
