package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kariqs/amexan-wallet/models"
)

func TestEvaluate(t *testing.T) {
	productA := uint(1)
	productB := uint(2)
	lines := []Line{
		{ProductID: productA, Quantity: 2, UnitPrice: dec("30")},
		{ProductID: productB, Quantity: 1, UnitPrice: dec("40")},
	}
	subtotal := Subtotal(lines)
	today := time.Date(2026, time.March, 14, 23, 59, 0, 0, time.UTC)

	base := models.PromoCode{
		Code:               "SAVE10",
		DiscountPercentage: dec("10"),
		MinOrderAmount:     dec("50"),
		IsActive:           true,
		ExpiryDate:         time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name     string
		mutate   func(p *models.PromoCode)
		subtotal string
		want     string
		wantErr  error
	}{
		{name: "general discount on full subtotal", want: "10"},
		{name: "expires today is still valid", want: "10"},
		{
			name:    "inactive",
			mutate:  func(p *models.PromoCode) { p.IsActive = false },
			wantErr: ErrPromoInactive,
		},
		{
			name:    "archived",
			mutate:  func(p *models.PromoCode) { p.State = models.LifecycleArchived },
			wantErr: ErrPromoInactive,
		},
		{
			name:    "expired yesterday",
			mutate:  func(p *models.PromoCode) { p.ExpiryDate = p.ExpiryDate.AddDate(0, 0, -1) },
			wantErr: ErrPromoExpired,
		},
		{
			name:     "below minimum",
			subtotal: "49.99",
			wantErr:  ErrPromoMinimumNotMet,
		},
		{
			name:     "exactly minimum",
			subtotal: "50",
			want:     "5",
		},
		{
			name: "product specific discounts matching line only",
			mutate: func(p *models.PromoCode) {
				p.ProductSpecific = true
				p.ProductID = &productA
			},
			want: "6",
		},
		{
			name: "product specific without match gives nothing",
			mutate: func(p *models.PromoCode) {
				id := uint(99)
				p.ProductSpecific = true
				p.ProductID = &id
			},
			want: "0",
		},
		{
			name:   "product specific without product acts as general",
			mutate: func(p *models.PromoCode) { p.ProductSpecific = true },
			want:   "10",
		},
		{
			name:   "rounds to cents",
			mutate: func(p *models.PromoCode) { p.DiscountPercentage = dec("3.333") },
			want:   "3.33",
		},
		{
			name:   "never more than the subtotal",
			mutate: func(p *models.PromoCode) { p.DiscountPercentage = dec("100") },
			want:   "100",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			promo := base
			if tt.mutate != nil {
				tt.mutate(&promo)
			}
			sub := subtotal
			if tt.subtotal != "" {
				sub = dec(tt.subtotal)
			}

			got, err := Evaluate(promo, sub, lines, today)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assertMoney(t, tt.want, got)
		})
	}
}

func TestPromoService_Create(t *testing.T) {
	f := newFixture(t)
	product := f.product(t, "Headphones", "30", 10)
	missing := uint(4242)

	valid := PromoInput{
		Code:               "WELCOME",
		DiscountPercentage: dec("15"),
		MinOrderAmount:     dec("20"),
		ProductSpecific:    flag(false),
		IsActive:           flag(true),
		ExpiryDate:         "2026-12-31",
	}

	promo, err := f.promos.Create(t.Context(), valid)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME", promo.Code)
	assert.True(t, promo.IsActive)
	assert.Equal(t, "2026-12-31", promo.ExpiryDate.Format(time.DateOnly))

	tests := []struct {
		name    string
		mutate  func(in *PromoInput)
		wantErr error
	}{
		{name: "duplicate code", wantErr: ErrPromoExists},
		{name: "zero percent", mutate: func(in *PromoInput) { in.Code = "Z"; in.DiscountPercentage = dec("0") }, wantErr: ErrPromoInvalid},
		{name: "over 100 percent", mutate: func(in *PromoInput) { in.Code = "O"; in.DiscountPercentage = dec("100.01") }, wantErr: ErrPromoInvalid},
		{name: "non positive minimum", mutate: func(in *PromoInput) { in.Code = "M"; in.MinOrderAmount = dec("0") }, wantErr: ErrPromoInvalid},
		{name: "bad date", mutate: func(in *PromoInput) { in.Code = "D"; in.ExpiryDate = "31/12/2026" }, wantErr: ErrPromoInvalid},
		{name: "active status missing", mutate: func(in *PromoInput) { in.Code = "A"; in.IsActive = nil }, wantErr: ErrPromoInvalid},
		{name: "product specific flag missing", mutate: func(in *PromoInput) { in.Code = "F"; in.ProductSpecific = nil }, wantErr: ErrPromoInvalid},
		{name: "blank code", mutate: func(in *PromoInput) { in.Code = "  " }, wantErr: ErrPromoInvalid},
		{name: "product specific without product", mutate: func(in *PromoInput) { in.Code = "P1"; in.ProductSpecific = flag(true) }, wantErr: ErrPromoInvalid},
		{
			name: "product specific with unknown product",
			mutate: func(in *PromoInput) {
				in.Code = "P2"
				in.ProductSpecific = flag(true)
				in.ProductID = &missing
			},
			wantErr: ErrProductNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			if tt.mutate != nil {
				tt.mutate(&in)
			}
			_, err := f.promos.Create(t.Context(), in)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("inactive product specific", func(t *testing.T) {
		in := valid
		in.Code = "HEADPHONES"
		in.IsActive = flag(false)
		in.ProductSpecific = flag(true)
		in.ProductID = &product.ID

		promo, err := f.promos.Create(t.Context(), in)
		require.NoError(t, err)
		assert.False(t, promo.IsActive)

		stored, err := f.promos.Lookup(t.Context(), "HEADPHONES")
		require.NoError(t, err)
		assert.False(t, stored.IsActive, "false must not be replaced by a column default")
		require.NotNil(t, stored.ProductID)
		assert.Equal(t, product.ID, *stored.ProductID)
	})

	views, err := f.promos.List(t.Context())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Applicable to all products", views[0].ProductName)
	assert.Equal(t, "Headphones", views[1].ProductName)
}

func TestPromoService_DeactivateExpired(t *testing.T) {
	f := newFixture(t)
	day := func(offset int) time.Time {
		return time.Date(testNow.Year(), testNow.Month(), testNow.Day()+offset, 0, 0, 0, 0, time.UTC)
	}

	f.promo(t, models.PromoCode{Code: "YESTERDAY", DiscountPercentage: dec("5"), MinOrderAmount: dec("1"), IsActive: true, ExpiryDate: day(-1)})
	f.promo(t, models.PromoCode{Code: "LASTYEAR", DiscountPercentage: dec("5"), MinOrderAmount: dec("1"), IsActive: true, ExpiryDate: day(-365)})
	f.promo(t, models.PromoCode{Code: "TODAY", DiscountPercentage: dec("5"), MinOrderAmount: dec("1"), IsActive: true, ExpiryDate: day(0)})
	f.promo(t, models.PromoCode{Code: "TOMORROW", DiscountPercentage: dec("5"), MinOrderAmount: dec("1"), IsActive: true, ExpiryDate: day(1)})
	f.promo(t, models.PromoCode{Code: "DORMANT", DiscountPercentage: dec("5"), MinOrderAmount: dec("1"), IsActive: false, ExpiryDate: day(-3)})

	n, err := f.promos.DeactivateExpired(t.Context())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	active := map[string]bool{}
	var promos []models.PromoCode
	require.NoError(t, f.db.Find(&promos).Error)
	for _, p := range promos {
		active[p.Code] = p.IsActive
	}
	assert.Equal(t, map[string]bool{
		"YESTERDAY": false,
		"LASTYEAR":  false,
		"TODAY":     true,
		"TOMORROW":  true,
		"DORMANT":   false,
	}, active)

	n, err = f.promos.DeactivateExpired(t.Context())
	require.NoError(t, err)
	assert.Zero(t, n)
}
