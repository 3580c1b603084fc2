package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Kariqs/amexan-wallet/models"
)

var testNow = time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func flag(b bool) *bool {
	return &b
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return testNow },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

type fixture struct {
	db       *gorm.DB
	tx       *Transactor
	catalog  *CatalogStore
	wallets  *WalletLedger
	carts    *CartStore
	promos   *PromoService
	audit    *AuditLog
	orders   *OrderEngine
	category models.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	now := func() time.Time { return testNow }
	tx := NewTransactor(db, TxOptions{LockTimeout: 5 * time.Second, MaxRetries: 3, Backoff: time.Millisecond}, nil)
	catalog := NewCatalogStore(db)
	wallets := NewWalletLedger(tx, now, nil)
	carts := NewCartStore(tx, catalog, nil)
	promos := NewPromoService(db, now, nil)
	audit := NewAuditLog(db, "order-events", now)
	orders := NewOrderEngine(tx, wallets, carts, catalog, promos, audit, OrderEngineOptions{
		Location: time.UTC,
		Now:      now,
	})

	category := models.Category{Name: "Electronics", Lifecycle: models.Active()}
	require.NoError(t, db.Create(&category).Error)

	return &fixture{
		db:       db,
		tx:       tx,
		catalog:  catalog,
		wallets:  wallets,
		carts:    carts,
		promos:   promos,
		audit:    audit,
		orders:   orders,
		category: category,
	}
}

// user creates a user ready to order, with a wallet holding balance.
func (f *fixture) user(t *testing.T, name, balance string) models.User {
	t.Helper()

	user := models.User{
		Username:    name,
		Email:       name + "@example.com",
		Role:        models.RoleUser,
		Address:     "12 Moi Avenue, Nairobi",
		PhoneNumber: "+254700000000",
		Lifecycle:   models.Active(),
	}
	require.NoError(t, f.db.Create(&user).Error)
	require.NoError(t, f.db.Create(&models.Wallet{UserID: user.ID, Balance: dec(balance), Lifecycle: models.Active()}).Error)
	require.NoError(t, f.db.Create(&models.Cart{UserID: user.ID, Lifecycle: models.Active()}).Error)
	return user
}

func (f *fixture) product(t *testing.T, name, price string, stock int) models.Product {
	t.Helper()

	product := models.Product{
		Name:       name,
		Price:      dec(price),
		Stock:      stock,
		IsActive:   true,
		CategoryID: f.category.ID,
		Lifecycle:  models.Active(),
	}
	require.NoError(t, f.db.Create(&product).Error)
	return product
}

func (f *fixture) promo(t *testing.T, promo models.PromoCode) models.PromoCode {
	t.Helper()

	promo.Lifecycle = models.Active()
	require.NoError(t, f.db.Create(&promo).Error)
	return promo
}

func (f *fixture) addToCart(t *testing.T, userID, productID uint, qty int) {
	t.Helper()

	_, err := f.carts.AddItem(t.Context(), userID, productID, qty)
	require.NoError(t, err)
}

func (f *fixture) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()

	wallet, err := f.wallets.Balance(t.Context(), userID)
	require.NoError(t, err)
	return wallet.Balance
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	t.Helper()

	var product models.Product
	require.NoError(t, f.db.First(&product, productID).Error)
	return product.Stock
}

func (f *fixture) cartSize(t *testing.T, userID uint) int {
	t.Helper()

	view, err := f.carts.View(t.Context(), userID)
	require.NoError(t, err)
	return len(view.Items)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
