package services

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/utils"
)

// CatalogStore reads products and moves stock. Stock writes take the
// caller's transaction so they commit or roll back with it.
type CatalogStore struct {
	db *gorm.DB
}

func NewCatalogStore(db *gorm.DB) *CatalogStore {
	return &CatalogStore{db: db}
}

func (c *CatalogStore) GetProduct(ctx context.Context, id uint) (models.Product, error) {
	return c.findProduct(c.db.WithContext(ctx), id)
}

func (c *CatalogStore) findProduct(db *gorm.DB, id uint) (models.Product, error) {
	var product models.Product
	err := db.Scopes(models.Live).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Product{}, ErrProductNotFound
	}
	if err != nil {
		return models.Product{}, Internal(err)
	}
	return product, nil
}

type ProductList struct {
	Products []models.Product
	Total    int64
}

// ListProducts returns live, active products, optionally filtered by name.
func (c *CatalogStore) ListProducts(ctx context.Context, page utils.Page, search string) (ProductList, error) {
	query := c.db.WithContext(ctx).Model(&models.Product{}).Scopes(models.Live).Where("is_active = ?", true)
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ProductList{}, Internal(err)
	}

	var products []models.Product
	err := query.Preload("Category").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(page.Limit).Offset(page.Offset).
		Find(&products).Error
	if err != nil {
		return ProductList{}, Internal(err)
	}
	return ProductList{Products: products, Total: total}, nil
}

// ReserveStock takes qty units out of stock in one conditional update.
func (c *CatalogStore) ReserveStock(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	res := tx.Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// RestoreStock puts qty units back.
func (c *CatalogStore) RestoreStock(tx *gorm.DB, productID uint, qty int) error {
	if qty <= 0 {
		return nil
	}
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("stock", gorm.Expr("stock + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
