package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Kariqs/amexan-wallet/logger"
	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/utils"
)

const (
	msgAddedToCart     = "Product added to cart."
	msgQuantityUpdated = "Product quantity updated in cart."
	msgRemovedFromCart = "Product removed from cart."
)

type CartLine struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl"`
}

type CartView struct {
	Items    []CartLine      `json:"cartItems"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// CartStore keeps each user's pending lines. Stock is reserved when a line
// is added and handed back when it is removed.
type CartStore struct {
	tx      *Transactor
	catalog *CatalogStore
	log     *slog.Logger
}

func NewCartStore(tx *Transactor, catalog *CatalogStore, log *slog.Logger) *CartStore {
	if log == nil {
		log = logger.Discard()
	}
	return &CartStore{tx: tx, catalog: catalog, log: log}
}

func findLiveUser(db *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	err := db.Scopes(models.Live).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, Internal(err)
	}
	return user, nil
}

// cartFor returns the user's cart, creating it on first use, and holds its
// row lock until tx ends. Every writer of cart lines takes this lock first.
func (c *CartStore) cartFor(tx *gorm.DB, userID uint) (models.Cart, error) {
	cart := models.Cart{UserID: userID, Lifecycle: models.Active()}
	if err := tx.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return models.Cart{}, err
	}
	return c.lockCart(tx, userID)
}

func (c *CartStore) lockCart(tx *gorm.DB, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("user_id = ?", userID).First(&cart).Error
	return cart, err
}

// lines loads the cart's items with their products, in insertion order.
func (c *CartStore) lines(db *gorm.DB, userID uint) (models.Cart, error) {
	var cart models.Cart
	err := db.Where("user_id = ?", userID).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Cart{}, nil
	}
	return cart, err
}

// clear removes exactly the given lines. A line that is already gone means
// the cart moved underneath the caller.
func (c *CartStore) clear(tx *gorm.DB, items []models.CartItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	res := tx.Where("id IN ?", ids).Delete(&models.CartItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return ErrConflict
	}
	return nil
}

// AddItem reserves qty units of the product and merges them into the
// user's cart. It returns the confirmation message.
func (c *CartStore) AddItem(ctx context.Context, userID, productID uint, qty int) (string, error) {
	if qty <= 0 {
		return "", ErrInvalidQuantity
	}

	var msg string
	err := c.tx.Run(ctx, func(tx *gorm.DB) error {
		if _, err := findLiveUser(tx, userID); err != nil {
			return err
		}
		product, err := c.catalog.findProduct(tx, productID)
		if err != nil {
			return err
		}
		if !product.Sellable() {
			return ErrProductInactive
		}

		cart, err := c.cartFor(tx, userID)
		if err != nil {
			return err
		}
		if err := c.catalog.ReserveStock(tx, productID, qty); err != nil {
			return err
		}

		var item models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error
		switch {
		case err == nil:
			msg = msgQuantityUpdated
			return tx.Model(&models.CartItem{}).
				Where("id = ?", item.ID).
				UpdateColumn("quantity", gorm.Expr("quantity + ?", qty)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			msg = msgAddedToCart
			return tx.Create(&models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: qty}).Error
		default:
			return err
		}
	})
	if err != nil {
		return "", err
	}

	c.log.Info("cart item added",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("product_id", uint64(productID)),
		slog.Int("quantity", qty))
	return msg, nil
}

// RemoveItem drops the product's line and puts its quantity back in stock.
func (c *CartStore) RemoveItem(ctx context.Context, userID, productID uint) (string, error) {
	err := c.tx.Run(ctx, func(tx *gorm.DB) error {
		if _, err := findLiveUser(tx, userID); err != nil {
			return err
		}
		if _, err := c.catalog.findProduct(tx, productID); err != nil {
			return err
		}

		cart, err := c.lockCart(tx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemMissing
			}
			return err
		}

		var item models.CartItem
		if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartItemMissing
			}
			return err
		}

		res := tx.Delete(&models.CartItem{}, item.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Removed concurrently; the other caller restored the stock.
			return ErrConflict
		}
		return c.catalog.RestoreStock(tx, productID, item.Quantity)
	})
	if err != nil {
		return "", err
	}

	c.log.Info("cart item removed",
		slog.Uint64("user_id", uint64(userID)),
		slog.Uint64("product_id", uint64(productID)))
	return msgRemovedFromCart, nil
}

func (c *CartStore) View(ctx context.Context, userID uint) (CartView, error) {
	db := c.tx.DB().WithContext(ctx)
	if _, err := findLiveUser(db, userID); err != nil {
		return CartView{}, err
	}
	cart, err := c.lines(db, userID)
	if err != nil {
		return CartView{}, Internal(err)
	}

	view := CartView{Items: make([]CartLine, 0, len(cart.Items)), Subtotal: decimal.Zero}
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		view.Items = append(view.Items, CartLine{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Price:       item.Product.Price,
			Quantity:    item.Quantity,
			ImageURL:    item.Product.ImageURL,
		})
		view.Subtotal = view.Subtotal.Add(utils.LineTotal(item.Product.Price, item.Quantity))
	}
	return view, nil
}
