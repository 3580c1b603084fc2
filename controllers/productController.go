package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Kariqs/amexan-wallet/models"
	"github.com/Kariqs/amexan-wallet/services"
	"github.com/Kariqs/amexan-wallet/utils"
)

type CatalogService interface {
	ListProducts(ctx context.Context, page utils.Page, search string) (services.ProductList, error)
	GetProduct(ctx context.Context, id uint) (models.Product, error)
}

type ProductController struct {
	catalog CatalogService
}

func NewProductController(catalog CatalogService) *ProductController {
	return &ProductController{catalog: catalog}
}

func (c *ProductController) GetProducts(ctx *gin.Context) {
	page := utils.ParsePage(ctx.DefaultQuery("page", "1"), ctx.DefaultQuery("limit", "4"), 4)

	list, err := c.catalog.ListProducts(ctx.Request.Context(), page, ctx.Query("search"))
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"products": list.Products,
		"metadata": gin.H{
			"total": list.Total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func (c *ProductController) GetProduct(ctx *gin.Context) {
	productID, ok := parseID(ctx, "id")
	if !ok {
		return
	}

	product, err := c.catalog.GetProduct(ctx.Request.Context(), productID)
	if err != nil {
		respondWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, product)
}
