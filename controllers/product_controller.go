package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ibrahim77gh/shopify-products/models"
	"github.com/ibrahim77gh/shopify-products/repository"
)

const DefaultContextTimeout = 10 * time.Second

// ProductController exposes CRUD access to the product catalog.
type ProductController struct {
	repo      repository.ProductRepository
	cache     *CacheManager
	validator *RequestValidator
	logger    *zap.Logger
}

func NewProductController(repo repository.ProductRepository, cache *CacheManager, validator *RequestValidator, logger *zap.Logger) *ProductController {
	return &ProductController{
		repo:      repo,
		cache:     cache,
		validator: validator,
		logger:    logger,
	}
}

// GetProducts lists products with search, range filters and pagination.
// This endpoint is public.
func (pc *ProductController) GetProducts(c *gin.Context) {
	page, perPage, err := pc.validator.ParsePagination(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters, err := pc.validator.ParseProductFilters(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := pc.requestContext(c)
	defer cancel()

	if cached, ok := pc.cache.GetProductList(ctx, page, perPage, filters); ok {
		c.JSON(http.StatusOK, cached)
		return
	}

	products, total, err := pc.repo.List(ctx, filters, page, perPage)
	if err != nil {
		pc.logger.Error("Failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	response := map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     page,
		"perPage":  perPage,
	}
	pc.cache.SetProductListAsync(page, perPage, filters, response)

	c.JSON(http.StatusOK, response)
}

// GetProductByID fetches a single product.
func (pc *ProductController) GetProductByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	ctx, cancel := pc.requestContext(c)
	defer cancel()

	product, err := pc.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.logger.Error("Failed to fetch product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// CreateProduct creates a catalog entry. SKU must be unique.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := pc.validator.ValidateCreateProduct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := pc.requestContext(c)
	defer cancel()

	existing, err := pc.repo.FindBySKU(ctx, req.SKU)
	if err != nil {
		pc.logger.Error("SKU lookup failed", zap.String("sku", req.SKU), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A product with this SKU already exists"})
		return
	}

	product := &models.Product{
		Name:              strings.TrimSpace(req.Name),
		SKU:               strings.TrimSpace(req.SKU),
		Price:             req.Price,
		InventoryQuantity: req.InventoryQuantity,
	}
	if err := pc.repo.Create(ctx, product); err != nil {
		pc.logger.Error("Failed to create product", zap.String("sku", req.SKU), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	pc.invalidateCache(ctx)
	c.JSON(http.StatusCreated, product)
}

// UpdateProduct applies partial updates to a product.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := pc.validator.ValidateUpdateProduct(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.InventoryQuantity != nil {
		updates["inventory_quantity"] = *req.InventoryQuantity
	}

	ctx, cancel := pc.requestContext(c)
	defer cancel()

	if err := pc.repo.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.logger.Error("Failed to update product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	pc.invalidateCache(ctx)

	product, err := pc.repo.FindByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product from the catalog.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	ctx, cancel := pc.requestContext(c)
	defer cancel()

	if err := pc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.logger.Error("Failed to delete product", zap.String("id", id.String()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	pc.invalidateCache(ctx)
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (pc *ProductController) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
}

func (pc *ProductController) invalidateCache(ctx context.Context) {
	if err := pc.cache.Invalidate(ctx); err != nil {
		pc.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}
