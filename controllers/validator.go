package controllers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ibrahim77gh/shopify-products/repository"
)

// Validation constants
const (
	MaxPageSize   = 100
	MaxPageNumber = 1000000
)

// CreateProductRequest defines the expected structure for creating a product
type CreateProductRequest struct {
	Name              string          `json:"name" validate:"required"`
	SKU               string          `json:"sku" validate:"required"`
	Price             decimal.Decimal `json:"price"`
	InventoryQuantity int             `json:"inventory_quantity" validate:"gte=0"`
}

// UpdateProductRequest carries optional fields; only present fields are
// applied.
type UpdateProductRequest struct {
	Name              *string          `json:"name"`
	Price             *decimal.Decimal `json:"price"`
	InventoryQuantity *int             `json:"inventory_quantity"`
}

// RequestValidator handles all input validation
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{
		validate: validator.New(),
	}
}

// ParsePagination validates and parses pagination parameters
func (rv *RequestValidator) ParsePagination(c *gin.Context) (int, int, error) {
	pageStr := c.DefaultQuery("page", "1")
	perPageStr := c.DefaultQuery("perPage", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		return 0, 0, errors.New("invalid page number")
	}
	if page > MaxPageNumber {
		page = MaxPageNumber
	}

	perPage, err := strconv.Atoi(perPageStr)
	if err != nil || perPage < 1 {
		return 0, 0, errors.New("invalid page size")
	}
	if perPage > MaxPageSize {
		perPage = MaxPageSize
	}

	return page, perPage, nil
}

// ParseProductFilters parses the catalog query filters. Parameter names
// follow the lookup naming the public API has always exposed.
func (rv *RequestValidator) ParseProductFilters(c *gin.Context) (repository.ProductFilters, error) {
	filters := repository.ProductFilters{
		Search:       strings.TrimSpace(c.Query("search")),
		NameContains: strings.TrimSpace(c.Query("name__icontains")),
		SKU:          strings.TrimSpace(c.Query("sku")),
		SKUContains:  strings.TrimSpace(c.Query("sku__icontains")),
	}

	var err error
	if filters.MinPrice, err = parseDecimalQuery(c, "price__gte"); err != nil {
		return filters, err
	}
	if filters.MaxPrice, err = parseDecimalQuery(c, "price__lte"); err != nil {
		return filters, err
	}
	if filters.MinPrice != nil && filters.MaxPrice != nil && filters.MinPrice.GreaterThan(*filters.MaxPrice) {
		return filters, errors.New("price__gte must be less than or equal to price__lte")
	}

	if filters.MinQuantity, err = parseIntQuery(c, "inventory_quantity__gte"); err != nil {
		return filters, err
	}
	if filters.MaxQuantity, err = parseIntQuery(c, "inventory_quantity__lte"); err != nil {
		return filters, err
	}

	return filters, nil
}

// ValidateCreateProduct checks a create payload beyond struct tags.
func (rv *RequestValidator) ValidateCreateProduct(req *CreateProductRequest) error {
	if err := rv.validate.Struct(req); err != nil {
		return err
	}
	if req.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	return nil
}

// ValidateUpdateProduct checks an update payload.
func (rv *RequestValidator) ValidateUpdateProduct(req *UpdateProductRequest) error {
	if req.Name == nil && req.Price == nil && req.InventoryQuantity == nil {
		return errors.New("no update fields provided")
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return errors.New("price cannot be negative")
	}
	if req.InventoryQuantity != nil && *req.InventoryQuantity < 0 {
		return errors.New("inventory_quantity cannot be negative")
	}
	return nil
}

func parseDecimalQuery(c *gin.Context, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.New("invalid " + name + " value")
	}
	return &parsed, nil
}

func parseIntQuery(c *gin.Context, name string) (*int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil, errors.New("invalid " + name + " value")
	}
	return &parsed, nil
}
