package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ibrahim77gh/shopify-products/controllers"
	"github.com/ibrahim77gh/shopify-products/models"
	"github.com/ibrahim77gh/shopify-products/repository"
)

func newProductRouter(repo repository.ProductRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	pc := controllers.NewProductController(
		repo,
		controllers.NewCacheManager(nil),
		controllers.NewRequestValidator(),
		zap.NewNop(),
	)
	r := gin.New()
	r.GET("/products", pc.GetProducts)
	r.GET("/products/:id", pc.GetProductByID)
	r.POST("/products", pc.CreateProduct)
	r.PUT("/products/:id", pc.UpdateProduct)
	r.DELETE("/products/:id", pc.DeleteProduct)
	return r
}

func doJSON(r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Reader
	if payload != nil {
		data, _ := json.Marshal(payload)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProduct(t *testing.T) {
	repo := newMockProductRepository()
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodPost, "/products", map[string]interface{}{
		"name":               "Red T-Shirt",
		"sku":                "TSHIRT-RED-S",
		"price":              19.99,
		"inventory_quantity": 150,
	})

	require.Equal(t, http.StatusCreated, w.Code)
	created := repo.products["TSHIRT-RED-S"]
	require.NotNil(t, created)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("19.99")))
}

func TestCreateProduct_DuplicateSKU(t *testing.T) {
	repo := newMockProductRepository()
	repo.products["TSHIRT-RED-S"] = &models.Product{ID: uuid.New(), SKU: "TSHIRT-RED-S"}
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodPost, "/products", map[string]interface{}{
		"name":               "Red T-Shirt",
		"sku":                "TSHIRT-RED-S",
		"price":              19.99,
		"inventory_quantity": 150,
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	repo := newMockProductRepository()
	r := newProductRouter(repo)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"missing name", map[string]interface{}{"sku": "S-1", "price": 1, "inventory_quantity": 1}},
		{"missing sku", map[string]interface{}{"name": "N", "price": 1, "inventory_quantity": 1}},
		{"negative price", map[string]interface{}{"name": "N", "sku": "S-1", "price": -1, "inventory_quantity": 1}},
		{"negative quantity", map[string]interface{}{"name": "N", "sku": "S-1", "price": 1, "inventory_quantity": -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/products", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, repo.products)
}

func TestGetProductByID(t *testing.T) {
	repo := newMockProductRepository()
	product := &models.Product{
		ID:                uuid.New(),
		Name:              "Red T-Shirt",
		SKU:               "TSHIRT-RED-S",
		Price:             decimal.RequireFromString("19.99"),
		InventoryQuantity: 150,
	}
	repo.products[product.SKU] = product
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodGet, "/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TSHIRT-RED-S")

	w = doJSON(r, http.MethodGet, "/products/"+uuid.New().String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateProduct(t *testing.T) {
	repo := newMockProductRepository()
	product := &models.Product{
		ID:                uuid.New(),
		Name:              "Red T-Shirt",
		SKU:               "TSHIRT-RED-S",
		Price:             decimal.RequireFromString("19.99"),
		InventoryQuantity: 150,
	}
	repo.products[product.SKU] = product
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodPut, "/products/"+product.ID.String(), map[string]interface{}{
		"inventory_quantity": 120,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 120, repo.products["TSHIRT-RED-S"].InventoryQuantity)
	// Untouched fields are preserved.
	assert.Equal(t, "Red T-Shirt", repo.products["TSHIRT-RED-S"].Name)
}

func TestUpdateProduct_EmptyBody(t *testing.T) {
	repo := newMockProductRepository()
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodPut, "/products/"+uuid.New().String(), map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	repo := newMockProductRepository()
	product := &models.Product{ID: uuid.New(), SKU: "TSHIRT-RED-S"}
	repo.products[product.SKU] = product
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodDelete, "/products/"+product.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.products)

	w = doJSON(r, http.MethodDelete, "/products/"+product.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetProducts_Pagination(t *testing.T) {
	repo := newMockProductRepository()
	repo.products["A-1"] = &models.Product{ID: uuid.New(), SKU: "A-1", Name: "A"}
	r := newProductRouter(repo)

	w := doJSON(r, http.MethodGet, "/products?page=1&perPage=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = doJSON(r, http.MethodGet, "/products?page=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/products?price__gte=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
