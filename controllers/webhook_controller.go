package controllers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ibrahim77gh/shopify-products/models"
	"github.com/ibrahim77gh/shopify-products/repository"
)

// WebhookController ingests inventory events pushed by Shopify. Requests
// are authenticated by HMAC-SHA256 signature over the raw body, not by the
// API's bearer tokens.
type WebhookController struct {
	repo   repository.ProductRepository
	cache  *CacheManager
	secret []byte
	logger *zap.Logger
}

func NewWebhookController(repo repository.ProductRepository, cache *CacheManager, secret string, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		repo:   repo,
		cache:  cache,
		secret: []byte(secret),
		logger: logger,
	}
}

type shopifyVariant struct {
	SKU               string  `json:"sku"`
	Title             string  `json:"title"`
	Price             *string `json:"price"`
	InventoryQuantity *int    `json:"inventory_quantity"`
}

type shopifyProductPayload struct {
	Title    string           `json:"title"`
	Variants []shopifyVariant `json:"variants"`
}

// HandleShopifyWebhook verifies the signature and dispatches the payload by
// topic.
func (wc *WebhookController) HandleShopifyWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	signature := c.GetHeader("X-Shopify-Hmac-Sha256")
	if !wc.verifySignature(body, signature) {
		wc.logger.Warn("Webhook signature mismatch", zap.String("received", signature))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized webhook request: Invalid HMAC signature."})
		return
	}

	var payload shopifyProductPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		wc.logger.Error("Invalid JSON payload received for webhook", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON payload."})
		return
	}

	topic := c.GetHeader("X-Shopify-Topic")
	wc.logger.Info("Received Shopify webhook", zap.String("topic", topic))

	ctx, cancel := context.WithTimeout(c.Request.Context(), DefaultContextTimeout)
	defer cancel()

	switch topic {
	case "products/create":
		details := wc.handleProductCreate(ctx, payload)
		c.JSON(http.StatusOK, gin.H{"message": "Product creation webhook processed.", "details": details})
	case "products/update":
		details := wc.handleProductUpdate(ctx, payload)
		c.JSON(http.StatusOK, gin.H{"message": "Product update webhook processed.", "details": details})
	default:
		wc.logger.Info("Unhandled Shopify webhook topic", zap.String("topic", topic))
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Webhook received, but topic '%s' is not handled.", topic),
		})
	}
}

// verifySignature checks the base64 HMAC-SHA256 of the raw body in constant
// time.
func (wc *WebhookController) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, wc.secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// handleProductCreate creates a product per variant. Existing SKUs are
// acknowledged but not recreated; the update webhook covers those.
func (wc *WebhookController) handleProductCreate(ctx context.Context, payload shopifyProductPayload) []gin.H {
	var details []gin.H

	for _, variant := range payload.Variants {
		if variant.SKU == "" {
			wc.logger.Warn("Skipping variant due to missing SKU", zap.String("product", payload.Title))
			details = append(details, gin.H{"sku": "N/A", "status": "skipped", "reason": "Missing SKU"})
			continue
		}

		existing, err := wc.repo.FindBySKU(ctx, variant.SKU)
		if err != nil {
			wc.logger.Error("SKU lookup failed", zap.String("sku", variant.SKU), zap.Error(err))
			details = append(details, gin.H{"sku": variant.SKU, "status": "error", "message": err.Error()})
			continue
		}
		if existing != nil {
			wc.logger.Info("Product already exists, not re-creating", zap.String("sku", variant.SKU))
			details = append(details, gin.H{"sku": variant.SKU, "status": "exists", "product_id": existing.ID})
			continue
		}

		product := &models.Product{
			Name:              variantName(payload.Title, variant),
			SKU:               variant.SKU,
			Price:             variantPrice(variant),
			InventoryQuantity: variantQuantity(variant),
		}
		if err := wc.repo.Create(ctx, product); err != nil {
			wc.logger.Error("Failed to create product from webhook", zap.String("sku", variant.SKU), zap.Error(err))
			details = append(details, gin.H{"sku": variant.SKU, "status": "error", "message": err.Error()})
			continue
		}

		wc.logger.Info("Created product from webhook", zap.String("sku", variant.SKU))
		details = append(details, gin.H{"sku": variant.SKU, "status": "created", "product_id": product.ID})
	}

	wc.invalidateCache(ctx)
	return details
}

// handleProductUpdate updates name/price/quantity of existing products when
// they changed.
func (wc *WebhookController) handleProductUpdate(ctx context.Context, payload shopifyProductPayload) []gin.H {
	var details []gin.H

	for _, variant := range payload.Variants {
		if variant.SKU == "" {
			details = append(details, gin.H{"sku": "N/A", "status": "skipped", "reason": "Missing SKU"})
			continue
		}

		existing, err := wc.repo.FindBySKU(ctx, variant.SKU)
		if err != nil {
			wc.logger.Error("SKU lookup failed", zap.String("sku", variant.SKU), zap.Error(err))
			details = append(details, gin.H{"sku": variant.SKU, "status": "error", "message": err.Error()})
			continue
		}
		if existing == nil {
			wc.logger.Warn("Product not found during update webhook", zap.String("sku", variant.SKU))
			details = append(details, gin.H{"sku": variant.SKU, "status": "not_found", "message": "Product not found in local DB."})
			continue
		}

		updates := make(map[string]interface{})
		if name := variantName(payload.Title, variant); existing.Name != name {
			updates["name"] = name
		}
		if variant.Price != nil {
			if price, err := decimal.NewFromString(*variant.Price); err == nil && !existing.Price.Equal(price) {
				updates["price"] = price
			}
		}
		if variant.InventoryQuantity != nil && existing.InventoryQuantity != *variant.InventoryQuantity {
			updates["inventory_quantity"] = *variant.InventoryQuantity
		}

		if len(updates) == 0 {
			details = append(details, gin.H{"sku": variant.SKU, "status": "no_change"})
			continue
		}

		if err := wc.repo.Update(ctx, existing.ID, updates); err != nil {
			wc.logger.Error("Failed to update product from webhook", zap.String("sku", variant.SKU), zap.Error(err))
			details = append(details, gin.H{"sku": variant.SKU, "status": "error", "message": err.Error()})
			continue
		}

		wc.logger.Info("Updated product from webhook", zap.String("sku", variant.SKU))
		details = append(details, gin.H{"sku": variant.SKU, "status": "updated"})
	}

	wc.invalidateCache(ctx)
	return details
}

func (wc *WebhookController) invalidateCache(ctx context.Context) {
	if err := wc.cache.Invalidate(ctx); err != nil {
		wc.logger.Warn("Failed to invalidate product cache", zap.Error(err))
	}
}

func variantName(title string, variant shopifyVariant) string {
	variantTitle := variant.Title
	if variantTitle == "" {
		variantTitle = "Default"
	}
	return title + " - " + variantTitle
}

func variantPrice(variant shopifyVariant) decimal.Decimal {
	if variant.Price == nil {
		return decimal.Zero
	}
	price, err := decimal.NewFromString(*variant.Price)
	if err != nil {
		return decimal.Zero
	}
	return price
}

func variantQuantity(variant shopifyVariant) int {
	if variant.InventoryQuantity == nil {
		return 0
	}
	return *variant.InventoryQuantity
}
