package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/ibrahim77gh/shopify-products/controllers"
	"github.com/ibrahim77gh/shopify-products/middleware"
)

// RegisterRoutes wires all HTTP endpoints. Listing products and the signed
// webhook are public; everything else requires a bearer token.
func RegisterRoutes(
	r *gin.Engine,
	products *controllers.ProductController,
	webhooks *controllers.WebhookController,
	imports *controllers.ImportController,
	jwtSecret string,
) {
	auth := middleware.RequireAuth(jwtSecret)

	productRoutes := r.Group("/products")
	{
		productRoutes.GET("/", products.GetProducts)
		productRoutes.GET("/:id", auth, products.GetProductByID)
		productRoutes.POST("/", auth, products.CreateProduct)
		productRoutes.PUT("/:id", auth, products.UpdateProduct)
		productRoutes.DELETE("/:id", auth, products.DeleteProduct)

		productRoutes.POST("/import", auth, imports.TriggerImport)
		productRoutes.GET("/import/:id", auth, imports.GetImportJobStatus)
	}

	r.POST("/shopify-webhook", middleware.RateLimitMiddleware(), webhooks.HandleShopifyWebhook)
}
