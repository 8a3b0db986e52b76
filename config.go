package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds all environment variables for the service.
type Config struct {
	Env                  string // "production" or "development"
	Port                 string // HTTP port (default: 8082)
	JWTSecret            string // shared secret for API bearer tokens
	ShopifyWebhookSecret string // HMAC secret for webhook signatures
	MockCSVPath          string // bundled sample feed used when a job has no source
	ImportStorageDir     string // where uploaded feeds are persisted for the worker
	ReportRecipient      string // default recipient for import summary emails
}

// LoadConfig loads environment variables into Config and validates them.
func LoadConfig() (*Config, error) {
	// .env is optional; system environment variables take precedence.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                  os.Getenv("APP_ENV"),
		Port:                 os.Getenv("PORT"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		ShopifyWebhookSecret: os.Getenv("SHOPIFY_WEBHOOK_SECRET"),
		MockCSVPath:          os.Getenv("MOCK_CSV_PATH"),
		ImportStorageDir:     os.Getenv("IMPORT_STORAGE_DIR"),
		ReportRecipient:      os.Getenv("REPORT_RECIPIENT"),
	}

	if cfg.Env == "" {
		cfg.Env = "development"
	}
	if cfg.Port == "" {
		cfg.Port = "8082"
	}
	if cfg.MockCSVPath == "" {
		cfg.MockCSVPath = "./mock_products.csv"
	}
	if cfg.ImportStorageDir == "" {
		cfg.ImportStorageDir = "./data/imports"
	}
	if cfg.ReportRecipient == "" {
		cfg.ReportRecipient = "admin@inventory.com"
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.ShopifyWebhookSecret == "" {
		return nil, fmt.Errorf("SHOPIFY_WEBHOOK_SECRET is required")
	}

	return cfg, nil
}
