package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a catalog entry tracked by the inventory system.
// SKU is the unique business key; ID is the internal identifier.
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"size:255;index" json:"name"`
	SKU               string          `gorm:"size:100;uniqueIndex" json:"sku"`
	Price             decimal.Decimal `gorm:"type:numeric(10,2);index" json:"price"`
	InventoryQuantity int             `gorm:"index;check:inventory_quantity >= 0" json:"inventory_quantity"`
	LastUpdated       time.Time       `gorm:"autoUpdateTime;index" json:"last_updated"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *Product) String() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.SKU)
}
