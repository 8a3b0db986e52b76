package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim77gh/shopify-products/models"
)

// memCatalog is an in-memory Catalog implementation for tests.
type memCatalog struct {
	products  map[string]*models.Product
	failSKU   map[string]bool
	lookupErr error
}

func newMemCatalog() *memCatalog {
	return &memCatalog{
		products: make(map[string]*models.Product),
		failSKU:  make(map[string]bool),
	}
}

func (m *memCatalog) seed(name, sku, price string, qty int) *models.Product {
	p := &models.Product{
		ID:                uuid.New(),
		Name:              name,
		SKU:               sku,
		Price:             decimal.RequireFromString(price),
		InventoryQuantity: qty,
	}
	m.products[sku] = p
	return p
}

func (m *memCatalog) FindBySKU(_ context.Context, sku string) (*models.Product, error) {
	if m.lookupErr != nil {
		return nil, m.lookupErr
	}
	return m.products[sku], nil
}

func (m *memCatalog) Create(_ context.Context, product *models.Product) error {
	if m.failSKU[product.SKU] {
		return errors.New("write failed")
	}
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	m.products[product.SKU] = product
	return nil
}

func (m *memCatalog) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	for _, p := range m.products {
		if p.ID != id {
			continue
		}
		if m.failSKU[p.SKU] {
			return errors.New("write failed")
		}
		if name, ok := updates["name"].(string); ok {
			p.Name = name
		}
		if price, ok := updates["price"].(decimal.Decimal); ok {
			p.Price = price
		}
		if qty, ok := updates["inventory_quantity"].(int); ok {
			p.InventoryQuantity = qty
		}
		return nil
	}
	return fmt.Errorf("product %s not found", id)
}

func validRec(name, sku, price string, qty, line int) ValidRecord {
	return ValidRecord{
		Name:     name,
		SKU:      sku,
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		Line:     line,
	}
}

func TestReconcile_CreateForNewSKU(t *testing.T) {
	catalog := newMemCatalog()
	r := NewReconciler(catalog)
	rec := validRec("Red T-Shirt", "TSHIRT-RED-S", "19.99", 150, 1)
	r.BeginBatch([]ValidRecord{rec})

	action, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action.Type)
}

func TestReconcile_UpdateWithChangedFieldsOnly(t *testing.T) {
	catalog := newMemCatalog()
	existing := catalog.seed("Red T-Shirt", "TSHIRT-RED-S", "19.99", 150)

	r := NewReconciler(catalog)
	rec := validRec("Red T-Shirt", "TSHIRT-RED-S", "20.00", 160, 1)
	r.BeginBatch([]ValidRecord{rec})

	action, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdate, action.Type)
	assert.Equal(t, existing.ID, action.ProductID)

	// Name is unchanged so the delta carries only price and quantity.
	assert.NotContains(t, action.Deltas, "name")
	assert.Contains(t, action.Deltas, "price")
	assert.Contains(t, action.Deltas, "inventory_quantity")
}

func TestReconcile_NoChangeIsSkip(t *testing.T) {
	catalog := newMemCatalog()
	catalog.seed("Red T-Shirt", "TSHIRT-RED-S", "19.99", 150)

	r := NewReconciler(catalog)
	rec := validRec("Red T-Shirt", "TSHIRT-RED-S", "19.99", 150, 1)
	r.BeginBatch([]ValidRecord{rec})

	action, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, action.Type)
	assert.Equal(t, models.ReasonNoChange, action.Reason)
}

func TestReconcile_PriceComparedByValueNotRepresentation(t *testing.T) {
	catalog := newMemCatalog()
	catalog.seed("Item", "ITEM-1", "5.00", 10)

	r := NewReconciler(catalog)
	rec := validRec("Item", "ITEM-1", "5", 10, 1)
	r.BeginBatch([]ValidRecord{rec})

	action, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, action.Type)
}

func TestReconcile_DuplicateInBatchLastWriteWins(t *testing.T) {
	catalog := newMemCatalog()
	r := NewReconciler(catalog)

	first := validRec("Red T-Shirt", "TSHIRT-RED-S", "19.99", 150, 1)
	second := validRec("Red T-Shirt", "TSHIRT-RED-S", "20.00", 160, 2)
	r.BeginBatch([]ValidRecord{first, second})

	action, err := r.Reconcile(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, ActionSkip, action.Type)
	assert.Equal(t, models.ReasonDuplicateInBatch, action.Reason)

	action, err = r.Reconcile(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action.Type)
	assert.True(t, action.Record.Price.Equal(decimal.RequireFromString("20.00")))
}

func TestReconcile_SKUMatchIsCaseSensitive(t *testing.T) {
	catalog := newMemCatalog()
	catalog.seed("Item", "item-1", "5.00", 10)

	r := NewReconciler(catalog)
	rec := validRec("Item", "ITEM-1", "5.00", 10, 1)
	r.BeginBatch([]ValidRecord{rec})

	action, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, ActionCreate, action.Type)
}

func TestReconcile_LookupFailure(t *testing.T) {
	catalog := newMemCatalog()
	catalog.lookupErr = errors.New("connection refused")

	r := NewReconciler(catalog)
	rec := validRec("Item", "ITEM-1", "5.00", 10, 1)
	r.BeginBatch([]ValidRecord{rec})

	_, err := r.Reconcile(context.Background(), rec)
	require.Error(t, err)
}
