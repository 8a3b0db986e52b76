package importer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ibrahim77gh/shopify-products/models"
)

// Catalog is the slice of the product store the pipeline needs. The gorm
// product repository satisfies it; tests use an in-memory implementation.
// FindBySKU returns (nil, nil) when no product matches.
type Catalog interface {
	FindBySKU(ctx context.Context, sku string) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

// ActionType classifies what the reconciler decided for a row.
type ActionType string

const (
	ActionCreate ActionType = "create"
	ActionUpdate ActionType = "update"
	ActionSkip   ActionType = "skip"
)

// Action is the reconciler's decision for one valid record. For updates,
// Deltas holds only the changed columns and Before the stored row they were
// compared against.
type Action struct {
	Type      ActionType
	Record    ValidRecord
	ProductID uuid.UUID
	Deltas    map[string]interface{}
	Before    *models.Product
	Reason    models.RejectionReason
}

// Reconciler decides create/update/skip per record. Its batch state lives
// for one import run only: BeginBatch must be called with every valid
// record of the run before Reconcile is called for any of them, so that
// duplicate SKUs within the feed resolve last-write-wins.
type Reconciler struct {
	catalog  Catalog
	lastLine map[string]int
}

func NewReconciler(catalog Catalog) *Reconciler {
	return &Reconciler{
		catalog:  catalog,
		lastLine: make(map[string]int),
	}
}

// BeginBatch registers the valid records of the run and remembers, per SKU,
// the last row it appears on.
func (r *Reconciler) BeginBatch(records []ValidRecord) {
	for _, rec := range records {
		r.lastLine[rec.SKU] = rec.Line
	}
}

// Reconcile maps a valid record to an action. Earlier duplicates of a SKU
// within the batch are skipped; the surviving record is compared against
// the stored catalog row by exact, case-sensitive SKU match.
func (r *Reconciler) Reconcile(ctx context.Context, rec ValidRecord) (Action, error) {
	if last, ok := r.lastLine[rec.SKU]; ok && last != rec.Line {
		return Action{
			Type:   ActionSkip,
			Record: rec,
			Reason: models.ReasonDuplicateInBatch,
		}, nil
	}

	existing, err := r.catalog.FindBySKU(ctx, rec.SKU)
	if err != nil {
		return Action{}, fmt.Errorf("catalog lookup for sku %q: %w", rec.SKU, err)
	}

	if existing == nil {
		return Action{Type: ActionCreate, Record: rec}, nil
	}

	deltas := make(map[string]interface{})
	if existing.Name != rec.Name {
		deltas["name"] = rec.Name
	}
	if !existing.Price.Equal(rec.Price) {
		deltas["price"] = rec.Price
	}
	if existing.InventoryQuantity != rec.Quantity {
		deltas["inventory_quantity"] = rec.Quantity
	}

	if len(deltas) == 0 {
		return Action{
			Type:   ActionSkip,
			Record: rec,
			Before: existing,
			Reason: models.ReasonNoChange,
		}, nil
	}

	return Action{
		Type:      ActionUpdate,
		Record:    rec,
		ProductID: existing.ID,
		Deltas:    deltas,
		Before:    existing,
	}, nil
}
