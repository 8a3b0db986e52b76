package models

import "github.com/shopspring/decimal"

// RowStatus classifies the outcome of a single CSV row.
type RowStatus string

const (
	RowCreated  RowStatus = "created"
	RowUpdated  RowStatus = "updated"
	RowSkipped  RowStatus = "skipped"
	RowRejected RowStatus = "rejected"
)

// RejectionReason is the fixed set of per-row error and skip codes.
type RejectionReason string

const (
	ReasonMalformedRow     RejectionReason = "malformed_row"
	ReasonMissingSKU       RejectionReason = "missing_sku"
	ReasonMissingName      RejectionReason = "missing_name"
	ReasonInvalidPrice     RejectionReason = "invalid_price"
	ReasonInvalidQuantity  RejectionReason = "invalid_quantity"
	ReasonDuplicateInBatch RejectionReason = "duplicate_in_batch"
	ReasonNoChange         RejectionReason = "no_change"
	ReasonStorageError     RejectionReason = "storage_error"
)

// RowResult records what happened to one data row of the feed.
type RowResult struct {
	Row    int             `json:"row"`
	SKU    string          `json:"sku,omitempty"`
	Status RowStatus       `json:"status"`
	Reason RejectionReason `json:"reason,omitempty"`
	Detail string          `json:"detail,omitempty"`
}

// InventoryChange describes a committed create or update for the report.
type InventoryChange struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Created     bool            `json:"created"`
	OldPrice    decimal.Decimal `json:"old_price"`
	NewPrice    decimal.Decimal `json:"new_price"`
	OldQuantity int             `json:"old_quantity"`
	NewQuantity int             `json:"new_quantity"`
}

// ImportSummary aggregates the outcome of one full import run.
// CreatedCount + UpdatedCount + SkippedCount + RejectedCount always equals
// TotalRows (data rows, header excluded).
type ImportSummary struct {
	TotalRows     int               `json:"total_rows"`
	CreatedCount  int               `json:"created_count"`
	UpdatedCount  int               `json:"updated_count"`
	SkippedCount  int               `json:"skipped_count"`
	RejectedCount int               `json:"rejected_count"`
	Changes       []InventoryChange `json:"changes,omitempty"`
	RowResults    []RowResult       `json:"row_results,omitempty"`
	EmailError    string            `json:"email_error,omitempty"`
}
