package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/ibrahim77gh/shopify-products/models"
)

// ReportBuilder accumulates per-row outcomes into an ImportSummary. It is
// purely additive; Record must be called once per data row in source order
// and Finalize once at the end of the run.
type ReportBuilder struct {
	summary models.ImportSummary
}

func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

// RecordRejected counts a row rejected with the given reason.
func (b *ReportBuilder) RecordRejected(line int, sku string, reason models.RejectionReason, detail string) {
	b.summary.TotalRows++
	b.summary.RejectedCount++
	b.summary.RowResults = append(b.summary.RowResults, models.RowResult{
		Row:    line,
		SKU:    sku,
		Status: models.RowRejected,
		Reason: reason,
		Detail: detail,
	})
}

// RecordSkipped counts a row the reconciler decided not to apply. Skips are
// not errors.
func (b *ReportBuilder) RecordSkipped(line int, sku string, reason models.RejectionReason) {
	b.summary.TotalRows++
	b.summary.SkippedCount++
	b.summary.RowResults = append(b.summary.RowResults, models.RowResult{
		Row:    line,
		SKU:    sku,
		Status: models.RowSkipped,
		Reason: reason,
	})
}

// RecordCreated counts a committed create.
func (b *ReportBuilder) RecordCreated(line int, rec ValidRecord) {
	b.summary.TotalRows++
	b.summary.CreatedCount++
	b.summary.RowResults = append(b.summary.RowResults, models.RowResult{
		Row:    line,
		SKU:    rec.SKU,
		Status: models.RowCreated,
	})
	b.summary.Changes = append(b.summary.Changes, models.InventoryChange{
		SKU:         rec.SKU,
		Name:        rec.Name,
		Created:     true,
		NewPrice:    rec.Price,
		NewQuantity: rec.Quantity,
	})
}

// RecordUpdated counts a committed update against the previously stored row.
func (b *ReportBuilder) RecordUpdated(line int, rec ValidRecord, before *models.Product) {
	b.summary.TotalRows++
	b.summary.UpdatedCount++
	b.summary.RowResults = append(b.summary.RowResults, models.RowResult{
		Row:    line,
		SKU:    rec.SKU,
		Status: models.RowUpdated,
	})
	b.summary.Changes = append(b.summary.Changes, models.InventoryChange{
		SKU:         rec.SKU,
		Name:        rec.Name,
		OldPrice:    before.Price,
		NewPrice:    rec.Price,
		OldQuantity: before.InventoryQuantity,
		NewQuantity: rec.Quantity,
	})
}

// Finalize returns the completed summary. The builder must not be used
// afterwards.
func (b *ReportBuilder) Finalize() models.ImportSummary {
	return b.summary
}

// RenderEmailBody renders the summary as the plain-text report that gets
// emailed after each run.
func RenderEmailBody(s models.ImportSummary, now time.Time) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Inventory Import and Update Report - %s\n\n", now.Format("2006-01-02 15:04:05"))
	sb.WriteString("--- Summary ---\n")
	fmt.Fprintf(&sb, "Total rows processed from CSV: %d\n", s.TotalRows)
	fmt.Fprintf(&sb, "New products created: %d\n", s.CreatedCount)
	fmt.Fprintf(&sb, "Existing products updated: %d\n", s.UpdatedCount)
	fmt.Fprintf(&sb, "Rows skipped (duplicates / no change): %d\n", s.SkippedCount)
	fmt.Fprintf(&sb, "Rows rejected due to errors: %d\n\n", s.RejectedCount)

	if len(s.Changes) > 0 {
		sb.WriteString("--- Products with Inventory Changes ---\n")
		for _, c := range s.Changes {
			if c.Created {
				fmt.Fprintf(&sb, "Created: %s (SKU: %s) price %s, qty %d\n",
					c.Name, c.SKU, c.NewPrice.StringFixed(2), c.NewQuantity)
			} else {
				fmt.Fprintf(&sb, "Updated: %s (SKU: %s) price %s -> %s, qty %d -> %d\n",
					c.Name, c.SKU,
					c.OldPrice.StringFixed(2), c.NewPrice.StringFixed(2),
					c.OldQuantity, c.NewQuantity)
			}
		}
		sb.WriteString("\n")
	}

	rejected := false
	for _, r := range s.RowResults {
		if r.Status != models.RowRejected {
			continue
		}
		if !rejected {
			sb.WriteString("--- Errors/Warnings ---\n")
			rejected = true
		}
		line := fmt.Sprintf("Row %d: %s", r.Row, r.Reason)
		if r.SKU != "" {
			line += fmt.Sprintf(" (SKU: %s)", r.SKU)
		}
		if r.Detail != "" {
			line += " - " + r.Detail
		}
		sb.WriteString(line + "\n")
	}
	if !rejected {
		sb.WriteString("No errors reported during import.\n")
	}

	return sb.String()
}
