package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ibrahim77gh/shopify-products/models"
	"github.com/ibrahim77gh/shopify-products/sender"
)

const reportSubject = "Daily Inventory Import and Update Report"

// ErrSourceUnavailable marks the one run-fatal condition: the feed could
// not be opened at all. Row-level failures never abort a run.
var ErrSourceUnavailable = fmt.Errorf("source_unavailable")

// Importer drives the nightly pipeline: stream rows through parse ->
// validate -> reconcile, commit the resulting actions, then build and email
// the summary report. One Run is strictly sequential; callers (the queue
// worker) guarantee at most one run at a time.
type Importer struct {
	catalog       Catalog
	emails        sender.EmailSender
	logger        *zap.Logger
	defaultSource string
}

// New builds an importer. emails may be nil, in which case reports are only
// logged; defaultSource is the bundled sample feed used when Run gets an
// empty source.
func New(catalog Catalog, emails sender.EmailSender, logger *zap.Logger, defaultSource string) *Importer {
	return &Importer{
		catalog:       catalog,
		emails:        emails,
		logger:        logger,
		defaultSource: defaultSource,
	}
}

// Run opens the named feed (or the bundled sample when source is empty) and
// imports it. The file handle is released on every exit path.
func (imp *Importer) Run(ctx context.Context, source, recipient string) (*models.ImportSummary, error) {
	path := source
	if path == "" {
		path = imp.defaultSource
		imp.logger.Info("no source given, importing bundled sample feed", zap.String("path", path))
	}

	f, err := os.Open(path)
	if err != nil {
		imp.logger.Error("cannot open import source", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("%w: open %s: %v", ErrSourceUnavailable, path, err)
	}
	defer f.Close()

	return imp.RunReader(ctx, f, recipient)
}

// RunReader imports a CSV feed from an already-open reader.
func (imp *Importer) RunReader(ctx context.Context, r io.Reader, recipient string) (*models.ImportSummary, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: csv must include a header row", ErrSourceUnavailable)
	}
	parser, err := NewParser(header)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	// First pass: parse and validate every row. Outcomes are buffered so
	// duplicate SKUs can resolve last-write-wins before anything is
	// committed or reported.
	var outcomes []ValidationOutcome
	var valid []ValidRecord
	line := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			outcomes = append(outcomes, ValidationOutcome{Line: line, Reason: models.ReasonMalformedRow})
			continue
		}
		outcome := Validate(parser.Parse(RawRow{Fields: fields, Line: line}))
		outcomes = append(outcomes, outcome)
		if outcome.Valid() {
			valid = append(valid, *outcome.Record)
		}
	}

	reconciler := NewReconciler(imp.catalog)
	reconciler.BeginBatch(valid)

	// Second pass: reconcile and commit in source-row order, feeding every
	// outcome to the report builder.
	report := NewReportBuilder()
	for _, outcome := range outcomes {
		if !outcome.Valid() {
			report.RecordRejected(outcome.Line, outcome.SKU, outcome.Reason, "")
			imp.logger.Warn("row rejected",
				zap.Int("row", outcome.Line),
				zap.String("reason", string(outcome.Reason)),
			)
			continue
		}
		imp.applyRecord(ctx, reconciler, report, *outcome.Record)
	}

	summary := report.Finalize()
	imp.logger.Info("import run completed",
		zap.Int("total", summary.TotalRows),
		zap.Int("created", summary.CreatedCount),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("skipped", summary.SkippedCount),
		zap.Int("rejected", summary.RejectedCount),
	)

	imp.dispatchReport(ctx, &summary, recipient)
	return &summary, nil
}

// applyRecord reconciles one valid record and commits the resulting action.
// Storage failures reject the row and the run continues.
func (imp *Importer) applyRecord(ctx context.Context, reconciler *Reconciler, report *ReportBuilder, rec ValidRecord) {
	action, err := reconciler.Reconcile(ctx, rec)
	if err != nil {
		report.RecordRejected(rec.Line, rec.SKU, models.ReasonStorageError, err.Error())
		imp.logger.Error("catalog lookup failed", zap.String("sku", rec.SKU), zap.Error(err))
		return
	}

	switch action.Type {
	case ActionSkip:
		report.RecordSkipped(rec.Line, rec.SKU, action.Reason)

	case ActionCreate:
		product := &models.Product{
			Name:              rec.Name,
			SKU:               rec.SKU,
			Price:             rec.Price,
			InventoryQuantity: rec.Quantity,
		}
		if err := imp.catalog.Create(ctx, product); err != nil {
			report.RecordRejected(rec.Line, rec.SKU, models.ReasonStorageError, err.Error())
			imp.logger.Error("product create failed", zap.String("sku", rec.SKU), zap.Error(err))
			return
		}
		report.RecordCreated(rec.Line, rec)
		imp.logger.Info("created product", zap.String("sku", rec.SKU))

	case ActionUpdate:
		if err := imp.catalog.Update(ctx, action.ProductID, action.Deltas); err != nil {
			report.RecordRejected(rec.Line, rec.SKU, models.ReasonStorageError, err.Error())
			imp.logger.Error("product update failed", zap.String("sku", rec.SKU), zap.Error(err))
			return
		}
		report.RecordUpdated(rec.Line, rec, action.Before)
		imp.logger.Info("updated product", zap.String("sku", rec.SKU))
	}
}

// dispatchReport emails the rendered summary. Notification failure never
// fails the import; it is logged and noted on the summary.
func (imp *Importer) dispatchReport(ctx context.Context, summary *models.ImportSummary, recipient string) {
	body := RenderEmailBody(*summary, time.Now())

	if imp.emails == nil || recipient == "" {
		imp.logger.Info("no email recipient configured, skipping report dispatch")
		return
	}

	if _, err := imp.emails.SendEmail(ctx, recipient, reportSubject, body); err != nil {
		summary.EmailError = err.Error()
		imp.logger.Error("failed to email import report",
			zap.String("recipient", recipient),
			zap.Error(err),
		)
		return
	}
	imp.logger.Info("import report emailed", zap.String("recipient", recipient))
}
