package importer

import (
	"github.com/shopspring/decimal"

	"github.com/ibrahim77gh/shopify-products/models"
)

// ValidRecord is a fully validated row: non-empty name and SKU, price >= 0,
// quantity >= 0. Constructed only by Validate, so no partially valid state
// exists downstream.
type ValidRecord struct {
	Name     string
	SKU      string
	Price    decimal.Decimal
	Quantity int
	Line     int
}

// ValidationOutcome is either a valid record or a rejection with a single
// reason code.
type ValidationOutcome struct {
	Record *ValidRecord
	Line   int
	SKU    string
	Reason models.RejectionReason
}

// Valid reports whether the outcome carries a usable record.
func (o ValidationOutcome) Valid() bool {
	return o.Record != nil
}

// Validate applies the field rules in a fixed order: structure, sku, name,
// price, quantity. The first failing rule determines the reported reason,
// so rejection reasons are deterministic for rows with multiple defects.
func Validate(candidate CandidateRecord) ValidationOutcome {
	outcome := ValidationOutcome{Line: candidate.Line, SKU: candidate.SKU}

	switch {
	case candidate.Malformed:
		outcome.Reason = models.ReasonMalformedRow
	case candidate.SKU == "":
		outcome.Reason = models.ReasonMissingSKU
	case candidate.Name == "":
		outcome.Reason = models.ReasonMissingName
	case candidate.Price == nil || candidate.Price.IsNegative():
		outcome.Reason = models.ReasonInvalidPrice
	case candidate.Quantity == nil || *candidate.Quantity < 0:
		outcome.Reason = models.ReasonInvalidQuantity
	default:
		outcome.Record = &ValidRecord{
			Name:     candidate.Name,
			SKU:      candidate.SKU,
			Price:    *candidate.Price,
			Quantity: *candidate.Quantity,
			Line:     candidate.Line,
		}
	}

	return outcome
}
