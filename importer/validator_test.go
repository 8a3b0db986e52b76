package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ibrahim77gh/shopify-products/models"
)

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(i int) *int { return &i }

func TestValidate_ValidRecord(t *testing.T) {
	outcome := Validate(CandidateRecord{
		Name:     "Red T-Shirt",
		SKU:      "TSHIRT-RED-S",
		Price:    decPtr("19.99"),
		Quantity: intPtr(150),
		Line:     1,
	})

	require.True(t, outcome.Valid())
	assert.Equal(t, "Red T-Shirt", outcome.Record.Name)
	assert.Equal(t, "TSHIRT-RED-S", outcome.Record.SKU)
	assert.True(t, outcome.Record.Price.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 150, outcome.Record.Quantity)
	assert.Equal(t, 1, outcome.Record.Line)
}

func TestValidate_ZeroValuesAreValid(t *testing.T) {
	outcome := Validate(CandidateRecord{
		Name:     "Free Sample",
		SKU:      "SAMPLE-1",
		Price:    decPtr("0"),
		Quantity: intPtr(0),
		Line:     1,
	})
	assert.True(t, outcome.Valid())
}

func TestValidate_RejectionReasons(t *testing.T) {
	tests := []struct {
		name      string
		candidate CandidateRecord
		want      models.RejectionReason
	}{
		{
			name:      "malformed row",
			candidate: CandidateRecord{Malformed: true, Line: 1},
			want:      models.ReasonMalformedRow,
		},
		{
			name:      "missing sku",
			candidate: CandidateRecord{Name: "Invalid Product", Price: decPtr("20.00"), Quantity: intPtr(100), Line: 2},
			want:      models.ReasonMissingSKU,
		},
		{
			name:      "missing name",
			candidate: CandidateRecord{SKU: "ITEM-001", Price: decPtr("20.00"), Quantity: intPtr(100), Line: 3},
			want:      models.ReasonMissingName,
		},
		{
			name:      "absent price",
			candidate: CandidateRecord{Name: "Another Item", SKU: "ITEM-004", Quantity: intPtr(50), Line: 4},
			want:      models.ReasonInvalidPrice,
		},
		{
			name:      "negative price",
			candidate: CandidateRecord{Name: "Item", SKU: "ITEM-005", Price: decPtr("-1.00"), Quantity: intPtr(5), Line: 5},
			want:      models.ReasonInvalidPrice,
		},
		{
			name:      "absent quantity",
			candidate: CandidateRecord{Name: "Item", SKU: "ITEM-006", Price: decPtr("5.00"), Line: 6},
			want:      models.ReasonInvalidQuantity,
		},
		{
			name:      "negative quantity",
			candidate: CandidateRecord{Name: "Item", SKU: "ITEM-007", Price: decPtr("5.00"), Quantity: intPtr(-3), Line: 7},
			want:      models.ReasonInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.candidate)
			assert.False(t, outcome.Valid())
			assert.Equal(t, tt.want, outcome.Reason)
			assert.Equal(t, tt.candidate.Line, outcome.Line)
		})
	}
}

// A row violating several rules reports only the first failing rule in the
// fixed order sku -> name -> price -> quantity.
func TestValidate_FirstFailingRuleWins(t *testing.T) {
	outcome := Validate(CandidateRecord{Line: 1})
	assert.Equal(t, models.ReasonMissingSKU, outcome.Reason)

	outcome = Validate(CandidateRecord{SKU: "S-1", Line: 2})
	assert.Equal(t, models.ReasonMissingName, outcome.Reason)

	outcome = Validate(CandidateRecord{SKU: "S-1", Name: "N", Line: 3})
	assert.Equal(t, models.ReasonInvalidPrice, outcome.Reason)
}
