package importer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Feed columns expected in the CSV header.
const (
	ColName     = "name"
	ColSKU      = "sku"
	ColPrice    = "price"
	ColQuantity = "inventory_quantity"
)

var requiredColumns = []string{ColName, ColSKU, ColPrice, ColQuantity}

// RawRow is one unparsed CSV record plus its 1-based data row position.
type RawRow struct {
	Fields []string
	Line   int
}

// CandidateRecord is a parsed but unvalidated row. Price and Quantity are
// nil when the field was empty or failed to parse; the validator reports
// those, so a single row can carry several defects before it is rejected.
type CandidateRecord struct {
	Name      string
	SKU       string
	Price     *decimal.Decimal
	Quantity  *int
	Line      int
	Malformed bool
}

// Parser maps feed columns to field positions for one source. Built once
// per source from the header row.
type Parser struct {
	index   map[string]int
	columns int
}

// NewParser validates the header row and returns a parser bound to its
// column layout. Header names are matched case-insensitively.
func NewParser(header []string) (*Parser, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv missing required header %q", col)
		}
	}
	return &Parser{index: index, columns: len(header)}, nil
}

// Parse turns a raw row into a candidate record. It never fails: malformed
// numeric fields become nil and are caught by the validator; only a row
// with the wrong column count is flagged Malformed.
func (p *Parser) Parse(raw RawRow) CandidateRecord {
	candidate := CandidateRecord{Line: raw.Line}

	if len(raw.Fields) != p.columns {
		candidate.Malformed = true
		return candidate
	}

	get := func(col string) string {
		return strings.TrimSpace(raw.Fields[p.index[col]])
	}

	candidate.Name = get(ColName)
	candidate.SKU = get(ColSKU)

	if priceStr := get(ColPrice); priceStr != "" {
		if price, err := decimal.NewFromString(priceStr); err == nil {
			candidate.Price = &price
		}
	}
	if qtyStr := get(ColQuantity); qtyStr != "" {
		if qty, err := strconv.Atoi(qtyStr); err == nil {
			candidate.Quantity = &qty
		}
	}

	return candidate
}
