package importer

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewParser_MissingHeader(t *testing.T) {
	_, err := NewParser([]string{"name", "sku", "price"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inventory_quantity")
}

func TestNewParser_HeaderCaseInsensitive(t *testing.T) {
	p, err := NewParser([]string{"Name", " SKU ", "PRICE", "Inventory_Quantity"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"Widget", "W-1", "9.99", "5"}, Line: 1})
	assert.Equal(t, "Widget", candidate.Name)
	assert.Equal(t, "W-1", candidate.SKU)
}

func TestParse_ValidRow(t *testing.T) {
	p, err := NewParser([]string{"name", "sku", "price", "inventory_quantity"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"Red T-Shirt", "TSHIRT-RED-S", "19.99", "150"}, Line: 1})

	assert.False(t, candidate.Malformed)
	assert.Equal(t, "Red T-Shirt", candidate.Name)
	assert.Equal(t, "TSHIRT-RED-S", candidate.SKU)
	require.NotNil(t, candidate.Price)
	assert.True(t, candidate.Price.Equal(decimal.RequireFromString("19.99")))
	require.NotNil(t, candidate.Quantity)
	assert.Equal(t, 150, *candidate.Quantity)
}

func TestParse_ReorderedColumns(t *testing.T) {
	p, err := NewParser([]string{"sku", "inventory_quantity", "name", "price"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"A-1", "7", "Apple", "1.25"}, Line: 3})

	assert.Equal(t, "Apple", candidate.Name)
	assert.Equal(t, "A-1", candidate.SKU)
	require.NotNil(t, candidate.Quantity)
	assert.Equal(t, 7, *candidate.Quantity)
}

func TestParse_UnparseableNumbersDeferred(t *testing.T) {
	p, err := NewParser([]string{"name", "sku", "price", "inventory_quantity"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"Another Item", "ITEM-004", "abc", "x"}, Line: 2})

	// Bad numerics are not a parse failure; the validator reports them.
	assert.False(t, candidate.Malformed)
	assert.Nil(t, candidate.Price)
	assert.Nil(t, candidate.Quantity)
}

func TestParse_WrongColumnCount(t *testing.T) {
	p, err := NewParser([]string{"name", "sku", "price", "inventory_quantity"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"only", "three", "fields"}, Line: 4})
	assert.True(t, candidate.Malformed)
}

func TestParse_WhitespaceTrimmed(t *testing.T) {
	p, err := NewParser([]string{"name", "sku", "price", "inventory_quantity"})
	require.NoError(t, err)

	candidate := p.Parse(RawRow{Fields: []string{"  Widget ", " W-2 ", " 5.00 ", " 3 "}, Line: 1})

	assert.Equal(t, "Widget", candidate.Name)
	assert.Equal(t, "W-2", candidate.SKU)
	require.NotNil(t, candidate.Price)
	require.NotNil(t, candidate.Quantity)
}
