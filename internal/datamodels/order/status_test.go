package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"Pending":   StatusPending,
		"pending":   StatusPending,
		"Complete":  StatusComplete,
		"complete":  StatusComplete,
		"Completed": StatusComplete,
		" COMPLETE": StatusComplete,
		"Cancelled": StatusCancelled,
		"canceled":  StatusCancelled,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("shipped")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.True(t, StatusComplete.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, Status("complete").Valid())
}

func TestOrderTotalsAndQuantities(t *testing.T) {
	o := &Order{Items: []Item{
		{BookID: 1, Quantity: 2, UnitPrice: decimal.RequireFromString("9.99")},
		{BookID: 2, Quantity: 1, UnitPrice: decimal.RequireFromString("20")},
		{BookID: 1, Quantity: 1, UnitPrice: decimal.RequireFromString("9.99")},
	}}
	assert.True(t, decimal.RequireFromString("49.97").Equal(o.ComputeTotal()))
	assert.Equal(t, map[int64]int64{1: 3, 2: 1}, o.Quantities())
}
