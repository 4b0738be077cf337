package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(n int) *int { return &n }

func item(id, product string, q *int) OrderItem {
	return OrderItem{ID: id, OrderID: "O1", ProductID: product, ProductName: "name-" + product, Price: 2.5, Quantity: q}
}

func TestConsolidateEmpty(t *testing.T) {
	assert.Empty(t, Consolidate(nil))
	assert.Empty(t, Consolidate([]OrderItem{}))
}

func TestConsolidateNoDuplicatesIsIdentity(t *testing.T) {
	in := []OrderItem{
		item("i1", "P1", qty(2)),
		item("i2", "P2", qty(1)),
		item("i3", "P3", qty(4)),
	}
	out := Consolidate(in)
	require.Len(t, out, 3)
	for i := range in {
		assert.Equal(t, in[i].ProductID, out[i].ProductID)
		assert.Equal(t, in[i].Qty(), out[i].Qty())
	}
}

func TestConsolidateSumsDuplicates(t *testing.T) {
	in := []OrderItem{
		item("i1", "P1", qty(2)),
		item("i2", "P2", qty(1)),
		item("i3", "P1", qty(3)),
	}
	out := Consolidate(in)
	require.Len(t, out, 2)

	byProduct := map[string]OrderItem{}
	for _, it := range out {
		byProduct[it.ProductID] = it
	}
	assert.Equal(t, 5, byProduct["P1"].Qty())
	assert.Equal(t, 1, byProduct["P2"].Qty())
	// Non-quantity fields come from the first occurrence.
	assert.Equal(t, "i1", byProduct["P1"].ID)
}

func TestConsolidateDefaultsMissingQuantityToOne(t *testing.T) {
	in := []OrderItem{
		item("i1", "P1", nil),
		item("i2", "P1", qty(2)),
		item("i3", "P2", nil),
	}
	out := Consolidate(in)
	require.Len(t, out, 2)

	byProduct := map[string]OrderItem{}
	for _, it := range out {
		byProduct[it.ProductID] = it
	}
	assert.Equal(t, 3, byProduct["P1"].Qty())
	assert.Equal(t, 1, byProduct["P2"].Qty())
}

func TestConsolidateQuantityInvariant(t *testing.T) {
	// Quantity per product in the output equals the sum over the raw rows.
	in := []OrderItem{
		item("i1", "A", qty(1)),
		item("i2", "B", qty(2)),
		item("i3", "A", qty(3)),
		item("i4", "C", nil),
		item("i5", "B", qty(4)),
		item("i6", "A", qty(5)),
	}
	want := map[string]int{}
	for _, it := range in {
		want[it.ProductID] += it.Qty()
	}

	out := Consolidate(in)
	require.Len(t, out, len(want))
	for _, it := range out {
		assert.Equal(t, want[it.ProductID], it.Qty(), "product %s", it.ProductID)
	}
}
