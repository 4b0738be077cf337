package orders

// Consolidate collapses duplicate rows for the same product into one row
// with the quantities summed; every other field comes from the first
// occurrence. Repeated add-to-cart produces such duplicates, and this is a
// display-time projection only, the stored rows are never touched.
func Consolidate(items []OrderItem) []OrderItem {
	if len(items) == 0 {
		return nil
	}
	index := make(map[string]int, len(items))
	out := make([]OrderItem, 0, len(items))
	for _, it := range items {
		if i, ok := index[it.ProductID]; ok {
			q := out[i].Qty() + it.Qty()
			out[i].Quantity = &q
			continue
		}
		q := it.Qty()
		it.Quantity = &q
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}
