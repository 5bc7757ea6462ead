package rollup

// Join resolves each line item's product with inner-join semantics: items whose
// product id has no dimension row are dropped, and the drop count is returned.
func Join(items []LineItem, products map[int64]Product) ([]JoinedItem, int) {
	joined := make([]JoinedItem, 0, len(items))
	dropped := 0
	for _, item := range items {
		product, ok := products[item.ProductID]
		if !ok || item.ProductID == NoProduct {
			dropped++
			continue
		}
		joined = append(joined, JoinedItem{LineItem: item, Product: product})
	}
	return joined, dropped
}

// ProductIDs returns the distinct non-NULL product ids referenced by items.
func ProductIDs(items []LineItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0)
	for _, item := range items {
		if item.ProductID == NoProduct {
			continue
		}
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}
