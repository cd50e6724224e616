package document

import "sort"

// duplicateTableOverlap is the fraction of a layout-table box that must be
// covered by a structured table on the same page for it to be dropped.
const duplicateTableOverlap = 0.75

// Normalize drops layout-table items already represented by a structured
// table and orders the rest by page, then top, then left. Items without a
// bounding box sort first within their page. The input slice is not modified.
func Normalize(items []LayoutItem) []LayoutItem {
	var tables []LayoutItem
	for _, it := range items {
		if it.Type == TypeTable && it.BoundingBox().Complete() {
			tables = append(tables, it)
		}
	}

	out := make([]LayoutItem, 0, len(items))
	for _, it := range items {
		if it.Type == TypeLayoutTable && coveredByTable(it, tables) {
			continue
		}
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		ra, rb := a.BoundingBox().Value(), b.BoundingBox().Value()
		if ra.Y != rb.Y {
			return ra.Y < rb.Y
		}
		return ra.X < rb.X
	})
	return out
}

func coveredByTable(it LayoutItem, tables []LayoutItem) bool {
	box := it.BoundingBox()
	if !box.Complete() {
		return false
	}
	r := box.Value()
	area := r.Area()
	if area <= 0 {
		return false
	}
	for _, t := range tables {
		if t.Page != it.Page {
			continue
		}
		inter := r.Intersection(t.BoundingBox().Value())
		if inter.Area()/area > duplicateTableOverlap {
			return true
		}
	}
	return false
}

// ItemsOnPage returns the indices of items on the given page.
func ItemsOnPage(items []LayoutItem, page int) []int {
	var idx []int
	for i, it := range items {
		if it.Page == page {
			idx = append(idx, i)
		}
	}
	return idx
}
