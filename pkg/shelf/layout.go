package shelf

import "sort"

// Layout is an ordered snapshot of every item's position.
type Layout []Entry

// Sync builds a settled layout from externally owned items and returns it
// together with the shelf count it implies.
//
// Items without a stored position land on shelf 0 at
// FallbackOffset + i·BookWidth, where i is the item's index in items.
// Negative stored shelves are clamped to 0.
func Sync(g Geometry, items []Item) (Layout, int) {
	l := make(Layout, 0, len(items))
	for i, it := range items {
		e := Entry{
			ID:      it.ID,
			Kind:    it.Kind,
			Variant: it.Variant,
			Width:   g.WidthOf(it.Kind, it.Variant),
		}
		if it.Position != nil {
			e.Shelf = max(0, it.Position.Shelf)
			e.X = it.Position.X
		} else {
			e.X = g.FallbackOffset + float64(i)*g.BookWidth
		}
		l = append(l, e)
	}
	return l, ShelfCount(g, l)
}

// ShelfCount returns max(MinShelves, 1 + highest occupied shelf).
func ShelfCount(g Geometry, l Layout) int {
	highest := -1
	for _, e := range l {
		highest = max(highest, e.Shelf)
	}
	return max(g.MinShelves, highest+1)
}

// Clone returns a copy of l that shares no memory with it.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// Find returns the entry with the given id.
func (l Layout) Find(id string) (Entry, bool) {
	if i := l.index(id); i >= 0 {
		return l[i], true
	}
	return Entry{}, false
}

func (l Layout) index(id string) int {
	for i, e := range l {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of l minus the entry with the given id.
func (l Layout) Without(id string) Layout {
	out := make(Layout, 0, len(l))
	for _, e := range l {
		if e.ID != id {
			out = append(out, e)
		}
	}
	return out
}

// Occupants returns the entries on shelf, excluding skipID, sorted by x.
// Entries with equal x keep their layout order.
func (l Layout) Occupants(shelf int, skipID string) []Entry {
	var out []Entry
	for _, e := range l {
		if e.Shelf == shelf && e.ID != skipID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

// Placements returns the placements of every entry of the given kind, in
// layout order.
func (l Layout) Placements(kind Kind) []Placement {
	out := []Placement{}
	for _, e := range l {
		if e.Kind == kind {
			out = append(out, e.Placement())
		}
	}
	return out
}

// Kinds returns the kinds present in l, in emission order.
func (l Layout) Kinds() []Kind {
	var out []Kind
	for _, k := range Kinds {
		for _, e := range l {
			if e.Kind == k {
				out = append(out, k)
				break
			}
		}
	}
	return out
}

// HitTest returns the entry under (x, y). Items are drawn with their bottom
// on the shelf floor, so the whole shelf band counts as the item's height.
// When items overlap, the one drawn last wins.
func HitTest(g Geometry, l Layout, x, y float64) (Entry, bool) {
	if y < g.TopMargin {
		return Entry{}, false
	}
	shelf := g.ShelfAt(y)
	for i := len(l) - 1; i >= 0; i-- {
		e := l[i]
		if e.Shelf == shelf && x >= e.X && x < e.Right() {
			return e, true
		}
	}
	return Entry{}, false
}
