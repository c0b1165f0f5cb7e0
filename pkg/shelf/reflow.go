package shelf

import "math"

// DragSession is the state of one pointer gesture on an item. Coordinates
// are container-relative.
type DragSession struct {
	ItemID   string  `json:"itemId"`
	StartX   float64 `json:"startX"`
	StartY   float64 `json:"startY"`
	CurrentX float64 `json:"currentX"`
	CurrentY float64 `json:"currentY"`

	// OffsetX/OffsetY is the pointer's offset from the item's top-left at
	// pick-up, so the item does not jump to the pointer.
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// Pickup starts a session for entry e grabbed at (x, y).
func Pickup(g Geometry, e Entry, x, y float64) DragSession {
	return DragSession{
		ItemID:   e.ID,
		StartX:   x,
		StartY:   y,
		CurrentX: x,
		CurrentY: y,
		OffsetX:  x - e.X,
		OffsetY:  y - g.ShelfTop(e.Shelf),
	}
}

// Displacement returns the straight-line distance the pointer travelled
// since pick-up.
func (d DragSession) Displacement() float64 {
	return math.Hypot(d.CurrentX-d.StartX, d.CurrentY-d.StartY)
}

// RawX returns the dragged item's unsnapped left edge.
func (d DragSession) RawX() float64 {
	return d.CurrentX - d.OffsetX
}

// Frame is the solver's answer: the live layout plus the decisions that
// produced it.
type Frame struct {
	Layout      Layout `json:"layout"`
	TargetShelf int    `json:"targetShelf"`
	Ghost       bool   `json:"ghost"`
	Magnetic    bool   `json:"magnetic"`
	InsertIndex int    `json:"insertIndex"`
}

// Solve computes where every item would land if the drag ended now.
//
// The target shelf comes from the pointer's y. A target at or beyond
// shelfCount is clamped to exactly shelfCount and flagged as the ghost
// shelf. The dragged item snaps next to an occupant when its centre is
// within SnapDistance of the first occupant's left edge, the last
// occupant's right edge or any occupant's centre; occupants at or after
// the insertion index are then pushed right by the dragged width.
// Otherwise the item stays where the pointer put it and nothing moves.
//
// settled is never modified. If the session's item is not in settled the
// frame is a copy of settled.
func Solve(g Geometry, settled Layout, shelfCount int, d DragSession) Frame {
	idx := settled.index(d.ItemID)
	if idx < 0 {
		return Frame{Layout: settled.Clone(), TargetShelf: -1}
	}
	dragged := settled[idx]

	target := g.ShelfAt(d.CurrentY)
	ghost := false
	if target >= shelfCount {
		target = shelfCount
		ghost = true
	}

	rawX := d.RawX()
	center := rawX + dragged.Width/2
	occupants := settled.Occupants(target, dragged.ID)

	insert := 0
	magnetic := false
	if n := len(occupants); n > 0 {
		if math.Abs(center-occupants[0].X) < g.SnapDistance {
			magnetic = true
		}
		if math.Abs(center-occupants[n-1].Right()) < g.SnapDistance {
			magnetic = true
		}
		for i, o := range occupants {
			c := o.CenterX()
			if center > c {
				insert = i + 1
			}
			if math.Abs(center-c) < g.SnapDistance {
				magnetic = true
			}
		}
	}

	x := rawX
	if magnetic {
		if insert == 0 {
			x = occupants[0].X - dragged.Width
		} else {
			prev := occupants[insert-1]
			x = prev.Right()
		}
	}

	shifted := make(map[string]bool, len(occupants))
	if magnetic {
		for _, o := range occupants[insert:] {
			shifted[o.ID] = true
		}
	}

	out := make(Layout, len(settled))
	for i, e := range settled {
		switch {
		case i == idx:
			e.Shelf = target
			e.X = x
		case shifted[e.ID]:
			e.X += dragged.Width
		}
		out[i] = e
	}

	return Frame{
		Layout:      out,
		TargetShelf: target,
		Ghost:       ghost,
		Magnetic:    magnetic,
		InsertIndex: insert,
	}
}
