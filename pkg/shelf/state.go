package shelf

// State is everything the engine owns between events.
type State struct {
	Settled    Layout       `json:"settled"`
	ShelfCount int          `json:"shelfCount"`
	Drag       *DragSession `json:"drag,omitempty"`

	// Ghost is raised while the live frame targets the shelf that a drop
	// would create.
	Ghost bool `json:"ghost"`
}

// NewState returns a settled state for items.
func NewState(g Geometry, items []Item) State {
	l, n := Sync(g, items)
	return State{Settled: l, ShelfCount: n}
}

// Dragging reports whether a drag session is active.
func (s State) Dragging() bool { return s.Drag != nil }

// Event is an input to Reduce.
type Event interface{ event() }

// ItemsChanged reports a new item list from the store.
type ItemsChanged struct{ Items []Item }

// PointerDown grabs an item at a container-relative point.
type PointerDown struct {
	ItemID string
	X, Y   float64
}

// PointerMove moves the active pointer.
type PointerMove struct{ X, Y float64 }

// PointerUp releases the active pointer.
type PointerUp struct{ X, Y float64 }

func (ItemsChanged) event() {}
func (PointerDown) event()  {}
func (PointerMove) event()  {}
func (PointerUp) event()    {}

// Effect is an instruction for the host produced by Reduce.
type Effect interface{ effect() }

// Reorder carries the committed placements of every item of one kind.
type Reorder struct {
	Kind       Kind
	Placements []Placement
}

// Archive asks the host to archive an item dropped on the archive zone.
type Archive struct {
	ID   string
	Kind Kind
}

// Activate reports a click on an item: open a book, toggle an ornament.
// Entry carries the item's logical position and size at the time of the
// click.
type Activate struct{ Entry Entry }

func (Reorder) effect()  {}
func (Archive) effect()  {}
func (Activate) effect() {}

// Reduce applies one event and returns the next state and the effects the
// host must carry out, in order. The input state is not modified.
//
// Events that make no sense in the current state (moves or releases
// without a session, a second pointer-down, a pointer-down on an unknown
// item) are ignored rather than reported.
func Reduce(g Geometry, s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case ItemsChanged:
		if s.Dragging() {
			return s, nil
		}
		return NewState(g, ev.Items), nil

	case PointerDown:
		if s.Dragging() {
			return s, nil
		}
		e, ok := s.Settled.Find(ev.ItemID)
		if !ok {
			return s, nil
		}
		d := Pickup(g, e, ev.X, ev.Y)
		s.Drag = &d
		s.Ghost = false
		return s, nil

	case PointerMove:
		if !s.Dragging() {
			return s, nil
		}
		d := *s.Drag
		d.CurrentX, d.CurrentY = ev.X, ev.Y
		s.Drag = &d
		s.Ghost = Solve(g, s.Settled, s.ShelfCount, d).Ghost
		return s, nil

	case PointerUp:
		if !s.Dragging() {
			return s, nil
		}
		d := *s.Drag
		d.CurrentX, d.CurrentY = ev.X, ev.Y
		return release(g, s, d)
	}
	return s, nil
}

// release ends the session: a click, a drop on the archive zone or a
// commit of the live frame.
func release(g Geometry, s State, d DragSession) (State, []Effect) {
	next := State{Settled: s.Settled, ShelfCount: s.ShelfCount}

	dragged, ok := s.Settled.Find(d.ItemID)
	if !ok {
		return next, nil
	}

	if d.Displacement() < g.ClickThreshold {
		return next, []Effect{Activate{Entry: dragged}}
	}

	if z := g.ArchiveZone; z != nil && z.Contains(d.CurrentX, d.CurrentY) {
		kinds := s.Settled.Kinds()
		next.Settled = s.Settled.Without(dragged.ID)
		next.ShelfCount = ShelfCount(g, next.Settled)
		// Archive goes first so a host can move the item before the
		// Reorders drop it from the shelf list.
		effects := []Effect{Archive{ID: dragged.ID, Kind: dragged.Kind}}
		return next, append(effects, reorders(next.Settled, kinds)...)
	}

	frame := Solve(g, s.Settled, s.ShelfCount, d)
	next.Settled = frame.Layout
	next.ShelfCount = ShelfCount(g, frame.Layout)
	return next, reorders(next.Settled, s.Settled.Kinds())
}

// reorders emits one Reorder per kind, books first.
func reorders(l Layout, kinds []Kind) []Effect {
	effects := make([]Effect, 0, len(kinds))
	for _, k := range kinds {
		effects = append(effects, Reorder{Kind: k, Placements: l.Placements(k)})
	}
	return effects
}

// Live returns the frame a host should render: the solver's output while a
// drag is active, the settled layout otherwise.
func Live(g Geometry, s State) Frame {
	if !s.Dragging() {
		return Frame{Layout: s.Settled, TargetShelf: -1}
	}
	return Solve(g, s.Settled, s.ShelfCount, *s.Drag)
}

// VisibleShelves returns how many shelf rows a host should draw, counting
// the ghost shelf while it is active.
func VisibleShelves(s State) int {
	if s.Ghost {
		return s.ShelfCount + 1
	}
	return s.ShelfCount
}
