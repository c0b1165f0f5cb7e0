package shelf

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shelfspace/pkg/observability"
)

// Handlers are the host callbacks invoked for each effect. Nil handlers
// are skipped.
type Handlers struct {
	OnReorder  func(ctx context.Context, kind Kind, placements []Placement)
	OnArchive  func(ctx context.Context, id string, kind Kind)
	OnActivate func(ctx context.Context, e Entry)
}

// Engine owns a State and turns events into handler calls.
//
// An Engine is not safe for concurrent use. Hosts with concurrent inputs
// (the HTTP server) serialise access themselves; the engine assumes one
// pointer and one event at a time.
type Engine struct {
	geometry Geometry
	state    State
	handlers Handlers
	logger   *log.Logger
}

// NewEngine creates an engine settled on items.
// If logger is nil, log.Default() is used.
func NewEngine(g Geometry, items []Item, h Handlers, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		geometry: g,
		state:    NewState(g, items),
		handlers: h,
		logger:   logger,
	}
}

// Geometry returns the engine's geometry.
func (e *Engine) Geometry() Geometry { return e.geometry }

// SetArchiveZone moves the archive zone, for hosts whose viewport changes
// size. A nil zone disables archiving. It reports false, and changes
// nothing, while a drag is active.
func (e *Engine) SetArchiveZone(r *Rect) bool {
	if e.state.Dragging() {
		return false
	}
	if r != nil {
		c := *r
		r = &c
	}
	e.geometry.ArchiveZone = r
	return true
}

// State returns a snapshot of the engine state.
func (e *Engine) State() State { return e.state }

// Frame returns the layout to render right now.
func (e *Engine) Frame() Frame { return Live(e.geometry, e.state) }

// ShelfCount returns the number of materialised shelves.
func (e *Engine) ShelfCount() int { return e.state.ShelfCount }

// Dragging reports whether a drag session is active.
func (e *Engine) Dragging() bool { return e.state.Dragging() }

// Sync replaces the settled layout with items unless a drag is active.
// It reports whether the items were applied.
func (e *Engine) Sync(ctx context.Context, items []Item) bool {
	if e.state.Dragging() {
		e.logger.Debug("sync deferred: drag in progress", "items", len(items))
		return false
	}
	e.Dispatch(ctx, ItemsChanged{Items: items})
	return true
}

// PointerDown grabs itemID at (x, y).
func (e *Engine) PointerDown(ctx context.Context, itemID string, x, y float64) []Effect {
	return e.Dispatch(ctx, PointerDown{ItemID: itemID, X: x, Y: y})
}

// PointerMove moves the active pointer to (x, y).
func (e *Engine) PointerMove(ctx context.Context, x, y float64) []Effect {
	return e.Dispatch(ctx, PointerMove{X: x, Y: y})
}

// PointerUp releases the active pointer at (x, y).
func (e *Engine) PointerUp(ctx context.Context, x, y float64) []Effect {
	return e.Dispatch(ctx, PointerUp{X: x, Y: y})
}

// Dispatch reduces ev, runs the handlers for the resulting effects and
// returns them.
func (e *Engine) Dispatch(ctx context.Context, ev Event) []Effect {
	prev := e.state

	var dropFrame Frame
	if up, ok := ev.(PointerUp); ok && prev.Dragging() {
		d := *prev.Drag
		d.CurrentX, d.CurrentY = up.X, up.Y
		dropFrame = Solve(e.geometry, prev.Settled, prev.ShelfCount, d)
	}

	next, effects := Reduce(e.geometry, prev, ev)
	e.state = next

	switch ev := ev.(type) {
	case ItemsChanged:
		if !prev.Dragging() {
			e.logger.Debug("layout synced", "items", len(next.Settled), "shelves", next.ShelfCount)
		}
	case PointerDown:
		if !prev.Dragging() && next.Dragging() {
			dragged, _ := next.Settled.Find(ev.ItemID)
			e.logger.Debug("drag started", "item", ev.ItemID, "kind", dragged.Kind)
			observability.Shelf().OnDragStart(ctx, ev.ItemID, string(dragged.Kind))
		}
	case PointerMove:
		if next.Ghost != prev.Ghost {
			e.logger.Debug("ghost shelf", "active", next.Ghost, "shelf", next.ShelfCount)
		}
	}

	for _, eff := range effects {
		e.apply(ctx, prev, next, dropFrame, eff)
	}
	return effects
}

func (e *Engine) apply(ctx context.Context, prev, next State, drop Frame, eff Effect) {
	switch eff := eff.(type) {
	case Reorder:
		if e.handlers.OnReorder != nil {
			e.handlers.OnReorder(ctx, eff.Kind, eff.Placements)
		}
		// The dragged item belongs to exactly one kind; report the commit once.
		if prev.Drag == nil {
			return
		}
		if landed, ok := next.Settled.Find(prev.Drag.ItemID); ok && landed.Kind == eff.Kind {
			e.logger.Info("item placed",
				"item", landed.ID,
				"shelf", landed.Shelf,
				"x", landed.X,
				"magnetic", drop.Magnetic,
				"shelves", next.ShelfCount)
			observability.Shelf().OnCommit(ctx, landed.ID, landed.Shelf, next.ShelfCount, drop.Magnetic)
		}
	case Archive:
		e.logger.Info("item archived", "item", eff.ID, "kind", eff.Kind)
		observability.Shelf().OnArchive(ctx, eff.ID, string(eff.Kind))
		if e.handlers.OnArchive != nil {
			e.handlers.OnArchive(ctx, eff.ID, eff.Kind)
		}
	case Activate:
		e.logger.Debug("item activated", "item", eff.Entry.ID, "kind", eff.Entry.Kind)
		observability.Shelf().OnActivate(ctx, eff.Entry.ID, string(eff.Entry.Kind))
		if e.handlers.OnActivate != nil {
			e.handlers.OnActivate(ctx, eff.Entry)
		}
	}
}
