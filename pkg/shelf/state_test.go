package shelf

import (
	"reflect"
	"testing"
)

func pos(shelf int, x float64) *Position { return &Position{Shelf: shelf, X: x} }

// starterItems mirrors a small library: two books on shelf 0 and the music
// widget on shelf 1.
func starterItems() []Item {
	return []Item{
		{ID: "A", Kind: KindBook, Position: pos(0, 50)},
		{ID: "B", Kind: KindBook, Position: pos(0, 200)},
		{ID: "fm", Kind: KindOrnament, Variant: VariantMusicPlayer, Position: pos(1, 100)},
	}
}

// run feeds events through Reduce and collects every effect.
func run(g Geometry, s State, events ...Event) (State, []Effect) {
	var all []Effect
	for _, ev := range events {
		var effects []Effect
		s, effects = Reduce(g, s, ev)
		all = append(all, effects...)
	}
	return s, all
}

func TestSyncDefaults(t *testing.T) {
	g := DefaultGeometry()
	items := []Item{
		{ID: "1", Kind: KindBook},
		{ID: "2", Kind: KindBook},
		{ID: "3", Kind: KindBook, Position: pos(-3, 10)},
		{ID: "fm", Kind: KindOrnament, Variant: VariantMusicPlayer},
	}

	l, n := Sync(g, items)

	want := Layout{
		{ID: "1", Kind: KindBook, Shelf: 0, X: 50, Width: 56},
		{ID: "2", Kind: KindBook, Shelf: 0, X: 106, Width: 56},
		{ID: "3", Kind: KindBook, Shelf: 0, X: 10, Width: 56},
		{ID: "fm", Kind: KindOrnament, Variant: VariantMusicPlayer, Shelf: 0, X: 218, Width: 180},
	}
	if !reflect.DeepEqual(l, want) {
		t.Errorf("Sync() = %+v, want %+v", l, want)
	}
	if n != 2 {
		t.Errorf("shelf count = %d, want MinShelves", n)
	}
}

func TestShelfCount(t *testing.T) {
	g := DefaultGeometry()
	tests := []struct {
		name   string
		layout Layout
		want   int
	}{
		{"empty", nil, 2},
		{"only shelf 0", Layout{book("a", 0, 0)}, 2},
		{"shelf 1", Layout{book("a", 1, 0)}, 2},
		{"shelf 4", Layout{book("a", 0, 0), book("b", 4, 0)}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShelfCount(g, tt.layout); got != tt.want {
				t.Errorf("ShelfCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReduceClickVersusDrag(t *testing.T) {
	g := DefaultGeometry()

	tests := []struct {
		name         string
		dx, dy       float64
		wantActivate bool
	}{
		{"no movement", 0, 0, true},
		{"jitter below threshold", 3, 0, true},
		{"diagonal below threshold", 3, 3.9, true},
		{"exactly threshold", 3, 4, false},
		{"real drag", 40, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := NewState(g, starterItems())
			s, effects := run(g, start,
				PointerDown{ItemID: "A", X: 60, Y: 200},
				PointerMove{X: 60 + tt.dx, Y: 200 + tt.dy},
				PointerUp{X: 60 + tt.dx, Y: 200 + tt.dy},
			)

			activations := 0
			for _, eff := range effects {
				if a, ok := eff.(Activate); ok {
					activations++
					if a.Entry.ID != "A" || a.Entry.X != 50 || a.Entry.Width != 56 {
						t.Errorf("Activate entry = %+v", a.Entry)
					}
				}
			}

			if tt.wantActivate {
				if activations != 1 || len(effects) != 1 {
					t.Errorf("effects = %+v, want exactly one Activate", effects)
				}
				if !reflect.DeepEqual(s.Settled, start.Settled) {
					t.Errorf("click changed layout: %+v", s.Settled)
				}
			} else if activations != 0 {
				t.Errorf("drag fired %d Activate effects", activations)
			}
			if s.Dragging() {
				t.Error("session should end on pointer-up")
			}
		})
	}
}

func TestReduceCommitEmitsPerKind(t *testing.T) {
	g := DefaultGeometry()
	s, effects := run(g, NewState(g, starterItems()),
		PointerDown{ItemID: "A", X: 60, Y: 200},
		PointerMove{X: 300, Y: 200},
		PointerUp{X: 282, Y: 200},
	)

	if len(effects) != 2 {
		t.Fatalf("effects = %+v, want two Reorder", effects)
	}
	books, ok := effects[0].(Reorder)
	if !ok || books.Kind != KindBook {
		t.Fatalf("effects[0] = %+v, want book Reorder", effects[0])
	}
	ornaments, ok := effects[1].(Reorder)
	if !ok || ornaments.Kind != KindOrnament {
		t.Fatalf("effects[1] = %+v, want ornament Reorder", effects[1])
	}

	// Centre 300 is within 120px of B's right edge (256): A packs after B.
	wantBooks := []Placement{{ID: "A", Shelf: 0, X: 256}, {ID: "B", Shelf: 0, X: 200}}
	if !reflect.DeepEqual(books.Placements, wantBooks) {
		t.Errorf("book placements = %+v, want %+v", books.Placements, wantBooks)
	}
	wantOrnaments := []Placement{{ID: "fm", Shelf: 1, X: 100}}
	if !reflect.DeepEqual(ornaments.Placements, wantOrnaments) {
		t.Errorf("ornament placements = %+v, want %+v", ornaments.Placements, wantOrnaments)
	}
	if got, _ := s.Settled.Find("A"); got.X != 256 {
		t.Errorf("settled A.X = %v, want 256", got.X)
	}
}

func TestReduceGhostShelfCreation(t *testing.T) {
	g := DefaultGeometry()
	start := NewState(g, starterItems())
	ghostY := g.ShelfTop(start.ShelfCount) + 50

	held, _ := run(g, start,
		PointerDown{ItemID: "A", X: 60, Y: 200},
		PointerMove{X: 60, Y: ghostY},
	)
	if !held.Ghost {
		t.Fatal("ghost signal should be raised below the last shelf")
	}
	if got := VisibleShelves(held); got != start.ShelfCount+1 {
		t.Errorf("VisibleShelves() = %d, want %d", got, start.ShelfCount+1)
	}

	s, _ := run(g, held, PointerUp{X: 60, Y: ghostY})

	if s.ShelfCount != start.ShelfCount+1 {
		t.Errorf("ShelfCount = %d, want %d", s.ShelfCount, start.ShelfCount+1)
	}
	if got, _ := s.Settled.Find("A"); got.Shelf != start.ShelfCount {
		t.Errorf("A landed on shelf %d, want %d", got.Shelf, start.ShelfCount)
	}
	if s.Ghost {
		t.Error("ghost signal should clear after release")
	}
}

func TestReduceShelfCountShrinksAfterCommit(t *testing.T) {
	g := DefaultGeometry()
	items := []Item{{ID: "A", Kind: KindBook, Position: pos(3, 50)}}
	start := NewState(g, items)
	if start.ShelfCount != 4 {
		t.Fatalf("ShelfCount = %d, want 4", start.ShelfCount)
	}

	s, _ := run(g, start,
		PointerDown{ItemID: "A", X: 60, Y: g.ShelfTop(3) + 10},
		PointerUp{X: 60, Y: 200},
	)

	if s.ShelfCount != g.MinShelves {
		t.Errorf("ShelfCount = %d, want %d", s.ShelfCount, g.MinShelves)
	}
}

func TestReduceArchiveShortCircuit(t *testing.T) {
	g := DefaultGeometry()
	g.ArchiveZone = &Rect{X: 0, Y: 1000, Width: 200, Height: 200}

	s, effects := run(g, NewState(g, starterItems()),
		PointerDown{ItemID: "A", X: 60, Y: 200},
		PointerMove{X: 50, Y: 1100},
		PointerUp{X: 50, Y: 1100},
	)

	archives := 0
	for _, eff := range effects {
		switch eff := eff.(type) {
		case Archive:
			archives++
			if eff.ID != "A" || eff.Kind != KindBook {
				t.Errorf("Archive = %+v", eff)
			}
		case Reorder:
			for _, p := range eff.Placements {
				if p.ID == "A" {
					t.Errorf("archived item in %s Reorder payload", eff.Kind)
				}
			}
		}
	}
	if archives != 1 {
		t.Errorf("got %d Archive effects, want 1", archives)
	}
	if _, ok := effects[0].(Archive); !ok {
		t.Errorf("effects[0] = %+v, want the Archive before any Reorder", effects[0])
	}
	if _, ok := s.Settled.Find("A"); ok {
		t.Error("archived item still in settled layout")
	}
	if b, _ := s.Settled.Find("B"); b.X != 200 {
		t.Errorf("B moved to %v on archive", b.X)
	}
}

func TestReduceIgnoresStrayEvents(t *testing.T) {
	g := DefaultGeometry()
	start := NewState(g, starterItems())

	tests := []struct {
		name  string
		state State
		event Event
	}{
		{"move without session", start, PointerMove{X: 1, Y: 1}},
		{"up without session", start, PointerUp{X: 1, Y: 1}},
		{"down on unknown item", start, PointerDown{ItemID: "nope", X: 1, Y: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, effects := Reduce(g, tt.state, tt.event)
			if len(effects) != 0 {
				t.Errorf("effects = %+v, want none", effects)
			}
			if !reflect.DeepEqual(s, tt.state) {
				t.Errorf("state changed: %+v", s)
			}
		})
	}
}

func TestReduceSinglePointer(t *testing.T) {
	g := DefaultGeometry()
	s, _ := run(g, NewState(g, starterItems()),
		PointerDown{ItemID: "A", X: 60, Y: 200},
		PointerDown{ItemID: "B", X: 210, Y: 200},
	)
	if s.Drag == nil || s.Drag.ItemID != "A" {
		t.Errorf("Drag = %+v, want session on A", s.Drag)
	}
}

func TestReduceItemsChangedDuringDragIgnored(t *testing.T) {
	g := DefaultGeometry()
	held, _ := run(g, NewState(g, starterItems()), PointerDown{ItemID: "A", X: 60, Y: 200})

	s, _ := Reduce(g, held, ItemsChanged{Items: nil})
	if !reflect.DeepEqual(s, held) {
		t.Error("ItemsChanged should be ignored while a drag is active")
	}

	idle, _ := Reduce(g, NewState(g, starterItems()), ItemsChanged{Items: nil})
	if len(idle.Settled) != 0 || idle.ShelfCount != g.MinShelves {
		t.Errorf("idle sync = %+v, want empty layout", idle)
	}
}

func TestSettleIsIdempotent(t *testing.T) {
	g := DefaultGeometry()
	s, effects := run(g, NewState(g, starterItems()),
		PointerDown{ItemID: "B", X: 210, Y: 200},
		PointerUp{X: 80, Y: 500},
	)

	// Feed the emitted placements back the way a store would.
	placed := map[string]Placement{}
	for _, eff := range effects {
		for _, p := range eff.(Reorder).Placements {
			placed[p.ID] = p
		}
	}
	var items []Item
	for _, e := range s.Settled {
		p := placed[e.ID]
		items = append(items, Item{ID: e.ID, Kind: e.Kind, Variant: e.Variant, Position: pos(p.Shelf, p.X)})
	}

	resynced, _ := Reduce(g, s, ItemsChanged{Items: items})
	if !reflect.DeepEqual(resynced, s) {
		t.Errorf("resync = %+v, want %+v", resynced, s)
	}
	if !reflect.DeepEqual(Live(g, resynced).Layout, s.Settled) {
		t.Error("live layout of a settled state should equal the settled layout")
	}
}
