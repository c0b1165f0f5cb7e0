package shelf

import (
	"testing"

	"github.com/matzehuels/shelfspace/pkg/errors"
)

func TestGeometryValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Geometry)
		wantErr bool
	}{
		{"defaults", func(*Geometry) {}, false},
		{"archive zone", func(g *Geometry) { g.ArchiveZone = &Rect{Width: 200, Height: 200} }, false},
		{"zero shelf height", func(g *Geometry) { g.ShelfHeight = 0 }, true},
		{"negative book width", func(g *Geometry) { g.BookWidth = -1 }, true},
		{"no shelves", func(g *Geometry) { g.MinShelves = 0 }, true},
		{"negative snap", func(g *Geometry) { g.SnapDistance = -5 }, true},
		{"bad variant width", func(g *Geometry) { g.VariantWidths["lamp"] = 0 }, true},
		{"empty archive zone", func(g *Geometry) { g.ArchiveZone = &Rect{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := DefaultGeometry()
			tt.mutate(&g)
			err := g.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Validate() code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestGeometryWidthOf(t *testing.T) {
	g := DefaultGeometry()
	g.VariantWidths["lucky-cat"] = 90

	tests := []struct {
		kind    Kind
		variant string
		want    float64
	}{
		{KindBook, "", 56},
		{KindBook, VariantMusicPlayer, 56},
		{KindOrnament, VariantMusicPlayer, 180},
		{KindOrnament, "lucky-cat", 90},
		{KindOrnament, "unknown", 180},
	}
	for _, tt := range tests {
		if got := g.WidthOf(tt.kind, tt.variant); got != tt.want {
			t.Errorf("WidthOf(%s, %q) = %v, want %v", tt.kind, tt.variant, got, tt.want)
		}
	}
}

func TestRectContains(t *testing.T) {
	r := Rect{X: 0, Y: 100, Width: 200, Height: 50}
	tests := []struct {
		x, y float64
		want bool
	}{
		{0, 100, true},
		{199, 149, true},
		{200, 120, false},
		{50, 150, false},
		{-1, 120, false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%v, %v) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestOccupantsSortedAndStable(t *testing.T) {
	l := Layout{book("c", 0, 120), book("a", 0, 0), book("skip", 0, 10), book("b1", 0, 60), book("b2", 0, 60), book("o", 1, 0)}

	got := l.Occupants(0, "skip")

	want := []string{"a", "b1", "b2", "c"}
	if len(got) != len(want) {
		t.Fatalf("Occupants() = %+v, want ids %v", got, want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("Occupants()[%d] = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestPlacementsNeverNil(t *testing.T) {
	l := Layout{book("a", 0, 0)}
	if got := l.Placements(KindOrnament); got == nil || len(got) != 0 {
		t.Errorf("Placements(ornament) = %#v, want empty non-nil slice", got)
	}
}

func TestLayoutKinds(t *testing.T) {
	l := Layout{
		{ID: "fm", Kind: KindOrnament},
		book("a", 0, 0),
	}
	got := l.Kinds()
	if len(got) != 2 || got[0] != KindBook || got[1] != KindOrnament {
		t.Errorf("Kinds() = %v, want [book ornament]", got)
	}
}

func TestHitTest(t *testing.T) {
	g := DefaultGeometry()
	l := Layout{book("a", 0, 50), book("b", 0, 80), book("c", 1, 50)}

	tests := []struct {
		name   string
		x, y   float64
		wantID string
	}{
		{"top margin", 60, 40, ""},
		{"left part of a", 60, 200, "a"},
		{"overlap picks last drawn", 100, 200, "b"},
		{"second shelf", 60, 500, "c"},
		{"empty space", 400, 200, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := HitTest(g, l, tt.x, tt.y)
			if tt.wantID == "" {
				if ok {
					t.Errorf("HitTest() = %s, want miss", e.ID)
				}
				return
			}
			if !ok || e.ID != tt.wantID {
				t.Errorf("HitTest() = %s (%v), want %s", e.ID, ok, tt.wantID)
			}
		})
	}
}
