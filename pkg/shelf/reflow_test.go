package shelf

import (
	"reflect"
	"testing"
)

// book returns a settled book entry.
func book(id string, shelf int, x float64) Entry {
	return Entry{ID: id, Kind: KindBook, Shelf: shelf, X: x, Width: DefaultBookWidth}
}

// dragTo returns a session that grabbed e at its top-left corner plus
// (10, 100) and now sits with the dragged centre at centerX on shelf.
func dragTo(g Geometry, e Entry, centerX float64, shelf int) DragSession {
	d := Pickup(g, e, e.X+10, g.ShelfTop(e.Shelf)+100)
	d.CurrentX = centerX - e.Width/2 + d.OffsetX
	d.CurrentY = g.ShelfTop(shelf) + 100
	return d
}

func TestSolveWorkedExample(t *testing.T) {
	g := DefaultGeometry()
	a, b, c := book("A", 0, 50), book("B", 0, 200), book("C", 1, 500)
	settled := Layout{a, b, c}

	f := Solve(g, settled, 2, dragTo(g, c, 110, 0))

	if !f.Magnetic {
		t.Fatal("expected magnetic frame")
	}
	if f.InsertIndex != 1 {
		t.Errorf("InsertIndex = %d, want 1", f.InsertIndex)
	}
	want := Layout{book("A", 0, 50), book("B", 0, 256), book("C", 0, 106)}
	if !reflect.DeepEqual(f.Layout, want) {
		t.Errorf("Layout = %+v, want %+v", f.Layout, want)
	}
}

func TestSolveSnap(t *testing.T) {
	g := DefaultGeometry()
	left, right := book("L", 0, 0), book("R", 0, 100)
	dragged := book("D", 1, 400)
	settled := Layout{left, right, dragged}

	tests := []struct {
		name       string
		centerX    float64
		wantX      float64
		wantInsert int
		wantL      float64
		wantR      float64
	}{
		{
			name:       "left of first occupant",
			centerX:    0,
			wantX:      -56,
			wantInsert: 0,
			wantL:      56,
			wantR:      156,
		},
		{
			name:       "between occupants",
			centerX:    80,
			wantX:      56,
			wantInsert: 1,
			wantL:      0,
			wantR:      156,
		},
		{
			name:       "right of last occupant",
			centerX:    200,
			wantX:      156,
			wantInsert: 2,
			wantL:      0,
			wantR:      100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Solve(g, settled, 2, dragTo(g, dragged, tt.centerX, 0))
			if !f.Magnetic {
				t.Fatal("expected magnetic frame")
			}
			if f.InsertIndex != tt.wantInsert {
				t.Errorf("InsertIndex = %d, want %d", f.InsertIndex, tt.wantInsert)
			}
			got, _ := f.Layout.Find("D")
			if got.X != tt.wantX || got.Shelf != 0 {
				t.Errorf("dragged at (%d, %v), want (0, %v)", got.Shelf, got.X, tt.wantX)
			}
			if l, _ := f.Layout.Find("L"); l.X != tt.wantL {
				t.Errorf("L.X = %v, want %v", l.X, tt.wantL)
			}
			if r, _ := f.Layout.Find("R"); r.X != tt.wantR {
				t.Errorf("R.X = %v, want %v", r.X, tt.wantR)
			}
		})
	}
}

func TestSolveFreePlacement(t *testing.T) {
	g := DefaultGeometry()
	occupant := book("O", 0, 0)
	dragged := book("D", 1, 400)
	settled := Layout{occupant, dragged}

	f := Solve(g, settled, 2, dragTo(g, dragged, 600, 0))

	if f.Magnetic {
		t.Fatal("frame should not be magnetic 544px from the nearest edge")
	}
	if got, _ := f.Layout.Find("D"); got.X != 572 {
		t.Errorf("dragged X = %v, want raw 572", got.X)
	}
	if got, _ := f.Layout.Find("O"); got.X != 0 {
		t.Errorf("occupant moved to %v during free placement", got.X)
	}
}

func TestSolveEmptyShelf(t *testing.T) {
	g := DefaultGeometry()
	dragged := book("D", 0, 50)
	f := Solve(g, Layout{dragged}, 2, dragTo(g, dragged, 328, 1))

	got, _ := f.Layout.Find("D")
	if f.Magnetic || got.Shelf != 1 || got.X != 300 {
		t.Errorf("got %+v magnetic=%v, want shelf 1 x 300 free", got, f.Magnetic)
	}
}

func TestSolveShelfTargeting(t *testing.T) {
	g := DefaultGeometry()
	dragged := book("D", 0, 50)
	settled := Layout{dragged}

	tests := []struct {
		name      string
		y         float64
		wantShelf int
		wantGhost bool
	}{
		{"above first shelf clamps to 0", -50, 0, false},
		{"inside top margin", 40, 0, false},
		{"first shelf", 100, 0, false},
		{"second shelf", 380, 1, false},
		{"ghost shelf", 690, 2, true},
		{"far below clamps to ghost", 5000, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Pickup(g, dragged, 60, 100)
			d.CurrentX, d.CurrentY = 200, tt.y
			f := Solve(g, settled, 2, d)
			if f.TargetShelf != tt.wantShelf || f.Ghost != tt.wantGhost {
				t.Errorf("target = %d ghost = %v, want %d ghost = %v",
					f.TargetShelf, f.Ghost, tt.wantShelf, tt.wantGhost)
			}
		})
	}
}

func TestSolveDisplacementPreservesOrder(t *testing.T) {
	g := DefaultGeometry()
	settled := Layout{
		book("a", 0, 0),
		book("b", 0, 60),
		book("c", 0, 120),
		book("d", 0, 180),
		book("x", 1, 0),
		book("D", 1, 300),
	}

	f := Solve(g, settled, 2, dragTo(g, settled[5], 100, 0))

	if f.InsertIndex != 2 {
		t.Fatalf("InsertIndex = %d, want 2", f.InsertIndex)
	}
	wantX := map[string]float64{"a": 0, "b": 60, "c": 176, "d": 236, "x": 0, "D": 116}
	for id, want := range wantX {
		if got, _ := f.Layout.Find(id); got.X != want {
			t.Errorf("%s.X = %v, want %v", id, got.X, want)
		}
	}

	occ := f.Layout.Occupants(0, "D")
	for i := 1; i < len(occ); i++ {
		if occ[i-1].X >= occ[i].X {
			t.Errorf("order broken: %s at %v before %s at %v", occ[i-1].ID, occ[i-1].X, occ[i].ID, occ[i].X)
		}
	}
}

func TestSolveDoesNotMutateSettled(t *testing.T) {
	g := DefaultGeometry()
	settled := Layout{book("A", 0, 50), book("B", 0, 200), book("C", 1, 500)}
	before := settled.Clone()

	Solve(g, settled, 2, dragTo(g, settled[2], 110, 0))

	if !reflect.DeepEqual(settled, before) {
		t.Errorf("settled changed: %+v, want %+v", settled, before)
	}
}

func TestSolveUnknownItem(t *testing.T) {
	g := DefaultGeometry()
	settled := Layout{book("A", 0, 50)}

	f := Solve(g, settled, 2, DragSession{ItemID: "missing", CurrentY: 200})

	if !reflect.DeepEqual(f.Layout, settled) {
		t.Errorf("Layout = %+v, want settled", f.Layout)
	}
	if f.TargetShelf != -1 {
		t.Errorf("TargetShelf = %d, want -1", f.TargetShelf)
	}
}

func TestDragSessionDisplacement(t *testing.T) {
	d := DragSession{StartX: 10, StartY: 10, CurrentX: 13, CurrentY: 14}
	if got := d.Displacement(); got != 5 {
		t.Errorf("Displacement() = %v, want 5", got)
	}
}
