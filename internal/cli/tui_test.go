package cli

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/shelfspace/pkg/config"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/store"
)

func TestViewportToContainer(t *testing.T) {
	vp := viewport{cellW: 8, cellH: 30, originRow: 2}
	tests := []struct {
		name     string
		scroll   int
		col, row int
		wantX    float64
		wantY    float64
	}{
		{"origin", 0, 0, 2, 4, 15},
		{"inside first shelf", 0, 8, 8, 68, 195},
		{"scrolled", 3, 0, 2, 4, 105},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := vp
			v.scroll = tt.scroll
			x, y := v.toContainer(tt.col, tt.row)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("toContainer(%d, %d) = (%v, %v), want (%v, %v)", tt.col, tt.row, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestFloorDiv(t *testing.T) {
	tests := []struct {
		v, step float64
		want    int
	}{
		{0, 30, 0},
		{29.9, 30, 0},
		{30, 30, 1},
		{-1, 30, -1},
	}
	for _, tt := range tests {
		if got := floorDiv(tt.v, tt.step); got != tt.want {
			t.Errorf("floorDiv(%v, %v) = %d, want %d", tt.v, tt.step, got, tt.want)
		}
	}
}

func TestCanvasString(t *testing.T) {
	c := newCanvas(5, 2)
	s := c.style(StyleDim)
	c.text(0, 0, "ab", s)
	c.set(4, 1, 'x', 0)
	c.set(9, 9, 'y', s) // out of bounds

	want := "ab   \n    x"
	if got := c.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestStars(t *testing.T) {
	if got := stars(4.5); got != "★★★★½ 4.5" {
		t.Errorf("stars(4.5) = %q", got)
	}
	if got := stars(0); got != " 0.0" {
		t.Errorf("stars(0) = %q", got)
	}
}

func newTestModel(t *testing.T) (shelfModel, *session.Session) {
	t.Helper()
	ctx := context.Background()
	cfg := config.Default()
	sess, err := session.Open(ctx, store.NewMemoryStore(nil), session.Options{Geometry: cfg.Geometry})
	if err != nil {
		t.Fatalf("session.Open() error = %v", err)
	}
	m := newShelfModel(ctx, sess, cfg)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(shelfModel), sess
}

func mouse(m shelfModel, action tea.MouseAction, col, row int) shelfModel {
	next, _ := m.Update(tea.MouseMsg{X: col, Y: row, Action: action, Button: tea.MouseButtonLeft})
	return next.(shelfModel)
}

func TestShelfModelPlacesArchiveZone(t *testing.T) {
	_, sess := newTestModel(t)

	zone := sess.Geometry().ArchiveZone
	if zone == nil {
		t.Fatal("archive zone not placed on resize")
	}
	// 40 rows minus header and footer leaves 36 shelf rows of 30px.
	if zone.X != 0 || zone.Y != 36*30-200 || zone.Width != 200 || zone.Height != 200 {
		t.Errorf("zone = %+v", *zone)
	}
}

func TestShelfModelDragCommits(t *testing.T) {
	m, sess := newTestModel(t)

	m = mouse(m, tea.MouseActionPress, 8, 8)
	if !sess.Dragging() {
		t.Fatal("press on a book should start a drag")
	}
	m = mouse(m, tea.MouseActionMotion, 30, 8)
	m = mouse(m, tea.MouseActionRelease, 30, 8)

	if m.err != nil {
		t.Fatalf("err = %v", m.err)
	}
	b, _ := m.lib.Book("1")
	if b.Position == nil || b.Position.X == 50 {
		t.Errorf("book 1 position = %+v, want it moved", b.Position)
	}
}

func TestShelfModelDropOnArchive(t *testing.T) {
	m, sess := newTestModel(t)

	m = mouse(m, tea.MouseActionPress, 8, 8)
	m = mouse(m, tea.MouseActionMotion, 2, 35)
	m = mouse(m, tea.MouseActionRelease, 2, 35)

	lib := sess.Library()
	if len(lib.ArchivedBooks) != 1 || lib.ArchivedBooks[0].ID != "1" {
		t.Errorf("archived = %+v, want book 1", lib.ArchivedBooks)
	}
	if !strings.Contains(m.statusLine(), "archived norwegian wood") {
		t.Errorf("status = %q", m.statusLine())
	}
}

func TestShelfModelClickOpensBook(t *testing.T) {
	m, _ := newTestModel(t)

	m = mouse(m, tea.MouseActionPress, 16, 8)
	m = mouse(m, tea.MouseActionRelease, 16, 8)

	if m.opened == nil || m.opened.ID != "2" {
		t.Fatalf("opened = %+v, want book 2", m.opened)
	}
	view := m.View()
	for _, want := range []string{"educated", "tara westover", "memoir"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if next.(shelfModel).opened != nil {
		t.Error("esc should close the detail panel")
	}
}

func TestShelfModelView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()

	for _, want := range []string{"the wonderful book shelf", "archive", "2 shelves", "4 items"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if lines := strings.Count(view, "\n") + 1; lines != 40 {
		t.Errorf("view has %d lines, want 40", lines)
	}
}

func TestShelfModelGhostShelf(t *testing.T) {
	m, _ := newTestModel(t)

	// Two shelves end at 80+600=680px, row 22 after the header.
	m = mouse(m, tea.MouseActionPress, 8, 8)
	m = mouse(m, tea.MouseActionMotion, 60, 26)

	if !strings.Contains(m.View(), "create new shelf") {
		t.Error("ghost shelf not drawn while dragging below the last shelf")
	}
}

func TestShelfModelQuit(t *testing.T) {
	m, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestWatchLibraryRequiresFileBackend(t *testing.T) {
	if _, err := watchLibrary(store.Config{Backend: store.BackendMemory}); err == nil {
		t.Error("watchLibrary() should refuse the memory backend")
	}

	w, err := watchLibrary(store.Config{Backend: store.BackendFile, Path: t.TempDir() + "/library.json"})
	if err != nil {
		t.Fatalf("watchLibrary() error = %v", err)
	}
	defer w.Close()
	if w.name != "library.json" {
		t.Errorf("name = %q", w.name)
	}
}
