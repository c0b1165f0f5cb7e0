package shelf

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shelfspace/pkg/observability"
)

type recordingHooks struct {
	observability.NoopShelfHooks
	starts, commits, archives, activations []string
}

func (h *recordingHooks) OnDragStart(_ context.Context, id, _ string) {
	h.starts = append(h.starts, id)
}

func (h *recordingHooks) OnCommit(_ context.Context, id string, _, _ int, _ bool) {
	h.commits = append(h.commits, id)
}

func (h *recordingHooks) OnArchive(_ context.Context, id, _ string) {
	h.archives = append(h.archives, id)
}

func (h *recordingHooks) OnActivate(_ context.Context, id, _ string) {
	h.activations = append(h.activations, id)
}

func newTestEngine(t *testing.T, g Geometry, h Handlers) (*Engine, *recordingHooks, *bytes.Buffer) {
	t.Helper()
	hooks := &recordingHooks{}
	observability.SetShelfHooks(hooks)
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return NewEngine(g, starterItems(), h, logger), hooks, &buf
}

func TestEngineCommitCallsHandlers(t *testing.T) {
	ctx := context.Background()
	reorders := map[Kind][]Placement{}
	e, hooks, buf := newTestEngine(t, DefaultGeometry(), Handlers{
		OnReorder: func(_ context.Context, k Kind, p []Placement) { reorders[k] = p },
	})

	e.PointerDown(ctx, "A", 60, 200)
	if !e.Dragging() {
		t.Fatal("engine should be dragging after pointer-down on an item")
	}
	e.PointerMove(ctx, 150, 200)
	e.PointerUp(ctx, 282, 200)

	if len(reorders[KindBook]) != 2 || len(reorders[KindOrnament]) != 1 {
		t.Errorf("reorders = %+v, want both kinds", reorders)
	}
	if len(hooks.starts) != 1 || len(hooks.commits) != 1 || hooks.commits[0] != "A" {
		t.Errorf("hooks = %+v, want one start and one commit for A", hooks)
	}
	if !strings.Contains(buf.String(), "item placed") {
		t.Errorf("log output missing commit line:\n%s", buf.String())
	}
}

func TestEngineClickActivates(t *testing.T) {
	ctx := context.Background()
	var activated []Entry
	e, hooks, _ := newTestEngine(t, DefaultGeometry(), Handlers{
		OnActivate: func(_ context.Context, en Entry) { activated = append(activated, en) },
		OnReorder: func(context.Context, Kind, []Placement) {
			t.Error("click must not reorder")
		},
	})

	e.PointerDown(ctx, "fm", 110, 400)
	e.PointerUp(ctx, 112, 401)

	if len(activated) != 1 || activated[0].ID != "fm" || activated[0].Variant != VariantMusicPlayer {
		t.Errorf("activated = %+v, want the music player", activated)
	}
	if len(hooks.activations) != 1 {
		t.Errorf("activation hooks = %v, want 1", hooks.activations)
	}
}

func TestEngineArchive(t *testing.T) {
	ctx := context.Background()
	g := DefaultGeometry()
	g.ArchiveZone = &Rect{X: 0, Y: 1000, Width: 200, Height: 200}

	var archived []string
	e, hooks, _ := newTestEngine(t, g, Handlers{
		OnArchive: func(_ context.Context, id string, _ Kind) { archived = append(archived, id) },
	})

	e.PointerDown(ctx, "B", 210, 200)
	e.PointerUp(ctx, 10, 1010)

	if len(archived) != 1 || archived[0] != "B" {
		t.Errorf("archived = %v, want [B]", archived)
	}
	if len(hooks.archives) != 1 || len(hooks.commits) != 0 {
		t.Errorf("hooks = %+v, want one archive and no commit", hooks)
	}
	if _, ok := e.State().Settled.Find("B"); ok {
		t.Error("B should leave the layout")
	}
}

func TestEngineSyncDeferredWhileDragging(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newTestEngine(t, DefaultGeometry(), Handlers{})

	e.PointerDown(ctx, "A", 60, 200)
	if e.Sync(ctx, nil) {
		t.Error("Sync should be refused during a drag")
	}
	if len(e.Frame().Layout) != 3 {
		t.Errorf("frame has %d entries, want 3", len(e.Frame().Layout))
	}

	e.PointerUp(ctx, 61, 200)
	if !e.Sync(ctx, nil) {
		t.Error("Sync should apply once idle")
	}
	if len(e.State().Settled) != 0 || e.ShelfCount() != 2 {
		t.Errorf("state = %+v, want empty layout with two shelves", e.State())
	}
}

func TestEngineSetArchiveZone(t *testing.T) {
	ctx := context.Background()
	var archived []string
	e, _, _ := newTestEngine(t, DefaultGeometry(), Handlers{
		OnArchive: func(_ context.Context, id string, _ Kind) { archived = append(archived, id) },
	})

	zone := &Rect{X: 0, Y: 900, Width: 200, Height: 200}
	if !e.SetArchiveZone(zone) {
		t.Fatal("SetArchiveZone() refused while idle")
	}
	zone.Y = 0 // the engine keeps its own copy

	e.PointerDown(ctx, "A", 60, 200)
	if e.SetArchiveZone(nil) {
		t.Error("SetArchiveZone() should be refused during a drag")
	}
	e.PointerUp(ctx, 20, 950)

	if len(archived) != 1 || archived[0] != "A" {
		t.Errorf("archived = %v, want [A]", archived)
	}
}
