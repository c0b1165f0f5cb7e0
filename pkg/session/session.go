// Package session binds a shelf engine to a persisted library.
//
// A [Session] is what every host drives: the terminal UI, the HTTP server
// and the replay harness. It owns one [shelf.Engine], the [store.Library]
// the engine was synced from, and the [store.Store] the library lives in.
// Effects are applied to a copy of the library, which replaces the live
// one only once every effect succeeded and the copy was saved. The engine
// is then resynced from whichever library is current.
//
// # Usage
//
//	st, _ := store.Open(ctx, cfg.Store)
//	sess, err := session.Open(ctx, st, session.Options{Geometry: cfg.Geometry})
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	sess.PointerDown(ctx, "1", 60, 200)
//	sess.PointerMove(ctx, 300, 200)
//	res, err := sess.PointerUp(ctx, 300, 200)
//
// Session methods are safe for concurrent use. The engine underneath
// still sees one event at a time.
package session

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// Options configures a Session.
type Options struct {
	Geometry shelf.Geometry
	Logger   *log.Logger // nil uses log.Default()
	Rand     *rand.Rand  // spine randomness for new books; nil uses the global source
}

// Result is the outcome of one pointer event.
type Result struct {
	Effects []shelf.Effect
	// Saved is set when the event changed the library and it was persisted.
	Saved bool
	// Opened is the book a click opened, if any.
	Opened *store.Book
	// Toggled is set when a click toggled the music player.
	Toggled bool
}

// Session owns an engine, its library and the backing store.
type Session struct {
	mu      sync.Mutex
	store   store.Store
	lib     *store.Library
	engine  *shelf.Engine
	logger  *log.Logger
	rng     *rand.Rand
	playing bool

	// per-event scratch, filled by the engine handlers
	next    *store.Library
	opened  *store.Book
	toggled bool
	failed  error
}

// Open loads the library from st and settles an engine on it.
func Open(ctx context.Context, st store.Store, opts Options) (*Session, error) {
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	lib, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := &Session{store: st, lib: lib, logger: logger, rng: opts.Rand}
	s.engine = shelf.NewEngine(opts.Geometry, lib.Items(), shelf.Handlers{
		OnReorder:  s.onReorder,
		OnArchive:  s.onArchive,
		OnActivate: s.onActivate,
	}, logger)
	return s, nil
}

// pending returns the library copy the current event edits, cloning it on
// first use.
func (s *Session) pending() *store.Library {
	if s.next == nil {
		s.next = s.lib.Clone()
	}
	return s.next
}

func (s *Session) onReorder(_ context.Context, kind shelf.Kind, placements []shelf.Placement) {
	if s.failed != nil {
		return
	}
	if err := s.pending().ApplyReorder(kind, placements); err != nil {
		s.failed = err
	}
}

func (s *Session) onArchive(_ context.Context, id string, kind shelf.Kind) {
	if s.failed != nil {
		return
	}
	if err := s.pending().Archive(id, kind); err != nil {
		s.failed = err
	}
}

func (s *Session) onActivate(_ context.Context, e shelf.Entry) {
	switch {
	case e.Kind == shelf.KindOrnament && e.Variant == shelf.VariantMusicPlayer:
		s.playing = !s.playing
		s.toggled = true
		s.logger.Debug("music toggled", "playing", s.playing)
	case e.Kind == shelf.KindBook:
		if b, ok := s.lib.Book(e.ID); ok {
			s.opened = &b
		}
	}
}

// SetArchiveZone moves the archive zone. It reports false while a drag is
// active.
func (s *Session) SetArchiveZone(r *shelf.Rect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.SetArchiveZone(r)
}

// Geometry returns the engine geometry.
func (s *Session) Geometry() shelf.Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Geometry()
}

// Frame returns the layout to render right now.
func (s *Session) Frame() shelf.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Frame()
}

// State returns a snapshot of the engine state.
func (s *Session) State() shelf.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State()
}

// Snapshot returns the engine state and the frame drawn from it, taken
// under one lock.
func (s *Session) Snapshot() (shelf.State, shelf.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.State(), s.engine.Frame()
}

// Library returns a copy of the current library.
func (s *Session) Library() *store.Library {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lib.Clone()
}

// Playing reports whether the music player is toggled on.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Dragging reports whether a drag session is active.
func (s *Session) Dragging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Dragging()
}

// PointerDown grabs itemID at (x, y).
func (s *Session) PointerDown(ctx context.Context, itemID string, x, y float64) (Result, error) {
	return s.dispatch(ctx, shelf.PointerDown{ItemID: itemID, X: x, Y: y})
}

// PointerMove moves the active pointer to (x, y).
func (s *Session) PointerMove(ctx context.Context, x, y float64) (Result, error) {
	return s.dispatch(ctx, shelf.PointerMove{X: x, Y: y})
}

// PointerUp releases the active pointer at (x, y), persisting any commit
// or archive.
func (s *Session) PointerUp(ctx context.Context, x, y float64) (Result, error) {
	return s.dispatch(ctx, shelf.PointerUp{X: x, Y: y})
}

// Grab starts a drag on whatever item is drawn at (x, y). It reports false
// when nothing is there.
func (s *Session) Grab(ctx context.Context, x, y float64) (Result, bool, error) {
	s.mu.Lock()
	e, ok := shelf.HitTest(s.engine.Geometry(), s.engine.Frame().Layout, x, y)
	s.mu.Unlock()
	if !ok {
		return Result{}, false, nil
	}
	res, err := s.PointerDown(ctx, e.ID, x, y)
	return res, true, err
}

func (s *Session) dispatch(ctx context.Context, ev shelf.Event) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next, s.opened, s.toggled, s.failed = nil, nil, false, nil
	effects := s.engine.Dispatch(ctx, ev)
	res := Result{Effects: effects, Opened: s.opened, Toggled: s.toggled}

	next, failed := s.next, s.failed
	s.next, s.failed = nil, nil
	if failed != nil {
		s.logger.Error("effect failed", "err", failed)
		s.resync(ctx)
		return res, failed
	}
	if next == nil {
		return res, nil
	}
	if err := s.save(ctx, next); err != nil {
		return res, err
	}
	res.Saved = true
	return res, nil
}

// save persists next and makes it the live library. On error the live
// library is kept and the engine is put back on it. Callers hold s.mu.
func (s *Session) save(ctx context.Context, next *store.Library) error {
	if err := s.store.Save(ctx, next); err != nil {
		s.logger.Error("save failed", "err", err)
		s.resync(ctx)
		return err
	}
	s.lib = next
	s.resync(ctx)
	return nil
}

func (s *Session) resync(ctx context.Context) {
	s.engine.Sync(ctx, s.lib.Items())
}

// mutate runs fn against the library and saves the result. Library edits
// are refused while a drag is active.
func (s *Session) mutate(ctx context.Context, fn func(*store.Library) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.Dragging() {
		return errors.New(errors.ErrCodeDragInProgress, "library cannot change while an item is being dragged")
	}
	next := s.lib.Clone()
	if err := fn(next); err != nil {
		return err
	}
	return s.save(ctx, next)
}

// AddBooks adds a batch of drafts as books or websites.
func (s *Session) AddBooks(ctx context.Context, drafts []store.Draft, itemType string) ([]store.Book, error) {
	var added []store.Book
	err := s.mutate(ctx, func(lib *store.Library) error {
		var err error
		added, err = lib.AddBooks(drafts, itemType, s.rng)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("items added", "count", len(added), "type", itemType)
	return added, nil
}

// AddBook adds one draft as a book or website.
func (s *Session) AddBook(ctx context.Context, d store.Draft, itemType string) (store.Book, error) {
	var added store.Book
	err := s.mutate(ctx, func(lib *store.Library) error {
		var err error
		added, err = lib.AddBook(d, itemType, s.rng)
		return err
	})
	if err != nil {
		return store.Book{}, err
	}
	s.logger.Info("item added", "id", added.ID, "type", itemType)
	return added, nil
}

// AddOrnament adds an ornament of the given variant.
func (s *Session) AddOrnament(ctx context.Context, variant string) (store.Ornament, error) {
	var added store.Ornament
	err := s.mutate(ctx, func(lib *store.Library) error {
		var err error
		added, err = lib.AddOrnament(variant)
		return err
	})
	if err != nil {
		return store.Ornament{}, err
	}
	s.logger.Info("ornament added", "id", added.ID, "variant", variant)
	return added, nil
}

// Archive moves a shelved item to the archive without a drag.
func (s *Session) Archive(ctx context.Context, id string, kind shelf.Kind) error {
	return s.mutate(ctx, func(lib *store.Library) error { return lib.Archive(id, kind) })
}

// Restore puts an archived item back on the first shelf.
func (s *Session) Restore(ctx context.Context, id string, kind shelf.Kind) error {
	return s.mutate(ctx, func(lib *store.Library) error { return lib.Restore(id, kind) })
}

// DeleteForever removes an archived item permanently.
func (s *Session) DeleteForever(ctx context.Context, id string, kind shelf.Kind) error {
	return s.mutate(ctx, func(lib *store.Library) error { return lib.DeleteForever(id, kind) })
}

// Reload replaces the library with the store's current copy. It reports
// false, without loading, while a drag is active.
func (s *Session) Reload(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine.Dragging() {
		return false, nil
	}
	lib, err := s.store.Load(ctx)
	if err != nil {
		return false, err
	}
	s.lib = lib
	s.resync(ctx)
	return true, nil
}

// Close closes the backing store.
func (s *Session) Close() error { return s.store.Close() }
