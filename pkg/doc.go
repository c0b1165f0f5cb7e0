// Package pkg provides the core libraries for the shelfspace bookshelf.
//
// # Overview
//
// Shelfspace keeps books, saved websites and ornaments on a stack of
// shelves. Items are placed by dragging: a dropped item snaps next to its
// neighbours, a drop below the last shelf creates a new one, and a drop on
// the archive zone takes the item off the shelf.
//
//  1. [shelf] - Layout and drag-reflow engine (pure, no I/O)
//  2. [store] - Library persistence (memory, file, Redis, MongoDB)
//  3. [session] - An engine bound to a store; what every host drives
//  4. [config] - TOML configuration for geometry, store and hosts
//
// # Architecture
//
// The flow of one drag:
//
//	pointer events (terminal cells or browser pixels)
//	         ↓
//	    [session] one event at a time, container pixels
//	         ↓
//	    [shelf] Reduce → live frame, then Reorder/Archive/Activate effects
//	         ↓
//	    [store] Library.ApplyReorder / Archive, then Save
//	         ↓
//	    [shelf] resync from the saved library
//
// # Quick Start
//
//	st, _ := store.Open(ctx, store.Config{Backend: store.BackendMemory})
//	sess, _ := session.Open(ctx, st, session.Options{Geometry: shelf.DefaultGeometry()})
//
//	sess.PointerDown(ctx, "1", 60, 200)
//	sess.PointerMove(ctx, 300, 200)
//	res, _ := sess.PointerUp(ctx, 300, 200)
//	for _, eff := range res.Effects {
//	    fmt.Printf("%#v\n", eff)
//	}
//
// # Supporting Packages
//
// [errors] - Coded errors shared by every layer and mapped to HTTP status
// codes by the server.
//
// [observability] - Hook registry for drag and store events.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/shelf     # Examples only
//	go test -tags integration ./pkg/...  # Include Redis/MongoDB tests
//
// [shelf]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/shelf
// [store]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/store
// [session]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/session
// [config]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/shelfspace/pkg/buildinfo
package pkg
