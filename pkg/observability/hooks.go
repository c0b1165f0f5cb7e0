// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about drag sessions and item store operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the layout engine free of observability frameworks
//   - Allows different backends (logs, Prometheus, OpenTelemetry, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetShelfHooks(&myShelfHooks{})
//	    observability.SetStoreHooks(&myStoreHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Shelf().OnDragStart(ctx, itemID, kind)
//	// ... pointer moves ...
//	observability.Shelf().OnCommit(ctx, itemID, shelf, shelfCount, magnetic)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Shelf Hooks
// =============================================================================

// ShelfHooks receives events from the drag session state machine.
type ShelfHooks interface {
	// OnDragStart records an item being picked up.
	OnDragStart(ctx context.Context, itemID, kind string)

	// OnCommit records a drop that settled the item on a shelf.
	OnCommit(ctx context.Context, itemID string, shelf, shelfCount int, magnetic bool)

	// OnArchive records a drop on the archive zone.
	OnArchive(ctx context.Context, itemID, kind string)

	// OnActivate records a click (a release below the drag threshold).
	OnActivate(ctx context.Context, itemID, kind string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from item store backends.
type StoreHooks interface {
	// OnLoad records a library load.
	OnLoad(ctx context.Context, backend string, items int, duration time.Duration, err error)

	// OnSave records a library save.
	OnSave(ctx context.Context, backend string, items int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopShelfHooks is a no-op implementation of ShelfHooks.
type NoopShelfHooks struct{}

func (NoopShelfHooks) OnDragStart(context.Context, string, string)      {}
func (NoopShelfHooks) OnCommit(context.Context, string, int, int, bool) {}
func (NoopShelfHooks) OnArchive(context.Context, string, string)        {}
func (NoopShelfHooks) OnActivate(context.Context, string, string)       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, int, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, int, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	shelfHooks ShelfHooks = NoopShelfHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetShelfHooks registers custom shelf hooks.
// This should be called once at application startup before any drag happens.
func SetShelfHooks(h ShelfHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		shelfHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store is opened.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Shelf returns the registered shelf hooks.
func Shelf() ShelfHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return shelfHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	shelfHooks = NoopShelfHooks{}
	storeHooks = NoopStoreHooks{}
}
