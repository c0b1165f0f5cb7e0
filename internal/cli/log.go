package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shelfspace/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Replayed 12 events (3ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Hooks
// =============================================================================

// logHooks reports shelf and store activity at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnDragStart(_ context.Context, itemID, kind string) {
	h.logger.Debug("hook: drag start", "item", itemID, "kind", kind)
}

func (h *logHooks) OnCommit(_ context.Context, itemID string, shelf, shelfCount int, magnetic bool) {
	h.logger.Debug("hook: commit", "item", itemID, "shelf", shelf, "shelves", shelfCount, "magnetic", magnetic)
}

func (h *logHooks) OnArchive(_ context.Context, itemID, kind string) {
	h.logger.Debug("hook: archive", "item", itemID, "kind", kind)
}

func (h *logHooks) OnActivate(_ context.Context, itemID, kind string) {
	h.logger.Debug("hook: activate", "item", itemID, "kind", kind)
}

func (h *logHooks) OnLoad(_ context.Context, backend string, items int, d time.Duration, err error) {
	h.storeEvent("load", backend, items, d, err)
}

func (h *logHooks) OnSave(_ context.Context, backend string, items int, d time.Duration, err error) {
	h.storeEvent("save", backend, items, d, err)
}

func (h *logHooks) storeEvent(op, backend string, items int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("hook: store "+op+" failed", "backend", backend, "err", err)
		return
	}
	h.logger.Debug("hook: store "+op, "backend", backend, "items", items, "duration", d.Round(time.Microsecond))
}

var (
	_ observability.ShelfHooks = (*logHooks)(nil)
	_ observability.StoreHooks = (*logHooks)(nil)
)
