// Package cli implements the shelfspace command-line interface.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/shelfspace/pkg/config"
	"github.com/matzehuels/shelfspace/pkg/observability"
	"github.com/matzehuels/shelfspace/pkg/session"
	"github.com/matzehuels/shelfspace/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "shelfspace"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the XDG config location when set (--config).
	ConfigPath string
	// Backend overrides store.backend when set (--store).
	Backend string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level the shelf and
// store hooks report to the logger too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		h := &logHooks{logger: c.Logger}
		observability.SetShelfHooks(h)
		observability.SetStoreHooks(h)
	}
}

// =============================================================================
// Session Factory
// =============================================================================

// loadConfig reads the configuration and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.Backend != "" {
		cfg.Store.Backend = c.Backend
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// openStore connects to the configured backend. Remote backends show a
// spinner while connecting.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	remote := cfg.Store.Backend == store.BackendRedis || cfg.Store.Backend == store.BackendMongo
	if !remote {
		return store.Open(ctx, cfg.Store)
	}

	var st store.Store
	err := withSpinner(ctx, os.Stderr, "Connecting to "+cfg.Store.Backend+"...", func() error {
		var err error
		st, err = store.Open(ctx, cfg.Store)
		return err
	})
	return st, err
}

// openSession loads the config, opens the store and settles a session.
func (c *CLI) openSession(ctx context.Context) (*session.Session, config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	st, err := c.openStore(ctx, cfg)
	if err != nil {
		return nil, config.Config{}, err
	}
	sess, err := session.Open(ctx, st, session.Options{Geometry: cfg.Geometry, Logger: c.Logger})
	if err != nil {
		st.Close()
		return nil, config.Config{}, err
	}
	c.Logger.Debug("session opened", "backend", cfg.Store.Backend, "items", sess.Library().Count())
	return sess, cfg, nil
}
