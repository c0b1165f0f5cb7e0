// Package config loads shelfspace settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/shelfspace/config.toml (falling back to
// ~/.config/shelfspace/config.toml). Every key is optional; a missing file
// yields [Default]. Example:
//
//	[geometry]
//	snap_distance = 90
//
//	[geometry.archive_zone]
//	x = 0
//	y = 700
//	width = 200
//	height = 200
//
//	[store]
//	backend = "redis"
//	redis.addr = "localhost:6379"
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/shelf"
	"github.com/matzehuels/shelfspace/pkg/store"
)

const appName = "shelfspace"

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// TUIConfig configures the terminal host. CellWidth and CellHeight are the
// container pixels one terminal cell stands for.
type TUIConfig struct {
	CellWidth  float64 `toml:"cell_width"`
	CellHeight float64 `toml:"cell_height"`
	Watch      bool    `toml:"watch"`
}

// Config is the complete shelfspace configuration.
type Config struct {
	Geometry shelf.Geometry `toml:"geometry"`
	Store    store.Config   `toml:"store"`
	Server   ServerConfig   `toml:"server"`
	TUI      TUIConfig      `toml:"tui"`
}

// Default returns the built-in configuration: stock geometry, a file store
// in the XDG data directory, and the server on localhost:8080.
func Default() Config {
	path, _ := store.DefaultPath()
	return Config{
		Geometry: shelf.DefaultGeometry(),
		Store: store.Config{
			Backend: store.BackendFile,
			Path:    path,
			Redis:   store.RedisConfig{Key: store.DefaultRedisKey},
			Mongo: store.MongoConfig{
				Database:   store.DefaultMongoDatabase,
				Collection: store.DefaultMongoCollection,
				LibraryID:  store.DefaultLibraryID,
			},
		},
		Server: ServerConfig{Addr: "localhost:8080"},
		TUI:    TUIConfig{CellWidth: 8, CellHeight: 30},
	}
}

// Path returns the config file location using the XDG convention.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the config at path over the defaults. An empty path means
// Path(). A missing file is not an error.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := Decode(string(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses TOML from data into cfg, keeping values the document does
// not set, and validates the result. Unknown keys are rejected.
func Decode(data string, cfg *Config) error {
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Geometry.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.addr cannot be empty")
	}
	if c.TUI.CellWidth <= 0 || c.TUI.CellHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "tui.cell_width and tui.cell_height must be positive")
	}
	return nil
}

// Write encodes cfg as TOML.
func Write(w io.Writer, cfg Config) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Init writes the default configuration to path, refusing to overwrite an
// existing file unless force is set.
func Init(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := Write(f, Default()); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}
