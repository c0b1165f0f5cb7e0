// Package store persists the shelf library.
//
// A [Library] holds the shelved and archived items plus the shelf's title
// settings. Hosts load it, feed [Library.Items] to the shelf engine, and
// write committed placements back with [Library.ApplyReorder] before
// saving. Backends:
//   - memory: in-process, for tests and throwaway sessions
//   - file: one JSON file, the CLI default
//   - redis: one JSON value under a key
//   - mongo: one document per library
//
// A backend that has nothing stored yet loads [Default].
package store

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/shelfspace/pkg/errors"
	"github.com/matzehuels/shelfspace/pkg/observability"
)

// Backend names accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

// Backends lists the supported backend names.
var Backends = []string{BackendFile, BackendMemory, BackendRedis, BackendMongo}

// Store loads and saves a Library.
type Store interface {
	Load(ctx context.Context) (*Library, error)
	Save(ctx context.Context, lib *Library) error
	Close() error
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// MongoConfig configures the mongo backend.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	LibraryID  string `toml:"library_id"`
}

// Config selects and configures a backend.
type Config struct {
	Backend string      `toml:"backend"`
	Path    string      `toml:"path"` // empty means DefaultPath()
	Redis   RedisConfig `toml:"redis"`
	Mongo   MongoConfig `toml:"mongo"`
}

// Validate checks that the selected backend has what it needs.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendMemory, BackendFile:
	case BackendRedis:
		if c.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.redis.addr is required for the redis backend")
		}
	case BackendMongo:
		if c.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "store.mongo.uri is required for the mongo backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown store backend %q (want one of %v)", c.Backend, Backends)
	}
	return nil
}

// Open connects to the backend named by cfg. Connection failures are
// retried with backoff.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var s Store
	err := RetryWithBackoff(ctx, func() error {
		var err error
		switch cfg.Backend {
		case BackendMemory:
			s = NewMemoryStore(nil)
		case BackendFile:
			s, err = NewFileStore(cfg.Path)
		case BackendRedis:
			s, err = NewRedisStore(ctx, cfg.Redis)
		case BackendMongo:
			s, err = NewMongoStore(ctx, cfg.Mongo)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return instrumented{Store: s, backend: cfg.Backend}, nil
}

// instrumented reports loads and saves to the store hooks.
type instrumented struct {
	Store
	backend string
}

func (s instrumented) Load(ctx context.Context) (*Library, error) {
	start := time.Now()
	lib, err := s.Store.Load(ctx)
	n := 0
	if lib != nil {
		n = lib.Count()
	}
	observability.Store().OnLoad(ctx, s.backend, n, time.Since(start), err)
	return lib, err
}

func (s instrumented) Save(ctx context.Context, lib *Library) error {
	start := time.Now()
	err := s.Store.Save(ctx, lib)
	observability.Store().OnSave(ctx, s.backend, lib.Count(), time.Since(start), err)
	return err
}

// Unwrap returns the underlying backend.
func (s instrumented) Unwrap() Store { return s.Store }

// RetryableError marks an error as transient.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return stderrors.As(err, &re)
}

// retryDelay is the first backoff delay; tests shorten it.
var retryDelay = time.Second

// RetryWithBackoff retries fn up to 3 times with exponential backoff.
// Only errors wrapped with Retryable will trigger retries.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryDelay
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// unavailable wraps a backend failure as STORE_UNAVAILABLE.
func unavailable(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStoreUnavailable, err, format, args...)
}

// corrupt wraps a decode failure as STORE_CORRUPT.
func corrupt(err error, format string, args ...any) error {
	return errors.Wrap(errors.ErrCodeStoreCorrupt, err, format, args...)
}

// normalize replaces nil slices so encoded libraries always carry arrays.
func normalize(lib *Library) *Library {
	if lib.Books == nil {
		lib.Books = []Book{}
	}
	if lib.Ornaments == nil {
		lib.Ornaments = []Ornament{}
	}
	if lib.ArchivedBooks == nil {
		lib.ArchivedBooks = []Book{}
	}
	if lib.ArchivedOrnaments == nil {
		lib.ArchivedOrnaments = []Ornament{}
	}
	return lib
}
