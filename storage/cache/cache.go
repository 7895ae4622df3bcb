// Package cache provides an optional read-through cache over a
// storage.Store. The lookup engine never depends on it: wrapping a store
// changes latency, not results.
package cache

import (
	"context"
	"errors"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/storage"
	"golang.org/x/sync/singleflight"
)

// DefaultSize is the default number of cached records per index family.
const DefaultSize = 10_000

// ErrInvalidSize is returned when the cache size is not positive.
var ErrInvalidSize = errors.New("cache size must be greater than 0")

// Store caches forward, reverse and inflection lookups of an underlying
// store. Concurrent misses on the same key share one backend read.
// Ranked key scans pass through uncached.
type Store struct {
	storage.Store
	forward    *lru.Cache[string, []core.Entry]
	reverse    *lru.Cache[string, []string]
	inflection *lru.Cache[string, []string]
	group      singleflight.Group
	logger     *slog.Logger
	size       int
}

var _ storage.Store = (*Store)(nil)

// Option configures a cache Store.
type Option func(*Store) error

// WithSize sets the per-family capacity.
// Default is DefaultSize.
func WithSize(size int) Option {
	return func(s *Store) error {
		if size <= 0 {
			return ErrInvalidSize
		}
		s.size = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New wraps inner with a cache.
func New(inner storage.Store, opts ...Option) (*Store, error) {
	if inner == nil {
		return nil, errors.New("inner store is required")
	}

	s := &Store{
		Store:  inner,
		logger: slog.Default(),
		size:   DefaultSize,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	var err error
	if s.forward, err = lru.New[string, []core.Entry](s.size); err != nil {
		return nil, err
	}
	if s.reverse, err = lru.New[string, []string](s.size); err != nil {
		return nil, err
	}
	if s.inflection, err = lru.New[string, []string](s.size); err != nil {
		return nil, err
	}
	return s, nil
}

// GetForward returns the entries under key, reading through the cache.
// Absent keys are cached as nil. Errors are never cached.
func (s *Store) GetForward(ctx context.Context, key string) ([]core.Entry, error) {
	if entries, ok := s.forward.Get(key); ok {
		return entries, nil
	}
	// The shared read must outlive the caller that started it.
	loadCtx := context.WithoutCancel(ctx)
	v, err, shared := s.group.Do("f:"+key, func() (any, error) {
		entries, err := s.Store.GetForward(loadCtx, key)
		if err != nil {
			return nil, err
		}
		s.forward.Add(key, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("shared forward lookup", "key", key)
	}
	return v.([]core.Entry), nil
}

// GetReverse returns the English keys under key, reading through the cache.
func (s *Store) GetReverse(ctx context.Context, key string) ([]string, error) {
	return s.getStrings(ctx, "r:", key, s.reverse, s.Store.GetReverse)
}

// GetInflection returns the lemma keys under key, reading through the cache.
func (s *Store) GetInflection(ctx context.Context, key string) ([]string, error) {
	return s.getStrings(ctx, "i:", key, s.inflection, s.Store.GetInflection)
}

func (s *Store) getStrings(ctx context.Context, family, key string, c *lru.Cache[string, []string],
	load func(context.Context, string) ([]string, error)) ([]string, error) {
	if values, ok := c.Get(key); ok {
		return values, nil
	}
	loadCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(family+key, func() (any, error) {
		values, err := load(loadCtx, key)
		if err != nil {
			return nil, err
		}
		c.Add(key, values)
		return values, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Len returns the number of cached records across all families.
func (s *Store) Len() int {
	return s.forward.Len() + s.reverse.Len() + s.inflection.Len()
}

// Purge drops every cached record.
func (s *Store) Purge() {
	s.forward.Purge()
	s.reverse.Purge()
	s.inflection.Purge()
}
