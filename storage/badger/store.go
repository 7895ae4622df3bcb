package badger

import (
	"context"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/storage"
)

// scanCheckInterval is how many ranked keys are visited between context checks.
const scanCheckInterval = 1024

// Store implements storage.Store, storage.CooccurrenceReader and
// storage.Writer on top of a Backend.
type Store struct {
	backend *Backend
	logger  *slog.Logger
}

var (
	_ storage.Store              = (*Store)(nil)
	_ storage.CooccurrenceReader = (*Store)(nil)
	_ storage.Writer             = (*Store)(nil)
)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets a custom logger.
// Default is slog.Default().
func WithStoreLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
	}
}

// NewStore creates a Store over backend. The Store owns the backend and
// closes it on Close.
func NewStore(backend *Backend, opts ...StoreOption) *Store {
	s := &Store{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open opens the store at path in the given mode.
func Open(path string, mode OpenMode, opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend(path, mode)
	if err != nil {
		return nil, err
	}
	return NewStore(backend, opts...), nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// Backend returns the underlying backend.
func (s *Store) Backend() *Backend {
	return s.backend
}

// GetForward returns the ordered entries stored under key.
func (s *Store) GetForward(ctx context.Context, key string) ([]core.Entry, error) {
	data, err := s.get(makeKey(forwardPrefix, key))
	if err != nil || data == nil {
		return nil, err
	}
	entries, err := storage.UnmarshalEntries(data)
	if err != nil {
		s.logger.Debug("undecodable forward record", "key", key, "err", err)
		return nil, err
	}
	return entries, nil
}

// GetReverse returns the English keys stored under a Japanese key.
func (s *Store) GetReverse(ctx context.Context, key string) ([]string, error) {
	return s.getStrings(makeKey(reversePrefix, key))
}

// GetInflection returns the lemma keys stored under an inflected form.
func (s *Store) GetInflection(ctx context.Context, key string) ([]string, error) {
	return s.getStrings(makeKey(inflectionPrefix, key))
}

// GetCooccurrence returns the raw cooccurrence score record for word.
func (s *Store) GetCooccurrence(ctx context.Context, word string) (string, error) {
	data, err := s.get(makeKey(cooccurrencePrefix, word))
	if err != nil || data == nil {
		return "", err
	}
	return string(data), nil
}

// ScanRankedKeys visits the ranked list of family from rank start.
func (s *Store) ScanRankedKeys(ctx context.Context, family storage.Family, start int, fn storage.KeyVisitor) error {
	if start < 0 {
		start = 0
	}
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(rankPrefix(family))
		iter := tx.NewIterator(opts)
		defer iter.Close()

		visited := 0
		for iter.Seek(makeRankKey(family, start)); iter.Valid(); iter.Next() {
			visited++
			if visited%scanCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}

			item := iter.Item()
			rank, ok := parseRankKey(family, item.Key())
			if !ok {
				continue
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return unavailable(err)
			}
			if !fn(rank, string(value)) {
				return nil
			}
		}
		return nil
	}, false)
	if err == storage.ErrStorageClosed {
		return unavailable(err)
	}
	return err
}

// RankedKeyCount returns the length of the ranked list of family.
func (s *Store) RankedKeyCount(ctx context.Context, family storage.Family) (int, error) {
	data, err := s.get(makeRankCountKey(family))
	if err != nil || data == nil {
		return 0, err
	}
	return storage.UnmarshalCount(data)
}

func (s *Store) getStrings(key []byte) ([]string, error) {
	data, err := s.get(key)
	if err != nil || data == nil {
		return nil, err
	}
	values, err := storage.UnmarshalStrings(data)
	if err != nil {
		s.logger.Debug("undecodable list record", "key", string(key), "err", err)
		return nil, err
	}
	return values, nil
}

// get reads a raw value. A missing key returns nil, nil.
func (s *Store) get(key []byte) ([]byte, error) {
	var data []byte
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(key)
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	}, false)
	if err != nil {
		return nil, unavailable(err)
	}
	return data, nil
}
