package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/storage"
)

// PutForward stores the ordered entries of a normalized key.
func (s *Store) PutForward(ctx context.Context, key string, entries []core.Entry) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	return s.put(makeKey(forwardPrefix, key), storage.MarshalEntries(entries))
}

// PutReverse stores the ordered English keys of a Japanese key.
func (s *Store) PutReverse(ctx context.Context, key string, targets []string) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	return s.put(makeKey(reversePrefix, key), storage.MarshalStrings(targets))
}

// PutInflection stores the ordered lemma keys of an inflected form.
func (s *Store) PutInflection(ctx context.Context, key string, lemmas []string) error {
	if key == "" {
		return core.ErrEmptyKey
	}
	return s.put(makeKey(inflectionPrefix, key), storage.MarshalStrings(lemmas))
}

// PutCooccurrence stores a raw cooccurrence score record.
func (s *Store) PutCooccurrence(ctx context.Context, word, record string) error {
	if word == "" {
		return core.ErrEmptyKey
	}
	return s.put(makeKey(cooccurrencePrefix, word), []byte(record))
}

// PutRankedKeys replaces the ranked list of family. Slots beyond the new
// length left over from a previous, longer list are deleted.
func (s *Store) PutRankedKeys(ctx context.Context, family storage.Family, keys []string) error {
	previous, err := s.RankedKeyCount(ctx, family)
	if err != nil {
		return err
	}

	err = s.backend.WithBatch(func(wb *badger.WriteBatch) error {
		for rank, key := range keys {
			if rank%scanCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := wb.Set(makeRankKey(family, rank), []byte(key)); err != nil {
				return fmt.Errorf("failed to write rank %d: %w", rank, err)
			}
		}
		for rank := len(keys); rank < previous; rank++ {
			if err := wb.Delete(makeRankKey(family, rank)); err != nil {
				return fmt.Errorf("failed to delete rank %d: %w", rank, err)
			}
		}
		return wb.Set(makeRankCountKey(family), storage.MarshalCount(len(keys)))
	})
	if err != nil {
		return err
	}

	s.logger.Debug("wrote ranked keys", "family", family, "count", len(keys), "previous", previous)
	return nil
}

func (s *Store) put(key, value []byte) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
