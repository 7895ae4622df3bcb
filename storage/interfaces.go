package storage

import (
	"context"

	"github.com/poiesic/lexidict/core"
)

// Family names one of the ranked key sequences.
type Family int

const (
	// Forward is the global English key list ordered by descending corpus frequency.
	Forward Family = iota
	// Reverse is the Japanese key list ordered by the best rank of the English keys it maps to.
	Reverse
)

func (f Family) String() string {
	if f == Reverse {
		return "reverse"
	}
	return "forward"
}

// KeyVisitor receives ranked keys in order. Returning false stops the scan.
type KeyVisitor func(rank int, key string) bool

// Store is the read-only contract the lookup engine consumes.
// Implementations must be safe for unlimited concurrent readers.
// A missing key is not an error: lookups return nil, nil.
type Store interface {
	// GetForward returns the ordered headword records stored under a normalized English key.
	// Headwords sharing a key ("Japan", "japan") are returned as distinct entries.
	GetForward(ctx context.Context, key string) ([]core.Entry, error)

	// GetReverse returns the English keys for a normalized Japanese term, frequency-descending.
	GetReverse(ctx context.Context, key string) ([]string, error)

	// GetInflection returns the lemma keys for an inflected form, frequency-descending.
	GetInflection(ctx context.Context, key string) ([]string, error)

	// ScanRankedKeys visits the ranked key list of family starting at rank start (0-based).
	// Keys arrive in rank order; the scan stops when fn returns false or the list ends.
	ScanRankedKeys(ctx context.Context, family Family, start int, fn KeyVisitor) error

	// RankedKeyCount returns the length of the ranked key list of family.
	RankedKeyCount(ctx context.Context, family Family) (int, error)

	// Close releases resources held by the store.
	Close() error
}

// CooccurrenceReader is implemented by stores that carry cooccurrence score records.
type CooccurrenceReader interface {
	// GetCooccurrence returns the raw TSV score record for word, or "" if absent.
	GetCooccurrence(ctx context.Context, word string) (string, error)
}

// Writer builds the indices a Store reads. It is only used by offline tooling
// (importer, seeder, tests); the lookup engine never writes.
type Writer interface {
	// PutForward stores the ordered headword records of a normalized key.
	PutForward(ctx context.Context, key string, entries []core.Entry) error

	// PutReverse stores the ordered English keys of a normalized Japanese term.
	PutReverse(ctx context.Context, key string, targets []string) error

	// PutInflection stores the ordered lemma keys of an inflected form.
	PutInflection(ctx context.Context, key string, lemmas []string) error

	// PutRankedKeys replaces the ranked key list of family.
	PutRankedKeys(ctx context.Context, family Family, keys []string) error

	// PutCooccurrence stores a raw TSV cooccurrence score record.
	PutCooccurrence(ctx context.Context, word, record string) error
}
