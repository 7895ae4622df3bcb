package search

import (
	"context"
	"slices"

	"github.com/poiesic/lexidict/storage"
	"github.com/tchap/go-patricia/v2/patricia"
)

// RankedKey is a key and its position in the ranked key list.
type RankedKey struct {
	Key  string
	Rank int
}

// PrefixIndex is an in-memory patricia trie over the forward ranked keys.
// Lookups return the same keys in the same order as a prefix scan.
// A PrefixIndex is read-only once built and safe for concurrent use.
type PrefixIndex struct {
	trie *patricia.Trie
	size int
}

// BuildPrefixIndex loads the forward ranked key list of store into a trie.
func BuildPrefixIndex(ctx context.Context, store storage.Store) (*PrefixIndex, error) {
	idx := &PrefixIndex{trie: patricia.NewTrie()}
	err := store.ScanRankedKeys(ctx, storage.Forward, 0, func(rank int, key string) bool {
		// Keep the best rank if a key repeats.
		if idx.trie.Get(patricia.Prefix(key)) == nil {
			idx.trie.Insert(patricia.Prefix(key), rank)
			idx.size++
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

// Len returns the number of indexed keys.
func (p *PrefixIndex) Len() int {
	return p.size
}

// Lookup returns every key starting with prefix, by ascending rank.
func (p *PrefixIndex) Lookup(prefix string) []RankedKey {
	var keys []RankedKey
	_ = p.trie.VisitSubtree(patricia.Prefix(prefix), func(key patricia.Prefix, item patricia.Item) error {
		keys = append(keys, RankedKey{Key: string(key), Rank: item.(int)})
		return nil
	})
	slices.SortFunc(keys, func(a, b RankedKey) int {
		return a.Rank - b.Rank
	})
	return keys
}
