package search

import (
	"slices"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/storage"
)

// scan filters the ranked key list with the predicate of mode. Hits keep
// rank order.
func (s *session) scan(mode core.SearchMode, limit int) ([]Hit, error) {
	hits := newHitSet(limit)

	if mode == core.SearchPrefix && s.family == storage.Forward && s.m.prefix != nil {
		for _, rk := range s.m.prefix.Lookup(s.query) {
			if hits.full() {
				break
			}
			found, err := s.resolve(rk.Key, storage.Forward, rk.Rank)
			if err != nil {
				return nil, err
			}
			hits.add(found...)
		}
		return hits.hits, nil
	}

	match := predicateFor(mode)
	var visitErr error
	err := s.m.store.ScanRankedKeys(s.ctx, s.family, 0, func(rank int, key string) bool {
		if !match(key, s.query) {
			return true
		}
		found, err := s.resolve(key, s.family, rank)
		if err != nil {
			visitErr = err
			return false
		}
		hits.add(found...)
		return !hits.full()
	})
	if err != nil {
		return nil, err
	}
	if visitErr != nil {
		return nil, visitErr
	}
	return hits.hits, nil
}

// EditThreshold returns the largest edit distance admitted for q.
func EditThreshold(q string) int {
	return max(1, utf8.RuneCountInString(q)/4)
}

type editCandidate struct {
	key      string
	rank     int
	distance int
}

// edit scans the ranked key list for keys within EditThreshold of the
// query. Keys whose length differs by more than the threshold are pruned
// before the distance is computed.
func (s *session) edit(limit int) ([]Hit, error) {
	threshold := EditThreshold(s.query)
	qlen := utf8.RuneCountInString(s.query)

	var candidates []editCandidate
	err := s.m.store.ScanRankedKeys(s.ctx, s.family, 0, func(rank int, key string) bool {
		klen := utf8.RuneCountInString(key)
		if klen-qlen > threshold || qlen-klen > threshold {
			return true
		}
		if d := levenshtein.ComputeDistance(s.query, key); d <= threshold {
			candidates = append(candidates, editCandidate{key: key, rank: rank, distance: d})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// Scan order is rank order, so a stable sort by distance leaves ties by rank.
	slices.SortStableFunc(candidates, func(a, b editCandidate) int {
		return a.distance - b.distance
	})

	hits := newHitSet(limit)
	for _, c := range candidates {
		if hits.full() {
			break
		}
		found, err := s.resolve(c.key, s.family, c.rank)
		if err != nil {
			return nil, err
		}
		for i := range found {
			found[i].Distance = c.distance
		}
		hits.add(found...)
	}
	return hits.hits, nil
}
