package search

import (
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/storage"
)

// related returns the exact hit followed by one level of expansion over
// the words the hit's entries point at. Expansion keys are looked up
// exactly, through the reverse index when they are Japanese.
func (s *session) related(limit int) ([]Hit, error) {
	exact, err := s.resolve(s.query, s.family, -1)
	if err != nil || len(exact) == 0 {
		return nil, err
	}

	hits := newHitSet(limit)
	hits.add(exact...)

	visited := map[string]bool{s.query: true}
	for _, h := range exact {
		visited[h.Key] = true
	}

	for _, h := range exact {
		for _, word := range ExpansionWords(h.Entries) {
			if hits.full() {
				return hits.hits, nil
			}
			key := normalize.Normalize(word)
			if key == "" || visited[key] {
				continue
			}
			visited[key] = true

			family := storage.Forward
			if normalize.DetectScript(key) == core.ScriptCJK {
				family = storage.Reverse
			}
			found, err := s.resolve(key, family, -1)
			if err != nil {
				return nil, err
			}
			hits.add(found...)
		}
	}
	return hits.hits, nil
}

// ExpansionWords lists the words entries relate to, in union order:
// related words, translations, per-sense synonyms, antonyms, hypernyms
// and hyponyms, then parents and children. Duplicates are kept; callers
// de-duplicate on the normalized key.
func ExpansionWords(entries []core.Entry) []string {
	var words []string
	for _, e := range entries {
		words = append(words, e.Related...)
		words = append(words, e.Translations...)
		for _, sense := range e.Senses {
			words = append(words, sense.Synonyms...)
			words = append(words, sense.Antonyms...)
			words = append(words, sense.Hypernyms...)
			words = append(words, sense.Hyponyms...)
		}
		words = append(words, e.Parents...)
		words = append(words, e.Children...)
	}
	return words
}
