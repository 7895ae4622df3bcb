// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/storage"
)

// NewMemoryStore creates an empty in-memory store for testing.
// Caller must close the store when done.
func NewMemoryStore(opts ...StoreOption) (*Store, error) {
	backend, err := OpenBackend("", InMemory)
	if err != nil {
		return nil, err
	}
	return NewStore(backend, opts...), nil
}

// Fixture describes a small dictionary for tests. Entries are grouped by
// normalized key in the given order; the forward ranked list follows first
// appearance of each key.
type Fixture struct {
	Entries     []core.Entry
	Reverse     map[string][]string
	Inflections map[string][]string
	// ReverseRank is the reverse ranked list. Empty leaves it unset.
	ReverseRank []string
}

// NewFixtureStore creates an in-memory store populated from f.
func NewFixtureStore(ctx context.Context, f Fixture, opts ...StoreOption) (*Store, error) {
	s, err := NewMemoryStore(opts...)
	if err != nil {
		return nil, err
	}
	if err := f.Write(ctx, s); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Write stores the fixture through w.
func (f Fixture) Write(ctx context.Context, w storage.Writer) error {
	var ranked []string
	grouped := make(map[string][]core.Entry)
	for _, e := range f.Entries {
		key := e.Key
		if key == "" {
			key = normalize.Normalize(e.Word)
			e.Key = key
		}
		if _, ok := grouped[key]; !ok {
			ranked = append(ranked, key)
		}
		grouped[key] = append(grouped[key], e)
	}

	for _, key := range ranked {
		if err := w.PutForward(ctx, key, grouped[key]); err != nil {
			return err
		}
	}
	for key, targets := range f.Reverse {
		if err := w.PutReverse(ctx, key, targets); err != nil {
			return err
		}
	}
	for key, lemmas := range f.Inflections {
		if err := w.PutInflection(ctx, key, lemmas); err != nil {
			return err
		}
	}
	if err := w.PutRankedKeys(ctx, storage.Forward, ranked); err != nil {
		return err
	}
	if len(f.ReverseRank) > 0 {
		return w.PutRankedKeys(ctx, storage.Reverse, f.ReverseRank)
	}
	return nil
}
