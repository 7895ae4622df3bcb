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


// Package search implements the dictionary matcher.
//
// A Query names an index family and a search mode. The Matcher resolves
// auto modes, normalizes the query text and runs one of:
//
//   - exact: a single keyed lookup
//   - prefix, suffix, contain, word: a linear scan of the ranked key list,
//     preserving rank order
//   - edit: a bounded Levenshtein scan sorted by distance, then rank
//   - related: an exact hit followed by a one-level expansion over its
//     related words, translations and sense relations
//
// The auto search mode cascades exact, related, edit and stops at the first
// tier that produces hits. The inflection index maps an inflected form to
// its lemmas; the grade index slices the ranked key list into fixed-size
// frequency tiers.
//
// Missing keys are never errors. A record that fails to decode is skipped
// and reported to the SearchMonitor; a store failure aborts the query.
package search
