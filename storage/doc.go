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

// Package storage defines the dictionary store contract for lexidict.
//
// The lookup engine only ever reads. Store exposes four index families:
//
//   - forward: normalized English key → ordered headword entries
//   - reverse: normalized Japanese term → ordered English keys
//   - inflection: normalized inflected form → ordered lemma keys
//   - ranked keys: the global key sequence by descending corpus frequency
//
// Absence is never an error: a missing key yields nil, nil. A value that
// fails to decode yields ErrMalformedRecord so callers can skip that one
// record. A store that cannot be opened or read yields ErrStoreUnavailable.
//
// # Encoding
//
// Records are encoded with MUS serializers (varint integers, length-prefixed
// strings) behind a version prefix. Only the fixed-shape fields of core.Entry
// are carried; anything else a source dump contains is dropped before it
// reaches the encoder.
//
// # Writing
//
// Writer is the build-time counterpart used by the importer and test
// fixtures. Backends open read-only for queries.
//
// # Thread Safety
//
// All Store implementations must support unlimited concurrent readers.
package storage
