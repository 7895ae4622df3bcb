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


package storage

import "errors"

var (
	// ErrStoreUnavailable indicates the backing store could not be opened or read.
	// It is fatal for the query that hit it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrMalformedRecord indicates a stored value failed to decode into its record schema.
	// Readers skip the record and continue.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrTruncatedData indicates that a record ended before all of its fields were read.
	ErrTruncatedData = errors.New("truncated data")

	// ErrReadOnly indicates a write against a store opened read-only.
	ErrReadOnly = errors.New("store is read-only")
)
