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


package search

import "errors"

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrAnnotIndex is returned when the annot index reaches the matcher.
	// Annotation queries are served by the annotator.
	ErrAnnotIndex = errors.New("annot index is served by the annotator")

	// ErrInvalidLimit is returned when a result limit is not positive.
	ErrInvalidLimit = errors.New("result limit must be greater than 0")

	// ErrInvalidTierSize is returned when a grade tier size is not positive.
	ErrInvalidTierSize = errors.New("tier size must be greater than 0")
)
