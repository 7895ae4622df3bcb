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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidMode indicates an unrecognized index, search or view mode token.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidQuery indicates a query that cannot be run, such as a non-numeric grade tier.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidEntry indicates an Entry failed validation.
	ErrInvalidEntry = errors.New("invalid entry")

	// ErrEmptyWord indicates the Word field is empty.
	ErrEmptyWord = errors.New("word cannot be empty")

	// ErrEmptyKey indicates the normalized key is empty.
	ErrEmptyKey = errors.New("normalized key cannot be empty")

	// ErrInvalidProbability indicates a probability outside [0, 1].
	ErrInvalidProbability = errors.New("probability must be within [0, 1]")

	// ErrUnknownLabel indicates a sense label outside the known set.
	ErrUnknownLabel = errors.New("unknown sense label")

	// ErrUnknownPOS indicates a part of speech outside the known set.
	ErrUnknownPOS = errors.New("unknown part of speech")
)
