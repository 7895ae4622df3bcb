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

import (
	"fmt"
)

// ValidateEntry validates an Entry according to domain rules.
//
// Validation rules:
//   - Word must not be empty
//   - Key must not be empty
//   - Probability must be within [0, 1]
//   - Every sense must carry a known label and part of speech
//
// NOT validated:
//   - Pronunciation and inflection slots (all optional)
//   - Relation lists (free-form keys, may point at missing entries)
func ValidateEntry(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.Word == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyWord)
	}

	if entry.Key == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyKey)
	}

	if entry.Probability < 0 || entry.Probability > 1 {
		return fmt.Errorf("%w: %w: %v", ErrInvalidEntry, ErrInvalidProbability, entry.Probability)
	}

	for i := range entry.Senses {
		if err := ValidateSense(&entry.Senses[i]); err != nil {
			return fmt.Errorf("%w: sense %d: %w", ErrInvalidEntry, i, err)
		}
	}

	return nil
}

// ValidateSense checks that a Sense uses a known label and part of speech.
func ValidateSense(sense *Sense) error {
	if !knownLabels[sense.Label] {
		return fmt.Errorf("%w: %q", ErrUnknownLabel, sense.Label)
	}
	if !knownPOS[sense.POS] {
		return fmt.Errorf("%w: %q", ErrUnknownPOS, sense.POS)
	}
	return nil
}

// IsKnownLabel reports whether label belongs to the closed label set.
func IsKnownLabel(label Label) bool {
	return knownLabels[label]
}

// IsKnownPOS reports whether pos belongs to the closed part-of-speech set.
func IsKnownPOS(pos PartOfSpeech) bool {
	return knownPOS[pos]
}
