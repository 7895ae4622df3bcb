package core

import (
	"errors"
	"testing"
)

func TestValidateEntry(t *testing.T) {
	validSense := Sense{Label: LabelWordNet, POS: POSNoun, Text: "a thing"}

	tests := []struct {
		name    string
		entry   *Entry
		wantErr error
	}{
		{
			name:    "valid entry",
			entry:   &Entry{Word: "Japan", Key: "japan", Probability: 0.001, Senses: []Sense{validSense}},
			wantErr: nil,
		},
		{
			name:    "valid entry without senses",
			entry:   &Entry{Word: "mind", Key: "mind"},
			wantErr: nil,
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantErr: ErrInvalidEntry,
		},
		{
			name:    "empty word",
			entry:   &Entry{Key: "mind"},
			wantErr: ErrEmptyWord,
		},
		{
			name:    "empty key",
			entry:   &Entry{Word: "mind"},
			wantErr: ErrEmptyKey,
		},
		{
			name:    "negative probability",
			entry:   &Entry{Word: "mind", Key: "mind", Probability: -0.1},
			wantErr: ErrInvalidProbability,
		},
		{
			name:    "probability above one",
			entry:   &Entry{Word: "mind", Key: "mind", Probability: 1.5},
			wantErr: ErrInvalidProbability,
		},
		{
			name: "unknown label",
			entry: &Entry{Word: "mind", Key: "mind", Senses: []Sense{
				{Label: "zz", POS: POSNoun},
			}},
			wantErr: ErrUnknownLabel,
		},
		{
			name: "unknown part of speech",
			entry: &Entry{Word: "mind", Key: "mind", Senses: []Sense{
				{Label: LabelWiktionaryEN, POS: "gerund"},
			}},
			wantErr: ErrUnknownPOS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntry(tt.entry)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEntry() error = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Errorf("ValidateEntry() error = nil, want %v", tt.wantErr)
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEntry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsKnownLabelAndPOS(t *testing.T) {
	if !IsKnownLabel(LabelWiktionaryJA) {
		t.Errorf("IsKnownLabel(wj) = false, want true")
	}
	if IsKnownLabel("xx") {
		t.Errorf("IsKnownLabel(xx) = true, want false")
	}
	if !IsKnownPOS(POSPhrase) {
		t.Errorf("IsKnownPOS(phrase) = false, want true")
	}
	if IsKnownPOS("") {
		t.Errorf("IsKnownPOS(\"\") = true, want false")
	}
}
