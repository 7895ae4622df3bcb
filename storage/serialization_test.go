package storage

import (
	"errors"
	"testing"

	"github.com/poiesic/lexidict/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []core.Entry
	}{
		{
			name:    "minimal entry",
			entries: []core.Entry{{Word: "mind", Key: "mind"}},
		},
		{
			name: "distinct headwords under one key",
			entries: []core.Entry{
				{Word: "Japan", Key: "japan", Probability: 0.0021, Translations: []string{"日本"}},
				{Word: "japan", Key: "japan", Probability: 0.00003, Translations: []string{"漆器", "漆"}},
			},
		},
		{
			name: "fully populated entry",
			entries: []core.Entry{{
				Word:          "run",
				Key:           "run",
				Pronunciation: "rʌn",
				Inflections: core.Inflections{
					VerbSingular:          "runs",
					VerbPresentParticiple: "running",
					VerbPast:              "ran",
					VerbPastParticiple:    "run",
					NounPlural:            "runs",
				},
				Senses: []core.Sense{
					{
						Label:    core.LabelWordNet,
						POS:      core.POSVerb,
						Text:     "move fast by using one's feet [-] of people [--] sprinting",
						Synonyms: []string{"sprint", "dash"},
					},
					{
						Label:     core.LabelWiktionaryEN,
						POS:       core.POSNoun,
						Text:      "an act of running",
						Hypernyms: []string{"locomotion"},
						Hyponyms:  []string{"jog"},
						Antonyms:  []string{"walk"},
					},
				},
				Probability:  0.00123456789,
				Translations: []string{"走る", "運営する"},
				Related:      []string{"runner", "running"},
				Parents:      []string{"move"},
				Children:     []string{"rerun", "runner"},
				Cooccurrence: []string{"fast", "away"},
			}},
		},
		{
			name:    "empty record",
			entries: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalEntries(tt.entries)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalEntries(data)
			require.NoError(t, err)
			assert.Equal(t, tt.entries, decoded)
		})
	}
}

func TestUnmarshalEntries_Malformed(t *testing.T) {
	valid := MarshalEntries([]core.Entry{{Word: "mind", Key: "mind", Translations: []string{"心"}}})

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", valid[:len(valid)-2]},
		{"trailing bytes", append(append([]byte{}, valid...), 0x01)},
		{"wrong version", append([]byte{0x08}, valid[1:]...)},
		{"huge count", []byte{0x02, 0xfe, 0xff, 0xff, 0x0f}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalEntries(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedRecord), "got %v", err)
		})
	}
}

func TestMarshalUnmarshalStrings(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{"reverse record", []string{"japan", "nippon"}},
		{"single lemma", []string{"run"}},
		{"empty", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoded, err := UnmarshalStrings(MarshalStrings(tt.values))
			require.NoError(t, err)
			assert.Equal(t, tt.values, decoded)
		})
	}

	_, err := UnmarshalStrings([]byte{0x02, 0x04, 0x10})
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestMarshalUnmarshalCount(t *testing.T) {
	for _, n := range []int{0, 1, 499, 500, 1 << 20} {
		got, err := UnmarshalCount(MarshalCount(n))
		require.NoError(t, err)
		assert.Equal(t, n, got)
	}

	_, err := UnmarshalCount(nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}
