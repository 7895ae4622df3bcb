package ingestion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
)

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

type rawInflections struct {
	NounPlural            string `json:"noun_plural"`
	VerbSingular          string `json:"verb_singular"`
	VerbPresentParticiple string `json:"verb_present_participle"`
	VerbPast              string `json:"verb_past"`
	VerbPastParticiple    string `json:"verb_past_participle"`
	AdjectiveComparative  string `json:"adjective_comparative"`
	AdjectiveSuperlative  string `json:"adjective_superlative"`
	AdverbComparative     string `json:"adverb_comparative"`
	AdverbSuperlative     string `json:"adverb_superlative"`
}

type rawSense struct {
	Label     string   `json:"label"`
	POS       string   `json:"pos"`
	Text      string   `json:"text"`
	Synonyms  []string `json:"synonym"`
	Antonyms  []string `json:"antonym"`
	Hypernyms []string `json:"hypernym"`
	Hyponyms  []string `json:"hyponym"`
}

type rawEntry struct {
	Word          string         `json:"word"`
	Pronunciation string         `json:"pronunciation"`
	Inflections   rawInflections `json:"inflections"`
	Senses        []rawSense     `json:"senses"`
	Probability   flexFloat      `json:"probability"`
	Translations  []string       `json:"translation"`
	Related       []string       `json:"related"`
	Parents       []string       `json:"parent"`
	Children      []string       `json:"child"`
	Cooccurrence  []string       `json:"cooccurrence"`
}

// DecodeEntry decodes and validates one JSON line.
func DecodeEntry(line []byte) (core.Entry, error) {
	var raw rawEntry
	if err := json.Unmarshal(line, &raw); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %w", ErrInvalidLine, err)
	}

	e := core.Entry{
		Word:          raw.Word,
		Key:           normalize.Normalize(raw.Word),
		Pronunciation: raw.Pronunciation,
		Inflections:   core.Inflections(raw.Inflections),
		Probability:   float64(raw.Probability),
		Translations:  raw.Translations,
		Related:       raw.Related,
		Parents:       raw.Parents,
		Children:      raw.Children,
		Cooccurrence:  raw.Cooccurrence,
	}
	for _, s := range raw.Senses {
		e.Senses = append(e.Senses, core.Sense{
			Label:     core.Label(s.Label),
			POS:       core.PartOfSpeech(s.POS),
			Text:      s.Text,
			Synonyms:  s.Synonyms,
			Antonyms:  s.Antonyms,
			Hypernyms: s.Hypernyms,
			Hyponyms:  s.Hyponyms,
		})
	}

	if err := core.ValidateEntry(&e); err != nil {
		return core.Entry{}, fmt.Errorf("%w: %w", ErrInvalidLine, err)
	}
	return e, nil
}
