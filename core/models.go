package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a deterministic identifier for generated artifacts such as annotated pages.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Label identifies the lexical resource that contributed a sense.
type Label string

const (
	LabelWordNet      Label = "wn"
	LabelWiktionaryEN Label = "we"
	LabelWiktionaryJA Label = "wj"
	LabelOxford       Label = "ox"
	LabelUnion        Label = "un"
)

// PartOfSpeech is the closed set of grammatical categories a sense can carry.
type PartOfSpeech string

const (
	POSNoun         PartOfSpeech = "noun"
	POSVerb         PartOfSpeech = "verb"
	POSAdjective    PartOfSpeech = "adjective"
	POSAdverb       PartOfSpeech = "adverb"
	POSPronoun      PartOfSpeech = "pronoun"
	POSAuxVerb      PartOfSpeech = "auxverb"
	POSPreposition  PartOfSpeech = "preposition"
	POSDeterminer   PartOfSpeech = "determiner"
	POSArticle      PartOfSpeech = "article"
	POSInterjection PartOfSpeech = "interjection"
	POSConjunction  PartOfSpeech = "conjunction"
	POSPrefix       PartOfSpeech = "prefix"
	POSSuffix       PartOfSpeech = "suffix"
	POSAbbreviation PartOfSpeech = "abbreviation"
	POSPhrase       PartOfSpeech = "phrase"
)

var knownLabels = map[Label]bool{
	LabelWordNet: true, LabelWiktionaryEN: true, LabelWiktionaryJA: true,
	LabelOxford: true, LabelUnion: true,
}

var knownPOS = map[PartOfSpeech]bool{
	POSNoun: true, POSVerb: true, POSAdjective: true, POSAdverb: true, POSPronoun: true,
	POSAuxVerb: true, POSPreposition: true, POSDeterminer: true, POSArticle: true,
	POSInterjection: true, POSConjunction: true, POSPrefix: true, POSSuffix: true,
	POSAbbreviation: true, POSPhrase: true,
}

// Inflections holds the pre-computed inflected forms of a headword.
// An empty slot means the form is absent.
type Inflections struct {
	NounPlural            string
	VerbSingular          string
	VerbPresentParticiple string
	VerbPast              string
	VerbPastParticiple    string
	AdjectiveComparative  string
	AdjectiveSuperlative  string
	AdverbComparative     string
	AdverbSuperlative     string
}

// Forms returns the non-empty inflected forms in slot order.
func (in Inflections) Forms() []string {
	slots := [...]string{
		in.NounPlural, in.VerbSingular, in.VerbPresentParticiple, in.VerbPast,
		in.VerbPastParticiple, in.AdjectiveComparative, in.AdjectiveSuperlative,
		in.AdverbComparative, in.AdverbSuperlative,
	}
	forms := make([]string, 0, len(slots))
	for _, s := range slots {
		if s != "" {
			forms = append(forms, s)
		}
	}
	return forms
}

// Sense is one definition of a headword.
type Sense struct {
	Label     Label
	POS       PartOfSpeech
	Text      string
	Synonyms  []string
	Antonyms  []string
	Hypernyms []string
	Hyponyms  []string
}

// Entry is one headword record. Entries sharing a normalized key stay distinct
// and keep the order the dictionary was built with.
type Entry struct {
	Word          string
	Key           string
	Pronunciation string
	Inflections   Inflections
	Senses        []Sense
	Probability   float64
	Translations  []string
	Related       []string
	Parents       []string
	Children      []string
	Cooccurrence  []string
}

// BestEntry returns the entry with the highest probability.
// Ties resolve to the earliest entry. Returns nil for an empty slice.
func BestEntry(entries []Entry) *Entry {
	var best *Entry
	for i := range entries {
		if best == nil || entries[i].Probability > best.Probability {
			best = &entries[i]
		}
	}
	return best
}

// Section is one piece of sense text with its subsection level.
// Level 0 is the main text; levels 1 to 3 come from "[-]", "[--]" and "[---]".
type Section struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

var sectionMarkers = []struct {
	marker string
	level  int
}{
	{"[---]", 3},
	{"[--]", 2},
	{"[-]", 1},
}

// SplitSenseText splits sense text on its embedded subsection delimiters.
// Empty sections are dropped.
func SplitSenseText(text string) []Section {
	var sections []Section
	level := 0
	for {
		pos, next, nextLevel := -1, 0, 0
		for _, m := range sectionMarkers {
			i := strings.Index(text, m.marker)
			if i >= 0 && (pos < 0 || i < pos) {
				pos, next, nextLevel = i, i+len(m.marker), m.level
			}
		}
		chunk := text
		if pos >= 0 {
			chunk = text[:pos]
		}
		if s := strings.TrimSpace(chunk); s != "" {
			sections = append(sections, Section{Level: level, Text: s})
		}
		if pos < 0 {
			return sections
		}
		text = text[next:]
		level = nextLevel
	}
}
