package annotate

import (
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
)

// Span is a run of paragraph text, glossed when Match is set.
type Span struct {
	Text  string `json:"text"`
	Match *Match `json:"match,omitempty"`
}

// Match is the gloss attached to a span.
type Match struct {
	// Key is the forward key of the chosen entry.
	Key   string     `json:"key"`
	Entry core.Entry `json:"-"`
	Ruby  string     `json:"ruby"`
	Popup Popup      `json:"popup"`
}

// Popup is the definition shown for a match.
type Popup struct {
	Word          string       `json:"word"`
	Pronunciation string       `json:"pronunciation,omitempty"`
	Senses        []PopupSense `json:"senses,omitempty"`
}

// PopupSense is one sense of a popup with its text split into sections.
type PopupSense struct {
	Label    string         `json:"label"`
	POS      string         `json:"pos"`
	Sections []core.Section `json:"sections"`
}

func newPopup(e *core.Entry) Popup {
	p := Popup{Word: e.Word, Pronunciation: e.Pronunciation}
	for _, s := range e.Senses {
		p.Senses = append(p.Senses, PopupSense{
			Label:    string(s.Label),
			POS:      string(s.POS),
			Sections: core.SplitSenseText(s.Text),
		})
	}
	return p
}

// AnnotatedBlock is a heading or paragraph split into spans.
type AnnotatedBlock struct {
	Kind  document.BlockKind `json:"kind"`
	Level int                `json:"level,omitempty"`
	Spans []Span             `json:"spans"`
}

// AnnotatedPage is the annotation of one input page.
type AnnotatedPage struct {
	ID     core.ID          `json:"id"`
	Index  int              `json:"index"`
	Title  string           `json:"title,omitempty"`
	Blocks []AnnotatedBlock `json:"blocks"`
}

// Output is an annotated document.
type Output struct {
	Title string            `json:"title,omitempty"`
	Meta  map[string]string `json:"meta,omitempty"`
	Pages []AnnotatedPage   `json:"pages"`
	TOC   []TOCEntry        `json:"toc"`
}
