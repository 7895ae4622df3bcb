package result

import (
	"errors"
	"log/slog"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/search"
)

const (
	// DefaultFullMax is the largest entry count rendered in the full view by auto.
	DefaultFullMax = 5

	// DefaultSimpleMax is the largest entry count rendered in the simple view by auto.
	DefaultSimpleMax = 30
)

// ErrInvalidThresholds is returned when view thresholds are negative or
// the simple threshold is below the full one.
var ErrInvalidThresholds = errors.New("view thresholds must satisfy 0 <= full <= simple")

// Sense is a rendered sense.
type Sense struct {
	Label    string         `json:"label"`
	POS      string         `json:"pos"`
	Sections []core.Section `json:"sections"`
}

// Entry is a rendered headword.
type Entry struct {
	Word          string   `json:"word"`
	Key           string   `json:"key"`
	Source        string   `json:"source,omitempty"`
	Pronunciation string   `json:"pronunciation,omitempty"`
	Probability   float64  `json:"probability,omitempty"`
	Distance      int      `json:"distance,omitempty"`
	Translations  []string `json:"translations,omitempty"`
	Inflections   []string `json:"inflections,omitempty"`
	Senses        []Sense  `json:"senses,omitempty"`
	Related       []string `json:"related,omitempty"`
}

// Result is an assembled, view-trimmed result.
type Result struct {
	Query  string  `json:"query"`
	Index  string  `json:"index"`
	Search string  `json:"search"`
	View   string  `json:"view"`
	Tier   *int    `json:"tier,omitempty"`
	Items  []Entry `json:"items"`
}

// Assembler builds Results from matcher output. It holds no per-query state.
type Assembler struct {
	fullMax   int
	simpleMax int
	logger    *slog.Logger
}

// Option configures an Assembler.
type Option func(*Assembler) error

// WithThresholds sets the entry counts at which the auto view switches
// from full to simple and from simple to list.
// Defaults are DefaultFullMax and DefaultSimpleMax.
func WithThresholds(fullMax, simpleMax int) Option {
	return func(a *Assembler) error {
		if fullMax < 0 || simpleMax < fullMax {
			return ErrInvalidThresholds
		}
		a.fullMax = fullMax
		a.simpleMax = simpleMax
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assembler) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAssembler creates a new assembler.
func NewAssembler(opts ...Option) (*Assembler, error) {
	a := &Assembler{
		fullMax:   DefaultFullMax,
		simpleMax: DefaultSimpleMax,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Merge concatenates hit lists, keeping the first hit per forward key.
func Merge(lists ...[]search.Hit) []search.Hit {
	seen := make(map[string]bool)
	var merged []search.Hit
	for _, hits := range lists {
		for _, h := range hits {
			if seen[h.Key] {
				continue
			}
			seen[h.Key] = true
			merged = append(merged, h)
		}
	}
	return merged
}

// Assemble merges res's hits, caps them at res.Limit keys and renders
// them in view. The auto view is resolved from the entry count.
func (a *Assembler) Assemble(res *search.Result, view core.ViewMode) (*Result, error) {
	if !view.Valid() {
		return nil, core.ErrInvalidMode
	}

	hits := Merge(res.Hits)
	if res.Limit > 0 && len(hits) > res.Limit {
		hits = hits[:res.Limit]
	}

	count := 0
	for _, h := range hits {
		count += len(h.Entries)
	}
	if view == core.ViewAuto {
		view = a.SelectView(count)
	}

	out := &Result{
		Query:  res.Query,
		Index:  res.Index.String(),
		Search: res.Search.String(),
		View:   view.String(),
		Items:  make([]Entry, 0, count),
	}
	if res.Tier >= 0 {
		tier := res.Tier
		out.Tier = &tier
	}

	for _, h := range hits {
		source := ""
		if h.Source != h.Key {
			source = h.Source
		}
		for i := range h.Entries {
			item := render(&h.Entries[i], view)
			item.Source = source
			item.Distance = h.Distance
			if item.Key == "" {
				item.Key = h.Key
			}
			out.Items = append(out.Items, item)
		}
	}

	a.logger.Debug("assembled result", "query", res.Query, "view", out.View, "keys", len(hits), "entries", count)
	return out, nil
}

// SelectView returns the view auto picks for count entries.
func (a *Assembler) SelectView(count int) core.ViewMode {
	switch {
	case count <= a.fullMax:
		return core.ViewFull
	case count <= a.simpleMax:
		return core.ViewSimple
	default:
		return core.ViewList
	}
}

func render(e *core.Entry, view core.ViewMode) Entry {
	out := Entry{
		Word:         e.Word,
		Key:          e.Key,
		Translations: e.Translations,
	}
	if view == core.ViewList {
		return out
	}

	out.Pronunciation = e.Pronunciation
	out.Probability = e.Probability
	out.Inflections = e.Inflections.Forms()

	if view == core.ViewSimple {
		seen := make(map[core.PartOfSpeech]bool)
		for _, s := range e.Senses {
			if seen[s.POS] {
				continue
			}
			seen[s.POS] = true
			out.Senses = append(out.Senses, renderSense(s, true))
		}
		return out
	}

	for _, s := range e.Senses {
		out.Senses = append(out.Senses, renderSense(s, false))
	}
	out.Related = e.Related
	return out
}

// renderSense splits sense text. The brief form keeps the main text only.
func renderSense(s core.Sense, brief bool) Sense {
	sections := core.SplitSenseText(s.Text)
	if brief && len(sections) > 1 {
		sections = sections[:1]
	}
	return Sense{Label: string(s.Label), POS: string(s.POS), Sections: sections}
}
