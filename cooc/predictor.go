// Package cooc predicts related words from cooccurrence statistics.
//
// Each cooccurrence record is a tab-separated line: the word's IDF followed
// by "word score" pairs. A query's words are expanded into a weighted
// cooccurrence vector, the strongest cooccurring words are traced one step
// further, and every candidate is ranked by the cosine similarity of its
// own vector to the query's.
package cooc

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/storage"
)

const (
	baseScore     = 1000.0
	maxProbScore  = 0.05
	numericWeight = 0.2
	stopWeight    = 0.5

	traceCoocWords = 32
	checkCoocWords = 16
	checkRelWords  = 128
	numFeatures    = 256
)

var (
	// ErrReaderRequired is returned when a cooccurrence reader is not provided.
	ErrReaderRequired = errors.New("cooccurrence reader required")

	// ErrMalformedScore is returned when a cooccurrence record cannot be parsed.
	ErrMalformedScore = errors.New("malformed cooccurrence record")
)

// Scored is a word with a score.
type Scored struct {
	Word  string  `json:"word"`
	Score float64 `json:"score"`
}

// Prediction is the outcome of Predict.
type Prediction struct {
	// Related is every checked word by descending similarity.
	Related []Scored
	// Cooccurring is the aggregated cooccurrence vector of the query.
	Cooccurring []Scored
}

// Predictor ranks related words. It holds no per-query state.
type Predictor struct {
	reader   storage.CooccurrenceReader
	language string
	tokenize func(string) []string
	logger   *slog.Logger
}

// Option configures a Predictor.
type Option func(*Predictor) error

// WithLanguage sets the language used to classify stop words.
// Default is "en".
func WithLanguage(lang string) Option {
	return func(p *Predictor) error {
		p.language = lang
		return nil
	}
}

// WithTokenizer sets the function splitting query text into normalized words.
// Default is normalize.SplitWords.
func WithTokenizer(fn func(string) []string) Option {
	return func(p *Predictor) error {
		if fn != nil {
			p.tokenize = fn
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Predictor) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPredictor creates a predictor over reader.
func NewPredictor(reader storage.CooccurrenceReader, opts ...Option) (*Predictor, error) {
	if reader == nil {
		return nil, ErrReaderRequired
	}
	p := &Predictor{
		reader:   reader,
		language: "en",
		tokenize: normalize.SplitWords,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Predict returns words related to text.
func (p *Predictor) Predict(ctx context.Context, text string) (*Prediction, error) {
	words := make(map[string]bool)
	var order []string
	for _, w := range p.tokenize(text) {
		if !words[w] {
			words[w] = true
			order = append(order, w)
		}
	}
	if len(order) > 1 {
		whole := normalize.RemoveDiacritics(normalize.Normalize(text))
		if !words[whole] {
			words[whole] = true
			order = append(order, whole)
		}
	}

	totals := make(map[string]float64)
	for _, w := range order {
		vec, err := p.vector(ctx, w)
		if err != nil {
			return nil, err
		}
		for _, s := range vec {
			totals[s.Word] += s.Score
		}
	}
	cooc := sortScores(totals)

	rel := make(map[string]float64)
	traced := 0
	for _, c := range cooc {
		if traced >= traceCoocWords {
			break
		}
		if words[c.Word] {
			continue
		}
		vec, err := p.vector(ctx, c.Word)
		if err != nil {
			return nil, err
		}
		for _, r := range vec {
			if words[r.Word] {
				continue
			}
			rel[r.Word] = max(rel[r.Word], c.Score*r.Score)
		}
		traced++
	}
	relSorted := sortScores(rel)

	check := slices.Clone(order)
	checked := maps.Clone(words)
	check = appendUnchecked(check, checked, cooc, checkCoocWords)
	check = appendUnchecked(check, checked, relSorted, checkRelWords)

	features := cooc[:min(len(cooc), numFeatures)]
	related := make([]Scored, 0, len(check))
	for _, w := range check {
		vec, err := p.vector(ctx, w)
		if err != nil {
			return nil, err
		}
		related = append(related, Scored{Word: w, Score: Similarity(features, vec)})
	}
	slices.SortStableFunc(related, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})

	p.logger.Debug("predicted related words", "text", text, "seeds", len(order), "checked", len(check))
	return &Prediction{Related: related, Cooccurring: cooc}, nil
}

// vector loads the weighted cooccurrence vector of word. The word itself
// comes first. A missing or malformed record yields an empty vector.
func (p *Predictor) vector(ctx context.Context, word string) ([]Scored, error) {
	record, err := p.reader.GetCooccurrence(ctx, word)
	if err != nil {
		return nil, err
	}
	if record == "" {
		return nil, nil
	}
	vec, err := ParseRecord(word, record, p.language)
	if err != nil {
		p.logger.Warn("skipping malformed cooccurrence record", "word", word, "err", err)
		return nil, nil
	}
	return vec, nil
}

// ParseRecord decodes a cooccurrence record of word into weighted scores.
func ParseRecord(word, record, language string) ([]Scored, error) {
	fields := strings.Split(record, "\t")
	idf, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: idf %q", ErrMalformedScore, fields[0])
	}

	vec := make([]Scored, 0, len(fields))
	self := maxProbScore * float64(idf) * float64(idf) / (baseScore * baseScore)
	vec = append(vec, Scored{Word: word, Score: self * weight(word, language)})
	for _, field := range fields[1:] {
		w, raw, ok := strings.Cut(field, " ")
		if !ok {
			return nil, fmt.Errorf("%w: field %q", ErrMalformedScore, field)
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: score %q", ErrMalformedScore, raw)
		}
		score := float64(n) * float64(idf) / (baseScore * baseScore)
		vec = append(vec, Scored{Word: w, Score: score * weight(w, language)})
	}
	return vec, nil
}

// FormatRecord encodes an IDF and cooccurring word scores as a record.
func FormatRecord(idf int, scores []Scored) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(idf))
	for _, s := range scores {
		fmt.Fprintf(&b, "\t%s %d", s.Word, int(s.Score))
	}
	return b.String()
}

func weight(word, language string) float64 {
	switch {
	case normalize.IsNumericWord(word):
		return numericWeight
	case normalize.IsStopWord(language, word):
		return stopWeight
	}
	return 1
}

// Similarity is the cosine similarity of rel to the seed features, capped
// at 1. Scores within rounding of 1 are reported as exactly 1.
func Similarity(seed, rel []Scored) float64 {
	relMap := make(map[string]float64, len(rel))
	for _, r := range rel {
		relMap[r.Word] = r.Score
	}

	var product, seedNorm, relNorm float64
	for _, s := range seed {
		r := relMap[s.Word]
		product += s.Score * r
		seedNorm += s.Score * s.Score
		relNorm += r * r
	}
	if seedNorm == 0 || relNorm == 0 {
		return 0
	}
	score := min(product/(math.Sqrt(seedNorm)*math.Sqrt(relNorm)), 1)
	if score >= 0.99999 {
		score = 1
	}
	return score
}

// sortScores orders a score map descending, ties by word.
func sortScores(m map[string]float64) []Scored {
	out := make([]Scored, 0, len(m))
	for w, s := range m {
		out = append(out, Scored{Word: w, Score: s})
	}
	slices.SortFunc(out, func(a, b Scored) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})
	return out
}

func appendUnchecked(check []string, checked map[string]bool, scored []Scored, limit int) []string {
	n := 0
	for _, s := range scored {
		if n >= limit {
			break
		}
		if checked[s.Word] {
			continue
		}
		checked[s.Word] = true
		check = append(check, s.Word)
		n++
	}
	return check
}
