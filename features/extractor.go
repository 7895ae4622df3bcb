package features

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/search"
	"github.com/poiesic/lexidict/storage"
)

const (
	// DefaultMaxFeatures is the default number of features kept per headword.
	DefaultMaxFeatures = 100

	// DefaultReportInterval is the default progress report interval in headwords.
	DefaultReportInterval = 1000

	// minProbability floors entry probabilities so ratios stay finite.
	minProbability = 0.000001

	// decay is applied to each successive translation or related word.
	decay = 0.9
)

// Feature is one weighted label.
type Feature struct {
	Label string
	Score float64
}

// WordFeatures is the feature vector of one entry.
type WordFeatures struct {
	Word     string
	Features []Feature
}

// Format renders wf as a TSV line: the word followed by label and score
// pairs, scores with three decimals.
func (wf WordFeatures) Format() string {
	var sb strings.Builder
	sb.WriteString(wf.Word)
	for _, f := range wf.Features {
		sb.WriteByte('\t')
		sb.WriteString(f.Label)
		sb.WriteByte('\t')
		sb.WriteString(strconv.FormatFloat(f.Score, 'f', 3, 64))
	}
	return sb.String()
}

// Extractor computes feature vectors for every headword of a store.
type Extractor struct {
	store          storage.Store
	matcher        *search.Matcher
	pageSize       int
	maxFeatures    int
	progress       io.Writer
	reportInterval int
	logger         *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithPageSize sets the number of headwords fetched per grade page.
// Default is search.DefaultTierSize.
func WithPageSize(size int) Option {
	return func(x *Extractor) error {
		if size <= 0 {
			return search.ErrInvalidTierSize
		}
		x.pageSize = size
		return nil
	}
}

// WithMaxFeatures sets the number of features kept per headword.
// Default is DefaultMaxFeatures.
func WithMaxFeatures(n int) Option {
	return func(x *Extractor) error {
		if n <= 0 {
			return ErrInvalidMaxFeatures
		}
		x.maxFeatures = n
		return nil
	}
}

// WithProgress reports progress to w every interval headwords.
// Default is no progress output.
func WithProgress(w io.Writer, interval int) Option {
	return func(x *Extractor) error {
		if w == nil {
			w = io.Discard
		}
		if interval <= 0 {
			interval = DefaultReportInterval
		}
		x.progress = w
		x.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(x *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		x.logger = logger
		return nil
	}
}

// NewExtractor creates a new extractor over store.
func NewExtractor(store storage.Store, opts ...Option) (*Extractor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	x := &Extractor{
		store:          store,
		pageSize:       search.DefaultTierSize,
		maxFeatures:    DefaultMaxFeatures,
		progress:       io.Discard,
		reportInterval: DefaultReportInterval,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(x); err != nil {
			return nil, err
		}
	}

	matcher, err := search.NewMatcher(store,
		search.WithTierSize(x.pageSize),
		search.WithLogger(x.logger))
	if err != nil {
		return nil, err
	}
	x.matcher = matcher

	return x, nil
}

// Run extracts the features of every entry in rank order and passes each
// vector to fn. Iteration stops on the first error from fn.
func (x *Extractor) Run(ctx context.Context, fn func(WordFeatures) error) error {
	total, err := x.store.RankedKeyCount(ctx, storage.Forward)
	if err != nil {
		return fmt.Errorf("failed to count headwords: %w", err)
	}
	if total == 0 {
		x.logger.Info("no headwords to process")
		return nil
	}

	x.logger.Info("extracting features", "headwords", total, "pageSize", x.pageSize)
	tracker := NewProgressTracker(x.progress, total, x.reportInterval)
	tracker.Start()

	emitted := 0
	err = NewGradePager(x.matcher).ForEach(ctx, func(tier int, hits []search.Hit) error {
		for _, hit := range hits {
			for _, entry := range hit.Entries {
				features, err := x.Extract(ctx, entry)
				if err != nil {
					return fmt.Errorf("failed to extract %q: %w", entry.Word, err)
				}
				if len(features) == 0 {
					continue
				}
				if err := fn(WordFeatures{Word: entry.Word, Features: features}); err != nil {
					return err
				}
				emitted++
			}
		}
		tracker.Increment(len(hits))
		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()
	x.logger.Info("feature extraction finished",
		"headwords", total,
		"vectors", emitted,
		"elapsed", tracker.Elapsed().Round(time.Millisecond))
	return nil
}

// Extract computes the normalized feature vector of entry.
func (x *Extractor) Extract(ctx context.Context, entry core.Entry) ([]Feature, error) {
	prob := max(entry.Probability, minProbability)
	features := EntryFeatures(entry)

	for _, rel := range relationWeights(entry) {
		if err := x.addFeatures(ctx, rel.word, rel.weight, prob, features); err != nil {
			return nil, err
		}
	}

	return topFeatures(features, x.maxFeatures), nil
}

// addFeatures adds the features of the entries spelled exactly word,
// weighted by weight and by the square root of their probability relative
// to the core entry, capped at 1.
func (x *Extractor) addFeatures(ctx context.Context, word string, weight, coreProb float64, features map[string]float64) error {
	res, err := x.matcher.Search(ctx, search.Query{
		Text:   word,
		Index:  core.IndexNormal,
		Search: core.SearchExact,
	})
	if err != nil {
		return err
	}
	for _, hit := range res.Hits {
		for _, e := range hit.Entries {
			if e.Word != word {
				continue
			}
			prob := max(e.Probability, minProbability)
			ratio := math.Sqrt(min(prob/coreProb, 1))
			for label, score := range EntryFeatures(e) {
				features[label] += score * weight * ratio
			}
		}
	}
	return nil
}

// EntryFeatures returns the base features of an entry: its own key at 1.0
// and its translations at 1.0 decaying by 0.9 per position. A label seen
// twice keeps its higher weight.
func EntryFeatures(e core.Entry) map[string]float64 {
	features := make(map[string]float64, len(e.Translations)+1)
	if key := normalize.Normalize(e.Word); key != "" {
		features[key] = 1
	}
	weight := 1.0
	for _, t := range e.Translations {
		label := strings.TrimSpace(t)
		if label == "" {
			continue
		}
		features[label] = max(features[label], weight)
		weight *= decay
	}
	return features
}

type relWeight struct {
	word   string
	weight float64
}

// relationWeights weighs the parents, children and related words of e.
// Parents start at 1/min(n+1,5), children and related words at
// 1/min(n+2,5), each decaying by 0.9. A word in several lists keeps its
// highest weight and its first position.
func relationWeights(e core.Entry) []relWeight {
	var out []relWeight
	pos := make(map[string]int)
	add := func(words []string, offset int) {
		if len(words) == 0 {
			return
		}
		weight := 1 / float64(min(len(words)+offset, 5))
		for _, w := range words {
			if i, ok := pos[w]; ok {
				out[i].weight = max(out[i].weight, weight)
			} else {
				pos[w] = len(out)
				out = append(out, relWeight{word: w, weight: weight})
			}
			weight *= decay
		}
	}
	add(e.Parents, 1)
	add(e.Children, 2)
	add(e.Related, 2)
	return out
}

// topFeatures normalizes scores to the maximum and keeps the n strongest,
// ties ordered by label.
func topFeatures(features map[string]float64, n int) []Feature {
	out := make([]Feature, 0, len(features))
	maxScore := 0.0
	for label, score := range features {
		out = append(out, Feature{Label: label, Score: score})
		maxScore = max(maxScore, score)
	}
	if maxScore <= 0 {
		return nil
	}
	for i := range out {
		out[i].Score /= maxScore
	}
	slices.SortFunc(out, func(a, b Feature) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Label, b.Label)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
