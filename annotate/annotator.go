package annotate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
	"github.com/poiesic/lexidict/search"
)

const (
	// DefaultMaxPhrase is the default longest phrase window in words.
	DefaultMaxPhrase = 4

	// DefaultRubyCount is the default number of translations in ruby text.
	DefaultRubyCount = 3
)

// Searcher runs dictionary queries. *search.Matcher implements it.
type Searcher interface {
	Search(ctx context.Context, q search.Query) (*search.Result, error)
}

// Annotator glosses documents. It is safe for concurrent use.
type Annotator struct {
	searcher  Searcher
	pool      *ants.Pool
	maxPhrase int
	rubyCount int
	skipStops bool
	logger    *slog.Logger
}

// Option configures an Annotator.
type Option func(*Annotator) error

// WithMaxPhrase sets the longest phrase window in words.
// Default is DefaultMaxPhrase.
func WithMaxPhrase(words int) Option {
	return func(a *Annotator) error {
		if words <= 0 {
			return ErrInvalidPhraseLength
		}
		a.maxPhrase = words
		return nil
	}
}

// WithRubyCount sets how many translations ruby text carries.
// Default is DefaultRubyCount.
func WithRubyCount(n int) Option {
	return func(a *Annotator) error {
		if n <= 0 {
			return ErrInvalidRubyCount
		}
		a.rubyCount = n
		return nil
	}
}

// WithSkipStopWords leaves single stop words and numbers unglossed.
// Default is false.
func WithSkipStopWords(skip bool) Option {
	return func(a *Annotator) error {
		a.skipStops = skip
		return nil
	}
}

// WithPoolSize sets the number of pages annotated concurrently.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(a *Annotator) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if a.pool != nil {
			a.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		a.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Annotator) error {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
		return nil
	}
}

// NewAnnotator creates a new annotator over searcher.
// Call Release when done.
func NewAnnotator(searcher Searcher, opts ...Option) (*Annotator, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}

	pool, err := ants.NewPool(max(1, runtime.NumCPU()))
	if err != nil {
		return nil, err
	}

	a := &Annotator{
		searcher:  searcher,
		pool:      pool,
		maxPhrase: DefaultMaxPhrase,
		rubyCount: DefaultRubyCount,
		logger:    slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(a); optErr != nil {
			a.Release()
			return nil, optErr
		}
	}

	return a, nil
}

// PoolSize returns the number of pages annotated concurrently.
func (a *Annotator) PoolSize() int {
	return a.pool.Cap()
}

// Release releases the worker pool.
// The annotator should not be used after calling Release.
func (a *Annotator) Release() {
	if a.pool != nil {
		a.pool.Release()
	}
}

// Annotate glosses every page of doc. Pages run concurrently on the worker
// pool; the output keeps page order. A store failure on any page fails
// the whole call.
func (a *Annotator) Annotate(ctx context.Context, doc *document.Document) (*Output, error) {
	pages := make([]AnnotatedPage, len(doc.Pages))
	errs := make([]error, len(doc.Pages))

	var wg sync.WaitGroup
	for i := range doc.Pages {
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			pages[i], errs[i] = a.AnnotatePage(ctx, i, doc.Pages[i])
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("failed to schedule page %d: %w", i, err)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		a.logger.Error("annotation failed", "pages", len(doc.Pages), "err", err)
		return nil, err
	}

	out := &Output{
		Title: doc.Title(),
		Meta:  doc.Meta,
		Pages: pages,
		TOC:   BuildTOC(pages),
	}
	a.logger.Debug("annotated document", "title", out.Title, "pages", len(pages))
	return out, nil
}

// AnnotatePage glosses a single page. index is the page's position in its
// document and only feeds the page ID.
func (a *Annotator) AnnotatePage(ctx context.Context, index int, page document.Page) (AnnotatedPage, error) {
	out := AnnotatedPage{
		ID:     PageID(index, page),
		Index:  index,
		Title:  page.Title(),
		Blocks: make([]AnnotatedBlock, 0, len(page.Blocks)),
	}

	for _, block := range page.Blocks {
		ab := AnnotatedBlock{Kind: block.Kind, Level: block.Level}
		if block.Kind == document.Heading {
			ab.Spans = []Span{{Text: block.Text}}
		} else {
			spans, err := a.annotateParagraph(ctx, block.Text)
			if err != nil {
				return AnnotatedPage{}, err
			}
			ab.Spans = spans
		}
		out.Blocks = append(out.Blocks, ab)
	}
	return out, nil
}

// AnnotateText glosses a single paragraph of text.
func (a *Annotator) AnnotateText(ctx context.Context, text string) ([]Span, error) {
	return a.annotateParagraph(ctx, text)
}

// PageID derives a deterministic ID from a page's position and content.
func PageID(index int, page document.Page) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d\x00%s", index, page.Text()))
}
