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

// Package lexidict wires a dictionary store to the lookup, annotation and
// related-word engines.
package lexidict

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/lexidict/annotate"
	"github.com/poiesic/lexidict/config"
	"github.com/poiesic/lexidict/cooc"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/result"
	"github.com/poiesic/lexidict/search"
	"github.com/poiesic/lexidict/storage"
	"github.com/poiesic/lexidict/storage/badger"
	"github.com/poiesic/lexidict/storage/cache"
)

// ErrDocumentRequired is returned when Annotate is called without a document.
var ErrDocumentRequired = errors.New("document required")

// Dictionary is an open, read-only dictionary with every engine attached.
// It is safe for concurrent use.
type Dictionary struct {
	store     *badger.Store
	reader    storage.Store
	matcher   *search.Matcher
	assembler *result.Assembler
	annotator *annotate.Annotator
	predictor *cooc.Predictor
	cfg       *config.Config
	logger    *slog.Logger
}

// Option configures a Dictionary.
type Option func(*options)

type options struct {
	cfg    *config.Config
	store  *badger.Store
	logger *slog.Logger
}

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.cfg = cfg
	}
}

// WithStore uses an already open store instead of opening one. The
// Dictionary takes ownership and closes it on Close.
func WithStore(store *badger.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Open opens the store at the configured path read-only and attaches the
// engines. The open is retried while another process holds the store.
func Open(ctx context.Context, opts ...Option) (*Dictionary, error) {
	o := &options{
		cfg:    config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}

	store := o.store
	if store == nil {
		backend, err := badger.OpenBackendWithRetry(ctx, o.cfg.Store.Path, badger.ReadOnly,
			o.cfg.Store.OpenAttempts, o.cfg.Store.OpenRetryDelay())
		if err != nil {
			return nil, err
		}
		store = badger.NewStore(backend, badger.WithStoreLogger(o.logger))
	}

	d, err := build(ctx, store, o.cfg, o.logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return d, nil
}

func build(ctx context.Context, store *badger.Store, cfg *config.Config, logger *slog.Logger) (*Dictionary, error) {
	d := &Dictionary{
		store:  store,
		reader: store,
		cfg:    cfg,
		logger: logger,
	}

	if cfg.Store.CacheSize > 0 {
		cached, err := cache.New(store, cache.WithSize(cfg.Store.CacheSize), cache.WithLogger(logger))
		if err != nil {
			return nil, err
		}
		d.reader = cached
	}

	matcherOpts := []search.Option{
		search.WithLimit(cfg.Search.Limit),
		search.WithTierSize(cfg.Search.TierSize),
		search.WithLogger(logger),
	}
	if cfg.Search.PrefixIndex {
		idx, err := search.BuildPrefixIndex(ctx, store)
		if err != nil {
			return nil, err
		}
		logger.Debug("built prefix index", "keys", idx.Len())
		matcherOpts = append(matcherOpts, search.WithPrefixIndex(idx))
	}

	var err error
	if d.matcher, err = search.NewMatcher(d.reader, matcherOpts...); err != nil {
		return nil, err
	}
	if d.assembler, err = result.NewAssembler(
		result.WithThresholds(cfg.View.FullMax, cfg.View.SimpleMax),
		result.WithLogger(logger)); err != nil {
		return nil, err
	}

	annotateOpts := []annotate.Option{
		annotate.WithMaxPhrase(cfg.Annotate.MaxPhrase),
		annotate.WithRubyCount(cfg.Annotate.RubyCount),
		annotate.WithSkipStopWords(cfg.Annotate.SkipStopWords),
		annotate.WithLogger(logger),
	}
	if cfg.Annotate.PoolSize > 0 {
		annotateOpts = append(annotateOpts, annotate.WithPoolSize(cfg.Annotate.PoolSize))
	}
	if d.annotator, err = annotate.NewAnnotator(d.matcher, annotateOpts...); err != nil {
		return nil, err
	}

	predictorOpts := []cooc.Option{
		cooc.WithLanguage(cfg.Cooc.Language),
		cooc.WithLogger(logger),
	}
	if cfg.Cooc.Language == "ja" {
		predictorOpts = append(predictorOpts, cooc.WithTokenizer(splitWords))
	}
	if d.predictor, err = cooc.NewPredictor(store, predictorOpts...); err != nil {
		d.annotator.Release()
		return nil, err
	}

	return d, nil
}

// splitWords returns the normalized words of text using the annotator's
// tokenizer, which segments Japanese.
func splitWords(text string) []string {
	var words []string
	for _, tok := range annotate.Split(text) {
		if !tok.Word {
			continue
		}
		if w := normalize.Normalize(tok.Text); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Close releases the annotator pool and closes the store.
func (d *Dictionary) Close() error {
	d.annotator.Release()
	if err := d.store.Close(); err != nil {
		d.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the dictionary was opened with.
func (d *Dictionary) Config() *config.Config {
	return d.cfg
}

// Store returns the underlying store.
func (d *Dictionary) Store() *badger.Store {
	return d.store
}

// Matcher returns the query matcher.
func (d *Dictionary) Matcher() *search.Matcher {
	return d.matcher
}

// Search runs q and assembles its result in view. The annot index glosses
// the query text and returns the matched entries in text order.
func (d *Dictionary) Search(ctx context.Context, q search.Query, view core.ViewMode) (*result.Result, error) {
	if !view.Valid() {
		return nil, core.ErrInvalidMode
	}

	var (
		res *search.Result
		err error
	)
	if q.Index == core.IndexAnnot {
		res, err = d.searchAnnot(ctx, q)
	} else {
		res, err = d.matcher.Search(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	return d.assembler.Assemble(res, view)
}

func (d *Dictionary) searchAnnot(ctx context.Context, q search.Query) (*search.Result, error) {
	if !q.Search.Valid() {
		return nil, core.ErrInvalidMode
	}
	if q.Limit < 0 {
		return nil, core.ErrInvalidQuery
	}
	limit := q.Limit
	if limit == 0 {
		limit = d.matcher.Limit()
	}

	res := &search.Result{
		Query:  normalize.Normalize(q.Text),
		Index:  core.IndexAnnot,
		Search: core.SearchExact,
		Tier:   -1,
		Limit:  limit,
	}
	spans, err := d.annotator.AnnotateText(ctx, q.Text)
	if err != nil {
		return nil, err
	}
	for _, span := range spans {
		if span.Match == nil {
			continue
		}
		if len(res.Hits) == limit {
			break
		}
		res.Hits = append(res.Hits, search.Hit{
			Key:     span.Match.Key,
			Source:  normalize.Normalize(span.Text),
			Entries: []core.Entry{span.Match.Entry},
			Rank:    -1,
		})
	}
	return res, nil
}

// Annotate glosses every page of doc.
func (d *Dictionary) Annotate(ctx context.Context, doc *document.Document) (*annotate.Output, error) {
	if doc == nil {
		return nil, ErrDocumentRequired
	}
	return d.annotator.Annotate(ctx, doc)
}

// Related predicts words related to text from cooccurrence records.
func (d *Dictionary) Related(ctx context.Context, text string) (*cooc.Prediction, error) {
	return d.predictor.Predict(ctx, text)
}
