package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/storage"
)

const (
	// DefaultLimit is the default cap on hits per query.
	DefaultLimit = 100

	// DefaultTierSize is the default number of keys per grade tier.
	DefaultTierSize = 500
)

// autoCascade is the order of tiers tried by the auto search mode.
var autoCascade = []core.SearchMode{core.SearchExact, core.SearchRelated, core.SearchEdit}

// Query is a single lookup request.
type Query struct {
	// Text is the free-text query. For the grade index it is the tier id.
	Text   string
	Index  core.IndexMode
	Search core.SearchMode
	// Limit caps the number of hits. Zero uses the matcher default.
	Limit int
}

// Hit is one forward key and its entries.
type Hit struct {
	// Key is the forward key the entries are stored under.
	Key string
	// Source is the index key that produced the hit: a Japanese term for
	// reverse hits, an inflected form for inflection hits, otherwise Key.
	Source  string
	Entries []core.Entry
	// Distance is the edit distance of edit hits.
	Distance int
	// Rank is the position of Source in its ranked key list, or -1 for
	// keyed lookups.
	Rank int
}

// Result is the outcome of a query with auto modes resolved.
type Result struct {
	// Query is the normalized query text.
	Query string
	Index core.IndexMode
	// Search is the mode that produced Hits. For auto it is the last tier tried.
	Search core.SearchMode
	// Tier is the grade tier, or -1.
	Tier  int
	Limit int
	Hits  []Hit
}

// Keys returns the forward keys of the hits in order.
func (r *Result) Keys() []string {
	keys := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		keys[i] = h.Key
	}
	return keys
}

// Matcher runs queries against a read-only store.
// A Matcher holds no per-query state and is safe for concurrent use.
type Matcher struct {
	store    storage.Store
	prefix   *PrefixIndex
	logger   *slog.Logger
	limit    int
	tierSize int
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// WithLimit sets the default result limit.
// Default is DefaultLimit.
func WithLimit(limit int) Option {
	return func(m *Matcher) error {
		if limit <= 0 {
			return ErrInvalidLimit
		}
		m.limit = limit
		return nil
	}
}

// WithTierSize sets the number of keys per grade tier.
// Default is DefaultTierSize.
func WithTierSize(size int) Option {
	return func(m *Matcher) error {
		if size <= 0 {
			return ErrInvalidTierSize
		}
		m.tierSize = size
		return nil
	}
}

// WithPrefixIndex serves forward prefix queries from an in-memory index
// instead of scanning the store.
func WithPrefixIndex(idx *PrefixIndex) Option {
	return func(m *Matcher) error {
		m.prefix = idx
		return nil
	}
}

// NewMatcher creates a new matcher over store.
func NewMatcher(store storage.Store, opts ...Option) (*Matcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	m := &Matcher{
		store:    store,
		logger:   slog.Default(),
		limit:    DefaultLimit,
		tierSize: DefaultTierSize,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// TierSize returns the number of keys per grade tier.
func (m *Matcher) TierSize() int {
	return m.tierSize
}

// Limit returns the default result limit.
func (m *Matcher) Limit() int {
	return m.limit
}

// Search runs q and returns its hits.
func (m *Matcher) Search(ctx context.Context, q Query) (*Result, error) {
	return m.SearchWithMonitor(ctx, q, nil)
}

// SearchWithMonitor runs q, reporting progress to monitor.
// Mode tokens are validated before the store is touched.
func (m *Matcher) SearchWithMonitor(ctx context.Context, q Query, monitor SearchMonitor) (*Result, error) {
	if !q.Index.Valid() {
		return nil, fmt.Errorf("%w: index mode %d", core.ErrInvalidMode, int(q.Index))
	}
	if !q.Search.Valid() {
		return nil, fmt.Errorf("%w: search mode %d", core.ErrInvalidMode, int(q.Search))
	}
	if q.Index == core.IndexAnnot {
		return nil, ErrAnnotIndex
	}
	if q.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit %d", core.ErrInvalidQuery, q.Limit)
	}

	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(q)

	text := normalize.Normalize(q.Text)
	index := q.Index
	if index == core.IndexAuto {
		index = core.IndexNormal
		if normalize.DetectScript(text) == core.ScriptCJK {
			index = core.IndexReverse
		}
	}

	limit := q.Limit
	if limit == 0 {
		limit = m.limit
	}

	res := &Result{
		Query:  text,
		Index:  index,
		Search: q.Search,
		Tier:   -1,
		Limit:  limit,
	}

	s := &session{
		m:       m,
		ctx:     ctx,
		monitor: monitor,
		query:   text,
		family:  storage.Forward,
	}
	if index == core.IndexReverse {
		s.family = storage.Reverse
	}

	var err error
	switch index {
	case core.IndexGrade:
		res.Tier, err = parseTier(q.Text)
		if err != nil {
			return nil, err
		}
		res.Limit = m.tierSize
		if res.Tier >= 0 {
			res.Hits, err = s.grade(res.Tier)
		}
	case core.IndexInflection:
		res.Search = core.SearchExact
		if text != "" {
			res.Hits, err = s.inflection(limit)
		}
		monitor.AfterTier(res.Search, res.Hits)
	default:
		if text == "" {
			break
		}
		if q.Search != core.SearchAuto {
			res.Hits, err = s.run(q.Search, limit)
			monitor.AfterTier(q.Search, res.Hits)
			break
		}
		for _, mode := range autoCascade {
			res.Search = mode
			res.Hits, err = s.run(mode, limit)
			if err != nil {
				break
			}
			monitor.AfterTier(mode, res.Hits)
			if len(res.Hits) > 0 {
				break
			}
		}
	}
	if err != nil {
		m.logger.Error("search failed", "query", text, "index", index, "search", res.Search, "err", err)
		return nil, err
	}

	m.logger.Debug("search finished", "query", text, "index", index, "search", res.Search, "hits", len(res.Hits))
	monitor.Finish(res)
	return res, nil
}

// parseTier reads a tier id from the raw query text. Normalization would
// strip signs and punctuation, so only surrounding space is trimmed.
// Negative tiers parse and select nothing.
func parseTier(text string) (int, error) {
	text = strings.TrimSpace(text)
	tier, err := strconv.Atoi(text)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			// Atoi clamps out-of-range ids, which select nothing either way.
			return tier, nil
		}
		return 0, fmt.Errorf("%w: grade tier %q is not an integer", core.ErrInvalidQuery, text)
	}
	return tier, nil
}

// session carries the state of one query.
type session struct {
	m       *Matcher
	ctx     context.Context
	monitor SearchMonitor
	query   string
	family  storage.Family
}

func (s *session) run(mode core.SearchMode, limit int) ([]Hit, error) {
	switch mode {
	case core.SearchExact:
		return s.exact(limit)
	case core.SearchPrefix, core.SearchSuffix, core.SearchContain, core.SearchWord:
		return s.scan(mode, limit)
	case core.SearchEdit:
		return s.edit(limit)
	case core.SearchRelated:
		return s.related(limit)
	}
	return nil, fmt.Errorf("%w: search mode %s", core.ErrInvalidMode, mode)
}

func (s *session) exact(limit int) ([]Hit, error) {
	hits := newHitSet(limit)
	found, err := s.resolve(s.query, s.family, -1)
	if err != nil {
		return nil, err
	}
	hits.add(found...)
	return hits.hits, nil
}

func (s *session) inflection(limit int) ([]Hit, error) {
	lemmas, err := s.list(s.m.store.GetInflection, s.query)
	if err != nil {
		return nil, err
	}

	hits := newHitSet(limit)
	for _, lemma := range lemmas {
		if hits.full() {
			break
		}
		entries, err := s.forward(lemma)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			hits.add(Hit{Key: lemma, Source: s.query, Entries: entries, Rank: -1})
		}
	}
	return hits.hits, nil
}

// grade returns the keys of ranked[tier*T:(tier+1)*T]. A key whose record
// is missing is kept with no entries; a malformed one is skipped.
func (s *session) grade(tier int) ([]Hit, error) {
	size := s.m.tierSize
	if tier > math.MaxInt/size-1 {
		return nil, nil
	}
	start := tier * size

	count, err := s.m.store.RankedKeyCount(s.ctx, storage.Forward)
	if err != nil {
		return nil, err
	}
	if start >= count {
		return nil, nil
	}

	hits := make([]Hit, 0, min(size, count-start))
	var visitErr error
	err = s.m.store.ScanRankedKeys(s.ctx, storage.Forward, start, func(rank int, key string) bool {
		if rank >= start+size {
			return false
		}
		entries, err := s.m.store.GetForward(s.ctx, key)
		if err != nil {
			if !errors.Is(err, storage.ErrMalformedRecord) {
				visitErr = err
				return false
			}
			s.skip(key, err)
			return true
		}
		hits = append(hits, Hit{Key: key, Source: key, Entries: entries, Rank: rank})
		return true
	})
	if err != nil {
		return nil, err
	}
	if visitErr != nil {
		return nil, visitErr
	}
	return hits, nil
}

// resolve turns an index key of family into forward hits.
func (s *session) resolve(key string, family storage.Family, rank int) ([]Hit, error) {
	if family == storage.Forward {
		entries, err := s.forward(key)
		if err != nil || len(entries) == 0 {
			return nil, err
		}
		return []Hit{{Key: key, Source: key, Entries: entries, Rank: rank}}, nil
	}

	targets, err := s.list(s.m.store.GetReverse, key)
	if err != nil {
		return nil, err
	}
	var hits []Hit
	for _, target := range targets {
		entries, err := s.forward(target)
		if err != nil {
			return nil, err
		}
		if len(entries) > 0 {
			hits = append(hits, Hit{Key: target, Source: key, Entries: entries, Rank: rank})
		}
	}
	return hits, nil
}

// forward reads a forward record. Malformed records read as absent.
func (s *session) forward(key string) ([]core.Entry, error) {
	entries, err := s.m.store.GetForward(s.ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrMalformedRecord) {
			s.skip(key, err)
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

// list reads a reverse or inflection record. Malformed records read as absent.
func (s *session) list(get func(context.Context, string) ([]string, error), key string) ([]string, error) {
	values, err := get(s.ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrMalformedRecord) {
			s.skip(key, err)
			return nil, nil
		}
		return nil, err
	}
	return values, nil
}

func (s *session) skip(key string, err error) {
	s.m.logger.Warn("skipping malformed record", "key", key, "err", err)
	s.monitor.SkippedRecord(key, err)
}

// hitSet accumulates hits in order, unique by forward key, up to a limit.
type hitSet struct {
	hits  []Hit
	seen  map[string]bool
	limit int
}

func newHitSet(limit int) *hitSet {
	return &hitSet{seen: make(map[string]bool), limit: limit}
}

func (h *hitSet) add(hits ...Hit) {
	for _, hit := range hits {
		if h.full() {
			return
		}
		if h.seen[hit.Key] {
			continue
		}
		h.seen[hit.Key] = true
		h.hits = append(h.hits, hit)
	}
}

func (h *hitSet) full() bool {
	return len(h.hits) >= h.limit
}
