package ingestion

import (
	"bufio"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/normalize"
	"github.com/poiesic/lexidict/storage"
)

const (
	// DefaultBatchSize is the number of input lines decoded per pool task.
	DefaultBatchSize = 256

	// maxLineSize caps a single input line.
	maxLineSize = 4 << 20
)

// Stats summarizes one import run.
type Stats struct {
	Lines          int
	Entries        int
	Skipped        int
	ForwardKeys    int
	ReverseKeys    int
	InflectionKeys int
	Duration       time.Duration
}

// Importer decodes a JSON-lines dump and writes every derived index.
type Importer struct {
	writer    storage.Writer
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures an Importer.
type Option func(*Importer) error

// WithPoolSize sets the worker pool size for concurrent decoding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(im *Importer) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if im.pool != nil {
			im.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		im.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of lines decoded per pool task.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(im *Importer) error {
		if size <= 0 {
			return ErrInvalidBatchSize
		}
		im.batchSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(im *Importer) error {
		if logger == nil {
			logger = slog.Default()
		}
		im.logger = logger
		return nil
	}
}

// NewImporter creates a new importer writing through writer.
func NewImporter(writer storage.Writer, opts ...Option) (*Importer, error) {
	if writer == nil {
		return nil, ErrWriterRequired
	}

	poolSize := max(runtime.NumCPU()/2, 1)
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	im := &Importer{
		writer:    writer,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(im); err != nil {
			im.Release()
			return nil, err
		}
	}

	return im, nil
}

// Release releases the worker pool.
func (im *Importer) Release() {
	if im.pool != nil {
		im.pool.Release()
	}
}

// batch is a run of consecutive input lines and their decoded entries.
type batch struct {
	first   int
	lines   [][]byte
	entries []core.Entry
	skipped int
}

// Import reads a JSON-lines dump from r and writes the forward, reverse and
// inflection indices plus both ranked key lists. Lines that fail to decode
// or validate are logged and skipped.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	start := time.Now()

	batches, lines, err := im.decode(ctx, r)
	if err != nil {
		return nil, err
	}

	stats := &Stats{Lines: lines}
	var entries []core.Entry
	for _, b := range batches {
		entries = append(entries, b.entries...)
		stats.Skipped += b.skipped
	}
	stats.Entries = len(entries)

	idx := buildIndices(entries)
	stats.ForwardKeys = len(idx.forwardRank)
	stats.ReverseKeys = len(idx.reverseRank)
	stats.InflectionKeys = len(idx.inflections)

	if err := im.write(ctx, idx); err != nil {
		return nil, err
	}

	stats.Duration = time.Since(start)
	im.logger.Info("import finished",
		"lines", stats.Lines,
		"entries", stats.Entries,
		"skipped", stats.Skipped,
		"forward", stats.ForwardKeys,
		"reverse", stats.ReverseKeys,
		"inflection", stats.InflectionKeys,
		"duration", stats.Duration)
	return stats, nil
}

// decode splits r into batches and decodes them on the pool. Batches come
// back in input order.
func (im *Importer) decode(ctx context.Context, r io.Reader) ([]*batch, int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		batches []*batch
		current *batch
		lines   int
		wg      sync.WaitGroup
	)

	submit := func(b *batch) error {
		wg.Add(1)
		err := im.pool.Submit(func() {
			defer wg.Done()
			im.decodeBatch(b)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("failed to submit decode task: %w", err)
		}
		return nil
	}

	for scanner.Scan() {
		lines++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		if current == nil {
			if err := ctx.Err(); err != nil {
				wg.Wait()
				return nil, 0, err
			}
			current = &batch{first: lines}
		}
		current.lines = append(current.lines, slices.Clone(line))
		if len(current.lines) == im.batchSize {
			batches = append(batches, current)
			if err := submit(current); err != nil {
				wg.Wait()
				return nil, 0, err
			}
			current = nil
		}
	}
	if err := scanner.Err(); err != nil {
		wg.Wait()
		return nil, 0, fmt.Errorf("failed to read input: %w", err)
	}
	if current != nil {
		batches = append(batches, current)
		if err := submit(current); err != nil {
			wg.Wait()
			return nil, 0, err
		}
	}

	wg.Wait()
	return batches, lines, ctx.Err()
}

func (im *Importer) decodeBatch(b *batch) {
	b.entries = make([]core.Entry, 0, len(b.lines))
	for i, line := range b.lines {
		e, err := DecodeEntry(line)
		if err != nil {
			im.logger.Warn("skipping input line", "line", b.first+i, "err", err)
			b.skipped++
			continue
		}
		b.entries = append(b.entries, e)
	}
	b.lines = nil
}

// indices is everything derived from the decoded entries.
type indices struct {
	forward     map[string][]core.Entry
	forwardRank []string
	reverse     map[string][]string
	reverseRank []string
	inflections map[string][]string
}

// buildIndices groups entries by key and derives the secondary indices.
// Forward keys rank by best probability, ties by first appearance. Reverse
// and inflection targets follow forward rank. Japanese keys rank by the best
// rank among their English keys.
func buildIndices(entries []core.Entry) *indices {
	idx := &indices{
		forward:     make(map[string][]core.Entry),
		reverse:     make(map[string][]string),
		inflections: make(map[string][]string),
	}

	var order []string
	for _, e := range entries {
		if _, ok := idx.forward[e.Key]; !ok {
			order = append(order, e.Key)
		}
		idx.forward[e.Key] = append(idx.forward[e.Key], e)
	}

	best := make(map[string]float64, len(order))
	for _, key := range order {
		best[key] = core.BestEntry(idx.forward[key]).Probability
	}
	idx.forwardRank = slices.Clone(order)
	slices.SortStableFunc(idx.forwardRank, func(a, b string) int {
		return cmp.Compare(best[b], best[a])
	})
	rank := make(map[string]int, len(idx.forwardRank))
	for i, key := range idx.forwardRank {
		rank[key] = i
	}

	var reverseOrder []string
	for _, key := range idx.forwardRank {
		for _, e := range idx.forward[key] {
			for _, t := range e.Translations {
				rk := normalize.Normalize(t)
				if rk == "" {
					continue
				}
				if _, ok := idx.reverse[rk]; !ok {
					reverseOrder = append(reverseOrder, rk)
				}
				if !slices.Contains(idx.reverse[rk], key) {
					idx.reverse[rk] = append(idx.reverse[rk], key)
				}
			}
			for _, form := range e.Inflections.Forms() {
				fk := normalize.Normalize(form)
				if fk == "" || fk == key {
					continue
				}
				if !slices.Contains(idx.inflections[fk], key) {
					idx.inflections[fk] = append(idx.inflections[fk], key)
				}
			}
		}
	}

	// reverseOrder already follows the best English rank of each term since
	// forward keys were walked in rank order.
	idx.reverseRank = reverseOrder
	return idx
}

func (im *Importer) write(ctx context.Context, idx *indices) error {
	var errs []error
	for _, key := range idx.forwardRank {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := im.writer.PutForward(ctx, key, idx.forward[key]); err != nil {
			errs = append(errs, fmt.Errorf("forward %q: %w", key, err))
		}
	}
	for _, key := range idx.reverseRank {
		if err := im.writer.PutReverse(ctx, key, idx.reverse[key]); err != nil {
			errs = append(errs, fmt.Errorf("reverse %q: %w", key, err))
		}
	}
	for key, lemmas := range idx.inflections {
		if err := im.writer.PutInflection(ctx, key, lemmas); err != nil {
			errs = append(errs, fmt.Errorf("inflection %q: %w", key, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if err := im.writer.PutRankedKeys(ctx, storage.Forward, idx.forwardRank); err != nil {
		return fmt.Errorf("forward ranked keys: %w", err)
	}
	if err := im.writer.PutRankedKeys(ctx, storage.Reverse, idx.reverseRank); err != nil {
		return fmt.Errorf("reverse ranked keys: %w", err)
	}
	return nil
}

// ImportCooccurrence reads "word<TAB>record" lines from r and stores each
// record verbatim under the normalized word. Returns the number of records
// written.
func (im *Importer) ImportCooccurrence(ctx context.Context, r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	written := 0
	line := 0
	for scanner.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return written, err
		}
		word, record, ok := strings.Cut(scanner.Text(), "\t")
		word = normalize.Normalize(word)
		if !ok || word == "" {
			im.logger.Warn("skipping cooccurrence line", "line", line)
			continue
		}
		if err := im.writer.PutCooccurrence(ctx, word, record); err != nil {
			return written, fmt.Errorf("cooccurrence %q: %w", word, err)
		}
		written++
	}
	if err := scanner.Err(); err != nil {
		return written, fmt.Errorf("failed to read input: %w", err)
	}

	im.logger.Info("cooccurrence import finished", "records", written)
	return written, nil
}
