package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/lexidict"
	"github.com/poiesic/lexidict/annotate"
	"github.com/poiesic/lexidict/config"
	"github.com/poiesic/lexidict/core"
	"github.com/poiesic/lexidict/document"
	"github.com/poiesic/lexidict/features"
	"github.com/poiesic/lexidict/ingestion"
	"github.com/poiesic/lexidict/result"
	"github.com/poiesic/lexidict/search"
	"github.com/poiesic/lexidict/server"
	"github.com/poiesic/lexidict/storage/badger"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"
)

func searchCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("a query is required")
	}

	index, err := core.ParseIndexMode(c.String("index"))
	if err != nil {
		return err
	}
	mode, err := core.ParseSearchMode(c.String("search"))
	if err != nil {
		return err
	}

	return lookup(c, search.Query{
		Text:   text,
		Index:  index,
		Search: mode,
		Limit:  c.Int("limit"),
	})
}

func gradeCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one tier is required")
	}
	return lookup(c, search.Query{Text: c.Args().First(), Index: core.IndexGrade})
}

func lookup(c *cli.Context, q search.Query) error {
	view, err := core.ParseViewMode(c.String("view"))
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	res, err := d.Search(c.Context, q, view)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		data, err := result.RenderJSON(res, c.Bool("pretty"))
		if err != nil {
			return err
		}
		return writeLine(c.App.Writer, data)
	}
	return result.RenderText(c.App.Writer, res)
}

func annotateCommand(c *cli.Context) error {
	in, closeIn, err := openInput(c, c.Args().First())
	if err != nil {
		return err
	}
	defer closeIn()

	doc, err := document.Parse(in)
	if err != nil {
		return err
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	out, err := d.Annotate(c.Context, doc)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		data, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to encode annotation: %w", err)
		}
		if c.Bool("pretty") {
			data = pretty.Pretty(data)
		}
		return writeLine(c.App.Writer, data)
	}
	return annotate.RenderText(c.App.Writer, out)
}

func relatedCommand(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return errors.New("text is required")
	}

	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	pred, err := d.Related(c.Context, text)
	if err != nil {
		return err
	}

	related := pred.Related
	if limit := c.Int("limit"); limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	w := bufio.NewWriter(c.App.Writer)
	for _, s := range related {
		fmt.Fprintf(w, "%s\t%.4f\n", s.Word, s.Score)
	}
	return w.Flush()
}

func importCommand(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)

	backend, err := badger.OpenBackendWithRetry(ctx, cfg.Store.Path, badger.ReadWrite,
		cfg.Store.OpenAttempts, cfg.Store.OpenRetryDelay())
	if err != nil {
		return err
	}
	store := badger.NewStore(backend, badger.WithStoreLogger(slog.Default()))
	defer store.Close()

	opts := []ingestion.Option{ingestion.WithBatchSize(c.Int("batch-size"))}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingestion.WithPoolSize(size))
	}
	im, err := ingestion.NewImporter(store, opts...)
	if err != nil {
		return err
	}
	defer im.Release()

	in, closeIn, err := openInput(c, c.String("input"))
	if err != nil {
		return err
	}
	defer closeIn()

	stats, err := im.Import(ctx, in)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d entries from %d lines (%d skipped)\n", stats.Entries, stats.Lines, stats.Skipped)
	fmt.Fprintf(c.App.Writer, "Headwords: %d, Japanese terms: %d, inflected forms: %d\n",
		stats.ForwardKeys, stats.ReverseKeys, stats.InflectionKeys)

	path := c.String("cooc")
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := im.ImportCooccurrence(ctx, f)
	if err != nil {
		return fmt.Errorf("cooccurrence import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d cooccurrence records\n", n)
	return nil
}

func featuresCommand(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)

	backend, err := badger.OpenBackendWithRetry(ctx, cfg.Store.Path, badger.ReadOnly,
		cfg.Store.OpenAttempts, cfg.Store.OpenRetryDelay())
	if err != nil {
		return err
	}
	store := badger.NewStore(backend, badger.WithStoreLogger(slog.Default()))
	defer store.Close()

	extractor, err := features.NewExtractor(store,
		features.WithPageSize(cfg.Features.PageSize),
		features.WithMaxFeatures(cfg.Features.MaxFeatures),
		features.WithProgress(c.App.ErrWriter, c.Int("report-interval")),
		features.WithLogger(slog.Default()))
	if err != nil {
		return err
	}

	w := bufio.NewWriter(c.App.Writer)
	err = extractor.Run(ctx, func(wf features.WordFeatures) error {
		_, err := fmt.Fprintln(w, wf.Format())
		return err
	})
	if err != nil {
		return fmt.Errorf("feature extraction failed: %w", err)
	}
	return w.Flush()
}

func serveCommand(c *cli.Context) error {
	d, err := openDictionary(c)
	if err != nil {
		return err
	}
	defer d.Close()

	srv, err := server.New(d,
		server.WithIO(c.App.Reader, c.App.Writer),
		server.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	return srv.Serve(c.Context)
}

func configInitCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		path = "lexidict.toml"
	}
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}

func openDictionary(c *cli.Context) (*lexidict.Dictionary, error) {
	return lexidict.Open(c.Context,
		lexidict.WithConfig(configFrom(c)),
		lexidict.WithLogger(slog.Default()))
}

// openInput opens path for reading. An empty path or "-" reads the app's
// standard input.
func openInput(c *cli.Context, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return c.App.Reader, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeLine(w io.Writer, data []byte) error {
	if len(data) > 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	_, err := w.Write(data)
	return err
}
