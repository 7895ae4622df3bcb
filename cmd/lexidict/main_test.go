package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lexidict/config"
	"github.com/poiesic/lexidict/result"
	"github.com/poiesic/lexidict/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/vmihailenco/msgpack/v5"
)

const testDump = `{"word": "in", "probability": 0.02, "translation": ["中に"]}
{"word": "mind", "probability": 0.001, "translation": ["心", "精神"], "senses": [{"label": "wn", "pos": "noun", "text": "that which thinks"}], "related": ["brain"]}
{"word": "in mind", "probability": 0.00009, "translation": ["心に留めて"]}
{"word": "heart", "probability": 0.0008, "translation": ["心臓", "心"]}
{"word": "brain", "probability": 0.0005, "translation": ["脳"]}
`

const testCooc = "mind\t1000\tbrain 800\tthought 600\n" +
	"brain\t1200\tmind 700\tthought 650\n" +
	"thought\t900\tmind 750\tbrain 500\n"

// run executes the app with args and returns what it wrote to stdout.
func run(t *testing.T, stdin io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = io.Discard
	if stdin != nil {
		app.Reader = stdin
	}
	err := app.RunContext(context.Background(), append([]string{"lexidict"}, args...))
	return out.String(), err
}

// importTestStore writes the test dump and cooccurrence records to a fresh
// store and returns its path.
func importTestStore(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dump := filepath.Join(dir, "dump.jsonl")
	cooc := filepath.Join(dir, "cooc.tsv")
	require.NoError(t, os.WriteFile(dump, []byte(testDump), 0o644))
	require.NoError(t, os.WriteFile(cooc, []byte(testCooc), 0o644))

	db := filepath.Join(dir, "dict")
	out, err := run(t, nil, "--db", db, "import", "--input", dump, "--cooc", cooc, "--pool-size", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 5 entries from 5 lines (0 skipped)")
	assert.Contains(t, out, "Imported 3 cooccurrence records")
	return db
}

func TestCommands(t *testing.T) {
	db := importTestStore(t)

	t.Run("search list view", func(t *testing.T) {
		out, err := run(t, nil, "--db", db, "search", "--view", "list", "mind")
		require.NoError(t, err)
		assert.Equal(t, "mind: 心, 精神\n", out)
	})

	t.Run("search reverse as json", func(t *testing.T) {
		out, err := run(t, nil, "--db", db, "search", "--json", "--view", "list", "心")
		require.NoError(t, err)

		var res result.Result
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, "reverse", res.Index)
		require.Len(t, res.Items, 2)
		assert.Equal(t, "mind", res.Items[0].Word)
		assert.Equal(t, "heart", res.Items[1].Word)
	})

	t.Run("search with invalid mode", func(t *testing.T) {
		_, err := run(t, nil, "--db", db, "search", "--search", "fuzzy", "mind")
		require.Error(t, err)
	})

	t.Run("search without query", func(t *testing.T) {
		_, err := run(t, nil, "--db", db, "search")
		require.Error(t, err)
	})

	t.Run("grade", func(t *testing.T) {
		out, err := run(t, nil, "--db", db, "grade", "--view", "list", "0")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.Equal(t, "in: 中に", lines[0])
	})

	t.Run("annotate from stdin", func(t *testing.T) {
		doc := "==== [META] ====\n[title]: Notes\n==== [PAGE] ====\nKeep it in mind.\n"
		out, err := run(t, strings.NewReader(doc), "--db", db, "annotate")
		require.NoError(t, err)
		assert.Contains(t, out, "# Notes")
		assert.Contains(t, out, "in mind{心に留めて}")
	})

	t.Run("related", func(t *testing.T) {
		out, err := run(t, nil, "--db", db, "related", "--limit", "2", "mind")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.True(t, strings.HasPrefix(lines[0], "mind\t"))
	})

	t.Run("features", func(t *testing.T) {
		out, err := run(t, nil, "--db", db, "features")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 5)
		assert.True(t, strings.HasPrefix(lines[0], "in\tin\t1.000"))
	})

	t.Run("serve", func(t *testing.T) {
		var in bytes.Buffer
		require.NoError(t, msgpack.NewEncoder(&in).Encode(&server.Request{ID: "1", Query: "mind", View: "list"}))

		out, err := run(t, &in, "--db", db, "serve")
		require.NoError(t, err)

		dec := msgpack.NewDecoder(strings.NewReader(out))
		dec.SetCustomStructTag("json")
		var resp server.Response
		require.NoError(t, dec.Decode(&resp))
		assert.Equal(t, "1", resp.ID)
		assert.Empty(t, resp.Error)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "mind", resp.Items[0].Word)
	})
}

func TestImportRequiresInput(t *testing.T) {
	_, err := run(t, nil, "--db", filepath.Join(t.TempDir(), "dict"), "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "lexidict.toml")

	out, err := run(t, nil, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = run(t, nil, "config", "init", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = run(t, nil, "config", "init", "--force", path)
	require.NoError(t, err)

	t.Run("used by later commands", func(t *testing.T) {
		_, err := run(t, nil, "--config", path, "--log-level", "error", "config", "init", "--force", path)
		require.NoError(t, err)
	})
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				for _, format := range []string{"text", "json"} {
					logger, err := newLogger(io.Discard, level, format)
					require.NoError(t, err)
					assert.NotNil(t, logger)
				}
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			_, err := newLogger(io.Discard, level, "text")
			require.NoError(t, err, level)
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		_, err := newLogger(io.Discard, "verbose", "text")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("invalid log format returns error", func(t *testing.T) {
		_, err := newLogger(io.Discard, "info", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log format")
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "warn", "json")
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown", "key", "value")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), `"key":"value"`)
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := newLogger(&buf, "info", "text")
		require.NoError(t, err)

		logger.Debug("hidden")
		logger.Info("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("invalid flag fails before any command", func(t *testing.T) {
		app := &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "config"},
				&cli.StringFlag{Name: "db"},
				&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info"},
				&cli.StringFlag{Name: "log-format", Value: "text"},
			},
			Before: setup,
			Action: func(c *cli.Context) error {
				return nil
			},
		}

		require.Error(t, app.Run([]string{"test", "-l", "loud"}))
		require.NoError(t, app.Run([]string{"test", "-l", "warn", "--log-format", "json"}))
	})
}

func TestMain(m *testing.M) {
	// Keep the default logger quiet in case any tests rely on it
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}
