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

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/poiesic/lexidict/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexidict",
		Usage: "Bilingual dictionary lookup and document annotation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides store.path)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json)",
				Value: "text",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Look up a word or phrase",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags:     append(lookupFlags(), modeFlags()...),
			},
			{
				Name:      "grade",
				Usage:     "List one frequency tier of headwords",
				ArgsUsage: "<tier>",
				Action:    gradeCommand,
				Flags:     lookupFlags(),
			},
			{
				Name:      "annotate",
				Usage:     "Annotate a marked-up document with glosses",
				ArgsUsage: "[file]",
				Action:    annotateCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the annotated document as JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Indent JSON output",
					},
				},
			},
			{
				Name:      "related",
				Usage:     "Rank words that co-occur with the given text",
				ArgsUsage: "<text>",
				Action:    relatedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of related words to print",
						Value: 20,
					},
				},
			},
			{
				Name:   "import",
				Usage:  "Build a dictionary store from a JSON-lines dump",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "JSON-lines dictionary dump (- for stdin)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "cooc",
						Usage: "Tab-separated cooccurrence records",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of lines decoded per worker task",
						Value: 256,
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of decoding workers (0 for half the CPUs)",
					},
				},
			},
			{
				Name:   "features",
				Usage:  "Print a weighted feature vector for every headword",
				Action: featuresCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N headwords",
						Value: 1000,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Answer msgpack lookup requests on stdin/stdout",
				Action: serveCommand,
			},
			{
				Name:  "config",
				Usage: "Manage configuration files",
				Subcommands: []*cli.Command{
					{
						Name:      "init",
						Usage:     "Write the default configuration",
						ArgsUsage: "[path]",
						Action:    configInitCommand,
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite an existing file",
							},
						},
					},
				},
			},
		},
	}
}

func lookupFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "view",
			Usage: "Result view (auto, full, simple, list)",
			Value: "auto",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Print results as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Indent JSON output",
		},
	}
}

func modeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "index",
			Aliases: []string{"x"},
			Usage:   "Index (auto, normal, reverse, inflection, grade, annot)",
			Value:   "auto",
		},
		&cli.StringFlag{
			Name:    "search",
			Aliases: []string{"s"},
			Usage:   "Search mode (auto, exact, prefix, suffix, contain, word, edit, related)",
			Value:   "auto",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of headwords (0 for the configured default)",
		},
	}
}

// setup loads the configuration and installs the default logger. Flags
// given on the command line win over the config file and environment.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("db") {
		cfg.Store.Path = c.String("db")
	}

	level, format := cfg.Log.Level, cfg.Log.Format
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}
	logger, err := newLogger(c.App.ErrWriter, level, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// configFrom returns the configuration loaded by setup.
func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func newLogger(w io.Writer, levelStr, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	// Get log level and normalize to lowercase
	levelStr = strings.ToLower(levelStr)

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	switch strings.ToLower(format) {
	case "text", "":
		// charmbracelet levels share slog's numbering
		handler := charmlog.NewWithOptions(w, charmlog.Options{
			Level:           charmlog.Level(level),
			ReportTimestamp: true,
			Prefix:          "lexidict",
		})
		return slog.New(handler), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("invalid log format %q: must be one of text, json", format)
	}
}
