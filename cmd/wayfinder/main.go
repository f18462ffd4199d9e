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
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/wayfinder/config"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "wayfinder",
		Usage: "Conversational place recommendations for Seoul",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML configuration file",
				Value:   config.DefaultPath,
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides db_path)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chat",
				Usage:  "Ask for recommendations; reads turns from stdin unless --query is given",
				Action: chatCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Run a single turn with this query",
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Category hint (tourspot, cafe, restaurant)",
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of places in the answer (1-10)",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Print pipeline debug events",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print every event as a JSON line",
					},
				},
			},
			{
				Name:   "recommend",
				Usage:  "Recommend places for a user profile",
				Action: recommendCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "profile",
						Aliases:  []string{"p"},
						Usage:    "Path to a YAML or JSON user profile",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "k",
						Usage: "Number of places per category",
						Value: 10,
					},
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Limit to these categories (repeatable)",
					},
					&cli.Int64SliceFlag{
						Name:  "exclude",
						Usage: "Place ids to leave out (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "rerank",
						Usage: "Reorder each shortlist with the chat model",
					},
					&cli.BoolFlag{
						Name:  "debug",
						Usage: "Include score components",
					},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed a raw POI dump into the database",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "category",
						Usage:    "Category of the dump (tourspot, cafe, restaurant)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "JSON array or JSONL file of raw POIs",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Re-embed POIs that already have a vector",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of POIs to embed per request (overrides indexer.batch_size)",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent embedding requests (overrides indexer.workers)",
					},
				},
			},
			{
				Name:  "locations",
				Usage: "Move the alias, anchor cache and geo center stores to and from JSON files",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Replace the location stores with the files in a directory",
						Action: locationsImportCommand,
						Flags:  []cli.Flag{dirFlag()},
					},
					{
						Name:   "export",
						Usage:  "Write the location stores into a directory",
						Action: locationsExportCommand,
						Flags:  []cli.Flag{dirFlag()},
					},
				},
			},
			{
				Name:  "config",
				Usage: "Manage the configuration file",
				Subcommands: []*cli.Command{
					{
						Name:   "init",
						Usage:  "Write the effective configuration to the --config path",
						Action: configInitCommand,
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

func dirFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "dir",
		Usage:    "Directory holding the location JSON files",
		Required: true,
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
