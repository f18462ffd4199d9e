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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/wayfinder"
	"github.com/poiesic/wayfinder/config"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/dialogue"
	"github.com/poiesic/wayfinder/recommend"
)

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}
	return cfg, nil
}

func openService(c *cli.Context) (*wayfinder.Service, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	svc, err := wayfinder.NewService(cfg, wayfinder.WithLogger(slog.Default()))
	if err != nil {
		return nil, fmt.Errorf("failed to open service: %w", err)
	}
	return svc, nil
}

func parseCategory(s string) (core.Category, error) {
	if s == "" {
		return "", nil
	}
	c := core.ParseCategory(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", core.ErrInvalidCategory, s)
	}
	return c, nil
}

func chatCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	mode, err := parseCategory(c.String("mode"))
	if err != nil {
		return err
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	orch, err := svc.NewOrchestrator(ctx)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	template := dialogue.TurnInput{
		Mode:  mode,
		TopK:  c.Int("top-k"),
		Debug: c.Bool("debug"),
	}
	r := renderer{w: os.Stdout, json: c.Bool("json")}

	if q := c.String("query"); q != "" {
		in := template
		in.Query = q
		_, err := r.render(orch.Stream(ctx, in))
		return err
	}
	return chatLoop(ctx, orch, template, os.Stdin, r)
}

// chatLoop runs one turn per input line, carrying the context from each
// turn into the next.
func chatLoop(ctx context.Context, orch *dialogue.Orchestrator, template dialogue.TurnInput, in io.Reader, r renderer) error {
	scanner := bufio.NewScanner(in)
	var turnCtx *dialogue.Context
	for {
		if !r.json {
			fmt.Fprint(r.w, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" || line == "/exit" {
			return nil
		}

		turn := template
		turn.Query = line
		turn.Context = turnCtx
		next, err := r.render(orch.Stream(ctx, turn))
		if err != nil {
			return err
		}
		if next != nil {
			turnCtx = next
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// renderer prints a turn's events as text or JSON lines.
type renderer struct {
	w    io.Writer
	json bool
}

// render drains events and returns the context the turn produced.
func (r renderer) render(events <-chan dialogue.Event) (*dialogue.Context, error) {
	var (
		turnCtx  *dialogue.Context
		streamed bool
		enc      = json.NewEncoder(r.w)
	)
	enc.SetEscapeHTML(false)

	for ev := range events {
		if ev.Type == dialogue.EventContext {
			turnCtx = ev.Context
		}
		if r.json {
			if err := enc.Encode(ev); err != nil {
				return nil, err
			}
			continue
		}

		switch ev.Type {
		case dialogue.EventToken:
			streamed = true
			fmt.Fprint(r.w, ev.Token)
		case dialogue.EventFinal:
			switch {
			case !streamed:
				fmt.Fprint(r.w, ev.Final)
			case ev.Superseded:
				fmt.Fprintf(r.w, "\n\n%s", ev.Final)
			}
			fmt.Fprintln(r.w)
		case dialogue.EventDebug:
			data, err := json.Marshal(ev.Debug)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(r.w, "[debug] %s\n", data)
		}
	}
	return turnCtx, nil
}

func loadProfile(path string) (*recommend.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var profile recommend.Profile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &profile)
	} else {
		err = yaml.Unmarshal(data, &profile)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	return &profile, nil
}

func recommendCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	profile, err := loadProfile(c.String("profile"))
	if err != nil {
		return err
	}
	var categories []core.Category
	for _, s := range c.StringSlice("category") {
		cat, err := parseCategory(s)
		if err != nil {
			return err
		}
		categories = append(categories, cat)
	}

	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	rec, err := svc.NewRecommender(ctx)
	if err != nil {
		return fmt.Errorf("failed to create recommender: %w", err)
	}
	defer rec.Release()

	results, err := rec.Recommend(ctx, profile, recommend.Options{
		K:          c.Int("k"),
		Categories: categories,
		Exclude:    c.Int64Slice("exclude"),
		Rerank:     c.Bool("rerank"),
		Debug:      c.Bool("debug"),
	})
	if err != nil {
		if len(results) == 0 {
			return fmt.Errorf("recommendation failed: %w", err)
		}
		slog.Warn("some categories failed", "err", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func indexCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	category, err := parseCategory(c.String("category"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if c.IsSet("rebuild") {
		cfg.Indexer.Rebuild = c.Bool("rebuild")
	}
	if n := c.Int("batch-size"); n > 0 {
		cfg.Indexer.BatchSize = n
	}
	if n := c.Int("workers"); n > 0 {
		cfg.Indexer.Workers = n
	}

	svc, err := wayfinder.NewService(cfg, wayfinder.WithLogger(slog.Default()))
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer svc.Close()

	ix, err := svc.NewIndexer(os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer ix.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", cfg.DBPath)
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.AI.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.AI.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	stats, err := ix.IndexFile(ctx, category, c.String("file"))
	fmt.Fprintf(os.Stderr, "%s: read %d, invalid %d, ineligible %d, existing %d, changed %d, embedded %d\n",
		stats.Category, stats.Read, stats.Invalid, stats.Ineligible, stats.Existing, stats.Changed, stats.Embedded)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

func locationsImportCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.ImportLocations(c.Context, c.String("dir"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	printTransfer(c.App.Writer, "Imported", stats.AdminAliases, stats.KeywordAliases, stats.Anchors, stats.GeoCenters)
	return nil
}

func locationsExportCommand(c *cli.Context) error {
	svc, err := openService(c)
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.ExportLocations(c.Context, c.String("dir"))
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	printTransfer(c.App.Writer, "Exported", stats.AdminAliases, stats.KeywordAliases, stats.Anchors, stats.GeoCenters)
	return nil
}

func printTransfer(w io.Writer, verb string, admin, keyword, anchors, centers int) {
	fmt.Fprintf(w, "%s %d admin aliases, %d keyword aliases, %d cached anchors, %d geo centers\n",
		verb, admin, keyword, anchors, centers)
}

func configInitCommand(c *cli.Context) error {
	path := c.String("config")
	if !c.Bool("force") {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Wrote %s\n", path)
	return nil
}
