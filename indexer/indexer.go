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

package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/time/rate"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/index"
	"github.com/poiesic/wayfinder/storage"
)

// Config holds indexing parameters.
type Config struct {
	// BatchSize is the number of POIs embedded per request.
	BatchSize int `koanf:"batch_size" yaml:"batch_size"`

	// ReportInterval is how often progress is printed, in POIs.
	ReportInterval int `koanf:"report_interval" yaml:"report_interval"`

	// MaxRetries is the number of embedding attempts per batch.
	MaxRetries int `koanf:"max_retries" yaml:"max_retries"`

	// RetryDelay is the base delay for exponential backoff.
	RetryDelay time.Duration `koanf:"retry_delay" yaml:"retry_delay"`

	// Workers is the number of batches embedded concurrently.
	Workers int `koanf:"workers" yaml:"workers"`

	// RequestsPerSecond caps embedding requests. Zero means unlimited.
	RequestsPerSecond float64 `koanf:"requests_per_second" yaml:"requests_per_second"`

	// Rebuild re-embeds POIs that already have a stored vector. Without it
	// only new POIs and POIs whose embedding text changed are embedded.
	Rebuild bool `koanf:"rebuild" yaml:"rebuild"`
}

// DefaultConfig returns the default indexing parameters.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		Workers:        4,
	}
}

// Stats summarizes one indexing run.
type Stats struct {
	Category   core.Category
	Read       int
	Invalid    int
	Ineligible int
	Existing   int
	Changed    int
	Embedded   int
}

// Indexer embeds canonical POIs and writes them to the repository.
type Indexer struct {
	repo     storage.POIRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	pool     *ants.Pool
	limiter  *rate.Limiter
	logger   *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(ix *Indexer) error {
		if logger != nil {
			ix.logger = logger.With("component", "indexer")
		}
		return nil
	}
}

// NewIndexer creates an indexer. progress receives the progress line and
// may be nil.
func NewIndexer(repo storage.POIRepository, embedder ai.Embedder, config *Config, progress io.Writer, opts ...Option) (*Indexer, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	ix := &Indexer{
		repo:     repo,
		embedder: embedder,
		config:   config,
		progress: progress,
		logger:   slog.Default().With("component", "indexer"),
	}
	for _, opt := range opts {
		if err := opt(ix); err != nil {
			return nil, err
		}
	}

	if config.RequestsPerSecond > 0 {
		ix.limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	pool, err := ants.NewPool(max(1, config.Workers))
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}
	ix.pool = pool
	return ix, nil
}

// Release releases the worker pool.
func (ix *Indexer) Release() {
	if ix.pool != nil {
		ix.pool.Release()
	}
}

// IndexFile reads a dump from path and indexes it into category.
func (ix *Indexer) IndexFile(ctx context.Context, category core.Category, path string) (Stats, error) {
	records, err := ReadFile(path)
	if err != nil {
		return Stats{Category: category}, fmt.Errorf("reading %s: %w", path, err)
	}
	return ix.Run(ctx, category, records)
}

// Run canonicalizes records, embeds the ones that need a vector and stores
// them. Batches that were written before a failure stay written.
func (ix *Indexer) Run(ctx context.Context, category core.Category, records []RawPOI) (Stats, error) {
	stats := Stats{Category: category, Read: len(records)}
	if !category.Valid() {
		return stats, fmt.Errorf("%w: %q", core.ErrInvalidCategory, category)
	}

	pois := ix.canonicalize(category, records, &stats)
	pois, err := ix.pending(ctx, category, pois, &stats)
	if err != nil {
		return stats, err
	}

	if len(pois) == 0 {
		fmt.Fprintf(ix.progress, "%s: nothing to embed (%d existing)\n", category, stats.Existing)
		return stats, nil
	}

	fmt.Fprintf(ix.progress, "Indexing %d %s pois (batch size: %d)\n", len(pois), category, ix.config.BatchSize)
	tracker := NewProgressTracker(ix.progress, string(category), len(pois), ix.config.ReportInterval)
	tracker.Start()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		errs     []error
		embedded atomic.Int64
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancel()
	}

	size := max(1, ix.config.BatchSize)
	for start := 0; start < len(pois); start += size {
		batch := pois[start:min(start+size, len(pois))]
		wg.Add(1)
		task := func() {
			defer wg.Done()
			if err := ix.processBatch(ctx, batch); err != nil {
				fail(err)
				return
			}
			embedded.Add(int64(len(batch)))
			tracker.Increment(len(batch))
		}
		if err := ix.pool.Submit(task); err != nil {
			wg.Done()
			fail(fmt.Errorf("submitting batch: %w", err))
			break
		}
	}
	wg.Wait()
	tracker.Finish()

	stats.Embedded = int(embedded.Load())
	if len(errs) > 0 {
		return stats, errors.Join(errs...)
	}

	elapsed := tracker.Elapsed()
	fmt.Fprintf(ix.progress, "Indexing %s complete. Embedded %d pois in %v\n",
		category, stats.Embedded, elapsed.Round(time.Millisecond))
	ix.logger.Info("indexed category", "category", category, "read", stats.Read,
		"invalid", stats.Invalid, "ineligible", stats.Ineligible,
		"existing", stats.Existing, "changed", stats.Changed, "embedded", stats.Embedded)
	return stats, nil
}

func (ix *Indexer) canonicalize(category core.Category, records []RawPOI, stats *Stats) []*core.POI {
	seen := make(map[int64]struct{}, len(records))
	pois := make([]*core.POI, 0, len(records))
	for i := range records {
		poi, err := Canonicalize(category, &records[i])
		if err != nil {
			stats.Invalid++
			ix.logger.Debug("skipping invalid record", "category", category, "index", i, "error", err)
			continue
		}
		if ok, reason := Eligible(poi); !ok {
			stats.Ineligible++
			ix.logger.Debug("skipping ineligible poi", "place_id", poi.ID, "reason", reason)
			continue
		}
		if _, dup := seen[poi.ID]; dup {
			stats.Invalid++
			ix.logger.Debug("skipping duplicate place id", "place_id", poi.ID)
			continue
		}
		seen[poi.ID] = struct{}{}
		pois = append(pois, poi)
	}
	return pois
}

// pending drops POIs that are already stored with a vector for the same
// embedding text unless the configuration asks for a rebuild.
func (ix *Indexer) pending(ctx context.Context, category core.Category, pois []*core.POI, stats *Stats) ([]*core.POI, error) {
	if ix.config.Rebuild || len(pois) == 0 {
		return pois, nil
	}

	ids := make([]int64, len(pois))
	for i, poi := range pois {
		ids[i] = poi.ID
	}
	stored, err := ix.repo.GetPOIs(ctx, category, ids...)
	if err != nil {
		return nil, fmt.Errorf("loading stored pois: %w", err)
	}

	hashes := make(map[int64]uint64, len(stored))
	for _, poi := range stored {
		if len(poi.Vector) > 0 {
			hashes[poi.ID] = poi.TextHash
		}
	}

	out := pois[:0]
	for _, poi := range pois {
		hash, ok := hashes[poi.ID]
		switch {
		case !ok:
			out = append(out, poi)
		case hash != poi.TextHash:
			stats.Changed++
			out = append(out, poi)
		default:
			stats.Existing++
		}
	}
	return out, nil
}

func (ix *Indexer) processBatch(ctx context.Context, batch []*core.POI) error {
	texts := make([]string, len(batch))
	for i, poi := range batch {
		texts[i] = poi.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, ix.logger, func() error {
		if ix.limiter != nil {
			if err := ix.limiter.Wait(ctx); err != nil {
				return err
			}
		}
		var err error
		embeddings, err = ix.embedder.EmbedTexts(ctx, texts)
		return err
	}, ix.config.MaxRetries, ix.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("embedding batch starting at place %d: %w", batch[0].ID, err)
	}
	if len(embeddings) != len(batch) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(embeddings))
	}

	for i, poi := range batch {
		poi.Vector = index.NormalizeVector(embeddings[i])
	}
	if err := ix.repo.PutPOIs(ctx, batch...); err != nil {
		return fmt.Errorf("storing batch: %w", err)
	}
	return nil
}
