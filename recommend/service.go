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

package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/index"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/scoring"
)

const (
	// DefaultK is the number of items returned per category.
	DefaultK = 10

	// DefaultShortlist is the number of scored candidates handed to the
	// reranker when reranking is requested.
	DefaultShortlist = 20
)

// Options tunes one Recommend call.
type Options struct {
	// K is the number of items per category; 0 means DefaultK.
	K int
	// Categories limits the categories served; empty means all.
	Categories []core.Category
	// Exclude lists extra place ids to drop from every category.
	Exclude []int64
	// Rerank reorders each shortlist with the LLM reranker when one is configured.
	Rerank bool
	Debug  bool
}

// CategoryResult is the recommendation list for one category.
type CategoryResult struct {
	Category core.Category    `json:"category"`
	Items    []core.Candidate `json:"items"`
	Dropped  scoring.Dropped  `json:"dropped"`
	Reranked bool             `json:"reranked,omitempty"`
}

// Service recommends POIs from user profiles.
type Service struct {
	embedder ai.Embedder
	scorers  map[core.Category]*scoring.Scorer
	configs  map[core.Category]scoring.Config
	reranker *rerank.Reranker
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithScoringConfig overrides the scorer weights for one category.
func WithScoringConfig(c core.Category, config scoring.Config) Option {
	return func(s *Service) error {
		if err := config.Validate(); err != nil {
			return fmt.Errorf("%s: %w", c, err)
		}
		s.configs[c] = config
		return nil
	}
}

// WithReranker enables profile-based reranking.
func WithReranker(r *rerank.Reranker) Option {
	return func(s *Service) error {
		s.reranker = r
		return nil
	}
}

// WithPoolSize sets the number of categories ranked concurrently.
// Default is the number of categories, capped at runtime.NumCPU().
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "recommend")
		return nil
	}
}

// NewService creates a recommendation service over the loaded indexes.
// Categories without a loaded index are skipped with a warning.
func NewService(indexes *index.Set, embedder ai.Embedder, opts ...Option) (*Service, error) {
	if indexes == nil {
		return nil, ErrIndexesRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(max(1, min(len(core.Categories), runtime.NumCPU())))
	if err != nil {
		return nil, err
	}
	s := &Service{
		embedder: embedder,
		scorers:  make(map[core.Category]*scoring.Scorer, len(core.Categories)),
		configs:  scoring.DefaultConfigs(),
		pool:     pool,
		logger:   slog.Default().With("component", "recommend"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	for _, c := range core.Categories {
		ix, err := indexes.Get(c)
		if err != nil {
			s.logger.Warn("category unavailable", "category", c, "err", err)
			continue
		}
		scorer, err := scoring.NewScorer(ix, scoring.WithConfig(s.configs[c]))
		if err != nil {
			s.Release()
			return nil, err
		}
		s.scorers[c] = scorer
	}
	return s, nil
}

// Recommend ranks each requested category for profile. Categories are
// processed concurrently; results keep the requested category order.
// A category that fails is omitted and its error joined into the returned
// error, alongside the results of the categories that succeeded.
func (s *Service) Recommend(ctx context.Context, profile *Profile, opts Options) ([]CategoryResult, error) {
	if profile == nil {
		profile = &Profile{}
	}
	k := opts.K
	if k <= 0 {
		k = DefaultK
	}
	categories := opts.Categories
	if len(categories) == 0 {
		categories = core.Categories
	}

	results := make([]*CategoryResult, len(categories))
	errs := make([]error, len(categories))
	var wg sync.WaitGroup
	for i, c := range categories {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results[i], errs[i] = s.recommendCategory(ctx, profile, c, k, opts)
		}
		if err := s.pool.Submit(task); err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("%s: %w", c, err)
		}
	}
	wg.Wait()

	out := make([]CategoryResult, 0, len(categories))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, errors.Join(errs...)
}

func (s *Service) recommendCategory(ctx context.Context, profile *Profile, c core.Category, k int, opts Options) (*CategoryResult, error) {
	scorer, ok := s.scorers[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", index.ErrIndexNotLoaded, c)
	}

	text := profile.CategoryText(c)
	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%s: embedding profile: %w", c, err)
	}

	recent := profile.Recent(c)
	rerankWanted := opts.Rerank && s.reranker != nil
	want := k
	if rerankWanted {
		want = max(k, DefaultShortlist)
	}

	scored := scorer.TopK(scoring.Request{
		Vector:  vec,
		K:       want,
		Recent:  recent,
		Origin:  profile.Origin,
		Exclude: append(append([]int64(nil), recent...), opts.Exclude...),
		Debug:   opts.Debug,
	})

	res := &CategoryResult{Category: c, Items: scored.Candidates, Dropped: scored.Dropped}
	if rerankWanted && len(scored.Candidates) > 0 {
		rr := s.reranker.Rerank(ctx, rerank.Request{Profile: text, Candidates: scored.Candidates, K: k})
		res.Items = rr.Candidates
		res.Reranked = !rr.Fallback
	}
	if len(res.Items) > k {
		res.Items = res.Items[:k]
	}
	if res.Items == nil {
		res.Items = []core.Candidate{}
	}
	s.logger.Debug("category ranked", "category", c, "items", len(res.Items), "recent", len(recent), "reranked", res.Reranked)
	return res, nil
}

// Release releases the worker pool.
// The service should not be used after calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}
