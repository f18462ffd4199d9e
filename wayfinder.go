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

package wayfinder

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/ai/openai"
	"github.com/poiesic/wayfinder/config"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/dialogue"
	"github.com/poiesic/wayfinder/index"
	"github.com/poiesic/wayfinder/indexer"
	"github.com/poiesic/wayfinder/place"
	"github.com/poiesic/wayfinder/places"
	"github.com/poiesic/wayfinder/recommend"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/resolver"
	"github.com/poiesic/wayfinder/retrieval"
	"github.com/poiesic/wayfinder/storage"
	"github.com/poiesic/wayfinder/storage/badger"
)

// ErrPlacesRequired is returned when a dialogue is requested without a
// places service or a Google API key to build one.
var ErrPlacesRequired = errors.New("places service required: set google.api_key")

// Service wires the stores, AI provider and places client together and
// builds the dialogue and recommendation components on top of them.
type Service struct {
	config   *config.Config
	stores   *badger.Stores
	provider ai.AIProvider
	places   places.Service
	logger   *slog.Logger

	mu      sync.Mutex
	indexes *index.Set
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	stores   *badger.Stores
	provider ai.AIProvider
	places   places.Service
	logger   *slog.Logger
}

// WithStores uses already opened stores instead of opening config.DBPath.
// The service takes ownership and closes them.
func WithStores(stores *badger.Stores) ServiceOption {
	return func(o *serviceOptions) {
		o.stores = stores
	}
}

// WithProvider replaces the OpenAI-compatible provider built from config.
func WithProvider(provider ai.AIProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.provider = provider
	}
}

// WithPlaces replaces the Google client built from config.
func WithPlaces(svc places.Service) ServiceOption {
	return func(o *serviceOptions) {
		o.places = svc
	}
}

// WithLogger sets the logger handed to every component.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// NewService validates cfg and opens the service. A nil cfg uses
// config.DefaultConfig().
func NewService(cfg *config.Config, opts ...ServiceOption) (*Service, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	stores := options.stores
	if stores == nil {
		var err error
		stores, err = badger.OpenStores(cfg.DBPath)
		if err != nil {
			return nil, err
		}
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = openai.NewProvider(ai.NewConfig(cfg.AI.AIOptions()...))
		if err != nil {
			stores.Close()
			return nil, err
		}
	}

	svc := options.places
	if svc == nil && cfg.Google.APIKey != "" {
		client, err := places.NewGoogleClient(cfg.Google.APIKey,
			places.WithTimeout(cfg.Google.Timeout),
			places.WithRateLimit(cfg.Google.RPS, cfg.Google.Burst),
			places.WithBias(core.Coordinate{Lat: cfg.Google.BiasLat, Lng: cfg.Google.BiasLng}, cfg.Google.BiasRadiusM),
			places.WithLogger(options.logger.With("component", "google-places")),
		)
		if err != nil {
			provider.Close()
			stores.Close()
			return nil, err
		}
		svc = client
	}

	return &Service{
		config:   cfg,
		stores:   stores,
		provider: provider,
		places:   svc,
		logger:   options.logger,
	}, nil
}

// Close releases the provider and the stores.
func (s *Service) Close() error {
	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}
	if err := s.stores.Close(); err != nil {
		s.logger.Error("error closing stores", "err", err)
		return err
	}
	return nil
}

// Config returns the validated configuration.
func (s *Service) Config() *config.Config {
	return s.config
}

// LocationStores returns the alias, anchor cache and geo center stores.
func (s *Service) LocationStores() storage.LocationStores {
	return s.stores.LocationStores()
}

// POIRepository returns the POI store.
func (s *Service) POIRepository() storage.POIRepository {
	return s.stores.POIRepository()
}

// Indexes returns the in-memory indexes, loading them on first use.
func (s *Service) Indexes(ctx context.Context) (*index.Set, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexes != nil {
		return s.indexes, nil
	}
	set, err := index.Load(ctx, s.stores.POIRepository(), s.logger)
	if err != nil {
		return nil, err
	}
	s.indexes = set
	return set, nil
}

// ReloadIndexes drops the loaded indexes so the next use rereads the POI
// store.
func (s *Service) ReloadIndexes() {
	s.mu.Lock()
	s.indexes = nil
	s.mu.Unlock()
}

// NewIndexer creates an indexer writing progress to w. The caller must
// call Release on it.
func (s *Service) NewIndexer(w io.Writer) (*indexer.Indexer, error) {
	cfg := s.config.Indexer
	return indexer.NewIndexer(s.stores.POIRepository(), s.provider.Embedder(), &cfg, w,
		indexer.WithLogger(s.logger))
}

// NewOrchestrator builds a dialogue orchestrator over the loaded indexes.
func (s *Service) NewOrchestrator(ctx context.Context, opts ...dialogue.Option) (*dialogue.Orchestrator, error) {
	if s.places == nil {
		return nil, ErrPlacesRequired
	}
	indexes, err := s.Indexes(ctx)
	if err != nil {
		return nil, err
	}

	classifier := s.provider.Classifier()
	extractor, err := place.NewExtractor(classifier, place.WithExtractorLogger(s.logger))
	if err != nil {
		return nil, err
	}
	corrector, err := place.NewCorrector(classifier, s.places, s.stores.LocationStores(), place.WithCorrectorLogger(s.logger))
	if err != nil {
		return nil, err
	}
	res, err := resolver.NewResolver(s.stores.LocationStores(), s.places, resolver.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	retriever, err := retrieval.NewRetriever(indexes, s.provider.Embedder(), retrieval.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	reranker, err := rerank.NewReranker(classifier, rerank.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}

	base := []dialogue.Option{
		dialogue.WithConfig(s.config.Dialogue),
		dialogue.WithLogger(s.logger),
	}
	return dialogue.NewOrchestrator(dialogue.Dependencies{
		Classifier: classifier,
		Answerer:   s.provider.Answerer(),
		Extractor:  extractor,
		Corrector:  corrector,
		Resolver:   res,
		Retriever:  retriever,
		Reranker:   reranker,
	}, append(base, opts...)...)
}

// NewRecommender builds the recommendation service with the configured
// scoring weights. The caller must call Release on it.
func (s *Service) NewRecommender(ctx context.Context, opts ...recommend.Option) (*recommend.Service, error) {
	indexes, err := s.Indexes(ctx)
	if err != nil {
		return nil, err
	}

	base := []recommend.Option{recommend.WithLogger(s.logger)}
	for _, c := range core.Categories {
		base = append(base, recommend.WithScoringConfig(c, s.config.Scoring.For(c)))
	}
	if s.config.Recommend.PoolSize > 0 {
		base = append(base, recommend.WithPoolSize(s.config.Recommend.PoolSize))
	}
	if s.config.Recommend.Rerank {
		reranker, err := rerank.NewReranker(s.provider.Classifier(), rerank.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		base = append(base, recommend.WithReranker(reranker))
	}
	return recommend.NewService(indexes, s.provider.Embedder(), append(base, opts...)...)
}

// ImportLocations seeds the location stores from the JSON files in dir.
func (s *Service) ImportLocations(ctx context.Context, dir string) (storage.TransferStats, error) {
	return storage.ImportLocations(ctx, s.stores.LocationStores(), dir)
}

// ExportLocations writes the location stores as JSON files into dir.
func (s *Service) ExportLocations(ctx context.Context, dir string) (storage.TransferStats, error) {
	return storage.ExportLocations(ctx, s.stores.LocationStores(), dir)
}
