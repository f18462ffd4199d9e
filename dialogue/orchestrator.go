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

package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/place"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/resolver"
	"github.com/poiesic/wayfinder/retrieval"
)

const tracerName = "github.com/poiesic/wayfinder/dialogue"

// MsgEmptyQuery is streamed for a turn without query text.
const MsgEmptyQuery = "무엇을 도와드릴까요? 찾고 싶은 장소나 지역을 알려주세요."

// ErrInvalidConfig is returned for non-positive turn sizes.
var ErrInvalidConfig = errors.New("invalid dialogue configuration")

// Config holds the per-turn candidate counts.
type Config struct {
	// RetrieveK is the number of candidates retrieved before reranking.
	RetrieveK int `koanf:"retrieve_k" yaml:"retrieve_k"`
	// RerankK is the default answer size.
	RerankK int `koanf:"rerank_k" yaml:"rerank_k"`
	// GeneralK is the number of candidates given to a general answer.
	GeneralK int `koanf:"general_k" yaml:"general_k"`
}

// DefaultConfig returns the default turn sizes.
func DefaultConfig() Config {
	return Config{RetrieveK: 20, RerankK: 5, GeneralK: 5}
}

// Validate checks that every count is positive.
func (c Config) Validate() error {
	if c.RetrieveK <= 0 || c.RerankK <= 0 || c.GeneralK <= 0 {
		return fmt.Errorf("%w: retrieve_k=%d rerank_k=%d general_k=%d",
			ErrInvalidConfig, c.RetrieveK, c.RerankK, c.GeneralK)
	}
	return nil
}

// PlaceExtractor finds the place mentioned in a query.
type PlaceExtractor interface {
	Extract(ctx context.Context, query string) (core.PlaceMention, bool)
}

// PlaceCorrector fixes misspelled place mentions.
type PlaceCorrector interface {
	Correct(ctx context.Context, query string, m core.PlaceMention) place.Correction
}

// AnchorResolver turns a mention into an anchor or admin term.
type AnchorResolver interface {
	Resolve(ctx context.Context, m core.PlaceMention, query string) resolver.Result
}

// Retriever ranks candidates of one category.
type Retriever interface {
	RetrieveWithMonitor(ctx context.Context, req retrieval.Request, monitor retrieval.Monitor) (*retrieval.Result, error)
}

// Reranker selects the final shortlist.
type Reranker interface {
	Rerank(ctx context.Context, req rerank.Request) rerank.Result
}

// Dependencies are the collaborators of an Orchestrator.
type Dependencies struct {
	// Classifier handles query normalization and mode classification.
	Classifier ai.ChatModel
	// Answerer streams the user-facing replies.
	Answerer  ai.ChatModel
	Extractor PlaceExtractor
	Corrector PlaceCorrector
	Resolver  AnchorResolver
	Retriever Retriever
	Reranker  Reranker
}

func (d Dependencies) validate() error {
	if d.Classifier == nil || d.Answerer == nil {
		return ErrModelRequired
	}
	missing := []string{}
	if d.Extractor == nil {
		missing = append(missing, "extractor")
	}
	if d.Corrector == nil {
		missing = append(missing, "corrector")
	}
	if d.Resolver == nil {
		missing = append(missing, "resolver")
	}
	if d.Retriever == nil {
		missing = append(missing, "retriever")
	}
	if d.Reranker == nil {
		missing = append(missing, "reranker")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrDependencyRequired, strings.Join(missing, ", "))
	}
	return nil
}

// Orchestrator runs turns through the dialogue graph. It holds no per-turn
// state and is safe for concurrent use.
type Orchestrator struct {
	deps       Dependencies
	normalizer *Normalizer
	modes      *ModeDetector
	config     Config
	tracer     trace.Tracer
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithConfig sets the turn sizes.
func WithConfig(config Config) Option {
	return func(o *Orchestrator) error {
		if err := config.Validate(); err != nil {
			return err
		}
		o.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger.With("component", "dialogue")
		return nil
	}
}

// WithTracer sets the tracer used for turn and node spans.
// Default is the global otel tracer provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) error {
		if tracer != nil {
			o.tracer = tracer
		}
		return nil
	}
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(deps Dependencies, opts ...Option) (*Orchestrator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		deps:   deps,
		config: DefaultConfig(),
		tracer: otel.Tracer(tracerName),
		logger: slog.Default().With("component", "dialogue"),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	o.normalizer = NewNormalizer(deps.Classifier, o.logger)
	o.modes = NewModeDetector(deps.Classifier, o.logger)
	return o, nil
}

// Stream runs one turn and returns its events. The channel is closed after
// the done event, or early if ctx is canceled.
func (o *Orchestrator) Stream(ctx context.Context, in TurnInput) <-chan Event {
	turnID := uuid.NewString()
	em, out := newEmitter(ctx, turnID)
	go func() {
		defer em.close()
		o.runTurn(ctx, turnID, in, em)
	}()
	return out
}

// Outcome is the collected result of a turn.
type Outcome struct {
	TurnID string
	Answer string
	// Superseded reports that Answer replaced partially streamed tokens.
	Superseded bool
	Candidates []core.Candidate
	Context    *Context
	Nodes      []string
	Debug      []any
}

// Run runs one turn and waits for its answer. It drains the same event
// stream as Stream. The final event's text is the answer, including a
// superseding fallback; when no final event arrives the streamed tokens form
// the answer.
func (o *Orchestrator) Run(ctx context.Context, in TurnInput) (*Outcome, error) {
	if strings.TrimSpace(in.Query) == "" {
		return nil, ErrEmptyQuery
	}

	outcome := &Outcome{}
	var tokens strings.Builder
	for ev := range o.Stream(ctx, in) {
		outcome.TurnID = ev.TurnID
		switch ev.Type {
		case EventNode:
			outcome.Nodes = append(outcome.Nodes, ev.Node)
		case EventToken:
			tokens.WriteString(ev.Token)
		case EventDebug:
			outcome.Debug = append(outcome.Debug, ev.Debug)
		case EventFinal:
			outcome.Answer = ev.Final
			outcome.Superseded = ev.Superseded
			outcome.Candidates = ev.Candidates
		case EventContext:
			outcome.Context = ev.Context
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if outcome.Answer == "" {
		outcome.Answer = tokens.String()
	}
	if outcome.Answer == "" {
		return nil, ErrNoAnswer
	}
	return outcome, nil
}

func (o *Orchestrator) runTurn(ctx context.Context, turnID string, in TurnInput, em *emitter) {
	ctx, span := o.tracer.Start(ctx, "dialogue.turn", trace.WithAttributes(
		attribute.String("turn.id", turnID),
		attribute.Int("turn.top_k", in.TopK),
		attribute.Bool("turn.has_context", in.Context != nil),
	))
	defer span.End()

	s := newState(turnID, in, o.config.RerankK)
	logger := o.logger.With("turn_id", turnID)

	if s.Query == "" {
		em.emit(Event{Type: EventFinal, Final: MsgEmptyQuery})
		em.emit(Event{Type: EventContext, Context: BuildContext(s)})
		em.emit(Event{Type: EventDone})
		return
	}

	node := NodeRoute
	for node != NodeEnd {
		if err := ctx.Err(); err != nil {
			logger.Debug("turn abandoned", "node", node, "err", err)
			span.SetStatus(codes.Error, "canceled")
			span.RecordError(err)
			return
		}
		em.emit(Event{Type: EventNode, Node: node.String()})
		s.Merge(o.runNode(ctx, node, *s, em, logger))
		node = Next(node, s)
	}

	span.SetAttributes(
		attribute.String("turn.intent", string(s.Intent)),
		attribute.String("turn.mode", string(s.Mode)),
		attribute.Int("turn.candidates", len(s.Candidates)),
		attribute.Bool("turn.anchor", s.Anchor != nil),
	)
	em.emit(Event{Type: EventDone})
}

func (o *Orchestrator) runNode(ctx context.Context, node Node, s State, em *emitter, logger *slog.Logger) Patch {
	ctx, span := o.tracer.Start(ctx, "dialogue."+node.String())
	defer span.End()

	logger.Debug("entering node", "node", node)
	switch node {
	case NodeRoute:
		return o.route(s)
	case NodeNormalizeQuery:
		return o.normalizeQuery(ctx, s)
	case NodeExtractPlace:
		return o.extractPlace(ctx, s)
	case NodeCorrectPlace:
		return o.correctPlace(ctx, s, em)
	case NodeExpandRadius:
		return o.expandRadius(s)
	case NodeResolveAnchor:
		return o.resolveAnchor(ctx, s, em)
	case NodeRetrieve:
		return o.retrieve(ctx, s, em, logger)
	case NodeApplyLocationFilter:
		return o.applyLocationFilter(s)
	case NodeRerank:
		return o.rerank(ctx, s, em)
	case NodeAnswer:
		return o.answer(ctx, s, em, logger)
	case NodeGeneralAnswer:
		return o.generalAnswer(ctx, s, em, logger)
	default:
		return nil
	}
}
