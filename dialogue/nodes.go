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
	"log/slog"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/retrieval"
)

// slimCandidate is the debug view of a candidate.
type slimCandidate struct {
	PlaceID    int64                 `json:"place_id"`
	Category   core.Category         `json:"category"`
	Name       string                `json:"name"`
	Province   string                `json:"province,omitempty"`
	Score      float64               `json:"score"`
	DistanceKM *float64              `json:"distance_km,omitempty"`
	Components *core.ScoreComponents `json:"components,omitempty"`
}

func slim(candidates []core.Candidate) []slimCandidate {
	out := make([]slimCandidate, len(candidates))
	for i, c := range candidates {
		out[i] = slimCandidate{
			PlaceID:    c.PlaceID,
			Category:   c.Category,
			Name:       c.Name(),
			Score:      c.Score,
			DistanceKM: c.DistanceKM,
			Components: c.Components,
		}
		if c.POI != nil {
			out[i].Province = c.POI.Province
		}
	}
	return out
}

func debugEvent(stage string, payload map[string]any) Event {
	payload["stage"] = stage
	return Event{Type: EventDebug, Debug: payload}
}

func (o *Orchestrator) route(s State) Patch {
	intent := DetectIntent(s.Query)
	expand := IsExpandQuery(s.Query)
	return func(st *State) {
		st.Intent = intent
		st.ExpandRequest = expand
	}
}

func (o *Orchestrator) normalizeQuery(ctx context.Context, s State) Patch {
	normalized := o.normalizer.Normalize(ctx, s.Query)
	return func(st *State) {
		st.NormalizedQuery = normalized
	}
}

func (o *Orchestrator) extractPlace(ctx context.Context, s State) Patch {
	m, _ := o.deps.Extractor.Extract(ctx, s.SearchQuery())
	return func(st *State) {
		st.Place = m
	}
}

func (o *Orchestrator) correctPlace(ctx context.Context, s State, em *emitter) Patch {
	if s.Place.IsEmpty() {
		return nil
	}
	c := o.deps.Corrector.Correct(ctx, s.SearchQuery(), s.Place)
	if !c.Changed {
		return nil
	}
	if s.Debug {
		em.emit(debugEvent("correct_place", map[string]any{
			"before":  c.Original,
			"after":   c.Place,
			"learned": c.Learned,
		}))
	}
	original := c.Original
	return func(st *State) {
		st.Place = c.Place
		st.PlaceOriginal = &original
	}
}

func (o *Orchestrator) expandRadius(s State) Patch {
	exp, ok := Expand(s.Context, s.Mode, s.Query)
	if !ok {
		return func(st *State) {
			st.ExpandFailed = true
		}
	}

	prev := s.Context
	return func(st *State) {
		st.Query = exp.Query
		st.NormalizedQuery = exp.Query
		st.Anchor = exp.Anchor
		st.LastRadiusKM = &exp.RadiusKM
		st.Mode = exp.Mode
		st.ResolvedName = prev.LastResolvedName
		st.AdminTerm = prev.LastAdminTerm
		st.Place = core.PlaceMention{}
		if prev.LastPlace != nil {
			st.Place = *prev.LastPlace
		}
		st.ExpandFailed = false
	}
}

func (o *Orchestrator) resolveAnchor(ctx context.Context, s State, em *emitter) Patch {
	if s.Place.IsEmpty() {
		return nil
	}
	res := o.deps.Resolver.Resolve(ctx, s.Place, s.SearchQuery())
	if s.Debug {
		em.emit(debugEvent("resolve_anchor", map[string]any{
			"input":         res.Input,
			"place":         res.Place,
			"resolved_name": res.ResolvedName,
			"anchor":        res.Anchor,
			"admin_term":    res.AdminTerm,
			"failed":        res.Failed,
			"trace":         res.Trace,
		}))
	}
	return func(st *State) {
		st.Anchor = res.Anchor
		st.AdminTerm = res.AdminTerm
		st.AnchorFailed = res.Failed
		st.InputPlace = res.Input
		st.ResolvedName = res.ResolvedName
	}
}

// detectMode resolves the category for query, falling back to tourspot.
func (o *Orchestrator) detectMode(ctx context.Context, hint core.Category, query string) (used, detected core.Category) {
	detected = o.modes.Detect(ctx, hint, query)
	if !detected.Valid() {
		return core.CategoryTourspot, core.CategoryUnknown
	}
	return detected, detected
}

func (o *Orchestrator) retrieve(ctx context.Context, s State, em *emitter, logger *slog.Logger) Patch {
	query := s.SearchQuery()
	mode, detected := o.detectMode(ctx, s.Mode, query)

	var radius *float64
	if s.Anchor != nil && len(s.Anchor.Centers) > 0 {
		r := s.Anchor.RadiusFor(mode)
		radius = &r
	}

	setMode := func(st *State) {
		st.Mode = mode
		st.ModeDetected = detected
		st.ModeUnknown = detected == core.CategoryUnknown
		st.LastRadiusKM = radius
	}

	if s.AnchorFailed {
		logger.Debug("skipping retrieval for unresolved place", "place", s.PlaceName())
		return setMode
	}

	searchText := query
	if IsDateQuery(query) {
		searchText = AugmentForDate(query)
	}

	var (
		monitor retrieval.Monitor
		timings *retrieval.TimingMonitor
	)
	if s.Debug {
		timings = retrieval.NewTimingMonitor()
		monitor = timings
	}
	res, err := o.deps.Retriever.RetrieveWithMonitor(ctx, retrieval.Request{
		Query:     searchText,
		Category:  mode,
		K:         o.config.RetrieveK,
		Anchor:    s.Anchor,
		AdminTerm: s.AdminTerm,
		History:   s.History,
		Debug:     s.Debug,
	}, monitor)
	if err != nil {
		if ctx.Err() == nil {
			logger.Warn("retrieval failed", "category", mode, "err", err)
		}
		res = &retrieval.Result{Reason: retrieval.ReasonEmptyIndex}
	}

	if s.Debug {
		payload := map[string]any{
			"mode":        mode,
			"query":       searchText,
			"prefiltered": res.Prefiltered,
			"reason":      res.Reason,
			"retrievals":  slim(res.Candidates),
		}
		if timings != nil {
			payload["timings_ms"] = timings.Timings()
		}
		em.emit(debugEvent("retrieve", payload))
	}

	return func(st *State) {
		setMode(st)
		st.Candidates = res.Candidates
		st.EmptyReason = res.Reason
	}
}

func (o *Orchestrator) applyLocationFilter(s State) Patch {
	if len(s.Candidates) == 0 {
		return nil
	}
	filtered, reason := retrieval.FilterByLocation(s.Candidates, s.Mode, s.Anchor, s.AdminTerm)
	return func(st *State) {
		st.Candidates = filtered
		if reason != retrieval.ReasonNone {
			st.EmptyReason = reason
		}
	}
}

func (o *Orchestrator) rerank(ctx context.Context, s State, em *emitter) Patch {
	if len(s.Candidates) == 0 {
		return nil
	}
	res := o.deps.Reranker.Rerank(ctx, rerank.Request{
		Query:      s.Query,
		Candidates: s.Candidates,
		K:          s.TopK,
		DateIntent: IsDateQuery(s.Query),
	})
	if s.Debug {
		em.emit(debugEvent("rerank", map[string]any{
			"raw":        res.Raw,
			"selected":   res.Selected,
			"fallback":   res.Fallback,
			"retrievals": slim(res.Candidates),
		}))
	}
	return func(st *State) {
		st.Candidates = res.Candidates
	}
}

func (o *Orchestrator) answer(ctx context.Context, s State, em *emitter, logger *slog.Logger) Patch {
	if msg := clarification(&s); msg != "" {
		o.finish(em, &s, msg, nil)
		return func(st *State) { st.Final = msg }
	}

	if s.Debug {
		em.emit(debugEvent("answer", map[string]any{"retrievals": slim(s.Candidates)}))
	}

	location := defaultAnswerLocation
	if s.Anchor != nil && s.ResolvedName != "" {
		location = s.ResolvedName
	}
	text, streamed, ok := o.streamAnswer(ctx, em, answerMessages(&s), logger)
	if !ok {
		if ctx.Err() != nil {
			return nil
		}
		text = fallbackAnswer(location, s.Candidates)
	}
	o.finishStream(em, &s, text, s.Candidates, streamed && !ok)
	return func(st *State) { st.Final = text }
}

func (o *Orchestrator) generalAnswer(ctx context.Context, s State, em *emitter, logger *slog.Logger) Patch {
	mode, detected := o.detectMode(ctx, s.Mode, s.Query)
	s.Mode = mode
	s.ModeDetected = detected
	s.ModeUnknown = detected == core.CategoryUnknown

	res, err := o.deps.Retriever.RetrieveWithMonitor(ctx, retrieval.Request{
		Query:    s.Query,
		Category: mode,
		K:        o.config.GeneralK,
		History:  s.History,
		Debug:    s.Debug,
	}, nil)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn("general retrieval failed", "category", mode, "err", err)
		res = &retrieval.Result{}
	}
	candidates := res.Candidates

	patch := func(final string) Patch {
		return func(st *State) {
			st.Mode = s.Mode
			st.ModeDetected = s.ModeDetected
			st.ModeUnknown = s.ModeUnknown
			st.Candidates = candidates
			st.Final = final
		}
	}

	if len(candidates) == 0 {
		o.finish(em, &s, MsgGeneralNoResult, nil)
		return patch(MsgGeneralNoResult)
	}
	if s.Debug {
		em.emit(debugEvent("general_answer", map[string]any{"mode": mode, "retrievals": slim(candidates)}))
	}

	text, streamed, ok := o.streamAnswer(ctx, em, generalMessages(&s, candidates), logger)
	if !ok {
		if ctx.Err() != nil {
			return nil
		}
		text = fallbackAnswer(defaultAnswerLocation, candidates)
	}
	o.finishStream(em, &s, text, candidates, streamed && !ok)
	return patch(text)
}

// streamAnswer streams the answerer's reply as token events. ok is false
// when the model failed and a fallback answer is needed; streamed reports
// whether any token reached the consumer before that.
func (o *Orchestrator) streamAnswer(ctx context.Context, em *emitter, msgs []ai.Message, logger *slog.Logger) (text string, streamed, ok bool) {
	text, err := o.deps.Answerer.Stream(ctx, msgs, func(_ context.Context, token string) error {
		if token != "" {
			streamed = true
			em.emit(Event{Type: EventToken, Token: token})
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("answer generation failed", "streamed", streamed, "err", err)
		}
		return "", streamed, false
	}
	if text == "" {
		logger.Warn("answer generation returned nothing", "err", ai.ErrEmptyResponse)
		return "", streamed, false
	}
	return text, streamed, true
}

func (o *Orchestrator) finish(em *emitter, s *State, final string, candidates []core.Candidate) {
	o.finishStream(em, s, final, candidates, false)
}

// finishStream emits the final and context events. superseded marks a final
// answer that replaces tokens already streamed for this turn.
func (o *Orchestrator) finishStream(em *emitter, s *State, final string, candidates []core.Candidate, superseded bool) {
	em.emit(Event{Type: EventFinal, Final: final, Superseded: superseded, Candidates: candidates})
	em.emit(Event{Type: EventContext, Context: BuildContext(s)})
}
