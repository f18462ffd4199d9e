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

package resolver

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/places"
	"github.com/poiesic/wayfinder/storage"
)

// DefaultAutocompleteLimit is the number of predictions requested per lookup.
const DefaultAutocompleteLimit = 5

// Result is the outcome of resolving one mention.
//
// At most one of Anchor and AdminTerm is set. Failed is true only when a
// mention was present and neither could be produced.
type Result struct {
	Anchor    *core.Anchor
	AdminTerm string
	// Place is the alias-resolved mention text.
	Place string
	// Input is the mention text before alias resolution.
	Input        string
	ResolvedName string
	Failed       bool
	Trace        Trace
}

// Trace records the intermediate steps of a resolution for debugging.
type Trace struct {
	Tokens      Tokens              `json:"tokens"`
	Predictions []places.Prediction `json:"autocomplete_candidates,omitempty"`
	Ranked      []ScoredPrediction  `json:"ranked_candidates,omitempty"`
	Attempts    []GeocodeAttempt    `json:"geocode_attempts,omitempty"`
	Selected    string              `json:"selected,omitempty"`
}

// GeocodeAttempt is one geocoding call made during live resolution.
type GeocodeAttempt struct {
	PlaceID  string          `json:"place_id"`
	Geocode  *places.Geocode `json:"geocode,omitempty"`
	InBounds bool            `json:"in_bounds"`
}

// Resolver resolves place mentions to anchors.
type Resolver struct {
	stores            storage.LocationStores
	places            places.Service
	bounds            core.Bounds
	autocompleteLimit int
	group             singleflight.Group
	logger            *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "resolver")
		return nil
	}
}

// WithBounds sets the box live geocoding results must fall into.
// Default is core.SeoulBounds.
func WithBounds(b core.Bounds) Option {
	return func(r *Resolver) error {
		r.bounds = b
		return nil
	}
}

// WithAutocompleteLimit sets the number of predictions requested.
// Default is DefaultAutocompleteLimit.
func WithAutocompleteLimit(n int) Option {
	return func(r *Resolver) error {
		if n > 0 {
			r.autocompleteLimit = n
		}
		return nil
	}
}

// NewResolver creates a new resolver.
func NewResolver(stores storage.LocationStores, svc places.Service, opts ...Option) (*Resolver, error) {
	if stores == nil {
		return nil, ErrStoresRequired
	}
	if svc == nil {
		return nil, ErrPlacesRequired
	}
	r := &Resolver{
		stores:            stores,
		places:            svc,
		bounds:            core.SeoulBounds,
		autocompleteLimit: DefaultAutocompleteLimit,
		logger:            slog.Default().With("component", "resolver"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Resolve resolves m. query is the user's full text, used to detect
// intersection hints. An empty mention yields an empty Result.
func (r *Resolver) Resolve(ctx context.Context, m core.PlaceMention, query string) Result {
	raw := m.Text()
	if raw == "" {
		return Result{}
	}

	canonical := r.canonicalize(ctx, raw)
	tokens := BuildTokens(m, raw, canonical)
	res := Result{Place: canonical, Input: raw, Trace: Trace{Tokens: tokens}}

	if anchor := r.fromGeoCenters(ctx, canonical); anchor != nil {
		res.Anchor = anchor
		res.ResolvedName = canonical
		r.logger.Debug("resolved from geo centers", "place", canonical)
		return res
	}

	if anchor, name := r.fromCache(ctx, canonical, tokens); anchor != nil {
		res.Anchor = anchor
		res.ResolvedName = name
		r.logger.Debug("resolved from anchor cache", "place", canonical)
		return res
	}

	intersection := core.ContainsAny(query, intersectionHints)
	key := strings.Join([]string{
		core.NormalizeText(canonical),
		strings.Join(tokens.Match, ","),
		strings.Join(tokens.Region, ","),
		strconv.FormatBool(intersection),
	}, "|")
	// The shared lookup outlives any single caller so the cache write completes.
	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(key, func() (any, error) {
		return r.live(detached, canonical, tokens, query), nil
	})

	var lr liveResult
	select {
	case out := <-ch:
		lr = out.Val.(liveResult)
	case <-ctx.Done():
		r.logger.Debug("resolution abandoned", "place", canonical, "err", ctx.Err())
		res.Failed = true
		res.ResolvedName = canonical
		return res
	}

	res.Trace = lr.trace
	if lr.geo != nil {
		res.Anchor = &core.Anchor{
			Centers:        []core.Coordinate{{Lat: lr.geo.Lat, Lng: lr.geo.Lng}},
			RadiusByIntent: core.DefaultRadii(),
			Source:         core.SourceAutocomplete,
		}
		res.ResolvedName = lr.name
		return res
	}

	res.ResolvedName = canonical
	if core.HasAdminSuffix(raw) {
		fields := strings.Fields(canonical)
		res.AdminTerm = fields[len(fields)-1]
		r.logger.Debug("falling back to admin term", "place", canonical, "admin_term", res.AdminTerm)
		return res
	}
	res.Failed = true
	r.logger.Debug("anchor resolution failed", "place", canonical)
	return res
}

// canonicalize maps raw through the keyword aliases, and also through the
// administrative aliases when raw ends in an administrative suffix.
func (r *Resolver) canonicalize(ctx context.Context, raw string) string {
	maps := []map[string][]string{r.aliases(ctx, storage.AliasKeyword)}
	if core.HasAdminSuffix(raw) {
		maps = append(maps, r.aliases(ctx, storage.AliasAdmin))
	}
	return storage.BuildAliasIndex(maps...).Resolve(raw)
}

func (r *Resolver) aliases(ctx context.Context, kind storage.AliasKind) map[string][]string {
	data, err := r.stores.Aliases(ctx, kind)
	if err != nil {
		r.logger.Warn("failed to load aliases", "kind", kind, "err", err)
		return nil
	}
	return data
}

func (r *Resolver) fromGeoCenters(ctx context.Context, canonical string) *core.Anchor {
	entry, err := r.stores.GetGeoCenter(ctx, canonical)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("geo center lookup failed", "place", canonical, "err", err)
		}
		return nil
	}
	if len(entry.Centers) == 0 {
		return nil
	}
	anchor := &core.Anchor{
		Centers:        append([]core.Coordinate(nil), entry.Centers...),
		RadiusByIntent: entry.RadiusByIntent.Clone(),
		Source:         core.SourceGeoCenters,
	}
	if err := core.ValidateAnchor(anchor); err != nil {
		r.logger.Warn("ignoring invalid geo center", "place", canonical, "err", err)
		return nil
	}
	return anchor
}

// fromCache returns the cached anchor for canonical when its stored text
// agrees with the mention's tokens.
func (r *Resolver) fromCache(ctx context.Context, canonical string, tokens Tokens) (*core.Anchor, string) {
	entry, err := r.stores.GetAnchor(ctx, core.NormalizeText(canonical))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			r.logger.Warn("anchor cache lookup failed", "place", canonical, "err", err)
		}
		return nil, ""
	}
	if !CacheMatches(entry, tokens) {
		r.logger.Debug("rejecting mismatched cache entry", "place", canonical, "resolved_name", entry.ResolvedName)
		return nil, ""
	}

	name := entry.ResolvedName
	if name == "" || len(tokens.Station) > 0 {
		name = canonical
	}
	return &core.Anchor{
		Centers:        []core.Coordinate{{Lat: entry.Lat, Lng: entry.Lng}},
		RadiusByIntent: entry.RadiusByIntent.Clone(),
		Source:         core.SourceAnchorCache,
	}, name
}

// CacheMatches reports whether entry's text overlaps every non-empty
// token set: station tokens, region tokens and match tokens.
func CacheMatches(entry *core.AnchorCacheEntry, tokens Tokens) bool {
	blob := core.NormalizeText(entry.TextBlob())
	for _, set := range [][]string{tokens.Station, tokens.Region, tokens.Match} {
		if len(set) > 0 && !core.ContainsAny(blob, set) {
			return false
		}
	}
	return true
}

type liveResult struct {
	geo   *places.Geocode
	name  string
	trace Trace
}

// live runs autocomplete and geocoding, and caches the first in-bounds hit.
func (r *Resolver) live(ctx context.Context, canonical string, tokens Tokens, query string) liveResult {
	out := liveResult{trace: Trace{Tokens: tokens}}

	preds := r.autocomplete(ctx, canonical, "")
	if len(preds) == 0 {
		preds = r.autocomplete(ctx, canonical, places.TypeFilterRegions)
	}
	out.trace.Predictions = preds
	ranked := rankCandidates(preds, tokens, canonical, query)
	out.trace.Ranked = ranked

	for _, cand := range ranked {
		if cand.PlaceID == "" {
			continue
		}
		geo, err := r.places.GeocodePlaceID(ctx, cand.PlaceID)
		if err != nil {
			r.logger.Warn("geocode failed", "place_id", cand.PlaceID, "err", err)
			continue
		}
		attempt := GeocodeAttempt{PlaceID: cand.PlaceID, Geocode: geo}
		if geo != nil {
			attempt.InBounds = r.bounds.Contains(core.Coordinate{Lat: geo.Lat, Lng: geo.Lng})
		}
		out.trace.Attempts = append(out.trace.Attempts, attempt)
		if !attempt.InBounds {
			continue
		}

		out.geo = geo
		out.trace.Selected = cand.Description
		out.name = cand.Description
		if out.name == "" || len(tokens.Station) > 0 {
			out.name = canonical
		}
		r.cache(ctx, canonical, cand, geo, out.name)
		return out
	}
	return out
}

func (r *Resolver) autocomplete(ctx context.Context, input, filter string) []places.Prediction {
	preds, err := r.places.Autocomplete(ctx, input, r.autocompleteLimit, filter)
	if err != nil {
		r.logger.Warn("autocomplete failed", "input", input, "filter", filter, "err", err)
		return nil
	}
	return preds
}

func (r *Resolver) cache(ctx context.Context, canonical string, cand ScoredPrediction, geo *places.Geocode, name string) {
	entry := &core.AnchorCacheEntry{
		Lat:            geo.Lat,
		Lng:            geo.Lng,
		Address:        geo.Address,
		Query:          canonical,
		ResolvedName:   name,
		PlaceID:        cand.PlaceID,
		RadiusByIntent: core.DefaultRadii(),
		Source:         core.SourceAutocomplete,
	}
	if err := r.stores.PutAnchor(ctx, core.NormalizeText(canonical), entry); err != nil {
		r.logger.Warn("failed to cache anchor", "place", canonical, "err", err)
	}
}
