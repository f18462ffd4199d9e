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

package retrieval

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/index"
)

// Fixed hybrid weighting.
const (
	DenseWeight   = 0.6
	LexicalWeight = 0.4
)

// maxHistoryNames bounds the visited names appended to the query.
const maxHistoryNames = 5

// Reason explains why a retrieval returned fewer candidates than requested.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonEmptyIndex      Reason = "empty_index"
	ReasonOutsideRadius   Reason = "outside_radius"
	ReasonOutsideArea     Reason = "outside_area"
	ReasonKeywordMismatch Reason = "keyword_mismatch"
)

// Request describes one retrieval call.
type Request struct {
	Query    string
	Category core.Category
	K        int
	// Anchor restricts candidates to its radius for Category.
	Anchor *core.Anchor
	// AdminTerm restricts candidates by address substring when Anchor is nil.
	AdminTerm string
	// History holds recently visited place ids used to enrich the query.
	History []int64
	// Debug annotates candidates with their component scores.
	Debug bool
}

// Result is the ordered retrieval output.
type Result struct {
	Candidates []core.Candidate
	// Reason is set when Candidates is empty because a filter removed everything.
	Reason Reason
	// Prefiltered is the number of index entries that passed the location filter.
	Prefiltered int
	// Groups lists the synonym groups the query matched.
	Groups []SynonymGroup
}

// Retriever ranks POIs of one category with a fixed dense and BM25 blend.
type Retriever struct {
	indexes  *index.Set
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "retrieval")
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(indexes *index.Set, embedder ai.Embedder, opts ...Option) (*Retriever, error) {
	if indexes == nil {
		return nil, ErrIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	r := &Retriever{
		indexes:  indexes,
		embedder: embedder,
		logger:   slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Retrieve returns up to req.K candidates ranked by the hybrid score.
func (r *Retriever) Retrieve(ctx context.Context, req Request) (*Result, error) {
	return r.RetrieveWithMonitor(ctx, req, nil)
}

// RetrieveWithMonitor is Retrieve with stage callbacks.
//
// An explicit location constraint is always honored: when the anchor radius
// or admin term leaves no candidates the result is empty with a Reason, never
// an unfiltered ranking. The same holds for the synonym keyword filter.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, req Request, monitor Monitor) (*Result, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if !req.Category.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidCategory, req.Category)
	}
	if req.K <= 0 {
		return nil, ErrInvalidCount
	}
	ix, err := r.indexes.Get(req.Category)
	if err != nil {
		return nil, err
	}

	monitor.Start(req)
	result := &Result{}
	finish := func() (*Result, error) {
		monitor.Finish(result)
		return result, nil
	}

	// 1. Pre-filter
	var positions []int
	switch {
	case req.Anchor != nil && len(req.Anchor.Centers) > 0:
		positions = ix.Within(req.Anchor.Centers, req.Anchor.RadiusFor(req.Category))
		if len(positions) == 0 {
			result.Reason = ReasonOutsideRadius
		}
	case strings.TrimSpace(req.AdminTerm) != "":
		positions = ix.MatchingAddress(req.AdminTerm)
		if len(positions) == 0 {
			result.Reason = ReasonOutsideArea
		}
	default:
		positions = ix.All()
		if len(positions) == 0 {
			result.Reason = ReasonEmptyIndex
		}
	}
	result.Prefiltered = len(positions)
	monitor.AfterPrefilter(len(positions))
	if len(positions) == 0 {
		r.logger.Debug("pre-filter left no candidates", "category", req.Category, "reason", result.Reason)
		return finish()
	}

	queryText := EnrichQuery(req.Query, historyNames(ix, req.History))

	// 2. Dense score
	dense := make([]float64, len(positions))
	denseRaw := make([]float64, len(positions))
	qvec, err := r.embedder.EmbedText(ctx, queryText)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("query embedding failed, ranking lexically", "err", err)
	case len(qvec) != ix.Dimensions():
		r.logger.Warn("query embedding has wrong size, ranking lexically",
			"err", ErrDimensionMismatch, "got", len(qvec), "want", ix.Dimensions())
	default:
		qvec = index.NormalizeVector(qvec)
		for i, pos := range positions {
			cos := index.Dot(qvec, ix.Vector(pos))
			denseRaw[i] = cos
			dense[i] = (cos + 1) / 2
		}
	}
	monitor.AfterDenseScoring(len(positions))

	// 3. Lexical score over the same subset
	docs := make([][]string, len(positions))
	for i, pos := range positions {
		docs[i] = ix.Tokens(pos)
	}
	lexRaw := newBM25(docs).scores(index.Tokenize(queryText))
	lexical := make([]float64, len(lexRaw))
	if maxScore := slices.Max(lexRaw); maxScore > 0 {
		for i, s := range lexRaw {
			lexical[i] = s / maxScore
		}
	}
	monitor.AfterLexicalScoring(len(positions))

	// 4. Combine
	type scored struct {
		i     int
		score float64
	}
	ranked := make([]scored, len(positions))
	for i := range positions {
		ranked[i] = scored{i: i, score: DenseWeight*dense[i] + LexicalWeight*lexical[i]}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	// 5. Domain keyword filter
	groups := MatchSynonymGroups(req.Category, req.Query)
	result.Groups = groups
	if len(groups) > 0 {
		kept := make([]scored, 0, req.K)
		for _, s := range ranked {
			if matchesAnyGroup(ix.POI(positions[s.i]), groups) {
				kept = append(kept, s)
				if len(kept) >= req.K {
					break
				}
			}
		}
		monitor.AfterKeywordFilter(groups, len(kept))
		if len(kept) == 0 {
			result.Reason = ReasonKeywordMismatch
			r.logger.Debug("keyword filter left no candidates", "category", req.Category, "groups", groupNames(groups))
			return finish()
		}
		ranked = kept
	}

	// 6. Top-N
	if len(ranked) > req.K {
		ranked = ranked[:req.K]
	}
	result.Candidates = make([]core.Candidate, 0, len(ranked))
	for _, s := range ranked {
		poi := ix.POI(positions[s.i])
		c := core.Candidate{
			PlaceID:  poi.ID,
			Category: req.Category,
			Score:    s.score,
			POI:      poi,
		}
		if req.Anchor != nil && poi.HasLocation() {
			if d, ok := core.NearestDistanceKM(*poi.Location, req.Anchor.Centers); ok {
				c.DistanceKM = &d
			}
		}
		if req.Debug {
			c.Components = &core.ScoreComponents{Dense: denseRaw[s.i], Lexical: lexRaw[s.i]}
		}
		result.Candidates = append(result.Candidates, c)
	}

	return finish()
}

// EnrichQuery appends recently visited POI names to query.
func EnrichQuery(query string, names []string) string {
	if len(names) == 0 {
		return query
	}
	if len(names) > maxHistoryNames {
		names = names[:maxHistoryNames]
	}
	return fmt.Sprintf("%s (최근 방문: %s)", query, strings.Join(names, ", "))
}

func historyNames(ix *index.Index, history []int64) []string {
	var names []string
	for _, id := range history {
		if poi, ok := ix.Lookup(id); ok && poi.Name != "" {
			names = append(names, poi.Name)
		}
	}
	return names
}

func groupNames(groups []SynonymGroup) []string {
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.Name
	}
	return names
}
