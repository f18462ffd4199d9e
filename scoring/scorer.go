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

package scoring

import (
	"cmp"
	"log/slog"
	"math"
	"slices"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/index"
)

// scanFactor bounds the validity walk relative to the requested count.
const scanFactor = 3

// Request describes one ranking call.
type Request struct {
	// Vector is the preference or query embedding.
	Vector []float32
	K      int
	// Recent lists recently visited or selected place ids in this category.
	Recent []int64
	// Origin overrides the recent-POI centroid as the distance origin.
	Origin *core.Coordinate
	// Exclude lists place ids that must not be returned.
	Exclude []int64
	Debug   bool
}

// Dropped counts POIs removed before they could be returned.
type Dropped struct {
	Excluded int `json:"excluded"`
	TooFar   int `json:"too_far"`
	Invalid  int `json:"invalid"`
}

// Result is the ranked scorer output.
type Result struct {
	Candidates []core.Candidate
	Dropped    Dropped
}

// Scorer ranks one category index.
type Scorer struct {
	ix     *index.Index
	config Config
	logger *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer) error

// WithConfig overrides the category default weights.
func WithConfig(config Config) Option {
	return func(s *Scorer) error {
		if err := config.Validate(); err != nil {
			return err
		}
		s.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "scoring", "category", s.ix.Category())
		return nil
	}
}

// NewScorer creates a scorer over ix using DefaultConfig for its category.
func NewScorer(ix *index.Index, opts ...Option) (*Scorer, error) {
	if ix == nil {
		return nil, ErrIndexRequired
	}
	s := &Scorer{
		ix:     ix,
		config: DefaultConfig(ix.Category()),
		logger: slog.Default().With("component", "scoring", "category", ix.Category()),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Config returns the active weights.
func (s *Scorer) Config() Config {
	return s.config
}

// TopK returns up to req.K valid candidates in descending score order.
func (s *Scorer) TopK(req Request) Result {
	var result Result
	if req.K <= 0 || s.ix.Len() == 0 {
		return result
	}

	user := index.NormalizeVector(req.Vector)
	recentVec, recentCoords := s.recentSignals(req.Recent)

	origin := req.Origin
	if origin == nil {
		if c, ok := core.Centroid(recentCoords); ok {
			origin = &c
		}
	}

	excluded := make(map[int64]bool, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = true
	}

	type scored struct {
		pos        int
		score      float64
		components core.ScoreComponents
		dist       *float64
	}
	ranked := make([]scored, 0, s.ix.Len())
	for pos := range s.ix.Len() {
		poi := s.ix.POI(pos)
		if excluded[poi.ID] {
			result.Dropped.Excluded++
			continue
		}
		vec := s.ix.Vector(pos)
		c := core.ScoreComponents{Base: index.Dot(user, vec)}
		if recentVec != nil {
			c.Recent = s.config.RecentWeight * index.Dot(recentVec, vec)
		}
		var dist *float64
		if origin != nil && poi.HasLocation() {
			d := core.HaversineKM(*origin, *poi.Location)
			if s.config.DistanceMaxKM > 0 && d > s.config.DistanceMaxKM {
				result.Dropped.TooFar++
				continue
			}
			c.Distance = s.config.DistanceWeight * math.Exp(-d/s.config.DistanceScaleKM)
			dist = &d
		}
		ranked = append(ranked, scored{
			pos:        pos,
			score:      c.Base + c.Recent + c.Distance,
			components: c,
			dist:       dist,
		})
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})

	limit := min(len(ranked), scanFactor*req.K)
	for _, r := range ranked[:limit] {
		if len(result.Candidates) >= req.K {
			break
		}
		poi := s.ix.POI(r.pos)
		if !Valid(poi, s.ix.Category()) {
			result.Dropped.Invalid++
			continue
		}
		cand := core.Candidate{
			PlaceID:    poi.ID,
			Category:   s.ix.Category(),
			Score:      r.score,
			DistanceKM: r.dist,
			POI:        poi,
		}
		if req.Debug {
			comp := r.components
			cand.Components = &comp
		}
		result.Candidates = append(result.Candidates, cand)
	}

	if len(result.Candidates) < req.K {
		s.logger.Debug("short result",
			"want", req.K, "got", len(result.Candidates),
			"too_far", result.Dropped.TooFar, "invalid", result.Dropped.Invalid)
	}
	return result
}

// recentSignals returns the mean vector and coordinates of the recent POIs
// found in the index.
func (s *Scorer) recentSignals(ids []int64) ([]float32, []core.Coordinate) {
	var vectors [][]float32
	var coords []core.Coordinate
	for _, id := range ids {
		pos, ok := s.ix.Position(id)
		if !ok {
			continue
		}
		vectors = append(vectors, s.ix.Vector(pos))
		if poi := s.ix.POI(pos); poi.HasLocation() {
			coords = append(coords, *poi.Location)
		}
	}
	return index.MeanVector(vectors), coords
}
