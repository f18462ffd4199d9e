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

package index

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

// Tokenize splits text into lowercase whitespace-separated tokens.
// Queries and documents share this tokenizer.
func Tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// Index is the read-only embedding index for one category.
type Index struct {
	category core.Category
	pois     []*core.POI
	vectors  [][]float32
	tokens   [][]string
	byID     map[int64]int
	dim      int
}

// Build creates an index from pois. POIs without a vector, or whose vector
// length differs from the first one seen, are skipped and counted.
func Build(category core.Category, pois []*core.POI) (*Index, int) {
	ix := &Index{
		category: category,
		byID:     make(map[int64]int, len(pois)),
	}
	skipped := 0
	for _, poi := range pois {
		if poi == nil || len(poi.Vector) == 0 {
			skipped++
			continue
		}
		if ix.dim == 0 {
			ix.dim = len(poi.Vector)
		}
		if len(poi.Vector) != ix.dim {
			skipped++
			continue
		}
		if _, dup := ix.byID[poi.ID]; dup {
			skipped++
			continue
		}
		ix.byID[poi.ID] = len(ix.pois)
		ix.pois = append(ix.pois, poi)
		ix.vectors = append(ix.vectors, NormalizeVector(poi.Vector))
		ix.tokens = append(ix.tokens, Tokenize(poi.Text))
	}
	return ix, skipped
}

// Category returns the indexed category.
func (ix *Index) Category() core.Category { return ix.category }

// Len returns the number of indexed POIs.
func (ix *Index) Len() int { return len(ix.pois) }

// Dimensions returns the vector length, or 0 for an empty index.
func (ix *Index) Dimensions() int { return ix.dim }

// POI returns the POI at position i.
func (ix *Index) POI(i int) *core.POI { return ix.pois[i] }

// Vector returns the unit vector at position i.
func (ix *Index) Vector(i int) []float32 { return ix.vectors[i] }

// Tokens returns the tokenized embedding text at position i.
func (ix *Index) Tokens(i int) []string { return ix.tokens[i] }

// Lookup returns the POI with the given place id.
func (ix *Index) Lookup(id int64) (*core.POI, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return nil, false
	}
	return ix.pois[i], true
}

// Position returns the slice position of a place id.
func (ix *Index) Position(id int64) (int, bool) {
	i, ok := ix.byID[id]
	return i, ok
}

// All returns every position in index order.
func (ix *Index) All() []int {
	out := make([]int, len(ix.pois))
	for i := range out {
		out[i] = i
	}
	return out
}

// Within returns the positions of POIs whose distance to the nearest center
// is at most radiusKM. POIs without coordinates never match.
func (ix *Index) Within(centers []core.Coordinate, radiusKM float64) []int {
	var out []int
	for i, poi := range ix.pois {
		if !poi.HasLocation() {
			continue
		}
		d, ok := core.NearestDistanceKM(*poi.Location, centers)
		if ok && d <= radiusKM {
			out = append(out, i)
		}
	}
	return out
}

// MatchingAddress returns the positions of POIs whose address fields contain
// term as a case-insensitive substring.
func (ix *Index) MatchingAddress(term string) []int {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil
	}
	var out []int
	for i, poi := range ix.pois {
		if strings.Contains(poi.AddressBlob(), term) {
			out = append(out, i)
		}
	}
	return out
}

// Set holds one Index per category.
type Set struct {
	indexes map[core.Category]*Index
}

// NewSet builds a Set from prebuilt indexes.
func NewSet(indexes ...*Index) *Set {
	s := &Set{indexes: make(map[core.Category]*Index, len(indexes))}
	for _, ix := range indexes {
		s.indexes[ix.category] = ix
	}
	return s
}

// Get returns the index for category.
func (s *Set) Get(category core.Category) (*Index, error) {
	ix, ok := s.indexes[category]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrIndexNotLoaded, category)
	}
	return ix, nil
}

// Load reads every category from repo and builds the indexes.
func Load(ctx context.Context, repo storage.POIRepository, logger *slog.Logger) (*Set, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "index")

	s := &Set{indexes: make(map[core.Category]*Index, len(core.Categories))}
	for _, category := range core.Categories {
		pois, err := repo.ListPOIs(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", category, err)
		}
		ix, skipped := Build(category, pois)
		if skipped > 0 {
			logger.Warn("skipped POIs without usable vectors", "category", category, "skipped", skipped)
		}
		logger.Info("index loaded", "category", category, "pois", ix.Len(), "dimensions", ix.Dimensions())
		s.indexes[category] = ix
	}
	return s, nil
}
