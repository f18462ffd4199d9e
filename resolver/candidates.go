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
	"slices"
	"strings"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/places"
)

func typeSet(types ...string) map[string]bool {
	out := make(map[string]bool, len(types))
	for _, t := range types {
		out[t] = true
	}
	return out
}

var (
	transitTypes     = typeSet("subway_station", "transit_station", "train_station", "bus_station", "light_rail_station", "intersection")
	stationTypes     = typeSet("subway_station", "transit_station", "train_station", "light_rail_station")
	localityTypes    = typeSet("political", "locality")
	localityPrefixes = []string{"sublocality", "administrative_area_level"}
	foodTypes        = typeSet("restaurant", "cafe", "bar", "bakery", "food", "meal_takeaway", "meal_delivery")

	landmarkTypes = typeSet(
		"university", "school", "park", "tourist_attraction", "museum", "library",
		"shopping_mall", "stadium", "lodging", "point_of_interest", "establishment",
	)

	// venueTypes are penalized when the mention names a station.
	venueTypes = typeSet(
		"store", "restaurant", "food", "cafe", "bar", "bakery", "doctor", "health",
		"lodging", "meal_takeaway", "meal_delivery", "local_government_office", "city_hall",
	)

	intersectionHints = []string{"교차로", "사거리"}
)

func isLocality(p places.Prediction) bool {
	if p.HasType(localityTypes) {
		return true
	}
	for _, t := range p.Types {
		for _, prefix := range localityPrefixes {
			if strings.HasPrefix(t, prefix) {
				return true
			}
		}
	}
	return false
}

func isAnchorType(p places.Prediction) bool {
	return p.HasType(transitTypes) || isLocality(p) || p.HasType(landmarkTypes)
}

// anchorPool drops food venues and keeps the anchor-typed predictions, or
// every remaining prediction when none is anchor-typed.
func anchorPool(preds []places.Prediction) []places.Prediction {
	var nonFood, anchors []places.Prediction
	for _, p := range preds {
		if p.HasType(foodTypes) {
			continue
		}
		nonFood = append(nonFood, p)
		if isAnchorType(p) {
			anchors = append(anchors, p)
		}
	}
	if len(anchors) > 0 {
		return anchors
	}
	return nonFood
}

// selectTier keeps the highest non-empty priority tier: transit, then
// locality, then landmarks whose description contains the query. With no
// tier match every candidate is kept.
func selectTier(preds []places.Prediction, queryNorm string) []places.Prediction {
	if len(preds) == 0 {
		return nil
	}
	if tier := filter(preds, func(p places.Prediction) bool { return p.HasType(transitTypes) }); len(tier) > 0 {
		return tier
	}
	if tier := filter(preds, isLocality); len(tier) > 0 {
		return tier
	}
	tier := filter(preds, func(p places.Prediction) bool {
		return p.HasType(landmarkTypes) && queryNorm != "" && strings.Contains(core.NormalizeText(p.Description), queryNorm)
	})
	if len(tier) > 0 {
		return tier
	}
	return preds
}

func filter(preds []places.Prediction, keep func(places.Prediction) bool) []places.Prediction {
	var out []places.Prediction
	for _, p := range preds {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

// ScoredPrediction is an autocomplete candidate with its match score.
type ScoredPrediction struct {
	places.Prediction
	Score int `json:"score"`
}

type scorer struct {
	tokens       Tokens
	stationHint  bool
	intersection bool
}

func (s scorer) score(p places.Prediction) int {
	desc := core.NormalizeText(p.Description)
	tokens := s.tokens.Match
	if s.stationHint && len(s.tokens.Station) > 0 {
		tokens = s.tokens.Station
	}

	match := 0
	for _, tok := range tokens {
		switch {
		case tok == "":
		case tok == desc:
			match = max(match, 6)
		case strings.Contains(desc, tok):
			match = max(match, 4)
		case desc != "" && strings.Contains(tok, desc):
			match = max(match, 2)
		}
	}

	score := match
	if s.stationHint {
		if strings.Contains(desc, stationSuffix) {
			score++
		}
		if p.HasType(stationTypes) {
			score += 2
		}
		if strings.Contains(desc, "역점") {
			score -= 2
		}
		if strings.Contains(desc, "출구") {
			score++
		}
		if p.HasType(venueTypes) {
			score -= 2
		}
	}
	if core.ContainsAny(desc, s.tokens.Region) {
		score++
	}
	if slices.Contains(p.Types, "intersection") && !s.intersection {
		score--
	}
	return score
}

// rankCandidates orders autocomplete predictions for geocoding, best first.
func rankCandidates(preds []places.Prediction, tokens Tokens, canonical, query string) []ScoredPrediction {
	pool := selectTier(anchorPool(preds), core.NormalizeText(canonical))

	s := scorer{tokens: tokens, intersection: core.ContainsAny(query, intersectionHints)}
	if len(tokens.Station) > 0 {
		stations := filter(pool, func(p places.Prediction) bool {
			return core.ContainsAny(core.NormalizeText(p.Description), tokens.Station)
		})
		if len(stations) > 0 {
			pool = stations
			s.stationHint = true
		}
	}

	out := make([]ScoredPrediction, len(pool))
	for i, p := range pool {
		out[i] = ScoredPrediction{Prediction: p, Score: s.score(p)}
	}
	slices.SortStableFunc(out, func(a, b ScoredPrediction) int {
		return b.Score - a.Score
	})
	return out
}
