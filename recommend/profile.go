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
	"strings"

	"github.com/poiesic/wayfinder/core"
)

// PlaceRef identifies a POI the user interacted with.
type PlaceRef struct {
	ID       int64         `json:"id" yaml:"id"`
	Category core.Category `json:"category" yaml:"category"`
}

// Profile is the user's stated preferences and recent activity.
type Profile struct {
	UserID          string   `json:"user_id,omitempty" yaml:"user_id"`
	City            string   `json:"city,omitempty" yaml:"city"`
	Companions      []string `json:"companion_type,omitempty" yaml:"companion_type"`
	Themes          []string `json:"preferred_themes,omitempty" yaml:"preferred_themes"`
	Moods           []string `json:"preferred_moods,omitempty" yaml:"preferred_moods"`
	ActivityLevel   string   `json:"activity_level,omitempty" yaml:"activity_level"`
	Budget          string   `json:"budget,omitempty" yaml:"budget"`
	Avoid           []string `json:"avoid,omitempty" yaml:"avoid"`
	CafeTypes       []string `json:"preferred_cafe_types,omitempty" yaml:"preferred_cafe_types"`
	RestaurantTypes []string `json:"preferred_restaurant_types,omitempty" yaml:"preferred_restaurant_types"`

	Visits       []PlaceRef `json:"visits,omitempty" yaml:"visits"`
	LastSelected []PlaceRef `json:"last_selected,omitempty" yaml:"last_selected"`
	// Origin, when set, replaces the recent-POI centroid as the distance origin.
	Origin *core.Coordinate `json:"origin,omitempty" yaml:"origin"`
}

// Text renders the category-independent part of the profile.
func (p *Profile) Text() string {
	var parts []string
	add := func(label string, values ...string) {
		var kept []string
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				kept = append(kept, v)
			}
		}
		if len(kept) > 0 {
			parts = append(parts, label+": "+strings.Join(kept, ", "))
		}
	}
	add("여행 도시", p.City)
	add("동행 유형", p.Companions...)
	add("선호 테마", p.Themes...)
	add("선호 분위기", p.Moods...)
	add("활동 강도", p.ActivityLevel)
	add("예산 수준", p.Budget)
	add("피하고 싶은 요소", p.Avoid...)
	return strings.Join(parts, ". ")
}

// CategoryText renders the profile for one category. Food categories add
// the preferred venue types.
func (p *Profile) CategoryText(c core.Category) string {
	base := p.Text()
	var types []string
	var label string
	switch c {
	case core.CategoryCafe:
		label, types = "선호 카페 유형", p.CafeTypes
	case core.CategoryRestaurant:
		label, types = "선호 음식 유형", p.RestaurantTypes
	default:
		return base
	}
	if len(types) == 0 {
		return base
	}
	extra := label + ": " + strings.Join(types, ", ")
	if base == "" {
		return extra
	}
	return base + ". " + extra
}

// Recent returns the ids of visited and last-selected POIs in c, visits
// first, without duplicates.
func (p *Profile) Recent(c core.Category) []int64 {
	var out []int64
	seen := map[int64]bool{}
	for _, list := range [][]PlaceRef{p.Visits, p.LastSelected} {
		for _, ref := range list {
			if ref.Category != c || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			out = append(out, ref.ID)
		}
	}
	return out
}
