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

import "github.com/poiesic/wayfinder/core"

// Expansion is the outcome of widening the previous anchor.
type Expansion struct {
	Anchor   *core.Anchor
	Mode     core.Category
	RadiusKM float64
	Query    string
}

// Expand widens the radius of the previous turn's anchor for its active
// category by one step, capped at core.MaxRadiusKM. Other categories keep
// their radii. ok is false when prev holds no anchor to widen; no default
// anchor is ever invented.
func Expand(prev *Context, mode core.Category, query string) (Expansion, bool) {
	if prev == nil || prev.LastAnchor == nil || len(prev.LastAnchor.Centers) == 0 {
		return Expansion{}, false
	}

	active := prev.LastMode
	if !active.Valid() {
		active = mode
	}
	if !active.Valid() {
		active = core.CategoryTourspot
	}

	anchor := prev.LastAnchor.Clone()
	if anchor.RadiusByIntent == nil {
		anchor.RadiusByIntent = core.RadiusMap{}
	}
	if anchor.Source == "" {
		anchor.Source = core.SourceContext
	}

	base := anchor.RadiusFor(active)
	if prev.LastRadiusKM != nil && *prev.LastRadiusKM > 0 {
		base = *prev.LastRadiusKM
	}
	radius := min(base+core.RadiusStepKM, core.MaxRadiusKM)
	anchor.RadiusByIntent[active] = radius

	if prev.LastQuery != "" {
		query = prev.LastQuery
	}
	return Expansion{Anchor: anchor, Mode: active, RadiusKM: radius, Query: query}, true
}
