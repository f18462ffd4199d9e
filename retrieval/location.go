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
	"strings"

	"github.com/poiesic/wayfinder/core"
)

// FilterByLocation keeps the candidates inside the anchor radius for
// category, or, without an anchor, those whose address contains adminTerm.
// With neither constraint the input is returned unchanged. A fresh slice is
// returned; candidates are never modified.
func FilterByLocation(candidates []core.Candidate, category core.Category, anchor *core.Anchor, adminTerm string) ([]core.Candidate, Reason) {
	if len(candidates) == 0 {
		return candidates, ReasonNone
	}

	if anchor != nil && len(anchor.Centers) > 0 {
		radius := anchor.RadiusFor(category)
		out := make([]core.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.POI == nil || !c.POI.HasLocation() {
				continue
			}
			d, ok := core.NearestDistanceKM(*c.POI.Location, anchor.Centers)
			if ok && d <= radius {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return out, ReasonOutsideRadius
		}
		return out, ReasonNone
	}

	term := strings.ToLower(strings.TrimSpace(adminTerm))
	if term != "" {
		out := make([]core.Candidate, 0, len(candidates))
		for _, c := range candidates {
			if c.POI != nil && strings.Contains(c.POI.AddressBlob(), term) {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return out, ReasonOutsideArea
		}
		return out, ReasonNone
	}

	return candidates, ReasonNone
}
