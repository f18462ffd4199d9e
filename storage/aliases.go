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

package storage

import (
	"slices"

	"github.com/poiesic/wayfinder/core"
)

// AliasIndex maps a normalized name to its canonical form.
type AliasIndex map[string]string

// BuildAliasIndex flattens canonical -> aliases maps into a lookup index.
// Later maps win on collisions; each canonical also maps to itself.
func BuildAliasIndex(maps ...map[string][]string) AliasIndex {
	idx := AliasIndex{}
	for _, data := range maps {
		for canonical, aliases := range data {
			if norm := core.NormalizeText(canonical); norm != "" {
				idx[norm] = canonical
			}
			for _, alias := range aliases {
				if norm := core.NormalizeText(alias); norm != "" {
					idx[norm] = canonical
				}
			}
		}
	}
	return idx
}

// Resolve returns the canonical form of value, or value itself.
func (idx AliasIndex) Resolve(value string) string {
	if value == "" {
		return value
	}
	if canonical, ok := idx[core.NormalizeText(value)]; ok {
		return canonical
	}
	return value
}

// AddAlias appends alias under canonical in data.
// Returns false when nothing changed.
func AddAlias(data map[string][]string, canonical, alias string) bool {
	if canonical == "" || alias == "" {
		return false
	}
	if slices.Contains(data[canonical], alias) {
		return false
	}
	data[canonical] = append(data[canonical], alias)
	return true
}
