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

// SynonymGroup is a curated set of interchangeable domain terms. A query that
// mentions any term restricts results to POIs whose text mentions one too.
type SynonymGroup struct {
	Name  string
	Terms []string
}

var synonymGroups = map[core.Category][]SynonymGroup{
	core.CategoryTourspot: {
		{Name: "aquarium", Terms: []string{"수족관", "아쿠아리움", "aquarium"}},
		{Name: "museum", Terms: []string{"박물관", "museum"}},
		{Name: "gallery", Terms: []string{"미술관", "갤러리", "gallery"}},
		{Name: "palace", Terms: []string{"고궁", "궁궐", "경복궁", "창덕궁", "덕수궁", "창경궁"}},
	},
	core.CategoryRestaurant: {
		{Name: "seafood", Terms: []string{"해산물", "해물", "횟집", "생선회", "조개", "대게", "랍스터", "seafood"}},
		{Name: "sushi", Terms: []string{"스시", "초밥", "오마카세", "sushi"}},
		{Name: "pasta", Terms: []string{"파스타", "스파게티", "이탈리안", "pasta"}},
		{Name: "noodle", Terms: []string{"라멘", "우동", "국수", "냉면", "소바"}},
		{Name: "meat", Terms: []string{"삼겹살", "갈비", "한우", "스테이크", "고깃집"}},
	},
	core.CategoryCafe: {
		{Name: "coffee", Terms: []string{"커피", "에스프레소", "핸드드립", "로스터리", "coffee"}},
		{Name: "dessert", Terms: []string{"디저트", "케이크", "마카롱", "베이커리", "dessert"}},
		{Name: "tea", Terms: []string{"티룸", "찻집", "전통차", "tea"}},
	},
}

// SynonymGroups returns the curated groups for category.
func SynonymGroups(category core.Category) []SynonymGroup {
	return synonymGroups[category]
}

// MatchSynonymGroups returns the groups of category mentioned by query.
func MatchSynonymGroups(category core.Category, query string) []SynonymGroup {
	q := strings.ToLower(query)
	var matched []SynonymGroup
	for _, g := range synonymGroups[category] {
		if core.ContainsAny(q, g.Terms) {
			matched = append(matched, g)
		}
	}
	return matched
}

// matchesAnyGroup reports whether poi's descriptive text contains a term of
// any group.
func matchesAnyGroup(poi *core.POI, groups []SynonymGroup) bool {
	blob := poi.SearchBlob()
	for _, g := range groups {
		if core.ContainsAny(blob, g.Terms) {
			return true
		}
	}
	return false
}
