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

import (
	"strings"

	"github.com/poiesic/wayfinder/core"
)

var (
	recommendTerms = []string{"추천", "어디", "가볼", "뭐가 있어", "top", "best", "3개", "5곳"}

	expandTerms = []string{"범위넓", "범위늘", "반경넓", "반경늘", "더넓", "더멀", "확대", "넓혀", "늘려", "거리넓"}

	nearbyTerms = []string{"근처", "주변", "인근", "근방", "주위", "가까운", "가까이", "인접"}

	dateTerms = []string{"데이트", "커플", "여자친구", "남자친구", "연인", "기념일", "소개팅", "프로포즈", "썸", "둘이", "둘만", "2인"}

	dateHints = []string{"데이트", "로맨틱", "분위기", "기념일", "와인", "코스", "조용", "야경", "뷰"}
)

// DetectIntent classifies the raw query. A radius expansion request and a
// query asking for places around something always count as a
// recommendation.
func DetectIntent(query string) Intent {
	if IsExpandQuery(query) || IsNearbyQuery(query) || core.ContainsAny(strings.ToLower(query), recommendTerms) {
		return IntentRecommend
	}
	return IntentGeneral
}

// IsExpandQuery reports an explicit request to widen the search radius.
func IsExpandQuery(query string) bool {
	return core.ContainsAny(strings.ReplaceAll(query, " ", ""), expandTerms)
}

// IsNearbyQuery reports whether the query asks for places around something.
func IsNearbyQuery(query string) bool {
	return core.ContainsAny(strings.ReplaceAll(query, " ", ""), nearbyTerms)
}

// IsDateQuery reports a date or couple context.
func IsDateQuery(query string) bool {
	return core.ContainsAny(core.NormalizeText(query), dateTerms)
}

// AugmentForDate appends the atmosphere hints the query does not already
// contain.
func AugmentForDate(query string) string {
	if query == "" {
		return query
	}
	norm := core.NormalizeText(query)
	var extras []string
	for _, h := range dateHints {
		if !strings.Contains(norm, h) {
			extras = append(extras, h)
		}
	}
	if len(extras) == 0 {
		return query
	}
	return query + " " + strings.Join(extras, " ")
}
