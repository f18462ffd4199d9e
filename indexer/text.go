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

package indexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/wayfinder/core"
)

const (
	// MinReviews is the review count below which restaurants are not indexed.
	MinReviews = 5

	// MinDescriptionRunes is the description length below which restaurants
	// are not indexed.
	MinDescriptionRunes = 10
)

// Eligible reports whether a canonical POI should be indexed. Restaurants
// with too few reviews or no real description are skipped.
func Eligible(poi *core.POI) (bool, string) {
	if poi.Category != core.CategoryRestaurant {
		return true, ""
	}
	if poi.Reviews < MinReviews {
		return false, "too_few_reviews"
	}
	if utf8.RuneCountInString(poi.Description) < MinDescriptionRunes {
		return false, "short_description"
	}
	return true, ""
}

// EmbeddingText builds the text that is embedded and tokenized for a POI.
func EmbeddingText(poi *core.POI, raw *RawPOI) string {
	if poi.Category == core.CategoryTourspot {
		return tourspotText(poi, raw)
	}
	return foodText(poi)
}

func tourspotText(poi *core.POI, raw *RawPOI) string {
	var parts []string
	add := func(label string, values ...string) {
		values = compact(values)
		if len(values) == 0 {
			return
		}
		parts = append(parts, label+strings.Join(values, ", ")+".")
	}

	if poi.Summary != "" {
		parts = append(parts, poi.Summary)
	} else if poi.Description != "" {
		parts = append(parts, poi.Description)
	}
	add("주요 테마: ", raw.Themes...)
	add("분위기: ", raw.Mood...)
	add("주 방문객 유형: ", raw.VisitorType...)
	add("방문 추천 시간대: ", raw.BestTime...)
	add("평균 체류 시간: ", raw.Duration)
	add("활동 강도: ", raw.ActivityLevel)
	add("실내/실외: ", raw.IndoorOutdoor)
	if raw.Photospot != nil {
		if *raw.Photospot {
			parts = append(parts, "포토스팟이 있어 사진 찍기 좋은 장소입니다.")
		} else {
			parts = append(parts, "특별한 포토스팟이 중심은 아닌 장소입니다.")
		}
	}
	add("키워드: ", poi.Keywords...)
	add("다음과 같은 여행자에게는 비추천: ", raw.AvoidFor...)
	add("일정 배치 추천: ", raw.SchedulePos)

	if len(parts) == 0 {
		return fmt.Sprintf("ID %d인 관광지에 대한 정보가 거의 없습니다.", poi.ID)
	}
	return poi.Name + ". " + strings.Join(parts, " ")
}

func foodText(poi *core.POI) string {
	var parts []string

	kind := poi.Content
	if poi.Kind != "" {
		kind = poi.Kind
	}
	if kind != "" {
		parts = append(parts, fmt.Sprintf("%s은(는) %s입니다.", poi.Name, kind))
	} else {
		parts = append(parts, poi.Name+".")
	}
	if poi.Description != "" {
		parts = append(parts, poi.Description)
	}
	parts = append(parts, popularity(poi)...)
	if len(poi.Keywords) > 0 {
		parts = append(parts, "특징 및 분위기: "+strings.Join(poi.Keywords, ", "))
	}
	if poi.Address != "" {
		parts = append(parts, "위치: "+poi.Address)
	}
	return strings.Join(parts, " ")
}

func popularity(poi *core.POI) []string {
	var out []string
	switch {
	case poi.Reviews >= 100:
		out = append(out, "많은 방문자 리뷰가 증명하는 검증된 맛집입니다.")
	case poi.Reviews >= 50:
		out = append(out, "방문자들의 리뷰가 꽤 쌓인 인기 장소입니다.")
	}
	if poi.Views != nil {
		switch {
		case *poi.Views >= 10000:
			out = append(out, "사람들의 관심도가 매우 높고 조회수가 많은 핫플레이스입니다.")
		case *poi.Views >= 3000:
			out = append(out, "사람들이 많이 검색해보는 관심 장소입니다.")
		}
	}
	if poi.Likes != nil && *poi.Likes >= 50 {
		out = append(out, "많은 사람들이 좋아요를 누른 선호도 높은 곳입니다.")
	}
	return out
}
