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
	"strings"

	"github.com/poiesic/wayfinder/core"
)

var placeholders = map[string]bool{
	"":        true,
	"-":       true,
	"none":    true,
	"null":    true,
	"nan":     true,
	"n/a":     true,
	"unknown": true,
	"없음":      true,
	"정보없음":    true,
	"정보 없음":   true,
	"이름없음":    true,
	"미정":      true,
}

var categoryKeywords = map[core.Category][]string{
	core.CategoryCafe: {
		"카페", "커피", "디저트", "베이커리", "빵", "케이크", "브런치", "티", "차", "음료", "coffee", "cafe", "dessert",
	},
	core.CategoryRestaurant: {
		"식", "요리", "고기", "구이", "국밥", "면", "찌개", "탕", "회", "초밥", "스시", "파스타", "피자", "버거",
		"치킨", "주점", "술집", "포차", "뷔페", "레스토랑", "식당", "맛집", "족발", "보쌈", "떡볶이", "라멘",
		"restaurant", "food",
	},
}

func isPlaceholder(s string) bool {
	return placeholders[strings.ToLower(strings.TrimSpace(s))]
}

// Valid reports whether poi has usable metadata for category: a real name,
// and for food categories a type or content field naming the kind of food.
func Valid(poi *core.POI, category core.Category) bool {
	if poi == nil || isPlaceholder(poi.Name) {
		return false
	}
	if !category.IsFood() {
		return true
	}
	kind := strings.TrimSpace(poi.Kind + " " + poi.Content)
	if isPlaceholder(poi.Kind) && isPlaceholder(poi.Content) {
		return false
	}
	return core.ContainsAny(strings.ToLower(kind), categoryKeywords[category])
}
