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
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
)

var (
	cafeTerms = []string{"카페", "커피", "디저트", "브런치", "빵", "라떼", "tea", "티룸"}

	restaurantTerms = []string{
		"맛집", "식당", "레스토랑", "밥", "점심", "저녁", "고기", "파스타", "스테이크",
		"스시", "초밥", "회", "중식", "한식", "양식", "분식", "라멘", "라면", "피자",
		"버거", "삼겹살", "술집", "포차", "안주", "뷔페",
	}
)

const modeSystemPrompt = "다음 사용자 질문이 관광지(tourspot), 카페(cafe), 식당/맛집(restaurant) 중 " +
	"어느 카테고리에 해당하는지 정확히 하나의 단어만 소문자로 답하라. 해당이 없으면 unknown만 답하라."

const modeMaxTokens = 5

// DetectModeRules picks a category from an explicit hint or query keywords.
// Cafe terms are checked before restaurant terms. CategoryUnknown means the
// rules found nothing.
func DetectModeRules(hint core.Category, query string) core.Category {
	if hint.Valid() {
		return hint
	}
	q := strings.ToLower(query)
	switch {
	case core.ContainsAny(q, cafeTerms):
		return core.CategoryCafe
	case core.ContainsAny(q, restaurantTerms):
		return core.CategoryRestaurant
	default:
		return core.CategoryUnknown
	}
}

// ModeDetector combines the keyword rules with a one-word model fallback.
type ModeDetector struct {
	model  ai.ChatModel
	logger *slog.Logger
}

// NewModeDetector creates a detector. A nil model disables the fallback.
func NewModeDetector(model ai.ChatModel, logger *slog.Logger) *ModeDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &ModeDetector{model: model, logger: logger}
}

// Detect returns the rule result, or the model's answer when the rules
// found nothing. Model failures yield CategoryUnknown.
func (d *ModeDetector) Detect(ctx context.Context, hint core.Category, query string) core.Category {
	if mode := DetectModeRules(hint, query); mode != core.CategoryUnknown {
		return mode
	}
	if d.model == nil {
		return core.CategoryUnknown
	}

	reply, err := d.model.Complete(ctx, []ai.Message{
		ai.System(modeSystemPrompt),
		ai.User(query),
	}, ai.WithMaxTokens(modeMaxTokens), ai.WithTemperature(0))
	if err != nil {
		d.logger.Warn("mode classification failed", "err", err)
		return core.CategoryUnknown
	}
	word := strings.Trim(strings.TrimSpace(reply), `."'`)
	return core.ParseCategory(word)
}
