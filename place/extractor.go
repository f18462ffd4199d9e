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

package place

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
)

const extractSystemPrompt = "너는 사용자의 의도에서 '지리적 위치(지명)'만 추출하는 전문가야.\n" +
	"다음 JSON 형식으로만 답하라: {\"area\": \"...\", \"point\": \"...\"}\n" +
	"규칙:\n" +
	"1. '음식 메뉴(김밥, 파스타, 떡볶이 등)'나 '장소의 종류(맛집, 카페, 놀거리)'는 절대 지명으로 추출하지 마라.\n" +
	"2. area는 행정구역/지역명(예: 강남구, 신림동, 여의도), point는 구체 지점(역/대학교/아파트/빌딩/랜드마크/몰)로 분리하라.\n" +
	"3. 둘 다 있으면 area와 point 모두 채워라. point가 없다면 point는 null로 두어라.\n" +
	"4. 오타가 있더라도 문맥상 '지역/지점'이면 추출하되(예: 걍남 -> 걍남), 메뉴 이름은 무조건 배제하라.\n" +
	"5. 지명이 없으면 반드시 {\"area\": null, \"point\": null}을 반환하라."

const extractMaxTokens = 40

type mentionReply struct {
	Area  *string `json:"area"`
	Point *string `json:"point"`
}

func (r mentionReply) mention() core.PlaceMention {
	return core.PlaceMention{Area: trimmed(r.Area), Point: trimmed(r.Point)}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Extractor finds the location mentioned in a query.
type Extractor struct {
	model  ai.ChatModel
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor) error

// WithExtractorLogger sets a custom logger.
// Default is slog.Default().
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger.With("component", "place-extractor")
		return nil
	}
}

// NewExtractor creates a new extractor.
func NewExtractor(model ai.ChatModel, opts ...ExtractorOption) (*Extractor, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	e := &Extractor{
		model:  model,
		logger: slog.Default().With("component", "place-extractor"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Extract returns the mention found in query and whether one was found.
// An unreachable model or an unusable reply yields no mention.
func (e *Extractor) Extract(ctx context.Context, query string) (core.PlaceMention, bool) {
	msgs := []ai.Message{
		ai.System(extractSystemPrompt),
		ai.User("입력 문장: " + query + "\n추출 결과: "),
	}
	raw, err := e.model.Complete(ctx, msgs, ai.WithMaxTokens(extractMaxTokens), ai.WithTemperature(0), ai.WithJSON())
	if err != nil {
		e.logger.Warn("place extraction failed", "err", err)
		return core.PlaceMention{}, false
	}

	reply := ai.ParseJSON[mentionReply](raw).UnwrapOr(mentionReply{})
	m := reply.mention()
	if m.IsEmpty() {
		e.logger.Debug("no place in query", "query", query, "raw", raw)
		return core.PlaceMention{}, false
	}
	e.logger.Debug("place extracted", "query", query, "area", m.Area, "point", m.Point)
	return m, true
}
