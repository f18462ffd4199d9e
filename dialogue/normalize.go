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
)

const normalizeSystemPrompt = "너는 검색 엔진을 위한 쿼리 최적화 전문가야. 사용자 질문을 아래 규칙에 따라 정규화하라.\n\n" +
	"1. **구체적 지명 보존**: '반포 자이', '삼성의원', '강남역 1번 출구'와 같은 구체적인 건물, 아파트명, 지점 정보는 " +
	"절대 생략하거나 광역 지명(예: 강남)으로 축소하지 마라.\n" +
	"2. **의도 명확화**: '놀만한 거'는 '놀거리/명소'로, '맛있는 곳'은 '맛집/식당'으로 검색에 유리한 단어로 치환하라.\n" +
	"3. **오타 수정**: 메뉴/행동/의도 표현의 오타만 수정하라. 지명/상호/역명 등 고유명사는 절대 수정하지 마라.\n" +
	"4. **메뉴 강조**: '짜장면', '방어' 같은 구체적 메뉴가 있다면 이를 문장의 핵심으로 유지하라.\n" +
	"JSON 형식만 반환: {\"normalized_query\": \"...\"}"

const normalizeMaxTokens = 80

type normalizeReply struct {
	NormalizedQuery string `json:"normalized_query"`
}

// Normalizer rewrites a query into search-friendly wording while keeping
// proper nouns intact.
type Normalizer struct {
	model  ai.ChatModel
	logger *slog.Logger
}

// NewNormalizer creates a normalizer.
func NewNormalizer(model ai.ChatModel, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{model: model, logger: logger}
}

// Normalize returns the rewritten query, or query itself when the model
// fails or replies with anything unusable.
func (n *Normalizer) Normalize(ctx context.Context, query string) string {
	raw, err := n.model.Complete(ctx, []ai.Message{
		ai.System(normalizeSystemPrompt),
		ai.User(query),
	}, ai.WithMaxTokens(normalizeMaxTokens), ai.WithTemperature(0), ai.WithJSON())
	if err != nil {
		n.logger.Warn("query normalization failed", "err", err)
		return query
	}

	reply := ai.ParseJSON[normalizeReply](raw).UnwrapOr(normalizeReply{})
	if normalized := strings.TrimSpace(reply.NormalizedQuery); normalized != "" {
		return normalized
	}
	n.logger.Debug("normalization reply unusable", "raw", raw)
	return query
}
