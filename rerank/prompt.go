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

package rerank

import (
	"fmt"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
)

const dateInstruction = "사용자 의도는 데이트/커플이다. 분위기, 로맨틱함, 기념일/특별한 경험, 조용함을 우선 고려하라."

func selectionInstruction(k int) string {
	return fmt.Sprintf("사용자 질문과 아래 후보를 보고 가장 관련 높은 상위 %d개를 고르고, id만 JSON 배열로 반환해. 예: [0,2]. 다른 텍스트는 넣지 말 것.", k)
}

func buildPrompt(req Request, k int) []ai.Message {
	msgs := []ai.Message{ai.System(selectionInstruction(k))}
	if req.DateIntent {
		msgs = append(msgs, ai.System(dateInstruction))
	}
	msgs = append(msgs, ai.System("후보:\n"+CandidateList(req.Candidates)))
	query := req.Query
	if req.Profile != "" {
		query = "사용자 프로필: " + req.Profile
	}
	return append(msgs, ai.User(query))
}

// CandidateList renders candidates one per line, prefixed with their
// position as the id the model must answer with.
func CandidateList(candidates []core.Candidate) string {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = candidateLine(i, c)
	}
	return strings.Join(lines, "\n")
}

func candidateLine(i int, c core.Candidate) string {
	return fmt.Sprintf("[id=%d] %s", i, Describe(c))
}

// Describe renders a candidate as one line of name, blurb, address,
// keywords and popularity.
func Describe(c core.Candidate) string {
	poi := c.POI
	if poi == nil {
		return c.Name()
	}
	parts := []string{c.Name()}
	if blurb := poi.Blurb(); blurb != "" {
		parts = append(parts, blurb)
	}
	if poi.Address != "" {
		parts = append(parts, "주소: "+poi.Address)
	}
	if len(poi.Keywords) > 0 {
		parts = append(parts, "키워드: "+strings.Join(poi.Keywords, ", "))
	}
	if pop := popularity(poi); pop != "" {
		parts = append(parts, "인기: "+pop)
	}
	if poi.Rating > 0 {
		parts = append(parts, fmt.Sprintf("평점 %.1f, 리뷰 %d", poi.Rating, poi.Reviews))
	}
	return strings.Join(parts, " ")
}

func popularity(poi *core.POI) string {
	var stats []string
	if poi.Views != nil {
		stats = append(stats, fmt.Sprintf("조회수 %d", *poi.Views))
	}
	if poi.Likes != nil {
		stats = append(stats, fmt.Sprintf("좋아요 %d", *poi.Likes))
	}
	if poi.Bookmarks != nil {
		stats = append(stats, fmt.Sprintf("북마크 %d", *poi.Bookmarks))
	}
	return strings.Join(stats, ", ")
}
