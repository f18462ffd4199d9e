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
	"fmt"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/retrieval"
)

// Fixed replies for turns that end without a model answer.
const (
	MsgExpandFailed    = "이전에 사용한 기준 위치가 없어서 범위를 넓힐 수 없어요. 기준 장소를 알려주세요."
	MsgAnchorFailed    = "위치를 찾지 못했어요. 기준이 될 지점/역/건물명을 알려주세요."
	MsgNearbyNoAnchor  = "근처/주변 추천을 하려면 기준 위치가 필요해요. 지점/역/건물명을 알려주세요."
	MsgNoResults       = "검색된 결과가 없습니다."
	MsgGeneralNoResult = "관련 정보를 찾지 못했습니다."
)

const defaultAnswerLocation = "서울"

const answerFormat = "답변은 반드시 아래 형식을 지켜라:\n" +
	"번호. [장소 이름]\n" +
	"   - 특징: 한 줄 요약\n" +
	"   - 추천 이유: 상세 설명\n"

const generalSystemPrompt = "너는 서울 여행/맛집/카페 정보를 안내하는 챗봇이다. " +
	"반드시 아래 후보 정보만 활용해서 질문에 답해라. 후보 밖 내용은 말하지 마라."

const generalUnknownModePrompt = "모드를 정확히 인식하지 못했다면 관광지 기준으로 임시로 답하고," +
	"사용자에게 식당/카페/관광지 중 원하는 카테고리를 물어본다."

// clarification returns the fixed reply for s, or "" when the model should
// answer. The checks run in priority order.
func clarification(s *State) string {
	if s.ExpandFailed {
		return MsgExpandFailed
	}
	if s.AnchorFailed {
		if place := s.PlaceName(); place != "" {
			return fmt.Sprintf("'%s' 위치를 찾지 못했어요. 지점/역/건물명을 알려주세요.", place)
		}
		return MsgAnchorFailed
	}
	if IsNearbyQuery(s.SearchQuery()) && s.Anchor == nil {
		if place := s.PlaceName(); place != "" {
			return fmt.Sprintf("'%s'가 어느 지점을 말하는지 알려주세요. 기준 위치를 알려주시면 그 근처로 추천할게요.", place)
		}
		return MsgNearbyNoAnchor
	}
	if len(s.Candidates) == 0 {
		return emptyMessage(s)
	}
	return ""
}

// emptyMessage explains an empty result using the reason the narrowing
// stage reported.
func emptyMessage(s *State) string {
	label := s.Mode.Label()
	if s.Anchor != nil {
		loc := s.ResolvedName
		if loc == "" {
			loc = s.InputPlace
		}
		if loc == "" {
			loc = "해당 지역"
		}
		return fmt.Sprintf("%s 근처에는 조건에 맞는 결과가 없어요. 반경을 넓혀서 다시 찾아볼까요, 아니면 %s의 다른 %s로 추천해드릴까요?",
			loc, loc, label)
	}
	switch s.EmptyReason {
	case retrieval.ReasonOutsideArea:
		return fmt.Sprintf("%s 지역에서는 조건에 맞는 %s를 찾지 못했어요. 다른 지역이나 기준 장소를 알려주세요.", s.AdminTerm, label)
	case retrieval.ReasonKeywordMismatch:
		return fmt.Sprintf("요청하신 종류에 맞는 %s를 찾지 못했어요. 다른 메뉴나 종류로 찾아볼까요?", label)
	default:
		return MsgNoResults
	}
}

// answerContextLine renders one candidate for the answer prompt.
func answerContextLine(c core.Candidate) string {
	parts := []string{"[장소명]: " + c.Name()}
	summary := ""
	if c.POI != nil {
		summary = c.POI.Summary
		if summary == "" {
			summary = c.POI.Description
		}
	}
	parts = append(parts, "[설명]: "+summary)
	if c.POI == nil {
		return strings.Join(parts, " | ")
	}
	if c.POI.Address != "" {
		parts = append(parts, "[주소]: "+c.POI.Address)
	}
	if len(c.POI.Keywords) > 0 {
		parts = append(parts, "[키워드]: "+strings.Join(c.POI.Keywords, ", "))
	}
	var info []string
	if c.POI.Rating > 0 {
		info = append(info, fmt.Sprintf("평점 %.1f", c.POI.Rating))
	}
	if c.POI.Reviews > 0 {
		info = append(info, fmt.Sprintf("리뷰 %d", c.POI.Reviews))
	}
	if len(info) > 0 {
		parts = append(parts, "[정보]: "+strings.Join(info, " "))
	}
	return strings.Join(parts, " | ")
}

// answerMessages builds the prompt for a recommendation answer.
func answerMessages(s *State) []ai.Message {
	location := defaultAnswerLocation
	if s.Anchor != nil && s.ResolvedName != "" {
		location = s.ResolvedName
	}

	var system strings.Builder
	system.WriteString("너는 서울 전문 여행 가이드다. 다음 지침을 엄격히 준수하라.\n")
	fmt.Fprintf(&system, "1. 답변 서두에 기준 위치인 '%s'를 언급하며 인사를 건넨다.\n", location)
	system.WriteString("2. 제공된 '후보 목록'에 있는 정보만 사용하며, 없는 장소는 절대 지어내지 않는다.\n")
	system.WriteString("3. " + answerFormat)

	var constraints []string
	if IsDateQuery(s.SearchQuery()) {
		constraints = append(constraints, "- 데이트 의도에 맞춰 로맨틱하고 분위기 좋은 점을 강조하여 추천 이유를 작성할 것.")
	}
	if s.ModeUnknown {
		constraints = append(constraints, "- 카테고리가 불분명하므로 관광지 위주로 추천했음을 알리고, 맛집/카페 등 선호 타입을 물어볼 것.")
	}
	system.WriteString("\n" + strings.Join(constraints, "\n"))

	lines := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		lines[i] = "- " + answerContextLine(c)
	}

	example := location + " 주변에서 즐거운 시간을 보내실 수 있는 곳들을 추천해 드립니다.\n\n" +
		"1. [홀리차우 잠실점]\n" +
		"   - 특징: 퓨전 중국요리 맛집\n" +
		"   - 추천 이유: 롯데월드와 가까워 아이들과 방문하기 좋으며, 남녀노소 즐길 메뉴가 다양합니다.\n" +
		"2. [옹솥 롯데백화점잠실점]\n" +
		"   - 특징: 푸짐한 전골 요리\n" +
		"   - 추천 이유: 곱창전골 등 다양한 메뉴와 푸짐한 밑반찬이 제공되어 가족 식사에 적합합니다."

	return []ai.Message{
		ai.System(system.String()),
		ai.System("후보 목록:\n" + strings.Join(lines, "\n")),
		ai.User("잠실역 근처 맛집 추천해줘"),
		ai.Assistant(example),
		ai.User(s.SearchQuery()),
	}
}

// generalMessages builds the prompt for a general question.
func generalMessages(s *State, candidates []core.Candidate) []ai.Message {
	msgs := []ai.Message{
		ai.System(generalSystemPrompt),
		ai.System("후보 정보:\n" + candidateBullets(candidates)),
	}
	if s.ModeUnknown {
		msgs = append(msgs, ai.System(generalUnknownModePrompt))
	}
	return append(msgs, ai.User(s.Query))
}

func candidateBullets(candidates []core.Candidate) string {
	lines := make([]string, len(candidates))
	for i, c := range candidates {
		lines[i] = "- " + rerank.Describe(c)
	}
	return strings.Join(lines, "\n")
}

// fallbackAnswer lists the candidates in the answer format when the model
// cannot be reached.
func fallbackAnswer(location string, candidates []core.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 주변 추천 장소입니다.\n", location)
	for i, c := range candidates {
		fmt.Fprintf(&b, "\n%d. [%s]\n", i+1, c.Name())
		if c.POI != nil && c.POI.Blurb() != "" {
			fmt.Fprintf(&b, "   - 특징: %s\n", c.POI.Blurb())
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
