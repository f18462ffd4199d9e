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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/retrieval"
)

func candidate(id int64, name string) core.Candidate {
	return core.Candidate{
		PlaceID:  id,
		Category: core.CategoryCafe,
		POI: &core.POI{
			ID:       id,
			Category: core.CategoryCafe,
			Name:     name,
			Summary:  name + " 요약",
			Address:  "서울 강남구",
			Keywords: []string{"조용한"},
			Rating:   4.5,
			Reviews:  12,
		},
	}
}

func TestClarification(t *testing.T) {
	anchor := &core.Anchor{Centers: []core.Coordinate{{Lat: 37.5, Lng: 127}}}
	tests := []struct {
		name  string
		state State
		want  string
	}{
		{"expand failed", State{ExpandFailed: true, AnchorFailed: true}, MsgExpandFailed},
		{"anchor failed with name", State{AnchorFailed: true, ResolvedName: "없는역"},
			"'없는역' 위치를 찾지 못했어요. 지점/역/건물명을 알려주세요."},
		{"anchor failed uses mention", State{AnchorFailed: true, Place: core.PlaceMention{Area: "어딘가"}},
			"'어딘가' 위치를 찾지 못했어요. 지점/역/건물명을 알려주세요."},
		{"anchor failed without name", State{AnchorFailed: true}, MsgAnchorFailed},
		{"nearby without anchor", State{Query: "근처 카페 추천"}, MsgNearbyNoAnchor},
		{"nearby with admin term", State{Query: "성수동 근처 카페", InputPlace: "성수동", AdminTerm: "성수동"},
			"'성수동'가 어느 지점을 말하는지 알려주세요. 기준 위치를 알려주시면 그 근처로 추천할게요."},
		{"empty with anchor", State{Query: "강남역 카페", Anchor: anchor, ResolvedName: "강남역", Mode: core.CategoryCafe},
			"강남역 근처에는 조건에 맞는 결과가 없어요. 반경을 넓혀서 다시 찾아볼까요, 아니면 강남역의 다른 카페로 추천해드릴까요?"},
		{"empty with unnamed anchor", State{Query: "카페", Anchor: anchor, Mode: core.CategoryTourspot},
			"해당 지역 근처에는 조건에 맞는 결과가 없어요. 반경을 넓혀서 다시 찾아볼까요, 아니면 해당 지역의 다른 놀거리로 추천해드릴까요?"},
		{"empty outside area", State{Query: "성수동 맛집", AdminTerm: "성수동", Mode: core.CategoryRestaurant, EmptyReason: retrieval.ReasonOutsideArea},
			"성수동 지역에서는 조건에 맞는 맛집를 찾지 못했어요. 다른 지역이나 기준 장소를 알려주세요."},
		{"empty keyword mismatch", State{Query: "초밥 맛집", Mode: core.CategoryRestaurant, EmptyReason: retrieval.ReasonKeywordMismatch},
			"요청하신 종류에 맞는 맛집를 찾지 못했어요. 다른 메뉴나 종류로 찾아볼까요?"},
		{"empty generic", State{Query: "추천"}, MsgNoResults},
		{"answer needed", State{Query: "추천", Candidates: []core.Candidate{candidate(1, "A")}}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clarification(&tt.state))
		})
	}
}

func TestAnswerMessages(t *testing.T) {
	s := &State{
		Query:           "여자친구랑 강남역 카페",
		NormalizedQuery: "여자친구랑 강남역 카페 추천",
		Anchor:          &core.Anchor{Centers: []core.Coordinate{{Lat: 37.5, Lng: 127}}},
		ResolvedName:    "강남역",
		ModeUnknown:     true,
		Candidates:      []core.Candidate{candidate(1, "카페 A"), candidate(2, "카페 B")},
	}
	msgs := answerMessages(s)
	require.Len(t, msgs, 5)

	assert.Contains(t, msgs[0].Content, "기준 위치인 '강남역'")
	assert.Contains(t, msgs[0].Content, "로맨틱하고 분위기 좋은 점")
	assert.Contains(t, msgs[0].Content, "관광지 위주로 추천했음을")
	assert.Contains(t, msgs[1].Content, "- [장소명]: 카페 A | [설명]: 카페 A 요약 | [주소]: 서울 강남구 | [키워드]: 조용한 | [정보]: 평점 4.5 리뷰 12")
	assert.Contains(t, msgs[3].Content, "강남역 주변에서")
	assert.Equal(t, "여자친구랑 강남역 카페 추천", msgs[4].Content)

	s.Anchor = nil
	s.ModeUnknown = false
	msgs = answerMessages(s)
	assert.Contains(t, msgs[0].Content, "기준 위치인 '서울'")
	assert.NotContains(t, msgs[0].Content, "관광지 위주로")
}

func TestGeneralMessages(t *testing.T) {
	s := &State{Query: "경복궁 입장료", ModeUnknown: true}
	msgs := generalMessages(s, []core.Candidate{candidate(1, "경복궁")})
	require.Len(t, msgs, 4)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "후보 정보:\n- 경복궁 경복궁 요약 주소: 서울 강남구"))
	assert.Contains(t, msgs[2].Content, "관광지 기준으로 임시로")
	assert.Equal(t, "경복궁 입장료", msgs[3].Content)
}

func TestFallbackAnswer(t *testing.T) {
	got := fallbackAnswer("강남역", []core.Candidate{candidate(1, "A"), {PlaceID: 2}})
	assert.Equal(t, "강남역 주변 추천 장소입니다.\n\n1. [A]\n   - 특징: A 요약\n\n2. [장소]", got)
}

func TestPump(t *testing.T) {
	t.Run("delivers in order to a slow reader", func(t *testing.T) {
		em, out := newEmitter(context.Background(), "turn-1")
		go func() {
			for i := 0; i < 100; i++ {
				em.emit(Event{Type: EventToken, Token: "x"})
			}
			em.emit(Event{Type: EventDone})
			em.close()
		}()

		var events []Event
		for ev := range out {
			events = append(events, ev)
		}
		require.Len(t, events, 101)
		assert.Equal(t, EventDone, events[100].Type)
		assert.Equal(t, "turn-1", events[0].TurnID)
	})

	t.Run("cancellation never blocks the sender", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		em, out := newEmitter(ctx, "turn-2")
		cancel()

		done := make(chan struct{})
		go func() {
			for i := 0; i < 1000; i++ {
				em.emit(Event{Type: EventToken})
			}
			em.close()
			close(done)
		}()
		<-done
		for range out {
		}
	})
}
