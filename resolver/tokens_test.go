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

package resolver

import (
	"testing"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/places"
	"github.com/stretchr/testify/assert"
)

func TestBuildTokens(t *testing.T) {
	t.Run("area and station point", func(t *testing.T) {
		m := core.PlaceMention{Area: "서울시", Point: "강남역"}
		tok := BuildTokens(m, m.Text(), m.Text())
		assert.Equal(t, []string{"서울시강남역", "서울시", "강남역", "서울시강남", "강남"}, tok.Match)
		assert.Equal(t, []string{"서울시", "서울"}, tok.Region)
		assert.Equal(t, []string{"서울시강남역", "강남역"}, tok.Station)
	})

	t.Run("canonical variants appended", func(t *testing.T) {
		m := core.PlaceMention{Point: "걍남역"}
		tok := BuildTokens(m, "걍남역", "서울 강남역")
		assert.Equal(t, []string{"걍남역", "걍남", "서울강남역", "강남역", "서울강남", "강남"}, tok.Match)
		assert.Equal(t, []string{"서울"}, tok.Region)
	})

	t.Run("region hint from text", func(t *testing.T) {
		tok := BuildTokens(core.PlaceMention{Point: "경기 판교"}, "경기 판교", "경기 판교")
		assert.Equal(t, []string{"경기"}, tok.Region)
		assert.Empty(t, tok.Station)
	})

	t.Run("inferred area", func(t *testing.T) {
		tok := BuildTokens(core.PlaceMention{Point: "마포구청"}, "마포구청", "마포구청")
		assert.Equal(t, []string{"마포구"}, tok.Region)
	})

	t.Run("default region", func(t *testing.T) {
		tok := BuildTokens(core.PlaceMention{Point: "코엑스"}, "코엑스", "코엑스")
		assert.Equal(t, []string{"서울"}, tok.Region)
	})
}

func TestCacheMatches(t *testing.T) {
	m := core.PlaceMention{Point: "홍대입구역"}
	tok := BuildTokens(m, m.Text(), m.Text())

	assert.True(t, CacheMatches(&core.AnchorCacheEntry{ResolvedName: "홍대입구역", Address: "서울 마포구", Query: "홍대입구역"}, tok))
	assert.False(t, CacheMatches(&core.AnchorCacheEntry{ResolvedName: "홍대", Address: "서울 마포구"}, tok), "missing station token")
	assert.False(t, CacheMatches(&core.AnchorCacheEntry{ResolvedName: "서면역", Address: "부산 진구", Query: "서면역"}, tok))
}

func TestRankCandidates(t *testing.T) {
	t.Run("food dropped and transit tier kept", func(t *testing.T) {
		preds := []places.Prediction{
			{Description: "강남역 스타벅스", PlaceID: "cafe", Types: []string{"cafe", "food"}},
			{Description: "강남역 CGV", PlaceID: "poi", Types: []string{"point_of_interest"}},
			{Description: "강남역", PlaceID: "st", Types: []string{"subway_station", "transit_station"}},
		}
		m := core.PlaceMention{Point: "강남역"}
		ranked := rankCandidates(preds, BuildTokens(m, "강남역", "강남역"), "강남역", "강남역 근처 카페")
		if assert.Len(t, ranked, 1) {
			assert.Equal(t, "st", ranked[0].PlaceID)
			// exact 6, station suffix 1, station type 2
			assert.Equal(t, 9, ranked[0].Score)
		}
	})

	t.Run("locality tier when no transit", func(t *testing.T) {
		preds := []places.Prediction{
			{Description: "성수동 카페거리", PlaceID: "poi", Types: []string{"point_of_interest"}},
			{Description: "성수동", PlaceID: "loc", Types: []string{"sublocality_level_2", "political"}},
		}
		m := core.PlaceMention{Area: "성수동"}
		ranked := rankCandidates(preds, BuildTokens(m, "성수동", "성수동"), "성수동", "성수동 맛집")
		if assert.Len(t, ranked, 1) {
			assert.Equal(t, "loc", ranked[0].PlaceID)
		}
	})

	t.Run("landmark tier needs description match", func(t *testing.T) {
		preds := []places.Prediction{
			{Description: "올림픽공원 평화의문", PlaceID: "a", Types: []string{"park"}},
			{Description: "잠실 종합운동장", PlaceID: "b", Types: []string{"stadium"}},
		}
		m := core.PlaceMention{Point: "올림픽공원"}
		ranked := rankCandidates(preds, BuildTokens(m, "올림픽공원", "올림픽공원"), "올림픽공원", "")
		if assert.Len(t, ranked, 1) {
			assert.Equal(t, "a", ranked[0].PlaceID)
		}
	})

	t.Run("intersection penalized without hint", func(t *testing.T) {
		preds := []places.Prediction{
			{Description: "신사", PlaceID: "x", Types: []string{"intersection"}},
			{Description: "신사", PlaceID: "s", Types: []string{"bus_station"}},
		}
		m := core.PlaceMention{Point: "신사"}
		tok := BuildTokens(m, "신사", "신사")

		ranked := rankCandidates(preds, tok, "신사", "신사 맛집")
		assert.Equal(t, "s", ranked[0].PlaceID)
		assert.Equal(t, ranked[1].Score+1, ranked[0].Score)

		ranked = rankCandidates(preds, tok, "신사", "신사 사거리 맛집")
		assert.Equal(t, "x", ranked[0].PlaceID, "ties keep autocomplete order")
		assert.Equal(t, ranked[0].Score, ranked[1].Score)
	})

	t.Run("station branch name penalized", func(t *testing.T) {
		preds := []places.Prediction{
			{Description: "올리브영 강남역점", PlaceID: "store", Types: []string{"store", "establishment"}},
			{Description: "강남역 11번 출구", PlaceID: "exit", Types: []string{"point_of_interest"}},
		}
		m := core.PlaceMention{Point: "강남역"}
		ranked := rankCandidates(preds, BuildTokens(m, "강남역", "강남역"), "강남역", "")
		if assert.Len(t, ranked, 2) {
			assert.Equal(t, "exit", ranked[0].PlaceID)
			assert.Equal(t, 6, ranked[0].Score)
			assert.Equal(t, 1, ranked[1].Score)
		}
	})
}
