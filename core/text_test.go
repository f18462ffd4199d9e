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

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"강남역 1번 출구", "강남역1번출구"},
		{"Seoul Station!", "seoulstation"},
		{"서울특별시 (중구)", "서울특별시중구"},
		{"ㄱㄴ 한글", "한글"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeText(tt.in), tt.in)
	}
}

func TestHasAdminSuffix(t *testing.T) {
	assert.True(t, HasAdminSuffix("강남구"))
	assert.True(t, HasAdminSuffix("신림동"))
	assert.True(t, HasAdminSuffix("테헤란로"))
	assert.True(t, HasAdminSuffix("세종대로 "))
	assert.False(t, HasAdminSuffix("강남역"))
}

func TestTrimLastRune(t *testing.T) {
	s, ok := TrimLastRune("강남역")
	assert.True(t, ok)
	assert.Equal(t, "강남", s)

	s, ok = TrimLastRune("역")
	assert.False(t, ok)
	assert.Equal(t, "역", s)
}

func TestAppendUniqueAndContainsAny(t *testing.T) {
	list := AppendUnique(nil, "a", "", "b", "a")
	assert.Equal(t, []string{"a", "b"}, list)
	assert.True(t, ContainsAny("강남역삼거리", []string{"", "강남"}))
	assert.False(t, ContainsAny("강남", []string{"", "홍대"}))
}

func TestHaversineKM(t *testing.T) {
	gangnam := Coordinate{Lat: 37.4979, Lng: 127.0276}
	assert.InDelta(t, 0, HaversineKM(gangnam, gangnam), 1e-9)

	// Gangnam station to Seoul station is roughly 8 km.
	seoul := Coordinate{Lat: 37.5547, Lng: 126.9707}
	assert.InDelta(t, 8.1, HaversineKM(gangnam, seoul), 0.6)
}

func TestNearestDistanceKM(t *testing.T) {
	_, ok := NearestDistanceKM(Coordinate{}, nil)
	assert.False(t, ok)

	p := Coordinate{Lat: 37.5, Lng: 127.0}
	far := Coordinate{Lat: 37.6, Lng: 127.0}
	d, ok := NearestDistanceKM(p, []Coordinate{far, p})
	assert.True(t, ok)
	assert.InDelta(t, 0, d, 1e-9)
}

func TestCentroidAndBounds(t *testing.T) {
	c, ok := Centroid([]Coordinate{{Lat: 37.4, Lng: 127.0}, {Lat: 37.6, Lng: 127.2}})
	assert.True(t, ok)
	assert.InDelta(t, 37.5, c.Lat, 1e-9)
	assert.InDelta(t, 127.1, c.Lng, 1e-9)

	_, ok = Centroid(nil)
	assert.False(t, ok)

	assert.True(t, SeoulBounds.Contains(Coordinate{Lat: 37.4, Lng: 127.2}))
	assert.False(t, SeoulBounds.Contains(Coordinate{Lat: 35.1, Lng: 129.0}))
}

func TestTextHash(t *testing.T) {
	assert.Equal(t, TextHash("경복궁"), TextHash("경복궁"))
	assert.NotEqual(t, TextHash("경복궁"), TextHash("창덕궁"))
	assert.NotZero(t, TextHash(""))
}
