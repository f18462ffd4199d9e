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

package recommend

import (
	"testing"

	"github.com/poiesic/wayfinder/core"
	"github.com/stretchr/testify/assert"
)

func TestProfileText(t *testing.T) {
	p := &Profile{
		City:            "서울",
		Companions:      []string{"친구", " "},
		Themes:          []string{"전시", "야경"},
		ActivityLevel:   "적당히",
		Avoid:           []string{"웨이팅"},
		CafeTypes:       []string{"디저트"},
		RestaurantTypes: []string{"한식", "일식"},
	}

	assert.Equal(t, "여행 도시: 서울. 동행 유형: 친구. 선호 테마: 전시, 야경. 활동 강도: 적당히. 피하고 싶은 요소: 웨이팅", p.Text())
	assert.Equal(t, p.Text(), p.CategoryText(core.CategoryTourspot))
	assert.Equal(t, p.Text()+". 선호 카페 유형: 디저트", p.CategoryText(core.CategoryCafe))
	assert.Equal(t, p.Text()+". 선호 음식 유형: 한식, 일식", p.CategoryText(core.CategoryRestaurant))

	empty := &Profile{CafeTypes: []string{"브런치"}}
	assert.Equal(t, "", empty.Text())
	assert.Equal(t, "선호 카페 유형: 브런치", empty.CategoryText(core.CategoryCafe))
	assert.Equal(t, "", empty.CategoryText(core.CategoryRestaurant))
}

func TestProfileRecent(t *testing.T) {
	p := &Profile{
		Visits: []PlaceRef{
			{ID: 1, Category: core.CategoryCafe},
			{ID: 2, Category: core.CategoryRestaurant},
			{ID: 3, Category: core.CategoryCafe},
		},
		LastSelected: []PlaceRef{
			{ID: 3, Category: core.CategoryCafe},
			{ID: 4, Category: core.CategoryCafe},
		},
	}
	assert.Equal(t, []int64{1, 3, 4}, p.Recent(core.CategoryCafe))
	assert.Equal(t, []int64{2}, p.Recent(core.CategoryRestaurant))
	assert.Empty(t, p.Recent(core.CategoryTourspot))
}
