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

func TestValidateAnchor(t *testing.T) {
	valid := &Anchor{
		Centers:        []Coordinate{{Lat: 37.49, Lng: 127.02}},
		RadiusByIntent: DefaultRadii(),
		Source:         SourceAutocomplete,
	}

	t.Run("valid anchor", func(t *testing.T) {
		assert.NoError(t, ValidateAnchor(valid))
	})

	t.Run("nil anchor", func(t *testing.T) {
		assert.ErrorIs(t, ValidateAnchor(nil), ErrInvalidAnchor)
	})

	t.Run("no centers", func(t *testing.T) {
		err := ValidateAnchor(&Anchor{RadiusByIntent: DefaultRadii()})
		assert.ErrorIs(t, err, ErrInvalidAnchor)
		assert.ErrorIs(t, err, ErrNoCenters)
	})

	t.Run("out of range center", func(t *testing.T) {
		err := ValidateAnchor(&Anchor{Centers: []Coordinate{{Lat: 91, Lng: 0}}})
		assert.ErrorIs(t, err, ErrInvalidCoordinate)
	})

	t.Run("zero radius", func(t *testing.T) {
		a := valid.Clone()
		a.RadiusByIntent[CategoryCafe] = 0
		assert.ErrorIs(t, ValidateAnchor(a), ErrInvalidRadius)
	})
}

func TestValidatePOI(t *testing.T) {
	t.Run("valid poi", func(t *testing.T) {
		assert.NoError(t, ValidatePOI(&POI{ID: 1, Name: "경복궁", Category: CategoryTourspot}))
	})

	t.Run("nil poi", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePOI(nil), ErrInvalidPOI)
	})

	t.Run("empty name", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePOI(&POI{Category: CategoryCafe}), ErrEmptyName)
	})

	t.Run("unknown category", func(t *testing.T) {
		assert.ErrorIs(t, ValidatePOI(&POI{Name: "x", Category: CategoryUnknown}), ErrInvalidCategory)
	})

	t.Run("bad location", func(t *testing.T) {
		poi := &POI{Name: "x", Category: CategoryCafe, Location: &Coordinate{Lat: 0, Lng: 200}}
		assert.ErrorIs(t, ValidatePOI(poi), ErrInvalidCoordinate)
	})
}
