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

package badger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

func TestPOIRepository(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).POIs

	pois := []*core.POI{
		{ID: 30, Category: core.CategoryCafe, Name: "카페 C", Location: &core.Coordinate{Lat: 37.5, Lng: 127.0}, Vector: []float32{1, 0}},
		{ID: 10, Category: core.CategoryCafe, Name: "카페 A"},
		{ID: 20, Category: core.CategoryCafe, Name: "카페 B"},
		{ID: 10, Category: core.CategoryRestaurant, Name: "식당 A"},
	}
	require.NoError(t, repo.PutPOIs(ctx, pois...))

	t.Run("list is ordered by id and scoped to category", func(t *testing.T) {
		cafes, err := repo.ListPOIs(ctx, core.CategoryCafe)
		require.NoError(t, err)
		require.Len(t, cafes, 3)
		assert.Equal(t, []int64{10, 20, 30}, []int64{cafes[0].ID, cafes[1].ID, cafes[2].ID})
		assert.Equal(t, []float32{1, 0}, cafes[2].Vector)
	})

	t.Run("count", func(t *testing.T) {
		n, err := repo.CountPOIs(ctx, core.CategoryRestaurant)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("get", func(t *testing.T) {
		poi, err := repo.GetPOI(ctx, core.CategoryRestaurant, 10)
		require.NoError(t, err)
		assert.Equal(t, "식당 A", poi.Name)

		_, err = repo.GetPOI(ctx, core.CategoryTourspot, 10)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		got, err := repo.GetPOIs(ctx, core.CategoryCafe, 20, 99, 30)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("upsert replaces", func(t *testing.T) {
		require.NoError(t, repo.PutPOIs(ctx, &core.POI{ID: 10, Category: core.CategoryCafe, Name: "카페 A2"}))
		poi, err := repo.GetPOI(ctx, core.CategoryCafe, 10)
		require.NoError(t, err)
		assert.Equal(t, "카페 A2", poi.Name)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.DeletePOIs(ctx, core.CategoryCafe, 20))
		assert.ErrorIs(t, repo.DeletePOIs(ctx, core.CategoryCafe, 20), storage.ErrNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		err := repo.PutPOIs(ctx, &core.POI{ID: 1, Category: core.CategoryCafe})
		assert.ErrorIs(t, err, core.ErrInvalidPOI)

		_, err = repo.ListPOIs(ctx, core.CategoryUnknown)
		assert.ErrorIs(t, err, core.ErrInvalidCategory)
	})
}
