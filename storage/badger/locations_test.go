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
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

func newTestStores(t *testing.T) *Stores {
	t.Helper()
	stores, err := NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })
	return stores
}

func TestAliases(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).Locations

	t.Run("add and read", func(t *testing.T) {
		added, err := repo.AddAlias(ctx, storage.AliasKeyword, "강남역", "강남 역")
		require.NoError(t, err)
		assert.True(t, added)

		added, err = repo.AddAlias(ctx, storage.AliasKeyword, "강남역", "강남 역")
		require.NoError(t, err)
		assert.False(t, added)

		data, err := repo.Aliases(ctx, storage.AliasKeyword)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"강남역": {"강남 역"}}, data)
	})

	t.Run("maps are disjoint", func(t *testing.T) {
		data, err := repo.Aliases(ctx, storage.AliasAdmin)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("empty values are ignored", func(t *testing.T) {
		added, err := repo.AddAlias(ctx, storage.AliasAdmin, "", "x")
		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := repo.Aliases(ctx, storage.AliasKind("bogus"))
		assert.ErrorIs(t, err, storage.ErrInvalidAliasKind)
	})

	t.Run("replace", func(t *testing.T) {
		err := repo.ReplaceAliases(ctx, storage.AliasAdmin, map[string][]string{"마포구": {"마포"}})
		require.NoError(t, err)
		err = repo.ReplaceAliases(ctx, storage.AliasAdmin, map[string][]string{"송파구": nil})
		require.NoError(t, err)

		data, err := repo.Aliases(ctx, storage.AliasAdmin)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"송파구": {}}, data)
	})
}

func TestAddAlias_Concurrent(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).Locations

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddAlias(ctx, storage.AliasKeyword, "홍대입구역", fmt.Sprintf("alias-%d", i))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	data, err := repo.Aliases(ctx, storage.AliasKeyword)
	require.NoError(t, err)
	assert.Len(t, data["홍대입구역"], 20)
}

func TestAddAlias_ConcurrentKeys(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).Locations
	canonicals := []string{"강남역", "홍대입구역", "성수역", "잠실역"}

	var wg sync.WaitGroup
	for i := range 40 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			canonical := canonicals[i%len(canonicals)]
			added, err := repo.AddAlias(ctx, storage.AliasKeyword, canonical, fmt.Sprintf("alias-%d", i))
			assert.NoError(t, err)
			assert.True(t, added)
		}()
	}
	wg.Wait()

	data, err := repo.Aliases(ctx, storage.AliasKeyword)
	require.NoError(t, err)
	for _, canonical := range canonicals {
		assert.Len(t, data[canonical], 10, canonical)
	}
	assert.Empty(t, repo.keys.locks)
}

func TestAddAlias_CanceledContext(t *testing.T) {
	repo := newTestStores(t).Locations
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	added, err := repo.AddAlias(ctx, storage.AliasKeyword, "강남역", "강남")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, added)
}

func TestKeyLocks(t *testing.T) {
	locks := newKeyLocks()

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		overlap atomic.Bool
	)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("같은키")
			defer unlock()
			if active.Add(1) > 1 {
				overlap.Store(true)
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.False(t, overlap.Load())
	assert.Empty(t, locks.locks)

	unlockA := locks.Lock("a")
	unlockB := locks.Lock("b")
	assert.Len(t, locks.locks, 2)
	unlockA()
	unlockB()
	assert.Empty(t, locks.locks)
}

func TestAnchorCache(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).Locations

	_, err := repo.GetAnchor(ctx, "강남역")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	entry := &core.AnchorCacheEntry{
		Lat:            37.4979,
		Lng:            127.0276,
		Address:        "서울특별시 강남구 강남대로 396",
		Query:          "강남역",
		ResolvedName:   "강남역",
		RadiusByIntent: core.DefaultRadii(),
		Source:         core.SourceAutocomplete,
	}
	require.NoError(t, repo.PutAnchor(ctx, "강남역", entry))

	got, err := repo.GetAnchor(ctx, "강남역")
	require.NoError(t, err)
	assert.Equal(t, entry, got)

	assert.ErrorIs(t, repo.PutAnchor(ctx, "", entry), storage.ErrInvalidQuery)

	require.NoError(t, repo.ReplaceAnchors(ctx, map[string]*core.AnchorCacheEntry{"성수": {Lat: 37.54, Lng: 127.05}}))
	all, err := repo.Anchors(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, "성수")
}

func TestGeoCenters(t *testing.T) {
	ctx := t.Context()
	repo := newTestStores(t).Locations

	center := &core.GeoCenter{
		Centers:        []core.Coordinate{{Lat: 37.5563, Lng: 126.9236}},
		RadiusByIntent: core.RadiusMap{core.CategoryCafe: 1.5},
	}
	require.NoError(t, repo.PutGeoCenter(ctx, "홍대", center))

	got, err := repo.GetGeoCenter(ctx, "홍대")
	require.NoError(t, err)
	assert.Equal(t, center, got)

	_, err = repo.GetGeoCenter(ctx, "홍대입구")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	all, err := repo.GeoCenters(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
