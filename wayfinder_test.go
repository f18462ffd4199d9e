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

package wayfinder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/ai/mock"
	"github.com/poiesic/wayfinder/config"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/dialogue"
	"github.com/poiesic/wayfinder/places"
	"github.com/poiesic/wayfinder/recommend"
	"github.com/poiesic/wayfinder/storage"
	"github.com/poiesic/wayfinder/storage/badger"
)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *mock.MockProvider) {
	t.Helper()
	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)

	provider := mock.NewMockProvider()
	base := []ServiceOption{WithStores(stores), WithProvider(provider)}
	svc, err := NewService(nil, append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })
	return svc, provider
}

func seedCafes(t *testing.T, svc *Service) {
	t.Helper()
	var pois []*core.POI
	for i, name := range []string{"조용한 카페", "디저트 카페", "로스터리 카페"} {
		poi := &core.POI{
			ID:       int64(i + 1),
			Category: core.CategoryCafe,
			Name:     name,
			Summary:  name + " 입니다",
			Address:  "서울 강남구",
			Location: &core.Coordinate{Lat: 37.498 + float64(i)*0.001, Lng: 127.028},
		}
		poi.Text = poi.Name + " " + poi.Summary
		poi.Vector = mock.DeterministicVector(poi.Text, mock.DefaultDimensions)
		pois = append(pois, poi)
	}
	require.NoError(t, svc.POIRepository().PutPOIs(context.Background(), pois...))
}

func TestNewService(t *testing.T) {
	t.Run("opens stores from config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DBPath = filepath.Join(t.TempDir(), "test_db")
		svc, err := NewService(cfg)
		require.NoError(t, err)
		defer svc.Close()

		assert.NotNil(t, svc.LocationStores())
		assert.NotNil(t, svc.POIRepository())
		assert.Nil(t, svc.places, "no places client without an API key")
		assert.Same(t, cfg, svc.Config())
	})

	t.Run("builds google client from api key", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.DBPath = filepath.Join(t.TempDir(), "test_db")
		cfg.Google.APIKey = "test-key"
		svc, err := NewService(cfg)
		require.NoError(t, err)
		defer svc.Close()

		assert.IsType(t, &places.GoogleClient{}, svc.places)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		cfg := config.DefaultConfig()
		cfg.DBPath = tmpFile
		svc, err := NewService(cfg)
		assert.Error(t, err)
		assert.Nil(t, svc)
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Dialogue.RetrieveK = 0
		_, err := NewService(cfg)
		assert.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestServiceIndexes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Indexes(ctx)
	require.NoError(t, err)
	ix, err := first.Get(core.CategoryCafe)
	require.NoError(t, err)
	assert.Zero(t, ix.Len())

	second, err := svc.Indexes(ctx)
	require.NoError(t, err)
	assert.Same(t, first, second)

	seedCafes(t, svc)
	svc.ReloadIndexes()
	third, err := svc.Indexes(ctx)
	require.NoError(t, err)
	ix, err = third.Get(core.CategoryCafe)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())
}

func TestServiceNewOrchestrator(t *testing.T) {
	t.Run("requires places", func(t *testing.T) {
		svc, _ := newTestService(t)
		_, err := svc.NewOrchestrator(context.Background())
		assert.ErrorIs(t, err, ErrPlacesRequired)
	})

	t.Run("answers a turn", func(t *testing.T) {
		svc, provider := newTestService(t, WithPlaces(places.NewFake()))
		seedCafes(t, svc)

		provider.GetMockClassifier().CompleteFunc = func(_ context.Context, msgs []ai.Message, _ ai.CallOptions) (string, error) {
			if strings.Contains(msgs[0].Content, "지리적 위치") {
				return `{"area": null, "point": null}`, nil
			}
			return "", nil
		}
		provider.GetMockAnswerer().CompleteFunc = func(context.Context, []ai.Message, ai.CallOptions) (string, error) {
			return "서울 카페 추천입니다.", nil
		}

		orch, err := svc.NewOrchestrator(context.Background())
		require.NoError(t, err)
		out, err := orch.Run(context.Background(), dialogue.TurnInput{Query: "디저트 카페 추천해줘"})
		require.NoError(t, err)
		assert.Equal(t, "서울 카페 추천입니다.", out.Answer)
		assert.NotEmpty(t, out.Candidates)
		assert.Equal(t, core.CategoryCafe, out.Context.LastMode)
	})
}

func TestServiceNewRecommender(t *testing.T) {
	svc, _ := newTestService(t)
	seedCafes(t, svc)

	rec, err := svc.NewRecommender(context.Background())
	require.NoError(t, err)
	defer rec.Release()

	res, err := rec.Recommend(context.Background(), &recommend.Profile{
		CafeTypes: []string{"디저트"},
		Visits:    []recommend.PlaceRef{{ID: 1, Category: core.CategoryCafe}},
	}, recommend.Options{K: 2, Categories: []core.Category{core.CategoryCafe}})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, core.CategoryCafe, res[0].Category)
	for _, item := range res[0].Items {
		assert.NotEqual(t, int64(1), item.PlaceID, "visited places are excluded")
	}
}

func TestServiceLocationTransfer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.LocationStores().AddAlias(ctx, storage.AliasKeyword, "강남역", "걍남역")
	require.NoError(t, err)

	dir := t.TempDir()
	stats, err := svc.ExportLocations(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KeywordAliases)

	other, _ := newTestService(t)
	stats, err = other.ImportLocations(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.KeywordAliases)

	aliases, err := other.LocationStores().Aliases(ctx, storage.AliasKeyword)
	require.NoError(t, err)
	assert.Equal(t, []string{"걍남역"}, aliases["강남역"])
}
