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

package storage

import (
	"context"

	"github.com/poiesic/wayfinder/core"
)

// AliasKind selects one of the two disjoint alias maps.
type AliasKind string

const (
	// AliasAdmin holds administrative-area aliases (구, 동, ...).
	AliasAdmin AliasKind = "admin"
	// AliasKeyword holds landmark, station and building aliases.
	AliasKeyword AliasKind = "keyword"
)

// Valid reports whether k names a known alias map.
func (k AliasKind) Valid() bool {
	return k == AliasAdmin || k == AliasKeyword
}

// Repository provides operations shared by every repository.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// Close releases resources held by the repository.
	Close() error
}

// AliasRepository persists canonical name -> aliases mappings.
type AliasRepository interface {
	Repository
	// Aliases returns the full canonical -> aliases map for kind.
	// Corrupt entries are skipped.
	Aliases(ctx context.Context, kind AliasKind) (map[string][]string, error)

	// AddAlias appends alias to canonical's list as one atomic upsert.
	// Returns false if either value is empty or the alias is already present.
	AddAlias(ctx context.Context, kind AliasKind, canonical, alias string) (bool, error)

	// ReplaceAliases rewrites the whole map for kind.
	ReplaceAliases(ctx context.Context, kind AliasKind, data map[string][]string) error
}

// AnchorCacheRepository persists live-resolution results keyed by
// normalized place text.
type AnchorCacheRepository interface {
	Repository
	// GetAnchor returns the cached entry for key.
	// Returns ErrNotFound if absent or undecodable.
	GetAnchor(ctx context.Context, key string) (*core.AnchorCacheEntry, error)

	// PutAnchor writes entry under key, replacing any previous value.
	PutAnchor(ctx context.Context, key string, entry *core.AnchorCacheEntry) error

	// Anchors returns every decodable cache entry.
	Anchors(ctx context.Context) (map[string]*core.AnchorCacheEntry, error)

	// ReplaceAnchors rewrites the whole cache.
	ReplaceAnchors(ctx context.Context, data map[string]*core.AnchorCacheEntry) error
}

// GeoCenterRepository persists the pre-seeded gazetteer.
type GeoCenterRepository interface {
	Repository
	// GetGeoCenter returns the entry whose name equals name exactly.
	// Returns ErrNotFound if absent or undecodable.
	GetGeoCenter(ctx context.Context, name string) (*core.GeoCenter, error)

	// PutGeoCenter writes or replaces an entry.
	PutGeoCenter(ctx context.Context, name string, center *core.GeoCenter) error

	// GeoCenters returns every decodable entry.
	GeoCenters(ctx context.Context) (map[string]*core.GeoCenter, error)

	// ReplaceGeoCenters rewrites the whole gazetteer.
	ReplaceGeoCenters(ctx context.Context, data map[string]*core.GeoCenter) error
}

// LocationStores groups the four location repositories used by the
// resolver and the place corrector.
type LocationStores interface {
	AliasRepository
	AnchorCacheRepository
	GeoCenterRepository
}

// POIRepository persists canonical POI records with their embeddings.
type POIRepository interface {
	Repository
	// PutPOIs inserts or replaces POIs keyed by (category, place id).
	PutPOIs(ctx context.Context, pois ...*core.POI) error

	// GetPOI retrieves a single POI.
	// Returns ErrNotFound if it doesn't exist.
	GetPOI(ctx context.Context, category core.Category, id int64) (*core.POI, error)

	// GetPOIs retrieves POIs by id, skipping missing ones.
	GetPOIs(ctx context.Context, category core.Category, ids ...int64) ([]*core.POI, error)

	// ListPOIs returns every POI in category ordered by place id.
	ListPOIs(ctx context.Context, category core.Category) ([]*core.POI, error)

	// CountPOIs returns the number of POIs stored for category.
	CountPOIs(ctx context.Context, category core.Category) (int, error)

	// DeletePOIs removes POIs by id.
	// Returns ErrNotFound if any POI doesn't exist.
	DeletePOIs(ctx context.Context, category core.Category, ids ...int64) error
}
