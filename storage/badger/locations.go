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
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

// LocationRepository implements the alias, anchor cache and geo-center
// repositories on a shared Backend. Alias appends are serialized per key;
// whole-map replacement excludes every append.
type LocationRepository struct {
	backend *Backend
	keys    *keyLocks
	replace sync.RWMutex
}

var _ storage.LocationStores = (*LocationRepository)(nil)

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(backend *Backend) *LocationRepository {
	return &LocationRepository{
		backend: backend,
		keys:    newKeyLocks(),
	}
}

// Close releases resources. LocationRepository has no resources to release.
func (r *LocationRepository) Close() error {
	return nil
}

// Aliases returns the canonical -> aliases map for kind.
func (r *LocationRepository) Aliases(ctx context.Context, kind storage.AliasKind) (map[string][]string, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", storage.ErrInvalidAliasKind, kind)
	}
	out := map[string][]string{}
	err := r.backend.View(func(tx *badger.Txn) error {
		return scan(r.backend, tx, makeAliasPrefix(kind), func(suffix []byte, aliases *[]string) error {
			out[string(suffix)] = *aliases
			return nil
		})
	})
	return out, err
}

// AddAlias appends alias to canonical's list in one transaction.
func (r *LocationRepository) AddAlias(ctx context.Context, kind storage.AliasKind, canonical, alias string) (bool, error) {
	if !kind.Valid() {
		return false, fmt.Errorf("%w: %q", storage.ErrInvalidAliasKind, kind)
	}
	if canonical == "" || alias == "" {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	key := makeAliasKey(kind, canonical)

	r.replace.RLock()
	defer r.replace.RUnlock()
	unlock := r.keys.Lock(string(key))
	defer unlock()

	var added bool
	err := r.backend.Update(func(tx *badger.Txn) error {
		added = false
		current, err := get[[]string](r.backend, tx, key)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
		var aliases []string
		if current != nil {
			aliases = *current
		}
		if slices.Contains(aliases, alias) {
			return nil
		}
		added = true
		return put(tx, key, append(aliases, alias))
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// ReplaceAliases rewrites the whole map for kind.
func (r *LocationRepository) ReplaceAliases(ctx context.Context, kind storage.AliasKind, data map[string][]string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", storage.ErrInvalidAliasKind, kind)
	}
	r.replace.Lock()
	defer r.replace.Unlock()
	return r.backend.Update(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, makeAliasPrefix(kind)); err != nil {
			return err
		}
		for canonical, aliases := range data {
			if canonical == "" {
				continue
			}
			if aliases == nil {
				aliases = []string{}
			}
			if err := put(tx, makeAliasKey(kind, canonical), aliases); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetAnchor returns the cached entry for key.
func (r *LocationRepository) GetAnchor(ctx context.Context, key string) (*core.AnchorCacheEntry, error) {
	var entry *core.AnchorCacheEntry
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		entry, err = get[core.AnchorCacheEntry](r.backend, tx, makeAnchorKey(key))
		return err
	})
	return entry, err
}

// PutAnchor writes entry under key.
func (r *LocationRepository) PutAnchor(ctx context.Context, key string, entry *core.AnchorCacheEntry) error {
	if key == "" || entry == nil {
		return storage.ErrInvalidQuery
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return put(tx, makeAnchorKey(key), entry)
	})
}

// Anchors returns every decodable cache entry.
func (r *LocationRepository) Anchors(ctx context.Context) (map[string]*core.AnchorCacheEntry, error) {
	out := map[string]*core.AnchorCacheEntry{}
	err := r.backend.View(func(tx *badger.Txn) error {
		return scan(r.backend, tx, []byte(anchorPrefix), func(suffix []byte, entry *core.AnchorCacheEntry) error {
			out[string(suffix)] = entry
			return nil
		})
	})
	return out, err
}

// ReplaceAnchors rewrites the whole cache.
func (r *LocationRepository) ReplaceAnchors(ctx context.Context, data map[string]*core.AnchorCacheEntry) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, []byte(anchorPrefix)); err != nil {
			return err
		}
		for key, entry := range data {
			if key == "" || entry == nil {
				continue
			}
			if err := put(tx, makeAnchorKey(key), entry); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetGeoCenter returns the gazetteer entry for name.
func (r *LocationRepository) GetGeoCenter(ctx context.Context, name string) (*core.GeoCenter, error) {
	var center *core.GeoCenter
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		center, err = get[core.GeoCenter](r.backend, tx, makeGeoCenterKey(name))
		return err
	})
	return center, err
}

// PutGeoCenter writes or replaces a gazetteer entry.
func (r *LocationRepository) PutGeoCenter(ctx context.Context, name string, center *core.GeoCenter) error {
	if name == "" || center == nil {
		return storage.ErrInvalidQuery
	}
	return r.backend.Update(func(tx *badger.Txn) error {
		return put(tx, makeGeoCenterKey(name), center)
	})
}

// GeoCenters returns every decodable gazetteer entry.
func (r *LocationRepository) GeoCenters(ctx context.Context) (map[string]*core.GeoCenter, error) {
	out := map[string]*core.GeoCenter{}
	err := r.backend.View(func(tx *badger.Txn) error {
		return scan(r.backend, tx, []byte(geoCenterPrefix), func(suffix []byte, center *core.GeoCenter) error {
			out[string(suffix)] = center
			return nil
		})
	})
	return out, err
}

// ReplaceGeoCenters rewrites the whole gazetteer.
func (r *LocationRepository) ReplaceGeoCenters(ctx context.Context, data map[string]*core.GeoCenter) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		if err := deletePrefix(tx, []byte(geoCenterPrefix)); err != nil {
			return err
		}
		for name, center := range data {
			if name == "" || center == nil {
				continue
			}
			if err := put(tx, makeGeoCenterKey(name), center); err != nil {
				return err
			}
		}
		return nil
	})
}
