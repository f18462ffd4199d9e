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

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

// POIRepository implements storage.POIRepository for BadgerDB.
type POIRepository struct {
	backend *Backend
}

var _ storage.POIRepository = (*POIRepository)(nil)

// NewPOIRepository creates a new POIRepository.
func NewPOIRepository(backend *Backend) *POIRepository {
	return &POIRepository{
		backend: backend,
	}
}

// Close releases resources. POIRepository has no resources to release.
func (r *POIRepository) Close() error {
	return nil
}

// PutPOIs inserts or replaces POIs.
// Large batches are split across transactions.
func (r *POIRepository) PutPOIs(ctx context.Context, pois ...*core.POI) error {
	for _, poi := range pois {
		if err := core.ValidatePOI(poi); err != nil {
			return err
		}
	}

	for len(pois) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		written := 0
		err := r.backend.Update(func(tx *badger.Txn) error {
			written = 0
			for _, poi := range pois {
				data, err := storage.Marshal(poi)
				if err != nil {
					return err
				}
				if err := tx.Set(makePOIKey(poi.Category, poi.ID), data); err != nil {
					if errors.Is(err, badger.ErrTxnTooBig) && written > 0 {
						return nil
					}
					return err
				}
				written++
			}
			return nil
		})
		if err != nil {
			return err
		}
		pois = pois[written:]
	}
	return nil
}

// GetPOI retrieves a single POI.
func (r *POIRepository) GetPOI(ctx context.Context, category core.Category, id int64) (*core.POI, error) {
	var poi *core.POI
	err := r.backend.View(func(tx *badger.Txn) error {
		var err error
		poi, err = get[core.POI](r.backend, tx, makePOIKey(category, id))
		return err
	})
	return poi, err
}

// GetPOIs retrieves POIs by id, skipping missing ones.
func (r *POIRepository) GetPOIs(ctx context.Context, category core.Category, ids ...int64) ([]*core.POI, error) {
	var result []*core.POI
	err := r.backend.View(func(tx *badger.Txn) error {
		for _, id := range ids {
			poi, err := get[core.POI](r.backend, tx, makePOIKey(category, id))
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			result = append(result, poi)
		}
		return nil
	})
	return result, err
}

// ListPOIs returns every POI in category ordered by place id.
func (r *POIRepository) ListPOIs(ctx context.Context, category core.Category) ([]*core.POI, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidCategory, category)
	}
	var result []*core.POI
	err := r.backend.View(func(tx *badger.Txn) error {
		return scan(r.backend, tx, makePOIPrefix(category), func(_ []byte, poi *core.POI) error {
			result = append(result, poi)
			return ctx.Err()
		})
	})
	return result, err
}

// CountPOIs returns the number of POIs stored for category.
func (r *POIRepository) CountPOIs(ctx context.Context, category core.Category) (int, error) {
	count := 0
	err := r.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePOIPrefix(category)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// DeletePOIs removes POIs by id.
func (r *POIRepository) DeletePOIs(ctx context.Context, category core.Category, ids ...int64) error {
	return r.backend.Update(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePOIKey(category, id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return storage.ErrNotFound
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}
