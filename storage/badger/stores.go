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
	"errors"

	"github.com/poiesic/wayfinder/storage"
)

// Stores bundles the repositories that share one Backend.
type Stores struct {
	Backend   *Backend
	Locations *LocationRepository
	POIs      *POIRepository
}

// OpenStores opens a Badger database at path and builds every repository on it.
func OpenStores(path string) (*Stores, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newStores(backend), nil
}

func newStores(backend *Backend) *Stores {
	return &Stores{
		Backend:   backend,
		Locations: NewLocationRepository(backend),
		POIs:      NewPOIRepository(backend),
	}
}

// LocationStores returns the location repositories as the storage interface.
func (s *Stores) LocationStores() storage.LocationStores {
	return s.Locations
}

// POIRepository returns the POI repository as the storage interface.
func (s *Stores) POIRepository() storage.POIRepository {
	return s.POIs
}

// Close closes the repositories and then the backend.
func (s *Stores) Close() error {
	return errors.Join(s.Locations.Close(), s.POIs.Close(), s.Backend.Close())
}
