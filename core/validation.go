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

import "fmt"

// ValidateCoordinate checks that c is a real position on the globe.
func ValidateCoordinate(c Coordinate) error {
	if c.Lat < -90 || c.Lat > 90 || c.Lng < -180 || c.Lng > 180 {
		return fmt.Errorf("%w: (%f, %f)", ErrInvalidCoordinate, c.Lat, c.Lng)
	}
	return nil
}

// ValidateAnchor validates an Anchor according to domain rules.
//
// Validation rules:
//   - Centers must not be empty
//   - Every center must be a valid coordinate
//   - Every radius present must be positive
func ValidateAnchor(anchor *Anchor) error {
	if anchor == nil {
		return fmt.Errorf("%w: anchor is nil", ErrInvalidAnchor)
	}

	if len(anchor.Centers) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidAnchor, ErrNoCenters)
	}

	for _, c := range anchor.Centers {
		if err := ValidateCoordinate(c); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidAnchor, err)
		}
	}

	for category, radius := range anchor.RadiusByIntent {
		if radius <= 0 {
			return fmt.Errorf("%w: %w: %s=%f", ErrInvalidAnchor, ErrInvalidRadius, category, radius)
		}
	}

	return nil
}

// ValidatePOI validates a POI according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Category must be an indexed category
//   - Location, when present, must be a valid coordinate
//
// NOT validated (populated by the indexer):
//   - Vector
//   - Text
func ValidatePOI(poi *POI) error {
	if poi == nil {
		return fmt.Errorf("%w: poi is nil", ErrInvalidPOI)
	}

	if poi.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPOI, ErrEmptyName)
	}

	if !poi.Category.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrInvalidPOI, ErrInvalidCategory, poi.Category)
	}

	if poi.Location != nil {
		if err := ValidateCoordinate(*poi.Location); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPOI, err)
		}
	}

	return nil
}
