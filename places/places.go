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

package places

import (
	"context"
	"errors"
)

// TypeFilterRegions restricts autocomplete to administrative regions.
const TypeFilterRegions = "(regions)"

// Prediction is one autocomplete suggestion.
type Prediction struct {
	Description string   `json:"description"`
	PlaceID     string   `json:"place_id"`
	Types       []string `json:"types"`
}

// HasType reports whether the prediction carries any of the given types.
func (p Prediction) HasType(types map[string]bool) bool {
	for _, t := range p.Types {
		if types[t] {
			return true
		}
	}
	return false
}

// Geocode is a resolved position.
type Geocode struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Autocompleter suggests places for partial text.
type Autocompleter interface {
	// Autocomplete returns up to limit predictions. An empty typeFilter
	// means no type restriction.
	Autocomplete(ctx context.Context, input string, limit int, typeFilter string) ([]Prediction, error)
}

// Geocoder resolves places to coordinates. A nil Geocode with a nil error
// means the service had no answer.
type Geocoder interface {
	GeocodePlaceID(ctx context.Context, placeID string) (*Geocode, error)
	GeocodeAddress(ctx context.Context, address string) (*Geocode, error)
}

// Service combines both capabilities.
type Service interface {
	Autocompleter
	Geocoder
}

var (
	// ErrMissingAPIKey is returned when no API key is configured.
	ErrMissingAPIKey = errors.New("places: api key required")

	// ErrStatus is returned when the service answers with a non-OK status.
	ErrStatus = errors.New("places: unexpected status")
)
