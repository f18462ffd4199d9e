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
	"sync"
)

// Fake is an in-memory Service for tests and offline runs.
//
// Predictions are keyed by input text; a key of the form input+"|"+filter
// takes precedence for filtered requests.
type Fake struct {
	Predictions map[string][]Prediction
	Geocodes    map[string]*Geocode
	Addresses   map[string]*Geocode
	Err         error

	mu                sync.Mutex
	autocompleteCalls []string
	geocodeCalls      []string
}

var _ Service = (*Fake)(nil)

// NewFake creates an empty fake.
func NewFake() *Fake {
	return &Fake{
		Predictions: map[string][]Prediction{},
		Geocodes:    map[string]*Geocode{},
		Addresses:   map[string]*Geocode{},
	}
}

// Autocomplete returns the scripted predictions for input.
func (f *Fake) Autocomplete(_ context.Context, input string, limit int, typeFilter string) ([]Prediction, error) {
	f.mu.Lock()
	f.autocompleteCalls = append(f.autocompleteCalls, input+"|"+typeFilter)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	preds, ok := f.Predictions[input+"|"+typeFilter]
	if !ok {
		preds = f.Predictions[input]
	}
	n := max(1, limit)
	if len(preds) > n {
		preds = preds[:n]
	}
	return append([]Prediction(nil), preds...), nil
}

// GeocodePlaceID returns the scripted geocode for placeID.
func (f *Fake) GeocodePlaceID(_ context.Context, placeID string) (*Geocode, error) {
	f.mu.Lock()
	f.geocodeCalls = append(f.geocodeCalls, placeID)
	f.mu.Unlock()

	if f.Err != nil {
		return nil, f.Err
	}
	return f.Geocodes[placeID], nil
}

// GeocodeAddress returns the scripted geocode for address.
func (f *Fake) GeocodeAddress(_ context.Context, address string) (*Geocode, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Addresses[address], nil
}

// AutocompleteCalls returns the recorded "input|filter" requests.
func (f *Fake) AutocompleteCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.autocompleteCalls...)
}

// GeocodeCalls returns the recorded place ids.
func (f *Fake) GeocodeCalls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.geocodeCalls...)
}
