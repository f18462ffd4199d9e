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

package indexer

import (
	"fmt"
	"strings"

	"github.com/poiesic/wayfinder/core"
)

// Canonicalize normalizes a raw record into a core.POI for category.
// The embedding text is filled in; the vector is left empty.
func Canonicalize(category core.Category, raw *RawPOI) (*core.POI, error) {
	id := raw.PlaceID
	if !id.Valid {
		id = raw.ID
	}
	if !id.Valid {
		return nil, ErrMissingID
	}

	poi := &core.POI{
		ID:          id.Value,
		Category:    category,
		Province:    strings.TrimSpace(raw.Province),
		Name:        firstNonEmpty(raw.Name, raw.Title),
		Summary:     firstNonEmpty(raw.SummaryOneSentence, raw.Summary),
		Description: strings.TrimSpace(raw.Description),
		Content:     strings.TrimSpace(raw.Content),
		Kind:        firstNonEmpty(raw.Kind, raw.SubType),
		Address:     strings.TrimSpace(raw.Address),
		City:        strings.TrimSpace(raw.City),
		District:    strings.TrimSpace(raw.District),
		Dong:        strings.TrimSpace(raw.Dong),
		Road:        strings.TrimSpace(raw.Road),
		Keywords:    core.AppendUnique(nil, raw.Keywords...),
		Location:    rawCoordinate(raw),
		Views:       optional(raw.Views),
		Likes:       optional(raw.Likes),
		Bookmarks:   optional(raw.Bookmarks),
	}
	if raw.Rating.Valid {
		poi.Rating = raw.Rating.Value
	}
	switch {
	case raw.Reviews.Valid:
		poi.Reviews = raw.Reviews.Value
	case raw.Counts.Valid:
		poi.Reviews = raw.Counts.Value
	}
	if poi.Address == "" && raw.Location != nil {
		poi.Address = strings.TrimSpace(raw.Location.Addr1)
	}
	if poi.Kind == "" && category == core.CategoryCafe {
		poi.Kind = cafeKind(poi.Content)
	}

	if err := core.ValidatePOI(poi); err != nil {
		return nil, fmt.Errorf("place %d: %w", poi.ID, err)
	}

	poi.Text = EmbeddingText(poi, raw)
	poi.TextHash = core.TextHash(poi.Text)
	return poi, nil
}

func rawCoordinate(raw *RawPOI) *core.Coordinate {
	lat := firstValid(raw.Lat, raw.Latitude)
	lng := firstValid(raw.Lng, raw.Lon, raw.Longitude)
	if raw.Location != nil {
		if !lat.Valid {
			lat = firstValid(raw.Location.Lat, raw.Location.Latitude)
		}
		if !lng.Valid {
			lng = firstValid(raw.Location.Lng, raw.Location.Lon, raw.Location.Longitude)
		}
	}
	if !lat.Valid || !lng.Valid {
		return nil
	}
	c := core.Coordinate{Lat: lat.Value, Lng: lng.Value}
	if core.ValidateCoordinate(c) != nil {
		return nil
	}
	return &c
}

// cafeKind extracts the sub-type from a "카페 > 디저트카페 편의시설 ..." content line.
func cafeKind(content string) string {
	idx := strings.LastIndex(content, ">")
	if idx < 0 {
		return ""
	}
	kind := content[idx+len(">"):]
	if cut := strings.Index(kind, "편의시설"); cut >= 0 {
		kind = kind[:cut]
	}
	return strings.TrimSpace(kind)
}

func firstValid(values ...flexFloat) flexFloat {
	for _, v := range values {
		if v.Valid {
			return v
		}
	}
	return flexFloat{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optional(v flexInt) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Value
	return &n
}
