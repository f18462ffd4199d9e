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

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category identifies one of the POI indexes.
type Category string

const (
	CategoryTourspot   Category = "tourspot"
	CategoryCafe       Category = "cafe"
	CategoryRestaurant Category = "restaurant"
	CategoryUnknown    Category = "unknown"
)

// Categories lists the indexed categories in their canonical order.
var Categories = []Category{CategoryTourspot, CategoryCafe, CategoryRestaurant}

// ParseCategory maps a free-form string to a Category.
// Anything that is not an indexed category becomes CategoryUnknown.
func ParseCategory(s string) Category {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryTourspot:
		return CategoryTourspot
	case CategoryCafe:
		return CategoryCafe
	case CategoryRestaurant:
		return CategoryRestaurant
	default:
		return CategoryUnknown
	}
}

// Valid reports whether c names an indexed category.
func (c Category) Valid() bool {
	return c == CategoryTourspot || c == CategoryCafe || c == CategoryRestaurant
}

// IsFood reports whether c is one of the food categories.
func (c Category) IsFood() bool {
	return c == CategoryCafe || c == CategoryRestaurant
}

// Label returns the user-facing Korean label for the category.
func (c Category) Label() string {
	switch c {
	case CategoryTourspot:
		return "놀거리"
	case CategoryRestaurant:
		return "맛집"
	case CategoryCafe:
		return "카페"
	default:
		return "추천"
	}
}

// Coordinate is a latitude/longitude pair in degrees.
// It serializes as a two element JSON array, [lat, lng].
type Coordinate struct {
	Lat float64
	Lng float64
}

// MarshalJSON implements json.Marshaler.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{c.Lat, c.Lng})
}

// UnmarshalJSON implements json.Unmarshaler.
// Both the array form and an object form with lat/lng keys are accepted.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("%w: expected [lat, lng], got %d values", ErrInvalidCoordinate, len(pair))
		}
		c.Lat, c.Lng = pair[0], pair[1]
		return nil
	}
	var obj struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCoordinate, err)
	}
	if obj.Lat == nil || obj.Lng == nil {
		return fmt.Errorf("%w: missing lat or lng", ErrInvalidCoordinate)
	}
	c.Lat, c.Lng = *obj.Lat, *obj.Lng
	return nil
}

// PlaceMention holds the free-text location fragments pulled from a query.
// Area is an administrative unit, Point a landmark, station or building.
// An empty string means the fragment is absent.
type PlaceMention struct {
	Area  string `json:"area,omitempty"`
	Point string `json:"point,omitempty"`
}

// IsEmpty reports whether neither fragment is present.
func (p PlaceMention) IsEmpty() bool {
	return strings.TrimSpace(p.Area) == "" && strings.TrimSpace(p.Point) == ""
}

// Text joins the mention into the single string used for resolution.
// The area is prefixed to the point unless the point already contains it.
func (p PlaceMention) Text() string {
	area := strings.TrimSpace(p.Area)
	point := strings.TrimSpace(p.Point)
	switch {
	case point == "":
		return area
	case area == "" || strings.Contains(point, area):
		return point
	default:
		return area + " " + point
	}
}

// Label returns the most specific fragment, for user-facing messages.
func (p PlaceMention) Label() string {
	if point := strings.TrimSpace(p.Point); point != "" {
		return point
	}
	return strings.TrimSpace(p.Area)
}

// AnchorSource records which resolution path produced an anchor.
type AnchorSource string

const (
	SourceGeoCenters   AnchorSource = "geo_centers"
	SourceAnchorCache  AnchorSource = "anchor_cache"
	SourceAutocomplete AnchorSource = "autocomplete+geocode"
	SourceContext      AnchorSource = "context"
)

// Radius defaults in kilometers.
const (
	FallbackRadiusKM  = 2.0
	RadiusStepKM      = 1.0
	MaxRadiusKM       = 10.0
	defaultTourRadius = 3.0
	defaultFoodRadius = 2.0
)

// RadiusMap holds the search radius in kilometers per category.
type RadiusMap map[Category]float64

// DefaultRadii returns the radius map written for freshly resolved anchors.
func DefaultRadii() RadiusMap {
	return RadiusMap{
		CategoryRestaurant: defaultFoodRadius,
		CategoryCafe:       defaultFoodRadius,
		CategoryTourspot:   defaultTourRadius,
	}
}

// For returns the radius for c, falling back to the category default and
// then to FallbackRadiusKM.
func (r RadiusMap) For(c Category) float64 {
	if v, ok := r[c]; ok && v > 0 {
		return v
	}
	if v, ok := DefaultRadii()[c]; ok {
		return v
	}
	return FallbackRadiusKM
}

// Clone returns an independent copy of the map.
func (r RadiusMap) Clone() RadiusMap {
	out := make(RadiusMap, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Anchor is a resolved geographic reference used to constrain retrieval.
type Anchor struct {
	Centers        []Coordinate `json:"centers"`
	RadiusByIntent RadiusMap    `json:"radius_by_intent"`
	Source         AnchorSource `json:"source"`
}

// Clone returns a deep copy of the anchor.
func (a *Anchor) Clone() *Anchor {
	if a == nil {
		return nil
	}
	return &Anchor{
		Centers:        append([]Coordinate(nil), a.Centers...),
		RadiusByIntent: a.RadiusByIntent.Clone(),
		Source:         a.Source,
	}
}

// RadiusFor returns the anchor's radius for c.
func (a *Anchor) RadiusFor(c Category) float64 {
	return a.RadiusByIntent.For(c)
}

// GeoCenter is a pre-seeded gazetteer entry with exact coordinates.
type GeoCenter struct {
	Centers        []Coordinate `json:"centers"`
	RadiusByIntent RadiusMap    `json:"radius_by_intent,omitempty"`
}

// AnchorCacheEntry is a persisted live-resolution result.
type AnchorCacheEntry struct {
	Lat            float64      `json:"lat"`
	Lng            float64      `json:"lng"`
	Address        string       `json:"address"`
	Query          string       `json:"query"`
	ResolvedName   string       `json:"resolved_name"`
	PlaceID        string       `json:"place_id,omitempty"`
	RadiusByIntent RadiusMap    `json:"radius_by_intent"`
	Source         AnchorSource `json:"source"`
}

// TextBlob is the text a cached entry is validated against.
func (e *AnchorCacheEntry) TextBlob() string {
	return strings.Join([]string{e.ResolvedName, e.Address, e.Query}, " ")
}

// POI is the canonical point-of-interest record. Every heterogeneous source
// shape is normalized into this form at load time.
type POI struct {
	ID          int64       `json:"place_id"`
	Category    Category    `json:"category"`
	Province    string      `json:"province,omitempty"`
	Name        string      `json:"name"`
	Summary     string      `json:"summary,omitempty"`
	Description string      `json:"description,omitempty"`
	Kind        string      `json:"kind,omitempty"`
	Content     string      `json:"content,omitempty"`
	Address     string      `json:"address,omitempty"`
	City        string      `json:"city,omitempty"`
	District    string      `json:"district,omitempty"`
	Dong        string      `json:"dong,omitempty"`
	Road        string      `json:"road,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
	Location    *Coordinate `json:"location,omitempty"`
	Views       *int64      `json:"views,omitempty"`
	Likes       *int64      `json:"likes,omitempty"`
	Bookmarks   *int64      `json:"bookmarks,omitempty"`
	Rating      float64     `json:"rating,omitempty"`
	Reviews     int64       `json:"reviews,omitempty"`
	Text        string      `json:"text"`
	TextHash    uint64      `json:"text_hash,omitempty"`
	Vector      []float32   `json:"vector,omitempty"`
}

// HasLocation reports whether the POI carries coordinates.
func (p *POI) HasLocation() bool {
	return p.Location != nil
}

// AddressBlob returns the lowercased address fields used for admin-term matching.
func (p *POI) AddressBlob() string {
	parts := []string{p.City, p.District, p.Dong, p.Road, p.Address}
	return strings.ToLower(strings.Join(parts, " "))
}

// SearchBlob returns the lowercased descriptive text used for keyword filters.
func (p *POI) SearchBlob() string {
	parts := []string{p.Name, p.Summary, p.Description, p.Kind, p.Content}
	parts = append(parts, p.Keywords...)
	return strings.ToLower(strings.Join(parts, " "))
}

// Blurb returns the one-line description shown to the LLM.
func (p *POI) Blurb() string {
	switch {
	case p.Summary != "":
		return p.Summary
	case p.Description != "":
		return p.Description
	default:
		return p.Content
	}
}

// ScoreComponents breaks a candidate score into its signals.
// Only populated when debugging is requested.
type ScoreComponents struct {
	Dense    float64 `json:"score_dense"`
	Lexical  float64 `json:"score_bm25"`
	Base     float64 `json:"score_base"`
	Recent   float64 `json:"score_recent"`
	Distance float64 `json:"score_distance"`
}

// Candidate is one ranked retrieval result. Candidates are never modified
// after creation; each ranking stage produces a new slice.
type Candidate struct {
	PlaceID    int64            `json:"place_id"`
	Category   Category         `json:"category"`
	Score      float64          `json:"score"`
	DistanceKM *float64         `json:"distance_km,omitempty"`
	Components *ScoreComponents `json:"components,omitempty"`
	POI        *POI             `json:"meta"`
}

// Name returns the POI name or a placeholder.
func (c Candidate) Name() string {
	if c.POI == nil || c.POI.Name == "" {
		return "장소"
	}
	return c.POI.Name
}
