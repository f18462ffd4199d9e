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

import "math"

const earthRadiusKM = 6371.0

// HaversineKM returns the great-circle distance between a and b in kilometers.
func HaversineKM(a, b Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKM * 2 * math.Asin(math.Sqrt(h))
}

// NearestDistanceKM returns the distance from p to the closest center.
// ok is false when centers is empty.
func NearestDistanceKM(p Coordinate, centers []Coordinate) (dist float64, ok bool) {
	for i, c := range centers {
		d := HaversineKM(p, c)
		if i == 0 || d < dist {
			dist = d
		}
		ok = true
	}
	return dist, ok
}

// Centroid returns the arithmetic mean of the given coordinates.
func Centroid(points []Coordinate) (Coordinate, bool) {
	if len(points) == 0 {
		return Coordinate{}, false
	}
	var lat, lng float64
	for _, p := range points {
		lat += p.Lat
		lng += p.Lng
	}
	n := float64(len(points))
	return Coordinate{Lat: lat / n, Lng: lng / n}, true
}

// Bounds is an axis-aligned latitude/longitude box.
type Bounds struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// SeoulBounds is the sanity gate applied to live geocoding results.
var SeoulBounds = Bounds{MinLat: 37.4, MaxLat: 37.7, MinLng: 126.7, MaxLng: 127.2}

// Contains reports whether c lies inside the box, edges included.
func (b Bounds) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}
