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

// Package scoring ranks the POIs of one category against a preference vector.
//
// The score of a POI is
//
//	base + recent_weight*recent + distance_weight*exp(-d/scale)
//
// where base is the cosine similarity to the preference vector, recent is the
// cosine similarity to the mean vector of the user's recent POIs in the same
// category, and d is the distance to an explicit origin or to the centroid of
// the recent POIs. POIs beyond the optional hard distance cutoff are removed.
//
// Results are walked in score order and POIs with placeholder metadata are
// skipped, scanning up to three times the requested count.
package scoring
