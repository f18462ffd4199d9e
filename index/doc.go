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

// Package index holds the in-memory per-category POI indexes.
//
// An Index is built once from the POI repository and is read-only
// afterwards, so concurrent turns can share it without locking. It keeps
// parallel slices of POIs, unit-length embedding vectors and pre-tokenized
// embedding text, plus a place id lookup. Spatial and address pre-filters
// return positions into those slices.
package index
