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

// Package resolver turns a place mention into a geographic anchor.
//
// Resolution runs through fixed tiers and stops at the first that answers:
//
//  1. alias substitution (keyword aliases, plus administrative aliases when
//     the mention ends in an administrative suffix)
//  2. the pre-seeded gazetteer of exact centers
//  3. the anchor cache, accepted only when its stored text overlaps the
//     mention's match, region and station tokens
//  4. live autocomplete, tiered and scored, followed by geocoding each
//     candidate until one lands inside the service bounds
//
// A successful live lookup is written to the anchor cache before Resolve
// returns. Concurrent resolutions of the same mention share one live lookup.
// Store and network failures are logged and treated as misses; Resolve
// itself never fails.
package resolver
