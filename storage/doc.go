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

// Package storage provides the storage abstraction layer for wayfinder.
//
// This package defines repository interfaces that decouple persistence from
// the resolver, the corrector and the indexes. Two groups of data live here:
//
//   - Location stores: administrative and keyword alias maps, the anchor
//     cache and the configured geo-centers. Small, read at the start of
//     every resolution, written after validated corrections and successful
//     live lookups.
//   - POI records: the canonical per-category point-of-interest rows with
//     their embeddings, read once at startup to build the in-memory indexes.
//
// # Corruption
//
// Values are stored as JSON. A value that fails to decode is logged and
// treated as absent; the resolver can always fall back to a live lookup.
//
// # Usage
//
//	stores, err := badger.NewStores(badger.Config{Path: "/path/to/db"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer stores.Close()
//
// Use in tests with in-memory storage:
//
//	stores, err := badger.NewMemoryStores()
//
// # Thread Safety
//
// All repository implementations must be thread-safe. Single-key updates
// such as AddAlias and PutAnchor are atomic read-modify-write operations.
package storage
