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

// Package indexer builds the POI store from raw category dumps.
//
// Raw records come in several shapes depending on their source. Each one
// is normalized into a core.POI, given a category-specific embedding text,
// embedded in batches on a worker pool with retry and backoff, and written
// to the POI repository. Records already stored with a vector are skipped
// unless a full rebuild is requested, so an interrupted run can be resumed.
package indexer
