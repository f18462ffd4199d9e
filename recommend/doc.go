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

// Package recommend produces per-category recommendations from a user
// profile, without a query or dialogue.
//
// Each category is handled independently: the profile is rendered into a
// category-specific text, embedded, and ranked by the category's scorer
// using the user's recent POIs for the recency and distance signals.
// Categories run concurrently on a worker pool. An optional reranker
// reorders each category's shortlist against the profile text.
package recommend
