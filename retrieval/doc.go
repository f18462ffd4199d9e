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

// Package retrieval implements hybrid candidate retrieval.
//
// A query is scored against one category index as
//
//	0.6 * dense + 0.4 * lexical
//
// where dense is the cosine similarity rescaled to [0, 1] and lexical is the
// Okapi BM25 score normalized by the subset maximum. Both are computed only
// over the entries that pass the anchor radius or admin-term pre-filter.
//
// Filters fail closed. When a location constraint or a matched synonym group
// leaves nothing, Retrieve returns an empty Result carrying a Reason rather
// than falling back to unfiltered ranking.
package retrieval
