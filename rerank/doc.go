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

// Package rerank reorders a candidate shortlist with an LLM.
//
// The model is asked for a JSON array of candidate ids. Ids are
// deduplicated and range-checked, and a short selection is topped up from
// the remaining candidates in their original order. Any failure, whether
// an unreachable model, prose output or no usable id, falls back to the
// original order truncated to the requested count. Reranking never fails.
package rerank
