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

// Package dialogue runs one conversational turn through the retrieval graph.
//
// A turn walks a fixed state graph: the query is routed on rule-based
// intent, normalized, its place mention is extracted and corrected, an
// anchor is resolved (or a previous one is widened), candidates are
// retrieved, filtered by location and reranked, and finally an answer is
// streamed. Each node reads the current State and returns a Patch; the
// orchestrator applies the patch and asks the pure Next function where to
// go. Expected "not found" outcomes never fail a turn; they are carried as
// flags on the state and turned into clarifying answers.
//
// Basic usage:
//
//	orch, err := dialogue.NewOrchestrator(deps)
//	for ev := range orch.Stream(ctx, dialogue.TurnInput{Query: "강남역 근처 카페"}) {
//		...
//	}
package dialogue
