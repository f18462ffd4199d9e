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

// Package mock provides deterministic test doubles for the ai package.
//
// # Usage
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{1, 0, 0}, nil
//	}
//
//	chat := mock.NewScriptedChatModel(map[string]string{
//	    "지리적 위치": `{"area": null, "point": "강남역"}`,
//	}, "")
//
// # Default Behavior
//
//   - MockEmbedder: returns unit vectors derived from a hash of the text
//   - MockChatModel: returns the reply of the first script key found in the
//     prompt, or the fallback reply
//   - MockProvider: aggregates one embedder and two chat models
package mock
