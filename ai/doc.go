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

// Package ai provides abstractions for the model services wayfinder consumes.
//
// Two capabilities are used throughout the pipeline:
//
//   - Embedder: turns text into a normalized vector
//   - ChatModel: completes a list of messages, optionally streaming tokens
//
// An AIProvider bundles one embedder with two chat models: a small
// deterministic classifier used for extraction, correction, mode detection
// and reranking, and an answer model used for streamed user-facing replies.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo against any OpenAI-compatible host
//   - ai/mock: deterministic doubles for tests
//
// # Parse or fall back
//
// Model output is never trusted to be well formed. Call sites decode replies
// with ParseJSON, which yields a Result; each call site then picks its own
// documented default with UnwrapOr instead of propagating the failure.
package ai
