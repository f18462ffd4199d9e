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

package dialogue

import "errors"

var (
	// ErrModelRequired is returned when a chat model dependency is missing.
	ErrModelRequired = errors.New("chat model required")

	// ErrDependencyRequired is returned when a pipeline stage is missing.
	ErrDependencyRequired = errors.New("pipeline dependency required")

	// ErrEmptyQuery is returned for a turn without query text.
	ErrEmptyQuery = errors.New("query is empty")

	// ErrNoAnswer is returned by Run when the stream ended without an answer.
	ErrNoAnswer = errors.New("turn produced no answer")
)
