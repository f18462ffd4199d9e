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

package place

import "errors"

var (
	// ErrModelRequired is returned when no chat model is provided.
	ErrModelRequired = errors.New("chat model required")

	// ErrAutocompleterRequired is returned when no autocomplete service is provided.
	ErrAutocompleterRequired = errors.New("autocompleter required")

	// ErrAliasRepositoryRequired is returned when no alias store is provided.
	ErrAliasRepositoryRequired = errors.New("alias repository required")
)
