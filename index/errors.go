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

package index

import "errors"

var (
	// ErrRepositoryRequired is returned when no POI repository is provided.
	ErrRepositoryRequired = errors.New("POI repository required")

	// ErrIndexNotLoaded is returned when a category has no index.
	ErrIndexNotLoaded = errors.New("index not loaded")

	// ErrDimensionMismatch is returned when a query vector does not match the index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
