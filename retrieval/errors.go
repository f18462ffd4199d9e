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

package retrieval

import (
	"errors"

	"github.com/poiesic/wayfinder/index"
)

var (
	// ErrIndexRequired is returned when no index set is provided.
	ErrIndexRequired = errors.New("index set required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidCount is returned for a non-positive result count.
	ErrInvalidCount = errors.New("result count must be positive")

	// ErrDimensionMismatch is reported when the query vector does not fit the index.
	ErrDimensionMismatch = index.ErrDimensionMismatch
)
