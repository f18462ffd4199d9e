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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidAnchor indicates an Anchor failed validation.
	ErrInvalidAnchor = errors.New("invalid anchor")

	// ErrNoCenters indicates an anchor without any center coordinate.
	ErrNoCenters = errors.New("anchor has no centers")

	// ErrInvalidRadius indicates a non-positive radius.
	ErrInvalidRadius = errors.New("radius must be positive")

	// ErrInvalidCoordinate indicates a malformed or out of range coordinate.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrOutOfBounds indicates a coordinate outside the serviced area.
	ErrOutOfBounds = errors.New("coordinate outside service bounds")

	// ErrInvalidPOI indicates a POI failed validation.
	ErrInvalidPOI = errors.New("invalid poi")

	// ErrEmptyName indicates the POI Name field is empty.
	ErrEmptyName = errors.New("name cannot be empty")

	// ErrInvalidCategory indicates an unknown category value.
	ErrInvalidCategory = errors.New("invalid category")
)
