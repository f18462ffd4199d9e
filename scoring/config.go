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

package scoring

import (
	"errors"
	"fmt"

	"github.com/poiesic/wayfinder/core"
)

var (
	// ErrIndexRequired is returned when no index is provided.
	ErrIndexRequired = errors.New("index required")

	// ErrInvalidConfig is returned for negative weights or a non-positive scale.
	ErrInvalidConfig = errors.New("invalid scorer config")
)

// Config holds the per-category ranking weights.
type Config struct {
	RecentWeight    float64 `koanf:"recent_weight" yaml:"recent_weight"`
	DistanceWeight  float64 `koanf:"distance_weight" yaml:"distance_weight"`
	DistanceScaleKM float64 `koanf:"distance_scale_km" yaml:"distance_scale_km"`
	// DistanceMaxKM is a hard cutoff; 0 disables it.
	DistanceMaxKM float64 `koanf:"distance_max_km" yaml:"distance_max_km"`
}

// DefaultConfig returns the weights for category. Cafes decay fastest with
// distance, tourist spots slowest.
func DefaultConfig(category core.Category) Config {
	switch category {
	case core.CategoryCafe:
		return Config{RecentWeight: 0.3, DistanceWeight: 0.3, DistanceScaleKM: 1.5}
	case core.CategoryRestaurant:
		return Config{RecentWeight: 0.3, DistanceWeight: 0.25, DistanceScaleKM: 2}
	default:
		return Config{RecentWeight: 0.3, DistanceWeight: 0.15, DistanceScaleKM: 5}
	}
}

// DefaultConfigs returns DefaultConfig for every indexed category.
func DefaultConfigs() map[core.Category]Config {
	out := make(map[core.Category]Config, len(core.Categories))
	for _, c := range core.Categories {
		out[c] = DefaultConfig(c)
	}
	return out
}

// Validate checks the weights.
func (c Config) Validate() error {
	if c.RecentWeight < 0 || c.DistanceWeight < 0 {
		return fmt.Errorf("%w: weights must be non-negative", ErrInvalidConfig)
	}
	if c.DistanceScaleKM <= 0 {
		return fmt.Errorf("%w: distance_scale_km must be positive", ErrInvalidConfig)
	}
	if c.DistanceMaxKM < 0 {
		return fmt.Errorf("%w: distance_max_km must be non-negative", ErrInvalidConfig)
	}
	return nil
}
