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

package config

import (
	"time"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/dialogue"
	"github.com/poiesic/wayfinder/indexer"
	"github.com/poiesic/wayfinder/scoring"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "wayfinder.yml"

// DefaultConfig returns a configuration for a local OpenAI-compatible
// server and the Seoul-biased Google client.
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		DBPath: "wayfinder.db",
		AI: AIConfig{
			EmbeddingHost:     aiDefaults.EmbeddingHost,
			ClassifierHost:    aiDefaults.ClassifierHost,
			EmbeddingModel:    aiDefaults.EmbeddingModel,
			ClassifierModel:   aiDefaults.ClassifierModel,
			APIKey:            aiDefaults.APIKey,
			AnswerTemperature: aiDefaults.AnswerTemperature,
		},
		Google: GoogleConfig{
			RPS:         10,
			Burst:       5,
			Timeout:     10 * time.Second,
			BiasLat:     37.5665,
			BiasLng:     126.9780,
			BiasRadiusM: 30000,
		},
		Dialogue: dialogue.DefaultConfig(),
		Scoring: ScoringConfig{
			Tourspot:   scoring.DefaultConfig(core.CategoryTourspot),
			Cafe:       scoring.DefaultConfig(core.CategoryCafe),
			Restaurant: scoring.DefaultConfig(core.CategoryRestaurant),
		},
		Indexer: *indexer.DefaultConfig(),
		Recommend: RecommendConfig{
			PoolSize: len(core.Categories),
			Rerank:   true,
		},
	}
}
