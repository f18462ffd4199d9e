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

// Config is the top-level service configuration, corresponding to
// wayfinder.yml.
type Config struct {
	// DBPath is the Badger directory holding POIs and location stores.
	DBPath    string          `yaml:"db_path" koanf:"db_path"`
	AI        AIConfig        `yaml:"ai" koanf:"ai"`
	Google    GoogleConfig    `yaml:"google" koanf:"google"`
	Dialogue  dialogue.Config `yaml:"dialogue" koanf:"dialogue"`
	Scoring   ScoringConfig   `yaml:"scoring" koanf:"scoring"`
	Indexer   indexer.Config  `yaml:"indexer" koanf:"indexer"`
	Recommend RecommendConfig `yaml:"recommend" koanf:"recommend"`
}

// AIConfig selects the embedding and chat endpoints.
type AIConfig struct {
	EmbeddingHost     string  `yaml:"embedding_host" koanf:"embedding_host"`
	ClassifierHost    string  `yaml:"classifier_host" koanf:"classifier_host"`
	EmbeddingModel    string  `yaml:"embedding_model" koanf:"embedding_model"`
	ClassifierModel   string  `yaml:"classifier_model" koanf:"classifier_model"`
	AnswerModel       string  `yaml:"answer_model" koanf:"answer_model"`
	APIKey            string  `yaml:"api_key" koanf:"api_key"`
	AnswerTemperature float64 `yaml:"answer_temperature" koanf:"answer_temperature"`
}

// GoogleConfig configures the Places and Geocoding client.
type GoogleConfig struct {
	APIKey  string        `yaml:"api_key" koanf:"api_key"`
	RPS     float64       `yaml:"rps" koanf:"rps"`
	Burst   int           `yaml:"burst" koanf:"burst"`
	Timeout time.Duration `yaml:"timeout" koanf:"timeout"`
	BiasLat float64       `yaml:"bias_lat" koanf:"bias_lat"`
	BiasLng float64       `yaml:"bias_lng" koanf:"bias_lng"`
	// BiasRadiusM is the autocomplete bias radius in meters.
	BiasRadiusM int `yaml:"bias_radius_m" koanf:"bias_radius_m"`
}

// ScoringConfig holds the scorer weights per category.
type ScoringConfig struct {
	Tourspot   scoring.Config `yaml:"tourspot" koanf:"tourspot"`
	Cafe       scoring.Config `yaml:"cafe" koanf:"cafe"`
	Restaurant scoring.Config `yaml:"restaurant" koanf:"restaurant"`
}

// For returns the weights of c.
func (s ScoringConfig) For(c core.Category) scoring.Config {
	switch c {
	case core.CategoryCafe:
		return s.Cafe
	case core.CategoryRestaurant:
		return s.Restaurant
	default:
		return s.Tourspot
	}
}

// RecommendConfig tunes the standalone recommendation path.
type RecommendConfig struct {
	PoolSize int  `yaml:"pool_size" koanf:"pool_size"`
	Rerank   bool `yaml:"rerank" koanf:"rerank"`
}

// AIOptions converts the section into ai config options.
func (a AIConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{
		ai.WithEmbeddingHost(a.EmbeddingHost),
		ai.WithClassifierHost(a.ClassifierHost),
		ai.WithEmbeddingModel(a.EmbeddingModel),
		ai.WithClassifierModel(a.ClassifierModel),
		ai.WithAnswerModel(a.AnswerModel),
		ai.WithAPIKey(a.APIKey),
	}
	temperature := a.AnswerTemperature
	return append(opts, func(c *ai.Config) {
		c.AnswerTemperature = temperature
	})
}
