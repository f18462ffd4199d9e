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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/poiesic/wayfinder/core"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WAYFINDER_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (WAYFINDER_*). A missing file is not an
// error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	// WAYFINDER_GOOGLE__API_KEY -> google.api_key
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks that the configuration contains usable values. The
// Google API key is checked by the commands that need it.
func (c *Config) Validate() error {
	var errs []error
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.AI.EmbeddingModel == "" {
		errs = append(errs, errors.New("ai.embedding_model is required"))
	}
	if c.AI.ClassifierModel == "" {
		errs = append(errs, errors.New("ai.classifier_model is required"))
	}
	if c.Google.RPS <= 0 || c.Google.Burst <= 0 {
		errs = append(errs, errors.New("google.rps and google.burst must be positive"))
	}
	if c.Google.Timeout <= 0 {
		errs = append(errs, errors.New("google.timeout must be positive"))
	}
	if err := c.Dialogue.Validate(); err != nil {
		errs = append(errs, err)
	}
	for _, cat := range core.Categories {
		if err := c.Scoring.For(cat).Validate(); err != nil {
			errs = append(errs, fmt.Errorf("scoring.%s: %w", cat, err))
		}
	}
	if c.Indexer.BatchSize <= 0 || c.Indexer.Workers <= 0 || c.Indexer.MaxRetries <= 0 {
		errs = append(errs, errors.New("indexer.batch_size, indexer.workers and indexer.max_retries must be positive"))
	}
	if c.Indexer.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("indexer.requests_per_second must be non-negative"))
	}
	if c.Recommend.PoolSize < 0 {
		errs = append(errs, errors.New("recommend.pool_size must be non-negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}
