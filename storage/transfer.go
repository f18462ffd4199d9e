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

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/poiesic/wayfinder/core"
)

// File names used when the location stores are dumped to or seeded from disk.
const (
	AdminAliasesFile   = "admin_aliases.json"
	KeywordAliasesFile = "keyword_aliases.json"
	AnchorCacheFile    = "anchor_cache.json"
	GeoCentersFile     = "geo_centers.json"
)

// TransferStats counts the entries moved per store.
type TransferStats struct {
	AdminAliases   int
	KeywordAliases int
	Anchors        int
	GeoCenters     int
}

// ExportLocations writes the four location stores into dir as indented JSON.
func ExportLocations(ctx context.Context, stores LocationStores, dir string) (TransferStats, error) {
	var stats TransferStats
	if err := os.MkdirAll(dir, 0755); err != nil {
		return stats, err
	}

	admin, err := stores.Aliases(ctx, AliasAdmin)
	if err != nil {
		return stats, err
	}
	keyword, err := stores.Aliases(ctx, AliasKeyword)
	if err != nil {
		return stats, err
	}
	anchors, err := stores.Anchors(ctx)
	if err != nil {
		return stats, err
	}
	centers, err := stores.GeoCenters(ctx)
	if err != nil {
		return stats, err
	}

	files := []struct {
		name string
		data any
	}{
		{AdminAliasesFile, admin},
		{KeywordAliasesFile, keyword},
		{AnchorCacheFile, anchors},
		{GeoCentersFile, centers},
	}
	for _, f := range files {
		if err := writeJSONFile(filepath.Join(dir, f.name), f.data); err != nil {
			return stats, err
		}
	}

	stats = TransferStats{
		AdminAliases:   len(admin),
		KeywordAliases: len(keyword),
		Anchors:        len(anchors),
		GeoCenters:     len(centers),
	}
	return stats, nil
}

// ImportLocations replaces the location stores with the files found in dir.
// A missing file leaves its store untouched; a malformed file is an error.
func ImportLocations(ctx context.Context, stores LocationStores, dir string) (TransferStats, error) {
	var stats TransferStats

	for _, kind := range []AliasKind{AliasAdmin, AliasKeyword} {
		name := AdminAliasesFile
		if kind == AliasKeyword {
			name = KeywordAliasesFile
		}
		var data map[string][]string
		ok, err := readJSONFile(filepath.Join(dir, name), &data)
		if err != nil {
			return stats, err
		}
		if !ok {
			continue
		}
		if err := stores.ReplaceAliases(ctx, kind, data); err != nil {
			return stats, err
		}
		if kind == AliasAdmin {
			stats.AdminAliases = len(data)
		} else {
			stats.KeywordAliases = len(data)
		}
	}

	var anchors map[string]*core.AnchorCacheEntry
	ok, err := readJSONFile(filepath.Join(dir, AnchorCacheFile), &anchors)
	if err != nil {
		return stats, err
	}
	if ok {
		if err := stores.ReplaceAnchors(ctx, anchors); err != nil {
			return stats, err
		}
		stats.Anchors = len(anchors)
	}

	var centers map[string]*core.GeoCenter
	ok, err = readJSONFile(filepath.Join(dir, GeoCentersFile), &centers)
	if err != nil {
		return stats, err
	}
	if ok {
		for name, center := range centers {
			if center == nil || len(center.Centers) == 0 {
				return stats, fmt.Errorf("geo center %q: %w", name, core.ErrNoCenters)
			}
		}
		if err := stores.ReplaceGeoCenters(ctx, centers); err != nil {
			return stats, err
		}
		stats.GeoCenters = len(centers)
	}

	return stats, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

func readJSONFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%s: %w: %w", filepath.Base(path), ErrSerializationFailed, err)
	}
	return true, nil
}
