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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/core"
)

func TestAliasIndex(t *testing.T) {
	admin := map[string][]string{"강남구": {"강남", "gangnam-gu"}}
	keyword := map[string][]string{"강남역": {"강남 역", "gangnam stn"}}

	idx := BuildAliasIndex(keyword, admin)

	t.Run("alias resolves to canonical", func(t *testing.T) {
		assert.Equal(t, "강남구", idx.Resolve("Gangnam-Gu"))
		assert.Equal(t, "강남역", idx.Resolve("강남 역"))
		assert.Equal(t, "강남역", idx.Resolve("GANGNAM stn"))
	})

	t.Run("canonical resolves to itself", func(t *testing.T) {
		assert.Equal(t, "강남구", idx.Resolve("강남 구"))
	})

	t.Run("unknown passes through", func(t *testing.T) {
		assert.Equal(t, "성수동", idx.Resolve("성수동"))
		assert.Equal(t, "", idx.Resolve(""))
	})

	t.Run("later maps win", func(t *testing.T) {
		idx := BuildAliasIndex(
			map[string][]string{"A": {"x"}},
			map[string][]string{"B": {"x"}},
		)
		assert.Equal(t, "B", idx.Resolve("x"))
	})
}

func TestAddAlias(t *testing.T) {
	data := map[string][]string{}

	assert.True(t, AddAlias(data, "강남역", "강남"))
	assert.False(t, AddAlias(data, "강남역", "강남"))
	assert.False(t, AddAlias(data, "", "x"))
	assert.False(t, AddAlias(data, "x", ""))
	assert.Equal(t, []string{"강남"}, data["강남역"])
}

func TestSerialization(t *testing.T) {
	entry := &core.AnchorCacheEntry{Lat: 37.5, Lng: 127.0, ResolvedName: "강남역"}
	data, err := Marshal(entry)
	require.NoError(t, err)

	got, err := Unmarshal[core.AnchorCacheEntry](data)
	require.NoError(t, err)
	assert.Equal(t, "강남역", got.ResolvedName)

	_, err = Unmarshal[core.AnchorCacheEntry]([]byte("{not json"))
	assert.ErrorIs(t, err, ErrSerializationFailed)
}
