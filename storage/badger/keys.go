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

package badger

import (
	"encoding/binary"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/storage"
)

// Key prefixes for different data types
const (
	aliasPrefix     = "alias:"
	anchorPrefix    = "anchor:"
	geoCenterPrefix = "geoc:"
	poiPrefix       = "poi:"
)

// makeAliasPrefix returns the prefix shared by every alias of kind.
// Format: alias:kind:
func makeAliasPrefix(kind storage.AliasKind) []byte {
	return []byte(aliasPrefix + string(kind) + ":")
}

// makeAliasKey generates a key for one canonical entry of an alias map.
func makeAliasKey(kind storage.AliasKind, canonical string) []byte {
	return append(makeAliasPrefix(kind), canonical...)
}

// makeAnchorKey generates a key for an anchor cache entry.
func makeAnchorKey(key string) []byte {
	return []byte(anchorPrefix + key)
}

// makeGeoCenterKey generates a key for a gazetteer entry.
func makeGeoCenterKey(name string) []byte {
	return []byte(geoCenterPrefix + name)
}

// makePOIPrefix returns the prefix shared by every POI in category.
// Format: poi:category:
func makePOIPrefix(category core.Category) []byte {
	return []byte(poiPrefix + string(category) + ":")
}

// makePOIKey generates a composite key for a POI.
// Format: poi:category:id, with the id in BigEndian so iteration is ordered.
func makePOIKey(category core.Category, id int64) []byte {
	prefix := makePOIPrefix(category)
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
