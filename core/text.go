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

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/go-crypt/x/blake2b"
)

// NormalizeText lowercases s and keeps only ASCII letters, digits and
// Hangul syllables. It is the key function for every alias and cache lookup.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r >= '가' && r <= '힣':
			b.WriteRune(r)
		}
	}
	return b.String()
}

var adminSuffixes = []string{"시", "구", "동", "가", "로", "길", "대로"}

// HasAdminSuffix reports whether s ends with an administrative-unit suffix.
func HasAdminSuffix(s string) bool {
	s = strings.TrimSpace(s)
	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return false
}

// TrimLastRune drops the final rune of s when s has more than one rune.
func TrimLastRune(s string) (string, bool) {
	if utf8.RuneCountInString(s) <= 1 {
		return s, false
	}
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size], true
}

// ContainsAny reports whether text contains any non-empty token.
func ContainsAny(text string, tokens []string) bool {
	for _, t := range tokens {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// AppendUnique appends values to list, skipping empties and duplicates.
func AppendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if v == "" {
			continue
		}
		dup := false
		for _, existing := range list {
			if existing == v {
				dup = true
				break
			}
		}
		if !dup {
			list = append(list, v)
		}
	}
	return list
}

// TextHash returns a 64-bit BLAKE2b digest of text. Identical text always
// hashes to the same value.
func TextHash(text string) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	return binary.LittleEndian.Uint64(h.Sum(nil))
}
