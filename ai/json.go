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

package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var (
	unquotedKeyRe   = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)"\s*:`)
	bareKeyRe       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// ParseJSON decodes a model reply into T. It tolerates code fences,
// surrounding prose, keys missing their quotes and trailing commas.
func ParseJSON[T any](raw string) Result[T] {
	text := StripCodeFence(raw)
	if text == "" {
		return Err[T](ErrEmptyResponse)
	}

	var out T
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return Ok(out)
	}

	segment := extractJSON(text)
	if segment == "" {
		return Err[T](fmt.Errorf("%w: no json value in %q", ErrUnparseable, truncate(text, 80)))
	}

	var out2 T
	repaired := repairJSON(segment)
	if err := json.Unmarshal([]byte(repaired), &out2); err != nil {
		return Err[T](fmt.Errorf("%w: %w", ErrUnparseable, err))
	}
	return Ok(out2)
}

// StripCodeFence removes a surrounding markdown code fence.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// extractJSON returns the span from the first opening bracket to the last
// matching closing bracket of the same kind.
func extractJSON(s string) string {
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return ""
	}
	closer := byte('}')
	if s[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(s, closer)
	if end <= start {
		return ""
	}
	return s[start : end+1]
}

func repairJSON(s string) string {
	s = unquotedKeyRe.ReplaceAllString(s, `$1"$2":`)
	s = bareKeyRe.ReplaceAllString(s, `$1"$2":`)
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
