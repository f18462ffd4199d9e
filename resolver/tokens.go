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

package resolver

import (
	"strings"

	"github.com/poiesic/wayfinder/core"
)

var (
	seoulPrefixes = []string{"서울특별시", "서울시", "서울"}
	areaSuffixes  = []string{"특별시", "광역시", "자치시", "자치구", "시", "군", "구", "도"}

	regionHints = []string{
		"서울", "경기", "인천", "부산", "대구", "대전", "광주", "울산", "세종",
		"제주", "강원", "충북", "충남", "전북", "전남", "경북", "경남",
	}
)

const (
	stationSuffix = "역"
	defaultRegion = "서울"
)

// Tokens are the normalized strings a mention is matched against.
type Tokens struct {
	// Match holds every spelling of the mention.
	Match []string `json:"match_tokens"`
	// Region holds the administrative region the mention belongs to.
	Region []string `json:"region_tokens"`
	// Station holds the match tokens ending in the station suffix.
	Station []string `json:"station_tokens"`
}

// BuildTokens derives the token sets for a mention. rawPlace is the joined
// mention text and canonical its alias-resolved form.
func BuildTokens(m core.PlaceMention, rawPlace, canonical string) Tokens {
	var match []string
	for _, part := range []string{rawPlace, m.Area, m.Point} {
		match = core.AppendUnique(match, core.NormalizeText(part))
	}
	var extras []string
	for _, tok := range match {
		stripped := stripPrefix(tok, seoulPrefixes)
		extras = append(extras, stripped, trimStation(tok), trimStation(stripped))
	}
	match = core.AppendUnique(match, extras...)

	canonicalNorm := core.NormalizeText(canonical)
	stripped := stripPrefix(canonicalNorm, seoulPrefixes)
	match = core.AppendUnique(match, canonicalNorm, stripped, trimStation(canonicalNorm), trimStation(stripped))

	regionSource := canonical
	if regionSource == "" {
		regionSource = rawPlace
	}
	t := Tokens{
		Match:  match,
		Region: regionTokens(m.Area, regionSource),
	}
	for _, tok := range match {
		if strings.HasSuffix(tok, stationSuffix) {
			t.Station = append(t.Station, tok)
		}
	}
	return t
}

func regionTokens(area, text string) []string {
	var out []string
	if norm := core.NormalizeText(area); norm != "" {
		return core.AppendUnique(out, withoutProvinceSuffix(norm)...)
	}
	textNorm := core.NormalizeText(text)
	for _, region := range regionHints {
		if strings.Contains(textNorm, region) {
			return []string{region}
		}
	}
	if inferred := areaHint(textNorm); inferred != "" {
		return core.AppendUnique(out, withoutProvinceSuffix(inferred)...)
	}
	return []string{defaultRegion}
}

// withoutProvinceSuffix returns token plus its 시/도-trimmed form.
func withoutProvinceSuffix(token string) []string {
	out := []string{token}
	for _, suffix := range []string{"시", "도"} {
		if trimmed, ok := strings.CutSuffix(token, suffix); ok && trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// areaHint returns the prefix of text ending at the first area suffix that
// is not at the very start.
func areaHint(text string) string {
	for _, suffix := range areaSuffixes {
		if i := strings.Index(text, suffix); i > 0 {
			return text[:i+len(suffix)]
		}
	}
	return ""
}

func stripPrefix(token string, prefixes []string) string {
	for _, p := range prefixes {
		if rest, ok := strings.CutPrefix(token, p); ok {
			return rest
		}
	}
	return ""
}

func trimStation(token string) string {
	if rest, ok := strings.CutSuffix(token, stationSuffix); ok {
		return rest
	}
	return ""
}
