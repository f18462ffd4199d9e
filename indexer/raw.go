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

package indexer

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// RawPOI is one record of a category dump. Field names vary by source, so
// several aliases are accepted for ids, names and coordinates.
type RawPOI struct {
	PlaceID  flexInt `json:"place_id"`
	ID       flexInt `json:"id"`
	Name     string  `json:"name"`
	Title    string  `json:"title"`
	Province string  `json:"province"`

	Summary            string `json:"summary"`
	SummaryOneSentence string `json:"summary_one_sentence"`
	Description        string `json:"description"`
	Content            string `json:"content"`
	Kind               string `json:"kind"`
	SubType            string `json:"sub_type"`

	Address  string `json:"address"`
	City     string `json:"city"`
	District string `json:"district"`
	Dong     string `json:"dong"`
	Road     string `json:"road"`

	Keywords flexStrings `json:"keywords"`

	Lat       flexFloat    `json:"lat"`
	Latitude  flexFloat    `json:"latitude"`
	Lng       flexFloat    `json:"lng"`
	Lon       flexFloat    `json:"lon"`
	Longitude flexFloat    `json:"longitude"`
	Location  *rawLocation `json:"location"`

	Views     flexInt   `json:"views"`
	Likes     flexInt   `json:"likes"`
	Bookmarks flexInt   `json:"bookmarks"`
	Counts    flexInt   `json:"counts"`
	Reviews   flexInt   `json:"reviews"`
	Rating    flexFloat `json:"rating"`

	Themes        flexStrings `json:"themes"`
	Mood          flexStrings `json:"mood"`
	VisitorType   flexStrings `json:"visitor_type"`
	BestTime      flexStrings `json:"best_time"`
	Duration      string      `json:"duration"`
	ActivityLevel string      `json:"activity_level"`
	IndoorOutdoor string      `json:"indoor_outdoor"`
	Photospot     *bool       `json:"photospot"`
	AvoidFor      flexStrings `json:"avoid_for"`
	SchedulePos   string      `json:"ideal_schedule_position"`
}

type rawLocation struct {
	Lat       flexFloat `json:"lat"`
	Latitude  flexFloat `json:"latitude"`
	Lng       flexFloat `json:"lng"`
	Lon       flexFloat `json:"lon"`
	Longitude flexFloat `json:"longitude"`
	Addr1     string    `json:"addr1"`
}

// flexInt accepts a JSON number or a string containing digits, such as "(38)".
type flexInt struct {
	Value int64
	Valid bool
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			f.Value, f.Valid = v, true
			return nil
		}
		if v, err := n.Float64(); err == nil {
			f.Value, f.Valid = int64(v), true
			return nil
		}
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or string, got %s", data)
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return nil
	}
	v, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return err
	}
	f.Value, f.Valid = v, true
	return nil
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat struct {
	Value float64
	Valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err == nil {
		f.Value, f.Valid = v, true
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected number or string, got %s", data)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.Value, f.Valid = v, true
	return nil
}

// flexStrings accepts a JSON string array or a comma separated string.
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*f = compact(list)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected string list, got %s", data)
	}
	*f = compact(strings.Split(s, ","))
	return nil
}

func compact(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// ReadFile reads a dump from path. See Read for the accepted formats.
func ReadFile(path string) ([]RawPOI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Read decodes either a JSON array of records or one record per line.
func Read(r io.Reader) ([]RawPOI, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if first == '[' {
		var out []RawPOI
		if err := json.NewDecoder(br).Decode(&out); err != nil {
			return nil, fmt.Errorf("decoding poi array: %w", err)
		}
		return out, nil
	}

	var out []RawPOI
	scanner := bufio.NewScanner(br)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec RawPOI
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("decoding poi line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, scanner.Err()
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return b, br.UnreadByte()
	}
}
