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

package dialogue

import (
	"strings"

	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/retrieval"
)

// Top-k bounds for a turn.
const (
	MinTopK = 1
	MaxTopK = 10
)

// TurnInput carries the caller-supplied fields of one turn.
type TurnInput struct {
	Query string `json:"query"`
	// Mode is an optional category hint.
	Mode core.Category `json:"mode,omitempty"`
	// TopK is the answer size; 0 means the configured rerank size.
	TopK    int      `json:"top_k,omitempty"`
	History []int64  `json:"history_place_ids,omitempty"`
	Debug   bool     `json:"debug,omitempty"`
	Context *Context `json:"context,omitempty"`
}

// Context is the conversational memory handed back to the caller after a
// turn and passed in with the next one.
type Context struct {
	LastAnchor        *core.Anchor       `json:"last_anchor"`
	LastRadiusKM      *float64           `json:"last_radius_km"`
	LastMode          core.Category      `json:"last_mode,omitempty"`
	LastQuery         string             `json:"last_query,omitempty"`
	LastResolvedName  string             `json:"last_resolved_name,omitempty"`
	LastPlace         *core.PlaceMention `json:"last_place,omitempty"`
	LastAdminTerm     string             `json:"last_admin_term,omitempty"`
	LastFilterApplied bool               `json:"last_filter_applied"`
}

// Intent is the routing decision made on the raw query.
type Intent string

const (
	IntentRecommend Intent = "recommend"
	IntentGeneral   Intent = "general"
)

// State is the running state of one turn.
type State struct {
	TurnID          string
	Query           string
	NormalizedQuery string
	// Mode starts as the caller's hint and holds the category used once
	// retrieval has run.
	Mode          core.Category
	ModeDetected  core.Category
	ModeUnknown   bool
	Place         core.PlaceMention
	PlaceOriginal *core.PlaceMention
	Anchor        *core.Anchor
	AnchorFailed  bool
	AdminTerm     string
	InputPlace    string
	ResolvedName  string
	LastRadiusKM  *float64
	TopK          int
	History       []int64
	Intent        Intent
	ExpandRequest bool
	ExpandFailed  bool
	Candidates    []core.Candidate
	// EmptyReason explains an empty candidate list.
	EmptyReason retrieval.Reason
	Final       string
	Debug       bool
	Context     *Context
}

// Patch is the partial update a node returns.
type Patch func(*State)

// Merge applies patches in order. Nil patches are skipped.
func (s *State) Merge(patches ...Patch) {
	for _, p := range patches {
		if p != nil {
			p(s)
		}
	}
}

// SearchQuery is the normalized query when present, else the raw one.
func (s *State) SearchQuery() string {
	if q := strings.TrimSpace(s.NormalizedQuery); q != "" {
		return q
	}
	return s.Query
}

// PlaceName is the best label for the mentioned place, or "".
func (s *State) PlaceName() string {
	switch {
	case s.ResolvedName != "":
		return s.ResolvedName
	case s.InputPlace != "":
		return s.InputPlace
	default:
		return s.Place.Label()
	}
}

func newState(turnID string, in TurnInput, rerankK int) *State {
	topK := in.TopK
	if topK <= 0 {
		topK = rerankK
	}
	return &State{
		TurnID:  turnID,
		Query:   strings.TrimSpace(in.Query),
		Mode:    in.Mode,
		TopK:    min(max(topK, MinTopK), MaxTopK),
		History: in.History,
		Debug:   in.Debug,
		Context: in.Context,
	}
}

// BuildContext derives the context returned to the caller from s.
func BuildContext(s *State) *Context {
	ctx := &Context{
		LastAnchor:        s.Anchor.Clone(),
		LastMode:          s.Mode,
		LastQuery:         s.Query,
		LastResolvedName:  s.ResolvedName,
		LastAdminTerm:     s.AdminTerm,
		LastFilterApplied: s.Anchor != nil,
	}
	if s.LastRadiusKM != nil {
		r := *s.LastRadiusKM
		ctx.LastRadiusKM = &r
	}
	if !s.Place.IsEmpty() {
		p := s.Place
		ctx.LastPlace = &p
	}
	return ctx
}
