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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name  string
		from  Node
		state State
		want  Node
	}{
		{"recommend intent", NodeRoute, State{Intent: IntentRecommend}, NodeNormalizeQuery},
		{"general intent", NodeRoute, State{Intent: IntentGeneral}, NodeGeneralAnswer},
		{"normalize", NodeNormalizeQuery, State{}, NodeExtractPlace},
		{"extract", NodeExtractPlace, State{}, NodeCorrectPlace},
		{"expand requested", NodeCorrectPlace, State{ExpandRequest: true}, NodeExpandRadius},
		{"resolve by default", NodeCorrectPlace, State{}, NodeResolveAnchor},
		{"expand failed", NodeExpandRadius, State{ExpandFailed: true}, NodeAnswer},
		{"expand ok", NodeExpandRadius, State{}, NodeRetrieve},
		{"resolve failure still retrieves", NodeResolveAnchor, State{AnchorFailed: true}, NodeRetrieve},
		{"retrieve", NodeRetrieve, State{}, NodeApplyLocationFilter},
		{"filter", NodeApplyLocationFilter, State{}, NodeRerank},
		{"rerank", NodeRerank, State{}, NodeAnswer},
		{"answer ends", NodeAnswer, State{}, NodeEnd},
		{"general ends", NodeGeneralAnswer, State{}, NodeEnd},
		{"end stays", NodeEnd, State{}, NodeEnd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.from, &tt.state))
		})
	}
}

func TestNode_String(t *testing.T) {
	assert.Equal(t, "route", NodeRoute.String())
	assert.Equal(t, "apply_location_filter", NodeApplyLocationFilter.String())
	assert.Equal(t, "general_answer", NodeGeneralAnswer.String())
	assert.Equal(t, "unknown", Node(99).String())
	assert.True(t, NodeAnswer.Terminal())
	assert.True(t, NodeGeneralAnswer.Terminal())
	assert.False(t, NodeRerank.Terminal())
}

func TestState_Merge(t *testing.T) {
	s := &State{Query: "a"}
	s.Merge(
		func(st *State) { st.Query = "b" },
		nil,
		func(st *State) { st.NormalizedQuery = st.Query + "!" },
	)
	assert.Equal(t, "b", s.Query)
	assert.Equal(t, "b!", s.SearchQuery())
}

func TestNewState_ClampsTopK(t *testing.T) {
	assert.Equal(t, 5, newState("t", TurnInput{Query: "q"}, 5).TopK)
	assert.Equal(t, MaxTopK, newState("t", TurnInput{Query: "q", TopK: 50}, 5).TopK)
	assert.Equal(t, 3, newState("t", TurnInput{Query: "q", TopK: 3}, 5).TopK)
	assert.Equal(t, "q", newState("t", TurnInput{Query: "  q "}, 5).Query)
}
