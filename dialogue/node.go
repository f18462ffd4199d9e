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

// Node identifies a step of the turn graph.
type Node int

const (
	NodeRoute Node = iota
	NodeNormalizeQuery
	NodeExtractPlace
	NodeCorrectPlace
	NodeExpandRadius
	NodeResolveAnchor
	NodeRetrieve
	NodeApplyLocationFilter
	NodeRerank
	NodeAnswer
	NodeGeneralAnswer
	// NodeEnd is the sink reached after a terminal node.
	NodeEnd
)

var nodeNames = [...]string{
	NodeRoute:               "route",
	NodeNormalizeQuery:      "normalize_query",
	NodeExtractPlace:        "extract_place",
	NodeCorrectPlace:        "correct_place",
	NodeExpandRadius:        "expand_radius",
	NodeResolveAnchor:       "resolve_anchor",
	NodeRetrieve:            "retrieve",
	NodeApplyLocationFilter: "apply_location_filter",
	NodeRerank:              "rerank",
	NodeAnswer:              "answer",
	NodeGeneralAnswer:       "general_answer",
	NodeEnd:                 "end",
}

func (n Node) String() string {
	if n < 0 || int(n) >= len(nodeNames) {
		return "unknown"
	}
	return nodeNames[n]
}

// Terminal reports whether n produces the turn's answer.
func (n Node) Terminal() bool {
	return n == NodeAnswer || n == NodeGeneralAnswer
}

// Next returns the node that follows n given the state after n ran.
// It is a pure function of its arguments.
func Next(n Node, s *State) Node {
	switch n {
	case NodeRoute:
		if s.Intent == IntentRecommend {
			return NodeNormalizeQuery
		}
		return NodeGeneralAnswer
	case NodeNormalizeQuery:
		return NodeExtractPlace
	case NodeExtractPlace:
		return NodeCorrectPlace
	case NodeCorrectPlace:
		if s.ExpandRequest {
			return NodeExpandRadius
		}
		return NodeResolveAnchor
	case NodeExpandRadius:
		if s.ExpandFailed {
			return NodeAnswer
		}
		return NodeRetrieve
	case NodeResolveAnchor:
		return NodeRetrieve
	case NodeRetrieve:
		return NodeApplyLocationFilter
	case NodeApplyLocationFilter:
		return NodeRerank
	case NodeRerank:
		return NodeAnswer
	default:
		return NodeEnd
	}
}
