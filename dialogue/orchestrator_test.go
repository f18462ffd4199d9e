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
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/ai/mock"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/index"
	"github.com/poiesic/wayfinder/place"
	"github.com/poiesic/wayfinder/places"
	"github.com/poiesic/wayfinder/rerank"
	"github.com/poiesic/wayfinder/resolver"
	"github.com/poiesic/wayfinder/retrieval"
	"github.com/poiesic/wayfinder/storage/badger"
)

const testAnswer = "강남역 근처 카페를 추천해 드립니다."

type fixture struct {
	orch       *Orchestrator
	classifier *mock.MockChatModel
	answerer   *mock.MockChatModel
	embedder   *mock.MockEmbedder
	places     *places.Fake
}

func testPOI(id int64, cat core.Category, name, summary string, lat, lng float64) *core.POI {
	poi := &core.POI{
		ID:       id,
		Category: cat,
		Name:     name,
		Summary:  summary,
		Address:  "서울 강남구 역삼동",
		Location: &core.Coordinate{Lat: lat, Lng: lng},
	}
	poi.Text = name + " " + summary
	poi.Vector = mock.DeterministicVector(poi.Text, mock.DefaultDimensions)
	return poi
}

// classifierReply routes a classifier prompt to a canned reply by its
// system message.
func classifierReply(msgs []ai.Message) string {
	system := msgs[0].Content
	user := msgs[len(msgs)-1].Content
	switch {
	case strings.Contains(system, "쿼리 최적화"):
		return ""
	case strings.Contains(system, "지리적 위치"):
		for _, name := range []string{"강남역", "없는역"} {
			if strings.Contains(user, name) {
				return `{"area": null, "point": "` + name + `"}`
			}
		}
		return `{"area": null, "point": null}`
	case strings.Contains(system, "지명 오타 보정"):
		return `{"changed": false}`
	case strings.Contains(system, "JSON 배열로 반환"):
		return "[1]"
	case strings.Contains(system, "하나의 단어만"):
		return "tourspot"
	default:
		return ""
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stores, err := badger.NewMemoryStores()
	require.NoError(t, err)
	t.Cleanup(func() { stores.Close() })

	fake := places.NewFake()
	fake.Predictions["강남역"] = []places.Prediction{{
		Description: "강남역",
		PlaceID:     "gangnam",
		Types:       []string{"subway_station", "transit_station"},
	}}
	fake.Geocodes["gangnam"] = &places.Geocode{Lat: 37.4979, Lng: 127.0276, Address: "서울 강남구"}

	cafes, _ := index.Build(core.CategoryCafe, []*core.POI{
		testPOI(1, core.CategoryCafe, "카페 하나", "조용한 카페", 37.4985, 127.0280),
		testPOI(2, core.CategoryCafe, "카페 둘", "넓은 카페", 37.5000, 127.0300),
		testPOI(3, core.CategoryCafe, "시청 카페", "시청 앞 카페", 37.5665, 126.9780),
	})
	tours, _ := index.Build(core.CategoryTourspot, []*core.POI{
		testPOI(10, core.CategoryTourspot, "경복궁", "조선의 법궁 경복궁", 37.5796, 126.9770),
	})
	embedder := mock.NewMockEmbedder()
	retriever, err := retrieval.NewRetriever(index.NewSet(cafes, tours), embedder)
	require.NoError(t, err)

	classifier := mock.NewMockChatModel()
	classifier.CompleteFunc = func(_ context.Context, msgs []ai.Message, _ ai.CallOptions) (string, error) {
		return classifierReply(msgs), nil
	}
	answerer := mock.NewScriptedChatModel(nil, testAnswer)

	extractor, err := place.NewExtractor(classifier)
	require.NoError(t, err)
	corrector, err := place.NewCorrector(classifier, fake, stores.LocationStores())
	require.NoError(t, err)
	res, err := resolver.NewResolver(stores.LocationStores(), fake)
	require.NoError(t, err)
	reranker, err := rerank.NewReranker(classifier)
	require.NoError(t, err)

	orch, err := NewOrchestrator(Dependencies{
		Classifier: classifier,
		Answerer:   answerer,
		Extractor:  extractor,
		Corrector:  corrector,
		Resolver:   res,
		Retriever:  retriever,
		Reranker:   reranker,
	})
	require.NoError(t, err)

	return &fixture{
		orch:       orch,
		classifier: classifier,
		answerer:   answerer,
		embedder:   embedder,
		places:     fake,
	}
}

func collect(ch <-chan Event) []Event {
	var events []Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func debugStages(debug []any) []string {
	var stages []string
	for _, d := range debug {
		if m, ok := d.(map[string]any); ok {
			stages = append(stages, m["stage"].(string))
		}
	}
	return stages
}

func TestNewOrchestrator(t *testing.T) {
	_, err := NewOrchestrator(Dependencies{})
	assert.ErrorIs(t, err, ErrModelRequired)

	m := mock.NewMockChatModel()
	_, err = NewOrchestrator(Dependencies{Classifier: m, Answerer: m})
	assert.ErrorIs(t, err, ErrDependencyRequired)
	assert.ErrorContains(t, err, "extractor, corrector, resolver, retriever, reranker")

	f := newFixture(t)
	_, err = NewOrchestrator(f.orch.deps, WithConfig(Config{RetrieveK: 0, RerankK: 5, GeneralK: 5}))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRunRecommendWithAnchor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	out, err := f.orch.Run(ctx, TurnInput{Query: "강남역 카페 추천"})
	require.NoError(t, err)

	assert.Equal(t, testAnswer, out.Answer)
	assert.NotEmpty(t, out.TurnID)
	assert.Equal(t, []string{
		"route", "normalize_query", "extract_place", "correct_place",
		"resolve_anchor", "retrieve", "apply_location_filter", "rerank", "answer",
	}, out.Nodes)

	// The far cafe is outside the 2km radius.
	require.Len(t, out.Candidates, 2)
	assert.ElementsMatch(t, []int64{1, 2}, []int64{out.Candidates[0].PlaceID, out.Candidates[1].PlaceID})
	for _, c := range out.Candidates {
		require.NotNil(t, c.DistanceKM)
		assert.LessOrEqual(t, *c.DistanceKM, 2.0)
	}

	require.NotNil(t, out.Context)
	require.NotNil(t, out.Context.LastAnchor)
	assert.Equal(t, []core.Coordinate{{Lat: 37.4979, Lng: 127.0276}}, out.Context.LastAnchor.Centers)
	require.NotNil(t, out.Context.LastRadiusKM)
	assert.Equal(t, 2.0, *out.Context.LastRadiusKM)
	assert.Equal(t, core.CategoryCafe, out.Context.LastMode)
	assert.Equal(t, "강남역 카페 추천", out.Context.LastQuery)
	assert.Equal(t, "강남역", out.Context.LastResolvedName)
	assert.True(t, out.Context.LastFilterApplied)
	require.NotNil(t, out.Context.LastPlace)
	assert.Equal(t, "강남역", out.Context.LastPlace.Point)

	assert.Equal(t, []string{"gangnam"}, f.places.GeocodeCalls())
}

func TestRunNearbyQueryResolvesAnchor(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "강남역 근처 카페"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"route", "normalize_query", "extract_place", "correct_place",
		"resolve_anchor", "retrieve", "apply_location_filter", "rerank", "answer",
	}, out.Nodes)
	assert.Equal(t, []string{"gangnam"}, f.places.GeocodeCalls())

	require.Len(t, out.Candidates, 2)
	for _, c := range out.Candidates {
		assert.Equal(t, core.CategoryCafe, c.Category)
		require.NotNil(t, c.DistanceKM)
		assert.LessOrEqual(t, *c.DistanceKM, 2.0)
	}

	require.NotNil(t, out.Context)
	require.NotNil(t, out.Context.LastAnchor)
	assert.Equal(t, []core.Coordinate{{Lat: 37.4979, Lng: 127.0276}}, out.Context.LastAnchor.Centers)
	require.NotNil(t, out.Context.LastRadiusKM)
	assert.Equal(t, 2.0, *out.Context.LastRadiusKM)
	assert.Equal(t, core.CategoryCafe, out.Context.LastMode)
	assert.Equal(t, "강남역", out.Context.LastResolvedName)
}

func TestRunExpandsPreviousRadius(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.orch.Run(ctx, TurnInput{Query: "강남역 카페 추천"})
	require.NoError(t, err)
	calls := len(f.places.AutocompleteCalls())

	out, err := f.orch.Run(ctx, TurnInput{Query: "범위 넓혀줘", Context: first.Context})
	require.NoError(t, err)

	assert.Contains(t, out.Nodes, "expand_radius")
	assert.NotContains(t, out.Nodes, "resolve_anchor")
	assert.Equal(t, calls, len(f.places.AutocompleteCalls()))

	require.NotNil(t, out.Context.LastRadiusKM)
	assert.Equal(t, 3.0, *out.Context.LastRadiusKM)
	assert.Equal(t, first.Context.LastAnchor.Centers, out.Context.LastAnchor.Centers)
	assert.Equal(t, "강남역 카페 추천", out.Context.LastQuery)
	assert.Equal(t, core.CategoryCafe, out.Context.LastMode)
	assert.Equal(t, "강남역", out.Context.LastResolvedName)

	// The caller's context is left untouched.
	assert.Equal(t, 2.0, *first.Context.LastRadiusKM)
	assert.Equal(t, 2.0, first.Context.LastAnchor.RadiusFor(core.CategoryCafe))
}

func TestRunExpandWithoutContext(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "반경 넓혀줘"})
	require.NoError(t, err)

	assert.Equal(t, MsgExpandFailed, out.Answer)
	assert.Equal(t, []string{
		"route", "normalize_query", "extract_place", "correct_place", "expand_radius", "answer",
	}, out.Nodes)
	assert.Empty(t, f.places.AutocompleteCalls())
	assert.Zero(t, f.answerer.CallCount())
	assert.Nil(t, out.Context.LastAnchor)
}

func TestRunGeneralQuestion(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "경복궁 입장료 알려줘"})
	require.NoError(t, err)

	assert.Equal(t, []string{"route", "general_answer"}, out.Nodes)
	assert.Equal(t, testAnswer, out.Answer)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, int64(10), out.Candidates[0].PlaceID)
	assert.Empty(t, f.places.AutocompleteCalls())
	assert.Equal(t, core.CategoryTourspot, out.Context.LastMode)

	calls := f.answerer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, generalSystemPrompt, calls[0][0].Content)
}

func TestRunUnresolvedPlace(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "없는역 카페 추천"})
	require.NoError(t, err)

	assert.Equal(t, "'없는역' 위치를 찾지 못했어요. 지점/역/건물명을 알려주세요.", out.Answer)
	assert.Empty(t, out.Candidates)
	assert.Zero(t, f.embedder.CallCount(), "retrieval must not run for an unresolved place")
	assert.Zero(t, f.answerer.CallCount())
}

func TestRunNearbyWithoutPlace(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "근처 카페 추천해줘"})
	require.NoError(t, err)

	assert.Equal(t, MsgNearbyNoAnchor, out.Answer)
	assert.Empty(t, f.places.AutocompleteCalls())
}

func TestRunAnswerModelFailure(t *testing.T) {
	f := newFixture(t)
	f.answerer.CompleteFunc = func(context.Context, []ai.Message, ai.CallOptions) (string, error) {
		return "", errors.New("model unavailable")
	}

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "강남역 카페 추천"})
	require.NoError(t, err)

	require.Len(t, out.Candidates, 2)
	assert.Equal(t, fallbackAnswer("강남역", out.Candidates), out.Answer)
	assert.True(t, strings.HasPrefix(out.Answer, "강남역 주변 추천 장소입니다.\n\n1. [카페"), out.Answer)
	assert.Contains(t, out.Answer, "카페 하나")
	assert.Contains(t, out.Answer, "카페 둘")
}

// brokenStreamModel streams tokens and then fails.
type brokenStreamModel struct {
	tokens []string
}

func (m brokenStreamModel) Complete(context.Context, []ai.Message, ...ai.CallOption) (string, error) {
	return "", errors.New("connection reset")
}

func (m brokenStreamModel) Stream(ctx context.Context, _ []ai.Message, onToken ai.TokenFunc, _ ...ai.CallOption) (string, error) {
	for _, tok := range m.tokens {
		if err := onToken(ctx, tok); err != nil {
			return "", err
		}
	}
	return "", errors.New("connection reset")
}

func TestRunAnswerFailsMidStream(t *testing.T) {
	f := newFixture(t)
	deps := f.orch.deps
	deps.Answerer = brokenStreamModel{tokens: []string{"강남역 ", "근처 "}}
	orch, err := NewOrchestrator(deps)
	require.NoError(t, err)

	events := collect(orch.Stream(context.Background(), TurnInput{Query: "강남역 근처 카페"}))

	var (
		tokens []string
		final  *Event
	)
	for i, ev := range events {
		switch ev.Type {
		case EventToken:
			require.Nil(t, final, "token after final")
			tokens = append(tokens, ev.Token)
		case EventFinal:
			final = &events[i]
		}
	}
	assert.Equal(t, []string{"강남역 ", "근처 "}, tokens)
	require.NotNil(t, final)
	assert.True(t, final.Superseded)
	require.Len(t, final.Candidates, 2)
	assert.Equal(t, fallbackAnswer("강남역", final.Candidates), final.Final)

	out, err := orch.Run(context.Background(), TurnInput{Query: "강남역 근처 카페"})
	require.NoError(t, err)
	assert.True(t, out.Superseded)
	assert.Equal(t, fallbackAnswer("강남역", out.Candidates), out.Answer)
}

func TestRunAnswerNotSupersededWithoutTokens(t *testing.T) {
	f := newFixture(t)
	f.answerer.CompleteFunc = func(context.Context, []ai.Message, ai.CallOptions) (string, error) {
		return "", errors.New("model unavailable")
	}

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "강남역 카페 추천"})
	require.NoError(t, err)
	assert.False(t, out.Superseded)

	f.answerer.CompleteFunc = func(context.Context, []ai.Message, ai.CallOptions) (string, error) {
		return testAnswer, nil
	}
	out, err = f.orch.Run(context.Background(), TurnInput{Query: "강남역 카페 추천"})
	require.NoError(t, err)
	assert.False(t, out.Superseded)
	assert.Equal(t, testAnswer, out.Answer)
}

func TestRunTopKClamp(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "강남역 카페 추천", TopK: 1})
	require.NoError(t, err)
	require.Len(t, out.Candidates, 1)
	assert.NotEqual(t, int64(3), out.Candidates[0].PlaceID)
}

func TestRunDebugEvents(t *testing.T) {
	f := newFixture(t)

	out, err := f.orch.Run(context.Background(), TurnInput{Query: "강남역 카페 추천", Debug: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"resolve_anchor", "retrieve", "rerank", "answer"}, debugStages(out.Debug))
	for _, c := range out.Candidates {
		assert.NotNil(t, c.Components)
	}
}

func TestEmptyQuery(t *testing.T) {
	f := newFixture(t)

	_, err := f.orch.Run(context.Background(), TurnInput{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)

	events := collect(f.orch.Stream(context.Background(), TurnInput{Query: "   "}))
	require.Len(t, events, 3)
	assert.Equal(t, EventFinal, events[0].Type)
	assert.Equal(t, MsgEmptyQuery, events[0].Final)
	assert.Equal(t, EventContext, events[1].Type)
	assert.Equal(t, EventDone, events[2].Type)
	assert.Zero(t, f.classifier.CallCount())
}

func TestStreamEventOrder(t *testing.T) {
	f := newFixture(t)

	events := collect(f.orch.Stream(context.Background(), TurnInput{Query: "강남역 카페 추천"}))
	require.NotEmpty(t, events)

	var tokens strings.Builder
	finalAt, contextAt := -1, -1
	for i, ev := range events {
		assert.Equal(t, events[0].TurnID, ev.TurnID)
		switch ev.Type {
		case EventToken:
			assert.Equal(t, -1, finalAt, "tokens precede the final event")
			tokens.WriteString(ev.Token)
		case EventFinal:
			finalAt = i
		case EventContext:
			contextAt = i
		}
	}
	assert.Equal(t, testAnswer, tokens.String())
	assert.Greater(t, contextAt, finalAt)
	assert.Equal(t, EventDone, events[len(events)-1].Type)
}

func TestRunCanceled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.orch.Run(ctx, TurnInput{Query: "강남역 카페 추천"})
	assert.ErrorIs(t, err, context.Canceled)

	for range f.orch.Stream(ctx, TurnInput{Query: "강남역 카페 추천"}) {
	}
}
