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

package mock

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/poiesic/wayfinder/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder(t *testing.T) {
	ctx := context.Background()

	t.Run("deterministic unit vectors", func(t *testing.T) {
		m := NewMockEmbedder()
		a, err := m.EmbedText(ctx, "강남역")
		require.NoError(t, err)
		b, err := m.EmbedText(ctx, "강남역")
		require.NoError(t, err)
		assert.Equal(t, a, b)
		assert.Len(t, a, DefaultDimensions)

		var sum float64
		for _, v := range a {
			sum += float64(v) * float64(v)
		}
		assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-4)
	})

	t.Run("batch uses injected single func", func(t *testing.T) {
		m := NewMockEmbedder()
		m.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text))}, nil
		}
		vecs, err := m.EmbedTexts(ctx, []string{"a", "bb"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1}, {2}}, vecs)
		assert.Equal(t, 1, m.CallCount())
		assert.Equal(t, []string{"a", "bb"}, m.Texts())
	})

	t.Run("reset clears state", func(t *testing.T) {
		m := NewMockEmbedder()
		m.EmbedTextFunc = func(context.Context, string) ([]float32, error) { return nil, errors.New("x") }
		_, err := m.EmbedText(ctx, "a")
		require.Error(t, err)
		m.Reset()
		assert.Equal(t, 0, m.CallCount())
		_, err = m.EmbedText(ctx, "a")
		assert.NoError(t, err)
	})
}

func TestScriptedChatModel(t *testing.T) {
	ctx := context.Background()
	m := NewScriptedChatModel(map[string]string{
		"장소":    "short",
		"장소 추출": "long",
	}, "fallback")

	reply, err := m.Complete(ctx, []ai.Message{ai.System("장소 추출 전문가"), ai.User("q")})
	require.NoError(t, err)
	assert.Equal(t, "long", reply)

	reply, err = m.Complete(ctx, []ai.Message{ai.User("hello")})
	require.NoError(t, err)
	assert.Equal(t, "fallback", reply)
	assert.Equal(t, 2, m.CallCount())
}

func TestMockChatModelStream(t *testing.T) {
	m := NewScriptedChatModel(nil, "one two three")
	var tokens []string
	text, err := m.Stream(context.Background(), []ai.Message{ai.User("x")}, func(_ context.Context, tok string) error {
		tokens = append(tokens, tok)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "one two three", text)
	assert.Equal(t, "one two three", strings.Join(tokens, ""))
	assert.Len(t, tokens, 3)
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	assert.NotNil(t, p.Embedder())
	assert.NotNil(t, p.Classifier())
	assert.NotNil(t, p.Answerer())
	assert.NoError(t, p.Close())
}
