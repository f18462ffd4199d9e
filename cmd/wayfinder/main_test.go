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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/wayfinder/config"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/dialogue"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"wayfinder"}, args...))
	return out.String(), err
}

func TestSetupLogger(t *testing.T) {
	original := slog.Default()
	t.Cleanup(func() { slog.SetDefault(original) })

	for _, level := range []string{"debug", "INFO", "warn", "error"} {
		t.Run(level, func(t *testing.T) {
			_, err := runApp(t, "--log-level", level, "config", "--help")
			assert.NoError(t, err)
		})
	}

	t.Run("invalid level", func(t *testing.T) {
		_, err := runApp(t, "--log-level", "verbose", "config", "--help")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		args []string
		flag string
	}{
		{[]string{"recommend"}, "profile"},
		{[]string{"index", "--file", "x.json"}, "category"},
		{[]string{"index", "--category", "cafe"}, "file"},
		{[]string{"locations", "import"}, "dir"},
		{[]string{"locations", "export"}, "dir"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.flag)
		})
	}
}

func TestParseCategory(t *testing.T) {
	c, err := parseCategory("")
	require.NoError(t, err)
	assert.Equal(t, core.Category(""), c)

	c, err = parseCategory("Cafe")
	require.NoError(t, err)
	assert.Equal(t, core.CategoryCafe, c)

	_, err = parseCategory("museum")
	assert.ErrorIs(t, err, core.ErrInvalidCategory)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wayfinder.yml")

	out, err := runApp(t, "--config", path, "--db", "custom.db", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.DBPath)

	_, err = runApp(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runApp(t, "--config", path, "config", "init", "--force")
	assert.NoError(t, err)
}

func TestLocationsRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	seed := filepath.Join(tmp, "seed")
	require.NoError(t, os.MkdirAll(seed, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(seed, "keyword_aliases.json"),
		[]byte(`{"강남역": ["걍남역", "강남 역"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(seed, "geo_centers.json"),
		[]byte(`{"홍대": {"centers": [[37.5563, 126.9236]], "radius_by_intent": {"cafe": 1.5}}}`), 0644))

	cfgPath := filepath.Join(tmp, "missing.yml")
	db := filepath.Join(tmp, "db")

	out, err := runApp(t, "--config", cfgPath, "--db", db, "locations", "import", "--dir", seed)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 admin aliases, 1 keyword aliases, 0 cached anchors, 1 geo centers")

	exported := filepath.Join(tmp, "out")
	out, err = runApp(t, "--config", cfgPath, "--db", db, "locations", "export", "--dir", exported)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 0 admin aliases, 1 keyword aliases, 0 cached anchors, 1 geo centers")

	data, err := os.ReadFile(filepath.Join(exported, "keyword_aliases.json"))
	require.NoError(t, err)
	var aliases map[string][]string
	require.NoError(t, json.Unmarshal(data, &aliases))
	assert.Equal(t, []string{"걍남역", "강남 역"}, aliases["강남역"])
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "profile.yml")
		data := "city: 서울\ncompanion_type: [연인]\npreferred_cafe_types: [디저트]\nvisits:\n  - id: 3\n    category: cafe\norigin:\n  lat: 37.5\n  lng: 127.0\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		p, err := loadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, "서울", p.City)
		assert.Equal(t, []string{"연인"}, p.Companions)
		assert.Equal(t, []string{"디저트"}, p.CafeTypes)
		require.Len(t, p.Visits, 1)
		assert.Equal(t, int64(3), p.Visits[0].ID)
		assert.Equal(t, core.CategoryCafe, p.Visits[0].Category)
		require.NotNil(t, p.Origin)
		assert.Equal(t, 37.5, p.Origin.Lat)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "profile.json")
		data := `{"city": "서울", "preferred_moods": ["조용한"], "origin": [37.5, 127.0]}`
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))

		p, err := loadProfile(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"조용한"}, p.Moods)
		require.NotNil(t, p.Origin)
		assert.Equal(t, 127.0, p.Origin.Lng)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadProfile(filepath.Join(dir, "nope.yml"))
		assert.Error(t, err)
	})
}

func feed(events ...dialogue.Event) <-chan dialogue.Event {
	ch := make(chan dialogue.Event, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

func TestRenderer(t *testing.T) {
	turnCtx := &dialogue.Context{LastQuery: "강남역 카페"}

	t.Run("streamed text", func(t *testing.T) {
		var buf bytes.Buffer
		got, err := renderer{w: &buf}.render(feed(
			dialogue.Event{Type: dialogue.EventNode, Node: "answer"},
			dialogue.Event{Type: dialogue.EventToken, Token: "안녕 "},
			dialogue.Event{Type: dialogue.EventToken, Token: "하세요"},
			dialogue.Event{Type: dialogue.EventFinal, Final: "안녕 하세요"},
			dialogue.Event{Type: dialogue.EventContext, Context: turnCtx},
			dialogue.Event{Type: dialogue.EventDone},
		))
		require.NoError(t, err)
		assert.Equal(t, "안녕 하세요\n", buf.String())
		assert.Same(t, turnCtx, got)
	})

	t.Run("final without tokens", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := renderer{w: &buf}.render(feed(
			dialogue.Event{Type: dialogue.EventDebug, Debug: map[string]any{"stage": "retrieve"}},
			dialogue.Event{Type: dialogue.EventFinal, Final: dialogue.MsgNoResults},
		))
		require.NoError(t, err)
		assert.Equal(t, "[debug] {\"stage\":\"retrieve\"}\n"+dialogue.MsgNoResults+"\n", buf.String())
	})

	t.Run("superseded final replaces streamed tokens", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := renderer{w: &buf}.render(feed(
			dialogue.Event{Type: dialogue.EventToken, Token: "강남역 "},
			dialogue.Event{Type: dialogue.EventFinal, Final: "대체 답변", Superseded: true},
		))
		require.NoError(t, err)
		assert.Equal(t, "강남역 \n\n대체 답변\n", buf.String())
	})

	t.Run("json lines", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := renderer{w: &buf, json: true}.render(feed(
			dialogue.Event{Type: dialogue.EventToken, TurnID: "t1", Token: "a"},
			dialogue.Event{Type: dialogue.EventDone, TurnID: "t1"},
		))
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)
		assert.JSONEq(t, `{"type":"token","turn_id":"t1","token":"a"}`, lines[0])
		assert.JSONEq(t, `{"type":"done","turn_id":"t1"}`, lines[1])
	})
}

func TestChatLoopStopsOnQuit(t *testing.T) {
	var buf bytes.Buffer
	err := chatLoop(context.Background(), nil, dialogue.TurnInput{}, strings.NewReader("\n/quit\n"), renderer{w: &buf})
	require.NoError(t, err)
	assert.Equal(t, "> > ", buf.String())
}
