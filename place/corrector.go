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

package place

import (
	"context"
	"log/slog"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
	"github.com/poiesic/wayfinder/places"
	"github.com/poiesic/wayfinder/storage"
)

const correctSystemPrompt = "너는 지명 오타 보정 전문가야.\n" +
	"입력된 area/point에서 오타로 보이는 부분만 표준 지명으로 고쳐라.\n" +
	"오타가 아니면 원문을 그대로 유지하고, 변경이 없으면 changed=false로 표시하라.\n" +
	"JSON 형식만 반환: {\"area\": \"...\", \"point\": \"...\", \"changed\": true/false}"

const correctMaxTokens = 60

type correctionReply struct {
	mentionReply
	Changed bool `json:"changed"`
}

// Correction is the outcome of a correction attempt. Original is only set
// when Changed is true.
type Correction struct {
	Place    core.PlaceMention
	Original core.PlaceMention
	Changed  bool
	// Learned lists the aliases newly written to the store.
	Learned []LearnedAlias
}

// LearnedAlias is one alias persisted after an accepted correction.
type LearnedAlias struct {
	Kind      storage.AliasKind
	Canonical string
	Alias     string
}

// Corrector fixes misspelled place names.
type Corrector struct {
	model   ai.ChatModel
	places  places.Autocompleter
	aliases storage.AliasRepository
	logger  *slog.Logger
}

// CorrectorOption configures a Corrector.
type CorrectorOption func(*Corrector) error

// WithCorrectorLogger sets a custom logger.
// Default is slog.Default().
func WithCorrectorLogger(logger *slog.Logger) CorrectorOption {
	return func(c *Corrector) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger.With("component", "place-corrector")
		return nil
	}
}

// NewCorrector creates a new corrector.
func NewCorrector(model ai.ChatModel, ac places.Autocompleter, aliases storage.AliasRepository, opts ...CorrectorOption) (*Corrector, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	if ac == nil {
		return nil, ErrAutocompleterRequired
	}
	if aliases == nil {
		return nil, ErrAliasRepositoryRequired
	}
	c := &Corrector{
		model:   model,
		places:  ac,
		aliases: aliases,
		logger:  slog.Default().With("component", "place-corrector"),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Correct asks the model for typo fixes to m. A fix is kept only when the
// autocomplete service knows the corrected name; rejected fixes revert to
// the original text. Accepted fixes are stored as aliases of the corrected
// name.
func (c *Corrector) Correct(ctx context.Context, query string, m core.PlaceMention) Correction {
	unchanged := Correction{Place: m}
	if m.IsEmpty() {
		return unchanged
	}

	msgs := []ai.Message{
		ai.System(correctSystemPrompt),
		ai.User("문장: " + query + "\narea: " + nullable(m.Area) + "\npoint: " + nullable(m.Point) + "\n보정 결과:"),
	}
	raw, err := c.model.Complete(ctx, msgs, ai.WithMaxTokens(correctMaxTokens), ai.WithTemperature(0), ai.WithJSON())
	if err != nil {
		c.logger.Warn("place correction failed", "err", err)
		return unchanged
	}
	reply, err := ai.ParseJSON[correctionReply](raw).Unwrap()
	if err != nil || !reply.Changed {
		return unchanged
	}

	fixed := reply.mention()
	if fixed.Area == "" {
		fixed.Area = m.Area
	}
	if fixed.Point == "" {
		fixed.Point = m.Point
	}

	if fixed.Point != m.Point && !c.known(ctx, fixed.Point, "") {
		c.logger.Debug("rejecting point correction", "from", m.Point, "to", fixed.Point)
		fixed.Point = m.Point
	}
	if fixed.Area != m.Area {
		filter := ""
		if core.HasAdminSuffix(fixed.Area) {
			filter = places.TypeFilterRegions
		}
		if !c.known(ctx, fixed.Area, filter) {
			c.logger.Debug("rejecting area correction", "from", m.Area, "to", fixed.Area)
			fixed.Area = m.Area
		}
	}
	if fixed == m {
		return unchanged
	}

	out := Correction{Place: fixed, Original: m, Changed: true}
	if m.Area != "" && fixed.Area != m.Area {
		kind := storage.AliasKeyword
		if core.HasAdminSuffix(fixed.Area) {
			kind = storage.AliasAdmin
		}
		out.Learned = c.learn(ctx, out.Learned, kind, fixed.Area, m.Area)
	}
	if m.Point != "" && fixed.Point != m.Point {
		out.Learned = c.learn(ctx, out.Learned, storage.AliasKeyword, fixed.Point, m.Point)
	}
	c.logger.Debug("place corrected", "before", m, "after", fixed)
	return out
}

// known reports whether autocomplete returns anything for value.
func (c *Corrector) known(ctx context.Context, value, filter string) bool {
	if value == "" {
		return false
	}
	preds, err := c.places.Autocomplete(ctx, value, 1, filter)
	if err != nil {
		c.logger.Warn("autocomplete validation failed", "value", value, "err", err)
		return false
	}
	return len(preds) > 0
}

func (c *Corrector) learn(ctx context.Context, learned []LearnedAlias, kind storage.AliasKind, canonical, alias string) []LearnedAlias {
	added, err := c.aliases.AddAlias(ctx, kind, canonical, alias)
	if err != nil {
		c.logger.Warn("failed to store alias", "kind", kind, "canonical", canonical, "alias", alias, "err", err)
		return learned
	}
	if !added {
		return learned
	}
	return append(learned, LearnedAlias{Kind: kind, Canonical: canonical, Alias: alias})
}

func nullable(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
