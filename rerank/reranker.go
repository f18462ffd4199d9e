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

package rerank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/poiesic/wayfinder/core"
)

// DefaultK is the selection size when a request does not set one.
const DefaultK = 5

const maxReplyTokens = 50

// ErrModelRequired is returned when no chat model is provided.
var ErrModelRequired = errors.New("chat model required")

// Request describes one rerank call. Exactly one of Query or Profile is
// normally set; Profile is used by the recommendation path.
type Request struct {
	Query      string
	Profile    string
	Candidates []core.Candidate
	// K is the requested selection size; 0 means DefaultK.
	K int
	// DateIntent adds an instruction favouring romantic, quiet venues.
	DateIntent bool
}

// Result is the reranked shortlist.
type Result struct {
	Candidates []core.Candidate
	// Selected holds the model's validated ids, nil on fallback.
	Selected []int
	Fallback bool
	Raw      string
}

// Reranker selects the most relevant candidates with a chat model.
type Reranker struct {
	model  ai.ChatModel
	logger *slog.Logger
}

// Option configures a Reranker.
type Option func(*Reranker) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger.With("component", "rerank")
		return nil
	}
}

// NewReranker creates a new reranker.
func NewReranker(model ai.ChatModel, opts ...Option) (*Reranker, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	r := &Reranker{
		model:  model,
		logger: slog.Default().With("component", "rerank"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// DesiredK bounds the selection size by the request and the candidate count.
func DesiredK(k, n int) int {
	if k <= 0 {
		k = DefaultK
	}
	return max(1, min(k, n))
}

// Rerank returns the selected candidates. It never returns an error.
func (r *Reranker) Rerank(ctx context.Context, req Request) Result {
	n := len(req.Candidates)
	if n == 0 {
		return Result{Candidates: []core.Candidate{}}
	}
	k := DesiredK(req.K, n)

	raw, err := r.model.Complete(ctx, buildPrompt(req, k), ai.WithMaxTokens(maxReplyTokens), ai.WithTemperature(0))
	if err != nil {
		r.logger.Warn("rerank call failed, keeping score order", "err", err)
		return fallback(req.Candidates, k, "")
	}

	selected, err := parseSelection(raw, n).Unwrap()
	if err != nil {
		r.logger.Debug("unusable rerank reply, keeping score order", "raw", raw, "err", err)
		return fallback(req.Candidates, k, raw)
	}

	out := make([]core.Candidate, 0, k)
	picked := make(map[int]bool, len(selected))
	for _, i := range selected {
		if len(out) == k {
			break
		}
		out = append(out, req.Candidates[i])
		picked[i] = true
	}
	for i, c := range req.Candidates {
		if len(out) == k {
			break
		}
		if !picked[i] {
			out = append(out, c)
		}
	}
	return Result{Candidates: out, Selected: selected, Raw: raw}
}

func fallback(candidates []core.Candidate, k int, raw string) Result {
	out := make([]core.Candidate, k)
	copy(out, candidates[:k])
	return Result{Candidates: out, Fallback: true, Raw: raw}
}

// parseSelection decodes a JSON id array, dropping duplicates, non-integers
// and ids outside [0, n).
func parseSelection(raw string, n int) ai.Result[[]int] {
	values, err := ai.ParseJSON[[]any](raw).Unwrap()
	if err != nil {
		return ai.Err[[]int](err)
	}
	seen := make(map[int]bool, len(values))
	var ids []int
	for _, v := range values {
		id, ok := toInt(v)
		if !ok || id < 0 || id >= n || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return ai.Err[[]int](fmt.Errorf("%w: no valid ids", ai.ErrUnparseable))
	}
	return ai.Ok(ids)
}

func toInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x != float64(int(x)) {
			return 0, false
		}
		return int(x), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		return i, err == nil
	default:
		return 0, false
	}
}
