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
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/wayfinder/ai"
)

// MockChatModel is a test double for ai.ChatModel.
type MockChatModel struct {
	// CompleteFunc produces the reply if set.
	CompleteFunc func(ctx context.Context, messages []ai.Message, opts ai.CallOptions) (string, error)

	mu    sync.Mutex
	calls [][]ai.Message
}

// NewMockChatModel creates a chat model that replies with an empty string
// unless CompleteFunc is set.
func NewMockChatModel() *MockChatModel {
	return &MockChatModel{}
}

// NewScriptedChatModel creates a chat model that scans the prompt for each
// script key and answers with the matching reply. Longer keys are tried first.
func NewScriptedChatModel(script map[string]string, fallback string) *MockChatModel {
	keys := make([]string, 0, len(script))
	for k := range script {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})

	return &MockChatModel{
		CompleteFunc: func(_ context.Context, messages []ai.Message, _ ai.CallOptions) (string, error) {
			prompt := joinMessages(messages)
			for _, k := range keys {
				if strings.Contains(prompt, k) {
					return script[k], nil
				}
			}
			return fallback, nil
		},
	}
}

// Complete records the prompt and returns the scripted reply.
func (m *MockChatModel) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, append([]ai.Message(nil), messages...))
	m.mu.Unlock()

	if m.CompleteFunc == nil {
		return "", nil
	}
	return m.CompleteFunc(ctx, messages, ai.ApplyCallOptions(opts...))
}

// Stream returns the Complete reply, delivered one word at a time.
func (m *MockChatModel) Stream(ctx context.Context, messages []ai.Message, onToken ai.TokenFunc, opts ...ai.CallOption) (string, error) {
	text, err := m.Complete(ctx, messages, opts...)
	if err != nil {
		return "", err
	}
	if onToken == nil {
		return text, nil
	}
	for _, tok := range splitKeepSpaces(text) {
		if err := onToken(ctx, tok); err != nil {
			return text, err
		}
	}
	return text, nil
}

// Calls returns every prompt seen so far.
func (m *MockChatModel) Calls() [][]ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]ai.Message(nil), m.calls...)
}

// CallCount returns the number of completions requested.
func (m *MockChatModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func joinMessages(messages []ai.Message) string {
	parts := make([]string, len(messages))
	for i, msg := range messages {
		parts[i] = msg.Content
	}
	return strings.Join(parts, "\n")
}

func splitKeepSpaces(s string) []string {
	var out []string
	start := 0
	for i, r := range s {
		if r == ' ' && i > start {
			out = append(out, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		out = append(out, s[start:])
	}
	return out
}
