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

package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/wayfinder/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ChatModel implements ai.ChatModel using OpenAI-compatible chat APIs.
type ChatModel struct {
	client      llms.Model
	temperature float64
	logger      *slog.Logger
}

func newChatModel(config *ai.Config, model string, temperature float64) (*ChatModel, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.ClassifierHost),
		openai.WithToken(config.APIKey),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}

	return &ChatModel{
		client:      client,
		temperature: temperature,
		logger:      slog.Default().With("component", "openai-chat", "model", model),
	}, nil
}

// NewChatModel creates a chat model for the given model identifier.
func NewChatModel(config *ai.Config, model string) (ai.ChatModel, error) {
	return newChatModel(config, model, 0)
}

// Complete returns the full reply text.
func (m *ChatModel) Complete(ctx context.Context, messages []ai.Message, opts ...ai.CallOption) (string, error) {
	resp, err := m.client.GenerateContent(ctx, toContent(messages), m.callOptions(opts)...)
	if err != nil {
		m.logger.Warn("failed to generate content", "err", err)
		return "", err
	}
	if len(resp.Choices) < 1 {
		m.logger.Debug("no choices returned from model")
		return "", ai.ErrEmptyResponse
	}
	return strings.TrimSpace(resp.Choices[0].Content), nil
}

// Stream delivers the reply token by token and returns the full text.
func (m *ChatModel) Stream(ctx context.Context, messages []ai.Message, onToken ai.TokenFunc, opts ...ai.CallOption) (string, error) {
	var sb strings.Builder
	callOpts := append(m.callOptions(opts), llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
		if len(chunk) == 0 {
			return nil
		}
		sb.Write(chunk)
		if onToken == nil {
			return nil
		}
		return onToken(ctx, string(chunk))
	}))

	resp, err := m.client.GenerateContent(ctx, toContent(messages), callOpts...)
	if err != nil {
		m.logger.Warn("streaming generation failed", "err", err)
		return sb.String(), err
	}
	if sb.Len() == 0 && resp != nil && len(resp.Choices) > 0 {
		// Some backends ignore the streaming callback and answer in one piece.
		text := resp.Choices[0].Content
		if onToken != nil && text != "" {
			if err := onToken(ctx, text); err != nil {
				return text, err
			}
		}
		return text, nil
	}
	return sb.String(), nil
}

func (m *ChatModel) callOptions(opts []ai.CallOption) []llms.CallOption {
	o := ai.ApplyCallOptions(append([]ai.CallOption{ai.WithTemperature(m.temperature)}, opts...)...)
	out := []llms.CallOption{llms.WithTemperature(o.Temperature)}
	if o.MaxTokens > 0 {
		out = append(out, llms.WithMaxTokens(o.MaxTokens))
	}
	if o.JSON {
		out = append(out, llms.WithJSONMode())
	}
	return out
}

func toContent(messages []ai.Message) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		role := llms.ChatMessageTypeHuman
		switch msg.Role {
		case ai.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case ai.RoleAssistant:
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(scrub(msg.Content))},
		})
	}
	return content
}

// scrub drops NUL bytes and invalid UTF-8 that some servers reject.
func scrub(s string) string {
	s = strings.ToValidUTF8(s, "")
	return strings.ReplaceAll(s, "\x00", "")
}
