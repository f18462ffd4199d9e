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

package ai

import "context"

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// The returned slice contains embeddings in the same order as the input texts.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a chat prompt.
type Message struct {
	Role    Role
	Content string
}

// System builds a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

// User builds a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant builds an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// CallOptions tunes a single completion call.
type CallOptions struct {
	MaxTokens   int
	Temperature float64
	JSON        bool
}

// CallOption is a functional option for a completion call.
type CallOption func(*CallOptions)

// WithMaxTokens bounds the length of the reply.
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = t
	}
}

// WithJSON asks the model for a JSON reply when the backend supports it.
func WithJSON() CallOption {
	return func(o *CallOptions) {
		o.JSON = true
	}
}

// ApplyCallOptions folds opts into a CallOptions value.
func ApplyCallOptions(opts ...CallOption) CallOptions {
	var o CallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// TokenFunc receives streamed tokens. Returning an error aborts the stream.
type TokenFunc func(ctx context.Context, token string) error

// ChatModel completes chat prompts.
// Implementations must be thread-safe for concurrent use.
type ChatModel interface {
	// Complete returns the full reply text.
	Complete(ctx context.Context, messages []Message, opts ...CallOption) (string, error)

	// Stream delivers the reply token by token to onToken and returns the
	// concatenated text once the model is done.
	Stream(ctx context.Context, messages []Message, onToken TokenFunc, opts ...CallOption) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Classifier returns the small model used for structured decisions.
	Classifier() ChatModel

	// Answerer returns the model used for user-facing replies.
	Answerer() ChatModel

	// Close releases resources held by the provider and its services.
	Close() error
}
