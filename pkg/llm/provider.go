package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Stream is a lazy, finite, non-restartable sequence of response fragments.
// Recv returns io.EOF when the model is done; any other error aborts the
// stream. Fragments arrive in order and are concatenated by the consumer.
type Stream interface {
	Recv() (string, error)
	Close() error
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// ChatStream sends a chat history to the model and returns the
	// response as a fragment stream, consumed until io.EOF.
	ChatStream(ctx context.Context, history []Message, options ...Option) (Stream, error)
}

// Collect drains a stream to completion and concatenates the fragments.
// The stream is closed regardless of outcome.
func Collect(s Stream) (string, error) {
	defer s.Close()
	var out []byte
	for {
		fragment, err := s.Recv()
		if err != nil {
			if isEOF(err) {
				return string(out), nil
			}
			return "", err
		}
		out = append(out, fragment...)
	}
}
