// Package llm defines the minimal chat-completion contract the bot speaks
// to its language-model provider.
package llm

import (
	"context"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

type Request struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

type Result struct {
	Text     string
	Usage    Usage
	Duration time.Duration
}

type Client interface {
	Chat(ctx context.Context, req Request) (Result, error)
}
