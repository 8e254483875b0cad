// Package transport defines the outbound messaging contract shared by
// delivery adapters.
package transport

import "context"

// ChatTarget addresses a chat. Chat is a numeric id or an "@channel" name;
// ThreadID selects a forum topic (0 if none).
type ChatTarget struct {
	Chat     string
	ThreadID int
}

type MessageRef struct {
	Chat      string
	ThreadID  int
	MessageID int
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
}

// Adapter delivers a single message. Payloads must already fit the
// channel's length limit.
type Adapter interface {
	SendText(ctx context.Context, to ChatTarget, text string, opt *SendOptions) (MessageRef, error)
}
