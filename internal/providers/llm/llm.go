package llm

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int32
}

type Provider interface {
	// StreamChat returns a stream of text chunks (incremental).
	StreamChat(ctx context.Context, msgs []Message, opts Options) (chunks <-chan string, errs <-chan error)
	Close() error
}
