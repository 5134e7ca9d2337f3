package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/halcyonchat/halcyon/internal/models"
	"github.com/halcyonchat/halcyon/internal/providers/llm"
	"github.com/halcyonchat/halcyon/internal/utils"
)

const (
	chatTemperature  float32 = 0.7
	chatMaxTokens    int32   = 1024
	titleTemperature float32 = 0.8
	titleMaxTokens   int32   = 50
	titleMaxWords            = 7
)

const titlePromptTemplate = `You are a helpful assistant that generates concise, creative, and unique titles for chat conversations.
Based on the following user's first message, provide a short title (max 5-7 words) that hints at the conversation's potential topic or is a creative take on the initial interaction.
Do not include any conversational phrases or greetings, just the title.

User message: '%s'

Title:`

// ChatTurn is one prior message of the conversation being relayed.
type ChatTurn struct {
	Sender  models.Sender `json:"sender"`
	Content string        `json:"content"`
}

type ChatService interface {
	// StreamReply validates the turn list and opens an incremental reply
	// stream. The returned channels follow the provider contract: chunks
	// closes when the stream ends, errs carries at most one error.
	StreamReply(ctx context.Context, turns []ChatTurn) (<-chan string, <-chan error, error)
	GenerateTitle(ctx context.Context, firstUserMessage string) (string, error)
}

type chatService struct {
	provider llm.Provider
}

func NewChatService(provider llm.Provider) ChatService {
	return &chatService{provider: provider}
}

func (s *chatService) StreamReply(ctx context.Context, turns []ChatTurn) (<-chan string, <-chan error, error) {
	const op = "ChatService.StreamReply"

	if len(turns) == 0 {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "No messages provided", nil)
	}
	if turns[len(turns)-1].Sender != models.SenderUser {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "Last message must be from the user", nil)
	}

	msgs := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		role := llm.RoleAssistant
		if t.Sender == models.SenderUser {
			role = llm.RoleUser
		}
		msgs = append(msgs, llm.Message{Role: role, Content: t.Content})
	}

	chunks, errs := s.provider.StreamChat(ctx, msgs, llm.Options{
		Model:       llm.ChatModel,
		Temperature: chatTemperature,
		MaxTokens:   chatMaxTokens,
	})
	return chunks, errs, nil
}

func (s *chatService) GenerateTitle(ctx context.Context, firstUserMessage string) (string, error) {
	const op = "ChatService.GenerateTitle"

	if firstUserMessage == "" {
		return "", utils.E(utils.CodeInvalidArgument, op, "First user message is required", nil)
	}

	prompt := fmt.Sprintf(titlePromptTemplate, firstUserMessage)
	chunks, errs := s.provider.StreamChat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, llm.Options{
		Model:       llm.TitleModel,
		Temperature: titleTemperature,
		MaxTokens:   titleMaxTokens,
	})

	// not forwarded: the whole stream is accumulated server-side
	var b strings.Builder
	for chunk := range chunks {
		b.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return "", utils.E(utils.CodeInternal, op, "failed to generate title", err)
	}

	return sanitizeTitle(b.String()), nil
}

// sanitizeTitle trims the raw model output, strips one surrounding quote
// pair, and caps the title at titleMaxWords words.
func sanitizeTitle(raw string) string {
	title := strings.TrimSpace(raw)

	if len(title) >= 2 && strings.HasPrefix(title, `"`) && strings.HasSuffix(title, `"`) {
		title = title[1 : len(title)-1]
	}

	words := strings.Fields(title)
	if len(words) > titleMaxWords {
		title = strings.Join(words[:titleMaxWords], " ") + "..."
	}
	return title
}
