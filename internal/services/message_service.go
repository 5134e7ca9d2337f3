package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/halcyonchat/halcyon/internal/cache"
	"github.com/halcyonchat/halcyon/internal/models"
	pgrepo "github.com/halcyonchat/halcyon/internal/repositories/postgres"
	"github.com/halcyonchat/halcyon/internal/utils"
)

type MessageService interface {
	List(ctx context.Context, userID, conversationID string) ([]models.Message, error)
	Append(ctx context.Context, userID, conversationID, content string, sender models.Sender) (*models.Message, error)
}

type messageService struct {
	msgs   pgrepo.MessageRepo
	convos pgrepo.ConversationRepo
	cache  cache.Cache
}

func NewMessageService(msgs pgrepo.MessageRepo, convos pgrepo.ConversationRepo, c cache.Cache) MessageService {
	return &messageService{msgs: msgs, convos: convos, cache: c}
}

func (s *messageService) List(ctx context.Context, userID, conversationID string) ([]models.Message, error) {
	const op = "MessageService.List"

	if userID == "" || conversationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and conversation_id are required", nil)
	}

	rows, err := s.msgs.ListByConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list messages", err)
	}
	return rows, nil
}

func (s *messageService) Append(ctx context.Context, userID, conversationID, content string, sender models.Sender) (*models.Message, error) {
	const op = "MessageService.Append"

	if userID == "" || conversationID == "" || sender == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Missing required message fields", nil)
	}
	if !sender.Valid() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "sender must be 'user' or 'ai'", nil)
	}

	conv, err := s.convos.GetByID(ctx, conversationID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	if conv.UserID != userID {
		return nil, utils.E(utils.CodeForbidden, op, "forbidden", nil)
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		UserID:         userID,
		Content:        content,
		Sender:         sender,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.msgs.Insert(ctx, msg); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to save message", err)
	}

	// new activity bumps the conversation and stales its cached list entry
	_ = s.convos.Touch(ctx, conversationID)
	if s.cache != nil {
		_ = s.cache.Del(ctx, cache.ConversationsKey(userID), cache.ConversationKey(conversationID))
	}
	return msg, nil
}
