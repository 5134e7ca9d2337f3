package services

import (
	"context"
	"errors"
	"time"

	"github.com/halcyonchat/halcyon/internal/cache"
	"github.com/halcyonchat/halcyon/internal/models"
	pgrepo "github.com/halcyonchat/halcyon/internal/repositories/postgres"
	"github.com/halcyonchat/halcyon/internal/utils"
)

const conversationCacheTTL = 60 * time.Second

type ConversationService interface {
	List(ctx context.Context, userID string) ([]models.Conversation, error)
	Create(ctx context.Context, userID, id, title string) (*models.Conversation, error)
	Get(ctx context.Context, userID, id string) (*models.Conversation, error)
	// Update sets a new title when title is non-nil, otherwise only bumps
	// updated_at.
	Update(ctx context.Context, userID, id string, title *string) error
}

type conversationService struct {
	convos pgrepo.ConversationRepo
	cache  cache.Cache
}

func NewConversationService(convos pgrepo.ConversationRepo, c cache.Cache) ConversationService {
	return &conversationService{convos: convos, cache: c}
}

func (s *conversationService) List(ctx context.Context, userID string) ([]models.Conversation, error) {
	const op = "ConversationService.List"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	key := cache.ConversationsKey(userID)
	if s.cache != nil {
		var cached []models.Conversation
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	rows, err := s.convos.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversations", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, key, rows, conversationCacheTTL)
	}
	return rows, nil
}

func (s *conversationService) Create(ctx context.Context, userID, id, title string) (*models.Conversation, error) {
	const op = "ConversationService.Create"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}
	if title == "" {
		title = models.DefaultConversationTitle
	}

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        id,
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.convos.Insert(ctx, conv); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create conversation", err)
	}

	s.invalidate(ctx, userID, id)
	return conv, nil
}

func (s *conversationService) Get(ctx context.Context, userID, id string) (*models.Conversation, error) {
	const op = "ConversationService.Get"

	if userID == "" || id == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	conv, err := s.convos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}

	// a foreign conversation reads as absent, never as someone else's row
	if conv.UserID != userID {
		return nil, utils.E(utils.CodeNotFound, op, "conversation not found", nil)
	}
	return conv, nil
}

func (s *conversationService) Update(ctx context.Context, userID, id string, title *string) error {
	const op = "ConversationService.Update"

	if userID == "" || id == "" {
		return utils.E(utils.CodeInvalidArgument, op, "user_id and id are required", nil)
	}

	conv, err := s.convos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "conversation not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to get conversation", err)
	}
	if conv.UserID != userID {
		return utils.E(utils.CodeForbidden, op, "unauthorized to update this conversation", nil)
	}

	if title != nil {
		err = s.convos.UpdateTitle(ctx, id, *title)
	} else {
		err = s.convos.Touch(ctx, id)
	}
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update conversation", err)
	}

	s.invalidate(ctx, userID, id)
	return nil
}

func (s *conversationService) invalidate(ctx context.Context, userID, id string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, cache.ConversationsKey(userID), cache.ConversationKey(id))
}
