package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/halcyonchat/halcyon/internal/models"
)

type MessageRepo interface {
	Insert(ctx context.Context, msg *models.Message) error
	// ListByConversation returns the canonical read order: created_at ASC.
	ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Message, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) Insert(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *messageRepo) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	var rows []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND user_id = ?", conversationID, userID).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *messageRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Message{}).Error
}
