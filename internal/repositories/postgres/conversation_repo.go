package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/halcyonchat/halcyon/internal/models"
	"github.com/halcyonchat/halcyon/internal/utils"
)

type ConversationRepo interface {
	Insert(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id string) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID string) ([]models.Conversation, error)
	// UpdateTitle sets a new title and bumps updated_at in one statement.
	UpdateTitle(ctx context.Context, id, title string) error
	// Touch bumps updated_at only (PUT with an empty body, new-message bump).
	Touch(ctx context.Context, id string) error
	DeleteByUser(ctx context.Context, userID string) error
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Insert(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var row models.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &row, err
}

func (r *conversationRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var rows []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *conversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"title":      title,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *conversationRepo) Touch(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}

func (r *conversationRepo) DeleteByUser(ctx context.Context, userID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Conversation{}).Error
}
