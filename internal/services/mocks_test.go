package services_test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/halcyonchat/halcyon/internal/models"
)

// Func-field mocks: each test assigns only the calls it expects; an
// unassigned field panics and fails the test loudly.

type mockConversationRepo struct {
	InsertFn       func(ctx context.Context, conv *models.Conversation) error
	GetByIDFn      func(ctx context.Context, id string) (*models.Conversation, error)
	ListByUserFn   func(ctx context.Context, userID string) ([]models.Conversation, error)
	UpdateTitleFn  func(ctx context.Context, id, title string) error
	TouchFn        func(ctx context.Context, id string) error
	DeleteByUserFn func(ctx context.Context, userID string) error
}

func (m *mockConversationRepo) Insert(ctx context.Context, conv *models.Conversation) error {
	return m.InsertFn(ctx, conv)
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	return m.ListByUserFn(ctx, userID)
}

func (m *mockConversationRepo) UpdateTitle(ctx context.Context, id, title string) error {
	return m.UpdateTitleFn(ctx, id, title)
}

func (m *mockConversationRepo) Touch(ctx context.Context, id string) error {
	return m.TouchFn(ctx, id)
}

func (m *mockConversationRepo) DeleteByUser(ctx context.Context, userID string) error {
	return m.DeleteByUserFn(ctx, userID)
}

type mockMessageRepo struct {
	InsertFn             func(ctx context.Context, msg *models.Message) error
	ListByConversationFn func(ctx context.Context, conversationID, userID string) ([]models.Message, error)
	DeleteByUserFn       func(ctx context.Context, userID string) error
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *models.Message) error {
	return m.InsertFn(ctx, msg)
}

func (m *mockMessageRepo) ListByConversation(ctx context.Context, conversationID, userID string) ([]models.Message, error) {
	return m.ListByConversationFn(ctx, conversationID, userID)
}

func (m *mockMessageRepo) DeleteByUser(ctx context.Context, userID string) error {
	return m.DeleteByUserFn(ctx, userID)
}

type mockUserRepo struct {
	InsertFn     func(ctx context.Context, u *models.User) error
	GetByIDFn    func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFn func(ctx context.Context, email string) (*models.User, error)
	UpdateFn     func(ctx context.Context, u *models.User) error
	DeleteFn     func(ctx context.Context, id string) error
}

func (m *mockUserRepo) Insert(ctx context.Context, u *models.User) error {
	return m.InsertFn(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return m.GetByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFn(ctx, email)
}

func (m *mockUserRepo) Update(ctx context.Context, u *models.User) error {
	return m.UpdateFn(ctx, u)
}

func (m *mockUserRepo) Delete(ctx context.Context, id string) error {
	return m.DeleteFn(ctx, id)
}

// memCache is an in-process stand-in for the Redis cache. TTLs are ignored.
type memCache struct {
	entries map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memCache) SetJSON(_ context.Context, key string, val any, _ time.Duration) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}
