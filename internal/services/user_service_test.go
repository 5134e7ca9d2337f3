package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halcyonchat/halcyon/internal/models"
	"github.com/halcyonchat/halcyon/internal/services"
	"github.com/halcyonchat/halcyon/internal/utils"
)

func TestSignup(t *testing.T) {
	t.Run("duplicate email conflicts", func(t *testing.T) {
		users := &mockUserRepo{
			GetByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: "u1", Email: "alice@example.com"}, nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		_, err := svc.Signup(context.Background(), "u2", "alice@example.com", "Alice", "")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeConflict))
	})

	t.Run("new user created with hashed password", func(t *testing.T) {
		var inserted *models.User
		users := &mockUserRepo{
			GetByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, utils.ErrNotFound
			},
			InsertFn: func(_ context.Context, u *models.User) error {
				inserted = u
				return nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		got, err := svc.Signup(context.Background(), "u1", "alice@example.com", "Alice", "s3cret")
		require.NoError(t, err)
		require.NotNil(t, inserted)
		assert.Equal(t, "u1", got.ID)
		assert.NotEmpty(t, got.PasswordHash)
		assert.NotEqual(t, "s3cret", got.PasswordHash)
		require.NoError(t, utils.CheckPassword(got.PasswordHash, "s3cret"))
	})

	t.Run("missing id or email rejected", func(t *testing.T) {
		svc := services.NewUserService(&mockUserRepo{}, &mockConversationRepo{}, &mockMessageRepo{})
		_, err := svc.Signup(context.Background(), "", "alice@example.com", "Alice", "")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	})
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("s3cret")
	require.NoError(t, err)
	stored := &models.User{ID: "u1", Email: "alice@example.com", PasswordHash: hash}

	users := &mockUserRepo{
		GetByEmailFn: func(_ context.Context, email string) (*models.User, error) {
			if email == stored.Email {
				return stored, nil
			}
			return nil, utils.ErrNotFound
		},
	}
	svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

	t.Run("valid credentials", func(t *testing.T) {
		got, err := svc.Login(context.Background(), "alice@example.com", "s3cret")
		require.NoError(t, err)
		assert.Equal(t, "u1", got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "alice@example.com", "guess")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	})

	t.Run("unknown email looks like wrong credentials", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "nobody@example.com", "s3cret")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Run("requires name and email", func(t *testing.T) {
		svc := services.NewUserService(&mockUserRepo{}, &mockConversationRepo{}, &mockMessageRepo{})
		_, err := svc.UpdateProfile(context.Background(), "u1", "", "alice@example.com", "", nil)
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
	})

	t.Run("email change resets verification", func(t *testing.T) {
		stored := &models.User{ID: "u1", Email: "alice@example.com", Name: "Alice", IsEmailVerified: true}
		var updated *models.User
		users := &mockUserRepo{
			GetByIDFn: func(_ context.Context, _ string) (*models.User, error) {
				return stored, nil
			},
			GetByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return nil, utils.ErrNotFound
			},
			UpdateFn: func(_ context.Context, u *models.User) error {
				updated = u
				return nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		got, err := svc.UpdateProfile(context.Background(), "u1", "Alice", "new@example.com", "", nil)
		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.Equal(t, "new@example.com", got.Email)
		assert.False(t, got.IsEmailVerified)
	})

	t.Run("email collision conflicts", func(t *testing.T) {
		users := &mockUserRepo{
			GetByIDFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: "u1", Email: "alice@example.com"}, nil
			},
			GetByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: "u2", Email: "taken@example.com"}, nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		_, err := svc.UpdateProfile(context.Background(), "u1", "Alice", "taken@example.com", "", nil)
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeConflict))
	})
}

func TestChangePassword(t *testing.T) {
	hash, err := utils.HashPassword("old-pass")
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		users := &mockUserRepo{
			GetByIDFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: "u1", PasswordHash: hash}, nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		err := svc.ChangePassword(context.Background(), "u1", "wrong", "new-pass")
		require.Error(t, err)
		assert.True(t, utils.IsCode(err, utils.CodeUnauthorized))
	})

	t.Run("rotates the hash", func(t *testing.T) {
		var updated *models.User
		users := &mockUserRepo{
			GetByIDFn: func(_ context.Context, _ string) (*models.User, error) {
				return &models.User{ID: "u1", PasswordHash: hash}, nil
			},
			UpdateFn: func(_ context.Context, u *models.User) error {
				updated = u
				return nil
			},
		}
		svc := services.NewUserService(users, &mockConversationRepo{}, &mockMessageRepo{})

		require.NoError(t, svc.ChangePassword(context.Background(), "u1", "old-pass", "new-pass"))
		require.NotNil(t, updated)
		require.NoError(t, utils.CheckPassword(updated.PasswordHash, "new-pass"))
	})
}

func TestDeleteAccount(t *testing.T) {
	var order []string
	users := &mockUserRepo{
		GetByIDFn: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: "u1"}, nil
		},
		DeleteFn: func(_ context.Context, _ string) error {
			order = append(order, "user")
			return nil
		},
	}
	convos := &mockConversationRepo{
		DeleteByUserFn: func(_ context.Context, _ string) error {
			order = append(order, "conversations")
			return nil
		},
	}
	msgs := &mockMessageRepo{
		DeleteByUserFn: func(_ context.Context, _ string) error {
			order = append(order, "messages")
			return nil
		},
	}
	svc := services.NewUserService(users, convos, msgs)

	require.NoError(t, svc.DeleteAccount(context.Background(), "u1"))
	assert.Equal(t, []string{"messages", "conversations", "user"}, order)
}
