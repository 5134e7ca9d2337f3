package services

import (
	"context"
	"errors"
	"time"

	"github.com/halcyonchat/halcyon/internal/models"
	pgrepo "github.com/halcyonchat/halcyon/internal/repositories/postgres"
	"github.com/halcyonchat/halcyon/internal/utils"

	"gorm.io/datatypes"
)

type UserService interface {
	Signup(ctx context.Context, id, email, name, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID, name, email, avatarURL string, preferences []byte) (*models.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	DeleteAccount(ctx context.Context, userID string) error
}

type userService struct {
	users  pgrepo.UserRepository
	convos pgrepo.ConversationRepo
	msgs   pgrepo.MessageRepo
}

func NewUserService(users pgrepo.UserRepository, convos pgrepo.ConversationRepo, msgs pgrepo.MessageRepo) UserService {
	return &userService{users: users, convos: convos, msgs: msgs}
}

func (s *userService) Signup(ctx context.Context, id, email, name, password string) (*models.User, error) {
	const op = "UserService.Signup"

	if id == "" || email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "id and email are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, utils.E(utils.CodeConflict, op, "Email already exists. Please sign in instead.", nil)
	} else if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing user", err)
	}

	u := &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if password != "" {
		hash, err := utils.HashPassword(password)
		if err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to hash password", err)
		}
		u.PasswordHash = hash
	}

	if err := s.users.Insert(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create user", err)
	}
	return u, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*models.User, error) {
	const op = "UserService.Login"

	if email == "" || password == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "email and password are required", nil)
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user", err)
	}
	if u.PasswordHash == "" || utils.CheckPassword(u.PasswordHash, password) != nil {
		return nil, utils.E(utils.CodeUnauthorized, op, "invalid email or password", nil)
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	const op = "UserService.GetByID"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get user", err)
	}
	return u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID, name, email, avatarURL string, preferences []byte) (*models.User, error) {
	const op = "UserService.UpdateProfile"

	if name == "" || email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "Username and email are required", nil)
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	// email change must not collide with another account
	if email != u.Email {
		if other, err := s.users.GetByEmail(ctx, email); err == nil && other.ID != userID {
			return nil, utils.E(utils.CodeConflict, op, "email already in use", nil)
		} else if err != nil && !errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeInternal, op, "failed to check email", err)
		}
		u.IsEmailVerified = false
	}

	u.Name = name
	u.Email = email
	u.AvatarURL = avatarURL
	if preferences != nil {
		u.Preferences = datatypes.JSON(preferences)
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return u, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	const op = "UserService.ChangePassword"

	if currentPassword == "" || newPassword == "" {
		return utils.E(utils.CodeInvalidArgument, op, "current and new password are required", nil)
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.PasswordHash == "" || utils.CheckPassword(u.PasswordHash, currentPassword) != nil {
		return utils.E(utils.CodeUnauthorized, op, "current password is incorrect", nil)
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to hash password", err)
	}
	u.PasswordHash = hash

	if err := s.users.Update(ctx, u); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update password", err)
	}
	return nil
}

// DeleteAccount removes the user and everything they own. Messages go first
// so a partial failure never strands rows referencing a deleted conversation.
func (s *userService) DeleteAccount(ctx context.Context, userID string) error {
	const op = "UserService.DeleteAccount"

	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	if err := s.msgs.DeleteByUser(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete messages", err)
	}
	if err := s.convos.DeleteByUser(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete conversations", err)
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to delete user", err)
	}
	return nil
}
