package service

import (
	"context"
	"fmt"

	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
)

type UserService struct {
	Repo *repo.GormRepo
}

// Current returns nil when the principal has no local user row.
func (s *UserService) Current(ctx context.Context, userID uint) (*models.User, error) {
	return s.Repo.GetUser(ctx, userID)
}

// EnsureAccount is the account store behind the remote identity resolver.
func (s *UserService) EnsureAccount(ctx context.Context, a middleware.Account) (uint, error) {
	if a.Username == "" {
		return 0, fmt.Errorf("%w: account without username", ErrValidation)
	}
	u, err := s.Repo.EnsureUser(ctx, models.User{
		Username:  a.Username,
		Email:     a.Email,
		AvatarURL: a.AvatarURL,
		IsAdmin:   a.IsAdmin,
	})
	if err != nil {
		return 0, err
	}
	return u.ID, nil
}
