package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

// GetUser returns nil without an error when the id does not resolve.
func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser looks the user up by username and creates it on first sight.
// Profile fields of an existing user are refreshed from u.
func (r *GormRepo) EnsureUser(ctx context.Context, u models.User) (*models.User, error) {
	var out models.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.User{Username: u.Username}).
			Attrs(models.User{Email: u.Email, AvatarURL: u.AvatarURL, IsAdmin: u.IsAdmin}).
			FirstOrCreate(&out).Error; err != nil {
			return err
		}
		if out.IsAdmin == u.IsAdmin && sameString(out.Email, u.Email) && sameString(out.AvatarURL, u.AvatarURL) {
			return nil
		}
		out.Email = u.Email
		out.AvatarURL = u.AvatarURL
		out.IsAdmin = u.IsAdmin
		return tx.Save(&out).Error
	})
	if err != nil {
		if IsUniqueViolation(err) {
			// lost a race with a concurrent first login
			return r.userByName(ctx, u.Username)
		}
		return nil, err
	}
	return &out, nil
}

func (r *GormRepo) userByName(ctx context.Context, name string) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).Where("username = ?", name).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
