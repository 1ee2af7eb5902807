package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

// ChannelFilter is a conjunction of optional predicates. A nil field
// imposes no constraint.
type ChannelFilter struct {
	Search   *string
	Category *string
	Platform *string
	MinPrice *int64
	MaxPrice *int64
	MinSubs  *int64
	Limit    int
}

type ChannelPatch struct {
	Name        *string
	Description *string
	Handle      *string
	AvatarURL   *string
	Category    *string
	Platform    *string
	Subscribers *int64
	Views       *int64
	ERR         *float64
	Price       *int64
	Verified    *bool
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *GormRepo) ListChannels(ctx context.Context, f ChannelFilter) ([]models.Channel, error) {
	q := r.DB.WithContext(ctx).Model(&models.Channel{})

	if f.Search != nil && *f.Search != "" {
		// both sides go through the store's LOWER so folding rules match
		pattern := "%" + likeEscaper.Replace(*f.Search) + "%"
		q = q.Where(`LOWER(name) LIKE LOWER(?) ESCAPE '\'`, pattern)
	}
	if f.Category != nil && *f.Category != "" {
		q = q.Where("category = ?", *f.Category)
	}
	if f.Platform != nil && *f.Platform != "" {
		q = q.Where("platform = ?", *f.Platform)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinSubs != nil {
		q = q.Where("subscribers >= ?", *f.MinSubs)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	items := make([]models.Channel, 0)
	if err := q.Order("subscribers DESC").Order("id ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetChannel returns nil without an error when the id does not resolve.
func (r *GormRepo) GetChannel(ctx context.Context, id uint) (*models.Channel, error) {
	var ch models.Channel
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

func (r *GormRepo) CreateChannel(ctx context.Context, ch *models.Channel) error {
	if ch.Platform == "" {
		ch.Platform = models.PlatformTelegram
	}
	return r.DB.WithContext(ctx).Create(ch).Error
}

func (r *GormRepo) UpdateChannel(ctx context.Context, id uint, p ChannelPatch) (*models.Channel, error) {
	var ch models.Channel
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&ch).Error; err != nil {
			return err
		}

		if p.Name != nil {
			ch.Name = *p.Name
		}
		if p.Description != nil {
			ch.Description = *p.Description
		}
		if p.Handle != nil {
			ch.Handle = *p.Handle
		}
		if p.AvatarURL != nil {
			ch.AvatarURL = *p.AvatarURL
		}
		if p.Category != nil {
			ch.Category = *p.Category
		}
		if p.Platform != nil {
			ch.Platform = *p.Platform
		}
		if p.Subscribers != nil {
			ch.Subscribers = *p.Subscribers
		}
		if p.Views != nil {
			ch.Views = *p.Views
		}
		if p.ERR != nil {
			ch.ERR = *p.ERR
		}
		if p.Price != nil {
			ch.Price = *p.Price
		}
		if p.Verified != nil {
			ch.Verified = *p.Verified
		}

		return tx.Save(&ch).Error
	})
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// DeleteChannel leaves cart rows that point at the channel in place; the
// cart join stops returning them.
func (r *GormRepo) DeleteChannel(ctx context.Context, id uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.Channel{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
