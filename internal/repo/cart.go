package repo

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/models"
)

// LinePolicy decides what adding a channel that is already in the cart does.
type LinePolicy string

const (
	LineAllow     LinePolicy = "allow"
	LineReject    LinePolicy = "reject"
	LineIncrement LinePolicy = "increment"
)

func ParseLinePolicy(s string) (LinePolicy, error) {
	switch p := LinePolicy(s); p {
	case LineAllow, LineReject, LineIncrement:
		return p, nil
	case "":
		return LineAllow, nil
	default:
		return "", fmt.Errorf("unknown cart line policy %q", s)
	}
}

// GetCartItems returns the user's cart lines with their channel. Lines whose
// channel no longer exists are dropped by the inner join.
func (r *GormRepo) GetCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return cartLines(r.DB.WithContext(ctx), userID)
}

func cartLines(tx *gorm.DB, userID uint) ([]models.CartItem, error) {
	items := make([]models.CartItem, 0)
	if err := tx.InnerJoins("Channel").
		Where("cart_items.user_id = ?", userID).
		Order("cart_items.id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart stores a cart line for the channel. It returns the stored line and
// whether a new row was inserted (false when an existing line was incremented).
// A channel id that does not resolve yields gorm.ErrRecordNotFound.
func (r *GormRepo) AddToCart(ctx context.Context, userID, channelID uint, policy LinePolicy) (*models.CartItem, bool, error) {
	item := models.CartItem{UserID: userID, ChannelID: channelID, Quantity: 1}
	created := false

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Channel{}).Where("id = ?", channelID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}

		switch policy {
		case LineReject:
			var existing int64
			if err := tx.Model(&models.CartItem{}).
				Where("user_id = ? AND channel_id = ?", userID, channelID).
				Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return ErrDuplicateLine
			}
		case LineIncrement:
			res := tx.Model(&models.CartItem{}).
				Where("user_id = ? AND channel_id = ?", userID, channelID).
				Update("quantity", gorm.Expr("quantity + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				return tx.Where("user_id = ? AND channel_id = ?", userID, channelID).
					Order("id ASC").
					First(&item).Error
			}
		}

		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &item, created, nil
}

// RemoveFromCart deletes the line if the user owns it. A missing line is not
// an error; removed reports whether a row went away.
func (r *GormRepo) RemoveFromCart(ctx context.Context, id, userID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return clearCart(r.DB.WithContext(ctx), userID)
}

func clearCart(tx *gorm.DB, userID uint) error {
	return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
