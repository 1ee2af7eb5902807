package transport

import "github.com/Egorka7485/tgkadsf/internal/models"

type CreateChannelRequest struct {
	Name        string   `json:"name"        validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=4000"`
	Username    string   `json:"username"    validate:"required,max=100"`
	AvatarURL   string   `json:"avatarUrl"   validate:"required,max=2048"`
	Category    string   `json:"category"    validate:"required,max=100"`
	Platform    *string  `json:"platform"    validate:"omitempty,oneof=telegram tiktok"`
	Subscribers *int64   `json:"subscribers" validate:"required,min=0"`
	Views       *int64   `json:"views"       validate:"required,min=0"`
	ERR         *float64 `json:"err"         validate:"required,min=0"`
	Price       *int64   `json:"price"       validate:"required,min=0"`
	Verified    *bool    `json:"verified"`
}

type PatchChannelRequest struct {
	Name        *string  `json:"name"        validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description" validate:"omitempty,min=1,max=4000"`
	Username    *string  `json:"username"    validate:"omitempty,min=1,max=100"`
	AvatarURL   *string  `json:"avatarUrl"   validate:"omitempty,min=1,max=2048"`
	Category    *string  `json:"category"    validate:"omitempty,min=1,max=100"`
	Platform    *string  `json:"platform"    validate:"omitempty,oneof=telegram tiktok"`
	Subscribers *int64   `json:"subscribers" validate:"omitempty,min=0"`
	Views       *int64   `json:"views"       validate:"omitempty,min=0"`
	ERR         *float64 `json:"err"         validate:"omitempty,min=0"`
	Price       *int64   `json:"price"       validate:"omitempty,min=0"`
	Verified    *bool    `json:"verified"`
}

type AddToCartRequest struct {
	ChannelID *uint `json:"channelId" validate:"required,min=1"`
}

// CartLine is one row of GET /api/cart.
type CartLine struct {
	ID        uint            `json:"id"`
	ChannelID uint            `json:"channelId"`
	Quantity  uint            `json:"quantity"`
	Channel   *models.Channel `json:"channel"`
}

func CartLines(items []models.CartItem) []CartLine {
	out := make([]CartLine, 0, len(items))
	for _, it := range items {
		out = append(out, CartLine{ID: it.ID, ChannelID: it.ChannelID, Quantity: it.Quantity, Channel: it.Channel})
	}
	return out
}

func (r CreateChannelRequest) Model() models.Channel {
	ch := models.Channel{
		Name:        r.Name,
		Description: r.Description,
		Handle:      r.Username,
		AvatarURL:   r.AvatarURL,
		Category:    r.Category,
		Platform:    models.PlatformTelegram,
	}
	if r.Platform != nil {
		ch.Platform = *r.Platform
	}
	if r.Subscribers != nil {
		ch.Subscribers = *r.Subscribers
	}
	if r.Views != nil {
		ch.Views = *r.Views
	}
	if r.ERR != nil {
		ch.ERR = *r.ERR
	}
	if r.Price != nil {
		ch.Price = *r.Price
	}
	if r.Verified != nil {
		ch.Verified = *r.Verified
	}
	return ch
}
