package models

import (
	"time"
)

const (
	PlatformTelegram = "telegram"
	PlatformTikTok   = "tiktok"
)

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"unique;not null"          json:"username"`
	Email     *string   `json:"email"`
	AvatarURL *string   `gorm:"column:avatar_url"        json:"avatarUrl"`
	Balance   float64   `gorm:"default:0"                json:"balance"`
	IsAdmin   bool      `gorm:"default:false"            json:"isAdmin"`
	CreatedAt time.Time `json:"createdAt"`
}

type Channel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name        string    `gorm:"not null"                          json:"name"`
	Description string    `gorm:"not null"                          json:"description"`
	Handle      string    `gorm:"column:channel_username;not null"  json:"username"`
	AvatarURL   string    `gorm:"column:avatar_url;not null"        json:"avatarUrl"`
	Category    string    `gorm:"not null;index"                    json:"category"`
	Platform    string    `gorm:"not null;default:telegram;index"   json:"platform"`
	Subscribers int64     `gorm:"not null;index"                    json:"subscribers"`
	Views       int64     `gorm:"not null"                          json:"views"`
	ERR         float64   `gorm:"column:err;not null"               json:"err"`
	Price       int64     `gorm:"not null"                          json:"price"`
	Verified    bool      `gorm:"default:false"                     json:"verified"`
	CreatedAt   time.Time `json:"createdAt"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey"                 json:"id"`
	UserID    uint      `gorm:"index;not null"             json:"userId"`
	ChannelID uint      `gorm:"index;not null"             json:"channelId"`
	Quantity  uint      `gorm:"not null;default:1"         json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`

	Channel *Channel `gorm:"foreignKey:ChannelID" json:"channel,omitempty"`
}

type Order struct {
	ID          uint      `gorm:"primaryKey"                     json:"id"`
	UserID      uint      `gorm:"index;not null"                 json:"userId"`
	TotalAmount int64     `gorm:"not null"                       json:"totalAmount"`
	Status      string    `gorm:"not null;default:pending"       json:"status"`
	CreatedAt   time.Time `json:"createdAt"`

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

type OrderItem struct {
	ID        uint  `gorm:"primaryKey"          json:"id"`
	OrderID   uint  `gorm:"index;not null"      json:"orderId"`
	ChannelID uint  `gorm:"not null"            json:"channelId"`
	Price     int64 `gorm:"not null"            json:"price"`
	Quantity  uint  `gorm:"not null;default:1"  json:"quantity"`
}

// LineTotal is the amount a single order line contributes to the order total.
func (i OrderItem) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

func All() []any {
	return []any{&User{}, &Channel{}, &CartItem{}, &Order{}, &OrderItem{}}
}
