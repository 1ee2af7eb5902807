package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/metrics"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Policy repo.LinePolicy
	Events events.Publisher
}

func (s *CartService) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	return s.Repo.GetCartItems(ctx, userID)
}

// AddToCart reports created=false when the policy folded the request into an
// existing line.
func (s *CartService) AddToCart(ctx context.Context, userID, channelID uint) (*models.CartItem, bool, error) {
	if channelID == 0 {
		return nil, false, fieldError("channelId", "channelId is required")
	}

	policy := s.Policy
	if policy == "" {
		policy = repo.LineAllow
	}

	item, created, err := s.Repo.AddToCart(ctx, userID, channelID, policy)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fieldError("channelId", fmt.Sprintf("channel %d does not exist", channelID))
	case errors.Is(err, repo.ErrDuplicateLine):
		metrics.ObserveCartLine(metrics.LineRejected)
		return nil, false, fmt.Errorf("%w: channel %d is already in the cart", ErrConflict, channelID)
	case err != nil:
		return nil, false, err
	}

	if created {
		metrics.ObserveCartLine(metrics.LineCreated)
	} else {
		metrics.ObserveCartLine(metrics.LineIncremented)
	}

	ev := events.New(events.CartItemAdded)
	ev.UserID = userID
	ev.ChannelID = channelID
	ev.CartItemID = item.ID
	publish(ctx, s.Events, events.TopicCart, userKey(userID), ev)
	return item, created, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, userID, id uint) error {
	removed, err := s.Repo.RemoveFromCart(ctx, id, userID)
	if err != nil {
		return err
	}
	if removed {
		ev := events.New(events.CartItemRemoved)
		ev.UserID = userID
		ev.CartItemID = id
		publish(ctx, s.Events, events.TopicCart, userKey(userID), ev)
	}
	return nil
}

// Checkout converts the cart into a completed order priced at current
// channel prices and empties the cart.
func (s *CartService) Checkout(ctx context.Context, userID uint) (*models.Order, error) {
	order, err := s.Repo.Checkout(ctx, userID)
	if errors.Is(err, repo.ErrEmptyCart) {
		metrics.ObserveCheckout(metrics.CheckoutEmpty, 0)
		return nil, ErrEmptyCart
	}
	if err != nil {
		metrics.ObserveCheckout(metrics.CheckoutFailed, 0)
		return nil, err
	}
	metrics.ObserveCheckout(metrics.CheckoutCompleted, order.TotalAmount)

	ev := events.New(events.OrderCreated)
	ev.UserID = userID
	ev.OrderID = order.ID
	ev.TotalAmount = order.TotalAmount
	ev.Items = len(order.Items)
	publish(ctx, s.Events, events.TopicOrders, userKey(userID), ev)
	return order, nil
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
