package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Egorka7485/tgkadsf/internal/contract"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/transport"
)

// ChannelQuery narrows the channel list. Zero strings and nil numbers are not
// sent.
type ChannelQuery struct {
	Search   string
	Category string
	Platform string
	MinPrice *int64
	MaxPrice *int64
	MinSubs  *int64
}

func (q ChannelQuery) values() url.Values {
	v := url.Values{}
	for name, s := range map[string]string{"search": q.Search, "category": q.Category, "platform": q.Platform} {
		if s != "" {
			v.Set(name, s)
		}
	}
	for name, n := range map[string]*int64{"minPrice": q.MinPrice, "maxPrice": q.MaxPrice, "minSubs": q.MinSubs} {
		if n != nil {
			v.Set(name, strconv.FormatInt(*n, 10))
		}
	}
	return v
}

func (c *Client) Channels(ctx context.Context, q ChannelQuery) ([]models.Channel, error) {
	var out []models.Channel
	if err := c.read(ctx, contract.ChannelsList, nil, q.values(), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SearchChannels(ctx context.Context, q string, limit int) ([]models.Channel, error) {
	v := url.Values{"q": {q}}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	var out []models.Channel
	if err := c.read(ctx, contract.ChannelsSearch, nil, v, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Channel returns nil without error when the channel does not exist.
func (c *Client) Channel(ctx context.Context, id uint) (*models.Channel, error) {
	var out models.Channel
	err := c.read(ctx, contract.ChannelsGet, map[string]any{"id": id}, nil, &out)
	if StatusOf(err) == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateChannel(ctx context.Context, req transport.CreateChannelRequest) (*models.Channel, error) {
	var out models.Channel
	if err := c.write(ctx, contract.ChannelsCreate, nil, req, &out, contract.ChannelsList, contract.ChannelsSearch); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateChannel(ctx context.Context, id uint, req transport.PatchChannelRequest) (*models.Channel, error) {
	var out models.Channel
	err := c.write(ctx, contract.ChannelsUpdate, map[string]any{"id": id}, req, &out,
		contract.ChannelsList, contract.ChannelsSearch, contract.ChannelsGet, contract.CartList)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteChannel(ctx context.Context, id uint) error {
	return c.write(ctx, contract.ChannelsDelete, map[string]any{"id": id}, nil, nil,
		contract.ChannelsList, contract.ChannelsSearch, contract.ChannelsGet, contract.CartList)
}

func (c *Client) Cart(ctx context.Context) ([]transport.CartLine, error) {
	var out []transport.CartLine
	if err := c.read(ctx, contract.CartList, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AddToCart(ctx context.Context, channelID uint) (*models.CartItem, error) {
	var out models.CartItem
	err := c.write(ctx, contract.CartAdd, nil, transport.AddToCartRequest{ChannelID: &channelID}, &out, contract.CartList)
	if err != nil {
		c.notifier.Notify(failure("Error", err))
		return nil, err
	}
	c.notifier.Notify(Toast{Title: "Added to cart", Description: "Channel has been added to your selection"})
	return &out, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, id uint) error {
	if err := c.write(ctx, contract.CartRemove, map[string]any{"id": id}, nil, nil, contract.CartList); err != nil {
		c.notifier.Notify(failure("Failed to remove item", err))
		return err
	}
	return nil
}

func (c *Client) Checkout(ctx context.Context) (*models.Order, error) {
	var out models.Order
	if err := c.write(ctx, contract.CartCheckout, nil, nil, &out, contract.CartList, contract.OrdersList); err != nil {
		c.notifier.Notify(failure("Checkout failed", err))
		return nil, err
	}
	c.notifier.Notify(Toast{Title: "Order Successful!", Description: "Your advertising campaign is being processed."})
	return &out, nil
}

func (c *Client) Orders(ctx context.Context) ([]models.Order, error) {
	var out []models.Order
	if err := c.read(ctx, contract.OrdersList, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CurrentUser returns nil for anonymous sessions.
func (c *Client) CurrentUser(ctx context.Context) (*models.User, error) {
	var out *models.User
	if err := c.read(ctx, contract.AuthMe, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
