package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get_cart")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(l, "get_cart_failed", err)
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return serviceError(l, "get_cart_failed", err, "cannot get cart")
	}

	return c.JSON(http.StatusOK, transport.CartLines(items))
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_to_cart")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(l, "add_to_cart_failed", err)
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_failed", bindFailure(err))
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "add_to_cart_failed", err)
	}

	item, created, err := h.Svc.AddToCart(ctx, userID, *req.ChannelID)
	if err != nil {
		return serviceError(l, "add_to_cart_failed", err, "cannot add to cart")
	}

	l.Info("add_to_cart_success", "user_id", userID, "cart_item_id", item.ID, "created", created)
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return c.JSON(status, item)
}

func (h *CartHTTP) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_from_cart")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(l, "remove_from_cart_failed", err)
	}

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "remove_from_cart_failed", err)
	}

	if err := h.Svc.RemoveFromCart(ctx, userID, id); err != nil {
		return serviceError(l, "remove_from_cart_failed", err, "cannot remove from cart")
	}

	l.Info("remove_from_cart_success", "user_id", userID, "cart_item_id", id)
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.checkout")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(l, "checkout_failed", err)
	}

	order, err := h.Svc.Checkout(ctx, userID)
	if err != nil {
		return serviceError(l, "checkout_failed", err, "cannot create order")
	}

	l.Info("checkout_success", "user_id", userID, "order_id", order.ID, "total", order.TotalAmount)
	return c.JSON(http.StatusCreated, order)
}
