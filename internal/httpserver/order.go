package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")

	userID, err := currentUser(c)
	if err != nil {
		return unauthorized(l, "list_orders_failed", err)
	}

	orders, err := h.Svc.ListOrders(ctx, userID)
	if err != nil {
		return serviceError(l, "list_orders_failed", err, "cannot list orders")
	}

	return c.JSON(http.StatusOK, orders)
}
