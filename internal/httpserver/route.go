package httpserver

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/contract"
	"github.com/Egorka7485/tgkadsf/internal/metrics"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
	"github.com/Egorka7485/tgkadsf/pkg/middleware/ratelimit"
)

type Deps struct {
	ChannelHandler *ChannelHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	UserHandler    *UserHTTP
	Auth           *middleware.Middleware
	// CartLimiter throttles cart mutations. Nil disables throttling.
	CartLimiter *ratelimit.Limiter
	Ready       func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	handlers := map[string]echo.HandlerFunc{
		contract.ChannelsList.Key():   d.ChannelHandler.ListChannels,
		contract.ChannelsSearch.Key(): d.ChannelHandler.SearchChannels,
		contract.ChannelsGet.Key():    d.ChannelHandler.GetChannel,
		contract.ChannelsCreate.Key(): d.ChannelHandler.CreateChannel,
		contract.ChannelsUpdate.Key(): d.ChannelHandler.PatchChannel,
		contract.ChannelsDelete.Key(): d.ChannelHandler.DeleteChannel,
		contract.CartList.Key():       d.CartHandler.GetCart,
		contract.CartAdd.Key():        d.CartHandler.AddToCart,
		contract.CartRemove.Key():     d.CartHandler.RemoveFromCart,
		contract.CartCheckout.Key():   d.CartHandler.Checkout,
		contract.OrdersList.Key():     d.OrderHandler.ListOrders,
		contract.AuthMe.Key():         d.UserHandler.CurrentUser,
	}

	for _, op := range contract.Table() {
		h, ok := handlers[op.Key()]
		if !ok {
			panic(fmt.Sprintf("httpserver: no handler for %s", op.Key()))
		}
		e.Add(op.Method, op.Path, h, d.guards(op)...)
	}
}

// guards returns the route middleware for op, outermost first.
func (d *Deps) guards(op contract.Operation) []echo.MiddlewareFunc {
	var mws []echo.MiddlewareFunc
	switch op.Access {
	case contract.OptionalAuth:
		mws = append(mws, d.Auth.Optional)
	case contract.Authenticated:
		mws = append(mws, d.Auth.RequireUser)
	case contract.Admin:
		mws = append(mws, d.Auth.RequireAdmin)
	}
	if d.CartLimiter != nil && op.Resource == "cart" && op.Method != http.MethodGet {
		mws = append(mws, d.CartLimiter.Middleware)
	}
	return mws
}

func (d *Deps) ready(c echo.Context) error {
	if d.Ready == nil {
		return c.NoContent(http.StatusOK)
	}
	if err := d.Ready(c.Request().Context()); err != nil {
		logging.FromContext(c.Request().Context()).Error("readiness_failed", "status", 503, "error", err)
		return echo.NewHTTPError(http.StatusServiceUnavailable, "not ready")
	}
	return c.NoContent(http.StatusOK)
}
