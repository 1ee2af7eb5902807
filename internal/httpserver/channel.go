package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

type ChannelHTTP struct {
	Svc *service.CatalogService
}

func (h *ChannelHTTP) ListChannels(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.list_channels")

	f, err := channelFilter(c)
	if err != nil {
		return badRequest(l, "list_channels_failed", err)
	}

	items, err := h.Svc.ListChannels(ctx, f)
	if err != nil {
		return serviceError(l, "list_channels_failed", err, "cannot list channels")
	}

	l.Info("list_channels_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *ChannelHTTP) SearchChannels(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.search_channels")

	var limit int
	if err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError(); err != nil {
		return badRequest(l, "search_channels_failed", &transport.FieldError{Field: "limit", Message: "limit must be an integer"})
	}

	items, err := h.Svc.SearchChannels(ctx, c.QueryParam("q"), limit)
	if err != nil {
		return serviceError(l, "search_channels_failed", err, "cannot search channels")
	}

	l.Info("search_channels_success", "count", len(items))
	return c.JSON(http.StatusOK, items)
}

func (h *ChannelHTTP) GetChannel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.get_channel")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "get_channel_failed", err)
	}

	ch, err := h.Svc.GetChannel(ctx, id)
	if err != nil {
		return serviceError(l, "get_channel_failed", err, "cannot get channel")
	}

	return c.JSON(http.StatusOK, ch)
}

func (h *ChannelHTTP) CreateChannel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.create_channel")

	var req transport.CreateChannelRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_channel_failed", bindFailure(err))
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "create_channel_failed", err)
	}

	ch, err := h.Svc.CreateChannel(ctx, req)
	if err != nil {
		return serviceError(l, "create_channel_failed", err, "cannot create channel")
	}

	l.Info("create_channel_success", "channel_id", ch.ID)
	return c.JSON(http.StatusCreated, ch)
}

func (h *ChannelHTTP) PatchChannel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.patch_channel")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "patch_channel_failed", err)
	}

	var req transport.PatchChannelRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_channel_failed", bindFailure(err))
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(l, "patch_channel_failed", err)
	}

	ch, err := h.Svc.UpdateChannel(ctx, id, req)
	if err != nil {
		return serviceError(l, "patch_channel_failed", err, "cannot update channel")
	}

	l.Info("patch_channel_success", "channel_id", ch.ID)
	return c.JSON(http.StatusOK, ch)
}

func (h *ChannelHTTP) DeleteChannel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "channel.delete_channel")

	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(l, "delete_channel_failed", err)
	}

	if err := h.Svc.DeleteChannel(ctx, id); err != nil {
		return serviceError(l, "delete_channel_failed", err, "cannot delete channel")
	}

	l.Info("delete_channel_success", "channel_id", id)
	return c.NoContent(http.StatusNoContent)
}
