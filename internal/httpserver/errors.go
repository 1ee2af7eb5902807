package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/internal/transport"
)

func badRequest(l *slog.Logger, event string, err error) error {
	var fe *transport.FieldError
	if !errors.As(err, &fe) {
		fe = &transport.FieldError{Message: "invalid input"}
	}
	l.Warn(event, "status", 400, "field", fe.Field, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, fe.Body())
}

// serviceError maps a service failure onto its status code. internal is the
// message clients see on a 500.
func serviceError(l *slog.Logger, event string, err error, internal string) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return badRequest(l, event, err)
	case errors.Is(err, service.ErrEmptyCart):
		l.Warn(event, "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, transport.ErrorBody{Message: "cart is empty"})
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "error", err)
		return echo.NewHTTPError(http.StatusNotFound, transport.ErrorBody{Message: "channel not found"})
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "error", err)
		return echo.NewHTTPError(http.StatusConflict, transport.ErrorBody{Message: "channel is already in the cart"})
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, transport.ErrorBody{Message: internal})
	}
}

func unauthorized(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", 401, "error", err)
	return echo.NewHTTPError(http.StatusUnauthorized, transport.ErrorBody{Message: "authentication required"})
}
