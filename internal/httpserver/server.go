package httpserver

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Egorka7485/tgkadsf/internal/metrics"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	loggingmw "github.com/Egorka7485/tgkadsf/pkg/middleware/logging"
)

// NewEcho returns an echo instance with the global middleware chain and the
// request validator installed. Routes are added by Register.
func NewEcho(logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = transport.NewValidator()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(metrics.Middleware())
	// panics come back as errors so the logger and metrics above see a 500
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{DisableErrorHandler: true}))
	e.Use(echomw.CORS())
	return e
}
