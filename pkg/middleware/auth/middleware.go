package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

type Middleware struct {
	Resolver Resolver
}

func New(r Resolver) *Middleware {
	return &Middleware{Resolver: r}
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, false)
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.require(next, true)
}

func (m *Middleware) require(next echo.HandlerFunc, admin bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		p, err := m.Resolver.Resolve(c)
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				l.Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			l.Error("auth_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot resolve identity")
		}
		if admin && !p.IsAdmin {
			l.Warn("auth_failed", "status", 403, "user_id", p.UserID)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}

		setPrincipal(c, p)
		return next(c)
	}
}

// Optional resolves the principal when there is one and lets anonymous
// requests through.
func (m *Middleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p, err := m.Resolver.Resolve(c)
		switch {
		case err == nil:
			setPrincipal(c, p)
		case errors.Is(err, ErrUnauthenticated):
		default:
			logging.FromContext(c.Request().Context()).Error("auth_failed", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot resolve identity")
		}
		return next(c)
	}
}
