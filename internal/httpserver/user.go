package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
)

type UserHTTP struct {
	Svc *service.UserService
}

// CurrentUser answers with the signed-in user, or JSON null for anonymous
// requests.
func (h *UserHTTP) CurrentUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.current_user")

	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, nil)
	}

	u, err := h.Svc.Current(ctx, p.UserID)
	if err != nil {
		return serviceError(l, "current_user_failed", err, "cannot load user")
	}
	if u == nil {
		return c.JSON(http.StatusOK, nil)
	}
	return c.JSON(http.StatusOK, u)
}
