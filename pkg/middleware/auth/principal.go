package middleware

import "github.com/labstack/echo/v4"

const (
	principalKey = "principal"
	userIDKey    = "user_id"
)

// Principal is the identity a request acts for.
type Principal struct {
	UserID  uint
	IsAdmin bool
}

func PrincipalFrom(c echo.Context) (Principal, bool) {
	p, ok := c.Get(principalKey).(Principal)
	return p, ok
}

func setPrincipal(c echo.Context, p Principal) {
	c.Set(principalKey, p)
	c.Set(userIDKey, p.UserID)
}
