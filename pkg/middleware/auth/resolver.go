package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Egorka7485/tgkadsf/pkg/authclient"
	"github.com/Egorka7485/tgkadsf/pkg/tokens"
)

var ErrUnauthenticated = errors.New("unauthenticated")

// Resolver derives the acting principal from a request.
type Resolver interface {
	Resolve(c echo.Context) (Principal, error)
}

// FixedResolver acts for the same principal on every request.
type FixedResolver struct {
	Principal Principal
}

func (r FixedResolver) Resolve(echo.Context) (Principal, error) {
	return r.Principal, nil
}

// JWTResolver reads an HS256 access token from the accessToken cookie or a
// bearer Authorization header.
type JWTResolver struct {
	Secret []byte
}

func (r JWTResolver) Resolve(c echo.Context) (Principal, error) {
	tok := bearer(c.Request())
	if tok == "" {
		if ck, err := c.Cookie("accessToken"); err == nil {
			tok = ck.Value
		}
	}
	if tok == "" {
		return Principal{}, fmt.Errorf("%w: missing access token", ErrUnauthenticated)
	}

	claims, err := tokens.AccessClaimsFromToken(tok, r.Secret)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return Principal{UserID: id, IsAdmin: claims.IsAdmin()}, nil
}

func bearer(r *http.Request) string {
	h := r.Header.Get(echo.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Account is a user as reported by the identity provider.
type Account struct {
	Username  string
	Email     *string
	AvatarURL *string
	IsAdmin   bool
}

// AccountStore maps a provider account to a local user id, creating the
// user on first login.
type AccountStore interface {
	EnsureAccount(ctx context.Context, a Account) (uint, error)
}

// RemoteResolver asks the identity provider who owns the session.
type RemoteResolver struct {
	Client *authclient.Client
	Store  AccountStore
}

func (r RemoteResolver) Resolve(c echo.Context) (Principal, error) {
	ctx := c.Request().Context()

	u, err := r.Client.CurrentUser(ctx, c.Cookies(), c.Request().Header.Get(echo.HeaderAuthorization))
	if errors.Is(err, authclient.ErrUnauthenticated) {
		return Principal{}, fmt.Errorf("%w: no session", ErrUnauthenticated)
	}
	if err != nil {
		return Principal{}, fmt.Errorf("identity provider: %w", err)
	}

	id, err := r.Store.EnsureAccount(ctx, Account{
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		IsAdmin:   u.IsAdmin,
	})
	if err != nil {
		return Principal{}, fmt.Errorf("ensure account: %w", err)
	}
	return Principal{UserID: id, IsAdmin: u.IsAdmin}, nil
}
