// Package httpservertest assembles the full HTTP application over an
// in-memory database.
package httpservertest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/httpserver"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/repo/repotest"
	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
	"github.com/Egorka7485/tgkadsf/pkg/middleware/ratelimit"
)

type Options struct {
	// Resolver defaults to a fixed admin with id 1.
	Resolver middleware.Resolver
	Policy   repo.LinePolicy
	Limiter  *ratelimit.Limiter
}

type Env struct {
	E        *echo.Echo
	DB       *gorm.DB
	Channels []models.Channel
	Events   *events.Recorder
}

// New returns the application with the fixture channels seeded.
func New(t *testing.T, opts Options) *Env {
	t.Helper()

	if opts.Resolver == nil {
		opts.Resolver = middleware.FixedResolver{Principal: middleware.Principal{UserID: 1, IsAdmin: true}}
	}

	db := repotest.NewDB(t)
	r := repo.New(db)
	rec := &events.Recorder{}

	e := httpserver.NewEcho(logging.NewWithWriter(io.Discard, "error"))
	httpserver.Register(e, &httpserver.Deps{
		ChannelHandler: &httpserver.ChannelHTTP{Svc: &service.CatalogService{Repo: r, Events: rec}},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Policy: opts.Policy, Events: rec}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r}},
		UserHandler:    &httpserver.UserHTTP{Svc: &service.UserService{Repo: r}},
		Auth:           middleware.New(opts.Resolver),
		CartLimiter:    opts.Limiter,
	})

	return &Env{E: e, DB: db, Channels: repotest.SeedChannels(t, db), Events: rec}
}

// Do serves one request. A non-nil body is sent as JSON unless it is
// already a string.
func (env *Env) Do(t *testing.T, method, target string, body any, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for _, m := range mutate {
		m(req)
	}

	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}
