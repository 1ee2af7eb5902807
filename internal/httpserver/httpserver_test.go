package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/httpserver"
	"github.com/Egorka7485/tgkadsf/internal/httpserver/httpservertest"
	"github.com/Egorka7485/tgkadsf/internal/metrics"
	"github.com/Egorka7485/tgkadsf/internal/models"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/transport"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
	"github.com/Egorka7485/tgkadsf/pkg/middleware/ratelimit"
	"github.com/Egorka7485/tgkadsf/pkg/tokens"
)

var secret = []byte("handler-secret")

func decode[T any](t *testing.T, body string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(body), &v), body)
	return v
}

func requireFieldError(t *testing.T, code int, body, field string) {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, code, body)
	eb := decode[transport.ErrorBody](t, body)
	assert.Equal(t, field, eb.Field)
	assert.NotEmpty(t, eb.Message)
}

func validChannel() map[string]any {
	return map[string]any{
		"name":        "Go Weekly",
		"description": "Curated Go links.",
		"username":    "@goweekly",
		"avatarUrl":   "https://img.example/go.png",
		"category":    "Technology",
		"subscribers": 12000,
		"views":       4000,
		"err":         33.3,
		"price":       3000,
	}
}

func TestListChannels(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodGet, "/api/channels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]models.Channel](t, rec.Body.String())
	require.Len(t, all, len(env.Channels))
	assert.Equal(t, "Dance Tok", all[0].Name)

	rec = env.Do(t, http.MethodGet, "/api/channels?minSubs=100000&platform=telegram", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	for _, ch := range decode[[]models.Channel](t, rec.Body.String()) {
		names = append(names, ch.Name)
	}
	assert.Equal(t, []string{"Funny Memes 24/7", "World News Daily", "Tech Insider"}, names)

	rec = env.Do(t, http.MethodGet, "/api/channels?search=NEWS&maxPrice=20000", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Channel](t, rec.Body.String())
	require.Len(t, got, 1)
	assert.Equal(t, "@worldnews", got[0].Handle)
}

func TestListChannelsEmptyIsArray(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodGet, "/api/channels?category=Nothing", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestListChannelsRejectsBadNumbers(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	for _, field := range []string{"minPrice", "maxPrice", "minSubs"} {
		for _, value := range []string{"lots", "100.5", "1e3"} {
			rec := env.Do(t, http.MethodGet, "/api/channels?"+field+"="+value, nil)
			requireFieldError(t, rec.Code, rec.Body.String(), field)
		}
	}
}

func TestListChannelsSearchCyrillic(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})
	ch := env.Channels[0]
	require.NoError(t, env.DB.Model(&ch).Update("name", "Новости Москвы").Error)

	rec := env.Do(t, http.MethodGet, "/api/channels?search="+url.QueryEscape("Новости"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Channel](t, rec.Body.String())
	require.Len(t, got, 1)
	assert.Equal(t, ch.ID, got[0].ID)
}

func TestGetChannel(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})
	want := env.Channels[1]

	rec := env.Do(t, http.MethodGet, fmt.Sprintf("/api/channels/%d", want.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.Channel](t, rec.Body.String())
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Price, got.Price)

	rec = env.Do(t, http.MethodGet, "/api/channels/999999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"channel not found"}`, rec.Body.String())

	rec = env.Do(t, http.MethodGet, "/api/channels/abc", nil)
	requireFieldError(t, rec.Code, rec.Body.String(), "id")
}

func TestSearchChannels(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodGet, "/api/channels/search?q=crypto", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[[]models.Channel](t, rec.Body.String())
	require.Len(t, got, 1)
	assert.Equal(t, "Crypto Signals VIP", got[0].Name)

	rec = env.Do(t, http.MethodGet, "/api/channels/search", nil)
	requireFieldError(t, rec.Code, rec.Body.String(), "q")

	rec = env.Do(t, http.MethodGet, "/api/channels/search?q=a&limit=x", nil)
	requireFieldError(t, rec.Code, rec.Body.String(), "limit")

	rec = env.Do(t, http.MethodGet, "/api/channels/search?q=a&limit=1000", nil)
	requireFieldError(t, rec.Code, rec.Body.String(), "limit")
}

func TestCreateChannel(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodPost, "/api/channels", validChannel())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	ch := decode[models.Channel](t, rec.Body.String())
	assert.NotZero(t, ch.ID)
	assert.Equal(t, models.PlatformTelegram, ch.Platform)
	assert.Equal(t, "@goweekly", ch.Handle)
	require.Len(t, env.Events.OfType(events.ChannelCreated), 1)

	rec = env.Do(t, http.MethodGet, fmt.Sprintf("/api/channels/%d", ch.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateChannelValidation(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	missing := validChannel()
	delete(missing, "name")
	rec := env.Do(t, http.MethodPost, "/api/channels", missing)
	requireFieldError(t, rec.Code, rec.Body.String(), "name")

	blank := validChannel()
	blank["name"] = "   "
	rec = env.Do(t, http.MethodPost, "/api/channels", blank)
	requireFieldError(t, rec.Code, rec.Body.String(), "name")

	wrongType := validChannel()
	wrongType["subscribers"] = "many"
	rec = env.Do(t, http.MethodPost, "/api/channels", wrongType)
	requireFieldError(t, rec.Code, rec.Body.String(), "subscribers")

	badPlatform := validChannel()
	badPlatform["platform"] = "myspace"
	rec = env.Do(t, http.MethodPost, "/api/channels", badPlatform)
	requireFieldError(t, rec.Code, rec.Body.String(), "platform")

	rec = env.Do(t, http.MethodPost, "/api/channels", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	assert.Empty(t, env.Events.OfType(events.ChannelCreated))
}

func TestPatchAndDeleteChannel(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})
	id := env.Channels[0].ID

	rec := env.Do(t, http.MethodPatch, fmt.Sprintf("/api/channels/%d", id), map[string]any{"price": 17500, "verified": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ch := decode[models.Channel](t, rec.Body.String())
	assert.EqualValues(t, 17500, ch.Price)
	assert.False(t, ch.Verified)
	assert.Equal(t, env.Channels[0].Name, ch.Name)

	rec = env.Do(t, http.MethodPatch, "/api/channels/999999", map[string]any{"price": 1})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.Do(t, http.MethodDelete, fmt.Sprintf("/api/channels/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.Do(t, http.MethodDelete, fmt.Sprintf("/api/channels/%d", id), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func bearer(t *testing.T, userID uint, role string) func(*http.Request) {
	t.Helper()
	tok, err := tokens.NewAccessToken(userID, role, secret, time.Minute)
	require.NoError(t, err)
	return func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+tok) }
}

func TestChannelWritesRequireAdmin(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Resolver: middleware.JWTResolver{Secret: secret}})

	rec := env.Do(t, http.MethodPost, "/api/channels", validChannel())
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.Do(t, http.MethodPost, "/api/channels", validChannel(), bearer(t, 5, "user"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.Do(t, http.MethodDelete, fmt.Sprintf("/api/channels/%d", env.Channels[0].ID), nil, bearer(t, 5, "user"))
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.Do(t, http.MethodPost, "/api/channels", validChannel(), bearer(t, 5, tokens.RoleAdmin))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.Do(t, http.MethodGet, "/api/channels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCartRequiresUser(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Resolver: middleware.JWTResolver{Secret: secret}})

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/cart"},
		{http.MethodPost, "/api/cart"},
		{http.MethodDelete, "/api/cart/1"},
		{http.MethodPost, "/api/cart/checkout"},
		{http.MethodGet, "/api/orders"},
	} {
		rec := env.Do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}
}

func TestCartCheckoutFlow(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})
	tech, memes := env.Channels[0], env.Channels[2]

	for _, ch := range []models.Channel{tech, memes} {
		rec := env.Do(t, http.MethodPost, "/api/cart", map[string]any{"channelId": ch.ID})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		item := decode[models.CartItem](t, rec.Body.String())
		assert.Equal(t, ch.ID, item.ChannelID)
		assert.EqualValues(t, 1, item.UserID)
	}

	rec := env.Do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	lines := decode[[]transport.CartLine](t, rec.Body.String())
	require.Len(t, lines, 2)
	require.NotNil(t, lines[0].Channel)
	assert.Equal(t, tech.Name, lines[0].Channel.Name)
	assert.Equal(t, memes.Price, lines[1].Channel.Price)

	rec = env.Do(t, http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[models.Order](t, rec.Body.String())
	assert.EqualValues(t, 23000, order.TotalAmount)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	require.Len(t, order.Items, 2)

	rec = env.Do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.Do(t, http.MethodGet, "/api/orders", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]models.Order](t, rec.Body.String())
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)
	assert.EqualValues(t, 23000, orders[0].TotalAmount)

	created := env.Events.OfType(events.OrderCreated)
	require.Len(t, created, 1)
	assert.EqualValues(t, 23000, created[0].Event.TotalAmount)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodPost, "/api/cart/checkout", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message":"cart is empty"}`, rec.Body.String())
}

func TestAddToCartValidation(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	for _, body := range []any{
		map[string]any{},
		map[string]any{"channelId": "abc"},
		map[string]any{"channelId": 0},
		map[string]any{"channelId": 999999},
		`{"channelId": 1.5}`,
	} {
		rec := env.Do(t, http.MethodPost, "/api/cart", body)
		requireFieldError(t, rec.Code, rec.Body.String(), "channelId")
	}

	var count int64
	require.NoError(t, env.DB.Model(&models.CartItem{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAddToCartRejectPolicy(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Policy: repo.LineReject})
	body := map[string]any{"channelId": env.Channels[0].ID}

	rec := env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddToCartIncrementPolicy(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Policy: repo.LineIncrement})
	body := map[string]any{"channelId": env.Channels[0].ID}

	rec := env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, decode[models.CartItem](t, rec.Body.String()).Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodPost, "/api/cart", map[string]any{"channelId": env.Channels[0].ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[models.CartItem](t, rec.Body.String())

	rec = env.Do(t, http.MethodDelete, fmt.Sprintf("/api/cart/%d", item.ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, env.Events.OfType(events.CartItemRemoved), 1)

	rec = env.Do(t, http.MethodDelete, "/api/cart/999999", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, env.Events.OfType(events.CartItemRemoved), 1)

	rec = env.Do(t, http.MethodDelete, "/api/cart/abc", nil)
	requireFieldError(t, rec.Code, rec.Body.String(), "id")
}

func TestRemoveFromCartIsUserScoped(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Resolver: middleware.JWTResolver{Secret: secret}})

	rec := env.Do(t, http.MethodPost, "/api/cart", map[string]any{"channelId": env.Channels[0].ID}, bearer(t, 1, "user"))
	require.Equal(t, http.StatusCreated, rec.Code)
	item := decode[models.CartItem](t, rec.Body.String())

	rec = env.Do(t, http.MethodDelete, fmt.Sprintf("/api/cart/%d", item.ID), nil, bearer(t, 2, "user"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.Do(t, http.MethodGet, "/api/cart", nil, bearer(t, 1, "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transport.CartLine](t, rec.Body.String()), 1)
}

func TestCartMutationsAreRateLimited(t *testing.T) {
	limiter := ratelimit.New(1, 1, httpserver.PrincipalKey)
	env := httpservertest.New(t, httpservertest.Options{Limiter: limiter})
	body := map[string]any{"channelId": env.Channels[0].ID}

	rec := env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.Do(t, http.MethodPost, "/api/cart", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	rec = env.Do(t, http.MethodGet, "/api/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCurrentUser(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{Resolver: middleware.JWTResolver{Secret: secret}})

	rec := env.Do(t, http.MethodGet, "/api/user", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	u := models.User{Username: "alice", IsAdmin: true}
	require.NoError(t, env.DB.Create(&u).Error)

	rec = env.Do(t, http.MethodGet, "/api/user", nil, bearer(t, u.ID, tokens.RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.User](t, rec.Body.String())
	assert.Equal(t, "alice", got.Username)
	assert.True(t, got.IsAdmin)

	rec = env.Do(t, http.MethodGet, "/api/user", nil, bearer(t, 4242, "user"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestHealthAndMetrics(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodGet, "/health/live", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.Do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env.Do(t, http.MethodGet, "/api/channels", nil)
	rec = env.Do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tgkadsf_http_requests_total{method="GET",path="/api/channels",status="200"}`)
}

func TestPanicIsLoggedAndCounted(t *testing.T) {
	var logs bytes.Buffer
	e := httpserver.NewEcho(logging.NewWithWriter(&logs, "info"))
	e.GET("/api/boom", func(echo.Context) error { panic("boom") })
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	env := &httpservertest.Env{E: e}

	rec := env.Do(t, http.MethodGet, "/api/boom", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), `"status":500`)
	assert.Contains(t, logs.String(), "boom")

	rec = env.Do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tgkadsf_http_requests_total{method="GET",path="/api/boom",status="500"}`)
}

func TestReadinessFailure(t *testing.T) {
	e := httpserver.NewEcho(logging.NewWithWriter(io.Discard, "error"))
	httpserver.Register(e, &httpserver.Deps{
		ChannelHandler: &httpserver.ChannelHTTP{},
		CartHandler:    &httpserver.CartHTTP{},
		OrderHandler:   &httpserver.OrderHTTP{},
		UserHandler:    &httpserver.UserHTTP{},
		Auth:           middleware.New(middleware.FixedResolver{}),
		Ready:          func(context.Context) error { return errors.New("db down") },
	})

	env := &httpservertest.Env{E: e}
	rec := env.Do(t, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestResponsesCarryRequestID(t *testing.T) {
	env := httpservertest.New(t, httpservertest.Options{})

	rec := env.Do(t, http.MethodGet, "/api/channels/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}
