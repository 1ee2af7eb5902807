// Package csrf applies double-submit tokens to cookie-authenticated
// sessions. Requests that authenticate with a bearer header, or without the
// session cookie, pass through unchecked.
package csrf

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Egorka7485/tgkadsf/pkg/logging"
)

type Config struct {
	CookieName string
	HeaderName string
	// SessionCookie marks a request as cookie-authenticated.
	SessionCookie string

	Secure   bool
	SameSite http.SameSite
	MaxAge   time.Duration

	SkipPaths []string
}

func DefaultConfig() Config {
	return Config{
		CookieName:    "XSRF-TOKEN",
		HeaderName:    "X-CSRF-Token",
		SessionCookie: "accessToken",
		SameSite:      http.SameSiteLaxMode,
		MaxAge:        24 * time.Hour,
	}
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.CookieName == "" {
		cfg.CookieName = def.CookieName
	}
	if cfg.HeaderName == "" {
		cfg.HeaderName = def.HeaderName
	}
	if cfg.SessionCookie == "" {
		cfg.SessionCookie = def.SessionCookie
	}
	if cfg.SameSite == 0 {
		cfg.SameSite = def.SameSite
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = def.MaxAge
	}
	return cfg
}

const contextKey = "csrf"

// Middleware wraps echo's double-submit CSRF check. Token issue and
// validation are echo's; this layer decides which requests are checked and
// adds an origin check in front of it.
func Middleware(cfg Config) echo.MiddlewareFunc {
	cfg = cfg.withDefaults()
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	skipped := func(c echo.Context) bool {
		_, ok := skip[c.Request().URL.Path]
		return ok
	}
	checked := func(c echo.Context) bool {
		req := c.Request()
		return !skipped(c) && !safeMethod(req.Method) && cookieSession(req, cfg.SessionCookie)
	}

	echoCSRF := echomw.CSRFWithConfig(echomw.CSRFConfig{
		Skipper: func(c echo.Context) bool {
			return skipped(c) || (!safeMethod(c.Request().Method) && !checked(c))
		},
		TokenLookup:    "header:" + cfg.HeaderName,
		ContextKey:     contextKey,
		CookieName:     cfg.CookieName,
		CookiePath:     "/",
		CookieSecure:   cfg.Secure,
		CookieSameSite: cfg.SameSite,
		CookieMaxAge:   int(cfg.MaxAge.Seconds()),
		ErrorHandler: func(err error, c echo.Context) error {
			logging.FromContext(c.Request().Context()).With("middleware", "csrf").
				Warn("csrf_rejected", "status", 403, "reason", "token mismatch", "error", err)
			return echo.NewHTTPError(http.StatusForbidden, "invalid CSRF token")
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		inner := echoCSRF(func(c echo.Context) error {
			if tok, ok := c.Get(contextKey).(string); ok && tok != "" {
				c.Response().Header().Set(cfg.HeaderName, tok)
			}
			return next(c)
		})
		return func(c echo.Context) error {
			if checked(c) && !sameOrigin(c.Request()) {
				logging.FromContext(c.Request().Context()).With("middleware", "csrf").
					Warn("csrf_rejected", "status", 403, "reason", "origin mismatch")
				return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
			}
			return inner(c)
		}
	}
}

func safeMethod(m string) bool {
	return m == http.MethodGet || m == http.MethodHead || m == http.MethodOptions || m == http.MethodTrace
}

func cookieSession(req *http.Request, name string) bool {
	if strings.HasPrefix(req.Header.Get(echo.HeaderAuthorization), "Bearer ") {
		return false
	}
	return cookieValue(req, name) != ""
}

func cookieValue(req *http.Request, name string) string {
	ck, err := req.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}

// sameOrigin accepts requests whose Origin, or Referer when Origin is
// absent, names this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Header.Get("Referer")
	}
	if origin == "" {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	scheme := r.Header.Get("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "http"
		if r.TLS != nil {
			scheme = "https"
		}
	}
	return strings.EqualFold(u.Scheme, scheme) && strings.EqualFold(u.Host, r.Host)
}
