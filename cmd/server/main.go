package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/Egorka7485/tgkadsf/internal/events"
	"github.com/Egorka7485/tgkadsf/internal/httpserver"
	"github.com/Egorka7485/tgkadsf/internal/repo"
	"github.com/Egorka7485/tgkadsf/internal/search"
	"github.com/Egorka7485/tgkadsf/internal/service"
	"github.com/Egorka7485/tgkadsf/pkg/authclient"
	"github.com/Egorka7485/tgkadsf/pkg/config"
	pkgdb "github.com/Egorka7485/tgkadsf/pkg/db"
	"github.com/Egorka7485/tgkadsf/pkg/logging"
	middleware "github.com/Egorka7485/tgkadsf/pkg/middleware/auth"
	"github.com/Egorka7485/tgkadsf/pkg/middleware/csrf"
	"github.com/Egorka7485/tgkadsf/pkg/middleware/ratelimit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("db open: %v", err)
	}
	r := repo.New(db)
	err = r.Migrate(ctx)
	cancel()
	if err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	policy, err := repo.ParseLinePolicy(cfg.CartLinePolicy)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers)
	}

	catalog := &service.CatalogService{Repo: r, Events: publisher}
	if cfg.ESURL != "" {
		es, err := search.NewClient(search.Config{URL: cfg.ESURL, Username: cfg.ESUser, Password: cfg.ESPassword})
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		index := search.NewChannelIndex(es, cfg.ESIndex)
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := index.Ping(pingCtx); err != nil {
			logger.Warn("search_unavailable", "error", err)
		}
		pingCancel()
		catalog.Index = index
	}

	users := &service.UserService{Repo: r}
	resolver := newResolver(cfg, users)

	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst, httpserver.PrincipalKey)
	stopCleanup := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			case <-stopCleanup:
				return
			}
		}
	}()

	e := httpserver.NewEcho(logger)
	if cfg.CSRFEnabled {
		e.Use(csrf.Middleware(csrf.Config{
			Secure:    cfg.CSRFCookieSecure,
			SkipPaths: []string{"/health/live", "/health/ready", "/metrics"},
		}))
	}
	deps := &httpserver.Deps{
		ChannelHandler: &httpserver.ChannelHTTP{Svc: catalog},
		CartHandler:    &httpserver.CartHTTP{Svc: &service.CartService{Repo: r, Policy: policy, Events: publisher}},
		OrderHandler:   &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r}},
		UserHandler:    &httpserver.UserHTTP{Svc: users},
		Auth:           middleware.New(resolver),
		Ready:          func(ctx context.Context) error { return pkgdb.Ping(ctx, db) },
	}
	if cfg.RateLimitRPS > 0 {
		deps.CartLimiter = limiter
	}
	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_started", "addr", srv.Addr, "identity_mode", cfg.IdentityMode, "cart_line_policy", string(policy))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_failed", "error", err)
	}
	close(stopCleanup)
	shutdown(logger, db, publisher)
}

func newResolver(cfg config.Config, store middleware.AccountStore) middleware.Resolver {
	switch cfg.IdentityMode {
	case "jwt":
		return middleware.JWTResolver{Secret: cfg.JWTAccessSecret}
	case "remote":
		return middleware.RemoteResolver{Client: authclient.NewClient(cfg.AuthHTTPURL), Store: store}
	default:
		return middleware.FixedResolver{Principal: middleware.Principal{UserID: cfg.FixedUserID, IsAdmin: cfg.FixedUserAdmin}}
	}
}

func shutdown(logger *slog.Logger, db *gorm.DB, publisher events.Publisher) {
	if err := publisher.Close(); err != nil {
		logger.Error("events_close_failed", "error", err)
	}
	pkgdb.Close(db)
	logger.Info("server_stopped")
}
