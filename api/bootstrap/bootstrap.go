package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/tbeaudouin05/stripe-membership/api/config"
	"github.com/tbeaudouin05/stripe-membership/api/database"
	"github.com/tbeaudouin05/stripe-membership/api/router"
	stripeapp "github.com/tbeaudouin05/stripe-membership/api/services/stripe/app"
	stripedb "github.com/tbeaudouin05/stripe-membership/api/services/stripe/db"
	stripegw "github.com/tbeaudouin05/stripe-membership/api/services/stripe/gateway/stripe"
)

// App holds the wired application. It is built once per process by Init.
type App struct {
	Config  *config.Config
	DB      *sql.DB
	Users   *stripedb.Store
	Service stripeapp.Service
	Handler http.Handler
	Logger  *slog.Logger
}

// NewLogger builds the process logger: JSON in production, text otherwise,
// with request ids added from the context.
func NewLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var h slog.Handler
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(router.NewLogHandler(h))
}

// Init opens the database, migrates it when configured to, and wires the
// Stripe service and HTTP router.
func Init(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.MigrateOnStart() {
		if err := database.Migrate(cfg.DatabaseURL, "up"); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info("database migrations applied")
	}

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if !cfg.StripeConfigured() {
		logger.Warn("no stripe secret key configured; checkout and customer portal are disabled")
	}
	if cfg.StripeWebhookSecret == "" {
		logger.Warn("STRIPE_WEBHOOK_SECRET is empty; webhook signatures are NOT verified")
	}

	users := stripedb.NewStore(db)
	gateway := stripegw.New(stripegw.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		Timeout:       cfg.StripeRequestTimeout(),
	})
	svc := stripeapp.NewService(users, gateway, stripeapp.Options{
		Configured:  cfg.StripeConfigured(),
		MetadataKey: cfg.StripeSubscriberMetadataKey,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})

	if cfg.SessionSecret == "" {
		logger.Warn("SESSION_SECRET is empty; using a random session key")
	}
	handler, err := router.NewRouter(router.Deps{
		Service:        svc,
		Sessions:       router.NewSessionStore(cfg.SessionSecret, cfg.IsProduction()),
		Health:         users.Ping,
		FrontendURL:    cfg.FrontendURL,
		LoginURL:       cfg.LoginURL,
		DebugEndpoints: !cfg.IsProduction(),
		Logger:         logger,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to build router: %w", err)
	}

	return &App{
		Config:  cfg,
		DB:      db,
		Users:   users,
		Service: svc,
		Handler: handler,
		Logger:  logger,
	}, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	return a.DB.Close()
}
