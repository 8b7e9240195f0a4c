package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/congo_wallet/internal/account"
	"github.com/congo-pay/congo_wallet/internal/admin"
	"github.com/congo-pay/congo_wallet/internal/config"
	"github.com/congo-pay/congo_wallet/internal/ledger"
	"github.com/congo-pay/congo_wallet/internal/middleware"
	"github.com/congo-pay/congo_wallet/internal/notification"
	"github.com/congo-pay/congo_wallet/internal/payments"
	"github.com/congo-pay/congo_wallet/internal/store"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Notifier notification.Notifier
	Logger   *slog.Logger
	// Store overrides the backend chosen from DB. Used by tests.
	Store Backend
}

// Backend is the persistence the engine runs on.
type Backend interface {
	account.Repository
	ledger.Store
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil && d.Store == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)

	backend := d.Store
	if backend == nil {
		if d.DB != nil {
			backend = store.NewPostgres(d.DB, d.Cfg.LockTimeout)
		} else {
			d.Logger.Warn("DATABASE_URL not set, using in-memory store")
			backend = store.NewMemory()
		}
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notification.NewLoggerNotifier(d.Logger)
	}

	accounts := account.NewService(backend)
	history := ledger.NewHistoryService(accounts, backend)
	paymentSvc := payments.NewService(accounts, backend, notifier, payments.WithScopeTimeout(d.Cfg.LockTimeout))
	adminSvc := admin.NewService(accounts, backend, notifier, d.Cfg.LockTimeout)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	RegisterAccountRoutes(api, account.NewHandler(accounts))

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(d.Cfg.JWTSecret))
	var moneyMovement []fiber.Handler
	if d.Cache != nil {
		moneyMovement = append(moneyMovement,
			middleware.RateLimit(d.Cache, "transfers", d.Cfg.TransferLimit, d.Logger),
			middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
		)
	} else {
		d.Logger.Warn("REDIS_URL not set, idempotency and rate limiting disabled")
	}
	RegisterWalletRoutes(protected, payments.NewHandler(paymentSvc, history), moneyMovement...)
	RegisterAdminRoutes(protected, admin.NewHandler(adminSvc))

	return nil
}
