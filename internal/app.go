// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	router "sika-wallet/internal/api"
	"sika-wallet/internal/api/handler"
	"sika-wallet/internal/config"
	"sika-wallet/internal/idempotency"
	"sika-wallet/internal/repository"
	"sika-wallet/internal/repository/postgres"
	"sika-wallet/internal/service"
	"sika-wallet/internal/util"
	"sika-wallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB
	Redis  *redis.Client

	// Repositories
	AccountRepository     repository.AccountRepository
	TransactionRepository repository.TransactionRepository
	LedgerRepository      repository.LedgerRepository

	// Services
	WalletService service.WalletService

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	app.Config = cfg

	// 2. Initialize Logger
	util.InitLogger()
	app.Logger = util.GetLogger()
	app.Logger.Info("Application configuration loaded successfully.")

	// 3. Connect to Database
	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	// 4. Optional Redis-backed idempotency cache
	app.Redis = idempotency.NewRedisClient(app.Config.RedisAddr, app.Logger)
	idemCache := idempotency.NewCache(app.Redis, 24*time.Hour, app.Logger)

	// 5. Initialize Repositories
	app.AccountRepository = postgres.NewAccountRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.LedgerRepository = postgres.NewLedgerRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// 6. Initialize Services
	app.WalletService = service.NewWalletService(
		app.DB, // This is the DBTxBeginner
		app.DB, // This is the DBExecutor
		app.AccountRepository,
		app.TransactionRepository,
		app.LedgerRepository,
		db.BeginTx,
		db.CommitTx,
		db.RollbackTx,
	)
	app.Logger.Info("Services initialized.")

	// 7. Initialize HTTP Handlers and Router
	walletHandler := handler.NewWalletHandler(app.WalletService, app.Logger)
	app.HTTPHandler = router.NewRouter(walletHandler, idemCache, app.Config.JWTSecret, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.Redis != nil {
		if err := app.Redis.Close(); err != nil {
			app.Logger.Error("Failed to close Redis connection", "error", err)
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
