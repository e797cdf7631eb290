// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sika-wallet/internal/api/handler"
	"sika-wallet/internal/api/middleware"
	"sika-wallet/internal/idempotency"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, idemCache *idempotency.Cache, jwtSecret string, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Account provisioning (no auth; identity is established afterwards)
	r.Post("/accounts", walletHandler.CreateAccount)

	// Gateway callback; authenticated by the payment reference, not a user token
	r.Post("/wallet/fund/verify", walletHandler.VerifyFunding)

	// Authenticated wallet API
	r.Route("/wallet", func(r chi.Router) {
		r.Use(middleware.Auth(jwtSecret))
		r.Use(idemCache.Middleware)

		r.Get("/balance", walletHandler.GetBalance)
		r.Get("/transactions", walletHandler.GetTransactionHistory)
		r.Get("/transactions/{transactionID}", walletHandler.GetTransactionDetails)
		r.Post("/transactions/{transactionID}/reverse", walletHandler.Reverse)
		r.Post("/transfer", walletHandler.Transfer)
		r.Post("/withdraw", walletHandler.Withdraw)
		r.Post("/fund/initiate", walletHandler.InitiateFunding)
	})

	return r
}
