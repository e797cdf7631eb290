// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"sika-wallet/internal/api/middleware"
	"sika-wallet/internal/api/types"
	"sika-wallet/internal/domain"
	"sika-wallet/internal/service"
	"sika-wallet/internal/util"
)

// DefaultTimeout bounds request handling; an operation cut off by it either
// fully committed or fully rolled back.
const DefaultTimeout = 15 * time.Second

// MinWithdrawal is the smallest amount a user may withdraw to mobile money.
var MinWithdrawal = decimal.NewFromInt(5)

// WalletHandler handles HTTP requests related to wallet operations.
type WalletHandler struct {
	service  service.WalletService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service:  svc,
		validate: validator.New(),
		logger:   logger,
	}
}

// Helper function to send JSON responses.
func (h *WalletHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// Helper function to send error responses.
func (h *WalletHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput),
		util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrSameAccountTransfer):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrAccountNotFound),
		util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = "Resource not found"
	case util.IsError(err, util.ErrInsufficientBalance):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient balance"
	case util.IsError(err, util.ErrAlreadyReversed),
		util.IsError(err, util.ErrInvalidState),
		util.IsError(err, util.ErrDuplicateReference):
		statusCode = http.StatusConflict
		message = err.Error()
	case util.IsError(err, util.ErrUnauthorized):
		statusCode = http.StatusForbidden
		message = "Unauthorized"
	case util.IsRetryable(err):
		statusCode = http.StatusServiceUnavailable
		message = "Temporarily unavailable, retry the request"
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// accountID extracts the authenticated account id from the request context.
func (h *WalletHandler) accountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.AccountIDFromContext(r.Context())
	if !ok {
		h.respondWithJSON(w, http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
		return 0, false
	}
	return id, true
}

func (h *WalletHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return false
	}
	return true
}

// CreateAccountRequest represents the request body for account creation.
type CreateAccountRequest struct {
	UserName string `json:"user_name" validate:"required,min=3"`
}

// CreateAccount handles new account provisioning.
// POST /accounts
func (h *WalletHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	account, err := h.service.CreateAccount(r.Context(), req.UserName)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusCreated, account)
}

// GetBalance handles the get wallet balance request.
// GET /wallet/balance
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetBalance(r.Context(), accountID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"account_id": accountID,
		"balance":    balance,
		"currency":   domain.DefaultCurrency,
	})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	RecipientID int64           `json:"recipient_id" validate:"required,gt=0"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=255"`
}

// Transfer handles the user-to-user transfer request.
// POST /wallet/transfer
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req TransferRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}
	if req.RecipientID == accountID {
		h.respondWithError(w, util.ErrSameAccountTransfer)
		return
	}

	description := req.Description
	if description == "" {
		description = "Transfer"
	}

	transaction, err := h.service.Transfer(r.Context(), accountID, req.RecipientID, req.Amount, description)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Transfer successful",
		"transaction_id": transaction.ID,
		"reference":      transaction.Reference,
		"amount":         transaction.Amount,
		"balance_after":  transaction.BalanceAfter,
	})
}

// WithdrawRequest represents the request body for withdrawal.
type WithdrawRequest struct {
	Amount     decimal.Decimal `json:"amount"`
	MomoNumber string          `json:"momo_number" validate:"required,e164"`
}

// Withdraw handles the withdraw-to-mobile-money request.
// POST /wallet/withdraw
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req WithdrawRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Amount.LessThan(MinWithdrawal) {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	transaction, err := h.service.Debit(r.Context(), accountID, req.Amount, "Withdrawal to "+req.MomoNumber, domain.Metadata{
		"momo_number": req.MomoNumber,
	})
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Withdrawal successful",
		"transaction_id": transaction.ID,
		"reference":      transaction.Reference,
		"amount":         transaction.Amount,
		"balance_after":  transaction.BalanceAfter,
	})
}

// FundingRequest represents the request body for funding initiation.
type FundingRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"payment_method" validate:"omitempty,oneof=momo card bank"`
}

// InitiateFunding handles the wallet funding request.
// POST /wallet/fund/initiate
func (h *WalletHandler) InitiateFunding(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	var req FundingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	transaction, err := h.service.InitiateFunding(r.Context(), accountID, req.Amount, req.PaymentMethod)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Payment initiated",
		"reference": transaction.Reference,
		"amount":    transaction.Amount,
		"status":    transaction.Status,
	})
}

// VerifyFundingRequest represents the gateway callback body.
type VerifyFundingRequest struct {
	Reference string `json:"reference" validate:"required"`
}

// VerifyFunding handles the payment-gateway callback.
// POST /wallet/fund/verify
func (h *WalletHandler) VerifyFunding(w http.ResponseWriter, r *http.Request) {
	var req VerifyFundingRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	transaction, err := h.service.ConfirmFunding(r.Context(), req.Reference)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Wallet funded successfully",
		"amount":      transaction.Amount,
		"new_balance": transaction.BalanceAfter,
	})
}

// ReverseRequest represents the request body for transaction reversal.
type ReverseRequest struct {
	Reason string `json:"reason" validate:"required,max=255"`
}

// Reverse handles the transaction reversal request. Only the owner of a
// transaction may reverse it; reversing a credit debits the wallet, so an
// unchecked id would let any caller drain another account.
// POST /wallet/transactions/{transactionID}/reverse
func (h *WalletHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	transactionID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	var req ReverseRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if transaction.AccountID != accountID {
		h.respondWithError(w, util.ErrUnauthorized)
		return
	}

	if err := h.service.Reverse(r.Context(), transactionID, req.Reason); err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message":        "Transaction reversed",
		"transaction_id": transactionID,
	})
}

// GetTransactionHistory handles the get transaction history request.
// GET /wallet/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 20 // Default limit
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0 // Default offset
	}

	transactions, totalCount, err := h.service.ListTransactions(r.Context(), accountID, limit, offset)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, types.PaginatedResponse[domain.WalletTransaction]{
		Data:       transactions,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}

// GetTransactionDetails handles the single-transaction lookup request.
// GET /wallet/transactions/{transactionID}
func (h *WalletHandler) GetTransactionDetails(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.accountID(w, r)
	if !ok {
		return
	}

	transactionID, err := strconv.ParseInt(chi.URLParam(r, "transactionID"), 10, 64)
	if err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}

	transaction, err := h.service.GetTransaction(r.Context(), transactionID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}
	if transaction.AccountID != accountID {
		h.respondWithError(w, util.ErrUnauthorized)
		return
	}

	h.respondWithJSON(w, http.StatusOK, transaction)
}
