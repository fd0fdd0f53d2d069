package balance

//go:generate mockgen -source=balance.go -destination=mock_balance.go -package=balance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/dto"
	"github.com/GlebRadaev/stackmeter/pkg/auth"
	"github.com/GlebRadaev/stackmeter/pkg/utils"
	"github.com/GlebRadaev/stackmeter/pkg/validate"
)

const (
	CodeInsufficientStacks = "INSUFFICIENT_STACKS"

	NextCursorHeader = "X-Next-Cursor"
)

type Service interface {
	GetOrCreateBalance(ctx context.Context, accountID string) (*domain.Balance, error)
	Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (*domain.Transaction, error)
	History(ctx context.Context, accountID string, limit int, cursor string) ([]domain.Transaction, string, error)
	Grant(ctx context.Context, accountID string, amount int64, op domain.Operation, metadata map[string]string) (int64, error)
}

type BalanceHandler struct {
	balanceService Service
}

func New(balanceService Service) *BalanceHandler {
	return &BalanceHandler{
		balanceService: balanceService,
	}
}

// GetBalance godoc
//
//	@Summary		Get current balance
//	@Description	Return the stacks balance of the authenticated account. The first request provisions the account with the default grant.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.BalanceResponseDTO	"Current balance"
//	@Failure		401	{object}	utils.Response			"Account not authorized"
//	@Failure		500	{object}	utils.Response			"Internal server error"
//	@Router			/api/balance [get]
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance, err := h.balanceService.GetOrCreateBalance(r.Context(), accountID)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.BalanceResponseDTO{Stacks: balance.Stacks})
}

// Spend godoc
//
//	@Summary		Spend stacks
//	@Description	Atomically deduct stacks from the authenticated account. The balance never goes below zero.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SpendRequestDTO			true	"Spend request payload"
//	@Success		200		{object}	dto.SpendResponseDTO		"Charge applied"
//	@Failure		400		{object}	utils.Response				"Invalid request"
//	@Failure		401		{object}	utils.Response				"Account not authorized"
//	@Failure		402		{object}	dto.InsufficientStacksDTO	"Insufficient balance"
//	@Failure		500		{object}	utils.Response				"Internal server error"
//	@Router			/api/balance/spend [post]
func (h *BalanceHandler) Spend(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.SpendRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.balanceService.Debit(r.Context(), accountID, req.Amount, domain.OpSpend, spendDescription(req))
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.SpendResponseDTO{
		Success:         true,
		RemainingStacks: txn.ResultingBalance,
	})
}

// GetHistory godoc
//
//	@Summary		Get transaction history
//	@Description	Return the account's balance changes newest first. Pass the X-Next-Cursor response header back as cursor to fetch the next page.
//	@Tags			Balance
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int								false	"Page size, 1 to 100"	default(20)
//	@Param			cursor	query		string							false	"Cursor from a previous page"
//	@Success		200		{array}		dto.TransactionResponseDTO		"Transactions"
//	@Failure		400		{object}	utils.Response					"Invalid query"
//	@Failure		401		{object}	utils.Response					"Account not authorized"
//	@Failure		500		{object}	utils.Response					"Internal server error"
//	@Router			/api/balance/history [get]
func (h *BalanceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var limit int
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			utils.RespondWithError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	history, next, err := h.balanceService.History(r.Context(), accountID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		respondLedgerError(w, err)
		return
	}

	response := make([]dto.TransactionResponseDTO, len(history))
	for i, txn := range history {
		response[i] = dto.TransactionResponseDTO{
			ID:               txn.ID.String(),
			Delta:            txn.Delta,
			ResultingBalance: txn.ResultingBalance,
			Operation:        string(txn.Operation),
			Description:      txn.Description,
			CreatedAt:        txn.CreatedAt,
		}
	}
	if next != "" {
		w.Header().Set(NextCursorHeader, next)
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

// Grant godoc
//
//	@Summary		Grant stacks
//	@Description	Credit stacks to any account. metadata.idempotency_key makes the grant safe to retry.
//	@Tags			Internal
//	@Security		AdminToken
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.GrantRequestDTO		true	"Grant request payload"
//	@Success		200		{object}	dto.GrantResponseDTO	"Grant applied"
//	@Failure		400		{object}	utils.Response			"Invalid request"
//	@Failure		401		{object}	utils.Response			"Missing or wrong admin token"
//	@Failure		500		{object}	utils.Response			"Internal server error"
//	@Router			/api/internal/grant [post]
func (h *BalanceHandler) Grant(w http.ResponseWriter, r *http.Request) {
	var req dto.GrantRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	stacks, err := h.balanceService.Grant(r.Context(), req.AccountID, req.Amount, domain.Operation(req.Operation), req.Metadata)
	if err != nil {
		respondLedgerError(w, err)
		return
	}
	zap.L().Info("admin grant applied", zap.String("accountID", req.AccountID), zap.Int64("amount", req.Amount),
		zap.String("operation", req.Operation), zap.String("remoteAddr", r.RemoteAddr))
	utils.RespondWithJSON(w, http.StatusOK, dto.GrantResponseDTO{
		Success:    true,
		NewBalance: stacks,
	})
}

func respondLedgerError(w http.ResponseWriter, err error) {
	var shortfall *domain.InsufficientBalanceError
	switch {
	case errors.As(err, &shortfall):
		utils.RespondWithJSON(w, http.StatusPaymentRequired, dto.InsufficientStacksDTO{
			Success:   false,
			Code:      CodeInsufficientStacks,
			Error:     shortfall.Error(),
			Available: shortfall.Available,
			Required:  shortfall.Required,
		})
	case errors.Is(err, domain.ErrInvalidInput):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAccountNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Account not found")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// spendDescription keeps the client's operation name in the ledger entry even
// when a free-form description is supplied.
func spendDescription(req dto.SpendRequestDTO) string {
	switch {
	case req.Operation == "":
		return req.Description
	case req.Description == "":
		return req.Operation
	}
	return req.Operation + ": " + req.Description
}
