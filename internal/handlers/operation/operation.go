package operation

//go:generate mockgen -source=operation.go -destination=mock_operation.go -package=operation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/dto"
	"github.com/GlebRadaev/stackmeter/internal/service/meterservice"
	"github.com/GlebRadaev/stackmeter/pkg/auth"
	"github.com/GlebRadaev/stackmeter/pkg/utils"
	"github.com/GlebRadaev/stackmeter/pkg/validate"
)

const (
	CodeInsufficientStacks = "INSUFFICIENT_STACKS"
	CodeDownstreamFailed   = "DOWNSTREAM_FAILED"
	CodeUnknownOperation   = "UNKNOWN_OPERATION"
)

type Service interface {
	Perform(ctx context.Context, accountID, operation, input string) (*meterservice.Result, error)
	Costs() []meterservice.Operation
}

type OperationHandler struct {
	meterService Service
}

func New(meterService Service) *OperationHandler {
	return &OperationHandler{
		meterService: meterService,
	}
}

// Perform godoc
//
//	@Summary		Run a metered operation
//	@Description	Charge the operation price and run it. The charge happens before the operation and stays in place if the operation fails.
//	@Tags			Operations
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			operation	path		string						true	"Operation name"	Enums(ASK_QUESTION, EXPLAIN_STEP, SOLVE_PROBLEM, GENERATE_PRACTICE, SOLVE_IMAGE)
//	@Param			request		body		dto.OperationRequestDTO		true	"Operation input"
//	@Success		200			{object}	dto.OperationResponseDTO	"Operation result"
//	@Failure		400			{object}	utils.Response				"Unknown operation or invalid input"
//	@Failure		401			{object}	utils.Response				"Account not authorized"
//	@Failure		402			{object}	dto.InsufficientStacksDTO	"Insufficient balance"
//	@Failure		502			{object}	dto.DownstreamFailedDTO		"Operation failed after charging"
//	@Failure		500			{object}	utils.Response				"Internal server error"
//	@Router			/api/operations/{operation} [post]
func (h *OperationHandler) Perform(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req dto.OperationRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.meterService.Perform(r.Context(), accountID, chi.URLParam(r, "operation"), req.Input)
	if err != nil {
		respondMeterError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.OperationResponseDTO{
		Result: result.Output,
		Usage: dto.UsageDTO{
			Model:        result.Model,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			Charged:      result.Charged,
		},
		RemainingStacks: result.RemainingStacks,
	})
}

// GetCosts godoc
//
//	@Summary		List operation costs
//	@Description	Return the price in stacks of every metered operation.
//	@Tags			Operations
//	@Produce		json
//	@Success		200	{array}	dto.OperationCostDTO	"Cost table"
//	@Router			/api/operations/costs [get]
func (h *OperationHandler) GetCosts(w http.ResponseWriter, r *http.Request) {
	costs := h.meterService.Costs()
	response := make([]dto.OperationCostDTO, len(costs))
	for i, op := range costs {
		response[i] = dto.OperationCostDTO{Operation: op.Name, Cost: op.Cost}
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}

func respondMeterError(w http.ResponseWriter, err error) {
	var (
		shortfall *domain.InsufficientBalanceError
		failed    *domain.DownstreamFailedError
	)
	switch {
	case errors.As(err, &shortfall):
		utils.RespondWithJSON(w, http.StatusPaymentRequired, dto.InsufficientStacksDTO{
			Success:   false,
			Code:      CodeInsufficientStacks,
			Error:     shortfall.Error(),
			Available: shortfall.Available,
			Required:  shortfall.Required,
		})
	case errors.As(err, &failed):
		utils.RespondWithJSON(w, http.StatusBadGateway, dto.DownstreamFailedDTO{
			Success:         false,
			Code:            CodeDownstreamFailed,
			Error:           "Operation failed",
			Charged:         failed.Charged,
			Refunded:        failed.Refunded,
			RemainingStacks: failed.Remaining,
		})
	case errors.Is(err, domain.ErrUnknownOperation):
		utils.RespondWithCode(w, http.StatusBadRequest, CodeUnknownOperation, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
