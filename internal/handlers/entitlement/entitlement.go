package entitlement

//go:generate mockgen -source=entitlement.go -destination=mock_entitlement.go -package=entitlement

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/dto"
	"github.com/GlebRadaev/stackmeter/pkg/auth"
	"github.com/GlebRadaev/stackmeter/pkg/utils"
)

type Service interface {
	Entitlement(ctx context.Context, accountID string) (*domain.Entitlement, error)
}

type EntitlementHandler struct {
	entitlementService Service
}

func New(entitlementService Service) *EntitlementHandler {
	return &EntitlementHandler{
		entitlementService: entitlementService,
	}
}

// GetEntitlement godoc
//
//	@Summary		Get subscription entitlement
//	@Description	Report the subscription state of the authenticated account and whether premium features are unlocked.
//	@Tags			Entitlement
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	dto.EntitlementResponseDTO	"Entitlement"
//	@Failure		401	{object}	utils.Response				"Account not authorized"
//	@Failure		500	{object}	utils.Response				"Internal server error"
//	@Router			/api/entitlement [get]
func (h *EntitlementHandler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	accountID, ok := auth.AccountID(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ent, err := h.entitlementService.Entitlement(r.Context(), accountID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.EntitlementResponseDTO{
		Status:     string(ent.Status),
		Plan:       ent.Plan,
		PeriodEnd:  ent.PeriodEnd,
		Premium:    ent.Premium,
		GraceUntil: ent.GraceUntil,
	})
}
