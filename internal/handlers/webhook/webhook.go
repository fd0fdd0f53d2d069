package webhook

//go:generate mockgen -source=webhook.go -destination=mock_webhook.go -package=webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/dto"
	"github.com/GlebRadaev/stackmeter/pkg/utils"
)

const (
	maxBodyBytes = int64(65536)

	StripeSignatureHeader = "Stripe-Signature"
)

type Service interface {
	HandleBilling(ctx context.Context, payload []byte, signature string) (domain.WebhookOutcome, error)
	HandleIdentity(ctx context.Context, payload []byte, headers http.Header) (domain.WebhookOutcome, error)
}

type WebhookHandler struct {
	webhookService Service
}

func New(webhookService Service) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

// Billing godoc
//
//	@Summary		Billing provider webhook
//	@Description	Receive a signed Stripe event. Deliveries are applied exactly once; replays are acknowledged without effect.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			Stripe-Signature	header		string					true	"Stripe signature header"
//	@Success		200					{object}	dto.WebhookResponseDTO	"Event accepted"
//	@Failure		400					{object}	utils.Response			"Bad signature or payload"
//	@Failure		500					{object}	utils.Response			"Event not applied, retry later"
//	@Router			/webhooks/billing [post]
func (h *WebhookHandler) Billing(w http.ResponseWriter, r *http.Request) {
	payload, ok := readBody(w, r)
	if !ok {
		return
	}
	outcome, err := h.webhookService.HandleBilling(r.Context(), payload, r.Header.Get(StripeSignatureHeader))
	respond(w, r, "billing", outcome, err)
}

// Identity godoc
//
//	@Summary		Identity provider webhook
//	@Description	Receive a Svix-signed identity event. A created user gets a provisioned balance.
//	@Tags			Webhooks
//	@Accept			json
//	@Produce		json
//	@Param			svix-id			header		string					true	"Delivery id"
//	@Param			svix-timestamp	header		string					true	"Delivery timestamp"
//	@Param			svix-signature	header		string					true	"Delivery signature"
//	@Success		200				{object}	dto.WebhookResponseDTO	"Event accepted"
//	@Failure		400				{object}	utils.Response			"Bad signature or payload"
//	@Failure		500				{object}	utils.Response			"Event not applied, retry later"
//	@Router			/webhooks/identity [post]
func (h *WebhookHandler) Identity(w http.ResponseWriter, r *http.Request) {
	payload, ok := readBody(w, r)
	if !ok {
		return
	}
	outcome, err := h.webhookService.HandleIdentity(r.Context(), payload, r.Header)
	respond(w, r, "identity", outcome, err)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Unable to read request body")
		return nil, false
	}
	return payload, true
}

func respond(w http.ResponseWriter, r *http.Request, source string, outcome domain.WebhookOutcome, err error) {
	switch {
	case err == nil:
		utils.RespondWithJSON(w, http.StatusOK, dto.WebhookResponseDTO{Received: true, Outcome: string(outcome)})
	case errors.Is(err, domain.ErrSignatureVerification):
		zap.L().Warn("webhook signature rejected", zap.String("source", source),
			zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid signature")
	case errors.Is(err, domain.ErrMalformedEvent):
		zap.L().Warn("malformed webhook payload", zap.String("source", source),
			zap.String("remoteAddr", r.RemoteAddr), zap.Error(err))
		utils.RespondWithError(w, http.StatusBadRequest, "Malformed event")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
