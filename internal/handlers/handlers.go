package handlers

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/GlebRadaev/stackmeter/docs"
	balancehandlers "github.com/GlebRadaev/stackmeter/internal/handlers/balance"
	entitlementhandlers "github.com/GlebRadaev/stackmeter/internal/handlers/entitlement"
	operationhandlers "github.com/GlebRadaev/stackmeter/internal/handlers/operation"
	webhookhandlers "github.com/GlebRadaev/stackmeter/internal/handlers/webhook"
	"github.com/GlebRadaev/stackmeter/internal/service"
	"github.com/GlebRadaev/stackmeter/pkg/auth"
	"github.com/GlebRadaev/stackmeter/pkg/utils"
)

// requestTimeout bounds every route except metered operations, which carry
// their own downstream deadline.
const requestTimeout = 30 * time.Second

type BalanceHandler interface {
	GetBalance(w http.ResponseWriter, r *http.Request)
	Spend(w http.ResponseWriter, r *http.Request)
	GetHistory(w http.ResponseWriter, r *http.Request)
	Grant(w http.ResponseWriter, r *http.Request)
}

type EntitlementHandler interface {
	GetEntitlement(w http.ResponseWriter, r *http.Request)
}

type OperationHandler interface {
	Perform(w http.ResponseWriter, r *http.Request)
	GetCosts(w http.ResponseWriter, r *http.Request)
}

type WebhookHandler interface {
	Billing(w http.ResponseWriter, r *http.Request)
	Identity(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	BalanceHandler     BalanceHandler
	EntitlementHandler EntitlementHandler
	OperationHandler   OperationHandler
	WebhookHandler     WebhookHandler

	authenticate func(http.Handler) http.Handler
	admin        func(http.Handler) http.Handler
}

func New(s *service.Services, jwtService auth.JWTServiceInterface, adminToken string) *Handlers {
	return &Handlers{
		BalanceHandler:     balancehandlers.New(s.BalanceService),
		EntitlementHandler: entitlementhandlers.New(s.EntitlementService),
		OperationHandler:   operationhandlers.New(s.MeterService),
		WebhookHandler:     webhookhandlers.New(s.WebhookService),
		authenticate:       auth.Middleware(jwtService),
		admin:              auth.AdminMiddleware(adminToken),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Logger,
	)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/webhooks", func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/billing", h.WebhookHandler.Billing)
		r.Post("/identity", h.WebhookHandler.Identity)
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/operations/costs", h.OperationHandler.GetCosts)

		r.Group(func(r chi.Router) {
			r.Use(h.admin, middleware.Timeout(requestTimeout))
			r.Post("/internal/grant", h.BalanceHandler.Grant)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.authenticate)
			r.Post("/operations/{operation}", h.OperationHandler.Perform)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(requestTimeout))
				r.Route("/balance", func(r chi.Router) {
					r.Get("/", h.BalanceHandler.GetBalance)
					r.Post("/spend", h.BalanceHandler.Spend)
					r.Get("/history", h.BalanceHandler.GetHistory)
				})
				r.Get("/entitlement", h.EntitlementHandler.GetEntitlement)
			})
		})
	})

	return r
}
