package service

import (
	"github.com/GlebRadaev/stackmeter/internal/config"
	"github.com/GlebRadaev/stackmeter/internal/handlers/balance"
	"github.com/GlebRadaev/stackmeter/internal/handlers/entitlement"
	"github.com/GlebRadaev/stackmeter/internal/handlers/operation"
	"github.com/GlebRadaev/stackmeter/internal/handlers/webhook"
	"github.com/GlebRadaev/stackmeter/internal/repo"
	"github.com/GlebRadaev/stackmeter/internal/service/entitlementservice"
	"github.com/GlebRadaev/stackmeter/internal/service/ledgerservice"
	"github.com/GlebRadaev/stackmeter/internal/service/meterservice"
	"github.com/GlebRadaev/stackmeter/internal/service/webhookservice"
)

type Services struct {
	BalanceService     balance.Service
	EntitlementService entitlement.Service
	MeterService       operation.Service
	WebhookService     webhook.Service
}

func New(cfg *config.Config, repo *repo.Repositories, billing webhookservice.BillingClient, completion meterservice.CompletionClient) (*Services, error) {
	ledgerService := ledgerservice.New(repo.LedgerRepo, cfg.DefaultGrant)
	entitlementService := entitlementservice.New(repo.SubscriptionRepo, cfg.PastDueGrace)
	meterService := meterservice.New(ledgerService, completion, cfg.CompletionTimeout, cfg.RefundOnFailure)
	webhookService, err := webhookservice.New(webhookservice.Config{
		BillingSecret:     cfg.StripeWebhookSecret,
		IdentitySecret:    cfg.IdentityWebhookSecret,
		Tolerance:         cfg.WebhookTolerance,
		SubscriptionBonus: cfg.SubscriptionBonus,
	}, ledgerService, repo.SubscriptionRepo, repo.EventRepo, repo.TxManager, billing)
	if err != nil {
		return nil, err
	}

	return &Services{
		BalanceService:     ledgerService,
		EntitlementService: entitlementService,
		MeterService:       meterService,
		WebhookService:     webhookService,
	}, nil
}
