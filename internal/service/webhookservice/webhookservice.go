package webhookservice

//go:generate mockgen -source=webhookservice.go -destination=mock_webhookservice.go -package=webhookservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v82"
	svix "github.com/svix/svix-webhooks/go"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
)

const (
	ProviderBilling  = "stripe"
	ProviderIdentity = "clerk"
)

type LedgerService interface {
	GetOrCreateBalance(ctx context.Context, accountID string) (*domain.Balance, error)
	Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (int64, bool, error)
	AppendAudit(ctx context.Context, accountID string, op domain.Operation, description string, externalRef *string) (bool, error)
	LockAccount(ctx context.Context, accountID string) (*domain.Balance, error)
}

type SubscriptionRepo interface {
	Find(ctx context.Context, accountID string) (*domain.Subscription, error)
	FindByCustomer(ctx context.Context, customerID string) (*domain.Subscription, error)
	Upsert(ctx context.Context, sub *domain.Subscription) (bool, error)
}

type EventRepo interface {
	IsProcessed(ctx context.Context, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID, eventType string) (bool, error)
}

// BillingClient reads objects from the billing provider that webhook payloads
// only reference by id.
type BillingClient interface {
	GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error)
	ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error)
}

type Config struct {
	BillingSecret     string
	IdentitySecret    string
	Tolerance         time.Duration
	SubscriptionBonus int64
}

type Service struct {
	cfg       Config
	ledger    LedgerService
	subs      SubscriptionRepo
	events    EventRepo
	txManager pg.TXManager
	billing   BillingClient
	identity  *svix.Webhook
}

func New(cfg Config, ledger LedgerService, subs SubscriptionRepo, events EventRepo, txManager pg.TXManager, billing BillingClient) (*Service, error) {
	s := &Service{
		cfg:       cfg,
		ledger:    ledger,
		subs:      subs,
		events:    events,
		txManager: txManager,
		billing:   billing,
	}
	if cfg.IdentitySecret != "" {
		wh, err := svix.NewWebhook(cfg.IdentitySecret)
		if err != nil {
			return nil, fmt.Errorf("invalid identity webhook secret: %w", err)
		}
		s.identity = wh
	}
	return s, nil
}

// effect applies the state changes of one verified event. It runs inside the
// transaction that records the event as processed.
type effect func(ctx context.Context) (domain.WebhookOutcome, error)

func (s *Service) process(ctx context.Context, provider, eventID, eventType string, apply effect) (domain.WebhookOutcome, error) {
	outcome := domain.OutcomeProcessed
	err := s.txManager.Begin(ctx, func(ctx context.Context) error {
		isNew, err := s.events.MarkProcessed(ctx, provider, eventID, eventType)
		if err != nil {
			return err
		}
		if !isNew {
			return domain.ErrDuplicateEvent
		}
		outcome, err = apply(ctx)
		return err
	})
	if errors.Is(err, domain.ErrDuplicateEvent) {
		zap.L().Info("duplicate webhook event", zap.String("provider", provider), zap.String("eventID", eventID))
		return domain.OutcomeDuplicate, nil
	}
	if err != nil {
		zap.L().Error("failed to apply webhook event", zap.String("provider", provider), zap.String("eventID", eventID),
			zap.String("type", eventType), zap.Error(err))
		return "", err
	}
	zap.L().Info("webhook event applied", zap.String("provider", provider), zap.String("eventID", eventID),
		zap.String("type", eventType), zap.String("outcome", string(outcome)))
	return outcome, nil
}

func (s *Service) seen(ctx context.Context, eventID string) (bool, error) {
	processed, err := s.events.IsProcessed(ctx, eventID)
	if err != nil {
		zap.L().Error("failed to check processed event", zap.String("eventID", eventID), zap.Error(err))
		return false, err
	}
	return processed, nil
}

type identityEvent struct {
	Type string `json:"type"`
	Data struct {
		ID     string `json:"id"`
		UserID string `json:"user_id"`
	} `json:"data"`
}

// HandleIdentity verifies and applies an identity provider delivery. A new
// user gets a provisioned balance; sign-ins are only logged.
func (s *Service) HandleIdentity(ctx context.Context, payload []byte, headers http.Header) (domain.WebhookOutcome, error) {
	if s.identity == nil {
		return "", fmt.Errorf("%w: identity webhook secret is not configured", domain.ErrSignatureVerification)
	}
	if err := s.identity.Verify(payload, headers); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSignatureVerification, err)
	}

	msgID := headers.Get("svix-id")
	var evt identityEvent
	if err := json.Unmarshal(payload, &evt); err != nil || evt.Type == "" || msgID == "" {
		return "", domain.ErrMalformedEvent
	}

	processed, err := s.seen(ctx, msgID)
	if err != nil {
		return "", err
	}
	if processed {
		return domain.OutcomeDuplicate, nil
	}

	return s.process(ctx, ProviderIdentity, msgID, evt.Type, func(ctx context.Context) (domain.WebhookOutcome, error) {
		switch evt.Type {
		case "user.created":
			if evt.Data.ID == "" {
				return "", domain.ErrMalformedEvent
			}
			if _, err := s.ledger.GetOrCreateBalance(ctx, evt.Data.ID); err != nil {
				return "", err
			}
			return domain.OutcomeProcessed, nil
		case "session.created":
			zap.L().Info("user signed in", zap.String("accountID", evt.Data.UserID), zap.String("sessionID", evt.Data.ID))
			return domain.OutcomeProcessed, nil
		default:
			return domain.OutcomeIgnored, nil
		}
	})
}
