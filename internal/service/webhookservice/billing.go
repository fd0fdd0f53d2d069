package webhookservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/service/entitlementservice"
)

const accountMetadataKey = "account_id"

// HandleBilling verifies and applies a billing provider delivery. Provider
// lookups happen before the transaction so that no row locks are held across
// network calls.
func (s *Service) HandleBilling(ctx context.Context, payload []byte, signature string) (domain.WebhookOutcome, error) {
	if s.cfg.BillingSecret == "" {
		return "", fmt.Errorf("%w: billing webhook secret is not configured", domain.ErrSignatureVerification)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.BillingSecret, webhook.ConstructEventOptions{
		Tolerance:                s.cfg.Tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrSignatureVerification, err)
	}
	if event.ID == "" || event.Data == nil {
		return "", domain.ErrMalformedEvent
	}

	processed, err := s.seen(ctx, event.ID)
	if err != nil {
		return "", err
	}
	if processed {
		zap.L().Info("duplicate webhook event", zap.String("provider", ProviderBilling), zap.String("eventID", event.ID))
		return domain.OutcomeDuplicate, nil
	}

	apply, err := s.prepareBilling(ctx, event)
	if err != nil {
		return "", err
	}
	return s.process(ctx, ProviderBilling, event.ID, string(event.Type), apply)
}

func (s *Service) prepareBilling(ctx context.Context, event stripe.Event) (effect, error) {
	eventAt := time.Unix(event.Created, 0).UTC()

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", domain.ErrMalformedEvent, err)
		}
		switch session.Mode {
		case stripe.CheckoutSessionModeSubscription:
			return s.prepareSubscriptionCheckout(ctx, event.ID, eventAt, &session)
		case stripe.CheckoutSessionModePayment:
			return s.preparePaymentCheckout(ctx, event.ID, &session)
		}
		return ignore, nil

	case stripe.EventTypeCustomerSubscriptionCreated, stripe.EventTypeCustomerSubscriptionUpdated:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", domain.ErrMalformedEvent, err)
		}
		status, ok := mapStatus(sub.Status)
		if !ok {
			zap.L().Info("subscription status not tracked", zap.String("eventID", event.ID), zap.String("status", string(sub.Status)))
			return ignore, nil
		}
		accountID, err := s.resolveAccount(ctx, sub.Metadata[accountMetadataKey], customerID(sub.Customer))
		if err != nil {
			return nil, err
		}
		return s.transition(event.ID, accountID, subscriptionState(accountID, &sub, status, eventAt), domain.OpSubscriptionBonus), nil

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", domain.ErrMalformedEvent, err)
		}
		accountID, err := s.resolveAccount(ctx, sub.Metadata[accountMetadataKey], customerID(sub.Customer))
		if err != nil {
			return nil, err
		}
		state := subscriptionState(accountID, &sub, domain.StatusCanceled, eventAt)
		return s.transition(event.ID, accountID, state, domain.OpSubscriptionCanceled), nil

	case stripe.EventTypeInvoicePaymentFailed:
		var inv invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return nil, fmt.Errorf("%w: invoice: %v", domain.ErrMalformedEvent, err)
		}
		accountID, err := s.resolveAccount(ctx, inv.accountHint(), inv.Customer)
		if err != nil {
			return nil, err
		}
		return s.paymentFailed(event.ID, accountID, inv, eventAt), nil

	case stripe.EventTypePaymentIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("%w: payment intent: %v", domain.ErrMalformedEvent, err)
		}
		accountID := pi.Metadata[accountMetadataKey]
		if accountID == "" {
			return ignore, nil
		}
		description := fmt.Sprintf("Payment %s succeeded: %d %s", pi.ID, pi.Amount, pi.Currency)
		return s.audit(event.ID, accountID, domain.OpPaymentLogged, description), nil
	}

	zap.L().Debug("webhook event type not handled", zap.String("eventID", event.ID), zap.String("type", string(event.Type)))
	return ignore, nil
}

func ignore(context.Context) (domain.WebhookOutcome, error) {
	return domain.OutcomeIgnored, nil
}

func (s *Service) prepareSubscriptionCheckout(ctx context.Context, eventID string, eventAt time.Time, session *stripe.CheckoutSession) (effect, error) {
	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}
	state := domain.Subscription{
		ProviderCustomerID:     customerID(session.Customer),
		ProviderSubscriptionID: subscriptionID,
		Status:                 domain.StatusActive,
		EventAt:                eventAt,
	}

	var subMetadataAccount string
	if subscriptionID != "" && s.billing != nil {
		sub, err := s.billing.GetSubscription(ctx, subscriptionID)
		if err != nil {
			zap.L().Error("failed to fetch subscription from billing provider", zap.String("subscriptionID", subscriptionID), zap.Error(err))
			return nil, err
		}
		status, ok := mapStatus(sub.Status)
		if !ok {
			status = domain.StatusActive
		}
		state = subscriptionState("", sub, status, eventAt)
		if state.ProviderCustomerID == "" {
			state.ProviderCustomerID = customerID(session.Customer)
		}
		subMetadataAccount = sub.Metadata[accountMetadataKey]
	}

	hint := firstNonEmpty(session.ClientReferenceID, session.Metadata[accountMetadataKey], subMetadataAccount)
	accountID, err := s.resolveAccount(ctx, hint, state.ProviderCustomerID)
	if err != nil {
		return nil, err
	}
	state.AccountID = accountID
	return s.transition(eventID, accountID, state, domain.OpSubscriptionBonus), nil
}

func (s *Service) preparePaymentCheckout(ctx context.Context, eventID string, session *stripe.CheckoutSession) (effect, error) {
	if session.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		zap.L().Info("checkout session not paid", zap.String("eventID", eventID), zap.String("status", string(session.PaymentStatus)))
		return ignore, nil
	}
	accountID, err := s.resolveAccount(ctx, firstNonEmpty(session.ClientReferenceID, session.Metadata[accountMetadataKey]), customerID(session.Customer))
	if err != nil {
		return nil, err
	}
	if accountID == "" {
		return unknownAccount(eventID), nil
	}

	var items []*stripe.LineItem
	if session.LineItems != nil {
		items = session.LineItems.Data
	} else {
		if s.billing == nil {
			return nil, errors.New("billing client is not configured, line items cannot be priced")
		}
		items, err = s.billing.ListLineItems(ctx, session.ID)
		if err != nil {
			zap.L().Error("failed to fetch checkout line items", zap.String("sessionID", session.ID), zap.Error(err))
			return nil, err
		}
	}

	type purchase struct {
		itemID      string
		stacks      int64
		description string
	}
	var (
		purchases []purchase
		total     int64
	)
	for _, item := range items {
		stacks, err := itemStacks(item)
		if err == nil && stacks > math.MaxInt64-total {
			err = errStacksOverflow
		}
		if err != nil {
			zap.L().Warn("line item skipped", zap.String("eventID", eventID), zap.String("lineItemID", lineItemID(item)), zap.Error(err))
			continue
		}
		total += stacks
		purchases = append(purchases, purchase{
			itemID:      item.ID,
			stacks:      stacks,
			description: fmt.Sprintf("Purchased %d stacks (%s)", stacks, item.Description),
		})
	}

	return func(ctx context.Context) (domain.WebhookOutcome, error) {
		if len(purchases) == 0 {
			return domain.OutcomeIgnored, nil
		}
		if _, err := s.ledger.GetOrCreateBalance(ctx, accountID); err != nil {
			return "", err
		}
		if _, err := s.ledger.LockAccount(ctx, accountID); err != nil {
			return "", err
		}
		for _, p := range purchases {
			ref := eventID + ":" + p.itemID
			if _, _, err := s.ledger.Credit(ctx, accountID, p.stacks, domain.OpCreditPurchase, p.description, &ref); err != nil {
				return "", err
			}
		}
		return domain.OutcomeProcessed, nil
	}, nil
}

// transition applies a subscription state change for the account. A fresh
// activation earns the bonus; cancellations leave an audit record.
func (s *Service) transition(eventID, accountID string, incoming domain.Subscription, op domain.Operation) effect {
	if accountID == "" {
		return unknownAccount(eventID)
	}
	incoming.AccountID = accountID

	return func(ctx context.Context) (domain.WebhookOutcome, error) {
		if _, err := s.ledger.GetOrCreateBalance(ctx, accountID); err != nil {
			return "", err
		}
		if _, err := s.ledger.LockAccount(ctx, accountID); err != nil {
			return "", err
		}
		current, err := s.subs.Find(ctx, accountID)
		if err != nil {
			return "", err
		}
		if current != nil && incoming.Plan == "" {
			incoming.Plan, incoming.PriceRef = current.Plan, current.PriceRef
		}

		decision := entitlementservice.Decide(current, incoming)
		if !decision.Apply {
			zap.L().Info("subscription transition skipped", zap.String("accountID", accountID), zap.String("eventID", eventID),
				zap.String("status", string(incoming.Status)), zap.String("reason", decision.Reason))
			return domain.OutcomeIgnored, nil
		}
		if _, err := s.subs.Upsert(ctx, &incoming); err != nil {
			return "", err
		}

		ref := eventID
		switch {
		case incoming.Status == domain.StatusCanceled && op == domain.OpSubscriptionCanceled:
			if _, err := s.ledger.AppendAudit(ctx, accountID, domain.OpSubscriptionCanceled, "Subscription canceled", &ref); err != nil {
				return "", err
			}
		case decision.Activated && s.cfg.SubscriptionBonus > 0:
			description := "Subscription bonus"
			if incoming.Plan != "" {
				description += " (" + incoming.Plan + ")"
			}
			key := bonusRef(eventID, incoming.ProviderSubscriptionID)
			if _, _, err := s.ledger.Credit(ctx, accountID, s.cfg.SubscriptionBonus, domain.OpSubscriptionBonus, description, &key); err != nil {
				return "", err
			}
		}
		return domain.OutcomeProcessed, nil
	}
}

// bonusRef pays the activation bonus at most once per provider subscription.
func bonusRef(eventID, subscriptionID string) string {
	if subscriptionID == "" {
		return eventID
	}
	return "bonus:" + subscriptionID
}

func (s *Service) paymentFailed(eventID, accountID string, inv invoice, eventAt time.Time) effect {
	if accountID == "" {
		return unknownAccount(eventID)
	}
	return func(ctx context.Context) (domain.WebhookOutcome, error) {
		if _, err := s.ledger.GetOrCreateBalance(ctx, accountID); err != nil {
			return "", err
		}
		if _, err := s.ledger.LockAccount(ctx, accountID); err != nil {
			return "", err
		}
		current, err := s.subs.Find(ctx, accountID)
		if err != nil {
			return "", err
		}

		incoming := domain.Subscription{
			AccountID:              accountID,
			ProviderCustomerID:     inv.Customer,
			ProviderSubscriptionID: inv.subscriptionID(),
		}
		if current != nil {
			incoming = *current
			if id := inv.subscriptionID(); id != "" {
				incoming.ProviderSubscriptionID = id
			}
		}
		incoming.Status = domain.StatusPastDue
		incoming.EventAt = eventAt

		if decision := entitlementservice.Decide(current, incoming); decision.Apply {
			if _, err := s.subs.Upsert(ctx, &incoming); err != nil {
				return "", err
			}
		} else {
			zap.L().Info("subscription transition skipped", zap.String("accountID", accountID), zap.String("eventID", eventID),
				zap.String("reason", decision.Reason))
		}

		ref := eventID
		description := fmt.Sprintf("Invoice %s payment failed", inv.ID)
		if _, err := s.ledger.AppendAudit(ctx, accountID, domain.OpPaymentFailed, description, &ref); err != nil {
			return "", err
		}
		return domain.OutcomeProcessed, nil
	}
}

func (s *Service) audit(eventID, accountID string, op domain.Operation, description string) effect {
	return func(ctx context.Context) (domain.WebhookOutcome, error) {
		if _, err := s.ledger.GetOrCreateBalance(ctx, accountID); err != nil {
			return "", err
		}
		ref := eventID
		if _, err := s.ledger.AppendAudit(ctx, accountID, op, description, &ref); err != nil {
			return "", err
		}
		return domain.OutcomeProcessed, nil
	}
}

// unknownAccount acknowledges an event no account could be matched to.
// Redelivery cannot fix it, so the event is still recorded as processed.
func unknownAccount(eventID string) effect {
	return func(context.Context) (domain.WebhookOutcome, error) {
		zap.L().Error("webhook event has no resolvable account", zap.String("eventID", eventID), zap.Error(domain.ErrAccountNotFound))
		return domain.OutcomeIgnored, nil
	}
}

// resolveAccount prefers an explicit account id and falls back to the stored
// subscription of the provider customer. An empty result means unknown.
func (s *Service) resolveAccount(ctx context.Context, hint, customer string) (string, error) {
	if hint != "" {
		return hint, nil
	}
	if customer == "" {
		return "", nil
	}
	sub, err := s.subs.FindByCustomer(ctx, customer)
	if err != nil {
		return "", err
	}
	if sub == nil {
		return "", nil
	}
	return sub.AccountID, nil
}

func mapStatus(status stripe.SubscriptionStatus) (domain.SubscriptionStatus, bool) {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return domain.StatusActive, true
	case stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid, stripe.SubscriptionStatusPaused:
		return domain.StatusPastDue, true
	case stripe.SubscriptionStatusCanceled, stripe.SubscriptionStatusIncompleteExpired:
		return domain.StatusCanceled, true
	}
	return "", false
}

func subscriptionState(accountID string, sub *stripe.Subscription, status domain.SubscriptionStatus, eventAt time.Time) domain.Subscription {
	state := domain.Subscription{
		AccountID:              accountID,
		ProviderCustomerID:     customerID(sub.Customer),
		ProviderSubscriptionID: sub.ID,
		Status:                 status,
		EventAt:                eventAt,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.CurrentPeriodEnd > 0 {
			periodEnd := time.Unix(item.CurrentPeriodEnd, 0).UTC()
			state.PeriodEnd = &periodEnd
		}
		if item.Price != nil {
			state.PriceRef = item.Price.ID
			state.Plan = firstNonEmpty(item.Price.Nickname, item.Price.LookupKey, item.Price.ID)
		}
	}
	return state
}

var (
	errNoStacksMetadata = errors.New("line item has no stacks metadata")
	errStacksOverflow   = errors.New("line item stacks overflow")
)

func itemStacks(item *stripe.LineItem) (int64, error) {
	if item == nil || item.Price == nil {
		return 0, errNoStacksMetadata
	}
	stacks, err := strconv.ParseInt(item.Price.Metadata["stacks"], 10, 64)
	if err != nil || stacks <= 0 {
		return 0, errNoStacksMetadata
	}
	quantity := item.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	if stacks > math.MaxInt64/quantity {
		return 0, errStacksOverflow
	}
	return stacks * quantity, nil
}

func lineItemID(item *stripe.LineItem) string {
	if item == nil {
		return ""
	}
	return item.ID
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// invoice is decoded locally so that both the top-level subscription field
// and the parent subscription details of newer API versions are understood.
type invoice struct {
	ID           string            `json:"id"`
	Customer     string            `json:"customer"`
	Subscription string            `json:"subscription"`
	Metadata     map[string]string `json:"metadata"`
	Parent       *struct {
		SubscriptionDetails *struct {
			Subscription string            `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

func (inv invoice) subscriptionID() string {
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && inv.Parent.SubscriptionDetails.Subscription != "" {
		return inv.Parent.SubscriptionDetails.Subscription
	}
	return inv.Subscription
}

func (inv invoice) accountHint() string {
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil {
		if id := inv.Parent.SubscriptionDetails.Metadata[accountMetadataKey]; id != "" {
			return id
		}
	}
	return inv.Metadata[accountMetadataKey]
}
