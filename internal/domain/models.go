package domain

import (
	"time"

	"github.com/google/uuid"
)

type Operation string

const (
	OpDefaultGrant         Operation = "default_grant"
	OpSpend                Operation = "spend"
	OpGrant                Operation = "grant"
	OpSubscriptionBonus    Operation = "subscription_bonus"
	OpCreditPurchase       Operation = "credit_purchase"
	OpRefund               Operation = "refund"
	OpSubscriptionCanceled Operation = "subscription_canceled"
	OpPaymentFailed        Operation = "payment_failed"
	OpPaymentLogged        Operation = "payment_logged"
)

type Balance struct {
	AccountID string    `db:"account_id"`
	Stacks    int64     `db:"stacks"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Transaction is an immutable record of one balance mutation. Audit records
// carry a zero delta.
type Transaction struct {
	ID               uuid.UUID `db:"id"`
	AccountID        string    `db:"account_id"`
	Delta            int64     `db:"delta"`
	ResultingBalance int64     `db:"resulting_balance"`
	Operation        Operation `db:"operation"`
	Description      string    `db:"description"`
	ExternalRef      *string   `db:"external_ref"`
	CreatedAt        time.Time `db:"created_at"`
}

type SubscriptionStatus string

const (
	StatusNone     SubscriptionStatus = "none"
	StatusActive   SubscriptionStatus = "active"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

type Subscription struct {
	AccountID              string             `db:"account_id"`
	ProviderCustomerID     string             `db:"provider_customer_id"`
	ProviderSubscriptionID string             `db:"provider_subscription_id"`
	Status                 SubscriptionStatus `db:"status"`
	Plan                   string             `db:"plan"`
	PriceRef               string             `db:"price_ref"`
	PeriodEnd              *time.Time         `db:"period_end"`
	EventAt                time.Time          `db:"event_at"`
	UpdatedAt              time.Time          `db:"updated_at"`
}

type ProcessedEvent struct {
	ProviderEventID string    `db:"provider_event_id"`
	Provider        string    `db:"provider"`
	EventType       string    `db:"event_type"`
	ProcessedAt     time.Time `db:"processed_at"`
}

type Entitlement struct {
	AccountID  string
	Status     SubscriptionStatus
	Plan       string
	PeriodEnd  *time.Time
	Premium    bool
	GraceUntil *time.Time
}

// AuditMismatch reports an account whose transaction deltas no longer sum to
// its stored balance.
type AuditMismatch struct {
	AccountID string
	Stacks    int64
	DeltaSum  int64
}

// WebhookOutcome is how an accepted webhook delivery was handled.
type WebhookOutcome string

const (
	OutcomeProcessed WebhookOutcome = "processed"
	OutcomeDuplicate WebhookOutcome = "duplicate"
	OutcomeIgnored   WebhookOutcome = "ignored"
)
