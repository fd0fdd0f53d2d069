package entitlementservice

//go:generate mockgen -source=entitlementservice.go -destination=mock_entitlementservice.go -package=entitlementservice

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
)

type Repo interface {
	Find(ctx context.Context, accountID string) (*domain.Subscription, error)
}

// Decision is the outcome of applying an incoming subscription state to the
// stored one. Activated marks entry into active from no live subscription,
// which is when the one-time bonus is owed.
//
// A subscription is only recorded once it has been active. Dunning or
// cancellation reported before that leaves the account at none, so the first
// active state still activates.
type Decision struct {
	Apply     bool
	Activated bool
	Reason    string
}

const (
	reasonStale       = "event is older than the stored state"
	reasonResurrect   = "canceled subscription cannot change state"
	reasonSuperseded  = "event belongs to a superseded subscription"
	reasonIllegalMove = "transition is not allowed"
)

var transitions = map[domain.SubscriptionStatus]map[domain.SubscriptionStatus]bool{
	domain.StatusNone: {
		domain.StatusActive: true,
	},
	domain.StatusActive: {
		domain.StatusActive:   true,
		domain.StatusPastDue:  true,
		domain.StatusCanceled: true,
	},
	domain.StatusPastDue: {
		domain.StatusActive:   true,
		domain.StatusPastDue:  true,
		domain.StatusCanceled: true,
	},
	domain.StatusCanceled: {
		domain.StatusCanceled: true,
	},
}

// Decide applies the subscription state machine. current is nil when the
// account has no stored subscription.
func Decide(current *domain.Subscription, incoming domain.Subscription) Decision {
	if current == nil || current.Status == domain.StatusNone {
		return decideFrom(domain.StatusNone, incoming.Status)
	}
	if incoming.EventAt.Before(current.EventAt) {
		return Decision{Reason: reasonStale}
	}

	if !sameSubscription(current, &incoming) {
		switch {
		case incoming.Status == domain.StatusActive:
			return Decision{Apply: true, Activated: true}
		case current.Status == domain.StatusCanceled:
			return decideFrom(domain.StatusNone, incoming.Status)
		default:
			return Decision{Reason: reasonSuperseded}
		}
	}

	if current.Status == domain.StatusCanceled && incoming.Status != domain.StatusCanceled {
		return Decision{Reason: reasonResurrect}
	}
	d := decideFrom(current.Status, incoming.Status)
	d.Activated = false
	return d
}

func decideFrom(from, to domain.SubscriptionStatus) Decision {
	if !transitions[from][to] {
		return Decision{Reason: reasonIllegalMove}
	}
	return Decision{Apply: true, Activated: from == domain.StatusNone && to == domain.StatusActive}
}

func sameSubscription(a, b *domain.Subscription) bool {
	if a.ProviderSubscriptionID == "" || b.ProviderSubscriptionID == "" {
		return true
	}
	return a.ProviderSubscriptionID == b.ProviderSubscriptionID
}

type Service struct {
	repo  Repo
	grace time.Duration
	now   func() time.Time
}

func New(repo Repo, pastDueGrace time.Duration) *Service {
	return &Service{
		repo:  repo,
		grace: pastDueGrace,
		now:   time.Now,
	}
}

// Entitlement reports the account's subscription state and whether premium
// features are unlocked right now. A past_due subscription keeps access until
// the paid period ends plus the grace window.
func (s *Service) Entitlement(ctx context.Context, accountID string) (*domain.Entitlement, error) {
	sub, err := s.repo.Find(ctx, accountID)
	if err != nil {
		zap.L().Error("failed to get subscription", zap.String("accountID", accountID), zap.Error(err))
		return nil, err
	}
	ent := &domain.Entitlement{AccountID: accountID, Status: domain.StatusNone}
	if sub == nil {
		return ent, nil
	}

	ent.Status = sub.Status
	ent.Plan = sub.Plan
	ent.PeriodEnd = sub.PeriodEnd
	switch sub.Status {
	case domain.StatusActive:
		ent.Premium = true
	case domain.StatusPastDue:
		from := sub.EventAt
		if sub.PeriodEnd != nil {
			from = *sub.PeriodEnd
		}
		graceUntil := from.Add(s.grace)
		ent.GraceUntil = &graceUntil
		ent.Premium = s.now().Before(graceUntil)
	}
	return ent, nil
}
