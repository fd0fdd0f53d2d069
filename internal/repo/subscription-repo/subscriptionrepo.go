package subscriptionrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
)

const (
	selectColumns = `account_id, provider_customer_id, provider_subscription_id, status, plan, price_ref, period_end, event_at, updated_at`

	findByAccountQuery = `
		SELECT ` + selectColumns + `
		FROM subscriptions
		WHERE account_id = $1
	`
	findByCustomerQuery = `
		SELECT ` + selectColumns + `
		FROM subscriptions
		WHERE provider_customer_id = $1
		ORDER BY event_at DESC
		LIMIT 1
	`
	// The WHERE clause drops events older than the stored state so
	// out-of-order deliveries cannot roll the status back.
	upsertQuery = `
		INSERT INTO subscriptions (account_id, provider_customer_id, provider_subscription_id, status, plan, price_ref, period_end, event_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			provider_customer_id = EXCLUDED.provider_customer_id,
			provider_subscription_id = EXCLUDED.provider_subscription_id,
			status = EXCLUDED.status,
			plan = EXCLUDED.plan,
			price_ref = EXCLUDED.price_ref,
			period_end = EXCLUDED.period_end,
			event_at = EXCLUDED.event_at,
			updated_at = NOW()
		WHERE subscriptions.event_at <= EXCLUDED.event_at
	`
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) Find(ctx context.Context, accountID string) (*domain.Subscription, error) {
	sub, err := r.scanOne(r.db.QueryRow(ctx, findByAccountQuery, accountID))
	if err != nil {
		zap.L().Error("failed to get subscription", zap.String("accountID", accountID), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

func (r *Repository) FindByCustomer(ctx context.Context, customerID string) (*domain.Subscription, error) {
	sub, err := r.scanOne(r.db.QueryRow(ctx, findByCustomerQuery, customerID))
	if err != nil {
		zap.L().Error("failed to get subscription by customer", zap.String("customerID", customerID), zap.Error(err))
		return nil, err
	}
	return sub, nil
}

// Upsert stores sub unless the stored row was written by a newer event.
// applied reports whether the row changed.
func (r *Repository) Upsert(ctx context.Context, sub *domain.Subscription) (bool, error) {
	tag, err := r.db.Exec(ctx, upsertQuery,
		sub.AccountID, sub.ProviderCustomerID, sub.ProviderSubscriptionID, string(sub.Status),
		sub.Plan, sub.PriceRef, sub.PeriodEnd, sub.EventAt)
	if err != nil {
		zap.L().Error("can't save subscription", zap.String("accountID", sub.AccountID), zap.Error(err))
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) scanOne(row pgx.Row) (*domain.Subscription, error) {
	var (
		sub    domain.Subscription
		status string
	)
	err := row.Scan(&sub.AccountID, &sub.ProviderCustomerID, &sub.ProviderSubscriptionID, &status,
		&sub.Plan, &sub.PriceRef, &sub.PeriodEnd, &sub.EventAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sub.Status = domain.SubscriptionStatus(status)
	return &sub, nil
}
