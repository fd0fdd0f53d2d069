package clients

import (
	"context"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/subscription"
)

// StripeClient reads subscriptions and checkout line items with a
// per-client secret key instead of the package-level stripe.Key.
type StripeClient struct {
	subscriptions *subscription.Client
	sessions      *checkoutsession.Client
}

func NewStripeClient(secretKey string) *StripeClient {
	backend := stripe.GetBackend(stripe.APIBackend)
	return &StripeClient{
		subscriptions: &subscription.Client{B: backend, Key: secretKey},
		sessions:      &checkoutsession.Client{B: backend, Key: secretKey},
	}
}

func (c *StripeClient) GetSubscription(ctx context.Context, id string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	return c.subscriptions.Get(id, params)
}

func (c *StripeClient) ListLineItems(ctx context.Context, sessionID string) ([]*stripe.LineItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx

	var items []*stripe.LineItem
	iter := c.sessions.ListLineItems(params)
	for iter.Next() {
		items = append(items, iter.LineItem())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
