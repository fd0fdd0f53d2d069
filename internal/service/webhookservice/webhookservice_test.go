package webhookservice

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	svix "github.com/svix/svix-webhooks/go"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
	memoryrepo "github.com/GlebRadaev/stackmeter/internal/repo/memory-repo"
	"github.com/GlebRadaev/stackmeter/internal/service/ledgerservice"
)

const (
	billingSecret  = "whsec_test_billing_secret"
	identitySecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"
)

type WebhookSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memoryrepo.Store
	ledger  *ledgerservice.Service
	billing *MockBillingClient
	service *Service
	now     time.Time
}

func TestWebhookService(t *testing.T) {
	suite.Run(t, &WebhookSuite{})
}

func (s *WebhookSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memoryrepo.NewStore()
	s.ledger = ledgerservice.New(s.store.Ledger(), 20)
	s.billing = NewMockBillingClient(gomock.NewController(s.T()))
	s.now = time.Now().Truncate(time.Second)

	service, err := New(Config{
		BillingSecret:     billingSecret,
		IdentitySecret:    identitySecret,
		Tolerance:         5 * time.Minute,
		SubscriptionBonus: 300,
	}, s.ledger, s.store.Subscriptions(), s.store.Events(), s.store.TxManager(), s.billing)
	s.Require().NoError(err)
	s.service = service
}

func (s *WebhookSuite) sign(payload []byte, at time.Time) string {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    billingSecret,
		Timestamp: at,
	})
	return signed.Header
}

func (s *WebhookSuite) deliver(payload []byte) (domain.WebhookOutcome, error) {
	return s.service.HandleBilling(s.ctx, payload, s.sign(payload, time.Now()))
}

func billingEvent(id, eventType string, created time.Time, object string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": "2025-03-31.basil",
		"created": %d,
		"type": %q,
		"data": {"object": %s}
	}`, id, created.Unix(), eventType, object))
}

func checkoutSubscription(accountID, subscriptionID string) string {
	return fmt.Sprintf(`{
		"id": "cs_%[2]s",
		"object": "checkout.session",
		"mode": "subscription",
		"payment_status": "paid",
		"client_reference_id": %[1]q,
		"customer": "cus_1",
		"subscription": %[2]q,
		"metadata": {}
	}`, accountID, subscriptionID)
}

func subscriptionObject(id, status string, periodEnd time.Time, metadata string) string {
	return fmt.Sprintf(`{
		"id": %q,
		"object": "subscription",
		"customer": "cus_1",
		"status": %q,
		"metadata": %s,
		"items": {"object": "list", "data": [{
			"id": "si_1",
			"object": "subscription_item",
			"current_period_end": %d,
			"price": {"id": "price_pro", "object": "price", "nickname": "pro", "metadata": {}}
		}]}
	}`, id, status, metadata, periodEnd.Unix())
}

func (s *WebhookSuite) activeSubscription(id string) *stripe.Subscription {
	return &stripe.Subscription{
		ID:       id,
		Status:   stripe.SubscriptionStatusActive,
		Customer: &stripe.Customer{ID: "cus_1"},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				ID:               "si_1",
				CurrentPeriodEnd: s.now.Add(30 * 24 * time.Hour).Unix(),
				Price:            &stripe.Price{ID: "price_pro", Nickname: "pro"},
			}},
		},
	}
}

func (s *WebhookSuite) stacks(accountID string) int64 {
	balance, err := s.store.Ledger().FindBalance(s.ctx, accountID)
	s.Require().NoError(err)
	s.Require().NotNil(balance)
	return balance.Stacks
}

func (s *WebhookSuite) history(accountID string) []domain.Transaction {
	history, err := s.store.Ledger().History(s.ctx, accountID, 100, nil)
	s.Require().NoError(err)
	return history
}

func (s *WebhookSuite) TestSpendThenSubscribeThenReplay() {
	balance, err := s.ledger.GetOrCreateBalance(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Equal(int64(20), balance.Stacks)

	txn, err := s.ledger.Debit(s.ctx, "acc_1", 5, domain.OpSpend, "Ask a question")
	s.Require().NoError(err)
	s.Equal(int64(15), txn.ResultingBalance)

	_, err = s.ledger.Debit(s.ctx, "acc_1", 20, domain.OpSpend, "Solve an image")
	var insufficient *domain.InsufficientBalanceError
	s.Require().ErrorAs(err, &insufficient)
	s.Equal(int64(15), insufficient.Available)
	s.Equal(int64(20), insufficient.Required)
	s.Equal(int64(15), s.stacks("acc_1"))

	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	payload := billingEvent("evt_checkout_1", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1"))

	outcome, err := s.deliver(payload)
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(315), s.stacks("acc_1"))

	outcome, err = s.deliver(payload)
	s.Require().NoError(err)
	s.Equal(domain.OutcomeDuplicate, outcome)
	s.Equal(int64(315), s.stacks("acc_1"))

	history := s.history("acc_1")
	s.Require().Len(history, 3)
	s.Equal(domain.OpSubscriptionBonus, history[0].Operation)
	s.Require().NotNil(history[0].ExternalRef)
	s.Equal("bonus:sub_1", *history[0].ExternalRef)

	sub, err := s.store.Subscriptions().Find(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Equal(domain.StatusActive, sub.Status)
	s.Equal("pro", sub.Plan)
	s.Equal("cus_1", sub.ProviderCustomerID)

	mismatch, err := s.store.Ledger().AuditAccount(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Nil(mismatch)
}

func (s *WebhookSuite) TestFollowUpSubscriptionEventDoesNotRepeatBonus() {
	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	_, err := s.deliver(billingEvent("evt_checkout", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1")))
	s.Require().NoError(err)
	s.Equal(int64(320), s.stacks("acc_1"))

	created := subscriptionObject("sub_1", "active", s.now.Add(720*time.Hour), `{"account_id": "acc_1"}`)
	outcome, err := s.deliver(billingEvent("evt_created", "customer.subscription.created", s.now, created))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(320), s.stacks("acc_1"))
}

func (s *WebhookSuite) TestRejectsBadSignature() {
	payload := billingEvent("evt_1", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1"))

	_, err := s.service.HandleBilling(s.ctx, payload, "t=1,v1=deadbeef")
	s.ErrorIs(err, domain.ErrSignatureVerification)

	_, err = s.service.HandleBilling(s.ctx, payload, s.sign(payload, time.Now().Add(-10*time.Minute)))
	s.ErrorIs(err, domain.ErrSignatureVerification)

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '
	_, err = s.service.HandleBilling(s.ctx, tampered, s.sign(payload, time.Now()))
	s.ErrorIs(err, domain.ErrSignatureVerification)

	processed, err := s.store.Events().IsProcessed(s.ctx, "evt_1")
	s.Require().NoError(err)
	s.False(processed)
	balance, err := s.store.Ledger().FindBalance(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Nil(balance)
}

func (s *WebhookSuite) TestOneTimePurchaseCreditsLineItems() {
	session := `{
		"id": "cs_pay",
		"object": "checkout.session",
		"mode": "payment",
		"payment_status": "paid",
		"client_reference_id": "acc_1",
		"metadata": {}
	}`
	s.billing.EXPECT().ListLineItems(gomock.Any(), "cs_pay").Return([]*stripe.LineItem{
		{ID: "li_1", Quantity: 2, Description: "Stack pack", Price: &stripe.Price{ID: "price_pack", Metadata: map[string]string{"stacks": "100"}}},
		{ID: "li_2", Quantity: 1, Description: "Sticker", Price: &stripe.Price{ID: "price_sticker"}},
	}, nil)

	outcome, err := s.deliver(billingEvent("evt_pay", "checkout.session.completed", s.now, session))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(220), s.stacks("acc_1"))

	history := s.history("acc_1")
	s.Require().Len(history, 2)
	s.Equal(domain.OpCreditPurchase, history[0].Operation)
	s.Equal(int64(200), history[0].Delta)
	s.Equal("evt_pay:li_1", *history[0].ExternalRef)
}

func (s *WebhookSuite) TestOverflowingLineItemsAreSkipped() {
	session := `{
		"id": "cs_big",
		"object": "checkout.session",
		"mode": "payment",
		"payment_status": "paid",
		"client_reference_id": "acc_1",
		"metadata": {}
	}`
	huge := strconv.FormatInt(math.MaxInt64/2+1, 10)
	s.billing.EXPECT().ListLineItems(gomock.Any(), "cs_big").Return([]*stripe.LineItem{
		{ID: "li_wrap", Quantity: 2, Price: &stripe.Price{ID: "price_huge", Metadata: map[string]string{"stacks": huge}}},
		{ID: "li_ok", Quantity: 1, Price: &stripe.Price{ID: "price_pack", Metadata: map[string]string{"stacks": "100"}}},
	}, nil)

	outcome, err := s.deliver(billingEvent("evt_big", "checkout.session.completed", s.now, session))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(120), s.stacks("acc_1"))

	for _, txn := range s.history("acc_1") {
		s.GreaterOrEqual(txn.Delta, int64(0))
		s.GreaterOrEqual(txn.ResultingBalance, int64(0))
	}
}

func (s *WebhookSuite) TestUnpaidCheckoutIsIgnored() {
	session := `{"id": "cs_pay", "object": "checkout.session", "mode": "payment", "payment_status": "unpaid", "client_reference_id": "acc_1"}`
	outcome, err := s.deliver(billingEvent("evt_unpaid", "checkout.session.completed", s.now, session))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)

	processed, err := s.store.Events().IsProcessed(s.ctx, "evt_unpaid")
	s.Require().NoError(err)
	s.True(processed)
}

func (s *WebhookSuite) TestOutOfOrderSubscriptionUpdates() {
	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	_, err := s.deliver(billingEvent("evt_checkout", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1")))
	s.Require().NoError(err)

	meta := `{"account_id": "acc_1"}`
	pastDue := subscriptionObject("sub_1", "past_due", s.now.Add(time.Hour), meta)
	active := subscriptionObject("sub_1", "active", s.now.Add(time.Hour), meta)

	_, err = s.deliver(billingEvent("evt_new", "customer.subscription.updated", s.now.Add(2*time.Minute), pastDue))
	s.Require().NoError(err)
	outcome, err := s.deliver(billingEvent("evt_old", "customer.subscription.updated", s.now.Add(time.Minute), active))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)

	sub, err := s.store.Subscriptions().Find(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPastDue, sub.Status)
	s.Equal(int64(320), s.stacks("acc_1"))
}

func (s *WebhookSuite) TestDunningBeforeFirstActivationKeepsBonus() {
	meta := `{"account_id": "user_p"}`
	pastDue := subscriptionObject("sub_p", "past_due", s.now.Add(time.Hour), meta)
	active := subscriptionObject("sub_p", "active", s.now.Add(time.Hour), meta)

	outcome, err := s.deliver(billingEvent("evt_past_due", "customer.subscription.updated", s.now, pastDue))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)

	sub, err := s.store.Subscriptions().Find(s.ctx, "user_p")
	s.Require().NoError(err)
	s.Nil(sub)

	outcome, err = s.deliver(billingEvent("evt_active", "customer.subscription.updated", s.now.Add(time.Minute), active))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(320), s.stacks("user_p"))

	sub, err = s.store.Subscriptions().Find(s.ctx, "user_p")
	s.Require().NoError(err)
	s.Equal(domain.StatusActive, sub.Status)

	history := s.history("user_p")
	s.Require().NotEmpty(history)
	s.Equal(domain.OpSubscriptionBonus, history[0].Operation)
	s.Equal("bonus:sub_p", *history[0].ExternalRef)
}

func (s *WebhookSuite) TestBonusIsPaidOncePerSubscription() {
	meta := `{"account_id": "acc_1"}`
	active := subscriptionObject("sub_1", "active", s.now.Add(time.Hour), meta)

	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	_, err := s.deliver(billingEvent("evt_checkout", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1")))
	s.Require().NoError(err)
	s.Require().Equal(int64(320), s.stacks("acc_1"))

	// A reset stored state makes the next active event look like a first activation.
	_, err = s.store.Subscriptions().Upsert(s.ctx, &domain.Subscription{AccountID: "acc_1", Status: domain.StatusNone, EventAt: s.now})
	s.Require().NoError(err)
	outcome, err := s.deliver(billingEvent("evt_created", "customer.subscription.created", s.now.Add(time.Minute), active))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(320), s.stacks("acc_1"))
}

func (s *WebhookSuite) TestDeletionCancelsAndAudits() {
	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	_, err := s.deliver(billingEvent("evt_checkout", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1")))
	s.Require().NoError(err)

	deleted := subscriptionObject("sub_1", "canceled", s.now, `{}`)
	outcome, err := s.deliver(billingEvent("evt_deleted", "customer.subscription.deleted", s.now.Add(time.Minute), deleted))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)

	sub, err := s.store.Subscriptions().Find(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Equal(domain.StatusCanceled, sub.Status)

	history := s.history("acc_1")
	s.Equal(domain.OpSubscriptionCanceled, history[0].Operation)
	s.Equal(int64(0), history[0].Delta)
	s.Equal(int64(320), history[0].ResultingBalance)
	s.Equal(int64(320), s.stacks("acc_1"))

	reactivated := subscriptionObject("sub_1", "active", s.now, `{}`)
	outcome, err = s.deliver(billingEvent("evt_late", "customer.subscription.updated", s.now.Add(2*time.Minute), reactivated))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)
	s.Equal(int64(320), s.stacks("acc_1"))
}

func (s *WebhookSuite) TestPaymentFailedMarksPastDue() {
	s.billing.EXPECT().GetSubscription(gomock.Any(), "sub_1").Return(s.activeSubscription("sub_1"), nil)
	_, err := s.deliver(billingEvent("evt_checkout", "checkout.session.completed", s.now, checkoutSubscription("acc_1", "sub_1")))
	s.Require().NoError(err)

	inv := `{
		"id": "in_1",
		"object": "invoice",
		"customer": "cus_1",
		"parent": {"type": "subscription_details", "subscription_details": {"subscription": "sub_1", "metadata": {}}}
	}`
	outcome, err := s.deliver(billingEvent("evt_failed", "invoice.payment_failed", s.now.Add(time.Minute), inv))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)

	sub, err := s.store.Subscriptions().Find(s.ctx, "acc_1")
	s.Require().NoError(err)
	s.Equal(domain.StatusPastDue, sub.Status)
	s.Equal("pro", sub.Plan)

	history := s.history("acc_1")
	s.Equal(domain.OpPaymentFailed, history[0].Operation)
	s.Equal(int64(0), history[0].Delta)
}

func (s *WebhookSuite) TestPaymentIntentIsLogOnly() {
	_, err := s.ledger.GetOrCreateBalance(s.ctx, "acc_1")
	s.Require().NoError(err)

	pi := `{"id": "pi_1", "object": "payment_intent", "amount": 999, "currency": "usd", "metadata": {"account_id": "acc_1"}}`
	outcome, err := s.deliver(billingEvent("evt_pi", "payment_intent.succeeded", s.now, pi))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(20), s.stacks("acc_1"))

	history := s.history("acc_1")
	s.Equal(domain.OpPaymentLogged, history[0].Operation)
	s.Equal(int64(0), history[0].Delta)
}

func (s *WebhookSuite) TestUnknownAccountIsAcknowledged() {
	deleted := subscriptionObject("sub_9", "canceled", s.now, `{}`)
	outcome, err := s.deliver(billingEvent("evt_orphan", "customer.subscription.deleted", s.now, deleted))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)

	processed, err := s.store.Events().IsProcessed(s.ctx, "evt_orphan")
	s.Require().NoError(err)
	s.True(processed)
}

func (s *WebhookSuite) TestUnhandledTypeIsRecorded() {
	outcome, err := s.deliver(billingEvent("evt_other", "customer.created", s.now, `{"id": "cus_1", "object": "customer"}`))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeIgnored, outcome)

	outcome, err = s.deliver(billingEvent("evt_other", "customer.created", s.now, `{"id": "cus_1", "object": "customer"}`))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeDuplicate, outcome)
}

func (s *WebhookSuite) identityHeaders(msgID string, payload []byte) http.Header {
	wh, err := svix.NewWebhook(identitySecret)
	s.Require().NoError(err)
	at := time.Now()
	signature, err := wh.Sign(msgID, at, payload)
	s.Require().NoError(err)

	headers := http.Header{}
	headers.Set("svix-id", msgID)
	headers.Set("svix-timestamp", strconv.FormatInt(at.Unix(), 10))
	headers.Set("svix-signature", signature)
	return headers
}

func (s *WebhookSuite) TestIdentityUserCreatedProvisions() {
	payload := []byte(`{"type": "user.created", "object": "event", "data": {"id": "user_1"}}`)
	headers := s.identityHeaders("msg_1", payload)

	outcome, err := s.service.HandleIdentity(s.ctx, payload, headers)
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)
	s.Equal(int64(20), s.stacks("user_1"))

	outcome, err = s.service.HandleIdentity(s.ctx, payload, headers)
	s.Require().NoError(err)
	s.Equal(domain.OutcomeDuplicate, outcome)
	s.Len(s.history("user_1"), 1)
}

func (s *WebhookSuite) TestIdentitySessionCreatedIsLogged() {
	payload := []byte(`{"type": "session.created", "data": {"id": "sess_1", "user_id": "user_1"}}`)
	outcome, err := s.service.HandleIdentity(s.ctx, payload, s.identityHeaders("msg_2", payload))
	s.Require().NoError(err)
	s.Equal(domain.OutcomeProcessed, outcome)

	balance, err := s.store.Ledger().FindBalance(s.ctx, "user_1")
	s.Require().NoError(err)
	s.Nil(balance)
}

func (s *WebhookSuite) TestIdentityRejectsBadSignature() {
	payload := []byte(`{"type": "user.created", "data": {"id": "user_1"}}`)
	headers := s.identityHeaders("msg_3", payload)
	headers.Set("svix-signature", "v1,Zm9vYmFy")

	_, err := s.service.HandleIdentity(s.ctx, payload, headers)
	s.ErrorIs(err, domain.ErrSignatureVerification)
}

func TestHandleBilling_DatastoreFailureRollsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedgerService(ctrl)
	subs := NewMockSubscriptionRepo(ctrl)
	events := NewMockEventRepo(ctrl)
	txManager := pg.NewMockTXManager(ctrl)
	txManager.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()

	service, err := New(Config{BillingSecret: billingSecret, Tolerance: 5 * time.Minute, SubscriptionBonus: 300},
		ledger, subs, events, txManager, nil)
	require.NoError(t, err)

	pi := `{"id": "pi_1", "object": "payment_intent", "amount": 999, "currency": "usd", "metadata": {"account_id": "acc_1"}}`
	payload := billingEvent("evt_pi", "payment_intent.succeeded", time.Now(), pi)
	header := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: billingSecret, Timestamp: time.Now()}).Header

	dbErr := errors.New("connection reset")
	gomock.InOrder(
		events.EXPECT().IsProcessed(gomock.Any(), "evt_pi").Return(false, nil),
		events.EXPECT().MarkProcessed(gomock.Any(), ProviderBilling, "evt_pi", "payment_intent.succeeded").Return(true, nil),
		ledger.EXPECT().GetOrCreateBalance(gomock.Any(), "acc_1").Return(&domain.Balance{AccountID: "acc_1", Stacks: 20}, nil),
		ledger.EXPECT().AppendAudit(gomock.Any(), "acc_1", domain.OpPaymentLogged, gomock.Any(), gomock.Any()).Return(false, dbErr),
	)

	_, err = service.HandleBilling(context.Background(), payload, header)
	assert.ErrorIs(t, err, dbErr)
}

func TestHandleBilling_MissingSecret(t *testing.T) {
	service, err := New(Config{}, nil, nil, nil, nil, nil)
	require.NoError(t, err)

	_, err = service.HandleBilling(context.Background(), []byte(`{}`), "t=1,v1=abc")
	assert.ErrorIs(t, err, domain.ErrSignatureVerification)

	_, err = service.HandleIdentity(context.Background(), []byte(`{}`), http.Header{})
	assert.ErrorIs(t, err, domain.ErrSignatureVerification)
}

func TestMapStatus(t *testing.T) {
	tests := []struct {
		in     stripe.SubscriptionStatus
		out    domain.SubscriptionStatus
		mapped bool
	}{
		{stripe.SubscriptionStatusActive, domain.StatusActive, true},
		{stripe.SubscriptionStatusTrialing, domain.StatusActive, true},
		{stripe.SubscriptionStatusPastDue, domain.StatusPastDue, true},
		{stripe.SubscriptionStatusUnpaid, domain.StatusPastDue, true},
		{stripe.SubscriptionStatusPaused, domain.StatusPastDue, true},
		{stripe.SubscriptionStatusCanceled, domain.StatusCanceled, true},
		{stripe.SubscriptionStatusIncompleteExpired, domain.StatusCanceled, true},
		{stripe.SubscriptionStatusIncomplete, "", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			out, mapped := mapStatus(tt.in)
			assert.Equal(t, tt.out, out)
			assert.Equal(t, tt.mapped, mapped)
		})
	}
}

func TestItemStacks(t *testing.T) {
	price := func(stacks string) *stripe.Price {
		return &stripe.Price{ID: "price_1", Metadata: map[string]string{"stacks": stacks}}
	}
	tests := []struct {
		name    string
		item    *stripe.LineItem
		want    int64
		wantErr error
	}{
		{name: "Quantity multiplies", item: &stripe.LineItem{Quantity: 3, Price: price("100")}, want: 300},
		{name: "Missing quantity counts once", item: &stripe.LineItem{Price: price("50")}, want: 50},
		{name: "Largest exact product", item: &stripe.LineItem{Quantity: 1, Price: price(strconv.FormatInt(math.MaxInt64, 10))}, want: math.MaxInt64},
		{name: "Product overflows", item: &stripe.LineItem{Quantity: 2, Price: price(strconv.FormatInt(math.MaxInt64/2+1, 10))}, wantErr: errStacksOverflow},
		{name: "Large quantity overflows", item: &stripe.LineItem{Quantity: math.MaxInt64, Price: price("2")}, wantErr: errStacksOverflow},
		{name: "No metadata", item: &stripe.LineItem{Quantity: 1, Price: &stripe.Price{ID: "price_1"}}, wantErr: errNoStacksMetadata},
		{name: "Negative stacks", item: &stripe.LineItem{Quantity: 1, Price: price("-5")}, wantErr: errNoStacksMetadata},
		{name: "No price", item: &stripe.LineItem{Quantity: 1}, wantErr: errNoStacksMetadata},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := itemStacks(tt.item)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
