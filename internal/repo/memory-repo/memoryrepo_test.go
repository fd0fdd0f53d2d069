package memoryrepo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/stackmeter/internal/domain"
)

func TestLedgerRepository_DebitAndCredit(t *testing.T) {
	ctx := context.Background()
	ledger := NewStore().Ledger()

	created, balance, err := ledger.CreateBalance(ctx, "acc_1", 20)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(20), balance.Stacks)

	created, _, err = ledger.CreateBalance(ctx, "acc_1", 20)
	require.NoError(t, err)
	assert.False(t, created)

	txn, err := ledger.Debit(ctx, "acc_1", 5, domain.OpSpend, "ask")
	require.NoError(t, err)
	assert.Equal(t, int64(-5), txn.Delta)
	assert.Equal(t, int64(15), txn.ResultingBalance)

	_, err = ledger.Debit(ctx, "acc_1", 20, domain.OpSpend, "too much")
	var insufficient *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(15), insufficient.Available)
	assert.Equal(t, int64(20), insufficient.Required)

	ref := "evt_1"
	stacks, applied, err := ledger.Credit(ctx, "acc_1", 300, domain.OpSubscriptionBonus, "bonus", &ref)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(315), stacks)

	stacks, applied, err = ledger.Credit(ctx, "acc_1", 300, domain.OpSubscriptionBonus, "bonus", &ref)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, int64(315), stacks)

	_, _, err = ledger.Credit(ctx, "missing", 1, domain.OpGrant, "grant", nil)
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)

	mismatch, err := ledger.AuditAccount(ctx, "acc_1")
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestLedgerRepository_History(t *testing.T) {
	ctx := context.Background()
	ledger := NewStore().Ledger()
	_, _, err := ledger.CreateBalance(ctx, "acc_1", 20)
	require.NoError(t, err)
	_, _, err = ledger.CreateBalance(ctx, "acc_2", 20)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := ledger.Debit(ctx, "acc_1", 1, domain.OpSpend, "step")
		require.NoError(t, err)
	}

	page, err := ledger.History(ctx, "acc_1", 2, nil)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(17), page[0].ResultingBalance)
	assert.Equal(t, int64(18), page[1].ResultingBalance)

	page, err = ledger.History(ctx, "acc_1", 10, &page[1].ID)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, int64(19), page[0].ResultingBalance)
	assert.Equal(t, domain.OpDefaultGrant, page[1].Operation)
}

func TestLedgerRepository_RecentlyUpdatedAccountsPages(t *testing.T) {
	ctx := context.Background()
	ledger := NewStore().Ledger()
	since := time.Now().Add(-time.Minute)
	for _, id := range []string{"acc_c", "acc_a", "acc_b"} {
		_, _, err := ledger.CreateBalance(ctx, id, 20)
		require.NoError(t, err)
	}

	page, err := ledger.RecentlyUpdatedAccounts(ctx, since, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"acc_a", "acc_b"}, page)

	page, err = ledger.RecentlyUpdatedAccounts(ctx, since, "acc_b", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"acc_c"}, page)

	page, err = ledger.RecentlyUpdatedAccounts(ctx, time.Now().Add(time.Minute), "", 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTxManager_RollbackRestoresState(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	ledger, events := store.Ledger(), store.Events()
	_, _, err := ledger.CreateBalance(ctx, "acc_1", 20)
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.TxManager().Begin(ctx, func(ctx context.Context) error {
		isNew, err := events.MarkProcessed(ctx, "stripe", "evt_1", "invoice.paid")
		require.NoError(t, err)
		require.True(t, isNew)
		_, _, err = ledger.Credit(ctx, "acc_1", 300, domain.OpSubscriptionBonus, "bonus", nil)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	processed, err := events.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, processed)
	balance, err := ledger.FindBalance(ctx, "acc_1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), balance.Stacks)

	history, err := ledger.History(ctx, "acc_1", 10, nil)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestTxManager_NestedFailureKeepsOuterWork(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	ledger := store.Ledger()
	_, _, err := ledger.CreateBalance(ctx, "acc_1", 20)
	require.NoError(t, err)

	err = store.TxManager().Begin(ctx, func(ctx context.Context) error {
		if _, _, err := ledger.Credit(ctx, "acc_1", 10, domain.OpGrant, "outer", nil); err != nil {
			return err
		}
		nestedErr := store.TxManager().Begin(ctx, func(ctx context.Context) error {
			_, _, _ = ledger.Credit(ctx, "acc_1", 5, domain.OpGrant, "inner", nil)
			return errors.New("inner failed")
		})
		assert.Error(t, nestedErr)
		return nil
	})
	require.NoError(t, err)

	balance, err := ledger.FindBalance(ctx, "acc_1")
	require.NoError(t, err)
	assert.Equal(t, int64(30), balance.Stacks)
}

func TestSubscriptionRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	subs := NewStore().Subscriptions()
	now := time.Now()

	applied, err := subs.Upsert(ctx, &domain.Subscription{AccountID: "acc_1", ProviderCustomerID: "cus_1", Status: domain.StatusActive, EventAt: now})
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = subs.Upsert(ctx, &domain.Subscription{AccountID: "acc_1", ProviderCustomerID: "cus_1", Status: domain.StatusCanceled, EventAt: now.Add(-time.Minute)})
	require.NoError(t, err)
	assert.False(t, applied)

	sub, err := subs.FindByCustomer(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, sub.Status)

	missing, err := subs.Find(ctx, "acc_2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEventRepository_MarkAndPrune(t *testing.T) {
	ctx := context.Background()
	events := NewStore().Events()

	isNew, err := events.MarkProcessed(ctx, "svix", "msg_1", "user.created")
	require.NoError(t, err)
	assert.True(t, isNew)

	isNew, err = events.MarkProcessed(ctx, "svix", "msg_1", "user.created")
	require.NoError(t, err)
	assert.False(t, isNew)

	deleted, err := events.PruneBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}
