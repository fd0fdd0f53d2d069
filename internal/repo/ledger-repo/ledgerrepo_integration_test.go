package ledgerrepo

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
)

// newPostgresRepo connects to DATABASE_URI and migrates it. Transactions are
// append-only, so every test works on fresh account ids instead of cleaning up.
func newPostgresRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := os.Getenv("DATABASE_URI")
	if dsn == "" {
		t.Skip("DATABASE_URI is not set")
	}

	ctx := context.Background()
	cfg, err := pgxpool.ParseConfig(dsn)
	require.NoError(t, err)
	cfg.MaxConns = 32
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, pool.Ping(ctx))
	require.NoError(t, pg.RunMigrations(pool))

	return New(pg.New(pool), pg.NewTXManager(pool))
}

func newAccountID() string {
	return "it_" + uuid.NewString()
}

func TestPostgres_ConcurrentCreateBalanceGrantsOnce(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	accountID := newAccountID()

	const callers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := repo.CreateBalance(ctx, accountID, 20)
			assert.NoError(t, err)
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), created.Load())
	history, err := repo.History(ctx, accountID, 100, nil)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.OpDefaultGrant, history[0].Operation)

	mismatch, err := repo.AuditAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestPostgres_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	accountID := newAccountID()
	_, _, err := repo.CreateBalance(ctx, accountID, 20)
	require.NoError(t, err)

	const callers = 8
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		rejected  atomic.Int32
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Debit(ctx, accountID, 15, domain.OpSpend, "race")
			var insufficient *domain.InsufficientBalanceError
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.As(err, &insufficient):
				rejected.Add(1)
			default:
				t.Errorf("unexpected debit error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int32(callers-1), rejected.Load())
	balance, err := repo.FindBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), balance.Stacks)

	mismatch, err := repo.AuditAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}

func TestPostgres_ConcurrentCreditsWithSameRefApplyOnce(t *testing.T) {
	repo := newPostgresRepo(t)
	ctx := context.Background()
	accountID := newAccountID()
	_, _, err := repo.CreateBalance(ctx, accountID, 20)
	require.NoError(t, err)

	const callers = 8
	var (
		wg      sync.WaitGroup
		applied atomic.Int32
	)
	ref := "bonus:sub_" + accountID
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.Credit(ctx, accountID, 300, domain.OpSubscriptionBonus, "bonus", &ref)
			assert.NoError(t, err)
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), applied.Load())
	balance, err := repo.FindBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(320), balance.Stacks)

	mismatch, err := repo.AuditAccount(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, mismatch)
}
