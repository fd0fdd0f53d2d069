package memoryrepo

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
)

// Store keeps the whole ledger in process memory. Every operation runs under
// one store-wide lock, and a transaction holds that lock until it finishes.
type Store struct {
	mu    sync.Mutex
	state state
}

type state struct {
	balances      map[string]domain.Balance
	transactions  []domain.Transaction
	refs          map[string]struct{}
	subscriptions map[string]domain.Subscription
	events        map[string]domain.ProcessedEvent
}

func NewStore() *Store {
	return &Store{
		state: state{
			balances:      make(map[string]domain.Balance),
			refs:          make(map[string]struct{}),
			subscriptions: make(map[string]domain.Subscription),
			events:        make(map[string]domain.ProcessedEvent),
		},
	}
}

func (st state) clone() state {
	c := state{
		balances:      make(map[string]domain.Balance, len(st.balances)),
		transactions:  st.transactions[:len(st.transactions):len(st.transactions)],
		refs:          make(map[string]struct{}, len(st.refs)),
		subscriptions: make(map[string]domain.Subscription, len(st.subscriptions)),
		events:        make(map[string]domain.ProcessedEvent, len(st.events)),
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	for k, v := range st.refs {
		c.refs[k] = v
	}
	for k, v := range st.subscriptions {
		c.subscriptions[k] = v
	}
	for k, v := range st.events {
		c.events[k] = v
	}
	return c
}

type lockedKey struct{}

// run executes fn with the store lock held, reusing the lock when ctx belongs
// to an open transaction.
func (s *Store) run(ctx context.Context, fn func()) {
	if ctx.Value(lockedKey{}) != nil {
		fn()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

type TxManager struct {
	store *Store
}

func (s *Store) TxManager() *TxManager {
	return &TxManager{store: s}
}

// Begin runs fn while holding the store lock. State is restored to the
// snapshot taken at the start when fn fails; nested calls behave like
// savepoints.
func (m *TxManager) Begin(ctx context.Context, fn pg.TransactionalFn) error {
	s := m.store
	if ctx.Value(lockedKey{}) == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		ctx = context.WithValue(ctx, lockedKey{}, struct{}{})
	}

	snapshot := s.state.clone()
	restore := true
	defer func() {
		if restore {
			s.state = snapshot
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	restore = false
	return nil
}

func refKey(accountID, externalRef string) string {
	return accountID + "\x00" + externalRef
}

type LedgerRepository struct {
	store *Store
}

func (s *Store) Ledger() *LedgerRepository {
	return &LedgerRepository{store: s}
}

func (r *LedgerRepository) FindBalance(ctx context.Context, accountID string) (balance *domain.Balance, err error) {
	r.store.run(ctx, func() {
		if b, ok := r.store.state.balances[accountID]; ok {
			balance = &b
		}
	})
	return balance, nil
}

func (r *LedgerRepository) CreateBalance(ctx context.Context, accountID string, grant int64) (created bool, balance *domain.Balance, err error) {
	r.store.run(ctx, func() {
		st := &r.store.state
		if _, ok := st.balances[accountID]; ok {
			return
		}
		b := domain.Balance{AccountID: accountID, Stacks: grant, UpdatedAt: time.Now().UTC()}
		st.balances[accountID] = b
		r.appendLocked(accountID, grant, grant, domain.OpDefaultGrant, "Welcome grant", nil)
		created, balance = true, &b
	})
	return created, balance, nil
}

func (r *LedgerRepository) Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (txn *domain.Transaction, err error) {
	r.store.run(ctx, func() {
		st := &r.store.state
		b, ok := st.balances[accountID]
		if !ok {
			err = domain.ErrAccountNotFound
			return
		}
		if b.Stacks < amount {
			err = &domain.InsufficientBalanceError{Available: b.Stacks, Required: amount}
			return
		}
		b.Stacks -= amount
		b.UpdatedAt = time.Now().UTC()
		st.balances[accountID] = b
		txn = r.appendLocked(accountID, -amount, b.Stacks, op, description, nil)
	})
	return txn, err
}

func (r *LedgerRepository) Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (stacks int64, applied bool, err error) {
	r.store.run(ctx, func() {
		st := &r.store.state
		b, ok := st.balances[accountID]
		if !ok {
			err = domain.ErrAccountNotFound
			return
		}
		if externalRef != nil {
			if _, seen := st.refs[refKey(accountID, *externalRef)]; seen {
				stacks = b.Stacks
				return
			}
		}
		b.Stacks += amount
		b.UpdatedAt = time.Now().UTC()
		st.balances[accountID] = b
		r.appendLocked(accountID, amount, b.Stacks, op, description, externalRef)
		stacks, applied = b.Stacks, true
	})
	return stacks, applied, err
}

func (r *LedgerRepository) AppendAudit(ctx context.Context, accountID string, op domain.Operation, description string, externalRef *string) (applied bool, err error) {
	r.store.run(ctx, func() {
		st := &r.store.state
		b, ok := st.balances[accountID]
		if !ok {
			err = domain.ErrAccountNotFound
			return
		}
		if externalRef != nil {
			if _, seen := st.refs[refKey(accountID, *externalRef)]; seen {
				return
			}
		}
		r.appendLocked(accountID, 0, b.Stacks, op, description, externalRef)
		applied = true
	})
	return applied, err
}

// LockAccount only checks existence; the store lock already serialises the
// enclosing transaction.
func (r *LedgerRepository) LockAccount(ctx context.Context, accountID string) (balance *domain.Balance, err error) {
	r.store.run(ctx, func() {
		b, ok := r.store.state.balances[accountID]
		if !ok {
			err = domain.ErrAccountNotFound
			return
		}
		balance = &b
	})
	return balance, err
}

func (r *LedgerRepository) History(ctx context.Context, accountID string, limit int, before *uuid.UUID) (history []domain.Transaction, err error) {
	r.store.run(ctx, func() {
		txns := r.store.state.transactions
		for i := len(txns) - 1; i >= 0 && len(history) < limit; i-- {
			txn := txns[i]
			if txn.AccountID != accountID {
				continue
			}
			if before != nil && bytes.Compare(txn.ID[:], before[:]) >= 0 {
				continue
			}
			history = append(history, txn)
		}
	})
	return history, nil
}

func (r *LedgerRepository) RecentlyUpdatedAccounts(ctx context.Context, since time.Time, after string, limit int) (accounts []string, err error) {
	r.store.run(ctx, func() {
		var recent []string
		for id, b := range r.store.state.balances {
			if id > after && !b.UpdatedAt.Before(since) {
				recent = append(recent, id)
			}
		}
		sort.Strings(recent)
		if len(recent) > limit {
			recent = recent[:limit]
		}
		accounts = recent
	})
	return accounts, nil
}

func (r *LedgerRepository) AuditAccount(ctx context.Context, accountID string) (mismatch *domain.AuditMismatch, err error) {
	r.store.run(ctx, func() {
		b, ok := r.store.state.balances[accountID]
		if !ok {
			err = domain.ErrAccountNotFound
			return
		}
		var sum int64
		for _, txn := range r.store.state.transactions {
			if txn.AccountID == accountID {
				sum += txn.Delta
			}
		}
		if sum != b.Stacks {
			mismatch = &domain.AuditMismatch{AccountID: accountID, Stacks: b.Stacks, DeltaSum: sum}
		}
	})
	return mismatch, err
}

func (r *LedgerRepository) appendLocked(accountID string, delta, resulting int64, op domain.Operation, description string, externalRef *string) *domain.Transaction {
	st := &r.store.state
	txn := domain.Transaction{
		ID:               uuid.Must(uuid.NewV7()),
		AccountID:        accountID,
		Delta:            delta,
		ResultingBalance: resulting,
		Operation:        op,
		Description:      description,
		ExternalRef:      externalRef,
		CreatedAt:        time.Now().UTC(),
	}
	st.transactions = append(st.transactions, txn)
	if externalRef != nil {
		st.refs[refKey(accountID, *externalRef)] = struct{}{}
	}
	return &txn
}

type SubscriptionRepository struct {
	store *Store
}

func (s *Store) Subscriptions() *SubscriptionRepository {
	return &SubscriptionRepository{store: s}
}

func (r *SubscriptionRepository) Find(ctx context.Context, accountID string) (sub *domain.Subscription, err error) {
	r.store.run(ctx, func() {
		if s, ok := r.store.state.subscriptions[accountID]; ok {
			sub = &s
		}
	})
	return sub, nil
}

func (r *SubscriptionRepository) FindByCustomer(ctx context.Context, customerID string) (sub *domain.Subscription, err error) {
	r.store.run(ctx, func() {
		for _, s := range r.store.state.subscriptions {
			if s.ProviderCustomerID != customerID {
				continue
			}
			if sub == nil || s.EventAt.After(sub.EventAt) {
				s := s
				sub = &s
			}
		}
	})
	return sub, nil
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *domain.Subscription) (applied bool, err error) {
	r.store.run(ctx, func() {
		if stored, ok := r.store.state.subscriptions[sub.AccountID]; ok && stored.EventAt.After(sub.EventAt) {
			return
		}
		s := *sub
		s.UpdatedAt = time.Now().UTC()
		r.store.state.subscriptions[sub.AccountID] = s
		applied = true
	})
	return applied, nil
}

type EventRepository struct {
	store *Store
}

func (s *Store) Events() *EventRepository {
	return &EventRepository{store: s}
}

func (r *EventRepository) IsProcessed(ctx context.Context, eventID string) (processed bool, err error) {
	r.store.run(ctx, func() {
		_, processed = r.store.state.events[eventID]
	})
	return processed, nil
}

func (r *EventRepository) MarkProcessed(ctx context.Context, provider, eventID, eventType string) (isNew bool, err error) {
	r.store.run(ctx, func() {
		if _, ok := r.store.state.events[eventID]; ok {
			return
		}
		r.store.state.events[eventID] = domain.ProcessedEvent{
			ProviderEventID: eventID,
			Provider:        provider,
			EventType:       eventType,
			ProcessedAt:     time.Now().UTC(),
		}
		isNew = true
	})
	return isNew, nil
}

func (r *EventRepository) PruneBefore(ctx context.Context, cutoff time.Time) (deleted int64, err error) {
	r.store.run(ctx, func() {
		for id, evt := range r.store.state.events {
			if evt.ProcessedAt.Before(cutoff) {
				delete(r.store.state.events, id)
				deleted++
			}
		}
	})
	return deleted, nil
}
