package ledgerrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/internal/pg"
)

const (
	insertAccountQuery = `
		INSERT INTO accounts (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING
	`
	insertBalanceQuery = `
		INSERT INTO balances (account_id, stacks, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (account_id) DO NOTHING
		RETURNING account_id, stacks, updated_at
	`
	selectBalanceQuery = `
		SELECT account_id, stacks, updated_at
		FROM balances
		WHERE account_id = $1
	`
	lockBalanceQuery = `
		SELECT account_id, stacks, updated_at
		FROM balances
		WHERE account_id = $1
		FOR UPDATE
	`
	debitQuery = `
		UPDATE balances
		SET stacks = stacks - $2, updated_at = NOW()
		WHERE account_id = $1 AND stacks >= $2
		RETURNING stacks
	`
	creditQuery = `
		UPDATE balances
		SET stacks = stacks + $2, updated_at = NOW()
		WHERE account_id = $1
		RETURNING stacks
	`
	externalRefExistsQuery = `
		SELECT EXISTS(SELECT 1 FROM transactions WHERE account_id = $1 AND external_ref = $2)
	`
	insertTransactionQuery = `
		INSERT INTO transactions (id, account_id, delta, resulting_balance, operation, description, external_ref, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	historyQuery = `
		SELECT id, account_id, delta, resulting_balance, operation, description, external_ref, created_at
		FROM transactions
		WHERE account_id = $1 AND ($2::uuid IS NULL OR id < $2::uuid)
		ORDER BY id DESC
		LIMIT $3
	`
	recentAccountsQuery = `
		SELECT account_id
		FROM balances
		WHERE updated_at >= $1 AND account_id > $2
		ORDER BY account_id
		LIMIT $3
	`
	auditAccountQuery = `
		SELECT b.stacks, COALESCE((SELECT SUM(t.delta) FROM transactions t WHERE t.account_id = b.account_id), 0)::bigint
		FROM balances b
		WHERE b.account_id = $1
	`
)

var errDuplicateRef = errors.New("external reference already applied")

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

func (r *Repository) FindBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	var balance domain.Balance
	err := r.db.QueryRow(ctx, selectBalanceQuery, accountID).Scan(&balance.AccountID, &balance.Stacks, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error("failed to get balance", zap.String("accountID", accountID), zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

// CreateBalance inserts the account, its balance and the default grant record
// as one unit. created is false when another caller won the insert race; the
// caller is expected to re-read in that case.
func (r *Repository) CreateBalance(ctx context.Context, accountID string, grant int64) (bool, *domain.Balance, error) {
	var (
		created bool
		balance domain.Balance
	)
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, insertAccountQuery, accountID); err != nil {
			zap.L().Error("failed to insert account", zap.String("accountID", accountID), zap.Error(err))
			return err
		}
		err := r.db.QueryRow(ctx, insertBalanceQuery, accountID, grant).Scan(&balance.AccountID, &balance.Stacks, &balance.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			zap.L().Error("failed to insert balance", zap.String("accountID", accountID), zap.Error(err))
			return err
		}
		created = true
		txn := newTransaction(accountID, grant, grant, domain.OpDefaultGrant, "Welcome grant", nil)
		return r.insertTransaction(ctx, txn)
	})
	if err != nil {
		return false, nil, err
	}
	if !created {
		return false, nil, nil
	}
	return true, &balance, nil
}

// Debit decrements the balance only when it covers amount. The check and the
// decrement are one statement.
func (r *Repository) Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		var stacks int64
		err := r.db.QueryRow(ctx, debitQuery, accountID, amount).Scan(&stacks)
		if errors.Is(err, pgx.ErrNoRows) {
			return r.debitFailure(ctx, accountID, amount)
		}
		if err != nil {
			zap.L().Error("failed to debit balance", zap.String("accountID", accountID), zap.Error(err))
			return err
		}
		txn = newTransaction(accountID, -amount, stacks, op, description, nil)
		return r.insertTransaction(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

func (r *Repository) debitFailure(ctx context.Context, accountID string, amount int64) error {
	var available int64
	err := r.db.QueryRow(ctx, `SELECT stacks FROM balances WHERE account_id = $1`, accountID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrAccountNotFound
	}
	if err != nil {
		zap.L().Error("failed to read balance after rejected debit", zap.String("accountID", accountID), zap.Error(err))
		return err
	}
	return &domain.InsufficientBalanceError{Available: available, Required: amount}
}

// Credit increments the balance and appends the record. A credit whose
// externalRef was already applied to the account is a no-op that reports the
// current balance with applied=false.
func (r *Repository) Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (int64, bool, error) {
	var (
		stacks  int64
		applied bool
	)
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		if externalRef != nil {
			exists, err := r.refExists(ctx, accountID, *externalRef)
			if err != nil {
				return err
			}
			if exists {
				return errDuplicateRef
			}
		}
		err := r.db.QueryRow(ctx, creditQuery, accountID, amount).Scan(&stacks)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAccountNotFound
		}
		if err != nil {
			zap.L().Error("failed to credit balance", zap.String("accountID", accountID), zap.Error(err))
			return err
		}
		applied = true
		return r.insertTransaction(ctx, newTransaction(accountID, amount, stacks, op, description, externalRef))
	})
	if errors.Is(err, errDuplicateRef) {
		balance, err := r.FindBalance(ctx, accountID)
		if err != nil {
			return 0, false, err
		}
		if balance == nil {
			return 0, false, domain.ErrAccountNotFound
		}
		return balance.Stacks, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stacks, applied, nil
}

// AppendAudit writes a zero-delta record carrying the current balance.
func (r *Repository) AppendAudit(ctx context.Context, accountID string, op domain.Operation, description string, externalRef *string) (bool, error) {
	err := r.txManager.Begin(ctx, func(ctx context.Context) error {
		if externalRef != nil {
			exists, err := r.refExists(ctx, accountID, *externalRef)
			if err != nil {
				return err
			}
			if exists {
				return errDuplicateRef
			}
		}
		balance, err := r.LockAccount(ctx, accountID)
		if err != nil {
			return err
		}
		return r.insertTransaction(ctx, newTransaction(accountID, 0, balance.Stacks, op, description, externalRef))
	})
	if errors.Is(err, errDuplicateRef) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// LockAccount takes the row lock on the account balance for the rest of the
// enclosing transaction.
func (r *Repository) LockAccount(ctx context.Context, accountID string) (*domain.Balance, error) {
	var balance domain.Balance
	err := r.db.QueryRow(ctx, lockBalanceQuery, accountID).Scan(&balance.AccountID, &balance.Stacks, &balance.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		zap.L().Error("failed to lock balance", zap.String("accountID", accountID), zap.Error(err))
		return nil, err
	}
	return &balance, nil
}

func (r *Repository) History(ctx context.Context, accountID string, limit int, before *uuid.UUID) ([]domain.Transaction, error) {
	rows, err := r.db.Query(ctx, historyQuery, accountID, before, limit)
	if err != nil {
		zap.L().Error("failed to fetch history", zap.String("accountID", accountID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var history []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var op string
		err := rows.Scan(&txn.ID, &txn.AccountID, &txn.Delta, &txn.ResultingBalance, &op, &txn.Description, &txn.ExternalRef, &txn.CreatedAt)
		if err != nil {
			zap.L().Error("failed to scan transaction row", zap.Error(err))
			return nil, err
		}
		txn.Operation = domain.Operation(op)
		history = append(history, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

// RecentlyUpdatedAccounts pages through accounts touched at or after since in
// account id order. after is the last id of the previous page.
func (r *Repository) RecentlyUpdatedAccounts(ctx context.Context, since time.Time, after string, limit int) ([]string, error) {
	rows, err := r.db.Query(ctx, recentAccountsQuery, since, after, limit)
	if err != nil {
		zap.L().Error("failed to fetch recently updated accounts", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var accounts []string
	for rows.Next() {
		var accountID string
		if err := rows.Scan(&accountID); err != nil {
			return nil, err
		}
		accounts = append(accounts, accountID)
	}
	return accounts, rows.Err()
}

// AuditAccount compares the stored balance against the sum of its records in
// a single statement snapshot. It returns nil when they agree.
func (r *Repository) AuditAccount(ctx context.Context, accountID string) (*domain.AuditMismatch, error) {
	var stacks, sum int64
	err := r.db.QueryRow(ctx, auditAccountQuery, accountID).Scan(&stacks, &sum)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}
	if stacks == sum {
		return nil, nil
	}
	return &domain.AuditMismatch{AccountID: accountID, Stacks: stacks, DeltaSum: sum}, nil
}

func (r *Repository) refExists(ctx context.Context, accountID, externalRef string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, externalRefExistsQuery, accountID, externalRef).Scan(&exists); err != nil {
		zap.L().Error("failed to check external reference", zap.String("externalRef", externalRef), zap.Error(err))
		return false, err
	}
	return exists, nil
}

func (r *Repository) insertTransaction(ctx context.Context, txn *domain.Transaction) error {
	_, err := r.db.Exec(ctx, insertTransactionQuery,
		txn.ID, txn.AccountID, txn.Delta, txn.ResultingBalance, string(txn.Operation), txn.Description, txn.ExternalRef, txn.CreatedAt)
	if err != nil {
		if pg.IsUniqueViolation(err) {
			return errDuplicateRef
		}
		zap.L().Error("can't save transaction", zap.String("accountID", txn.AccountID), zap.Error(err))
		return err
	}
	return nil
}

func newTransaction(accountID string, delta, resulting int64, op domain.Operation, description string, externalRef *string) *domain.Transaction {
	return &domain.Transaction{
		ID:               uuid.Must(uuid.NewV7()),
		AccountID:        accountID,
		Delta:            delta,
		ResultingBalance: resulting,
		Operation:        op,
		Description:      description,
		ExternalRef:      externalRef,
		CreatedAt:        time.Now().UTC(),
	}
}
