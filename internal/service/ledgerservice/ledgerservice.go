package ledgerservice

//go:generate mockgen -source=ledgerservice.go -destination=mock_ledgerservice.go -package=ledgerservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
)

type Repo interface {
	FindBalance(ctx context.Context, accountID string) (*domain.Balance, error)
	CreateBalance(ctx context.Context, accountID string, grant int64) (bool, *domain.Balance, error)
	Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (*domain.Transaction, error)
	Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (int64, bool, error)
	AppendAudit(ctx context.Context, accountID string, op domain.Operation, description string, externalRef *string) (bool, error)
	LockAccount(ctx context.Context, accountID string) (*domain.Balance, error)
	History(ctx context.Context, accountID string, limit int, before *uuid.UUID) ([]domain.Transaction, error)
	RecentlyUpdatedAccounts(ctx context.Context, since time.Time, after string, limit int) ([]string, error)
	AuditAccount(ctx context.Context, accountID string) (*domain.AuditMismatch, error)
}

const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	provisionAttempts = 3
)

var errProvisionConflict = errors.New("balance provisioning kept conflicting")

type Service struct {
	repo         Repo
	defaultGrant int64
}

func New(repo Repo, defaultGrant int64) *Service {
	return &Service{
		repo:         repo,
		defaultGrant: defaultGrant,
	}
}

// GetOrCreateBalance returns the account balance, provisioning it with the
// default grant on first access. Concurrent first calls create one balance and
// one grant record between them.
func (s *Service) GetOrCreateBalance(ctx context.Context, accountID string) (*domain.Balance, error) {
	if strings.TrimSpace(accountID) == "" {
		return nil, fmt.Errorf("%w: account id is required", domain.ErrInvalidInput)
	}
	for attempt := 0; attempt < provisionAttempts; attempt++ {
		balance, err := s.repo.FindBalance(ctx, accountID)
		if err != nil {
			zap.L().Error("failed to get balance", zap.String("accountID", accountID), zap.Error(err))
			return nil, err
		}
		if balance != nil {
			return balance, nil
		}

		created, balance, err := s.repo.CreateBalance(ctx, accountID, s.defaultGrant)
		if err != nil {
			zap.L().Error("failed to create balance", zap.String("accountID", accountID), zap.Error(err))
			return nil, err
		}
		if created {
			zap.L().Info("account provisioned", zap.String("accountID", accountID), zap.Int64("grant", s.defaultGrant))
			return balance, nil
		}
	}
	zap.L().Error("failed to provision balance", zap.String("accountID", accountID), zap.Error(errProvisionConflict))
	return nil, errProvisionConflict
}

// Debit charges amount against the account, provisioning it first. A shortfall
// is returned as *domain.InsufficientBalanceError.
func (s *Service) Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (*domain.Transaction, error) {
	if amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateBalance(ctx, accountID); err != nil {
		return nil, err
	}
	txn, err := s.repo.Debit(ctx, accountID, amount, op, description)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientBalance) {
			zap.L().Info("debit rejected", zap.String("accountID", accountID), zap.Int64("amount", amount), zap.Error(err))
		} else {
			zap.L().Error("failed to debit balance", zap.String("accountID", accountID), zap.Error(err))
		}
		return nil, err
	}
	return txn, nil
}

// Credit adds amount to an existing account. Repeating a credit with the same
// externalRef changes nothing and returns the current balance.
func (s *Service) Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (int64, bool, error) {
	if amount <= 0 {
		return 0, false, domain.ErrInvalidAmount
	}
	stacks, applied, err := s.repo.Credit(ctx, accountID, amount, op, description, externalRef)
	if err != nil {
		zap.L().Error("failed to credit balance", zap.String("accountID", accountID), zap.String("operation", string(op)), zap.Error(err))
		return 0, false, err
	}
	if !applied {
		zap.L().Info("credit already applied", zap.String("accountID", accountID), zap.Stringp("externalRef", externalRef))
	}
	return stacks, applied, nil
}

var grantOperations = map[domain.Operation]bool{
	domain.OpGrant:             true,
	domain.OpRefund:            true,
	domain.OpCreditPurchase:    true,
	domain.OpSubscriptionBonus: true,
}

// Grant is the administrative credit. metadata["idempotency_key"] makes the
// grant safe to repeat; the remaining entries end up in the description.
func (s *Service) Grant(ctx context.Context, accountID string, amount int64, op domain.Operation, metadata map[string]string) (int64, error) {
	if op == "" {
		op = domain.OpGrant
	}
	if !grantOperations[op] {
		return 0, fmt.Errorf("%w: operation %q cannot be granted", domain.ErrInvalidInput, op)
	}
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}
	if _, err := s.GetOrCreateBalance(ctx, accountID); err != nil {
		return 0, err
	}

	var externalRef *string
	if key := metadata["idempotency_key"]; key != "" {
		ref := "grant:" + key
		externalRef = &ref
	}
	stacks, _, err := s.Credit(ctx, accountID, amount, op, grantDescription(op, metadata), externalRef)
	return stacks, err
}

func grantDescription(op domain.Operation, metadata map[string]string) string {
	if d := metadata["description"]; d != "" {
		return d
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		if k != "idempotency_key" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "Admin " + string(op)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+metadata[k])
	}
	return "Admin " + string(op) + " (" + strings.Join(parts, ", ") + ")"
}

// History returns one page of the account's records, newest first, and the
// cursor for the next page. The cursor is empty on the last page.
func (s *Service) History(ctx context.Context, accountID string, limit int, cursor string) ([]domain.Transaction, string, error) {
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	var before *uuid.UUID
	if cursor != "" {
		id, err := uuid.Parse(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("%w: malformed cursor", domain.ErrInvalidInput)
		}
		before = &id
	}

	if _, err := s.GetOrCreateBalance(ctx, accountID); err != nil {
		return nil, "", err
	}
	history, err := s.repo.History(ctx, accountID, limit, before)
	if err != nil {
		zap.L().Error("failed to fetch history", zap.String("accountID", accountID), zap.Error(err))
		return nil, "", err
	}

	var next string
	if len(history) == limit {
		next = history[len(history)-1].ID.String()
	}
	return history, next, nil
}

func (s *Service) AppendAudit(ctx context.Context, accountID string, op domain.Operation, description string, externalRef *string) (bool, error) {
	applied, err := s.repo.AppendAudit(ctx, accountID, op, description, externalRef)
	if err != nil {
		zap.L().Error("failed to append audit record", zap.String("accountID", accountID), zap.String("operation", string(op)), zap.Error(err))
		return false, err
	}
	return applied, nil
}

func (s *Service) LockAccount(ctx context.Context, accountID string) (*domain.Balance, error) {
	return s.repo.LockAccount(ctx, accountID)
}
