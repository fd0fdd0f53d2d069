package meterservice

//go:generate mockgen -source=meterservice.go -destination=mock_meterservice.go -package=meterservice

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	"github.com/GlebRadaev/stackmeter/pkg/clients"
)

type LedgerService interface {
	Debit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string) (*domain.Transaction, error)
	Credit(ctx context.Context, accountID string, amount int64, op domain.Operation, description string, externalRef *string) (int64, bool, error)
}

type CompletionClient interface {
	Complete(ctx context.Context, req clients.CompletionRequest) (*clients.CompletionResponse, error)
}

type Operation struct {
	Name         string
	Cost         int64
	Instructions string
}

var operations = map[string]Operation{
	"ASK_QUESTION":      {Name: "ASK_QUESTION", Cost: 5, Instructions: "Answer the student's question clearly and concisely."},
	"EXPLAIN_STEP":      {Name: "EXPLAIN_STEP", Cost: 3, Instructions: "Explain the given solution step in detail."},
	"SOLVE_PROBLEM":     {Name: "SOLVE_PROBLEM", Cost: 10, Instructions: "Solve the problem step by step and state the final answer."},
	"GENERATE_PRACTICE": {Name: "GENERATE_PRACTICE", Cost: 15, Instructions: "Generate practice problems similar to the given one, with answers."},
	"SOLVE_IMAGE":       {Name: "SOLVE_IMAGE", Cost: 20, Instructions: "Solve the problem described by the attached image."},
}

// Costs returns the operation table ordered by name.
func Costs() []Operation {
	list := make([]Operation, 0, len(operations))
	for _, op := range operations {
		list = append(list, op)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func Price(name string) (Operation, error) {
	op, ok := operations[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, name)
	}
	return op, nil
}

type Result struct {
	Output          string
	Model           string
	InputTokens     int
	OutputTokens    int
	Charged         int64
	RemainingStacks int64
}

type Service struct {
	ledger          LedgerService
	completion      CompletionClient
	timeout         time.Duration
	refundOnFailure bool
}

func New(ledger LedgerService, completion CompletionClient, timeout time.Duration, refundOnFailure bool) *Service {
	return &Service{
		ledger:          ledger,
		completion:      completion,
		timeout:         timeout,
		refundOnFailure: refundOnFailure,
	}
}

// Costs exposes the operation table to callers holding a *Service.
func (s *Service) Costs() []Operation {
	return Costs()
}

// Perform charges the operation price and then runs it. The charge is not
// reversed when the downstream call fails unless refunds are enabled.
func (s *Service) Perform(ctx context.Context, accountID, operation, input string) (*Result, error) {
	op, err := Price(operation)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input) == "" {
		return nil, fmt.Errorf("%w: input is required", domain.ErrInvalidInput)
	}

	txn, err := s.ledger.Debit(ctx, accountID, op.Cost, domain.OpSpend, op.Name)
	if err != nil {
		return nil, err
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	started := time.Now()
	resp, err := s.completion.Complete(callCtx, clients.CompletionRequest{
		Instructions: op.Instructions,
		Input:        input,
	})
	latency := time.Since(started)
	if err != nil {
		zap.L().Error("metered operation failed", zap.String("accountID", accountID), zap.String("operation", op.Name),
			zap.Duration("latency", latency), zap.Error(err))
		return nil, s.downstreamFailed(ctx, accountID, op, txn, err)
	}

	zap.L().Info("metered operation completed",
		zap.String("accountID", accountID),
		zap.String("operation", op.Name),
		zap.Stringer("transactionID", txn.ID),
		zap.Duration("latency", latency),
		zap.Int("inputTokens", resp.InputTokens),
		zap.Int("outputTokens", resp.OutputTokens),
		zap.Int("outputBytes", len(resp.Output)),
	)
	return &Result{
		Output:          resp.Output,
		Model:           resp.Model,
		InputTokens:     resp.InputTokens,
		OutputTokens:    resp.OutputTokens,
		Charged:         op.Cost,
		RemainingStacks: txn.ResultingBalance,
	}, nil
}

func (s *Service) downstreamFailed(ctx context.Context, accountID string, op Operation, txn *domain.Transaction, cause error) error {
	failure := &domain.DownstreamFailedError{
		Charged:   op.Cost,
		Remaining: txn.ResultingBalance,
		Err:       cause,
	}
	if !s.refundOnFailure {
		return failure
	}

	ref := "refund:" + txn.ID.String()
	stacks, _, err := s.ledger.Credit(ctx, accountID, op.Cost, domain.OpRefund, "Refund for failed "+op.Name, &ref)
	if err != nil {
		zap.L().Error("failed to refund metered operation", zap.String("accountID", accountID), zap.String("externalRef", ref), zap.Error(err))
		return errors.Join(failure, err)
	}
	failure.Refunded = true
	failure.Remaining = stacks
	return failure
}
