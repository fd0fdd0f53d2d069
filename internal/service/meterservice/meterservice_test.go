package meterservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"

	"github.com/GlebRadaev/stackmeter/internal/domain"
	memoryrepo "github.com/GlebRadaev/stackmeter/internal/repo/memory-repo"
	"github.com/GlebRadaev/stackmeter/internal/service/ledgerservice"
	"github.com/GlebRadaev/stackmeter/pkg/clients"
)

func NewMock(t *testing.T, refund bool) (*Service, *MockLedgerService, *MockCompletionClient) {
	ctrl := gomock.NewController(t)
	ledger := NewMockLedgerService(ctrl)
	completion := NewMockCompletionClient(ctrl)
	return New(ledger, completion, time.Second, refund), ledger, completion
}

func TestPrice(t *testing.T) {
	op, err := Price("solve_problem")
	require.NoError(t, err)
	assert.Equal(t, int64(10), op.Cost)

	_, err = Price("MINE_BITCOIN")
	assert.ErrorIs(t, err, domain.ErrUnknownOperation)

	costs := Costs()
	require.Len(t, costs, 5)
	assert.Equal(t, "ASK_QUESTION", costs[0].Name)
	assert.Equal(t, int64(5), costs[0].Cost)
}

func TestPerform(t *testing.T) {
	debitTxn := &domain.Transaction{ID: uuid.Must(uuid.NewV7()), AccountID: "acc_1", Delta: -5, ResultingBalance: 15}
	downstreamErr := errors.New("model overloaded")

	tests := []struct {
		name        string
		refund      bool
		operation   string
		input       string
		prepareMock func(ledger *MockLedgerService, completion *MockCompletionClient)
		check       func(t *testing.T, result *Result, err error)
	}{
		{
			name:      "Success",
			operation: "ASK_QUESTION",
			input:     "What is 6*7?",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {
				ledger.EXPECT().Debit(gomock.Any(), "acc_1", int64(5), domain.OpSpend, "ASK_QUESTION").Return(debitTxn, nil)
				completion.EXPECT().Complete(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, req clients.CompletionRequest) (*clients.CompletionResponse, error) {
						_, hasDeadline := ctx.Deadline()
						assert.True(t, hasDeadline)
						assert.Equal(t, "What is 6*7?", req.Input)
						return &clients.CompletionResponse{Output: "42", InputTokens: 10, OutputTokens: 1}, nil
					})
			},
			check: func(t *testing.T, result *Result, err error) {
				require.NoError(t, err)
				assert.Equal(t, "42", result.Output)
				assert.Equal(t, int64(5), result.Charged)
				assert.Equal(t, int64(15), result.RemainingStacks)
			},
		},
		{
			name:      "Insufficient balance skips the downstream call",
			operation: "SOLVE_IMAGE",
			input:     "image",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {
				ledger.EXPECT().Debit(gomock.Any(), "acc_1", int64(20), domain.OpSpend, "SOLVE_IMAGE").
					Return(nil, &domain.InsufficientBalanceError{Available: 15, Required: 20})
			},
			check: func(t *testing.T, result *Result, err error) {
				var insufficient *domain.InsufficientBalanceError
				require.ErrorAs(t, err, &insufficient)
				assert.Equal(t, int64(15), insufficient.Available)
				assert.Nil(t, result)
			},
		},
		{
			name:      "Downstream failure keeps the charge",
			operation: "ASK_QUESTION",
			input:     "What is 6*7?",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {
				ledger.EXPECT().Debit(gomock.Any(), "acc_1", int64(5), domain.OpSpend, "ASK_QUESTION").Return(debitTxn, nil)
				completion.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, downstreamErr)
			},
			check: func(t *testing.T, result *Result, err error) {
				var failed *domain.DownstreamFailedError
				require.ErrorAs(t, err, &failed)
				assert.ErrorIs(t, err, downstreamErr)
				assert.False(t, failed.Refunded)
				assert.Equal(t, int64(5), failed.Charged)
				assert.Equal(t, int64(15), failed.Remaining)
			},
		},
		{
			name:      "Downstream failure refunds when enabled",
			refund:    true,
			operation: "ASK_QUESTION",
			input:     "What is 6*7?",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {
				ref := "refund:" + debitTxn.ID.String()
				ledger.EXPECT().Debit(gomock.Any(), "acc_1", int64(5), domain.OpSpend, "ASK_QUESTION").Return(debitTxn, nil)
				completion.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, downstreamErr)
				ledger.EXPECT().Credit(gomock.Any(), "acc_1", int64(5), domain.OpRefund, "Refund for failed ASK_QUESTION", &ref).
					Return(int64(20), true, nil)
			},
			check: func(t *testing.T, result *Result, err error) {
				var failed *domain.DownstreamFailedError
				require.ErrorAs(t, err, &failed)
				assert.True(t, failed.Refunded)
				assert.Equal(t, int64(20), failed.Remaining)
			},
		},
		{
			name:        "Unknown operation",
			operation:   "MINE_BITCOIN",
			input:       "x",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {},
			check: func(t *testing.T, result *Result, err error) {
				assert.ErrorIs(t, err, domain.ErrUnknownOperation)
			},
		},
		{
			name:        "Empty input",
			operation:   "ASK_QUESTION",
			input:       "  ",
			prepareMock: func(ledger *MockLedgerService, completion *MockCompletionClient) {},
			check: func(t *testing.T, result *Result, err error) {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, ledger, completion := NewMock(t, tt.refund)
			tt.prepareMock(ledger, completion)

			result, err := service.Perform(context.Background(), "acc_1", tt.operation, tt.input)
			tt.check(t, result, err)
		})
	}
}

func TestPerform_RefundPolicyOverLedger(t *testing.T) {
	for _, refund := range []bool{false, true} {
		store := memoryrepo.NewStore()
		ledger := ledgerservice.New(store.Ledger(), 20)
		completion := NewMockCompletionClient(gomock.NewController(t))
		completion.EXPECT().Complete(gomock.Any(), gomock.Any()).Return(nil, errors.New("timeout"))
		service := New(ledger, completion, time.Second, refund)

		_, err := service.Perform(context.Background(), "acc_1", "SOLVE_PROBLEM", "2x = 4")
		assert.ErrorIs(t, err, domain.ErrDownstreamFailed)

		balance, err := ledger.GetOrCreateBalance(context.Background(), "acc_1")
		require.NoError(t, err)
		if refund {
			assert.Equal(t, int64(20), balance.Stacks)
		} else {
			assert.Equal(t, int64(10), balance.Stacks)
		}
	}
}
