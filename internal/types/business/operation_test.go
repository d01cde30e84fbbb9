package business_test

import (
	"errors"
	"testing"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperation_Transition(t *testing.T) {
	tests := []struct {
		name    string
		kind    business.OperationKind
		from    business.OperationStatus
		to      business.OperationStatus
		wantErr bool
	}{
		{"pending to require deposit", business.OperationKindMint, business.OperationStatusPending, business.OperationStatusRequireDeposit, false},
		{"require deposit to partial", business.OperationKindMint, business.OperationStatusRequireDeposit, business.OperationStatusPartialDeposit, false},
		{"partial stays partial", business.OperationKindMint, business.OperationStatusPartialDeposit, business.OperationStatusPartialDeposit, false},
		{"partial back to require deposit", business.OperationKindMint, business.OperationStatusPartialDeposit, business.OperationStatusRequireDeposit, false},
		{"partial to confirmed", business.OperationKindMint, business.OperationStatusPartialDeposit, business.OperationStatusDepositConfirmed, false},
		{"confirmed to completed", business.OperationKindMint, business.OperationStatusDepositConfirmed, business.OperationStatusCompleted, false},
		{"confirmed to failed", business.OperationKindMint, business.OperationStatusDepositConfirmed, business.OperationStatusFailed, false},
		{"confirmed twice", business.OperationKindMint, business.OperationStatusDepositConfirmed, business.OperationStatusDepositConfirmed, true},
		{"failed to cancelled", business.OperationKindMint, business.OperationStatusFailed, business.OperationStatusCancelled, false},
		{"completed is terminal", business.OperationKindMint, business.OperationStatusCompleted, business.OperationStatusCancelled, true},
		{"cancelled is terminal", business.OperationKindMint, business.OperationStatusCancelled, business.OperationStatusRequireDeposit, true},
		{"mint cannot skip collateral", business.OperationKindMint, business.OperationStatusPending, business.OperationStatusCompleted, true},
		{"burn completes from pending", business.OperationKindBurn, business.OperationStatusPending, business.OperationStatusCompleted, false},
		{"require deposit cannot complete", business.OperationKindMint, business.OperationStatusRequireDeposit, business.OperationStatusCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &business.Operation{Kind: tt.kind, Status: tt.from}
			err := op.Transition(tt.to)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, business.ErrInvalidTransition))
				assert.Equal(t, tt.from, op.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, op.Status)
		})
	}
}

func TestOperation_DepositHelpers(t *testing.T) {
	op := &business.Operation{
		RequiredAmount: decimal.NewFromInt(100),
		Deposits: []business.Deposit{
			{Amount: decimal.NewFromInt(60), TxID: "A", Depositor: "rA"},
			{Amount: decimal.NewFromInt(40), TxID: "B", Depositor: "unknown"},
		},
		Refunds: []business.Refund{
			{Amount: decimal.NewFromInt(7), Reason: business.RefundReasonUnauthorized, SourceTxID: "S1", TxID: "R1"},
			{Amount: decimal.NewFromInt(3), Reason: business.RefundReasonUnauthorized, SourceTxID: "S2", Error: "tecUNFUNDED"},
			{Amount: decimal.NewFromInt(3), Reason: business.RefundReasonUnauthorized, SourceTxID: "S2", Error: "tecUNFUNDED"},
			{Amount: decimal.NewFromInt(9), Reason: business.RefundReasonLateDeposit, SourceTxID: "S3", Error: "timeout"},
			{Amount: decimal.NewFromInt(9), Reason: business.RefundReasonLateDeposit, SourceTxID: "S3", TxID: "R3"},
		},
	}
	op.AccumulatedAmount = op.DepositSum()

	assert.True(t, op.HasDeposit("A"))
	assert.False(t, op.HasDeposit("C"))
	assert.True(t, op.AccumulatedAmount.Equal(decimal.NewFromInt(100)))
	assert.True(t, op.Deposits[0].KnownDepositor())
	assert.False(t, op.Deposits[1].KnownDepositor())
	assert.True(t, op.HeldUnrefunded().Equal(decimal.NewFromInt(3)), "retried failures count once, later success clears")
	assert.Equal(t, 2, op.SentRefunds())
	assert.True(t, op.RefundSent("S3", business.RefundReasonLateDeposit))
	assert.False(t, op.RefundSent("S2", business.RefundReasonUnauthorized))
	assert.True(t, op.RequirementMet(decimal.RequireFromString("0.00005")))
	assert.Equal(t, "100", op.ProgressPercent().String())
}

func TestOperation_RequirementMetWithinTolerance(t *testing.T) {
	eps := decimal.RequireFromString("0.00005")
	op := &business.Operation{
		RequiredAmount:    decimal.NewFromInt(100),
		AccumulatedAmount: decimal.RequireFromString("99.99996"),
	}
	assert.True(t, op.RequirementMet(eps))

	op.AccumulatedAmount = decimal.RequireFromString("99.9999")
	assert.False(t, op.RequirementMet(eps))
}

func TestErrorTypes(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &business.LedgerSubmissionError{Op: "payment", EngineResult: "tecPATH_DRY"})
	assert.True(t, business.IsLedgerSubmissionError(wrapped))
	assert.True(t, business.IsValidationError(business.NewValidationError("amount", "must be positive")))
	assert.False(t, business.IsAuthorizationError(business.ErrTrustLineMissing))
	assert.Contains(t, (&business.LedgerSubmissionError{Op: "payment", EngineResult: "tecPATH_DRY", TxID: "ABC"}).Error(), "tecPATH_DRY")
}
