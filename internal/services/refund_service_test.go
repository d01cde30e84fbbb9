package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/mocks"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestPlanExcessRefunds(t *testing.T) {
	dust := dec("0.000001")

	tests := []struct {
		name     string
		deposits []business.Deposit
		refunds  []business.Refund
		excess   string
		want     map[string]string
	}{
		{
			name: "proportional split between two depositors",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("600")},
				{TxID: "T2", Depositor: "rB", Amount: dec("400")},
			},
			excess: "50",
			want:   map[string]string{"rA": "30", "rB": "20"},
		},
		{
			name: "entries of one depositor paid together",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("60")},
				{TxID: "T2", Depositor: "rA", Amount: dec("45")},
			},
			excess: "5",
			want:   map[string]string{"rA": "5"},
		},
		{
			name: "shares truncated to drops",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("60")},
				{TxID: "T2", Depositor: "rB", Amount: dec("45")},
			},
			excess: "5",
			want:   map[string]string{"rA": "2.857142", "rB": "2.142857"},
		},
		{
			name: "unknown depositor share stays in wallet",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("50")},
				{TxID: "polling:rW", Depositor: constants.UnknownDepositor, Amount: dec("50")},
			},
			excess: "10",
			want:   map[string]string{"rA": "5"},
		},
		{
			name: "dust share skipped",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("1000000")},
				{TxID: "T2", Depositor: "rB", Amount: dec("0.01")},
			},
			excess: "0.01",
			want:   map[string]string{"rA": "0.009999"},
		},
		{
			name: "already refunded depositor skipped",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("600")},
				{TxID: "T2", Depositor: "rB", Amount: dec("400")},
			},
			refunds: []business.Refund{
				{Recipient: "rA", Amount: dec("30"), TxID: "R1", Reason: business.RefundReasonExcess, SourceTxID: "T1"},
			},
			excess: "50",
			want:   map[string]string{"rB": "20"},
		},
		{
			name: "failed refund planned again",
			deposits: []business.Deposit{
				{TxID: "T1", Depositor: "rA", Amount: dec("100")},
			},
			refunds: []business.Refund{
				{Recipient: "rA", Amount: dec("4"), Reason: business.RefundReasonExcess, SourceTxID: "T1", Error: "timeout"},
			},
			excess: "4",
			want:   map[string]string{"rA": "4"},
		},
		{
			name:     "no excess",
			deposits: []business.Deposit{{TxID: "T1", Depositor: "rA", Amount: dec("100")}},
			excess:   "0",
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := &business.Operation{Deposits: tt.deposits, Refunds: tt.refunds}
			op.AccumulatedAmount = op.DepositSum()

			plan := services.PlanExcessRefunds(op, dec(tt.excess), dust)

			got := make(map[string]string, len(plan))
			for _, p := range plan {
				got[p.Recipient] = p.Amount.String()
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefundService_Send(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockQuerier := mocks.NewMockQuerier(ctrl)
	mockGateway := mocks.NewMockLedgerGateway(ctrl)
	mockVault := mocks.NewMockSecretVault(ctrl)
	service := services.NewRefundService(mockQuerier, mockGateway, mockVault, dec("0.000001"))
	ctx := context.Background()

	newOp := func() *business.Operation {
		return &business.Operation{
			ID:     uuid.New(),
			Wallet: &business.CollectionWallet{Address: "rCollection", EncryptedSecret: "sealed"},
		}
	}

	tests := []struct {
		name        string
		op          func() *business.Operation
		setupMocks  func()
		wantTxID    string
		wantFailure bool
	}{
		{
			name: "refund submitted and recorded",
			op:   newOp,
			setupMocks: func() {
				mockVault.EXPECT().Decrypt("sealed").Return("sSeed", nil)
				mockGateway.EXPECT().SubmitPayment(ctx, &xrpl.Wallet{Address: "rCollection", Seed: "sSeed"}, "rDepositor", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *xrpl.Wallet, _ string, amount xrpl.Amount) (*xrpl.SubmitResult, error) {
						assert.True(t, amount.IsNative())
						assert.Equal(t, "1.234567", amount.Value.String())
						return &xrpl.SubmitResult{TxID: "REFUND1", EngineResult: xrpl.ResultSuccess}, nil
					})
				mockQuerier.EXPECT().AppendRefund(ctx, gomock.Any(), gomock.Any()).Return(nil)
			},
			wantTxID: "REFUND1",
		},
		{
			name: "submission failure recorded as failed attempt",
			op:   newOp,
			setupMocks: func() {
				mockVault.EXPECT().Decrypt("sealed").Return("sSeed", nil)
				mockGateway.EXPECT().SubmitPayment(ctx, gomock.Any(), "rDepositor", gomock.Any()).
					Return(nil, &business.LedgerSubmissionError{Op: "payment", EngineResult: "tecUNFUNDED_PAYMENT"})
				mockQuerier.EXPECT().AppendRefund(ctx, gomock.Any(), gomock.Any()).DoAndReturn(
					func(_ context.Context, _ uuid.UUID, r business.Refund) error {
						assert.Empty(t, r.TxID)
						assert.Contains(t, r.Error, "tecUNFUNDED_PAYMENT")
						return nil
					})
			},
			wantFailure: true,
		},
		{
			name: "undecryptable secret",
			op:   newOp,
			setupMocks: func() {
				mockVault.EXPECT().Decrypt("sealed").Return("", errors.New("cipher: message authentication failed"))
				mockQuerier.EXPECT().AppendRefund(ctx, gomock.Any(), gomock.Any()).Return(nil)
			},
			wantFailure: true,
		},
		{
			name: "operation without wallet",
			op: func() *business.Operation {
				return &business.Operation{ID: uuid.New()}
			},
			setupMocks: func() {
				mockQuerier.EXPECT().AppendRefund(ctx, gomock.Any(), gomock.Any()).Return(nil)
			},
			wantFailure: true,
		},
		{
			name: "store failure keeps in-memory history",
			op:   newOp,
			setupMocks: func() {
				mockVault.EXPECT().Decrypt("sealed").Return("sSeed", nil)
				mockGateway.EXPECT().SubmitPayment(ctx, gomock.Any(), "rDepositor", gomock.Any()).
					Return(&xrpl.SubmitResult{TxID: "REFUND2", EngineResult: xrpl.ResultSuccess}, nil)
				mockQuerier.EXPECT().AppendRefund(ctx, gomock.Any(), gomock.Any()).Return(errors.New("connection reset"))
			},
			wantTxID: "REFUND2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMocks()
			op := tt.op()

			r := service.Send(ctx, op, "rDepositor", dec("1.2345678"), business.RefundReasonUnauthorized, "SRC")

			require.Len(t, op.Refunds, 1)
			assert.Equal(t, r, op.Refunds[0])
			assert.Equal(t, "SRC", r.SourceTxID)
			assert.Equal(t, "1.234567", r.Amount.String())
			if tt.wantFailure {
				assert.False(t, r.Succeeded())
				assert.NotEmpty(t, r.Error)
				assert.True(t, op.RefundedAmount.IsZero())
			} else {
				assert.True(t, r.Succeeded())
				assert.Equal(t, tt.wantTxID, r.TxID)
				assert.True(t, op.RefundedAmount.Equal(r.Amount))
			}
		})
	}
}
