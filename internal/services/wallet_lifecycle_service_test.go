package services_test

import (
	"errors"
	"testing"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/fountain/fountain-api/internal/testutil"
	"github.com/fountain/fountain-api/internal/types/api/params"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalletLifecycle_ProvisionFundsAndEncrypts(t *testing.T) {
	h := newHarness(t)
	_, op := h.createMint(t, "PRV", dec("10"))

	w := op.Wallet
	assert.True(t, xrpl.IsValidClassicAddress(w.Address))
	assert.EqualValues(t, startLedgerIndex, w.CreationLedgerIndex)
	assert.NotEmpty(t, w.ActivationTxID)

	balance, ok := h.ledger.Balance(w.Address)
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1).Equal(balance))

	seed, err := h.vault.Decrypt(w.EncryptedSecret)
	require.NoError(t, err)
	derived, err := xrpl.WalletFromSeed(seed)
	require.NoError(t, err)
	assert.Equal(t, w.Address, derived.Address)
}

func TestWalletLifecycle_FundingFailureFailsOperation(t *testing.T) {
	h := newHarness(t)
	h.ledger.Fail(testutil.OpIssuerPayment, errors.New("issuer unfunded"))

	_, op, err := h.stablecoins.CreateStablecoin(h.ctx, h.caller, params.CreateStablecoinParams{
		CompanyWallet: h.company,
		CurrencyCode:  "FND",
		Amount:        dec("10"),
	})
	require.Error(t, err)
	require.NotNil(t, op)

	got := h.operation(t, op.ID)
	assert.Equal(t, business.OperationStatusFailed, got.Status)
	assert.Contains(t, got.ErrorMessage, "issuer unfunded")
	// the generated secret is kept even though funding never happened
	require.NotNil(t, got.Wallet)
	assert.NotEmpty(t, got.Wallet.EncryptedSecret)
	assert.Empty(t, got.Wallet.ActivationTxID)
}

func TestWalletLifecycle_RetirementGatedOnLedgerAge(t *testing.T) {
	h := newHarness(t)
	_, op := h.createMint(t, "RET", dec("10"))
	h.deposit(h.company, op.Wallet.Address, dec("10"))
	require.Equal(t, business.OperationStatusCompleted, h.operation(t, op.ID).Status)

	h.ledger.CloseLedgers(255)
	h.router.Wait()
	got := h.operation(t, op.ID)
	assert.False(t, got.Wallet.Retired())
	assert.Empty(t, h.ledger.Txs(xrpl.TxTypeAccountDelete))

	h.ledger.CloseLedgers(1)
	h.router.Wait()
	got = h.operation(t, op.ID)
	require.True(t, got.Wallet.Retired())
	assert.NotEmpty(t, got.Wallet.RetirementTxID)

	deletes := h.ledger.Txs(xrpl.TxTypeAccountDelete)
	require.Len(t, deletes, 1)
	assert.Equal(t, op.Wallet.Address, deletes[0].From)
	assert.Equal(t, h.ledger.IssuerAddress(), deletes[0].To)
	_, exists := h.ledger.Balance(op.Wallet.Address)
	assert.False(t, exists)

	// later ledgers leave a retired wallet alone
	h.ledger.CloseLedgers(10)
	h.router.Wait()
	assert.Len(t, h.ledger.Txs(xrpl.TxTypeAccountDelete), 1)
}

func TestWalletLifecycle_RetireRefusals(t *testing.T) {
	h := newHarness(t)
	_, open := h.createMint(t, "OPN", dec("10"))
	_, done := h.createMint(t, "DNE", dec("10"))
	h.deposit(h.company, done.Wallet.Address, dec("10"))

	tests := []struct {
		name    string
		ledger  uint32
		opID    func() *business.Operation
		wantErr error
	}{
		{
			name:    "operation still awaiting deposit",
			ledger:  startLedgerIndex + 1000,
			opID:    func() *business.Operation { return open },
			wantErr: business.ErrWalletNotRetirable,
		},
		{
			name:    "wallet too young",
			ledger:  startLedgerIndex + 100,
			opID:    func() *business.Operation { return done },
			wantErr: business.ErrWalletNotRetirable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h.ledger.SetLedgerIndex(tt.ledger)
			err := h.lifecycle.Retire(h.ctx, tt.opID().ID)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Empty(t, h.ledger.Txs(xrpl.TxTypeAccountDelete))
}

func TestWalletLifecycle_FailedDeletionRetriedNextSweep(t *testing.T) {
	h := newHarness(t)
	_, op := h.createMint(t, "RTY", dec("10"))
	h.deposit(h.company, op.Wallet.Address, dec("10"))

	h.ledger.SetLedgerIndex(startLedgerIndex + 300)
	h.ledger.Fail(testutil.OpAccountDelete, errors.New("submit timeout"))

	n, err := h.lifecycle.Sweep(h.ctx, startLedgerIndex+300)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, h.operation(t, op.ID).Wallet.Retired())

	h.ledger.Recover(testutil.OpAccountDelete)
	n, err = h.lifecycle.Sweep(h.ctx, startLedgerIndex+301)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, h.operation(t, op.ID).Wallet.Retired())
}

func TestWalletLifecycle_AbsentAccountMarkedRetired(t *testing.T) {
	h := newHarness(t)
	sc, op := h.createMint(t, "GON", dec("10"))
	require.NoError(t, h.stablecoins.Cancel(h.ctx, h.caller, sc.ID))

	// an account that was merged away out of band
	_, err := h.ledger.SubmitAccountDelete(h.ctx, &xrpl.Wallet{Address: op.Wallet.Address, Seed: "out-of-band"}, h.company)
	require.Error(t, err)
	h.ledger.SetLedgerIndex(startLedgerIndex + 256)
	_, err = h.ledger.SubmitAccountDelete(h.ctx, &xrpl.Wallet{Address: op.Wallet.Address, Seed: "out-of-band"}, h.company)
	require.NoError(t, err)

	require.NoError(t, h.lifecycle.Retire(h.ctx, op.ID))
	got := h.operation(t, op.ID)
	assert.True(t, got.Wallet.Retired())
	assert.Empty(t, got.Wallet.RetirementTxID)
}

func TestWalletLifecycle_RetirementAgeNeverBelowLedgerFloor(t *testing.T) {
	h := newHarness(t)
	lifecycle := services.NewWalletLifecycleService(h.store, h.ledger, h.vault, services.LifecycleConfig{
		ActivationStake:     decimal.NewFromInt(1),
		RetirementLedgerAge: 10,
	})
	_, op := h.createMint(t, "FLR", dec("10"))
	h.deposit(h.company, op.Wallet.Address, dec("10"))

	n, err := lifecycle.Sweep(h.ctx, startLedgerIndex+10)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.False(t, h.operation(t, op.ID).Wallet.Retired())
}
