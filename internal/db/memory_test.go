package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOperation(t *testing.T, store *db.MemoryStore, status business.OperationStatus) *business.Operation {
	t.Helper()
	op := &business.Operation{
		ID:             uuid.New(),
		StablecoinID:   uuid.New(),
		Kind:           business.OperationKindMint,
		Status:         status,
		RequiredAmount: decimal.NewFromInt(100),
		CreatedAt:      time.Now().UTC(),
	}
	require.NoError(t, store.CreateOperation(context.Background(), op))
	return op
}

func TestMemoryStore_StablecoinUniqueness(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()

	sc := &business.Stablecoin{ID: uuid.New(), CurrencyCode: "BRL", Status: business.StablecoinStatusPending}
	require.NoError(t, store.CreateStablecoin(ctx, sc))

	err := store.CreateStablecoin(ctx, &business.Stablecoin{ID: uuid.New(), CurrencyCode: "BRL"})
	assert.ErrorIs(t, err, business.ErrStablecoinExists)

	got, err := store.GetStablecoinByCurrencyCode(ctx, "BRL")
	require.NoError(t, err)
	assert.Equal(t, sc.ID, got.ID)

	require.NoError(t, store.UpdateStablecoinStatus(ctx, sc.ID, business.StablecoinStatusInactive))
	got, err = store.GetStablecoin(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, business.StablecoinStatusInactive, got.Status)

	_, err = store.GetStablecoin(ctx, uuid.New())
	assert.ErrorIs(t, err, business.ErrStablecoinNotFound)
}

func TestMemoryStore_AppendDepositDeduplicatesConcurrently(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	op := seedOperation(t, store, business.OperationStatusRequireDeposit)

	var wg sync.WaitGroup
	var mu sync.Mutex
	appended := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			txID := "TX-A"
			if i%2 == 1 {
				txID = "TX-B"
			}
			ok, err := store.AppendDeposit(ctx, op.ID, business.Deposit{Amount: decimal.NewFromInt(10), TxID: txID})
			require.NoError(t, err)
			if ok {
				mu.Lock()
				appended++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, appended)
	got, err := store.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Len(t, got.Deposits, 2)
	assert.True(t, got.AccumulatedAmount.Equal(decimal.NewFromInt(20)))
	assert.True(t, got.AccumulatedAmount.Equal(got.DepositSum()))

	_, err = store.AppendDeposit(ctx, uuid.New(), business.Deposit{TxID: "X"})
	assert.ErrorIs(t, err, business.ErrOperationNotFound)
}

func TestMemoryStore_SaveOperationStateIsCompareAndSet(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	op := seedOperation(t, store, business.OperationStatusRequireDeposit)

	a, err := store.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	b, err := store.GetOperation(ctx, op.ID)
	require.NoError(t, err)

	require.NoError(t, a.Transition(business.OperationStatusDepositConfirmed))
	require.NoError(t, store.SaveOperationState(ctx, a))

	require.NoError(t, b.Transition(business.OperationStatusCancelled))
	assert.ErrorIs(t, store.SaveOperationState(ctx, b), business.ErrStaleOperation)

	got, err := store.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, business.OperationStatusDepositConfirmed, got.Status)
	assert.Equal(t, a.Version, got.Version)
}

func TestMemoryStore_RefundsAndRetirement(t *testing.T) {
	store := db.NewMemoryStore()
	ctx := context.Background()
	op := seedOperation(t, store, business.OperationStatusRequireDeposit)

	require.NoError(t, store.AppendRefund(ctx, op.ID, business.Refund{Amount: decimal.NewFromInt(5), TxID: "R1"}))
	require.NoError(t, store.AppendRefund(ctx, op.ID, business.Refund{Amount: decimal.NewFromInt(3), Error: "boom"}))

	require.NoError(t, store.UpdateOperationWallet(ctx, op.ID, &business.CollectionWallet{
		Address: "rWallet", EncryptedSecret: "iv:ct:tag", CreationLedgerIndex: 1000,
	}))

	got, err := store.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Len(t, got.Refunds, 2)
	assert.True(t, got.RefundedAmount.Equal(decimal.NewFromInt(5)))

	awaiting, err := store.ListOperationsAwaitingDeposit(ctx)
	require.NoError(t, err)
	assert.Len(t, awaiting, 1)

	retirable, err := store.ListRetirableOperations(ctx, 2000)
	require.NoError(t, err)
	assert.Empty(t, retirable, "only completed or cancelled operations retire")

	got.Status = business.OperationStatusCompleted
	require.NoError(t, store.SaveOperationState(ctx, got))

	retirable, err = store.ListRetirableOperations(ctx, 999)
	require.NoError(t, err)
	assert.Empty(t, retirable)

	retirable, err = store.ListRetirableOperations(ctx, 1000)
	require.NoError(t, err)
	require.Len(t, retirable, 1)

	require.NoError(t, store.MarkWalletRetired(ctx, op.ID, "DEL1", time.Now()))
	assert.ErrorIs(t, store.MarkWalletRetired(ctx, op.ID, "DEL2", time.Now()), business.ErrWalletNotRetirable)

	retirable, err = store.ListRetirableOperations(ctx, 5000)
	require.NoError(t, err)
	assert.Empty(t, retirable)

	got, err = store.GetOperation(ctx, op.ID)
	require.NoError(t, err)
	assert.Equal(t, "DEL1", got.Wallet.RetirementTxID)
	assert.True(t, got.Wallet.Retired())
}
