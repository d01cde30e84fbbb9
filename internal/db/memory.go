package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
)

// MemoryStore is an in-process Querier used when no DATABASE_URL is set and
// in tests. Every read returns a copy.
type MemoryStore struct {
	mu          sync.RWMutex
	stablecoins map[uuid.UUID]*business.Stablecoin
	operations  map[uuid.UUID]*business.Operation
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stablecoins: make(map[uuid.UUID]*business.Stablecoin),
		operations:  make(map[uuid.UUID]*business.Operation),
	}
}

func cloneStablecoin(sc *business.Stablecoin) *business.Stablecoin {
	c := *sc
	return &c
}

func cloneOperation(op *business.Operation) *business.Operation {
	c := *op
	c.Deposits = append([]business.Deposit(nil), op.Deposits...)
	c.Refunds = append([]business.Refund(nil), op.Refunds...)
	if op.Wallet != nil {
		w := *op.Wallet
		if op.Wallet.RetiredAt != nil {
			t := *op.Wallet.RetiredAt
			w.RetiredAt = &t
		}
		c.Wallet = &w
	}
	return &c
}

func (m *MemoryStore) CreateStablecoin(ctx context.Context, sc *business.Stablecoin) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.stablecoins {
		if existing.CurrencyCode == sc.CurrencyCode {
			return business.ErrStablecoinExists
		}
	}
	m.stablecoins[sc.ID] = cloneStablecoin(sc)
	return nil
}

func (m *MemoryStore) GetStablecoin(ctx context.Context, id uuid.UUID) (*business.Stablecoin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sc, ok := m.stablecoins[id]
	if !ok {
		return nil, business.ErrStablecoinNotFound
	}
	return cloneStablecoin(sc), nil
}

func (m *MemoryStore) GetStablecoinByCurrencyCode(ctx context.Context, currencyCode string) (*business.Stablecoin, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sc := range m.stablecoins {
		if sc.CurrencyCode == currencyCode {
			return cloneStablecoin(sc), nil
		}
	}
	return nil, business.ErrStablecoinNotFound
}

func (m *MemoryStore) UpdateStablecoinStatus(ctx context.Context, id uuid.UUID, status business.StablecoinStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc, ok := m.stablecoins[id]
	if !ok {
		return business.ErrStablecoinNotFound
	}
	sc.Status = status
	sc.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) CreateOperation(ctx context.Context, op *business.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op.Version = 1
	op.UpdatedAt = op.CreatedAt
	m.operations[op.ID] = cloneOperation(op)
	return nil
}

func (m *MemoryStore) GetOperation(ctx context.Context, id uuid.UUID) (*business.Operation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, ok := m.operations[id]
	if !ok {
		return nil, business.ErrOperationNotFound
	}
	return cloneOperation(op), nil
}

func (m *MemoryStore) filter(keep func(*business.Operation) bool, less func(a, b *business.Operation) bool) []*business.Operation {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*business.Operation
	for _, op := range m.operations {
		if keep(op) {
			out = append(out, cloneOperation(op))
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func byCreatedAt(a, b *business.Operation) bool {
	return a.CreatedAt.Before(b.CreatedAt)
}

func (m *MemoryStore) ListOperationsByStablecoin(ctx context.Context, stablecoinID uuid.UUID) ([]*business.Operation, error) {
	return m.filter(func(op *business.Operation) bool {
		return op.StablecoinID == stablecoinID
	}, byCreatedAt), nil
}

func (m *MemoryStore) ListOperationsAwaitingDeposit(ctx context.Context) ([]*business.Operation, error) {
	return m.filter(func(op *business.Operation) bool {
		return op.Wallet != nil &&
			(op.Status.IsAwaitingDeposit() || op.Status == business.OperationStatusDepositConfirmed)
	}, byCreatedAt), nil
}

func (m *MemoryStore) ListRetirableOperations(ctx context.Context, maxCreationLedgerIndex uint32) ([]*business.Operation, error) {
	return m.filter(func(op *business.Operation) bool {
		return op.Wallet != nil &&
			!op.Wallet.Retired() &&
			op.Wallet.CreationLedgerIndex > 0 &&
			op.Wallet.CreationLedgerIndex <= maxCreationLedgerIndex &&
			(op.Status == business.OperationStatusCompleted || op.Status == business.OperationStatusCancelled)
	}, func(a, b *business.Operation) bool {
		return a.Wallet.CreationLedgerIndex < b.Wallet.CreationLedgerIndex
	}), nil
}

func (m *MemoryStore) SaveOperationState(ctx context.Context, op *business.Operation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.operations[op.ID]
	if !ok {
		return business.ErrOperationNotFound
	}
	if stored.Version != op.Version {
		return business.ErrStaleOperation
	}

	now := time.Now().UTC()
	stored.Status = op.Status
	stored.ExcessAmount = op.ExcessAmount
	stored.SettlementTxID = op.SettlementTxID
	stored.ErrorMessage = op.ErrorMessage
	stored.Version++
	stored.UpdatedAt = now

	op.Version = stored.Version
	op.UpdatedAt = now
	return nil
}

func (m *MemoryStore) AppendDeposit(ctx context.Context, operationID uuid.UUID, d business.Deposit) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[operationID]
	if !ok {
		return false, business.ErrOperationNotFound
	}
	if op.HasDeposit(d.TxID) {
		return false, nil
	}
	op.Deposits = append(op.Deposits, d)
	op.AccumulatedAmount = op.AccumulatedAmount.Add(d.Amount)
	op.Version++
	op.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (m *MemoryStore) AppendRefund(ctx context.Context, operationID uuid.UUID, r business.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[operationID]
	if !ok {
		return business.ErrOperationNotFound
	}
	op.Refunds = append(op.Refunds, r)
	if r.Succeeded() {
		op.RefundedAmount = op.RefundedAmount.Add(r.Amount)
	}
	op.Version++
	op.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) UpdateOperationWallet(ctx context.Context, operationID uuid.UUID, w *business.CollectionWallet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[operationID]
	if !ok || op.Wallet.Retired() {
		return business.ErrOperationNotFound
	}
	c := *w
	c.RetirementTxID = ""
	c.RetiredAt = nil
	op.Wallet = &c
	op.Version++
	op.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryStore) MarkWalletRetired(ctx context.Context, operationID uuid.UUID, txID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	op, ok := m.operations[operationID]
	if !ok || op.Wallet == nil || op.Wallet.Retired() {
		return business.ErrWalletNotRetirable
	}
	op.Wallet.RetirementTxID = txID
	retired := at
	op.Wallet.RetiredAt = &retired
	op.Version++
	op.UpdatedAt = time.Now().UTC()
	return nil
}
