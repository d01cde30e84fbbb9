package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/services"
	"github.com/fountain/fountain-api/internal/testutil"
	"github.com/fountain/fountain-api/internal/types/api/params"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/fountain/fountain-api/internal/vault"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const startLedgerIndex = 1000

func init() {
	logger.InitLogger("test")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixedRates struct {
	xrpBRL decimal.Decimal
	usdBRL decimal.Decimal
	err    error
}

func (r fixedRates) XRPPriceBRL(ctx context.Context) (decimal.Decimal, error) {
	return r.xrpBRL, r.err
}

func (r fixedRates) USDBRL() decimal.Decimal {
	return r.usdBRL
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []business.OutcomeEvent
}

func (n *recordingNotifier) Notify(ctx context.Context, event business.OutcomeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) Events() []business.OutcomeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]business.OutcomeEvent(nil), n.events...)
}

// recordingStore remembers every persisted status per operation
type recordingStore struct {
	*db.MemoryStore
	mu       sync.Mutex
	statuses map[uuid.UUID][]business.OperationStatus
}

func (s *recordingStore) SaveOperationState(ctx context.Context, op *business.Operation) error {
	if err := s.MemoryStore.SaveOperationState(ctx, op); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[op.ID] = append(s.statuses[op.ID], op.Status)
	return nil
}

func (s *recordingStore) Statuses(id uuid.UUID) []business.OperationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]business.OperationStatus(nil), s.statuses[id]...)
}

type harness struct {
	ctx         context.Context
	ledger      *testutil.FakeLedger
	store       *recordingStore
	vault       *vault.Vault
	router      *services.EventRouter
	refunds     *services.RefundService
	settlement  *services.SettlementService
	recon       *services.ReconciliationService
	lifecycle   *services.WalletLifecycleService
	stablecoins *services.StablecoinService
	notifier    *recordingNotifier
	company     string
	caller      business.Caller
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	issuer, err := xrpl.GenerateWallet()
	require.NoError(t, err)
	company, err := xrpl.GenerateWallet()
	require.NoError(t, err)

	key, err := vault.GenerateKey()
	require.NoError(t, err)
	v, err := vault.NewFromBase64(key)
	require.NoError(t, err)

	stake := decimal.NewFromInt(1)
	ledger := testutil.NewFakeLedger(issuer.Address, startLedgerIndex)
	store := &recordingStore{MemoryStore: db.NewMemoryStore(), statuses: make(map[uuid.UUID][]business.OperationStatus)}
	notifier := &recordingNotifier{}

	router := services.NewEventRouter(ledger, services.RouterConfig{ActivationStake: stake})
	ledger.Attach(router)
	t.Cleanup(router.Stop)

	refunds := services.NewRefundService(store, ledger, v, dec("0.000001"))
	settlement := services.NewSettlementService(store, ledger, refunds, notifier)
	recon := services.NewReconciliationService(store, ledger, router, refunds, settlement, services.ReconciliationConfig{
		Tolerance:       dec("0.00005"),
		DustThreshold:   dec("0.000001"),
		ActivationStake: stake,
	})
	lifecycle := services.NewWalletLifecycleService(store, ledger, v, services.LifecycleConfig{
		ActivationStake:     stake,
		RetirementLedgerAge: 256,
	})
	stablecoins := services.NewStablecoinService(store, ledger, lifecycle, recon, settlement, fixedRates{
		xrpBRL: decimal.NewFromInt(1),
		usdBRL: dec("5"),
	})

	router.OnLedgerClosed(recon.RedriveStalled)
	router.OnLedgerClosed(lifecycle.OnLedgerClosed)

	return &harness{
		ctx:         context.Background(),
		ledger:      ledger,
		store:       store,
		vault:       v,
		router:      router,
		refunds:     refunds,
		settlement:  settlement,
		recon:       recon,
		lifecycle:   lifecycle,
		stablecoins: stablecoins,
		notifier:    notifier,
		company:     company.Address,
		caller:      business.Caller{CompanyID: "company-1"},
	}
}

// createMint registers code with a trust line for the company wallet and
// returns its first mint, which requires amount XRP at the fixed rate
func (h *harness) createMint(t *testing.T, code string, amount decimal.Decimal) (*business.Stablecoin, *business.Operation) {
	t.Helper()
	h.ledger.AddTrustLine(h.company, code, decimal.NewFromInt(1_000_000_000))
	return h.createMintWithoutTrustLine(t, code, amount)
}

func (h *harness) createMintWithoutTrustLine(t *testing.T, code string, amount decimal.Decimal) (*business.Stablecoin, *business.Operation) {
	t.Helper()
	sc, op, err := h.stablecoins.CreateStablecoin(h.ctx, h.caller, params.CreateStablecoinParams{
		ClientID:      "client-1",
		ClientName:    "Acme",
		CompanyWallet: h.company,
		CurrencyCode:  code,
		Amount:        amount,
		WebhookURL:    "https://hooks.example.com/fountain",
	})
	require.NoError(t, err)
	require.NotNil(t, op.Wallet)
	return sc, op
}

// deposit pays amount into address and waits for reconciliation to settle
func (h *harness) deposit(from, address string, amount decimal.Decimal) string {
	txID := h.ledger.Deposit(from, address, amount)
	h.router.Wait()
	return txID
}

func (h *harness) operation(t *testing.T, id uuid.UUID) *business.Operation {
	t.Helper()
	op, err := h.store.GetOperation(h.ctx, id)
	require.NoError(t, err)
	return op
}

// issuedTo returns the issued-currency payments the holder received
func (h *harness) issuedTo(holder string) []testutil.FakeTx {
	var out []testutil.FakeTx
	for _, tx := range h.ledger.Txs(xrpl.TxTypePayment) {
		if tx.To == holder && !tx.Amount.IsNative() {
			out = append(out, tx)
		}
	}
	return out
}

func refundsWithReason(op *business.Operation, reason business.RefundReason) []business.Refund {
	var out []business.Refund
	for _, r := range op.Refunds {
		if r.Reason == reason {
			out = append(out, r)
		}
	}
	return out
}
