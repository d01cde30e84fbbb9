package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
)

// Fake ledger operations that accept injected failures
const (
	OpPayment       = "payment"
	OpIssuerPayment = "issuer_payment"
	OpTrustSet      = "trust_set"
	OpClawback      = "clawback"
	OpAccountDelete = "account_delete"
	OpBalance       = "balance"
	OpTrustLines    = "trust_lines"
)

// FakeTx is a transaction applied by the fake ledger
type FakeTx struct {
	TxID        string
	Type        string
	From        string
	To          string
	Amount      xrpl.Amount
	LedgerIndex uint32
}

// FakeLedger is an in-process ledger double implementing the gateway
// surface. Submissions apply immediately. Deposits made with Deposit reach
// an attached stream handler when the destination is subscribed.
type FakeLedger struct {
	mu          sync.Mutex
	issuer      string
	ledgerIndex uint32
	balances    map[string]decimal.Decimal
	sequences   map[string]uint32
	trustLines  map[string][]xrpl.TrustLine
	subscribed  map[string]bool
	failures    map[string]error
	txs         []FakeTx
	handler     xrpl.StreamHandler
	nextTx      int
	reserve     decimal.Decimal
	fee         decimal.Decimal
}

// NewFakeLedger creates a ledger at startIndex with issuer as the issuing account
func NewFakeLedger(issuer string, startIndex uint32) *FakeLedger {
	return &FakeLedger{
		issuer:      issuer,
		ledgerIndex: startIndex,
		balances:    map[string]decimal.Decimal{issuer: decimal.NewFromInt(1_000_000)},
		sequences:   map[string]uint32{issuer: 1},
		trustLines:  make(map[string][]xrpl.TrustLine),
		subscribed:  make(map[string]bool),
		failures:    make(map[string]error),
	}
}

// SetFees applies the account reserve and a flat network fee to payments
// signed by non-issuer accounts. A payment needs a prior balance of at least
// amount + max(reserve, fee) and the fee is burned on top of the amount.
// Both are zero by default.
func (f *FakeLedger) SetFees(reserve, fee decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reserve = reserve
	f.fee = fee
}

// Attach routes deposits and ledger closes to h
func (f *FakeLedger) Attach(h xrpl.StreamHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

// Fail makes every later call of op return err until Recover is called
func (f *FakeLedger) Fail(op string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = err
}

// FailWithResult makes op fail with a ledger engine result
func (f *FakeLedger) FailWithResult(op, engineResult string) {
	f.Fail(op, &business.LedgerSubmissionError{Op: op, EngineResult: engineResult})
}

// Recover clears the injected failure of op
func (f *FakeLedger) Recover(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, op)
}

// SetBalance sets the XRP balance of address, creating the account
func (f *FakeLedger) SetBalance(address string, balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureAccount(address)
	f.balances[address] = balance
}

// Balance returns the XRP balance of address and whether the account exists
func (f *FakeLedger) Balance(address string) (decimal.Decimal, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[address]
	return b, ok
}

// AddTrustLine opens a trust line from holder to the issuer
func (f *FakeLedger) AddTrustLine(holder, currency string, limit decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setTrustLine(holder, currency, limit)
}

// TrustLineBalance returns the issued balance holder has in currency
func (f *FakeLedger) TrustLineBalance(holder, currency string) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.trustLines[holder] {
		if l.Currency == currency {
			return l.Balance
		}
	}
	return decimal.Zero
}

// SetLedgerIndex moves the validated ledger index
func (f *FakeLedger) SetLedgerIndex(index uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ledgerIndex = index
}

// CloseLedgers advances the validated index by n and reports the new index
// to the attached handler
func (f *FakeLedger) CloseLedgers(n uint32) uint32 {
	f.mu.Lock()
	f.ledgerIndex += n
	index, h := f.ledgerIndex, f.handler
	f.mu.Unlock()

	if h != nil {
		h.HandleLedgerClosed(xrpl.LedgerClosedEvent{LedgerIndex: index})
	}
	return index
}

// Deposit applies a payment from an outside account to to and, when to is
// subscribed, pushes it to the attached handler. It returns the tx id.
func (f *FakeLedger) Deposit(from, to string, amount decimal.Decimal) string {
	f.mu.Lock()
	f.ensureAccount(to)
	f.balances[to] = f.balances[to].Add(amount)
	tx := f.record(xrpl.TxTypePayment, from, to, xrpl.XRP(amount))
	h, sub := f.handler, f.subscribed[to]
	f.mu.Unlock()

	if h != nil && sub {
		h.HandlePayment(xrpl.PaymentEvent{TxID: tx.TxID, From: from, To: to, Amount: tx.Amount, LedgerIndex: tx.LedgerIndex})
	}
	return tx.TxID
}

// Txs returns the applied transactions of type txType, or all when empty
func (f *FakeLedger) Txs(txType string) []FakeTx {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FakeTx
	for _, tx := range f.txs {
		if txType == "" || tx.Type == txType {
			out = append(out, tx)
		}
	}
	return out
}

// PaymentsFrom returns native payments sent by from
func (f *FakeLedger) PaymentsFrom(from string) []FakeTx {
	var out []FakeTx
	for _, tx := range f.Txs(xrpl.TxTypePayment) {
		if tx.From == from && tx.Amount.IsNative() {
			out = append(out, tx)
		}
	}
	return out
}

// Subscribed reports whether address is subscribed
func (f *FakeLedger) Subscribed(address string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subscribed[address]
}

func (f *FakeLedger) GenerateWallet() (*xrpl.Wallet, error) {
	return xrpl.GenerateWallet()
}

func (f *FakeLedger) IssuerAddress() string {
	return f.issuer
}

func (f *FakeLedger) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpBalance]; err != nil {
		return decimal.Zero, err
	}
	b, ok := f.balances[address]
	if !ok {
		return decimal.Zero, xrpl.ErrAccountNotFound
	}
	return b, nil
}

func (f *FakeLedger) GetTrustLines(ctx context.Context, address string) ([]xrpl.TrustLine, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpTrustLines]; err != nil {
		return nil, err
	}
	if _, ok := f.balances[address]; !ok {
		return nil, xrpl.ErrAccountNotFound
	}
	return append([]xrpl.TrustLine(nil), f.trustLines[address]...), nil
}

func (f *FakeLedger) GetSequence(ctx context.Context, address string) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seq, ok := f.sequences[address]
	if !ok {
		return 0, xrpl.ErrAccountNotFound
	}
	return seq, nil
}

func (f *FakeLedger) GetValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ledgerIndex, nil
}

func (f *FakeLedger) SubmitPayment(ctx context.Context, from *xrpl.Wallet, to string, amount xrpl.Amount) (*xrpl.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpPayment]; err != nil {
		return nil, err
	}
	if from.Seed == "" {
		return nil, &business.LedgerSubmissionError{Op: OpPayment, EngineResult: "tefBAD_AUTH"}
	}
	prior := f.balances[from.Address]
	if prior.LessThan(amount.Value.Add(decimal.Max(f.reserve, f.fee))) {
		return nil, &business.LedgerSubmissionError{Op: OpPayment, EngineResult: "tecUNFUNDED_PAYMENT"}
	}
	f.ensureAccount(to)
	f.balances[from.Address] = prior.Sub(amount.Value).Sub(f.fee)
	f.balances[to] = f.balances[to].Add(amount.Value)
	return f.result(f.record(xrpl.TxTypePayment, from.Address, to, amount)), nil
}

func (f *FakeLedger) SubmitIssuerPayment(ctx context.Context, to string, amount xrpl.Amount) (*xrpl.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpIssuerPayment]; err != nil {
		return nil, err
	}

	if amount.IsNative() {
		f.ensureAccount(to)
		f.balances[to] = f.balances[to].Add(amount.Value)
		return f.result(f.record(xrpl.TxTypePayment, f.issuer, to, amount)), nil
	}

	lines := f.trustLines[to]
	for i := range lines {
		if lines[i].Currency != amount.Currency {
			continue
		}
		if lines[i].Limit.Sub(lines[i].Balance).LessThan(amount.Value) {
			return nil, &business.LedgerSubmissionError{Op: OpIssuerPayment, EngineResult: "tecPATH_PARTIAL"}
		}
		lines[i].Balance = lines[i].Balance.Add(amount.Value)
		return f.result(f.record(xrpl.TxTypePayment, f.issuer, to, amount)), nil
	}
	return nil, &business.LedgerSubmissionError{Op: OpIssuerPayment, EngineResult: "tecPATH_DRY"}
}

func (f *FakeLedger) SubmitTrustSet(ctx context.Context, holder *xrpl.Wallet, currency string, limit decimal.Decimal) (*xrpl.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpTrustSet]; err != nil {
		return nil, err
	}
	f.setTrustLine(holder.Address, currency, limit)
	return f.result(f.record(xrpl.TxTypeTrustSet, holder.Address, f.issuer, xrpl.Issued(currency, f.issuer, limit))), nil
}

func (f *FakeLedger) SubmitClawback(ctx context.Context, holder, currency string, value decimal.Decimal) (*xrpl.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpClawback]; err != nil {
		return nil, err
	}
	lines := f.trustLines[holder]
	for i := range lines {
		if lines[i].Currency == currency {
			take := decimal.Min(value, lines[i].Balance)
			if !take.IsPositive() {
				break
			}
			lines[i].Balance = lines[i].Balance.Sub(take)
			return f.result(f.record(xrpl.TxTypeClawback, f.issuer, holder, xrpl.Issued(currency, holder, take))), nil
		}
	}
	return nil, &business.LedgerSubmissionError{Op: OpClawback, EngineResult: "tecNO_LINE"}
}

func (f *FakeLedger) SubmitAccountDelete(ctx context.Context, account *xrpl.Wallet, destination string) (*xrpl.SubmitResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[OpAccountDelete]; err != nil {
		return nil, err
	}
	balance, ok := f.balances[account.Address]
	if !ok {
		return nil, &business.LedgerSubmissionError{Op: OpAccountDelete, EngineResult: "tecNO_ENTRY"}
	}
	if f.ledgerIndex < f.sequences[account.Address]+256 {
		return nil, &business.LedgerSubmissionError{Op: OpAccountDelete, EngineResult: "tecTOO_SOON"}
	}
	f.ensureAccount(destination)
	f.balances[destination] = f.balances[destination].Add(balance)
	delete(f.balances, account.Address)
	delete(f.sequences, account.Address)
	return f.result(f.record(xrpl.TxTypeAccountDelete, account.Address, destination, xrpl.XRP(balance))), nil
}

func (f *FakeLedger) Subscribe(ctx context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subscribed[address] = true
	return nil
}

func (f *FakeLedger) Unsubscribe(ctx context.Context, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.subscribed, address)
	return nil
}

func (f *FakeLedger) ensureAccount(address string) {
	if _, ok := f.balances[address]; !ok {
		f.balances[address] = decimal.Zero
		f.sequences[address] = f.ledgerIndex
	}
}

func (f *FakeLedger) setTrustLine(holder, currency string, limit decimal.Decimal) {
	f.ensureAccount(holder)
	for i, l := range f.trustLines[holder] {
		if l.Currency == currency {
			f.trustLines[holder][i].Limit = limit
			return
		}
	}
	f.trustLines[holder] = append(f.trustLines[holder], xrpl.TrustLine{
		Account:  f.issuer,
		Currency: currency,
		Balance:  decimal.Zero,
		Limit:    limit,
	})
}

func (f *FakeLedger) record(txType, from, to string, amount xrpl.Amount) FakeTx {
	f.nextTx++
	tx := FakeTx{
		TxID:        fmt.Sprintf("%064X", f.nextTx),
		Type:        txType,
		From:        from,
		To:          to,
		Amount:      amount,
		LedgerIndex: f.ledgerIndex,
	}
	f.txs = append(f.txs, tx)
	return tx
}

func (f *FakeLedger) result(tx FakeTx) *xrpl.SubmitResult {
	return &xrpl.SubmitResult{TxID: tx.TxID, EngineResult: xrpl.ResultSuccess, LedgerIndex: tx.LedgerIndex}
}
