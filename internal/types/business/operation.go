package business

import (
	"fmt"
	"time"

	"github.com/fountain/fountain-api/internal/constants"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OperationKind distinguishes mint from burn operations
type OperationKind string

const (
	OperationKindMint OperationKind = constants.OperationKindMint
	OperationKindBurn OperationKind = constants.OperationKindBurn
)

// OperationStatus is the state of an operation in the reconciliation state machine
type OperationStatus string

const (
	OperationStatusPending          OperationStatus = constants.OperationStatusPending
	OperationStatusRequireDeposit   OperationStatus = constants.OperationStatusRequireDeposit
	OperationStatusWaitingPayment   OperationStatus = constants.OperationStatusWaitingPayment
	OperationStatusPartialDeposit   OperationStatus = constants.OperationStatusPartialDeposit
	OperationStatusDepositConfirmed OperationStatus = constants.OperationStatusDepositConfirmed
	OperationStatusCompleted        OperationStatus = constants.OperationStatusCompleted
	OperationStatusFailed           OperationStatus = constants.OperationStatusFailed
	OperationStatusCancelled        OperationStatus = constants.OperationStatusCancelled
)

var operationTransitions = map[OperationStatus][]OperationStatus{
	OperationStatusPending: {
		OperationStatusRequireDeposit,
		OperationStatusWaitingPayment,
		OperationStatusCompleted,
		OperationStatusFailed,
		OperationStatusCancelled,
	},
	OperationStatusRequireDeposit: {
		OperationStatusWaitingPayment,
		OperationStatusPartialDeposit,
		OperationStatusDepositConfirmed,
		OperationStatusCancelled,
	},
	OperationStatusWaitingPayment: {
		OperationStatusRequireDeposit,
		OperationStatusPartialDeposit,
		OperationStatusDepositConfirmed,
		OperationStatusCancelled,
	},
	OperationStatusPartialDeposit: {
		OperationStatusPartialDeposit,
		OperationStatusRequireDeposit,
		OperationStatusDepositConfirmed,
		OperationStatusCancelled,
	},
	OperationStatusDepositConfirmed: {
		OperationStatusCompleted,
		OperationStatusFailed,
		OperationStatusCancelled,
	},
	OperationStatusFailed: {
		OperationStatusCancelled,
	},
}

// IsTerminal reports whether no further transition may leave this status
func (s OperationStatus) IsTerminal() bool {
	return s == OperationStatusCompleted || s == OperationStatusCancelled
}

// IsAwaitingDeposit reports whether the operation still accepts collateral
func (s OperationStatus) IsAwaitingDeposit() bool {
	switch s {
	case OperationStatusRequireDeposit, OperationStatusWaitingPayment, OperationStatusPartialDeposit:
		return true
	default:
		return false
	}
}

// CanTransition reports whether from -> to is an edge of the state machine
func CanTransition(from, to OperationStatus) bool {
	for _, next := range operationTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Deposit is one observed inbound transfer to a collection wallet
type Deposit struct {
	Amount     decimal.Decimal `json:"amount"`
	TxID       string          `json:"tx_id"`
	Depositor  string          `json:"depositor"`
	ObservedAt time.Time       `json:"observed_at"`
}

// KnownDepositor reports whether the sender address was observed
func (d Deposit) KnownDepositor() bool {
	return d.Depositor != "" && d.Depositor != constants.UnknownDepositor
}

// RefundReason classifies why value was sent back out of a collection wallet
type RefundReason string

const (
	RefundReasonExcess       RefundReason = "excess"
	RefundReasonUnauthorized RefundReason = "unauthorized"
	RefundReasonCancellation RefundReason = "cancellation"
	RefundReasonLateDeposit  RefundReason = "late_deposit"
)

// Refund is one outbound transfer from a collection wallet. A refund with an
// empty TxID and a non-empty Error was attempted and failed.
type Refund struct {
	Recipient  string          `json:"recipient"`
	Amount     decimal.Decimal `json:"amount"`
	TxID       string          `json:"tx_id,omitempty"`
	Reason     RefundReason    `json:"reason"`
	SourceTxID string          `json:"source_tx_id,omitempty"`
	Error      string          `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Succeeded reports whether the refund reached the ledger
func (r Refund) Succeeded() bool {
	return r.TxID != "" && r.Error == ""
}

// CollectionWallet is the ephemeral ledger account owned by one mint operation
type CollectionWallet struct {
	Address             string     `json:"address"`
	EncryptedSecret     string     `json:"-"`
	CreationLedgerIndex uint32     `json:"creation_ledger_index"`
	ActivationTxID      string     `json:"activation_tx_id,omitempty"`
	RetirementTxID      string     `json:"retirement_tx_id,omitempty"`
	RetiredAt           *time.Time `json:"retired_at,omitempty"`
}

// Retired reports whether the wallet has been deleted from the ledger
func (w *CollectionWallet) Retired() bool {
	return w != nil && w.RetiredAt != nil
}

// Operation is the unit of work for a mint or burn
type Operation struct {
	ID                  uuid.UUID         `json:"id"`
	StablecoinID        uuid.UUID         `json:"stablecoin_id"`
	CompanyID           string            `json:"company_id"`
	Kind                OperationKind     `json:"kind"`
	Status              OperationStatus   `json:"status"`
	CurrencyCode        string            `json:"currency_code"`
	IssueAmount         decimal.Decimal   `json:"issue_amount"`
	RequiredAmount      decimal.Decimal   `json:"required_amount"`
	AccumulatedAmount   decimal.Decimal   `json:"accumulated_amount"`
	ExcessAmount        decimal.Decimal   `json:"excess_amount"`
	RefundedAmount      decimal.Decimal   `json:"refunded_amount"`
	Deposits            []Deposit         `json:"deposits"`
	Refunds             []Refund          `json:"refunds"`
	AuthorizedDepositor string            `json:"authorized_depositor,omitempty"`
	HolderAddress       string            `json:"holder_address"`
	Wallet              *CollectionWallet `json:"wallet,omitempty"`
	SettlementTxID      string            `json:"settlement_tx_id,omitempty"`
	WebhookURL          string            `json:"webhook_url,omitempty"`
	ErrorMessage        string            `json:"error_message,omitempty"`
	Version             int64             `json:"version"`
	CreatedAt           time.Time         `json:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Transition moves the operation along the state machine. Re-entering
// PARTIAL_DEPOSIT is allowed; every other self-transition is rejected.
func (o *Operation) Transition(to OperationStatus) error {
	if o.Status == to && to != OperationStatusPartialDeposit {
		return fmt.Errorf("%w: already %s", ErrInvalidTransition, to)
	}
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, o.Status, to)
	}
	if to == OperationStatusCompleted && o.Status == OperationStatusPending && o.Kind != OperationKindBurn {
		return fmt.Errorf("%w: mint cannot complete without collateral", ErrInvalidTransition)
	}
	o.Status = to
	return nil
}

// HasDeposit reports whether txID is already recorded
func (o *Operation) HasDeposit(txID string) bool {
	for _, d := range o.Deposits {
		if d.TxID == txID {
			return true
		}
	}
	return false
}

// DepositSum recomputes the accumulated amount from the deposit history
func (o *Operation) DepositSum() decimal.Decimal {
	sum := decimal.Zero
	for _, d := range o.Deposits {
		sum = sum.Add(d.Amount)
	}
	return sum
}

// HeldUnrefunded sums refunds that failed and whose value therefore still
// sits in the collection wallet without being part of the accumulation.
// Retried attempts for the same source transaction count once.
func (o *Operation) HeldUnrefunded() decimal.Decimal {
	held := make(map[string]decimal.Decimal)
	var order []string
	for _, r := range o.Refunds {
		if r.Reason != RefundReasonUnauthorized && r.Reason != RefundReasonLateDeposit {
			continue
		}
		if _, seen := held[r.SourceTxID]; !seen {
			order = append(order, r.SourceTxID)
		}
		if r.Succeeded() {
			held[r.SourceTxID] = decimal.Zero
			continue
		}
		if cur, seen := held[r.SourceTxID]; !seen || !cur.IsZero() {
			held[r.SourceTxID] = r.Amount
		}
	}

	sum := decimal.Zero
	for _, id := range order {
		sum = sum.Add(held[id])
	}
	return sum
}

// RefundSent reports whether a successful refund for sourceTxID with reason exists
func (o *Operation) RefundSent(sourceTxID string, reason RefundReason) bool {
	for _, r := range o.Refunds {
		if r.SourceTxID == sourceTxID && r.Reason == reason && r.Succeeded() {
			return true
		}
	}
	return false
}

// SentRefunds counts refunds that left the collection wallet
func (o *Operation) SentRefunds() int {
	n := 0
	for _, r := range o.Refunds {
		if r.Succeeded() {
			n++
		}
	}
	return n
}

// RequirementMet compares accumulated collateral with the required amount
func (o *Operation) RequirementMet(tolerance decimal.Decimal) bool {
	return o.AccumulatedAmount.Add(tolerance).GreaterThanOrEqual(o.RequiredAmount)
}

// ProgressPercent is the share of the required amount already accumulated
func (o *Operation) ProgressPercent() decimal.Decimal {
	if !o.RequiredAmount.IsPositive() {
		return decimal.Zero
	}
	p := o.AccumulatedAmount.Div(o.RequiredAmount).Mul(decimal.NewFromInt(100))
	if p.GreaterThan(decimal.NewFromInt(100)) {
		p = decimal.NewFromInt(100)
	}
	return p.Round(2)
}
