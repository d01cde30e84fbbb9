package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WalletStatus is a point-in-time view of a collection wallet and the
// funding progress of its operation
type WalletStatus struct {
	OperationID         uuid.UUID       `json:"operation_id"`
	Address             string          `json:"address"`
	Status              OperationStatus `json:"status"`
	Balance             decimal.Decimal `json:"balance"`
	BalanceAvailable    bool            `json:"balance_available"`
	RequiredAmount      decimal.Decimal `json:"required_amount"`
	AccumulatedAmount   decimal.Decimal `json:"accumulated_amount"`
	ProgressPercent     decimal.Decimal `json:"progress_percent"`
	Deposits            []Deposit       `json:"deposits"`
	Refunds             []Refund        `json:"refunds"`
	CreationLedgerIndex uint32          `json:"creation_ledger_index"`
	CurrentLedgerIndex  uint32          `json:"current_ledger_index,omitempty"`
	RetirementTxID      string          `json:"retirement_tx_id,omitempty"`
	RetiredAt           *time.Time      `json:"retired_at,omitempty"`
}
