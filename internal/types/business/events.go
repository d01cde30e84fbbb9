package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OutcomeEvent is published once a mint or burn reaches its outcome
type OutcomeEvent struct {
	Event          string          `json:"event"`
	OperationID    uuid.UUID       `json:"operation_id"`
	StablecoinID   uuid.UUID       `json:"stablecoin_id"`
	CompanyID      string          `json:"company_id"`
	CurrencyCode   string          `json:"currency_code"`
	Status         OperationStatus `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	Collateral     decimal.Decimal `json:"collateral,omitempty"`
	ExcessRefunded decimal.Decimal `json:"excess_refunded,omitempty"`
	SettlementTxID string          `json:"settlement_tx_id,omitempty"`
	WebhookURL     string          `json:"-"`
	OccurredAt     time.Time       `json:"occurred_at"`
}

// DepositNotice is a value transfer observed on a watched address, from
// either the push stream or the polling fallback.
type DepositNotice struct {
	Address   string
	TxID      string
	Amount    decimal.Decimal
	Depositor string
	Polled    bool
}
