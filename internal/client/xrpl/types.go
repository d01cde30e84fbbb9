package xrpl

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Engine results
const (
	ResultSuccess = "tesSUCCESS"
	ResultQueued  = "terQUEUED"

	// ResultAlreadyQueued means the same signed blob is already held by the server
	ResultAlreadyQueued = "tefALREADY"
)

// Transaction types
const (
	TxTypePayment       = "Payment"
	TxTypeTrustSet      = "TrustSet"
	TxTypeClawback      = "Clawback"
	TxTypeAccountDelete = "AccountDelete"
)

// tfFullyCanonicalSig is still expected by older servers on signed payments
const tfFullyCanonicalSig uint32 = 0x80000000

// TrustLine is one account_lines entry seen from the holder side
type TrustLine struct {
	Account  string          `json:"account"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
	Limit    decimal.Decimal `json:"limit"`
}

// SubmitResult identifies a validated transaction
type SubmitResult struct {
	TxID         string
	EngineResult string
	LedgerIndex  uint32
}

// PaymentEvent is a validated payment observed on the stream
type PaymentEvent struct {
	TxID        string
	From        string
	To          string
	Amount      Amount
	LedgerIndex uint32
}

// LedgerClosedEvent is a validated ledger advance observed on the stream
type LedgerClosedEvent struct {
	LedgerIndex uint32
	TxnCount    int
}

// StreamHandler receives decoded stream events. Implementations must return
// promptly; the read loop is blocked while they run.
type StreamHandler interface {
	HandlePayment(PaymentEvent)
	HandleLedgerClosed(LedgerClosedEvent)
}

type rpcRequest struct {
	Method string        `json:"method"`
	Params []interface{} `json:"params"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
}

type rpcStatus struct {
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	ErrorCode    int    `json:"error_code,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

type accountInfoResult struct {
	AccountData struct {
		Account    string `json:"Account"`
		Balance    string `json:"Balance"`
		Sequence   uint32 `json:"Sequence"`
		OwnerCount uint32 `json:"OwnerCount"`
	} `json:"account_data"`
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
}

type accountLinesResult struct {
	Account string `json:"account"`
	Lines   []struct {
		Account  string `json:"account"`
		Balance  string `json:"balance"`
		Currency string `json:"currency"`
		Limit    string `json:"limit"`
	} `json:"lines"`
	Marker json.RawMessage `json:"marker,omitempty"`
}

type ledgerResult struct {
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
}

type serverInfoResult struct {
	Info struct {
		ValidatedLedger struct {
			Seq            uint32  `json:"seq"`
			ReserveBaseXRP float64 `json:"reserve_base_xrp"`
			ReserveIncXRP  float64 `json:"reserve_inc_xrp"`
		} `json:"validated_ledger"`
	} `json:"info"`
}

type signResult struct {
	TxBlob string `json:"tx_blob"`
	TxJSON struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

type submitResult struct {
	EngineResult        string `json:"engine_result"`
	EngineResultMessage string `json:"engine_result_message"`
	Accepted            bool   `json:"accepted"`
	TxJSON              struct {
		Hash string `json:"hash"`
	} `json:"tx_json"`
}

type txResult struct {
	Hash        string `json:"hash"`
	LedgerIndex uint32 `json:"ledger_index"`
	Validated   bool   `json:"validated"`
	Meta        struct {
		TransactionResult string `json:"TransactionResult"`
	} `json:"meta"`
}

// streamMessage covers both api_version 1 (transaction) and 2 (tx_json) payloads
type streamMessage struct {
	Type        string          `json:"type"`
	Validated   bool            `json:"validated"`
	Hash        string          `json:"hash"`
	LedgerIndex uint32          `json:"ledger_index"`
	TxnCount    int             `json:"txn_count"`
	Transaction *streamTx       `json:"transaction"`
	TxJSON      *streamTx       `json:"tx_json"`
	Meta        *streamMeta     `json:"meta"`
	Status      string          `json:"status"`
	ID          json.RawMessage `json:"id"`
}

type streamTx struct {
	TransactionType string  `json:"TransactionType"`
	Account         string  `json:"Account"`
	Destination     string  `json:"Destination"`
	Amount          *Amount `json:"Amount"`
	DeliverMax      *Amount `json:"DeliverMax"`
	Hash            string  `json:"hash"`
}

type streamMeta struct {
	TransactionResult string          `json:"TransactionResult"`
	DeliveredAmount   json.RawMessage `json:"delivered_amount"`
}
