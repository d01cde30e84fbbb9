package responses

import (
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
)

// MintResponse is returned when a mint is opened. The company deposits
// RequiredAmount XRP into WalletAddress to complete it.
type MintResponse struct {
	StablecoinID   string          `json:"stablecoin_id"`
	OperationID    string          `json:"operation_id"`
	Status         string          `json:"status"`
	CurrencyCode   string          `json:"currency_code"`
	IssuerAddress  string          `json:"issuer_address,omitempty"`
	WalletAddress  string          `json:"wallet_address"`
	IssueAmount    decimal.Decimal `json:"issue_amount"`
	RequiredAmount decimal.Decimal `json:"required_amount"`
}

// BurnResponse is returned once a burn settled or failed
type BurnResponse struct {
	OperationID    string          `json:"operation_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	ReturnedAmount decimal.Decimal `json:"returned_amount"`
	ReturnAsset    string          `json:"return_asset"`
	SettlementTxID string          `json:"settlement_tx_id,omitempty"`
	ErrorMessage   string          `json:"error_message,omitempty"`
}

// StablecoinResponse wraps a stablecoin record
type StablecoinResponse struct {
	Object string `json:"object"`
	*business.Stablecoin
}

// OperationResponse wraps an operation record
type OperationResponse struct {
	Object string `json:"object"`
	*business.Operation
}

// NewMintResponse builds the mint response from the stored records
func NewMintResponse(sc *business.Stablecoin, op *business.Operation) MintResponse {
	resp := MintResponse{
		StablecoinID:   op.StablecoinID.String(),
		OperationID:    op.ID.String(),
		Status:         string(op.Status),
		CurrencyCode:   op.CurrencyCode,
		IssueAmount:    op.IssueAmount,
		RequiredAmount: op.RequiredAmount,
	}
	if sc != nil {
		resp.IssuerAddress = sc.IssuerAddress
	}
	if op.Wallet != nil {
		resp.WalletAddress = op.Wallet.Address
	}
	return resp
}
