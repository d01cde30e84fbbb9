package requests

import "github.com/shopspring/decimal"

// CreateStablecoinRequest registers a currency code and opens its first mint
type CreateStablecoinRequest struct {
	ClientID      string          `json:"client_id"`
	ClientName    string          `json:"client_name"`
	CompanyID     string          `json:"company_id,omitempty"`
	CompanyWallet string          `json:"company_wallet" binding:"required"`
	CurrencyCode  string          `json:"currency_code" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	DepositType   string          `json:"deposit_type"`
	WebhookURL    string          `json:"webhook_url,omitempty"`
}

// MintRequest opens an additional mint against an existing stablecoin
type MintRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	CompanyWallet string          `json:"company_wallet,omitempty"`
	DepositType   string          `json:"deposit_type,omitempty"`
	WebhookURL    string          `json:"webhook_url,omitempty"`
}

// BurnRequest redeems issued tokens
type BurnRequest struct {
	CurrencyCode string          `json:"currency_code,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	ReturnAsset  string          `json:"return_asset,omitempty"`
	WebhookURL   string          `json:"webhook_url,omitempty"`
}
