package params

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateStablecoinParams contains parameters for registering a stablecoin and
// opening its first mint
type CreateStablecoinParams struct {
	CompanyID     string
	ClientID      string
	ClientName    string
	CompanyWallet string
	CurrencyCode  string
	Amount        decimal.Decimal
	DepositType   string
	WebhookURL    string
}

// MintParams contains parameters for an additional mint against an existing stablecoin
type MintParams struct {
	StablecoinID  uuid.UUID
	Amount        decimal.Decimal
	CompanyWallet string
	DepositType   string
	WebhookURL    string
}

// BurnParams contains parameters for redeeming issued tokens
type BurnParams struct {
	StablecoinID uuid.UUID
	CurrencyCode string
	Amount       decimal.Decimal
	ReturnAsset  string
	WebhookURL   string
}
