package business

import (
	"time"

	"github.com/fountain/fountain-api/internal/constants"
	"github.com/google/uuid"
)

// StablecoinStatus is the lifecycle state of an issuance line
type StablecoinStatus string

const (
	StablecoinStatusPending        StablecoinStatus = constants.StablecoinStatusPending
	StablecoinStatusRequireDeposit StablecoinStatus = constants.StablecoinStatusRequireDeposit
	StablecoinStatusWaitingPayment StablecoinStatus = constants.StablecoinStatusWaitingPayment
	StablecoinStatusActive         StablecoinStatus = constants.StablecoinStatusActive
	StablecoinStatusInactive       StablecoinStatus = constants.StablecoinStatusInactive
)

// Stablecoin is a company-owned issuance line for one currency code
type Stablecoin struct {
	ID            uuid.UUID        `json:"id"`
	CompanyID     string           `json:"company_id"`
	ClientID      string           `json:"client_id"`
	ClientName    string           `json:"client_name"`
	CompanyWallet string           `json:"company_wallet"`
	CurrencyCode  string           `json:"currency_code"`
	IssuerAddress string           `json:"issuer_address"`
	DepositType   string           `json:"deposit_type"`
	WebhookURL    string           `json:"webhook_url,omitempty"`
	Status        StablecoinStatus `json:"status"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
