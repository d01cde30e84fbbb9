package services

import (
	"context"

	"github.com/fountain/fountain-api/internal/client/rates"
	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=interfaces_local.go -destination=../mocks/mock_services.go -package=mocks

// LedgerGateway is the ledger capability surface the engine consumes
type LedgerGateway interface {
	GenerateWallet() (*xrpl.Wallet, error)
	IssuerAddress() string
	GetBalance(ctx context.Context, address string) (decimal.Decimal, error)
	GetTrustLines(ctx context.Context, address string) ([]xrpl.TrustLine, error)
	GetSequence(ctx context.Context, address string) (uint32, error)
	GetValidatedLedgerIndex(ctx context.Context) (uint32, error)
	SubmitPayment(ctx context.Context, from *xrpl.Wallet, to string, amount xrpl.Amount) (*xrpl.SubmitResult, error)
	SubmitIssuerPayment(ctx context.Context, to string, amount xrpl.Amount) (*xrpl.SubmitResult, error)
	SubmitTrustSet(ctx context.Context, holder *xrpl.Wallet, currency string, limit decimal.Decimal) (*xrpl.SubmitResult, error)
	SubmitClawback(ctx context.Context, holder, currency string, value decimal.Decimal) (*xrpl.SubmitResult, error)
	SubmitAccountDelete(ctx context.Context, account *xrpl.Wallet, destination string) (*xrpl.SubmitResult, error)
	Subscribe(ctx context.Context, address string) error
	Unsubscribe(ctx context.Context, address string) error
}

// SecretVault encrypts collection wallet secrets at rest
type SecretVault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Notifier delivers outcome events. Delivery failures never change operation state.
type Notifier interface {
	Notify(ctx context.Context, event business.OutcomeEvent) error
}

// RateProvider converts fiat request amounts into settlement amounts
type RateProvider interface {
	XRPPriceBRL(ctx context.Context) (decimal.Decimal, error)
	USDBRL() decimal.Decimal
}

// DepositWatcher routes ledger notifications for an address to a handler
type DepositWatcher interface {
	Watch(ctx context.Context, address string, handler DepositHandler) error
	Unwatch(ctx context.Context, address string)
}

// Issuer executes issuance once collateral is confirmed
type Issuer interface {
	Issue(ctx context.Context, op *business.Operation) error
}

var (
	_ LedgerGateway  = (*xrpl.Gateway)(nil)
	_ DepositWatcher = (*EventRouter)(nil)
	_ Issuer         = (*SettlementService)(nil)
	_ RateProvider   = (*rates.Provider)(nil)
	_ Notifier       = (*MultiNotifier)(nil)
)
