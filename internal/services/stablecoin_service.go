package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/api/params"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StablecoinService is the request-facing entry point for stablecoin
// registration, mint, burn and cancellation. Every call is scoped to the
// caller's company unless the caller is an admin.
type StablecoinService struct {
	queries    db.Querier
	gateway    LedgerGateway
	lifecycle  *WalletLifecycleService
	recon      *ReconciliationService
	settlement *SettlementService
	rates      RateProvider
	logger     *zap.Logger
}

// NewStablecoinService creates a new stablecoin service
func NewStablecoinService(
	queries db.Querier,
	gateway LedgerGateway,
	lifecycle *WalletLifecycleService,
	recon *ReconciliationService,
	settlement *SettlementService,
	rates RateProvider,
) *StablecoinService {
	return &StablecoinService{
		queries:    queries,
		gateway:    gateway,
		lifecycle:  lifecycle,
		recon:      recon,
		settlement: settlement,
		rates:      rates,
		logger:     logger.Log.With(zap.String("component", "stablecoin_service")),
	}
}

// CreateStablecoin registers a currency code for the caller's company and
// opens its first mint
func (s *StablecoinService) CreateStablecoin(ctx context.Context, caller business.Caller, p params.CreateStablecoinParams) (*business.Stablecoin, *business.Operation, error) {
	if p.CompanyID == "" {
		p.CompanyID = caller.CompanyID
	}
	if !caller.CanAccess(p.CompanyID) {
		return nil, nil, &business.AuthorizationError{Subject: p.CompanyID, Reason: "company mismatch"}
	}
	if err := ValidateCurrencyCode(p.CurrencyCode); err != nil {
		return nil, nil, err
	}
	if err := validateAmount("amount", p.Amount); err != nil {
		return nil, nil, err
	}
	depositType, err := normalizeDepositType(p.DepositType)
	if err != nil {
		return nil, nil, err
	}
	if err := validateWallet("company_wallet", p.CompanyWallet); err != nil {
		return nil, nil, err
	}
	if err := validateWebhookURL(p.WebhookURL); err != nil {
		return nil, nil, err
	}

	_, err = s.queries.GetStablecoinByCurrencyCode(ctx, p.CurrencyCode)
	switch {
	case err == nil:
		return nil, nil, business.ErrStablecoinExists
	case !errors.Is(err, business.ErrStablecoinNotFound):
		return nil, nil, &business.PersistenceError{Op: "lookup stablecoin", Err: err}
	}

	// the currency code is only claimed once the mint can be priced
	required, err := s.requiredAmount(ctx, p.Amount)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	sc := &business.Stablecoin{
		ID:            uuid.New(),
		CompanyID:     p.CompanyID,
		ClientID:      p.ClientID,
		ClientName:    p.ClientName,
		CompanyWallet: p.CompanyWallet,
		CurrencyCode:  p.CurrencyCode,
		IssuerAddress: s.gateway.IssuerAddress(),
		DepositType:   depositType,
		WebhookURL:    p.WebhookURL,
		Status:        business.StablecoinStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.queries.CreateStablecoin(ctx, sc); err != nil {
		if errors.Is(err, business.ErrStablecoinExists) {
			return nil, nil, err
		}
		return nil, nil, &business.PersistenceError{Op: "create stablecoin", Err: err}
	}
	s.logger.Info("Stablecoin registered",
		zap.String("stablecoin_id", sc.ID.String()),
		zap.String("currency_code", sc.CurrencyCode),
		zap.String("company_id", sc.CompanyID))

	op, err := s.startMint(ctx, sc, p.Amount, required, p.CompanyWallet, p.WebhookURL)
	if err != nil {
		return sc, op, err
	}
	if err := s.queries.UpdateStablecoinStatus(ctx, sc.ID, business.StablecoinStatusRequireDeposit); err != nil {
		s.logger.Error("Failed to update stablecoin status", zap.String("stablecoin_id", sc.ID.String()), zap.Error(err))
	} else {
		sc.Status = business.StablecoinStatusRequireDeposit
	}
	return sc, op, nil
}

// Mint opens an additional mint against an existing stablecoin
func (s *StablecoinService) Mint(ctx context.Context, caller business.Caller, p params.MintParams) (*business.Operation, error) {
	sc, err := s.GetStablecoin(ctx, caller, p.StablecoinID)
	if err != nil {
		return nil, err
	}
	if sc.Status == business.StablecoinStatusInactive {
		return nil, business.NewValidationError("stablecoin_id", "stablecoin is inactive")
	}
	if err := validateAmount("amount", p.Amount); err != nil {
		return nil, err
	}
	if _, err := normalizeDepositType(p.DepositType); err != nil {
		return nil, err
	}
	wallet := p.CompanyWallet
	if wallet == "" {
		wallet = sc.CompanyWallet
	}
	if err := validateWallet("company_wallet", wallet); err != nil {
		return nil, err
	}
	webhook := p.WebhookURL
	if webhook == "" {
		webhook = sc.WebhookURL
	}
	if err := validateWebhookURL(webhook); err != nil {
		return nil, err
	}

	required, err := s.requiredAmount(ctx, p.Amount)
	if err != nil {
		return nil, err
	}
	return s.startMint(ctx, sc, p.Amount, required, wallet, webhook)
}

// requiredAmount converts a BRL issue amount into the XRP collateral a
// mint requires, rounded up to whole drops
func (s *StablecoinService) requiredAmount(ctx context.Context, amount decimal.Decimal) (decimal.Decimal, error) {
	price, err := s.rates.XRPPriceBRL(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to price mint: %w", err)
	}
	if !price.IsPositive() {
		return decimal.Zero, errors.New("exchange rate unavailable")
	}
	return amount.Div(price).RoundCeil(dropPlaces), nil
}

// startMint creates the mint operation, provisions its collection wallet
// and starts watching for deposits. A provisioning failure marks the
// operation FAILED and is returned.
func (s *StablecoinService) startMint(ctx context.Context, sc *business.Stablecoin, amount, required decimal.Decimal, companyWallet, webhookURL string) (*business.Operation, error) {
	now := time.Now().UTC()
	op := &business.Operation{
		ID:                  uuid.New(),
		StablecoinID:        sc.ID,
		CompanyID:           sc.CompanyID,
		Kind:                business.OperationKindMint,
		Status:              business.OperationStatusPending,
		CurrencyCode:        sc.CurrencyCode,
		IssueAmount:         amount,
		RequiredAmount:      required,
		AuthorizedDepositor: companyWallet,
		HolderAddress:       companyWallet,
		WebhookURL:          webhookURL,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := s.queries.CreateOperation(ctx, op); err != nil {
		return nil, &business.PersistenceError{Op: "create operation", Err: err}
	}

	log := s.logger.With(
		zap.String("operation_id", op.ID.String()),
		zap.String("stablecoin_id", sc.ID.String()))

	if _, err := s.lifecycle.Provision(ctx, op); err != nil {
		log.Error("Collection wallet provisioning failed", zap.Error(err))
		cause := err
		if failed, ferr := s.reload(ctx, op.ID); ferr == nil {
			if saved, serr := saveOperation(ctx, s.queries, failed, func(o *business.Operation) error {
				o.ErrorMessage = cause.Error()
				return o.Transition(business.OperationStatusFailed)
			}); serr == nil {
				op = saved
			}
		}
		return op, err
	}

	op, err := s.reload(ctx, op.ID)
	if err != nil {
		return nil, err
	}
	op, err = saveOperation(ctx, s.queries, op, transitionTo(business.OperationStatusRequireDeposit))
	if err != nil {
		return op, err
	}

	if err := s.recon.Watch(ctx, op); err != nil {
		log.Warn("Deposit stream subscription failed, polling fallback only", zap.Error(err))
	}

	log.Info("Mint awaiting deposit",
		zap.String("wallet_address", op.Wallet.Address),
		zap.String("required", op.RequiredAmount.String()),
		zap.String("issue_amount", op.IssueAmount.String()))
	return op, nil
}

// Burn claws back issued tokens from the company wallet. The returned amount
// is the USD equivalent of the burned amount and is informational.
func (s *StablecoinService) Burn(ctx context.Context, caller business.Caller, p params.BurnParams) (*business.Operation, decimal.Decimal, error) {
	sc, err := s.GetStablecoin(ctx, caller, p.StablecoinID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	if p.CurrencyCode != "" && p.CurrencyCode != sc.CurrencyCode {
		return nil, decimal.Zero, business.ErrCurrencyCodeInvalid
	}
	if err := validateAmount("amount", p.Amount); err != nil {
		return nil, decimal.Zero, err
	}
	webhook := p.WebhookURL
	if webhook == "" {
		webhook = sc.WebhookURL
	}
	if err := validateWebhookURL(webhook); err != nil {
		return nil, decimal.Zero, err
	}

	now := time.Now().UTC()
	op := &business.Operation{
		ID:            uuid.New(),
		StablecoinID:  sc.ID,
		CompanyID:     sc.CompanyID,
		Kind:          business.OperationKindBurn,
		Status:        business.OperationStatusPending,
		CurrencyCode:  sc.CurrencyCode,
		IssueAmount:   p.Amount,
		HolderAddress: sc.CompanyWallet,
		WebhookURL:    webhook,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.queries.CreateOperation(ctx, op); err != nil {
		return nil, decimal.Zero, &business.PersistenceError{Op: "create operation", Err: err}
	}

	returnAmount := decimal.Zero
	if rate := s.rates.USDBRL(); rate.IsPositive() {
		returnAmount = p.Amount.Div(rate).Round(dropPlaces)
	}

	reclaimErr := s.settlement.Reclaim(ctx, op, p.Amount)
	if latest, err := s.reload(ctx, op.ID); err == nil {
		op = latest
	}
	return op, returnAmount, reclaimErr
}

// Cancel refunds and cancels every operation of a stablecoin and deactivates it
func (s *StablecoinService) Cancel(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) error {
	if _, err := s.GetStablecoin(ctx, caller, stablecoinID); err != nil {
		return err
	}
	return s.recon.CancelStablecoin(ctx, stablecoinID)
}

// GetStablecoin returns a stablecoin the caller may access
func (s *StablecoinService) GetStablecoin(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Stablecoin, error) {
	sc, err := s.queries.GetStablecoin(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(sc.CompanyID) {
		return nil, &business.AuthorizationError{Subject: id.String(), Reason: "stablecoin belongs to another company"}
	}
	return sc, nil
}

// GetOperation returns an operation the caller may access
func (s *StablecoinService) GetOperation(ctx context.Context, caller business.Caller, id uuid.UUID) (*business.Operation, error) {
	op, err := s.queries.GetOperation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(op.CompanyID) {
		return nil, &business.AuthorizationError{Subject: id.String(), Reason: "operation belongs to another company"}
	}
	return op, nil
}

// ListOperations returns the operations of a stablecoin in creation order
func (s *StablecoinService) ListOperations(ctx context.Context, caller business.Caller, stablecoinID uuid.UUID) ([]*business.Operation, error) {
	if _, err := s.GetStablecoin(ctx, caller, stablecoinID); err != nil {
		return nil, err
	}
	return s.queries.ListOperationsByStablecoin(ctx, stablecoinID)
}

// GetCollectionWalletStatus reports the live balance and funding progress of
// an operation's collection wallet. Ledger read failures degrade to the
// persisted view.
func (s *StablecoinService) GetCollectionWalletStatus(ctx context.Context, caller business.Caller, operationID uuid.UUID) (*business.WalletStatus, error) {
	op, err := s.GetOperation(ctx, caller, operationID)
	if err != nil {
		return nil, err
	}
	if op.Wallet == nil {
		return nil, business.NewValidationError("operation_id", "operation has no collection wallet")
	}

	status := &business.WalletStatus{
		OperationID:         op.ID,
		Address:             op.Wallet.Address,
		Status:              op.Status,
		RequiredAmount:      op.RequiredAmount,
		AccumulatedAmount:   op.AccumulatedAmount,
		ProgressPercent:     op.ProgressPercent(),
		Deposits:            op.Deposits,
		Refunds:             op.Refunds,
		CreationLedgerIndex: op.Wallet.CreationLedgerIndex,
		RetirementTxID:      op.Wallet.RetirementTxID,
		RetiredAt:           op.Wallet.RetiredAt,
	}
	if !op.Wallet.Retired() {
		if balance, err := s.gateway.GetBalance(ctx, op.Wallet.Address); err == nil {
			status.Balance = balance
			status.BalanceAvailable = true
		} else {
			s.logger.Debug("Wallet balance unavailable",
				zap.String("wallet_address", op.Wallet.Address),
				zap.Error(err))
		}
	}
	if index, err := s.gateway.GetValidatedLedgerIndex(ctx); err == nil {
		status.CurrentLedgerIndex = index
	}
	return status, nil
}

func (s *StablecoinService) reload(ctx context.Context, id uuid.UUID) (*business.Operation, error) {
	op, err := s.queries.GetOperation(ctx, id)
	if err != nil {
		return nil, &business.PersistenceError{Op: "reload operation", Err: err}
	}
	return op, nil
}
