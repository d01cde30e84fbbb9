package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultRetirementConcurrency = 4

// LifecycleConfig configures collection wallet provisioning and retirement
type LifecycleConfig struct {
	ActivationStake     decimal.Decimal
	RetirementLedgerAge uint32
	Concurrency         int
}

// WalletLifecycleService creates, funds and retires collection wallets.
// Retirement is gated on ledger index age, never on wall-clock time.
type WalletLifecycleService struct {
	queries db.Querier
	gateway LedgerGateway
	vault   SecretVault
	config  LifecycleConfig
	logger  *zap.Logger

	sweeping atomic.Bool
}

// NewWalletLifecycleService creates the wallet lifecycle manager. The
// retirement age never drops below the ledger's own deletion floor.
func NewWalletLifecycleService(queries db.Querier, gateway LedgerGateway, vault SecretVault, config LifecycleConfig) *WalletLifecycleService {
	if config.RetirementLedgerAge < constants.MinWalletRetirementLedgerAge {
		config.RetirementLedgerAge = constants.MinWalletRetirementLedgerAge
	}
	if config.Concurrency <= 0 {
		config.Concurrency = defaultRetirementConcurrency
	}
	return &WalletLifecycleService{
		queries: queries,
		gateway: gateway,
		vault:   vault,
		config:  config,
		logger:  logger.Log.With(zap.String("component", "wallet_lifecycle")),
	}
}

// Provision generates a collection wallet for op, persists its encrypted
// secret and funds it with the activation stake from the issuer. A funding
// failure is returned to the caller.
func (s *WalletLifecycleService) Provision(ctx context.Context, op *business.Operation) (*business.CollectionWallet, error) {
	wallet, err := s.gateway.GenerateWallet()
	if err != nil {
		return nil, fmt.Errorf("failed to generate collection wallet: %w", err)
	}
	secret, err := s.vault.Encrypt(wallet.Seed)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt collection wallet secret: %w", err)
	}
	index, err := s.gateway.GetValidatedLedgerIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read validated ledger index: %w", err)
	}

	cw := &business.CollectionWallet{
		Address:             wallet.Address,
		EncryptedSecret:     secret,
		CreationLedgerIndex: index,
	}
	// persisted before funding so the secret of a funded wallet is never lost
	if err := s.queries.UpdateOperationWallet(ctx, op.ID, cw); err != nil {
		return nil, &business.PersistenceError{Op: "store collection wallet", Err: err}
	}

	res, err := s.gateway.SubmitIssuerPayment(ctx, wallet.Address, xrpl.XRP(s.config.ActivationStake))
	if err != nil {
		return nil, fmt.Errorf("failed to fund collection wallet: %w", err)
	}
	cw.ActivationTxID = res.TxID
	if res.LedgerIndex > 0 {
		cw.CreationLedgerIndex = res.LedgerIndex
	}
	if err := s.queries.UpdateOperationWallet(ctx, op.ID, cw); err != nil {
		return nil, &business.PersistenceError{Op: "store wallet activation", Err: err}
	}

	op.Wallet = cw
	s.logger.Info("Collection wallet provisioned",
		zap.String("operation_id", op.ID.String()),
		zap.String("wallet_address", cw.Address),
		zap.Uint32("ledger_index", cw.CreationLedgerIndex),
		zap.String("tx_id", cw.ActivationTxID))
	return cw, nil
}

// Retire deletes the collection wallet of a settled operation, merging its
// balance to the issuer, once the wallet is old enough
func (s *WalletLifecycleService) Retire(ctx context.Context, operationID uuid.UUID) error {
	current, err := s.gateway.GetValidatedLedgerIndex(ctx)
	if err != nil {
		return err
	}
	op, err := s.queries.GetOperation(ctx, operationID)
	if err != nil {
		return err
	}
	return s.retire(ctx, op, current)
}

func (s *WalletLifecycleService) retire(ctx context.Context, op *business.Operation, current uint32) error {
	w := op.Wallet
	if w == nil || w.Retired() {
		return fmt.Errorf("%w: no active wallet", business.ErrWalletNotRetirable)
	}
	if op.Status != business.OperationStatusCompleted && op.Status != business.OperationStatusCancelled {
		return fmt.Errorf("%w: operation is %s", business.ErrWalletNotRetirable, op.Status)
	}
	if w.CreationLedgerIndex == 0 || current < w.CreationLedgerIndex+s.config.RetirementLedgerAge {
		return fmt.Errorf("%w: wallet created at ledger %d, current %d", business.ErrWalletNotRetirable, w.CreationLedgerIndex, current)
	}

	log := s.logger.With(
		zap.String("operation_id", op.ID.String()),
		zap.String("wallet_address", w.Address),
		zap.Uint32("ledger_index", current))

	seq, err := s.gateway.GetSequence(ctx, w.Address)
	if errors.Is(err, xrpl.ErrAccountNotFound) {
		log.Warn("Collection wallet absent from ledger, marking retired")
		return s.queries.MarkWalletRetired(ctx, op.ID, "", time.Now().UTC())
	}
	if err != nil {
		return err
	}
	if current < seq+constants.MinWalletRetirementLedgerAge {
		return fmt.Errorf("%w: account sequence %d too recent", business.ErrWalletNotRetirable, seq)
	}

	seed, err := s.vault.Decrypt(w.EncryptedSecret)
	if err != nil {
		return fmt.Errorf("failed to decrypt collection wallet secret: %w", err)
	}
	res, err := s.gateway.SubmitAccountDelete(ctx, &xrpl.Wallet{Address: w.Address, Seed: seed}, s.gateway.IssuerAddress())
	if err != nil {
		return err
	}
	if err := s.queries.MarkWalletRetired(ctx, op.ID, res.TxID, time.Now().UTC()); err != nil {
		log.Error("Wallet deleted but retirement not recorded", zap.String("tx_id", res.TxID), zap.Error(err))
		return &business.PersistenceError{Op: "mark wallet retired", Err: err}
	}

	log.Info("Collection wallet retired", zap.String("tx_id", res.TxID))
	return nil
}

// OnLedgerClosed retires every eligible wallet at ledgerIndex. Failures are
// logged and retried on a later ledger; overlapping sweeps are skipped.
func (s *WalletLifecycleService) OnLedgerClosed(ctx context.Context, ledgerIndex uint32) {
	if _, err := s.Sweep(ctx, ledgerIndex); err != nil {
		s.logger.Error("Retirement sweep failed",
			zap.Uint32("ledger_index", ledgerIndex),
			zap.Error(err))
	}
}

// Sweep runs one retirement pass and returns how many wallets were retired
func (s *WalletLifecycleService) Sweep(ctx context.Context, ledgerIndex uint32) (int, error) {
	if ledgerIndex < s.config.RetirementLedgerAge {
		return 0, nil
	}
	if !s.sweeping.CompareAndSwap(false, true) {
		return 0, nil
	}
	defer s.sweeping.Store(false)

	ops, err := s.queries.ListRetirableOperations(ctx, ledgerIndex-s.config.RetirementLedgerAge)
	if err != nil {
		return 0, &business.PersistenceError{Op: "list retirable operations", Err: err}
	}
	if len(ops) == 0 {
		return 0, nil
	}

	var retired atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)
	for _, op := range ops {
		g.Go(func() error {
			err := s.retire(gctx, op, ledgerIndex)
			switch {
			case err == nil:
				retired.Add(1)
			case errors.Is(err, business.ErrWalletNotRetirable):
				s.logger.Debug("Wallet not yet retirable",
					zap.String("operation_id", op.ID.String()),
					zap.Error(err))
			default:
				s.logger.Warn("Wallet retirement failed, will retry",
					zap.String("operation_id", op.ID.String()),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Retirement sweep finished",
		zap.Uint32("ledger_index", ledgerIndex),
		zap.Int("candidates", len(ops)),
		zap.Int32("retired", retired.Load()))
	return int(retired.Load()), nil
}
