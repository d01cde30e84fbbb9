package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// resumeConcurrency bounds concurrent re-subscriptions during Resume
const resumeConcurrency = 8

// ReconciliationConfig holds the amounts that drive deposit reconciliation
type ReconciliationConfig struct {
	Tolerance       decimal.Decimal
	DustThreshold   decimal.Decimal
	ActivationStake decimal.Decimal
}

// ReconciliationService is the deposit reconciliation engine. Push and
// polling notices both enter through RecordDeposit, which is serialized per
// operation and idempotent by transaction id.
type ReconciliationService struct {
	queries db.Querier
	gateway LedgerGateway
	watcher DepositWatcher
	refunds *RefundService
	issuer  Issuer
	config  ReconciliationConfig
	locks   *keyedMutex
	logger  *zap.Logger

	sweeping atomic.Bool
}

// NewReconciliationService creates the reconciliation engine
func NewReconciliationService(
	queries db.Querier,
	gateway LedgerGateway,
	watcher DepositWatcher,
	refunds *RefundService,
	issuer Issuer,
	config ReconciliationConfig,
) *ReconciliationService {
	return &ReconciliationService{
		queries: queries,
		gateway: gateway,
		watcher: watcher,
		refunds: refunds,
		issuer:  issuer,
		config:  config,
		locks:   newKeyedMutex(),
		logger:  logger.Log.With(zap.String("component", "reconciliation")),
	}
}

// Watch routes deposit notices for op's collection wallet into RecordDeposit
func (s *ReconciliationService) Watch(ctx context.Context, op *business.Operation) error {
	if op.Wallet == nil {
		return errNoCollectionWallet
	}
	opID := op.ID
	return s.watcher.Watch(ctx, op.Wallet.Address, func(ctx context.Context, notice business.DepositNotice) {
		s.RecordDeposit(ctx, opID, notice)
	})
}

// RecordDeposit reconciles one deposit notice against an operation. It never
// returns an error: failures are logged and the operation keeps its last
// persisted state so the next notice can re-drive it.
func (s *ReconciliationService) RecordDeposit(ctx context.Context, operationID uuid.UUID, notice business.DepositNotice) {
	unlock := s.locks.Lock(operationID.String())
	defer unlock()

	log := s.logger.With(
		zap.String("operation_id", operationID.String()),
		zap.String("tx_id", notice.TxID),
		zap.String("amount", notice.Amount.String()),
		zap.String("depositor", notice.Depositor))

	op, err := s.queries.GetOperation(ctx, operationID)
	if err != nil {
		log.Error("Deposit for unreadable operation dropped", zap.Error(err))
		return
	}

	if notice.Polled {
		var ok bool
		if notice, ok = s.polledDeposit(op, notice); !ok {
			log.Debug("Polled balance carries no uncredited value")
			return
		}
	} else if op.HasDeposit(notice.TxID) {
		log.Debug("Duplicate deposit ignored")
		return
	}

	if !op.Status.IsAwaitingDeposit() {
		s.handleLateDeposit(ctx, op, notice, log)
		return
	}

	known := notice.Depositor != "" && notice.Depositor != constants.UnknownDepositor
	if known && op.AuthorizedDepositor != "" && notice.Depositor != op.AuthorizedDepositor {
		s.handleUnauthorized(ctx, op, notice, log)
		return
	}

	deposit := business.Deposit{
		Amount:     notice.Amount,
		TxID:       notice.TxID,
		Depositor:  notice.Depositor,
		ObservedAt: time.Now().UTC(),
	}
	if deposit.Depositor == "" {
		deposit.Depositor = constants.UnknownDepositor
	}
	appended, err := s.queries.AppendDeposit(ctx, op.ID, deposit)
	if err != nil {
		log.Error("Failed to record deposit", zap.Error(&business.PersistenceError{Op: "append deposit", Err: err}))
		return
	}
	if !appended {
		log.Debug("Duplicate deposit ignored")
		return
	}

	op, err = s.queries.GetOperation(ctx, operationID)
	if err != nil {
		log.Error("Failed to reload operation after deposit", zap.Error(err))
		return
	}
	log.Info("Deposit recorded",
		zap.String("accumulated", op.AccumulatedAmount.String()),
		zap.String("required", op.RequiredAmount.String()),
		zap.Bool("polled", notice.Polled))

	s.evaluate(ctx, op)
}

// polledDeposit turns a polled balance into the value not yet credited. The
// notice amount is the balance above the activation stake.
func (s *ReconciliationService) polledDeposit(op *business.Operation, notice business.DepositNotice) (business.DepositNotice, bool) {
	delta := notice.Amount.Sub(op.HeldUnrefunded()).Sub(op.AccumulatedAmount)
	if delta.LessThanOrEqual(s.config.DustThreshold) {
		return notice, false
	}

	txID := constants.PollingTxPrefix + notice.Address
	for n := 2; op.HasDeposit(txID); n++ {
		txID = constants.PollingTxPrefix + notice.Address + ":" + strconv.Itoa(n)
	}
	notice.TxID = txID
	notice.Amount = delta
	notice.Depositor = constants.UnknownDepositor
	return notice, true
}

// handleUnauthorized returns a deposit from a sender other than the
// authorized depositor without touching the accumulation
func (s *ReconciliationService) handleUnauthorized(ctx context.Context, op *business.Operation, notice business.DepositNotice, log *zap.Logger) {
	if op.RefundSent(notice.TxID, business.RefundReasonUnauthorized) {
		log.Debug("Unauthorized deposit already refunded")
		return
	}
	authErr := &business.AuthorizationError{Subject: notice.Depositor, Reason: "depositor is not the authorized company wallet"}
	log.Warn("Unauthorized deposit, refunding", zap.Error(authErr))
	s.refunds.Send(ctx, op, notice.Depositor, notice.Amount, business.RefundReasonUnauthorized, notice.TxID)
}

// handleLateDeposit refunds value that arrived after the operation stopped
// accepting collateral. Polled or anonymous value cannot be attributed and
// stays in the wallet.
func (s *ReconciliationService) handleLateDeposit(ctx context.Context, op *business.Operation, notice business.DepositNotice, log *zap.Logger) {
	if notice.Polled || notice.Depositor == "" || notice.Depositor == constants.UnknownDepositor {
		log.Warn("Late deposit without a known sender left in wallet", zap.String("status", string(op.Status)))
		return
	}
	if op.RefundSent(notice.TxID, business.RefundReasonLateDeposit) {
		return
	}
	log.Info("Late deposit, refunding", zap.String("status", string(op.Status)))
	s.refunds.Send(ctx, op, notice.Depositor, notice.Amount, business.RefundReasonLateDeposit, notice.TxID)
}

// evaluate compares the accumulation with the requirement and either keeps
// the operation waiting or confirms it and hands it to the issuer. The
// caller holds the operation lock and op is freshly read.
func (s *ReconciliationService) evaluate(ctx context.Context, op *business.Operation) {
	log := s.logger.With(zap.String("operation_id", op.ID.String()))

	if !op.RequirementMet(s.config.Tolerance) {
		s.keepWaiting(ctx, op, log)
		return
	}

	collateral, err := s.onLedgerCollateral(ctx, op)
	if err != nil {
		log.Warn("Confirmation deferred, balance unavailable", zap.Error(err))
		s.keepWaiting(ctx, op, log)
		return
	}
	slack := s.config.Tolerance.Mul(decimal.NewFromInt(int64(1 + op.SentRefunds())))
	if collateral.Add(slack).LessThan(op.RequiredAmount) {
		log.Warn("Accumulation not backed by wallet balance",
			zap.String("accumulated", op.AccumulatedAmount.String()),
			zap.String("collateral", collateral.String()),
			zap.String("required", op.RequiredAmount.String()))
		s.keepWaiting(ctx, op, log)
		return
	}

	credited := decimal.Min(op.AccumulatedAmount, collateral)
	op, err = saveOperation(ctx, s.queries, op, func(o *business.Operation) error {
		if !o.Status.IsAwaitingDeposit() {
			return fmt.Errorf("%w: %s is no longer awaiting deposit", business.ErrInvalidTransition, o.Status)
		}
		o.ExcessAmount = decimal.Max(decimal.Zero, credited.Sub(o.RequiredAmount))
		return o.Transition(business.OperationStatusDepositConfirmed)
	})
	if err != nil {
		log.Error("Failed to confirm deposit", zap.Error(err))
		return
	}

	log.Info("Deposit confirmed",
		zap.String("accumulated", op.AccumulatedAmount.String()),
		zap.String("excess", op.ExcessAmount.String()))

	if op.Wallet != nil {
		s.watcher.Unwatch(ctx, op.Wallet.Address)
	}
	if err := s.issuer.Issue(ctx, op); err != nil {
		log.Error("Issuance failed", zap.Error(err))
	}
}

// keepWaiting records that the operation still needs collateral
func (s *ReconciliationService) keepWaiting(ctx context.Context, op *business.Operation, log *zap.Logger) {
	next := business.OperationStatusPartialDeposit
	if !op.AccumulatedAmount.IsPositive() {
		next = business.OperationStatusRequireDeposit
	}
	if op.Status == next && next == business.OperationStatusRequireDeposit {
		return
	}
	if _, err := saveOperation(ctx, s.queries, op, transitionTo(next)); err != nil {
		log.Error("Failed to persist deposit progress", zap.Error(err))
		return
	}
	log.Info("Awaiting further deposits",
		zap.String("status", string(next)),
		zap.String("accumulated", op.AccumulatedAmount.String()),
		zap.String("required", op.RequiredAmount.String()))
}

// onLedgerCollateral is the wallet balance less the activation stake and any
// value held back by failed refunds
func (s *ReconciliationService) onLedgerCollateral(ctx context.Context, op *business.Operation) (decimal.Decimal, error) {
	if op.Wallet == nil {
		return decimal.Zero, errNoCollectionWallet
	}
	balance, err := s.gateway.GetBalance(ctx, op.Wallet.Address)
	if err != nil {
		return decimal.Zero, err
	}
	return balance.Sub(s.config.ActivationStake).Sub(op.HeldUnrefunded()), nil
}

// Redrive re-evaluates one awaiting operation whose accumulation already
// meets the requirement
func (s *ReconciliationService) Redrive(ctx context.Context, operationID uuid.UUID) {
	unlock := s.locks.Lock(operationID.String())
	defer unlock()

	op, err := s.queries.GetOperation(ctx, operationID)
	if err != nil {
		s.logger.Error("Failed to read operation for re-drive",
			zap.String("operation_id", operationID.String()),
			zap.Error(err))
		return
	}
	if !op.Status.IsAwaitingDeposit() || !op.RequirementMet(s.config.Tolerance) {
		return
	}
	s.evaluate(ctx, op)
}

// RedriveStalled re-evaluates awaiting operations whose confirmation was
// deferred. It runs on ledger close; overlapping runs are skipped.
func (s *ReconciliationService) RedriveStalled(ctx context.Context, ledgerIndex uint32) {
	if !s.sweeping.CompareAndSwap(false, true) {
		return
	}
	defer s.sweeping.Store(false)

	ops, err := s.queries.ListOperationsAwaitingDeposit(ctx)
	if err != nil {
		s.logger.Error("Failed to list awaiting operations",
			zap.Uint32("ledger_index", ledgerIndex),
			zap.Error(err))
		return
	}
	for _, op := range ops {
		if op.Status.IsAwaitingDeposit() && op.RequirementMet(s.config.Tolerance) {
			s.logger.Debug("Re-driving stalled confirmation",
				zap.String("operation_id", op.ID.String()),
				zap.Uint32("ledger_index", ledgerIndex))
			s.Redrive(ctx, op.ID)
		}
	}
}

// Resume re-subscribes every operation still awaiting collateral and
// re-drives those already funded. Confirmed operations whose issuance
// outcome was never recorded are reported for operator action.
func (s *ReconciliationService) Resume(ctx context.Context) error {
	ops, err := s.queries.ListOperationsAwaitingDeposit(ctx)
	if err != nil {
		return &business.PersistenceError{Op: "list awaiting operations", Err: err}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resumeConcurrency)
	for _, op := range ops {
		if op.Status == business.OperationStatusDepositConfirmed {
			s.logger.Warn("Operation confirmed without recorded issuance outcome, operator action required",
				zap.String("operation_id", op.ID.String()),
				zap.String("stablecoin_id", op.StablecoinID.String()))
			continue
		}
		if !op.Status.IsAwaitingDeposit() {
			continue
		}

		g.Go(func() error {
			if err := s.Watch(gctx, op); err != nil {
				s.logger.Warn("Resubscription incomplete, polling fallback only",
					zap.String("operation_id", op.ID.String()),
					zap.Error(err))
			}
			if op.RequirementMet(s.config.Tolerance) {
				s.Redrive(gctx, op.ID)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("Reconciliation resumed", zap.Int("operations", len(ops)))
	return nil
}

// CancelStablecoin refunds every deposit of every operation against the
// stablecoin in full, cancels the operations and deactivates the stablecoin.
// It is refused once any operation has completed.
func (s *ReconciliationService) CancelStablecoin(ctx context.Context, stablecoinID uuid.UUID) error {
	ops, err := s.queries.ListOperationsByStablecoin(ctx, stablecoinID)
	if err != nil {
		return &business.PersistenceError{Op: "list operations", Err: err}
	}
	for _, op := range ops {
		if op.Status == business.OperationStatusCompleted {
			return business.ErrCancelNotAllowed
		}
	}

	for _, op := range ops {
		if err := s.cancelOperation(ctx, op.ID); err != nil {
			return err
		}
	}

	if err := s.queries.UpdateStablecoinStatus(ctx, stablecoinID, business.StablecoinStatusInactive); err != nil {
		return &business.PersistenceError{Op: "deactivate stablecoin", Err: err}
	}
	s.logger.Info("Stablecoin cancelled",
		zap.String("stablecoin_id", stablecoinID.String()),
		zap.Int("operations", len(ops)))
	return nil
}

func (s *ReconciliationService) cancelOperation(ctx context.Context, operationID uuid.UUID) error {
	unlock := s.locks.Lock(operationID.String())
	defer unlock()

	log := s.logger.With(zap.String("operation_id", operationID.String()))

	op, err := s.queries.GetOperation(ctx, operationID)
	if err != nil {
		return err
	}
	switch op.Status {
	case business.OperationStatusCancelled:
		return nil
	case business.OperationStatusCompleted:
		return business.ErrCancelNotAllowed
	}

	if failed := s.refundForCancellation(ctx, op, log); failed > 0 {
		return &business.LedgerSubmissionError{
			Op:  "cancellation refund",
			Err: fmt.Errorf("%d refunds failed for operation %s", failed, op.ID),
		}
	}

	if op.Wallet != nil {
		s.watcher.Unwatch(ctx, op.Wallet.Address)
	}

	op, err = s.queries.GetOperation(ctx, operationID)
	if err != nil {
		return err
	}
	if _, err := saveOperation(ctx, s.queries, op, transitionTo(business.OperationStatusCancelled)); err != nil {
		if errors.Is(err, business.ErrInvalidTransition) {
			return business.ErrCancelNotAllowed
		}
		return err
	}
	log.Info("Operation cancelled", zap.String("refunded", op.RefundedAmount.String()))
	return nil
}

// refundForCancellation returns every deposit in full, capped by what the
// wallet can still send above its reserve. The balance is re-read before each
// refund because every sent refund also burns a network fee. Deposits with an
// unknown sender go back to the authorized depositor. It returns the number
// of failed refunds.
func (s *ReconciliationService) refundForCancellation(ctx context.Context, op *business.Operation, log *zap.Logger) int {
	if len(op.Deposits) == 0 {
		return 0
	}

	// used only while the balance cannot be read
	tracked := op.AccumulatedAmount

	failed := 0
	for _, d := range op.Deposits {
		if op.RefundSent(d.TxID, business.RefundReasonCancellation) {
			continue
		}
		recipient := d.Depositor
		if !d.KnownDepositor() {
			recipient = op.AuthorizedDepositor
		}
		if recipient == "" {
			log.Warn("Deposit has no refund recipient", zap.String("tx_id", d.TxID))
			continue
		}

		available, err := s.onLedgerCollateral(ctx, op)
		if err != nil {
			log.Warn("Wallet balance unavailable, refunding from recorded deposits", zap.Error(err))
			available = tracked
		}

		amount := decimal.Min(d.Amount, available)
		if amount.LessThanOrEqual(s.config.DustThreshold) {
			log.Warn("Deposit not refundable from remaining balance",
				zap.String("tx_id", d.TxID),
				zap.String("available", available.String()))
			continue
		}
		if amount.LessThan(d.Amount) {
			log.Info("Cancellation refund reduced by network fees",
				zap.String("tx_id", d.TxID),
				zap.String("deposit", d.Amount.String()),
				zap.String("refund", amount.String()))
		}

		r := s.refunds.Send(ctx, op, recipient, amount, business.RefundReasonCancellation, d.TxID)
		if !r.Succeeded() {
			failed++
			continue
		}
		tracked = tracked.Sub(r.Amount).Sub(s.config.Tolerance)
	}
	return failed
}
