package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/constants"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SettlementService issues tokens once collateral is confirmed and reclaims
// them on redemption. Failures end the operation in FAILED and are never
// retried automatically.
type SettlementService struct {
	queries  db.Querier
	gateway  LedgerGateway
	refunds  *RefundService
	notifier Notifier
	logger   *zap.Logger
}

// NewSettlementService creates the settlement executor
func NewSettlementService(queries db.Querier, gateway LedgerGateway, refunds *RefundService, notifier Notifier) *SettlementService {
	return &SettlementService{
		queries:  queries,
		gateway:  gateway,
		refunds:  refunds,
		notifier: notifier,
		logger:   logger.Log.With(zap.String("component", "settlement")),
	}
}

// Issue mints op.IssueAmount to the holder, completes the operation, refunds
// the excess and publishes mint.completed.
func (s *SettlementService) Issue(ctx context.Context, op *business.Operation) error {
	log := s.logger.With(
		zap.String("operation_id", op.ID.String()),
		zap.String("currency_code", op.CurrencyCode),
		zap.String("holder", op.HolderAddress))

	if err := s.checkTrustLine(ctx, op); err != nil {
		return s.fail(ctx, op, constants.EventMintCompleted, err)
	}

	amount := xrpl.Issued(op.CurrencyCode, s.gateway.IssuerAddress(), op.IssueAmount)
	res, err := s.gateway.SubmitIssuerPayment(ctx, op.HolderAddress, amount)
	if err != nil {
		var subErr *business.LedgerSubmissionError
		if errors.As(err, &subErr) && xrpl.IsTrustLineMissingResult(subErr.EngineResult) {
			err = fmt.Errorf("%w: %v", business.ErrTrustLineMissing, err)
		}
		return s.fail(ctx, op, constants.EventMintCompleted, err)
	}

	op, err = saveOperation(ctx, s.queries, op, func(o *business.Operation) error {
		if err := o.Transition(business.OperationStatusCompleted); err != nil {
			return err
		}
		o.SettlementTxID = res.TxID
		return nil
	})
	if err != nil {
		// the tokens are on the ledger; the operation stays confirmed for operator review
		log.Error("Issued tokens but failed to record completion",
			zap.String("tx_id", res.TxID),
			zap.Error(err))
		return err
	}
	log.Info("Stablecoin issued",
		zap.String("amount", op.IssueAmount.String()),
		zap.String("tx_id", res.TxID))

	if err := s.queries.UpdateStablecoinStatus(ctx, op.StablecoinID, business.StablecoinStatusActive); err != nil {
		log.Error("Failed to activate stablecoin", zap.Error(err))
	}

	refunded := s.refunds.RefundExcess(ctx, op)
	s.notify(ctx, op, constants.EventMintCompleted, op.IssueAmount, refunded)
	return nil
}

// Reclaim claws amount back from the holder of a burn operation and
// publishes burn.completed.
func (s *SettlementService) Reclaim(ctx context.Context, op *business.Operation, amount decimal.Decimal) error {
	res, err := s.gateway.SubmitClawback(ctx, op.HolderAddress, op.CurrencyCode, amount)
	if err != nil {
		return s.fail(ctx, op, constants.EventBurnCompleted, err)
	}

	op, err = saveOperation(ctx, s.queries, op, func(o *business.Operation) error {
		if err := o.Transition(business.OperationStatusCompleted); err != nil {
			return err
		}
		o.SettlementTxID = res.TxID
		return nil
	})
	if err != nil {
		s.logger.Error("Clawback validated but failed to record completion",
			zap.String("operation_id", op.ID.String()),
			zap.String("tx_id", res.TxID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Stablecoin reclaimed",
		zap.String("operation_id", op.ID.String()),
		zap.String("amount", amount.String()),
		zap.String("tx_id", res.TxID))
	s.notify(ctx, op, constants.EventBurnCompleted, amount, decimal.Zero)
	return nil
}

// checkTrustLine requires a holder trust line for the currency with room
// for the issue amount
func (s *SettlementService) checkTrustLine(ctx context.Context, op *business.Operation) error {
	lines, err := s.gateway.GetTrustLines(ctx, op.HolderAddress)
	if err != nil {
		if errors.Is(err, xrpl.ErrAccountNotFound) {
			return fmt.Errorf("%w: holder account not found", business.ErrTrustLineMissing)
		}
		return err
	}
	for _, line := range lines {
		if line.Currency != op.CurrencyCode {
			continue
		}
		if line.Limit.Sub(line.Balance).GreaterThanOrEqual(op.IssueAmount) {
			return nil
		}
		return fmt.Errorf("%w: limit %s with balance %s cannot receive %s",
			business.ErrTrustLineMissing, line.Limit, line.Balance, op.IssueAmount)
	}
	return business.ErrTrustLineMissing
}

// fail moves op to FAILED, records the cause and publishes the outcome. It
// returns cause.
func (s *SettlementService) fail(ctx context.Context, op *business.Operation, event string, cause error) error {
	log := s.logger.With(zap.String("operation_id", op.ID.String()))
	log.Error("Settlement failed", zap.String("event", event), zap.Error(cause))

	saved, err := saveOperation(ctx, s.queries, op, func(o *business.Operation) error {
		if err := o.Transition(business.OperationStatusFailed); err != nil {
			return err
		}
		o.ErrorMessage = cause.Error()
		return nil
	})
	if err != nil {
		log.Error("Failed to record settlement failure", zap.Error(err))
		return cause
	}
	s.notify(ctx, saved, event, saved.IssueAmount, decimal.Zero)
	return cause
}

func (s *SettlementService) notify(ctx context.Context, op *business.Operation, event string, amount, refunded decimal.Decimal) {
	if s.notifier == nil {
		return
	}
	ev := business.OutcomeEvent{
		Event:          event,
		OperationID:    op.ID,
		StablecoinID:   op.StablecoinID,
		CompanyID:      op.CompanyID,
		CurrencyCode:   op.CurrencyCode,
		Status:         op.Status,
		Amount:         amount,
		SettlementTxID: op.SettlementTxID,
		WebhookURL:     op.WebhookURL,
		OccurredAt:     time.Now().UTC(),
	}
	if op.Kind == business.OperationKindMint {
		ev.Collateral = op.AccumulatedAmount
		ev.ExcessRefunded = refunded
	}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Warn("Outcome notification failed",
			zap.String("operation_id", op.ID.String()),
			zap.String("event", event),
			zap.Error(err))
	}
}
