package services

import (
	"context"
	"errors"
	"time"

	"github.com/fountain/fountain-api/internal/client/xrpl"
	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// dropPlaces is the number of decimal places of one drop
const dropPlaces = 6

var errNoCollectionWallet = errors.New("operation has no collection wallet")

// PlannedRefund is a refund computed but not yet submitted
type PlannedRefund struct {
	Recipient  string
	Amount     decimal.Decimal
	SourceTxID string
}

// RefundService sends value back out of collection wallets and records every
// attempt in the operation's refund history.
type RefundService struct {
	queries db.Querier
	gateway LedgerGateway
	vault   SecretVault
	dust    decimal.Decimal
	logger  *zap.Logger
}

// NewRefundService creates a refund service. Refunds at or below dust are skipped.
func NewRefundService(queries db.Querier, gateway LedgerGateway, vault SecretVault, dust decimal.Decimal) *RefundService {
	return &RefundService{
		queries: queries,
		gateway: gateway,
		vault:   vault,
		dust:    dust,
		logger:  logger.Log.With(zap.String("component", "refund_service")),
	}
}

// PlanExcessRefunds splits excess across known depositors in proportion to
// their deposits' share of the accumulated amount. Entries of the same
// depositor are paid in one refund keyed by the depositor's first deposit.
// Shares are truncated to whole drops; already refunded depositors and
// shares at or below dust are left out.
func PlanExcessRefunds(op *business.Operation, excess, dust decimal.Decimal) []PlannedRefund {
	if !excess.IsPositive() || !op.AccumulatedAmount.IsPositive() {
		return nil
	}

	var plan []PlannedRefund
	byDepositor := make(map[string]int)
	for _, d := range op.Deposits {
		if !d.KnownDepositor() {
			continue
		}
		if i, ok := byDepositor[d.Depositor]; ok {
			plan[i].Amount = plan[i].Amount.Add(d.Amount)
			continue
		}
		byDepositor[d.Depositor] = len(plan)
		plan = append(plan, PlannedRefund{Recipient: d.Depositor, Amount: d.Amount, SourceTxID: d.TxID})
	}

	out := plan[:0]
	for _, p := range plan {
		if op.RefundSent(p.SourceTxID, business.RefundReasonExcess) {
			continue
		}
		p.Amount = excess.Mul(p.Amount).Div(op.AccumulatedAmount).Truncate(dropPlaces)
		if p.Amount.LessThanOrEqual(dust) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// RefundExcess sends the proportional excess refunds for op and returns the
// total that reached the ledger. Individual failures are recorded and do not
// stop the batch.
func (s *RefundService) RefundExcess(ctx context.Context, op *business.Operation) decimal.Decimal {
	plan := PlanExcessRefunds(op, op.ExcessAmount, s.dust)
	total := decimal.Zero
	for _, p := range plan {
		r := s.Send(ctx, op, p.Recipient, p.Amount, business.RefundReasonExcess, p.SourceTxID)
		if r.Succeeded() {
			total = total.Add(r.Amount)
		}
	}

	if len(plan) > 0 {
		s.logger.Info("Excess refunds processed",
			zap.String("operation_id", op.ID.String()),
			zap.String("excess", op.ExcessAmount.String()),
			zap.String("refunded", total.String()),
			zap.Int("refunds", len(plan)))
	}
	return total
}

// Send submits one refund from op's collection wallet and appends the
// attempt to the refund history, both in the store and on op. The returned
// refund carries either the tx id or the failure.
func (s *RefundService) Send(ctx context.Context, op *business.Operation, recipient string, amount decimal.Decimal, reason business.RefundReason, sourceTxID string) business.Refund {
	refund := business.Refund{
		Recipient:  recipient,
		Amount:     amount.Truncate(dropPlaces),
		Reason:     reason,
		SourceTxID: sourceTxID,
		CreatedAt:  time.Now().UTC(),
	}

	txID, err := s.submit(ctx, op, recipient, refund.Amount)
	if err != nil {
		refund.Error = err.Error()
		s.logger.Error("Refund failed",
			zap.String("operation_id", op.ID.String()),
			zap.String("recipient", recipient),
			zap.String("amount", refund.Amount.String()),
			zap.String("reason", string(reason)),
			zap.String("source_tx_id", sourceTxID),
			zap.Error(err))
	} else {
		refund.TxID = txID
		s.logger.Info("Refund sent",
			zap.String("operation_id", op.ID.String()),
			zap.String("recipient", recipient),
			zap.String("amount", refund.Amount.String()),
			zap.String("reason", string(reason)),
			zap.String("tx_id", txID))
	}

	if err := s.queries.AppendRefund(ctx, op.ID, refund); err != nil {
		s.logger.Error("Failed to record refund",
			zap.String("operation_id", op.ID.String()),
			zap.String("tx_id", refund.TxID),
			zap.Error(&business.PersistenceError{Op: "append refund", Err: err}))
	}
	op.Refunds = append(op.Refunds, refund)
	if refund.Succeeded() {
		op.RefundedAmount = op.RefundedAmount.Add(refund.Amount)
	}
	return refund
}

func (s *RefundService) submit(ctx context.Context, op *business.Operation, recipient string, amount decimal.Decimal) (string, error) {
	wallet, err := s.collectionWallet(op)
	if err != nil {
		return "", err
	}
	res, err := s.gateway.SubmitPayment(ctx, wallet, recipient, xrpl.XRP(amount))
	if err != nil {
		return "", err
	}
	return res.TxID, nil
}

// collectionWallet decrypts the signing material of op's collection wallet
func (s *RefundService) collectionWallet(op *business.Operation) (*xrpl.Wallet, error) {
	if op.Wallet == nil || op.Wallet.EncryptedSecret == "" {
		return nil, errNoCollectionWallet
	}
	seed, err := s.vault.Decrypt(op.Wallet.EncryptedSecret)
	if err != nil {
		return nil, err
	}
	return &xrpl.Wallet{Address: op.Wallet.Address, Seed: seed}, nil
}
