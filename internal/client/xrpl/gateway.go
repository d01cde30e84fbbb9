package xrpl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Gateway is the ledger capability surface used by the settlement engine.
// Transactions are signed by the connected rippled and submitted once as a blob.
type Gateway struct {
	rpc    *RPCClient
	stream *Stream
	issuer *Wallet
	logger *zap.Logger
}

// NewGateway wires an RPC client, an optional push stream and the issuer wallet
func NewGateway(rpc *RPCClient, stream *Stream, issuer *Wallet, l *zap.Logger) *Gateway {
	if l == nil {
		l = rpc.logger
	}
	return &Gateway{rpc: rpc, stream: stream, issuer: issuer, logger: l}
}

// GenerateWallet creates a fresh, unfunded keypair
func (g *Gateway) GenerateWallet() (*Wallet, error) {
	return GenerateWallet()
}

// IssuerAddress is the classic address of the stablecoin issuer
func (g *Gateway) IssuerAddress() string {
	return g.issuer.Address
}

// GetBalance returns the validated XRP balance of address
func (g *Gateway) GetBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	balance, _, err := g.rpc.AccountInfo(ctx, address)
	return balance, err
}

// GetSequence returns the next account sequence of address
func (g *Gateway) GetSequence(ctx context.Context, address string) (uint32, error) {
	_, seq, err := g.rpc.AccountInfo(ctx, address)
	return seq, err
}

// GetTrustLines lists trust lines address holds towards the issuer
func (g *Gateway) GetTrustLines(ctx context.Context, address string) ([]TrustLine, error) {
	return g.rpc.AccountLines(ctx, address, g.issuer.Address)
}

// GetValidatedLedgerIndex returns the latest validated ledger index
func (g *Gateway) GetValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	return g.rpc.ValidatedLedgerIndex(ctx)
}

// SubmitPayment sends amount from a wallet whose secret the caller holds
func (g *Gateway) SubmitPayment(ctx context.Context, from *Wallet, to string, amount Amount) (*SubmitResult, error) {
	tx := map[string]interface{}{
		"TransactionType": TxTypePayment,
		"Account":         from.Address,
		"Destination":     to,
		"Amount":          amount,
		"Flags":           tfFullyCanonicalSig,
	}
	return g.submit(ctx, "payment", from.Seed, tx)
}

// SubmitIssuerPayment sends amount signed by the issuer
func (g *Gateway) SubmitIssuerPayment(ctx context.Context, to string, amount Amount) (*SubmitResult, error) {
	return g.SubmitPayment(ctx, g.issuer, to, amount)
}

// SubmitTrustSet opens a holder-side trust line to the issuer. Only the
// holder can sign it.
func (g *Gateway) SubmitTrustSet(ctx context.Context, holder *Wallet, currency string, limit decimal.Decimal) (*SubmitResult, error) {
	tx := map[string]interface{}{
		"TransactionType": TxTypeTrustSet,
		"Account":         holder.Address,
		"LimitAmount":     Issued(currency, g.issuer.Address, limit),
	}
	return g.submit(ctx, "trust_set", holder.Seed, tx)
}

// SubmitClawback reclaims issued currency from holder. The holder address
// travels in the amount's issuer field.
func (g *Gateway) SubmitClawback(ctx context.Context, holder, currency string, value decimal.Decimal) (*SubmitResult, error) {
	tx := map[string]interface{}{
		"TransactionType": TxTypeClawback,
		"Account":         g.issuer.Address,
		"Amount":          Issued(currency, holder, value),
	}
	return g.submit(ctx, "clawback", g.issuer.Seed, tx)
}

// SubmitAccountDelete deletes account and merges its balance into destination.
// The fee is one owner reserve increment.
func (g *Gateway) SubmitAccountDelete(ctx context.Context, account *Wallet, destination string) (*SubmitResult, error) {
	fee, err := g.rpc.OwnerReserveIncrement(ctx)
	if err != nil {
		return nil, &business.LedgerSubmissionError{Op: "account_delete", Err: err}
	}
	tx := map[string]interface{}{
		"TransactionType": TxTypeAccountDelete,
		"Account":         account.Address,
		"Destination":     destination,
		"Fee":             XRP(fee).Drops(),
	}
	return g.submit(ctx, "account_delete", account.Seed, tx)
}

// Subscribe starts push delivery for address. It is a no-op when the stream is disabled.
func (g *Gateway) Subscribe(ctx context.Context, address string) error {
	if g.stream == nil {
		return nil
	}
	return g.stream.Subscribe(ctx, address)
}

// Unsubscribe stops push delivery for address
func (g *Gateway) Unsubscribe(ctx context.Context, address string) error {
	if g.stream == nil {
		return nil
	}
	return g.stream.Unsubscribe(ctx, address)
}

func (g *Gateway) submit(ctx context.Context, op, secret string, tx map[string]interface{}) (*SubmitResult, error) {
	res, err := g.rpc.SubmitAndWait(ctx, secret, tx)
	if err != nil {
		subErr := &business.LedgerSubmissionError{Op: op, Err: err}
		var engErr *EngineError
		if errors.As(err, &engErr) {
			subErr.EngineResult = engErr.Result
			subErr.TxID = engErr.TxID
		}
		return nil, subErr
	}

	g.logger.Info("Ledger transaction validated",
		zap.String("op", op),
		zap.String("account", fmt.Sprint(tx["Account"])),
		zap.String("tx_id", res.TxID),
		zap.Uint32("ledger_index", res.LedgerIndex))
	return res, nil
}

// IsTrustLineMissingResult reports engine results that mean the destination
// has no usable trust line for the issued currency.
func IsTrustLineMissingResult(result string) bool {
	return result == "tecPATH_DRY" || result == "tecNO_LINE" || strings.HasPrefix(result, "tecNO_AUTH")
}
