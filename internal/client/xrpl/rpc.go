package xrpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	httpclient "github.com/fountain/fountain-api/internal/client/http"
	"github.com/fountain/fountain-api/internal/logger"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultLedgerWindow     = 20
	defaultValidationPoll   = time.Second
	defaultFeeMultiplierMax = 1000
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTxExpired       = errors.New("transaction expired before validation")
)

// RPCError is an error status returned by a rippled JSON-RPC method
type RPCError struct {
	Method  string
	Code    string
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rippled %s: %s (%s)", e.Method, e.Code, e.Message)
}

// EngineError is a non-success transaction engine result
type EngineError struct {
	Result  string
	Message string
	TxID    string
}

func (e *EngineError) Error() string {
	if e.Message == "" {
		return e.Result
	}
	return e.Result + ": " + e.Message
}

// RPCClient speaks rippled JSON-RPC. Read-only methods are retried on
// transport failures; submit is sent exactly once.
type RPCClient struct {
	http           *httpclient.HTTPClient
	submitHTTP     *httpclient.HTTPClient
	accounts       *accountLocks
	logger         *zap.Logger
	ledgerWindow   uint32
	validationPoll time.Duration
}

// RPCOption configures an RPCClient
type RPCOption func(*RPCClient)

// WithLedgerWindow sets how many ledgers a submitted transaction stays valid for
func WithLedgerWindow(n uint32) RPCOption {
	return func(c *RPCClient) {
		c.ledgerWindow = n
	}
}

// WithValidationPoll sets the interval between tx lookups while waiting for validation
func WithValidationPoll(d time.Duration) RPCOption {
	return func(c *RPCClient) {
		c.validationPoll = d
	}
}

// WithRPCLogger overrides the client logger
func WithRPCLogger(l *zap.Logger) RPCOption {
	return func(c *RPCClient) {
		c.logger = l
	}
}

// NewRPCClient creates a JSON-RPC client throttled to rps requests per second
func NewRPCClient(url string, rps float64, opts ...RPCOption) *RPCClient {
	c := &RPCClient{
		logger:         logger.Log,
		ledgerWindow:   defaultLedgerWindow,
		validationPoll: defaultValidationPoll,
		accounts:       newAccountLocks(),
	}
	for _, opt := range opts {
		opt(c)
	}

	httpOpts := []httpclient.ClientOption{
		httpclient.WithBaseURL(url),
		httpclient.WithTimeout(20 * time.Second),
		httpclient.WithLogger(c.logger),
	}
	if rps > 0 {
		// one limiter shared by both clients
		httpOpts = append(httpOpts, httpclient.WithMiddleware(httpclient.RateLimitMiddleware(rps, int(rps)+1)))
	}
	c.http = httpclient.NewHTTPClient(httpOpts...)
	c.submitHTTP = httpclient.NewHTTPClient(append(httpOpts, httpclient.WithRetryConfig(nil))...)
	return c
}

func (c *RPCClient) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	return c.callWith(ctx, c.http, method, params, out)
}

func (c *RPCClient) callWith(ctx context.Context, client *httpclient.HTTPClient, method string, params interface{}, out interface{}) error {
	resp, err := client.Post(ctx, "", rpcRequest{Method: method, Params: []interface{}{params}})
	if err != nil {
		return fmt.Errorf("rippled %s: %w", method, err)
	}

	var env rpcEnvelope
	if err := client.ProcessJSONResponse(resp, &env); err != nil {
		return fmt.Errorf("rippled %s: failed to decode response: %w", method, err)
	}

	var status rpcStatus
	if err := json.Unmarshal(env.Result, &status); err != nil {
		return fmt.Errorf("rippled %s: failed to decode status: %w", method, err)
	}
	if status.Status == "error" || status.Error != "" {
		rpcErr := &RPCError{Method: method, Code: status.Error, Message: status.ErrorMessage}
		if status.Error == "actNotFound" {
			return fmt.Errorf("%w: %v", ErrAccountNotFound, rpcErr)
		}
		return rpcErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("rippled %s: failed to decode result: %w", method, err)
	}
	return nil
}

// AccountInfo returns the validated XRP balance and next sequence of address
func (c *RPCClient) AccountInfo(ctx context.Context, address string) (decimal.Decimal, uint32, error) {
	var res accountInfoResult
	err := c.call(ctx, "account_info", map[string]interface{}{
		"account":      address,
		"ledger_index": "validated",
	}, &res)
	if err != nil {
		return decimal.Zero, 0, err
	}

	balance, err := DropsToXRP(res.AccountData.Balance)
	if err != nil {
		return decimal.Zero, 0, err
	}
	return balance, res.AccountData.Sequence, nil
}

// AccountLines lists trust lines held by address, following markers
func (c *RPCClient) AccountLines(ctx context.Context, address, peer string) ([]TrustLine, error) {
	var lines []TrustLine
	var marker json.RawMessage

	for {
		params := map[string]interface{}{
			"account":      address,
			"ledger_index": "validated",
		}
		if peer != "" {
			params["peer"] = peer
		}
		if len(marker) > 0 {
			params["marker"] = marker
		}

		var res accountLinesResult
		if err := c.call(ctx, "account_lines", params, &res); err != nil {
			return nil, err
		}

		for _, l := range res.Lines {
			balance, err := decimal.NewFromString(l.Balance)
			if err != nil {
				return nil, fmt.Errorf("invalid trust line balance %q: %w", l.Balance, err)
			}
			limit, err := decimal.NewFromString(l.Limit)
			if err != nil {
				return nil, fmt.Errorf("invalid trust line limit %q: %w", l.Limit, err)
			}
			lines = append(lines, TrustLine{Account: l.Account, Currency: l.Currency, Balance: balance, Limit: limit})
		}

		if len(res.Marker) == 0 || string(res.Marker) == "null" {
			return lines, nil
		}
		marker = res.Marker
	}
}

// ValidatedLedgerIndex returns the index of the latest validated ledger
func (c *RPCClient) ValidatedLedgerIndex(ctx context.Context) (uint32, error) {
	var res ledgerResult
	if err := c.call(ctx, "ledger", map[string]interface{}{"ledger_index": "validated"}, &res); err != nil {
		return 0, err
	}
	return res.LedgerIndex, nil
}

// OwnerReserveIncrement returns the per-object reserve, which is also the
// fee charged for an AccountDelete.
func (c *RPCClient) OwnerReserveIncrement(ctx context.Context) (decimal.Decimal, error) {
	var res serverInfoResult
	if err := c.call(ctx, "server_info", map[string]interface{}{}, &res); err != nil {
		return decimal.Zero, err
	}
	inc := decimal.NewFromFloat(res.Info.ValidatedLedger.ReserveIncXRP)
	if !inc.IsPositive() {
		return decimal.Zero, errors.New("server_info reported no reserve increment")
	}
	return inc, nil
}

// SubmitAndWait signs tx with secret, submits the signed blob once and
// blocks until it is validated or its LastLedgerSequence passes. Submissions
// from one account are serialised and carry an explicit Sequence, so the
// transaction hash is fixed before anything reaches the network. When the
// submit response is lost the outcome is read back by hash.
func (c *RPCClient) SubmitAndWait(ctx context.Context, secret string, tx map[string]interface{}) (*SubmitResult, error) {
	account, _ := tx["Account"].(string)
	unlock := c.accounts.Lock(account)
	defer unlock()

	current, err := c.ValidatedLedgerIndex(ctx)
	if err != nil {
		return nil, err
	}
	lastLedger := current + c.ledgerWindow
	tx["LastLedgerSequence"] = lastLedger

	if _, set := tx["Sequence"]; !set {
		_, seq, err := c.AccountInfo(ctx, account)
		if err != nil {
			return nil, err
		}
		tx["Sequence"] = seq
	}

	var signed signResult
	err = c.call(ctx, "sign", map[string]interface{}{
		"secret":       secret,
		"tx_json":      tx,
		"fee_mult_max": defaultFeeMultiplierMax,
	}, &signed)
	if err != nil {
		return nil, err
	}
	txID := signed.TxJSON.Hash
	if signed.TxBlob == "" || txID == "" {
		return nil, fmt.Errorf("rippled sign: empty blob or hash for %v", tx["TransactionType"])
	}

	var res submitResult
	err = c.callWith(ctx, c.submitHTTP, "submit", map[string]interface{}{"tx_blob": signed.TxBlob}, &res)
	switch {
	case err == nil:
		if !submitAccepted(res.EngineResult) {
			return nil, &EngineError{Result: res.EngineResult, Message: res.EngineResultMessage, TxID: txID}
		}
	case isRPCError(err):
		return nil, err
	default:
		c.logger.Warn("Submit outcome unknown, resolving by hash",
			zap.String("tx_id", txID),
			zap.Uint32("last_ledger_sequence", lastLedger),
			zap.Error(err))
	}

	c.logger.Debug("Transaction submitted",
		zap.String("tx_type", fmt.Sprint(tx["TransactionType"])),
		zap.String("tx_id", txID),
		zap.String("engine_result", res.EngineResult),
		zap.Uint32("last_ledger_sequence", lastLedger))

	return c.waitForValidation(ctx, txID, lastLedger)
}

func submitAccepted(result string) bool {
	return result == ResultSuccess || result == ResultQueued || result == ResultAlreadyQueued
}

func isRPCError(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr)
}

func (c *RPCClient) waitForValidation(ctx context.Context, txID string, lastLedger uint32) (*SubmitResult, error) {
	var out *SubmitResult

	poll := func() error {
		var res txResult
		err := c.call(ctx, "tx", map[string]interface{}{"transaction": txID}, &res)
		if err != nil && !isTxNotFound(err) {
			return err
		}

		if err == nil && res.Validated {
			if res.Meta.TransactionResult != ResultSuccess {
				return backoff.Permanent(&EngineError{Result: res.Meta.TransactionResult, TxID: txID})
			}
			out = &SubmitResult{TxID: txID, EngineResult: res.Meta.TransactionResult, LedgerIndex: res.LedgerIndex}
			return nil
		}

		current, lerr := c.ValidatedLedgerIndex(ctx)
		if lerr == nil && current > lastLedger {
			return backoff.Permanent(fmt.Errorf("%w: %s", ErrTxExpired, txID))
		}
		return errors.New("transaction not yet validated")
	}

	err := backoff.Retry(poll, backoff.WithContext(backoff.NewConstantBackOff(c.validationPoll), ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("waiting for %s: %w", txID, ctxErr)
		}
		return nil, err
	}
	return out, nil
}

func isTxNotFound(err error) bool {
	var rpcErr *RPCError
	return errors.As(err, &rpcErr) && strings.EqualFold(rpcErr.Code, "txnNotFound")
}
