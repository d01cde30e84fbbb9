package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// Queries implements Querier on Postgres
type Queries struct {
	db DBTX
}

// New creates Queries over a pool, connection or transaction
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns Queries bound to tx
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

const stablecoinColumns = `id, company_id, client_id, client_name, company_wallet, currency_code,
	issuer_address, deposit_type, webhook_url, status, created_at, updated_at`

const createStablecoin = `INSERT INTO stablecoins (` + stablecoinColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (q *Queries) CreateStablecoin(ctx context.Context, sc *business.Stablecoin) error {
	_, err := q.db.Exec(ctx, createStablecoin,
		sc.ID, sc.CompanyID, sc.ClientID, sc.ClientName, sc.CompanyWallet, sc.CurrencyCode,
		sc.IssuerAddress, sc.DepositType, sc.WebhookURL, string(sc.Status), sc.CreatedAt, sc.UpdatedAt)
	if isUniqueViolation(err) {
		return business.ErrStablecoinExists
	}
	return errors.Wrap(err, "create stablecoin")
}

func scanStablecoin(row pgx.Row) (*business.Stablecoin, error) {
	var sc business.Stablecoin
	var status string
	err := row.Scan(&sc.ID, &sc.CompanyID, &sc.ClientID, &sc.ClientName, &sc.CompanyWallet, &sc.CurrencyCode,
		&sc.IssuerAddress, &sc.DepositType, &sc.WebhookURL, &status, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	sc.Status = business.StablecoinStatus(status)
	return &sc, nil
}

func (q *Queries) GetStablecoin(ctx context.Context, id uuid.UUID) (*business.Stablecoin, error) {
	sc, err := scanStablecoin(q.db.QueryRow(ctx,
		`SELECT `+stablecoinColumns+` FROM stablecoins WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrStablecoinNotFound
	}
	return sc, errors.Wrap(err, "get stablecoin")
}

func (q *Queries) GetStablecoinByCurrencyCode(ctx context.Context, currencyCode string) (*business.Stablecoin, error) {
	sc, err := scanStablecoin(q.db.QueryRow(ctx,
		`SELECT `+stablecoinColumns+` FROM stablecoins WHERE currency_code = $1`, currencyCode))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrStablecoinNotFound
	}
	return sc, errors.Wrap(err, "get stablecoin by currency code")
}

func (q *Queries) UpdateStablecoinStatus(ctx context.Context, id uuid.UUID, status business.StablecoinStatus) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE stablecoins SET status = $2, updated_at = now() WHERE id = $1`, id, string(status))
	if err != nil {
		return errors.Wrap(err, "update stablecoin status")
	}
	if tag.RowsAffected() == 0 {
		return business.ErrStablecoinNotFound
	}
	return nil
}

const operationColumns = `id, stablecoin_id, company_id, kind, status, currency_code,
	issue_amount::text, required_amount::text, accumulated_amount::text, excess_amount::text, refunded_amount::text,
	deposits, refunds, authorized_depositor, holder_address,
	wallet_address, wallet_encrypted_secret, wallet_creation_ledger_index, wallet_activation_tx_id,
	wallet_retirement_tx_id, wallet_retired_at,
	settlement_tx_id, webhook_url, error_message, version, created_at, updated_at`

const createOperation = `INSERT INTO operations (
	id, stablecoin_id, company_id, kind, status, currency_code,
	issue_amount, required_amount, accumulated_amount, excess_amount, refunded_amount,
	deposits, refunds, authorized_depositor, holder_address,
	settlement_tx_id, webhook_url, error_message, version, created_at, updated_at
) VALUES (
	$1, $2, $3, $4, $5, $6,
	$7::numeric, $8::numeric, 0, 0, 0,
	'[]'::jsonb, '[]'::jsonb, $9, $10,
	'', $11, '', 1, $12, $12
)`

func (q *Queries) CreateOperation(ctx context.Context, op *business.Operation) error {
	_, err := q.db.Exec(ctx, createOperation,
		op.ID, op.StablecoinID, op.CompanyID, string(op.Kind), string(op.Status), op.CurrencyCode,
		op.IssueAmount.String(), op.RequiredAmount.String(), op.AuthorizedDepositor, op.HolderAddress,
		op.WebhookURL, op.CreatedAt)
	if err != nil {
		return errors.Wrap(err, "create operation")
	}
	op.Version = 1
	op.UpdatedAt = op.CreatedAt
	return nil
}

func scanOperation(row pgx.Row) (*business.Operation, error) {
	var (
		op                                             business.Operation
		kind, status                                   string
		issue, required, accumulated, excess, refunded string
		deposits, refunds                              []byte
		walletAddress, walletSecret                    pgtype.Text
		activation, retirement                         pgtype.Text
		creationIndex                                  pgtype.Int8
		retiredAt                                      pgtype.Timestamptz
	)

	err := row.Scan(&op.ID, &op.StablecoinID, &op.CompanyID, &kind, &status, &op.CurrencyCode,
		&issue, &required, &accumulated, &excess, &refunded,
		&deposits, &refunds, &op.AuthorizedDepositor, &op.HolderAddress,
		&walletAddress, &walletSecret, &creationIndex, &activation,
		&retirement, &retiredAt,
		&op.SettlementTxID, &op.WebhookURL, &op.ErrorMessage, &op.Version, &op.CreatedAt, &op.UpdatedAt)
	if err != nil {
		return nil, err
	}

	op.Kind = business.OperationKind(kind)
	op.Status = business.OperationStatus(status)
	for _, f := range []struct {
		dst *decimal.Decimal
		src string
	}{
		{&op.IssueAmount, issue},
		{&op.RequiredAmount, required},
		{&op.AccumulatedAmount, accumulated},
		{&op.ExcessAmount, excess},
		{&op.RefundedAmount, refunded},
	} {
		if *f.dst, err = decimal.NewFromString(f.src); err != nil {
			return nil, errors.Wrap(err, "decode amount")
		}
	}
	if err := json.Unmarshal(deposits, &op.Deposits); err != nil {
		return nil, errors.Wrap(err, "decode deposits")
	}
	if err := json.Unmarshal(refunds, &op.Refunds); err != nil {
		return nil, errors.Wrap(err, "decode refunds")
	}

	if walletAddress.Valid {
		w := &business.CollectionWallet{
			Address:         walletAddress.String,
			EncryptedSecret: walletSecret.String,
			ActivationTxID:  activation.String,
			RetirementTxID:  retirement.String,
		}
		if creationIndex.Valid {
			w.CreationLedgerIndex = uint32(creationIndex.Int64)
		}
		if retiredAt.Valid {
			t := retiredAt.Time
			w.RetiredAt = &t
		}
		op.Wallet = w
	}
	return &op, nil
}

func (q *Queries) listOperations(ctx context.Context, query string, args ...interface{}) ([]*business.Operation, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []*business.Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (q *Queries) GetOperation(ctx context.Context, id uuid.UUID) (*business.Operation, error) {
	op, err := scanOperation(q.db.QueryRow(ctx,
		`SELECT `+operationColumns+` FROM operations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, business.ErrOperationNotFound
	}
	return op, errors.Wrap(err, "get operation")
}

func (q *Queries) ListOperationsByStablecoin(ctx context.Context, stablecoinID uuid.UUID) ([]*business.Operation, error) {
	ops, err := q.listOperations(ctx,
		`SELECT `+operationColumns+` FROM operations WHERE stablecoin_id = $1 ORDER BY created_at`, stablecoinID)
	return ops, errors.Wrap(err, "list operations by stablecoin")
}

func (q *Queries) ListOperationsAwaitingDeposit(ctx context.Context) ([]*business.Operation, error) {
	ops, err := q.listOperations(ctx,
		`SELECT `+operationColumns+` FROM operations
		WHERE status IN ($1, $2, $3, $4) AND wallet_address IS NOT NULL
		ORDER BY created_at`,
		string(business.OperationStatusRequireDeposit), string(business.OperationStatusWaitingPayment),
		string(business.OperationStatusPartialDeposit), string(business.OperationStatusDepositConfirmed))
	return ops, errors.Wrap(err, "list operations awaiting deposit")
}

func (q *Queries) ListRetirableOperations(ctx context.Context, maxCreationLedgerIndex uint32) ([]*business.Operation, error) {
	ops, err := q.listOperations(ctx,
		`SELECT `+operationColumns+` FROM operations
		WHERE wallet_address IS NOT NULL
		  AND wallet_retired_at IS NULL
		  AND wallet_creation_ledger_index IS NOT NULL
		  AND wallet_creation_ledger_index <= $1
		  AND status IN ($2, $3)
		ORDER BY wallet_creation_ledger_index`,
		int64(maxCreationLedgerIndex),
		string(business.OperationStatusCompleted), string(business.OperationStatusCancelled))
	return ops, errors.Wrap(err, "list retirable operations")
}

func (q *Queries) SaveOperationState(ctx context.Context, op *business.Operation) error {
	now := time.Now().UTC()
	tag, err := q.db.Exec(ctx,
		`UPDATE operations
		SET status = $3, excess_amount = $4::numeric, settlement_tx_id = $5, error_message = $6,
		    version = version + 1, updated_at = $7
		WHERE id = $1 AND version = $2`,
		op.ID, op.Version, string(op.Status), op.ExcessAmount.String(), op.SettlementTxID, op.ErrorMessage, now)
	if err != nil {
		return errors.Wrap(err, "save operation state")
	}
	if tag.RowsAffected() == 0 {
		return business.ErrStaleOperation
	}
	op.Version++
	op.UpdatedAt = now
	return nil
}

func (q *Queries) AppendDeposit(ctx context.Context, operationID uuid.UUID, d business.Deposit) (bool, error) {
	entry, err := json.Marshal([]business.Deposit{d})
	if err != nil {
		return false, errors.Wrap(err, "encode deposit")
	}

	tag, err := q.db.Exec(ctx,
		`UPDATE operations
		SET deposits = deposits || $2::jsonb,
		    accumulated_amount = accumulated_amount + $3::numeric,
		    version = version + 1, updated_at = now()
		WHERE id = $1
		  AND NOT deposits @> jsonb_build_array(jsonb_build_object('tx_id', $4::text))`,
		operationID, string(entry), d.Amount.String(), d.TxID)
	if err != nil {
		return false, errors.Wrap(err, "append deposit")
	}
	if tag.RowsAffected() == 1 {
		return true, nil
	}

	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM operations WHERE id = $1)`, operationID).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "append deposit")
	}
	if !exists {
		return false, business.ErrOperationNotFound
	}
	return false, nil
}

func (q *Queries) AppendRefund(ctx context.Context, operationID uuid.UUID, r business.Refund) error {
	entry, err := json.Marshal([]business.Refund{r})
	if err != nil {
		return errors.Wrap(err, "encode refund")
	}
	sent := decimal.Zero
	if r.Succeeded() {
		sent = r.Amount
	}

	tag, err := q.db.Exec(ctx,
		`UPDATE operations
		SET refunds = refunds || $2::jsonb,
		    refunded_amount = refunded_amount + $3::numeric,
		    version = version + 1, updated_at = now()
		WHERE id = $1`,
		operationID, string(entry), sent.String())
	if err != nil {
		return errors.Wrap(err, "append refund")
	}
	if tag.RowsAffected() == 0 {
		return business.ErrOperationNotFound
	}
	return nil
}

func (q *Queries) UpdateOperationWallet(ctx context.Context, operationID uuid.UUID, w *business.CollectionWallet) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE operations
		SET wallet_address = $2, wallet_encrypted_secret = $3, wallet_creation_ledger_index = $4,
		    wallet_activation_tx_id = $5, version = version + 1, updated_at = now()
		WHERE id = $1 AND wallet_retired_at IS NULL`,
		operationID, w.Address, w.EncryptedSecret, int64(w.CreationLedgerIndex), w.ActivationTxID)
	if err != nil {
		return errors.Wrap(err, "update operation wallet")
	}
	if tag.RowsAffected() == 0 {
		return business.ErrOperationNotFound
	}
	return nil
}

func (q *Queries) MarkWalletRetired(ctx context.Context, operationID uuid.UUID, txID string, at time.Time) error {
	tag, err := q.db.Exec(ctx,
		`UPDATE operations
		SET wallet_retirement_tx_id = $2, wallet_retired_at = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND wallet_address IS NOT NULL AND wallet_retired_at IS NULL`,
		operationID, txID, at)
	if err != nil {
		return errors.Wrap(err, "mark wallet retired")
	}
	if tag.RowsAffected() == 0 {
		return business.ErrWalletNotRetirable
	}
	return nil
}
