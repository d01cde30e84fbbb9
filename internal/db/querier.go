package db

import (
	"context"
	"time"

	"github.com/fountain/fountain-api/internal/types/business"
	"github.com/google/uuid"
)

//go:generate mockgen -source=querier.go -destination=../mocks/mock_querier.go -package=mocks

// Querier is the persistence surface of the settlement engine. Appends are
// atomic per operation; SaveOperationState is a compare-and-set on Version.
type Querier interface {
	CreateStablecoin(ctx context.Context, sc *business.Stablecoin) error
	GetStablecoin(ctx context.Context, id uuid.UUID) (*business.Stablecoin, error)
	GetStablecoinByCurrencyCode(ctx context.Context, currencyCode string) (*business.Stablecoin, error)
	UpdateStablecoinStatus(ctx context.Context, id uuid.UUID, status business.StablecoinStatus) error

	CreateOperation(ctx context.Context, op *business.Operation) error
	GetOperation(ctx context.Context, id uuid.UUID) (*business.Operation, error)
	ListOperationsByStablecoin(ctx context.Context, stablecoinID uuid.UUID) ([]*business.Operation, error)
	ListOperationsAwaitingDeposit(ctx context.Context) ([]*business.Operation, error)
	ListRetirableOperations(ctx context.Context, maxCreationLedgerIndex uint32) ([]*business.Operation, error)

	// SaveOperationState persists status, excess, settlement and error fields
	// when the stored version still equals op.Version, then bumps op.Version.
	SaveOperationState(ctx context.Context, op *business.Operation) error
	// AppendDeposit appends d and adds its amount to the accumulation unless
	// a deposit with the same tx id is already recorded.
	AppendDeposit(ctx context.Context, operationID uuid.UUID, d business.Deposit) (bool, error)
	AppendRefund(ctx context.Context, operationID uuid.UUID, r business.Refund) error
	UpdateOperationWallet(ctx context.Context, operationID uuid.UUID, w *business.CollectionWallet) error
	MarkWalletRetired(ctx context.Context, operationID uuid.UUID, txID string, at time.Time) error
}

var _ Querier = (*Queries)(nil)
var _ Querier = (*MemoryStore)(nil)
