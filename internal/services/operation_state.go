package services

import (
	"context"
	"errors"

	"github.com/fountain/fountain-api/internal/db"
	"github.com/fountain/fountain-api/internal/types/business"
)

const maxStaleRetries = 3

// saveOperation applies mutate to op and persists it. A stale write re-reads
// the operation and applies mutate to the fresh copy. The returned operation
// is the one that was saved.
func saveOperation(ctx context.Context, queries db.Querier, op *business.Operation, mutate func(*business.Operation) error) (*business.Operation, error) {
	for attempt := 0; ; attempt++ {
		if err := mutate(op); err != nil {
			return op, err
		}
		err := queries.SaveOperationState(ctx, op)
		if err == nil {
			return op, nil
		}
		if !errors.Is(err, business.ErrStaleOperation) || attempt+1 >= maxStaleRetries {
			return op, &business.PersistenceError{Op: "save operation", Err: err}
		}

		fresh, gerr := queries.GetOperation(ctx, op.ID)
		if gerr != nil {
			return op, &business.PersistenceError{Op: "reload operation", Err: gerr}
		}
		op = fresh
	}
}

// transitionTo returns a mutation that moves an operation to status
func transitionTo(status business.OperationStatus) func(*business.Operation) error {
	return func(op *business.Operation) error {
		return op.Transition(status)
	}
}
