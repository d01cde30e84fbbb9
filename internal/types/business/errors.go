package business

import (
	"errors"
	"fmt"
)

var (
	ErrCurrencyCodeInvalid = errors.New("currency code invalid")
	ErrStablecoinExists    = errors.New("stablecoin already exists")
	ErrStablecoinNotFound  = errors.New("stablecoin not found")
	ErrOperationNotFound   = errors.New("operation not found")
	ErrTrustLineMissing    = errors.New("trust line missing")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrCancelNotAllowed    = errors.New("cancellation not allowed after completion")
	ErrStaleOperation      = errors.New("operation was modified concurrently")
	ErrWalletNotRetirable  = errors.New("collection wallet not retirable")
	ErrUnsupportedDeposit  = errors.New("deposit type not supported")
)

// ValidationError rejects a request before any state is created
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for field
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// AuthorizationError covers cross-company access and unauthorized depositors
type AuthorizationError struct {
	Subject string
	Reason  string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not authorized: %s (%s)", e.Reason, e.Subject)
}

// LedgerSubmissionError is a network or engine failure on a ledger submit
type LedgerSubmissionError struct {
	Op           string
	EngineResult string
	TxID         string
	Err          error
}

func (e *LedgerSubmissionError) Error() string {
	msg := "ledger submission failed: " + e.Op
	if e.EngineResult != "" {
		msg += " (" + e.EngineResult + ")"
	}
	if e.TxID != "" {
		msg += " tx " + e.TxID
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LedgerSubmissionError) Unwrap() error {
	return e.Err
}

// PersistenceError wraps a store failure; the operation keeps its last persisted state
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err carries a ValidationError
func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsAuthorizationError reports whether err carries an AuthorizationError
func IsAuthorizationError(err error) bool {
	var a *AuthorizationError
	return errors.As(err, &a)
}

// IsLedgerSubmissionError reports whether err carries a LedgerSubmissionError
func IsLedgerSubmissionError(err error) bool {
	var l *LedgerSubmissionError
	return errors.As(err, &l)
}
