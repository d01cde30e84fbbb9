package auth

import "errors"

var (
	ErrNoToken          = errors.New("no authentication provided")
	ErrInvalidToken     = errors.New("invalid token")
	ErrMissingCompany   = errors.New("token carries no company")
	ErrNoCallerInCtx    = errors.New("no authenticated caller found in request ctx")
	ErrSigningKeyAbsent = errors.New("token signing secret not configured")
)
