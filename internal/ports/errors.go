package ports

import "errors"

// Standard application-level errors.
// Core packages return these directly or wrapped with %w; adapters wrap
// underlying infrastructure errors with the infra sentinels below.
var (
	// Core taxonomy
	ErrValidation       = errors.New("malformed or out-of-domain input")
	ErrSelection        = errors.New("requested instrument not present in option chain")
	ErrConfig           = errors.New("invalid configuration or strategy parameters")
	ErrInsufficientData = errors.New("too few overlapping observations")

	// General Errors
	ErrUnknown         = errors.New("unknown error occurred")
	ErrNotFound        = errors.New("resource not found")
	ErrTimeout         = errors.New("operation timed out")
	ErrContextCanceled = errors.New("operation canceled via context")

	// Exchange Specific Errors
	ErrExchangeUnavailable = errors.New("exchange API is unavailable")
	ErrConnectionFailed    = errors.New("failed to connect to the exchange")
	ErrRateLimited         = errors.New("API rate limit exceeded")
	ErrSymbolUnknown       = errors.New("symbol not known to the exchange")

	// Database Specific Errors
	ErrDBConnection = errors.New("database connection error")
	ErrQueryFailed  = errors.New("database query failed")
)
