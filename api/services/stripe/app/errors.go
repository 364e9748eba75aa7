package app

import "errors"

// Typed errors for the Stripe app layer. These enable HTTP mapping without
// relying on SDK-specific error types at the transport layer.
var (
	// ErrBadEvent indicates the incoming webhook failed verification or decoding.
	ErrBadEvent = errors.New("bad event")
	// ErrDatabase indicates a database-related failure.
	ErrDatabase = errors.New("database error")
	// ErrGateway indicates a failure from the Stripe gateway / API calls.
	ErrGateway = errors.New("gateway error")
	// ErrNotConfigured indicates no Stripe secret key is configured.
	ErrNotConfigured = errors.New("stripe is not configured")
	// ErrInvalidPrice indicates Stripe rejected the requested price id.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrUnknownUser indicates the authenticated user id has no users row.
	ErrUnknownUser = errors.New("unknown user")
)
