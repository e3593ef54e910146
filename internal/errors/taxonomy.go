package errors

import "errors"

// Booking core error taxonomy. All of these are recoverable at the API
// boundary and map to a user-facing message; anything else that escapes a
// service is treated as internal.
var (
	ErrInvalidInterval   = errors.New("invalid time interval")
	ErrNoSlotAvailable   = errors.New("no slot available")
	ErrConflict          = errors.New("slot conflict")
	ErrNotFound          = errors.New("booking not found")
	ErrAlreadyTerminal   = errors.New("booking already completed or cancelled")
	ErrIntervalNotFound  = errors.New("reserved interval not found")
	ErrMalformedPayload  = errors.New("malformed proof payload")
	ErrSignatureMismatch = errors.New("proof signature mismatch")
	ErrUnavailable       = errors.New("service unavailable")
)

// Is re-exports errors.Is so callers do not need two error imports.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As re-exports errors.As so callers do not need two error imports.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
