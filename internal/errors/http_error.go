package errors

import "net/http"

// HTTPError represents an error with an associated HTTP status code.
type HTTPError struct {
	Code    int
	Message string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTPError with the given code and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{
		Code:    code,
		Message: message,
	}
}

// StatusFor maps a core error to the HTTP status the API responds with.
func StatusFor(err error) int {
	switch {
	case Is(err, ErrInvalidInterval):
		return http.StatusUnprocessableEntity
	case Is(err, ErrNoSlotAvailable), Is(err, ErrConflict), Is(err, ErrAlreadyTerminal):
		return http.StatusConflict
	case Is(err, ErrNotFound), Is(err, ErrIntervalNotFound):
		return http.StatusNotFound
	case Is(err, ErrMalformedPayload):
		return http.StatusBadRequest
	case Is(err, ErrSignatureMismatch):
		return http.StatusUnauthorized
	case Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Helper for common errors
var (
	ErrUnauthorized = func(msg string) *HTTPError { return NewHTTPError(http.StatusUnauthorized, msg) }
)
