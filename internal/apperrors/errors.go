package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrForbidden indicates that the resource exists but does not belong to the
// caller. Handlers map it to the same response as ErrNotFound so that
// existence is not leaked.
var ErrForbidden = errors.New("operation not permitted")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInUse indicates that a deletion was blocked by rows still referencing the resource.
var ErrInUse = errors.New("resource is in use")

// ErrRatesUnavailable indicates that a currency conversion was required but
// the exchange rate provider could not be reached in time.
var ErrRatesUnavailable = errors.New("exchange rates unavailable")

// AppError wraps an infrastructure failure with an HTTP-ish status code and a
// human readable message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
