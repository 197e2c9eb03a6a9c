package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates the resource is in a state that does not allow the action.
var ErrConflict = errors.New("conflict")

// ErrAccess indicates a reference to a resource owned by a different book.
var ErrAccess = errors.New("resource belongs to a different book")

// Journal core errors.
var (
	ErrImbalancedEntry   = fmt.Errorf("%w: journal entry debits and credits do not balance", ErrValidation)
	ErrEmptyEntry        = fmt.Errorf("%w: journal entry needs at least one debit and one credit amount", ErrValidation)
	ErrInvalidTransition = fmt.Errorf("%w: invalid journal entry status transition", ErrConflict)
	ErrAlreadyPosted     = fmt.Errorf("%w: journal entry is already posted", ErrInvalidTransition)
	ErrImmutableEntry    = fmt.Errorf("%w: only draft journal entries can be changed", ErrConflict)
	ErrUnmappedCategory  = fmt.Errorf("%w: no account is mapped to the category", ErrValidation)
)

// Reconciliation errors.
var (
	ErrInvalidAccount   = fmt.Errorf("%w: reconciliation account does not exist", ErrNotFound)
	ErrInvalidStatement = fmt.Errorf("%w: malformed bank statement line", ErrValidation)
)

// AppError carries an HTTP-ish status code alongside the wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError wraps err with a status code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
