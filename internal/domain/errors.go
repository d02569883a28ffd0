package domain

import "errors"

// Error kinds. Match with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrAuth               = errors.New("authentication error")
	ErrDuplicateUser      = errors.New("duplicate user")
	ErrQuote              = errors.New("quote error")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrNoHolding          = errors.New("no holding")
	ErrUserNotFound       = errors.New("user not found")
)

// Error carries a user-facing message for one of the kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NewError builds an *Error of the given kind.
func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Message returns the user-facing message of err if it is a domain error.
func Message(err error) (string, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de.Message, true
	}
	return "", false
}
