package services

import (
	"errors"
	"fmt"
)

// ValidationError is a business-rule rejection shown to the user as a titled
// message. Nothing is written when a save returns one.
type ValidationError struct {
	Title   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func newValidationError(title, message string) *ValidationError {
	return &ValidationError{Title: title, Message: message}
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserInactive       = errors.New("user is inactive")
)
