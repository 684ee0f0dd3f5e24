// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("election not found")
	ErrAlreadyClosed     = errors.New("election already closed")
	ErrBallotNotFound    = errors.New("ballot not found")
	ErrUnsupportedMethod = errors.New("unsupported voting method")
)

// ValidationError is returned when an election definition or a ballot is malformed.
// Nothing is stored when it is returned.
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

// Invalid builds a *ValidationError
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is or wraps a *ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
