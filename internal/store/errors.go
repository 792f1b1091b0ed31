package store

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// ErrCodeNotConfigured indicates a dispatch before Configure.
	ErrCodeNotConfigured ErrorCode = "NOT_CONFIGURED"

	// ErrCodeAlreadyConfigured indicates a second Configure call on a
	// store that already owns a container.
	ErrCodeAlreadyConfigured ErrorCode = "ALREADY_CONFIGURED"

	// ErrCodeReentrantDispatch indicates a dispatch issued while a reducer
	// was still executing.
	ErrCodeReentrantDispatch ErrorCode = "REENTRANT_DISPATCH"
)

// Error is a store usage error. Configuration errors (not-configured,
// already-configured) are fatal programmer mistakes: thrown synchronously,
// never retried, never swallowed.
type Error struct {
	Code    ErrorCode
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsNotConfigured reports whether err is a dispatch-before-init error.
func IsNotConfigured(err error) bool {
	return hasCode(err, ErrCodeNotConfigured)
}

// IsAlreadyConfigured reports whether err is a double-initialization error.
func IsAlreadyConfigured(err error) bool {
	return hasCode(err, ErrCodeAlreadyConfigured)
}

// IsReentrantDispatch reports whether err is a re-entrant dispatch error.
func IsReentrantDispatch(err error) bool {
	return hasCode(err, ErrCodeReentrantDispatch)
}

func hasCode(err error, code ErrorCode) bool {
	var se *Error
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}
