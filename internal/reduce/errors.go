package reduce

import (
	"errors"
	"fmt"
)

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeAlreadyBound indicates a second store tried to bind to a
	// service that already has an active store.
	ErrCodeAlreadyBound ConfigErrorCode = "ALREADY_BOUND"

	// ErrCodeNotComposed indicates an operation that requires a composed
	// root reducer ran before Compose.
	ErrCodeNotComposed ConfigErrorCode = "NOT_COMPOSED"
)

// ConfigError represents a fatal configuration mistake. Configuration
// errors surface immediately and are never retried: they indicate
// programmer misuse, not a transient condition.
type ConfigError struct {
	Code    ConfigErrorCode
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsAlreadyBound reports whether err is a double-binding configuration
// error. Uses errors.As to handle wrapped errors.
func IsAlreadyBound(err error) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeAlreadyBound
	}
	return false
}
