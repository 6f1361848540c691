package helpers

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type StocksDashError struct {
	Message string
	Cause   error
}

func (e *StocksDashError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StocksDashError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As assertions at the boundaries.
type ConfigurationError struct{ StocksDashError }
type NetworkError struct{ StocksDashError }
type StorageError struct{ StocksDashError }
type InvalidSymbolError struct{ StocksDashError }

// -----------------------------------------------------------------------------

func NewConfigurationError(msg string, cause error) *ConfigurationError {
	return &ConfigurationError{StocksDashError{Message: msg, Cause: cause}}
}

func NewNetworkError(msg string, cause error) *NetworkError {
	return &NetworkError{StocksDashError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) *StorageError {
	return &StorageError{StocksDashError{Message: msg, Cause: cause}}
}

func NewInvalidSymbolError(symbol string) *InvalidSymbolError {
	return &InvalidSymbolError{StocksDashError{Message: fmt.Sprintf("symbol %s does not resolve", symbol)}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times
// with exponential backoff.
func RetryWithBackoff(maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		time.Sleep(baseDelay * (1 << attempt))
	}

	return lastErr
}
