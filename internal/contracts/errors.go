package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotSupported marks a data kind a provider does not serve.
// The router skips such providers instead of counting a failed attempt.
var ErrNotSupported = errors.New("data kind not supported")

// ErrInsufficientData is the terminal scoring failure: zero inputs were
// computable, so no composite score exists. It is never reported as a
// degenerate zero score.
var ErrInsufficientData = errors.New("insufficient data: no computable scoring inputs")

// AdapterError is a per-vendor failure, recoverable by fallback to the
// next adapter in the precedence chain.
type AdapterError struct {
	Provider string
	Kind     DataKind
	Err      error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}

// DataUnavailableError means every capable adapter failed for one data
// kind. Other data kinds continue independently; only quote and OHLCV
// escalate this to a request failure.
type DataUnavailableError struct {
	Kind     DataKind
	Attempts []*AdapterError
}

func (e *DataUnavailableError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s unavailable: no capable provider", e.Kind)
	}
	parts := make([]string, len(e.Attempts))
	for i, attempt := range e.Attempts {
		parts[i] = attempt.Error()
	}
	return fmt.Sprintf("%s unavailable: %s", e.Kind, strings.Join(parts, "; "))
}

// IsDataUnavailable reports whether err is a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var target *DataUnavailableError
	return errors.As(err, &target)
}
