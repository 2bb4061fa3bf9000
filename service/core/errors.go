package core

import (
	"errors"
	"fmt"
)

var (
	ErrDataUnavailable     = errors.New("price data unavailable")
	ErrInsufficientHistory = errors.New("not enough data to compute returns and covariance")
	ErrMalformedInput      = errors.New("malformed input")
	ErrAllocation          = errors.New("weight vector does not match asset count")
	ErrAssetMismatch       = errors.New("assets do not match")
	ErrLimitExceeded       = errors.New("input exceeds configured limit")

	ErrRunNotFound        = errors.New("analysis run not found")
	ErrHistoryUnavailable = errors.New("run history is not configured")
)

// ParseError locates a single token that could not be turned into a number.
// Row is the 1-based line (or entry) and Column the 1-based field on it, 0 when there is only one.
type ParseError struct {
	Row    int
	Column int
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column > 0 {
		return fmt.Sprintf("row %d, column %d: invalid value %q: %v", e.Row, e.Column, e.Token, e.Err)
	}
	return fmt.Sprintf("entry %d: invalid value %q: %v", e.Row, e.Token, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrMalformedInput, e.Err}
}
