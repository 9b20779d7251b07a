package errors

import "errors"

var (
	ErrNotFound = errors.New("host not found")

	ErrInvalidRates = errors.New("host rates must be positive")
)
