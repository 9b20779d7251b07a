package errors

import "errors"

var (
	ErrNotFound = errors.New("reservation not found in calendar")

	ErrInvalidHostID = errors.New("invalid host ID")

	ErrMalformedRecord = errors.New("malformed reservation record")
)
