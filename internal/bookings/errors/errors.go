package errors

import "errors"

var (
	ErrMissingReservation = errors.New("reservation is required")

	ErrMissingHost = errors.New("host is required")

	ErrMissingDates = errors.New("start and end dates are required")

	ErrInvalidDateRange = errors.New("start date must be before end date")

	ErrStartNotInFuture = errors.New("start date must be in the future")

	ErrMissingGuest = errors.New("guest is required")

	ErrOverlap = errors.New("dates overlap an existing reservation")

	ErrNotFound = errors.New("reservation not found")

	ErrCancelNotFuture = errors.New("only future reservations can be cancelled")
)
