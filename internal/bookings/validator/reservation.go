package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	bookingserrors "hostbook/internal/bookings/errors"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// Unwrap exposes the bookings sentinel behind the rejection.
func (v ValidationError) Unwrap() error {
	return v.Err
}

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

// NewReservationValidator expects a validator built by model.NewValidator,
// which registers "notblank".
func NewReservationValidator(validate *validator.Validate, log *logger.Logger) *ReservationValidator {
	log.Info("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: validate,
		logger:   log,
	}
}

// Validate runs the calendar-independent checks in order and reports the
// first one that fails. today must be a calendar date (see model.DateOf).
func (v *ReservationValidator) Validate(candidate *model.Reservation, host *model.Host, today time.Time) error {
	if candidate == nil {
		return ValidationError{
			Field:   "reservation",
			Message: "reservation is required",
			Err:     bookingserrors.ErrMissingReservation,
		}
	}

	if host == nil {
		return ValidationError{
			Field:   "host_id",
			Message: "host is required",
			Err:     bookingserrors.ErrMissingHost,
		}
	}

	if candidate.StartDate.IsZero() || candidate.EndDate.IsZero() {
		return ValidationError{
			Field:   "start_date",
			Message: "start_date and end_date are required",
			Err:     bookingserrors.ErrMissingDates,
		}
	}

	if !candidate.StartDate.Before(candidate.EndDate) {
		return ValidationError{
			Field:   "end_date",
			Message: "end_date must be after start_date",
			Err:     bookingserrors.ErrInvalidDateRange,
		}
	}

	if !candidate.StartDate.After(today) {
		return ValidationError{
			Field:   "start_date",
			Message: fmt.Sprintf("start_date must be after %s", model.FormatDate(today)),
			Err:     bookingserrors.ErrStartNotInFuture,
		}
	}

	if err := v.validate.Var(candidate.GuestID, "required,notblank"); err != nil {
		return ValidationError{
			Field:   "guest_id",
			Message: "guest_id is required",
			Err:     bookingserrors.ErrMissingGuest,
		}
	}

	return nil
}

// CheckOverlap rejects candidate when it overlaps any existing reservation
// other than the one carrying its own id.
func (v *ReservationValidator) CheckOverlap(candidate model.Reservation, existing []model.Reservation) error {
	for _, r := range existing {
		if r.ID == candidate.ID {
			continue
		}
		if Overlaps(r, candidate) {
			return ValidationError{
				Field: "start_date",
				Message: fmt.Sprintf("dates overlap reservation %d (%s to %s)",
					r.ID, model.FormatDate(r.StartDate), model.FormatDate(r.EndDate)),
				Err: bookingserrors.ErrOverlap,
			}
		}
	}
	return nil
}

// Overlaps is inclusive on both ends: a stay ending on the day another
// begins counts as overlapping.
func Overlaps(a, b model.Reservation) bool {
	return !a.EndDate.Before(b.StartDate) && !a.StartDate.After(b.EndDate)
}
