package validator

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	bookingserrors "hostbook/internal/bookings/errors"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

var today = time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestValidator(t *testing.T) *ReservationValidator {
	t.Helper()
	v, err := model.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return NewReservationValidator(v, logger.Discard())
}

func TestValidate_OrderedChecks(t *testing.T) {
	v := newTestValidator(t)
	host := &model.Host{ID: "h-1", StandardRate: decimal.NewFromInt(100), WeekendRate: decimal.NewFromInt(150)}

	tests := []struct {
		name      string
		candidate *model.Reservation
		host      *model.Host
		wantErr   error
	}{
		{
			name:    "nil reservation",
			host:    host,
			wantErr: bookingserrors.ErrMissingReservation,
		},
		{
			name:      "nil host",
			candidate: &model.Reservation{StartDate: date("2025-06-01"), EndDate: date("2025-06-05"), GuestID: "g-1"},
			wantErr:   bookingserrors.ErrMissingHost,
		},
		{
			name:      "missing end date",
			candidate: &model.Reservation{StartDate: date("2025-06-01"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrMissingDates,
		},
		{
			name:      "missing start date",
			candidate: &model.Reservation{EndDate: date("2025-06-01"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrMissingDates,
		},
		{
			name:      "start equals end",
			candidate: &model.Reservation{StartDate: date("2025-06-01"), EndDate: date("2025-06-01"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrInvalidDateRange,
		},
		{
			name:      "end before start",
			candidate: &model.Reservation{StartDate: date("2025-06-05"), EndDate: date("2025-06-01"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrInvalidDateRange,
		},
		{
			name:      "start today",
			candidate: &model.Reservation{StartDate: today, EndDate: date("2025-05-03"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrStartNotInFuture,
		},
		{
			name:      "start in past",
			candidate: &model.Reservation{StartDate: date("2025-04-28"), EndDate: date("2025-05-03"), GuestID: "g-1"},
			host:      host,
			wantErr:   bookingserrors.ErrStartNotInFuture,
		},
		{
			name:      "blank guest",
			candidate: &model.Reservation{StartDate: date("2025-06-01"), EndDate: date("2025-06-05"), GuestID: "  "},
			host:      host,
			wantErr:   bookingserrors.ErrMissingGuest,
		},
		{
			name:      "range checked before guest",
			candidate: &model.Reservation{StartDate: date("2025-06-05"), EndDate: date("2025-06-01")},
			host:      host,
			wantErr:   bookingserrors.ErrInvalidDateRange,
		},
		{
			name:      "tomorrow is valid",
			candidate: &model.Reservation{StartDate: date("2025-05-02"), EndDate: date("2025-05-03"), GuestID: "g-1"},
			host:      host,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.candidate, tt.host, today)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var verr ValidationError
			if !errors.As(err, &verr) || verr.Field == "" {
				t.Errorf("expected ValidationError with field, got %#v", err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	res := func(start, end string) model.Reservation {
		return model.Reservation{StartDate: date(start), EndDate: date(end)}
	}

	tests := []struct {
		name string
		a, b model.Reservation
		want bool
	}{
		{"shared changeover day", res("2025-06-01", "2025-06-05"), res("2025-06-05", "2025-06-07"), true},
		{"shared changeover day reversed", res("2025-06-05", "2025-06-07"), res("2025-06-01", "2025-06-05"), true},
		{"contained", res("2025-06-01", "2025-06-10"), res("2025-06-03", "2025-06-04"), true},
		{"identical", res("2025-06-01", "2025-06-05"), res("2025-06-01", "2025-06-05"), true},
		{"one day gap", res("2025-06-01", "2025-06-05"), res("2025-06-06", "2025-06-08"), false},
		{"before", res("2025-06-10", "2025-06-12"), res("2025-06-01", "2025-06-05"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckOverlap_ExcludesOwnID(t *testing.T) {
	v := newTestValidator(t)
	existing := []model.Reservation{
		{ID: 1, StartDate: date("2025-06-01"), EndDate: date("2025-06-05")},
		{ID: 2, StartDate: date("2025-06-10"), EndDate: date("2025-06-12")},
	}

	moved := model.Reservation{ID: 1, StartDate: date("2025-06-02"), EndDate: date("2025-06-06")}
	if err := v.CheckOverlap(moved, existing); err != nil {
		t.Errorf("editing a reservation should not collide with itself: %v", err)
	}

	intoSecond := model.Reservation{ID: 1, StartDate: date("2025-06-08"), EndDate: date("2025-06-10")}
	err := v.CheckOverlap(intoSecond, existing)
	if !errors.Is(err, bookingserrors.ErrOverlap) {
		t.Errorf("expected ErrOverlap, got %v", err)
	}
}
