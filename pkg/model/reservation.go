package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the calendar-date format used on disk and on the wire.
const DateLayout = "2006-01-02"

type Reservation struct {
	ID        int             `json:"id"`
	StartDate time.Time       `json:"start_date"`
	EndDate   time.Time       `json:"end_date"`
	GuestID   string          `json:"guest_id"`
	HostID    string          `json:"host_id"`
	Total     decimal.Decimal `json:"total"`
}

// Equal reports whether r and o identify the same reservation.
func (r Reservation) Equal(o Reservation) bool {
	return r.ID == o.ID && r.GuestID == o.GuestID
}

// Nights is the number of nights in [StartDate, EndDate).
func (r Reservation) Nights() int {
	if !r.StartDate.Before(r.EndDate) {
		return 0
	}
	return int(r.EndDate.Sub(r.StartDate).Hours() / 24)
}

func (r Reservation) String() string {
	return fmt.Sprintf("ID: %d, %s to %s, Guest ID: %s, Total: $%s",
		r.ID, FormatDate(r.StartDate), FormatDate(r.EndDate), r.GuestID, r.Total.StringFixed(2))
}

// ParseDate parses a YYYY-MM-DD calendar date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// DateOf drops the time-of-day and location, keeping the calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
