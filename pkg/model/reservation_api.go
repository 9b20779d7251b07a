package model

import "fmt"

// ReservationRequest is the body of make, edit and quote calls. Dates are
// YYYY-MM-DD; guest_id may also be the guest's email.
type ReservationRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	GuestID   string `json:"guest_id,omitempty"`
}

// ToReservation parses the request into a candidate. An empty date stays the
// zero time so the booking rules report it as missing.
func (r ReservationRequest) ToReservation() (Reservation, error) {
	res := Reservation{GuestID: r.GuestID}
	var err error
	if r.StartDate != "" {
		if res.StartDate, err = ParseDate(r.StartDate); err != nil {
			return Reservation{}, fmt.Errorf("start_date %q: expected YYYY-MM-DD", r.StartDate)
		}
	}
	if r.EndDate != "" {
		if res.EndDate, err = ParseDate(r.EndDate); err != nil {
			return Reservation{}, fmt.Errorf("end_date %q: expected YYYY-MM-DD", r.EndDate)
		}
	}
	return res, nil
}

type ReservationView struct {
	ID        int    `json:"id"`
	HostID    string `json:"host_id"`
	GuestID   string `json:"guest_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
	Total     string `json:"total"`
}

func NewReservationView(r Reservation) ReservationView {
	return ReservationView{
		ID:        r.ID,
		HostID:    r.HostID,
		GuestID:   r.GuestID,
		StartDate: FormatDate(r.StartDate),
		EndDate:   FormatDate(r.EndDate),
		Nights:    r.Nights(),
		Total:     r.Total.StringFixed(2),
	}
}

func NewReservationViews(reservations []Reservation) []ReservationView {
	views := make([]ReservationView, 0, len(reservations))
	for _, r := range reservations {
		views = append(views, NewReservationView(r))
	}
	return views
}

type QuoteView struct {
	HostID    string `json:"host_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Nights    int    `json:"nights"`
	Total     string `json:"total"`
}

type NextIDView struct {
	NextID int `json:"next_id"`
}
