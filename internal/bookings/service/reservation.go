package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	bookingserrors "hostbook/internal/bookings/errors"
	"hostbook/internal/bookings/events"
	"hostbook/internal/bookings/validator"
	calendarerrors "hostbook/internal/calendar/errors"
	"hostbook/internal/calendar/repository"
	guestserrors "hostbook/internal/guests/errors"
	hostserrors "hostbook/internal/hosts/errors"
	"hostbook/pkg/config"
	apperrors "hostbook/pkg/errors"
	"hostbook/pkg/model"
)

type HostFinder interface {
	FindByID(id string) (*model.Host, error)
	FindByEmail(email string) (*model.Host, error)
}

type HostLocator interface {
	FindByLocation(state, city, postalCode string) ([]model.Host, error)
}

type HostDirectory interface {
	HostFinder
	HostLocator
}

type GuestFinder interface {
	FindByID(id string) (*model.Guest, error)
	FindByEmail(email string) (*model.Guest, error)
}

type ReservationService interface {
	Validate(ctx context.Context, candidate *model.Reservation, host *model.Host) bool
	Check(ctx context.Context, candidate *model.Reservation, host *model.Host) error
	Price(candidate *model.Reservation, host *model.Host) decimal.Decimal
	Quote(ctx context.Context, candidate *model.Reservation, host *model.Host) (decimal.Decimal, error)
	MakeReservation(ctx context.Context, candidate *model.Reservation, host *model.Host) error
	EditReservation(ctx context.Context, candidate *model.Reservation, host *model.Host) error
	CancelReservation(ctx context.Context, id int, hostID string) error
	GetReservation(ctx context.Context, hostID string, id int) (*model.Reservation, error)
	ViewByHost(ctx context.Context, hostID string) ([]model.Reservation, error)
	ViewByGuest(ctx context.Context, guestID string) ([]model.Reservation, error)
	ViewByLocation(ctx context.Context, state, city, postalCode string) ([]model.Reservation, error)
	NextID(ctx context.Context) (int, error)
	ResolveHost(ctx context.Context, ref string) (*model.Host, error)
	ResolveGuest(ctx context.Context, ref string) (*model.Guest, error)
}

type Option func(*reservationService)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *reservationService) {
		s.now = now
	}
}

type reservationService struct {
	repo      repository.ReservationRepository
	hosts     HostDirectory
	guests    GuestFinder
	validator *validator.ReservationValidator
	publisher events.Publisher
	cfg       *config.Config
	now       func() time.Time

	// mu serialises make, edit and cancel. Id allocation spans every
	// calendar, so one lock covers all hosts.
	mu sync.Mutex
}

func NewReservationService(
	repo repository.ReservationRepository,
	hosts HostDirectory,
	guests GuestFinder,
	validator *validator.ReservationValidator,
	publisher events.Publisher,
	cfg *config.Config,
	opts ...Option,
) ReservationService {
	if publisher == nil {
		publisher = events.NewNopPublisher()
	}
	s := &reservationService{
		repo:      repo,
		hosts:     hosts,
		guests:    guests,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reservationService) today() time.Time {
	return model.DateOf(s.now())
}

func (s *reservationService) Validate(ctx context.Context, candidate *model.Reservation, host *model.Host) bool {
	return s.Check(ctx, candidate, host) == nil
}

// Check reports why candidate cannot be booked on host's calendar, or nil.
func (s *reservationService) Check(ctx context.Context, candidate *model.Reservation, host *model.Host) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Timeout("Request cancelled").WithCause(err)
	}

	var proposed *model.Reservation
	if candidate != nil {
		normalized := normalizeDates(*candidate)
		proposed = &normalized
	}

	if err := s.validator.Validate(proposed, host, s.today()); err != nil {
		return s.reject("check", proposed, host, err)
	}

	existing, err := s.repo.FindByHost(host.ID)
	if err != nil {
		return s.storeError("Failed to load host calendar", host.ID, err)
	}

	if err := s.validator.CheckOverlap(*proposed, existing); err != nil {
		return s.reject("check", proposed, host, err)
	}

	return nil
}

// Price sums the nightly rate for every night in [StartDate, EndDate). Friday
// and Saturday nights use the weekend rate.
func (s *reservationService) Price(candidate *model.Reservation, host *model.Host) decimal.Decimal {
	total := decimal.Zero
	if candidate == nil || host == nil {
		return total
	}

	end := model.DateOf(candidate.EndDate)
	for night := model.DateOf(candidate.StartDate); night.Before(end); night = night.AddDate(0, 0, 1) {
		if isWeekendNight(night) {
			total = total.Add(host.WeekendRate)
		} else {
			total = total.Add(host.StandardRate)
		}
	}
	return total
}

func isWeekendNight(night time.Time) bool {
	day := night.Weekday()
	return day == time.Friday || day == time.Saturday
}

func (s *reservationService) Quote(ctx context.Context, candidate *model.Reservation, host *model.Host) (decimal.Decimal, error) {
	if err := s.Check(ctx, candidate, host); err != nil {
		return decimal.Zero, err
	}
	return s.Price(candidate, host), nil
}

// MakeReservation validates, prices and stores candidate. On success
// candidate carries its assigned id, host id and total. On rejection neither
// candidate nor the calendar changes.
func (s *reservationService) MakeReservation(ctx context.Context, candidate *model.Reservation, host *model.Host) error {
	if candidate == nil {
		return s.Check(ctx, nil, host)
	}

	s.mu.Lock()

	proposed := normalizeDates(*candidate)
	proposed.ID = 0
	if err := s.Check(ctx, &proposed, host); err != nil {
		s.mu.Unlock()
		return err
	}

	proposed.Total = s.Price(&proposed, host)
	if err := s.repo.Add(&proposed, host.ID); err != nil {
		s.mu.Unlock()
		return s.storeError("Failed to save reservation", host.ID, err)
	}
	s.mu.Unlock()

	*candidate = proposed

	s.cfg.Log.Info("Reservation created successfully",
		"id", proposed.ID,
		"host_id", host.ID,
		"guest_id", proposed.GuestID,
		"start_date", model.FormatDate(proposed.StartDate),
		"end_date", model.FormatDate(proposed.EndDate),
		"total", proposed.Total.String(),
	)
	s.publish(ctx, events.TypeCreated, proposed)
	return nil
}

// EditReservation re-validates candidate against the calendar, ignoring the
// stored reservation it replaces, and stores it with a recomputed total.
func (s *reservationService) EditReservation(ctx context.Context, candidate *model.Reservation, host *model.Host) error {
	if candidate == nil {
		return s.Check(ctx, nil, host)
	}
	if candidate.ID <= 0 {
		return apperrors.InvalidInput("Reservation ID must be a positive integer").WithCause(bookingserrors.ErrNotFound)
	}

	s.mu.Lock()

	proposed := normalizeDates(*candidate)
	if err := s.Check(ctx, &proposed, host); err != nil {
		s.mu.Unlock()
		return err
	}

	proposed.Total = s.Price(&proposed, host)
	proposed.HostID = host.ID
	if err := s.repo.Update(proposed, host.ID); err != nil {
		s.mu.Unlock()
		return s.storeError("Failed to update reservation", host.ID, err)
	}
	s.mu.Unlock()

	*candidate = proposed

	s.cfg.Log.Info("Reservation updated successfully",
		"id", proposed.ID,
		"host_id", host.ID,
		"start_date", model.FormatDate(proposed.StartDate),
		"end_date", model.FormatDate(proposed.EndDate),
		"total", proposed.Total.String(),
	)
	s.publish(ctx, events.TypeUpdated, proposed)
	return nil
}

// CancelReservation removes a reservation that has not started yet.
func (s *reservationService) CancelReservation(ctx context.Context, id int, hostID string) error {
	if err := ctx.Err(); err != nil {
		return apperrors.Timeout("Request cancelled").WithCause(err)
	}
	if strings.TrimSpace(hostID) == "" {
		return apperrors.InvalidInput("Host ID cannot be empty").WithCause(bookingserrors.ErrMissingHost)
	}
	if id <= 0 {
		return apperrors.InvalidInput("Reservation ID must be a positive integer").WithCause(bookingserrors.ErrNotFound)
	}

	s.mu.Lock()

	existing, err := s.findLocked(hostID, id)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	if !existing.StartDate.After(s.today()) {
		s.mu.Unlock()
		s.cfg.Log.Warn("Reservation cancellation rejected",
			"id", id,
			"host_id", hostID,
			"start_date", model.FormatDate(existing.StartDate),
		)
		return apperrors.Validation("Only future reservations can be cancelled", map[string]any{
			"id":         id,
			"start_date": model.FormatDate(existing.StartDate),
		}).WithCause(bookingserrors.ErrCancelNotFuture)
	}

	if err := s.repo.Delete(id, hostID); err != nil {
		s.mu.Unlock()
		return s.storeError("Failed to cancel reservation", hostID, err)
	}
	s.mu.Unlock()

	s.cfg.Log.Info("Reservation cancelled successfully", "id", id, "host_id", hostID)
	s.publish(ctx, events.TypeCancelled, *existing)
	return nil
}

func (s *reservationService) GetReservation(ctx context.Context, hostID string, id int) (*model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Timeout("Request cancelled").WithCause(err)
	}
	return s.findLocked(hostID, id)
}

// findLocked does not itself lock; callers that mutate hold s.mu.
func (s *reservationService) findLocked(hostID string, id int) (*model.Reservation, error) {
	all, err := s.repo.FindByHost(hostID)
	if err != nil {
		return nil, s.storeError("Failed to load host calendar", hostID, err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, apperrors.NotFoundWithID("Reservation", fmt.Sprint(id)).WithCause(bookingserrors.ErrNotFound)
}

// ViewByHost returns the host's reservations ordered by start date.
func (s *reservationService) ViewByHost(ctx context.Context, hostID string) ([]model.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.Timeout("Request cancelled").WithCause(err)
	}
	if strings.TrimSpace(hostID) == "" {
		return nil, apperrors.InvalidInput("Host ID cannot be empty").WithCause(bookingserrors.ErrMissingHost)
	}

	reservations, err := s.repo.FindByHost(hostID)
	if err != nil {
		return nil, s.storeError("Failed to load host calendar", hostID, err)
	}
	sortByStart(reservations)

	s.cfg.Log.Debug("Host calendar loaded", "host_id", hostID, "count", len(reservations))
	return reservations, nil
}

// ViewByGuest scans every calendar for the guest's reservations.
func (s *reservationService) ViewByGuest(ctx context.Context, guestID string) ([]model.Reservation, error) {
	if strings.TrimSpace(guestID) == "" {
		return nil, apperrors.InvalidInput("Guest ID cannot be empty").WithCause(bookingserrors.ErrMissingGuest)
	}

	hostIDs, err := s.repo.HostIDs()
	if err != nil {
		return nil, apperrors.Internal("Failed to list calendars", err)
	}

	matched := []model.Reservation{}
	for _, hostID := range hostIDs {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Timeout("Request cancelled").WithCause(err)
		}
		reservations, err := s.repo.FindByHost(hostID)
		if err != nil {
			return nil, s.storeError("Failed to load host calendar", hostID, err)
		}
		for _, r := range reservations {
			if r.GuestID == guestID {
				matched = append(matched, r)
			}
		}
	}
	sortByStart(matched)

	s.cfg.Log.Debug("Guest reservations loaded", "guest_id", guestID, "count", len(matched))
	return matched, nil
}

// ViewByLocation returns the reservations of every host matching the
// non-empty location filters.
func (s *reservationService) ViewByLocation(ctx context.Context, state, city, postalCode string) ([]model.Reservation, error) {
	hosts, err := s.hosts.FindByLocation(state, city, postalCode)
	if err != nil {
		return nil, apperrors.Internal("Failed to search hosts", err)
	}

	matched := []model.Reservation{}
	for _, h := range hosts {
		if err := ctx.Err(); err != nil {
			return nil, apperrors.Timeout("Request cancelled").WithCause(err)
		}
		reservations, err := s.repo.FindByHost(h.ID)
		if err != nil {
			return nil, s.storeError("Failed to load host calendar", h.ID, err)
		}
		matched = append(matched, reservations...)
	}
	sortByStart(matched)

	s.cfg.Log.Debug("Location search completed",
		"state", state,
		"city", city,
		"postal_code", postalCode,
		"hosts", len(hosts),
		"count", len(matched),
	)
	return matched, nil
}

func (s *reservationService) NextID(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, apperrors.Timeout("Request cancelled").WithCause(err)
	}
	id, err := s.repo.NextGlobalID()
	if err != nil {
		s.cfg.Log.Error("Failed to allocate reservation id", "error", err)
		return 0, apperrors.Internal("Failed to allocate reservation id", err)
	}
	return id, nil
}

// ResolveHost accepts either a host id or an email address.
func (s *reservationService) ResolveHost(ctx context.Context, ref string) (*model.Host, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.InvalidInput("Host ID or email is required").WithCause(bookingserrors.ErrMissingHost)
	}

	var host *model.Host
	var err error
	if strings.Contains(ref, "@") {
		host, err = s.hosts.FindByEmail(ref)
	} else {
		host, err = s.hosts.FindByID(ref)
	}
	if err != nil {
		if errors.Is(err, hostserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Host", ref).WithCause(err)
		}
		s.cfg.Log.Error("Failed to look up host", "host", ref, "error", err)
		return nil, apperrors.Internal("Failed to look up host", err)
	}
	return host, nil
}

// ResolveGuest accepts either a guest id or an email address.
func (s *reservationService) ResolveGuest(ctx context.Context, ref string) (*model.Guest, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperrors.InvalidInput("Guest ID or email is required").WithCause(bookingserrors.ErrMissingGuest)
	}

	var guest *model.Guest
	var err error
	if strings.Contains(ref, "@") {
		guest, err = s.guests.FindByEmail(ref)
	} else {
		guest, err = s.guests.FindByID(ref)
	}
	if err != nil {
		if errors.Is(err, guestserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Guest", ref).WithCause(err)
		}
		s.cfg.Log.Error("Failed to look up guest", "guest", ref, "error", err)
		return nil, apperrors.Internal("Failed to look up guest", err)
	}
	return guest, nil
}

// --- Helpers ---

func (s *reservationService) reject(operation string, candidate *model.Reservation, host *model.Host, err error) error {
	attrs := []any{"operation", operation, "reason", err}
	if candidate != nil {
		attrs = append(attrs,
			"id", candidate.ID,
			"start_date", model.FormatDate(candidate.StartDate),
			"end_date", model.FormatDate(candidate.EndDate),
		)
	}
	if host != nil {
		attrs = append(attrs, "host_id", host.ID)
	}
	s.cfg.Log.Warn("Reservation rejected", attrs...)

	var verr validator.ValidationError
	if !errors.As(err, &verr) {
		return apperrors.Internal("Failed to validate reservation", err)
	}
	if errors.Is(err, bookingserrors.ErrOverlap) {
		return apperrors.Conflict(verr.Message).
			WithDetails(map[string]any{"field": verr.Field}).
			WithCause(err)
	}
	return apperrors.Validation("Reservation validation failed", map[string]any{
		"field": verr.Field,
		"error": verr.Message,
	}).WithCause(err)
}

func (s *reservationService) storeError(message, hostID string, err error) error {
	switch {
	case errors.Is(err, calendarerrors.ErrNotFound):
		return apperrors.NotFound("Reservation").WithCause(errors.Join(bookingserrors.ErrNotFound, err))
	case errors.Is(err, calendarerrors.ErrInvalidHostID):
		return apperrors.InvalidInput("Invalid host ID").WithCause(err)
	case errors.Is(err, calendarerrors.ErrMalformedRecord):
		return apperrors.InvalidInput("Reservation contains characters that cannot be stored").WithCause(err)
	}
	s.cfg.Log.Error(message, "host_id", hostID, "error", err)
	return apperrors.Internal(message, err)
}

func (s *reservationService) publish(ctx context.Context, eventType string, r model.Reservation) {
	event := events.NewReservationEvent(eventType, r, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish reservation event",
			"event_type", eventType,
			"id", r.ID,
			"host_id", r.HostID,
			"error", err,
		)
	}
}

func normalizeDates(r model.Reservation) model.Reservation {
	r.StartDate = model.DateOf(r.StartDate)
	r.EndDate = model.DateOf(r.EndDate)
	return r
}

func sortByStart(reservations []model.Reservation) {
	sort.SliceStable(reservations, func(i, j int) bool {
		if reservations[i].StartDate.Equal(reservations[j].StartDate) {
			return reservations[i].ID < reservations[j].ID
		}
		return reservations[i].StartDate.Before(reservations[j].StartDate)
	})
}
