package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	calendarerrors "hostbook/internal/calendar/errors"
	"hostbook/pkg/flatfile"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
)

const (
	Header        = "id,start_date,end_date,guest_id,total"
	FileExtension = ".csv"

	fieldCount = 5
)

// ReservationRepository persists one calendar file per host. It enforces no
// business rules: overlap and date checks belong to the booking engine.
type ReservationRepository interface {
	FindByHost(hostID string) ([]model.Reservation, error)
	Add(reservation *model.Reservation, hostID string) error
	Update(reservation model.Reservation, hostID string) error
	Delete(id int, hostID string) error
	NextGlobalID() (int, error)
	HostIDs() ([]string, error)
}

type fileReservationRepository struct {
	dir string
	log *logger.Logger
}

func NewFileReservationRepository(dir string, log *logger.Logger) ReservationRepository {
	return &fileReservationRepository{
		dir: dir,
		log: log,
	}
}

// FindByHost loads the host's calendar. A host without a file has an empty
// calendar.
func (r *fileReservationRepository) FindByHost(hostID string) ([]model.Reservation, error) {
	path, err := r.pathFor(hostID)
	if err != nil {
		return nil, err
	}

	reservations := []model.Reservation{}
	err = flatfile.Scan(path, Header, func(lineNo int, line string) {
		res, parseErr := parseRecord(line)
		if parseErr != nil {
			r.skipRecord(path, lineNo, parseErr)
			return
		}
		res.HostID = hostID
		reservations = append(reservations, res)
	}, func(lineNo int, err error) {
		r.skipRecord(path, lineNo, err)
	})
	if err != nil {
		return nil, fmt.Errorf("read calendar for host %s: %w", hostID, err)
	}

	return reservations, nil
}

// Add assigns the next global id to reservation and appends it to the host's
// calendar.
func (r *fileReservationRepository) Add(reservation *model.Reservation, hostID string) error {
	if reservation == nil {
		return fmt.Errorf("add reservation: %w", calendarerrors.ErrMalformedRecord)
	}

	all, err := r.FindByHost(hostID)
	if err != nil {
		return err
	}

	nextID, err := r.NextGlobalID()
	if err != nil {
		return err
	}

	stored := *reservation
	stored.ID = nextID
	stored.HostID = hostID

	if err := r.writeAll(hostID, append(all, stored)); err != nil {
		return err
	}

	*reservation = stored
	return nil
}

func (r *fileReservationRepository) Update(reservation model.Reservation, hostID string) error {
	all, err := r.FindByHost(hostID)
	if err != nil {
		return err
	}

	for i := range all {
		if all[i].ID == reservation.ID {
			reservation.HostID = hostID
			all[i] = reservation
			return r.writeAll(hostID, all)
		}
	}

	return fmt.Errorf("update reservation %d for host %s: %w", reservation.ID, hostID, calendarerrors.ErrNotFound)
}

func (r *fileReservationRepository) Delete(id int, hostID string) error {
	all, err := r.FindByHost(hostID)
	if err != nil {
		return err
	}

	for i := range all {
		if all[i].ID == id {
			all = append(all[:i], all[i+1:]...)
			return r.writeAll(hostID, all)
		}
	}

	return fmt.Errorf("delete reservation %d for host %s: %w", id, hostID, calendarerrors.ErrNotFound)
}

// NextGlobalID scans every calendar file in the directory and returns one
// more than the largest id found, or 1 when there is none. Lines whose id
// field does not parse are ignored. Nothing is cached: every call rescans,
// so the cost is linear in the total number of stored reservations.
func (r *fileReservationRepository) NextGlobalID() (int, error) {
	hostIDs, err := r.HostIDs()
	if err != nil {
		return 0, err
	}

	maxID := 0
	for _, hostID := range hostIDs {
		path := filepath.Join(r.dir, hostID+FileExtension)
		err := flatfile.Scan(path, Header, func(_ int, line string) {
			idField, _, _ := strings.Cut(line, ",")
			id, convErr := strconv.Atoi(strings.TrimSpace(idField))
			if convErr != nil {
				return
			}
			if id > maxID {
				maxID = id
			}
		}, nil)
		if err != nil {
			return 0, fmt.Errorf("scan calendar for host %s: %w", hostID, err)
		}
	}

	return maxID + 1, nil
}

// HostIDs lists the hosts that have a calendar file, sorted.
func (r *fileReservationRepository) HostIDs() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("list calendars in %s: %w", r.dir, err)
	}

	hostIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), FileExtension) {
			continue
		}
		hostID := strings.TrimSuffix(entry.Name(), FileExtension)
		if _, err := r.pathFor(hostID); err != nil {
			r.log.Warn("Ignoring calendar file with an invalid host id", "dir", r.dir, "file", entry.Name())
			continue
		}
		hostIDs = append(hostIDs, hostID)
	}
	sort.Strings(hostIDs)

	return hostIDs, nil
}

func (r *fileReservationRepository) pathFor(hostID string) (string, error) {
	if strings.TrimSpace(hostID) == "" || hostID != filepath.Base(hostID) ||
		hostID == "." || hostID == ".." || strings.ContainsAny(hostID, `/\`) {
		return "", fmt.Errorf("%w: %q", calendarerrors.ErrInvalidHostID, hostID)
	}
	return filepath.Join(r.dir, hostID+FileExtension), nil
}

func (r *fileReservationRepository) skipRecord(path string, lineNo int, err error) {
	r.log.Warn("Skipping malformed reservation record",
		"file", path,
		"line", lineNo,
		"error", err,
	)
}

// writeAll replaces the host's calendar with reservations.
func (r *fileReservationRepository) writeAll(hostID string, reservations []model.Reservation) error {
	path, err := r.pathFor(hostID)
	if err != nil {
		return err
	}

	records := make([]string, 0, len(reservations))
	for _, res := range reservations {
		record, err := formatRecord(res)
		if err != nil {
			return fmt.Errorf("write calendar for host %s: %w", hostID, err)
		}
		records = append(records, record)
	}

	if err := flatfile.WriteAtomic(path, Header, records); err != nil {
		return fmt.Errorf("write calendar for host %s: %w", hostID, err)
	}
	return nil
}

func parseRecord(line string) (model.Reservation, error) {
	fields := flatfile.Split(line)
	if len(fields) != fieldCount {
		return model.Reservation{}, fmt.Errorf("%w: expected %d fields, got %d",
			calendarerrors.ErrMalformedRecord, fieldCount, len(fields))
	}

	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: id %q", calendarerrors.ErrMalformedRecord, fields[0])
	}
	start, err := model.ParseDate(fields[1])
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: start_date %q", calendarerrors.ErrMalformedRecord, fields[1])
	}
	end, err := model.ParseDate(fields[2])
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: end_date %q", calendarerrors.ErrMalformedRecord, fields[2])
	}
	total, err := decimal.NewFromString(fields[4])
	if err != nil {
		return model.Reservation{}, fmt.Errorf("%w: total %q", calendarerrors.ErrMalformedRecord, fields[4])
	}

	return model.Reservation{
		ID:        id,
		StartDate: start,
		EndDate:   end,
		GuestID:   fields[3],
		Total:     total,
	}, nil
}

func formatRecord(r model.Reservation) (string, error) {
	record, err := flatfile.Join(
		strconv.Itoa(r.ID),
		model.FormatDate(r.StartDate),
		model.FormatDate(r.EndDate),
		r.GuestID,
		r.Total.StringFixed(2),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", calendarerrors.ErrMalformedRecord, err)
	}
	return record, nil
}
