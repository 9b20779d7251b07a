package repository

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	guestserrors "hostbook/internal/guests/errors"
	"hostbook/pkg/flatfile"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
	"hostbook/pkg/sanitizer"
)

const (
	Header = "guest_id,first_name,last_name,email,phone,state"

	fieldCount = 6
)

// GuestRepository is a read-only view of the guest directory file.
type GuestRepository interface {
	FindAll() ([]model.Guest, error)
	FindByID(id string) (*model.Guest, error)
	FindByEmail(email string) (*model.Guest, error)
}

type fileGuestRepository struct {
	path     string
	validate *validator.Validate
	log      *logger.Logger
}

func NewFileGuestRepository(path string, validate *validator.Validate, log *logger.Logger) GuestRepository {
	return &fileGuestRepository{
		path:     path,
		validate: validate,
		log:      log,
	}
}

func (r *fileGuestRepository) FindAll() ([]model.Guest, error) {
	guests := []model.Guest{}
	skip := func(lineNo int, err error) {
		r.log.Warn("Skipping invalid guest record",
			"file", r.path,
			"line", lineNo,
			"error", err,
		)
	}
	err := flatfile.Scan(r.path, Header, func(lineNo int, line string) {
		guest, parseErr := parseGuest(line)
		if parseErr == nil {
			parseErr = r.validate.Struct(guest)
		}
		if parseErr != nil {
			skip(lineNo, parseErr)
			return
		}
		guests = append(guests, guest)
	}, skip)
	if err != nil {
		return nil, fmt.Errorf("read guests from %s: %w", r.path, err)
	}
	return guests, nil
}

func (r *fileGuestRepository) FindByID(id string) (*model.Guest, error) {
	id = strings.TrimSpace(id)
	return r.findFirst(func(g model.Guest) bool { return g.ID == id }, "id", id)
}

func (r *fileGuestRepository) FindByEmail(email string) (*model.Guest, error) {
	email = sanitizer.NormalizeEmail(email)
	return r.findFirst(func(g model.Guest) bool { return g.Email == email }, "email", email)
}

func (r *fileGuestRepository) findFirst(match func(model.Guest) bool, field, value string) (*model.Guest, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(all[i]) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", guestserrors.ErrNotFound, field, value)
}

func parseGuest(line string) (model.Guest, error) {
	fields := flatfile.Split(line)
	if len(fields) != fieldCount {
		return model.Guest{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	return model.Guest{
		ID:        fields[0],
		FirstName: sanitizer.NormalizeName(fields[1]),
		LastName:  sanitizer.NormalizeName(fields[2]),
		Email:     sanitizer.NormalizeEmail(fields[3]),
		Phone:     sanitizer.NormalizePhone(fields[4]),
		State:     sanitizer.NormalizeState(fields[5]),
	}, nil
}
