package repository

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	hostserrors "hostbook/internal/hosts/errors"
	"hostbook/pkg/flatfile"
	"hostbook/pkg/logger"
	"hostbook/pkg/model"
	"hostbook/pkg/sanitizer"
)

const (
	Header = "id,last_name,email,phone,address,city,state,postal_code,standard_rate,weekend_rate"

	fieldCount = 10
)

// HostRepository is a read-only view of the host directory file.
type HostRepository interface {
	FindAll() ([]model.Host, error)
	FindByID(id string) (*model.Host, error)
	FindByEmail(email string) (*model.Host, error)
	FindByLocation(state, city, postalCode string) ([]model.Host, error)
}

type fileHostRepository struct {
	path     string
	validate *validator.Validate
	log      *logger.Logger
}

func NewFileHostRepository(path string, validate *validator.Validate, log *logger.Logger) HostRepository {
	return &fileHostRepository{
		path:     path,
		validate: validate,
		log:      log,
	}
}

// FindAll loads every usable host. Corrupt lines and hosts that fail
// validation (for example a non-positive rate) are skipped with a warning.
func (r *fileHostRepository) FindAll() ([]model.Host, error) {
	hosts := []model.Host{}
	skip := func(lineNo int, err error) {
		r.log.Warn("Skipping invalid host record",
			"file", r.path,
			"line", lineNo,
			"error", err,
		)
	}
	err := flatfile.Scan(r.path, Header, func(lineNo int, line string) {
		host, parseErr := parseHost(line)
		if parseErr == nil {
			parseErr = r.validate.Struct(host)
		}
		if parseErr != nil {
			skip(lineNo, parseErr)
			return
		}
		hosts = append(hosts, host)
	}, skip)
	if err != nil {
		return nil, fmt.Errorf("read hosts from %s: %w", r.path, err)
	}
	return hosts, nil
}

func (r *fileHostRepository) FindByID(id string) (*model.Host, error) {
	id = strings.TrimSpace(id)
	return r.findFirst(func(h model.Host) bool { return h.ID == id }, "id", id)
}

func (r *fileHostRepository) FindByEmail(email string) (*model.Host, error) {
	email = sanitizer.NormalizeEmail(email)
	return r.findFirst(func(h model.Host) bool { return h.Email == email }, "email", email)
}

// FindByLocation returns hosts matching every non-empty filter. Comparison
// ignores case, spacing and punctuation.
func (r *fileHostRepository) FindByLocation(state, city, postalCode string) ([]model.Host, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}

	matched := []model.Host{}
	for _, h := range all {
		if sanitizer.MatchesLocation(state, h.State) &&
			sanitizer.MatchesLocation(city, h.City) &&
			sanitizer.MatchesLocation(postalCode, h.PostalCode) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func (r *fileHostRepository) findFirst(match func(model.Host) bool, field, value string) (*model.Host, error) {
	all, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if match(all[i]) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s %q", hostserrors.ErrNotFound, field, value)
}

func parseHost(line string) (model.Host, error) {
	fields := flatfile.Split(line)
	if len(fields) != fieldCount {
		return model.Host{}, fmt.Errorf("expected %d fields, got %d", fieldCount, len(fields))
	}

	standard, err := decimal.NewFromString(fields[8])
	if err != nil {
		return model.Host{}, fmt.Errorf("standard_rate %q: %w", fields[8], hostserrors.ErrInvalidRates)
	}
	weekend, err := decimal.NewFromString(fields[9])
	if err != nil {
		return model.Host{}, fmt.Errorf("weekend_rate %q: %w", fields[9], hostserrors.ErrInvalidRates)
	}

	return model.Host{
		ID:           fields[0],
		LastName:     sanitizer.NormalizeName(fields[1]),
		Email:        sanitizer.NormalizeEmail(fields[2]),
		Phone:        sanitizer.NormalizePhone(fields[3]),
		Address:      sanitizer.TrimAndNormalize(fields[4]),
		City:         sanitizer.NormalizeCity(fields[5]),
		State:        sanitizer.NormalizeState(fields[6]),
		PostalCode:   sanitizer.NormalizePostalCode(fields[7]),
		StandardRate: standard,
		WeekendRate:  weekend,
	}, nil
}
