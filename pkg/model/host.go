package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Host struct {
	ID           string          `json:"id" validate:"required"`
	LastName     string          `json:"last_name" validate:"required"`
	Email        string          `json:"email" validate:"required,email"`
	Phone        string          `json:"phone" validate:"omitempty,e164"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state" validate:"omitempty,len=2"`
	PostalCode   string          `json:"postal_code"`
	StandardRate decimal.Decimal `json:"standard_rate" validate:"gt=0"`
	WeekendRate  decimal.Decimal `json:"weekend_rate" validate:"gt=0"`
}

func (h Host) String() string {
	return fmt.Sprintf("%s: %s, %s", h.LastName, h.City, h.State)
}
