package model

import "fmt"

type Guest struct {
	ID        string `json:"guest_id" validate:"required"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,e164"`
	State     string `json:"state" validate:"omitempty,len=2"`
}

func (g Guest) String() string {
	return fmt.Sprintf("%s %s (%s)", g.FirstName, g.LastName, g.Email)
}
