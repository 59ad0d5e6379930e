package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Address is a shipping address on a customer profile.
type Address struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CustomerID string    `json:"customerId" db:"customer_id"`
	FirstName  string    `json:"firstName" db:"first_name"`
	LastName   string    `json:"lastName" db:"last_name"`
	Email      string    `json:"email" db:"email"`
	Phone      string    `json:"phone" db:"phone"`
	Line1      string    `json:"line1" db:"line1"`
	City       string    `json:"city" db:"city"`
	State      string    `json:"state" db:"state"`
	Zip        string    `json:"zip" db:"zip"`
	Country    string    `json:"country" db:"country"`
	IsDefault  bool      `json:"isDefault" db:"is_default"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// AddressFields is the user-entered part of an address.
type AddressFields struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Line1     string `json:"line1"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Country   string `json:"country"`
}

// Complete reports whether the fields required to ship are all present.
func (f AddressFields) Complete() bool {
	for _, v := range []string{f.FirstName, f.Email, f.Phone, f.Line1} {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// FullName joins first and last name.
func (a Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
