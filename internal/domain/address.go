package domain

import (
	"context"
	"time"
)

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the authenticated shopper as carried by the auth middleware.
// Identity issuance lives outside this service; requests arrive with a
// signed token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type Address struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Line1      string    `json:"addressLine1"`
	Line2      string    `json:"addressLine2,omitempty"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postalCode"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Validate checks the required fields before persistence. Line2 is the
// only optional field.
func (a *Address) Validate() error {
	switch {
	case a.Line1 == "":
		return &ValidationError{Field: "addressLine1"}
	case a.City == "":
		return &ValidationError{Field: "city"}
	case a.State == "":
		return &ValidationError{Field: "state"}
	case a.PostalCode == "":
		return &ValidationError{Field: "postalCode"}
	case a.Country == "":
		return &ValidationError{Field: "country"}
	}
	return nil
}

type AddressRepository interface {
	// ListByUser returns addresses oldest-first; the first one is the
	// default selection.
	ListByUser(ctx context.Context, userID string) ([]Address, error)
	Create(ctx context.Context, addr *Address) error
}
