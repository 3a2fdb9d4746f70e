// Package user holds the narrow slice of the accounts collaborator this
// subsystem consumes: identity and the default shipping address.
package user

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound indicates the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// User is an account as seen by the cart/checkout subsystem.
type User struct {
	ID              int64
	Email           string
	FullName        string
	ShippingAddress string
}

// Repository provides user lookups.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*User, error)
}
