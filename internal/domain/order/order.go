// Package order owns order creation (checkout) and the post-creation
// lifecycle. Orders are immutable after creation except for status and,
// while still pending, the shipping address.
package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested order does not exist.
var ErrNotFound = errors.New("order not found")

// ErrConcurrencyConflict indicates a guarded update lost a race: the row
// changed between the read and the conditional write.
var ErrConcurrencyConflict = errors.New("order was modified concurrently")

// Order is an immutable priced purchase created from a cart at checkout.
// UserID, Number, CreatedAt, Total, and Items never change after creation.
type Order struct {
	ID              int64
	Number          string
	UserID          int64
	CreatedAt       time.Time
	ShippingAddress string
	Status          Status
	Total           decimal.Decimal
	Items           []Item
}

// Item is an order line with the unit price snapshotted at checkout time,
// independent of any later catalog price change.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal returns UnitPrice * Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Page selects a slice of a user's order history.
type Page struct {
	Number int
	Size   int
}

// Repository defines persistence operations for orders.
//
// UpdateStatus and UpdateShippingAddress are conditional writes: they report
// false when the guard (expected current status) no longer held, so the
// service can surface the lost race instead of silently overwriting.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByNumber(ctx context.Context, number string) (*Order, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	ListByUser(ctx context.Context, userID int64, page Page) ([]Order, error)
	CountByUser(ctx context.Context, userID int64) (int64, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Order, error)
	UpdateStatus(ctx context.Context, id int64, from, to Status) (bool, error)
	UpdateShippingAddress(ctx context.Context, id int64, address string, current Status) (bool, error)
}
