// Package stock defines the stock ledger: the sole authority over product
// available quantities. Callers never read-then-write a quantity; the only
// legal decrement is Reserve's atomic conditional update.
package stock

import (
	"context"
	"fmt"
)

// Reservation is a token for stock provisionally set aside during a checkout
// attempt. It must end in exactly one of Commit or Release.
type Reservation struct {
	ProductID int64
	Quantity  int
}

// InsufficientStockError indicates a reservation was refused because fewer
// units were available than requested.
type InsufficientStockError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

// Ledger exposes the two-phase stock contract.
//
// Reserve atomically checks available >= qty and decrements in one step,
// returning *InsufficientStockError on refusal. It never drives the available
// quantity negative, even under concurrent callers, and is never retried
// automatically. Release restores a reservation's quantity (rollback path).
// Commit finalizes a reservation; it is a no-op on quantity and exists to
// make the two-phase contract explicit for the checkout orchestrator.
type Ledger interface {
	Reserve(ctx context.Context, productID int64, qty int) (Reservation, error)
	Release(ctx context.Context, r Reservation) error
	Commit(ctx context.Context, r Reservation) error
}
