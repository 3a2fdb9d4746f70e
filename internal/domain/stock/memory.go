package stock

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

var _ Ledger = (*MemoryLedger)(nil)

// MemoryLedger is a mutex-guarded in-memory Ledger. It backs unit tests and
// local development without a database.
type MemoryLedger struct {
	mu        sync.Mutex
	available map[int64]int
}

// NewMemoryLedger creates a MemoryLedger holding the given quantities.
func NewMemoryLedger(available map[int64]int) *MemoryLedger {
	qty := make(map[int64]int, len(available))
	for id, n := range available {
		qty[id] = n
	}
	return &MemoryLedger{available: qty}
}

// Reserve implements Ledger. The check and decrement happen under one lock
// acquisition, so concurrent reservations can never oversell.
func (l *MemoryLedger) Reserve(_ context.Context, productID int64, qty int) (Reservation, error) {
	if qty < 1 {
		return Reservation{}, errors.New("reserve quantity must be at least 1")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	avail, ok := l.available[productID]
	if !ok || avail < qty {
		return Reservation{}, &InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: avail,
		}
	}

	l.available[productID] = avail - qty
	return Reservation{ProductID: productID, Quantity: qty}, nil
}

// Release implements Ledger.
func (l *MemoryLedger) Release(_ context.Context, r Reservation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.available[r.ProductID] += r.Quantity
	return nil
}

// Commit implements Ledger. The decrement already happened in Reserve.
func (l *MemoryLedger) Commit(_ context.Context, _ Reservation) error {
	return nil
}

// Available returns the current quantity for a product.
func (l *MemoryLedger) Available(productID int64) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.available[productID]
}
