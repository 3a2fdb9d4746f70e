package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a catalog entry. AvailableQuantity is owned by the stock ledger:
// it is never written through this package, only read.
type Product struct {
	ID                int64
	Description       string
	Price             decimal.Decimal
	AvailableQuantity int
	Category          string
	ImagePath         string
}

// HasStock reports whether the product currently lists at least qty units.
// This is a snapshot read for user feedback; only the stock ledger's
// conditional decrement is authoritative.
func (p *Product) HasStock(qty int) bool {
	return p.AvailableQuantity >= qty
}

// Repository defines read access to the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Product, error)
	// LowStock returns products whose available quantity is at or below
	// the given threshold.
	LowStock(ctx context.Context, threshold int) ([]Product, error)
	CountOutOfStock(ctx context.Context) (int64, error)
}
