// Package cart implements the per-user cart aggregate: the mutable staging
// area of intended purchases. A cart holds at most one item per product;
// adding an existing product merges quantities. Unit prices are snapshotted
// when the product first enters the cart and never follow later catalog
// price changes.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for cart operations.
var (
	ErrItemNotFound    = errors.New("product not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Item is a single cart line: one product, its quantity, and the unit price
// captured when the product was added.
type Item struct {
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
	AddedAt   time.Time
}

// Subtotal returns UnitPrice * Quantity.
func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Repository defines persistence for cart line items, keyed by user. The
// cart row itself is created lazily on first add and lives as long as the
// user does.
//
// AddItem merges: if the user's cart already holds the product, the stored
// quantity is increased by item.Quantity and the stored unit price is kept;
// otherwise a new line is inserted as given. The merge must be a single
// atomic write (upsert), not read-then-write.
type Repository interface {
	Items(ctx context.Context, userID int64) ([]Item, error)
	AddItem(ctx context.Context, userID int64, item Item) error
	// SetQuantity sets an absolute quantity. It reports false when the
	// user's cart has no line for the product.
	SetQuantity(ctx context.Context, userID, productID int64, qty int) (bool, error)
	RemoveItem(ctx context.Context, userID, productID int64) error
	Clear(ctx context.Context, userID int64) error
}
