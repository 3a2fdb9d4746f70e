package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/product"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
)

// Service encapsulates cart business logic on top of the repository.
type Service struct {
	carts    Repository
	products product.Repository
	locks    *UserLocker
	now      func() time.Time
}

// NewService creates a cart Service. The UserLocker must be the same instance
// the checkout orchestrator uses, so cart writes and checkout serialize
// against each other per user.
func NewService(carts Repository, products product.Repository, locks *UserLocker) *Service {
	return &Service{
		carts:    carts,
		products: products,
		locks:    locks,
		now:      time.Now,
	}
}

// AddItem puts qty units of a product into the user's cart. If the product is
// already present the quantities merge into the existing line. The unit price
// is snapshotted from the current catalog price on first add.
//
// The availability check here is advisory, for user feedback only: stock is
// authoritative solely at checkout, through the ledger.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}

	unlock := s.locks.Lock(userID)
	defer unlock()

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "get product")
	}

	if !p.HasStock(qty) {
		return &stock.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: p.AvailableQuantity,
		}
	}

	item := Item{
		ProductID: productID,
		Quantity:  qty,
		UnitPrice: p.Price,
		AddedAt:   s.now(),
	}
	if err := s.carts.AddItem(ctx, userID, item); err != nil {
		return errors.Wrap(err, "add cart item")
	}
	return nil
}

// UpdateQuantity sets the absolute quantity of a cart line. A quantity of
// zero or less removes the line instead of persisting an invalid state; that
// removal is idempotent.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID int64, qty int) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	if qty <= 0 {
		if err := s.carts.RemoveItem(ctx, userID, productID); err != nil {
			return errors.Wrap(err, "remove cart item")
		}
		return nil
	}

	ok, err := s.carts.SetQuantity(ctx, userID, productID, qty)
	if err != nil {
		return errors.Wrap(err, "set cart quantity")
	}
	if !ok {
		return ErrItemNotFound
	}
	return nil
}

// RemoveItem deletes a cart line. It is a no-op when the product is absent.
func (s *Service) RemoveItem(ctx context.Context, userID, productID int64) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.carts.RemoveItem(ctx, userID, productID)
}

// Clear removes every line from the user's cart.
func (s *Service) Clear(ctx context.Context, userID int64) error {
	unlock := s.locks.Lock(userID)
	defer unlock()

	return s.carts.Clear(ctx, userID)
}

// Items returns the cart lines in insertion order.
func (s *Service) Items(ctx context.Context, userID int64) ([]Item, error) {
	return s.carts.Items(ctx, userID)
}

// Total returns the sum of line subtotals as an exact decimal.
func (s *Service) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Subtotal())
	}
	return total, nil
}

// ItemCount returns the summed quantity across lines, not the line count.
func (s *Service) ItemCount(ctx context.Context, userID int64) (int64, error) {
	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return 0, err
	}

	var count int64
	for _, it := range items {
		count += int64(it.Quantity)
	}
	return count, nil
}
