package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

// Service exposes order queries and the guarded lifecycle mutations.
type Service struct {
	orders Repository
}

// NewService creates an order Service.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// GetByID returns an order with its items.
func (s *Service) GetByID(ctx context.Context, id int64) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetByNumber returns an order by its generated number.
func (s *Service) GetByNumber(ctx context.Context, number string) (*Order, error) {
	return s.orders.GetByNumber(ctx, number)
}

// ListByUser returns a page of the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID int64, page Page) ([]Order, error) {
	if page.Size <= 0 {
		page.Size = 20
	}
	if page.Number < 0 {
		page.Number = 0
	}
	return s.orders.ListByUser(ctx, userID, page)
}

// CountByUser returns how many orders the user has placed.
func (s *Service) CountByUser(ctx context.Context, userID int64) (int64, error) {
	return s.orders.CountByUser(ctx, userID)
}

// ListByStatus returns all orders currently in the given status.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.orders.ListByStatus(ctx, status)
}

// ListByDateRange returns orders created within [from, to].
func (s *Service) ListByDateRange(ctx context.Context, from, to time.Time) ([]Order, error) {
	if to.Before(from) {
		return nil, errors.New("date range end is before start")
	}
	return s.orders.ListByDateRange(ctx, from, to)
}

// UpdateStatus moves an order to the next lifecycle status. Only transitions
// in the central table are accepted; anything else fails with
// *InvalidTransitionError. The write is guarded on the status the order was
// read at, so a concurrent transition surfaces as ErrConcurrencyConflict
// instead of being overwritten.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next Status) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !o.Status.CanTransition(next) {
		return nil, &InvalidTransitionError{From: o.Status, To: next}
	}

	ok, err := s.orders.UpdateStatus(ctx, id, o.Status, next)
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	o.Status = next
	return o, nil
}

// UpdateShippingAddress changes the shipping address of an order that has
// not yet been confirmed. Once the order leaves PENDIENTE the address is
// frozen and the call fails with *StateConflictError.
func (s *Service) UpdateShippingAddress(ctx context.Context, id int64, address string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if o.Status != StatusPending {
		return nil, &StateConflictError{Status: o.Status, Op: "update shipping address"}
	}

	ok, err := s.orders.UpdateShippingAddress(ctx, id, address, StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "update shipping address")
	}
	if !ok {
		return nil, ErrConcurrencyConflict
	}

	o.ShippingAddress = address
	return o, nil
}
