package order

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOrderRepo is an in-memory Repository for service tests. The guarded
// updates honor their status condition like the SQL implementation does, and
// failUpdates forces them to report a lost race.
type mockOrderRepo struct {
	byID        map[int64]*Order
	failUpdates bool
}

func newOrderRepo(orders ...*Order) *mockOrderRepo {
	r := &mockOrderRepo{byID: make(map[int64]*Order)}
	for _, o := range orders {
		r.byID[o.ID] = o
	}
	return r
}

func (r *mockOrderRepo) Create(_ context.Context, o *Order) error {
	o.ID = int64(len(r.byID) + 1)
	r.byID[o.ID] = o
	return nil
}

func (r *mockOrderRepo) GetByID(_ context.Context, id int64) (*Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *mockOrderRepo) GetByNumber(_ context.Context, number string) (*Order, error) {
	for _, o := range r.byID {
		if o.Number == number {
			cp := *o
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *mockOrderRepo) ExistsByNumber(_ context.Context, number string) (bool, error) {
	for _, o := range r.byID {
		if o.Number == number {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockOrderRepo) ListByUser(_ context.Context, userID int64, page Page) ([]Order, error) {
	var out []Order
	for _, o := range r.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	if len(out) > page.Size {
		out = out[:page.Size]
	}
	return out, nil
}

func (r *mockOrderRepo) CountByUser(_ context.Context, userID int64) (int64, error) {
	var n int64
	for _, o := range r.byID {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *mockOrderRepo) ListByStatus(_ context.Context, status Status) ([]Order, error) {
	var out []Order
	for _, o := range r.byID {
		if o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *mockOrderRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]Order, error) {
	var out []Order
	for _, o := range r.byID {
		if !o.CreatedAt.Before(from) && !o.CreatedAt.After(to) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *mockOrderRepo) UpdateStatus(_ context.Context, id int64, from, to Status) (bool, error) {
	if r.failUpdates {
		return false, nil
	}
	o, ok := r.byID[id]
	if !ok || o.Status != from {
		return false, nil
	}
	o.Status = to
	return true, nil
}

func (r *mockOrderRepo) UpdateShippingAddress(_ context.Context, id int64, address string, current Status) (bool, error) {
	if r.failUpdates {
		return false, nil
	}
	o, ok := r.byID[id]
	if !ok || o.Status != current {
		return false, nil
	}
	o.ShippingAddress = address
	return true, nil
}

func pendingOrder(id int64) *Order {
	return &Order{
		ID:              id,
		Number:          "ORD-20250901-AB12CD34",
		UserID:          1,
		CreatedAt:       time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC),
		ShippingAddress: "Calle Mayor 1, Madrid",
		Status:          StatusPending,
	}
}

func TestService_UpdateStatus(t *testing.T) {
	repo := newOrderRepo(pendingOrder(1))
	svc := NewService(repo)

	o, err := svc.UpdateStatus(context.Background(), 1, StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, o.Status)
	assert.Equal(t, StatusConfirmed, repo.byID[1].Status)
}

func TestService_UpdateStatus_InvalidTransition(t *testing.T) {
	repo := newOrderRepo(pendingOrder(1))
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, StatusShipped)

	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
	assert.Equal(t, StatusPending, transErr.From)
	assert.Equal(t, StatusShipped, transErr.To)
	assert.Equal(t, StatusPending, repo.byID[1].Status)
}

func TestService_UpdateStatus_TerminalState(t *testing.T) {
	o := pendingOrder(1)
	o.Status = StatusDelivered
	svc := NewService(newOrderRepo(o))

	_, err := svc.UpdateStatus(context.Background(), 1, StatusCancelled)

	var transErr *InvalidTransitionError
	require.ErrorAs(t, err, &transErr)
}

func TestService_UpdateStatus_LostRace(t *testing.T) {
	repo := newOrderRepo(pendingOrder(1))
	repo.failUpdates = true
	svc := NewService(repo)

	_, err := svc.UpdateStatus(context.Background(), 1, StatusConfirmed)
	require.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestService_UpdateStatus_NotFound(t *testing.T) {
	svc := NewService(newOrderRepo())

	_, err := svc.UpdateStatus(context.Background(), 42, StatusConfirmed)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestService_UpdateShippingAddress_WhilePending(t *testing.T) {
	repo := newOrderRepo(pendingOrder(1))
	svc := NewService(repo)

	o, err := svc.UpdateShippingAddress(context.Background(), 1, "Gran Via 10, Madrid")
	require.NoError(t, err)
	assert.Equal(t, "Gran Via 10, Madrid", o.ShippingAddress)
	assert.Equal(t, "Gran Via 10, Madrid", repo.byID[1].ShippingAddress)
}

func TestService_UpdateShippingAddress_AfterConfirmation(t *testing.T) {
	o := pendingOrder(1)
	o.Status = StatusConfirmed
	repo := newOrderRepo(o)
	svc := NewService(repo)

	_, err := svc.UpdateShippingAddress(context.Background(), 1, "Gran Via 10, Madrid")

	var stateErr *StateConflictError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, StatusConfirmed, stateErr.Status)
	assert.Equal(t, "Calle Mayor 1, Madrid", repo.byID[1].ShippingAddress)
}

func TestService_UpdateShippingAddress_LostRace(t *testing.T) {
	repo := newOrderRepo(pendingOrder(1))
	repo.failUpdates = true
	svc := NewService(repo)

	_, err := svc.UpdateShippingAddress(context.Background(), 1, "Gran Via 10, Madrid")
	require.ErrorIs(t, err, ErrConcurrencyConflict)
}

func TestService_ListByUser_DefaultsPageSize(t *testing.T) {
	repo := newOrderRepo()
	for i := range 25 {
		o := pendingOrder(int64(i + 1))
		repo.byID[o.ID] = o
	}
	svc := NewService(repo)

	orders, err := svc.ListByUser(context.Background(), 1, Page{})
	require.NoError(t, err)
	assert.Len(t, orders, 20)
}

func TestService_ListByDateRange_RejectsInvertedRange(t *testing.T) {
	svc := NewService(newOrderRepo())

	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	_, err := svc.ListByDateRange(context.Background(), from, from.Add(-time.Hour))
	require.Error(t, err)
}
