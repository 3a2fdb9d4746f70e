package cart

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/product"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
)

// mockRepo is an in-memory cart Repository with merge-on-add semantics
// matching the SQL upsert: merged lines keep their stored unit price.
type mockRepo struct {
	items map[int64][]Item
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[int64][]Item)}
}

func (m *mockRepo) Items(_ context.Context, userID int64) ([]Item, error) {
	return append([]Item{}, m.items[userID]...), nil
}

func (m *mockRepo) AddItem(_ context.Context, userID int64, item Item) error {
	for i, it := range m.items[userID] {
		if it.ProductID == item.ProductID {
			m.items[userID][i].Quantity += item.Quantity
			return nil
		}
	}
	m.items[userID] = append(m.items[userID], item)
	return nil
}

func (m *mockRepo) SetQuantity(_ context.Context, userID, productID int64, qty int) (bool, error) {
	for i, it := range m.items[userID] {
		if it.ProductID == productID {
			m.items[userID][i].Quantity = qty
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepo) RemoveItem(_ context.Context, userID, productID int64) error {
	items := m.items[userID]
	for i, it := range items {
		if it.ProductID == productID {
			m.items[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepo) Clear(_ context.Context, userID int64) error {
	delete(m.items, userID)
	return nil
}

type mockProducts struct {
	byID map[int64]*product.Product
}

func (m *mockProducts) List(context.Context) ([]product.Product, error) { return nil, nil }

func (m *mockProducts) GetByID(_ context.Context, id int64) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProducts) GetByIDs(_ context.Context, ids []int64) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockProducts) LowStock(context.Context, int) ([]product.Product, error) { return nil, nil }

func (m *mockProducts) CountOutOfStock(context.Context) (int64, error) { return 0, nil }

func newTestService() (*Service, *mockRepo, *mockProducts) {
	repo := newMockRepo()
	products := &mockProducts{byID: map[int64]*product.Product{
		1: {ID: 1, Description: "Balón de fútbol", Price: decimal.RequireFromString("10.00"), AvailableQuantity: 50},
		2: {ID: 2, Description: "Camiseta técnica", Price: decimal.RequireFromString("5.00"), AvailableQuantity: 4},
	}}
	svc := NewService(repo, products, NewUserLocker())
	return svc, repo, products
}

func TestService_AddItem(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, decimal.RequireFromString("10.00").Equal(items[0].UnitPrice))
	assert.False(t, items[0].AddedAt.IsZero())
}

func TestService_AddItem_MergesQuantities(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))
	require.NoError(t, svc.AddItem(ctx, 1, 1, 3))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1, "merged adds must stay on one line")
	assert.Equal(t, 5, items[0].Quantity)
}

func TestService_AddItem_KeepsSnapshotPrice(t *testing.T) {
	svc, repo, products := newTestService()
	ctx := context.Background()

	require.NoError(t, svc.AddItem(ctx, 1, 1, 1))

	// A later catalog price change must not leak into the cart line.
	products.byID[1].Price = decimal.RequireFromString("99.99")
	require.NoError(t, svc.AddItem(ctx, 1, 1, 1))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, decimal.RequireFromString("10.00").Equal(items[0].UnitPrice))
}

func TestService_AddItem_InvalidQuantity(t *testing.T) {
	svc, _, _ := newTestService()

	require.ErrorIs(t, svc.AddItem(context.Background(), 1, 1, 0), ErrInvalidQuantity)
	require.ErrorIs(t, svc.AddItem(context.Background(), 1, 1, -3), ErrInvalidQuantity)
}

func TestService_AddItem_UnknownProduct(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.AddItem(context.Background(), 1, 99, 1)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestService_AddItem_InsufficientStock(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.AddItem(context.Background(), 1, 2, 10)

	var stockErr *stock.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(2), stockErr.ProductID)
	assert.Equal(t, 10, stockErr.Requested)
	assert.Equal(t, 4, stockErr.Available)

	items, err := repo.Items(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestService_UpdateQuantity(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))

	require.NoError(t, svc.UpdateQuantity(ctx, 1, 1, 7))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 7, items[0].Quantity)
}

func TestService_UpdateQuantity_ZeroRemovesLine(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))

	require.NoError(t, svc.UpdateQuantity(ctx, 1, 1, 0))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	// Removal via zero is idempotent.
	require.NoError(t, svc.UpdateQuantity(ctx, 1, 1, -1))
}

func TestService_UpdateQuantity_MissingLine(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.UpdateQuantity(context.Background(), 1, 1, 3)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestService_RemoveItem_Idempotent(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))

	require.NoError(t, svc.RemoveItem(ctx, 1, 1))
	require.NoError(t, svc.RemoveItem(ctx, 1, 1))
}

func TestService_TotalAndItemCount(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, 1, 1, 3)) // 3 x 10.00
	require.NoError(t, svc.AddItem(ctx, 1, 2, 1)) // 1 x 5.00

	total, err := svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("35.00").Equal(total), "got %s", total)

	count, err := svc.ItemCount(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count, "count sums quantities, not lines")
}

func TestService_Clear(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	require.NoError(t, svc.AddItem(ctx, 1, 1, 2))
	require.NoError(t, svc.AddItem(ctx, 1, 2, 1))

	require.NoError(t, svc.Clear(ctx, 1))

	items, err := repo.Items(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)

	total, err := svc.Total(ctx, 1)
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestItem_Subtotal(t *testing.T) {
	it := Item{Quantity: 3, UnitPrice: decimal.RequireFromString("19.99"), AddedAt: time.Now()}
	assert.True(t, decimal.RequireFromString("59.97").Equal(it.Subtotal()))
}
