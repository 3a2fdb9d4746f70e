package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
)

const (
	orderColumns = `id, order_number, user_id, created_at, shipping_address, status, total`

	insertOrderSQL = `INSERT INTO orders (order_number, user_id, created_at, shipping_address, status, total)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	getOrderByNumberSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`

	orderExistsSQL = `SELECT EXISTS (SELECT 1 FROM orders WHERE order_number = $1)`

	orderItemsSQL = `SELECT product_id, quantity, unit_price FROM order_items
		WHERE order_id = $1 ORDER BY id`

	listOrdersByUserSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	countOrdersByUserSQL = `SELECT count(*) FROM orders WHERE user_id = $1`

	listOrdersByStatusSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE status = $1 ORDER BY created_at DESC, id DESC`

	listOrdersByDateRangeSQL = `SELECT ` + orderColumns + ` FROM orders
		WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at DESC, id DESC`

	// Both updates are guarded on the current status so lost races surface
	// as zero affected rows instead of silent overwrites.
	updateOrderStatusSQL = `UPDATE orders SET status = $3 WHERE id = $1 AND status = $2`

	updateOrderAddressSQL = `UPDATE orders SET shipping_address = $3 WHERE id = $1 AND status = $2`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. It runs
// against any Querier, so the checkout transaction reuses it unchanged.
type OrderRepository struct {
	db Querier
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: pool}
}

func newOrderRepository(db Querier) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists an order and its items, filling o.ID from the inserted row.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.QueryRow(ctx, insertOrderSQL,
		o.Number, o.UserID, o.CreatedAt, o.ShippingAddress, o.Status, o.Total,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.Number, err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(insertOrderItemSQL, o.ID, it.ProductID, it.Quantity, it.UnitPrice)
	}

	results := r.sendBatch(ctx, batch)
	defer func() { _ = results.Close() }()
	for range o.Items {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("creating items for order %q: %w", o.Number, err)
		}
	}
	return nil
}

// sendBatch dispatches to the underlying pool or transaction; both pgx types
// expose SendBatch but it is not part of the minimal Querier interface.
func (r *OrderRepository) sendBatch(ctx context.Context, batch *pgx.Batch) pgx.BatchResults {
	type batchSender interface {
		SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	}
	return r.db.(batchSender).SendBatch(ctx, batch)
}

// GetByID returns an order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	return r.getOne(ctx, getOrderByIDSQL, id)
}

// GetByNumber returns an order with its items, looked up by order number.
func (r *OrderRepository) GetByNumber(ctx context.Context, number string) (*order.Order, error) {
	return r.getOne(ctx, getOrderByNumberSQL, number)
}

func (r *OrderRepository) getOne(ctx context.Context, sql string, arg any) (*order.Order, error) {
	rows, err := r.db.Query(ctx, sql, arg)
	if err != nil {
		return nil, fmt.Errorf("getting order: %w", err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order: %w", err)
	}

	itemRows, err := r.db.Query(ctx, orderItemsSQL, o.ID)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", o.ID, err)
	}
	o.Items, err = pgx.CollectRows(itemRows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("getting items for order %d: %w", o.ID, err)
	}
	return &o, nil
}

// ExistsByNumber reports whether an order number is already taken.
func (r *OrderRepository) ExistsByNumber(ctx context.Context, number string) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, orderExistsSQL, number).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking order number %q: %w", number, err)
	}
	return exists, nil
}

// ListByUser returns a page of the user's orders, newest first, without items.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64, page order.Page) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByUserSQL, userID, page.Size, page.Number*page.Size)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// CountByUser returns the user's total order count.
func (r *OrderRepository) CountByUser(ctx context.Context, userID int64) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, countOrdersByUserSQL, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting orders for user %d: %w", userID, err)
	}
	return count, nil
}

// ListByStatus returns all orders in the given status, without items.
func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByStatusSQL, status)
	if err != nil {
		return nil, fmt.Errorf("listing orders by status %s: %w", status, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListByDateRange returns orders created within [from, to], without items.
func (r *OrderRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, listOrdersByDateRangeSQL, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing orders by date range: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus conditionally moves an order from one status to another. It
// reports false when the order was no longer in the expected status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, from, to order.Status) (bool, error) {
	tag, err := r.db.Exec(ctx, updateOrderStatusSQL, id, from, to)
	if err != nil {
		return false, fmt.Errorf("updating status of order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateShippingAddress conditionally updates the address of an order still
// in the given status.
func (r *OrderRepository) UpdateShippingAddress(ctx context.Context, id int64, address string, current order.Status) (bool, error) {
	tag, err := r.db.Exec(ctx, updateOrderAddressSQL, id, current, address)
	if err != nil {
		return false, fmt.Errorf("updating address of order %d: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.CreatedAt, &o.ShippingAddress, &o.Status, &o.Total,
	)
	return o, err
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var it order.Item
	err := row.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice)
	return it, err
}
