package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/order"
	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/stock"
)

const (
	// The decrement is a single conditional update: check and write happen
	// in one statement, so concurrent reservations can never drive the
	// quantity negative. Zero affected rows means insufficient stock.
	reserveStockSQL = `UPDATE products
		SET available_quantity = available_quantity - $2
		WHERE id = $1 AND available_quantity >= $2`

	releaseStockSQL = `UPDATE products
		SET available_quantity = available_quantity + $2
		WHERE id = $1`

	availableQuantitySQL = `SELECT available_quantity FROM products WHERE id = $1`

	advisoryLockSQL = `SELECT pg_advisory_xact_lock($1)`

	clearCartByUserSQL = `DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1`
)

var _ stock.Ledger = (*StockLedger)(nil)

// StockLedger implements stock.Ledger over any Querier: the pool for
// standalone use, or the checkout transaction.
type StockLedger struct {
	db Querier
}

// NewStockLedger returns a StockLedger that uses the given pool.
func NewStockLedger(pool *pgxpool.Pool) *StockLedger {
	return &StockLedger{db: pool}
}

// Reserve atomically decrements the product's availability by qty. It fails
// with *stock.InsufficientStockError when fewer units are available.
func (l *StockLedger) Reserve(ctx context.Context, productID int64, qty int) (stock.Reservation, error) {
	tag, err := l.db.Exec(ctx, reserveStockSQL, productID, qty)
	if err != nil {
		return stock.Reservation{}, fmt.Errorf("reserving %d units of product %d: %w", qty, productID, err)
	}

	if tag.RowsAffected() == 0 {
		// Read the current quantity only to enrich the error; the refusal
		// itself was already decided by the conditional update.
		var available int
		if err := l.db.QueryRow(ctx, availableQuantitySQL, productID).Scan(&available); err != nil {
			available = 0
		}
		return stock.Reservation{}, &stock.InsufficientStockError{
			ProductID: productID,
			Requested: qty,
			Available: available,
		}
	}

	return stock.Reservation{ProductID: productID, Quantity: qty}, nil
}

// Release restores a reservation's quantity.
func (l *StockLedger) Release(ctx context.Context, r stock.Reservation) error {
	_, err := l.db.Exec(ctx, releaseStockSQL, r.ProductID, r.Quantity)
	if err != nil {
		return fmt.Errorf("releasing %d units of product %d: %w", r.Quantity, r.ProductID, err)
	}
	return nil
}

// Commit finalizes a reservation. The decrement was already applied by
// Reserve and becomes durable when the surrounding transaction commits.
func (l *StockLedger) Commit(_ context.Context, _ stock.Reservation) error {
	return nil
}

var _ order.CheckoutStore = (*CheckoutStore)(nil)

// CheckoutStore runs a checkout attempt inside one database transaction:
// stock decrements, the order insert, and the cart clear are durable together
// or rolled back together, so no partial order is ever observable.
type CheckoutStore struct {
	pool *pgxpool.Pool
}

// NewCheckoutStore returns a CheckoutStore that uses the given pool.
func NewCheckoutStore(pool *pgxpool.Pool) *CheckoutStore {
	return &CheckoutStore{pool: pool}
}

// Checkout opens a transaction, takes the per-user advisory lock so cart
// writes from other processes (which take the same lock) serialize against
// this checkout, and runs fn. Any error (including a context cancellation
// mid-checkout) rolls the whole transaction back, which also undoes every
// reservation taken.
func (s *CheckoutStore) Checkout(ctx context.Context, userID int64, fn func(ctx context.Context, tx order.CheckoutTx) error) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, advisoryLockSQL, userID); err != nil {
			return fmt.Errorf("acquiring checkout lock for user %d: %w", userID, err)
		}
		return fn(ctx, &checkoutTx{
			StockLedger: &StockLedger{db: tx},
			orders:      newOrderRepository(tx),
			tx:          tx,
		})
	})
}

// checkoutTx adapts one pgx transaction to the order.CheckoutTx contract.
type checkoutTx struct {
	*StockLedger
	orders *OrderRepository
	tx     pgx.Tx
}

func (t *checkoutTx) CartItems(ctx context.Context, userID int64) ([]cart.Item, error) {
	rows, err := t.tx.Query(ctx, cartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

func (t *checkoutTx) CreateOrder(ctx context.Context, o *order.Order) error {
	return t.orders.Create(ctx, o)
}

func (t *checkoutTx) ClearCart(ctx context.Context, userID int64) error {
	_, err := t.tx.Exec(ctx, clearCartByUserSQL, userID)
	if err != nil {
		return fmt.Errorf("clearing cart for user %d: %w", userID, err)
	}
	return nil
}
