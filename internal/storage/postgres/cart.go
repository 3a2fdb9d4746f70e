package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/cart"
)

const (
	// The cart row is created lazily on first add; the no-op DO UPDATE makes
	// RETURNING yield the id for both the insert and the conflict case.
	ensureCartSQL = `INSERT INTO carts (user_id) VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id`

	// Merge-on-add: one atomic upsert, never read-then-write. The stored
	// unit price wins on conflict, keeping the first-add snapshot.
	upsertCartItemSQL = `INSERT INTO cart_items (cart_id, product_id, quantity, unit_price, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cart_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity`

	cartItemsSQL = `SELECT ci.product_id, ci.quantity, ci.unit_price, ci.created_at
		FROM cart_items ci
		JOIN carts c ON c.id = ci.cart_id
		WHERE c.user_id = $1
		ORDER BY ci.id`

	setCartQuantitySQL = `UPDATE cart_items ci SET quantity = $3
		FROM carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1 AND ci.product_id = $2`

	removeCartItemSQL = `DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1 AND ci.product_id = $2`

	clearCartSQL = `DELETE FROM cart_items ci
		USING carts c
		WHERE c.id = ci.cart_id AND c.user_id = $1`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Every write
// runs in a transaction holding the same per-user advisory lock the checkout
// transaction takes, so a cart write from any process either completes before
// a checkout reads the cart or waits until the checkout finishes.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) withUserLock(ctx context.Context, userID int64, fn func(tx pgx.Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, advisoryLockSQL, userID); err != nil {
			return fmt.Errorf("acquiring cart lock for user %d: %w", userID, err)
		}
		return fn(tx)
	})
}

// Items returns the user's cart lines in insertion order. A user without a
// cart row simply has no lines.
func (r *CartRepository) Items(ctx context.Context, userID int64) ([]cart.Item, error) {
	rows, err := r.pool.Query(ctx, cartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart items for user %d: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanCartItem)
}

// AddItem upserts a cart line, merging quantities when the product is already
// present.
func (r *CartRepository) AddItem(ctx context.Context, userID int64, item cart.Item) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		var cartID int64
		if err := tx.QueryRow(ctx, ensureCartSQL, userID).Scan(&cartID); err != nil {
			return fmt.Errorf("ensuring cart for user %d: %w", userID, err)
		}

		_, err := tx.Exec(ctx, upsertCartItemSQL,
			cartID, item.ProductID, item.Quantity, item.UnitPrice, item.AddedAt)
		if err != nil {
			return fmt.Errorf("upserting cart item %d for user %d: %w", item.ProductID, userID, err)
		}
		return nil
	})
}

// SetQuantity sets the absolute quantity of an existing line. It reports
// false when no line matched.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, qty int) (bool, error) {
	var matched bool
	err := r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, setCartQuantitySQL, userID, productID, qty)
		if err != nil {
			return fmt.Errorf("setting cart quantity for user %d: %w", userID, err)
		}
		matched = tag.RowsAffected() > 0
		return nil
	})
	return matched, err
}

// RemoveItem deletes a cart line; absent lines are a no-op.
func (r *CartRepository) RemoveItem(ctx context.Context, userID, productID int64) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, removeCartItemSQL, userID, productID)
		if err != nil {
			return fmt.Errorf("removing cart item %d for user %d: %w", productID, userID, err)
		}
		return nil
	})
}

// Clear deletes every line in the user's cart.
func (r *CartRepository) Clear(ctx context.Context, userID int64) error {
	return r.withUserLock(ctx, userID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, clearCartSQL, userID)
		if err != nil {
			return fmt.Errorf("clearing cart for user %d: %w", userID, err)
		}
		return nil
	})
}

func scanCartItem(row pgx.CollectableRow) (cart.Item, error) {
	var it cart.Item
	err := row.Scan(&it.ProductID, &it.Quantity, &it.UnitPrice, &it.AddedAt)
	return it, err
}
