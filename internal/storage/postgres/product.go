package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emanuelcastillo/APP-DEPORTES/internal/domain/product"
)

const (
	productColumns = `id, description, price, available_quantity, category, image_path`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id`

	lowStockSQL = `SELECT ` + productColumns + ` FROM products
		WHERE available_quantity <= $1 ORDER BY available_quantity, id`

	countOutOfStockSQL = `SELECT count(*) FROM products WHERE available_quantity = 0`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// LowStock returns products at or below the given availability threshold.
func (r *ProductRepository) LowStock(ctx context.Context, threshold int) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, lowStockSQL, threshold)
	if err != nil {
		return nil, fmt.Errorf("listing low stock products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// CountOutOfStock returns how many products have zero availability.
func (r *ProductRepository) CountOutOfStock(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, countOutOfStockSQL).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting out of stock products: %w", err)
	}
	return count, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Description, &p.Price, &p.AvailableQuantity, &p.Category, &p.ImagePath,
	)
	return p, err
}
