package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// StockRepo provides data access to the stocks table. Rows are keyed by
// the composite (store_id, product_id) primary key; there is no surrogate
// id. Listing queries return rows in insertion order (created_at, then
// key) so callers see a stable ordering.
type StockRepo struct {
	db *sql.DB
}

// NewStockRepo returns a new StockRepo bound to the provided database.
func NewStockRepo(db *sql.DB) *StockRepo { return &StockRepo{db: db} }

const stockSelect = "SELECT store_id, product_id, quantity, created_at FROM stocks"

func scanStocks(rows *sql.Rows) ([]model.Stock, error) {
	defer rows.Close()
	out := []model.Stock{}
	for rows.Next() {
		var s model.Stock
		if err := rows.Scan(&s.StoreID, &s.ProductID, &s.Quantity, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a new stock row. A second row for the same (store,
// product) pair fails with ErrConflict.
func (r *StockRepo) Create(ctx context.Context, s *model.Stock) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO stocks (store_id, product_id, quantity, created_at) VALUES (?, ?, ?, ?)`,
		s.StoreID, s.ProductID, s.Quantity, s.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Get returns the stock row for key or ErrStockNotFound.
func (r *StockRepo) Get(ctx context.Context, key model.StockKey) (model.Stock, error) {
	return getStock(ctx, r.db, key)
}

func getStock(ctx context.Context, q interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}, key model.StockKey) (model.Stock, error) {
	var s model.Stock
	err := q.QueryRowContext(ctx, stockSelect+" WHERE store_id = ? AND product_id = ?", key.StoreID, key.ProductID).
		Scan(&s.StoreID, &s.ProductID, &s.Quantity, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStockNotFound
	}
	return s, err
}

// ListByStore returns every stock row of a store. An empty slice is
// returned when the store carries nothing.
func (r *StockRepo) ListByStore(ctx context.Context, storeID int64) ([]model.Stock, error) {
	rows, err := r.db.QueryContext(ctx, stockSelect+" WHERE store_id = ? ORDER BY created_at, store_id, product_id", storeID)
	if err != nil {
		return nil, err
	}
	return scanStocks(rows)
}

// ListByProduct returns every stock row of a product across stores.
func (r *StockRepo) ListByProduct(ctx context.Context, productID int64) ([]model.Stock, error) {
	rows, err := r.db.QueryContext(ctx, stockSelect+" WHERE product_id = ? ORDER BY created_at, store_id, product_id", productID)
	if err != nil {
		return nil, err
	}
	return scanStocks(rows)
}

// List returns all stock rows.
func (r *StockRepo) List(ctx context.Context) ([]model.Stock, error) {
	rows, err := r.db.QueryContext(ctx, stockSelect+" ORDER BY created_at, store_id, product_id")
	if err != nil {
		return nil, err
	}
	return scanStocks(rows)
}

// Adjust subtracts delta from the quantity of key in a single conditional
// UPDATE, so concurrent adjustments cannot lose updates or push the
// quantity below zero. A negative delta adds stock. When no row is
// updated the key is looked up inside the same transaction to tell
// ErrStockNotFound from ErrQuantityUnderflow. The updated row is returned.
func (r *StockRepo) Adjust(ctx context.Context, key model.StockKey, delta int) (model.Stock, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Stock{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE stocks SET quantity = quantity - ?
		 WHERE store_id = ? AND product_id = ? AND quantity - ? BETWEEN 0 AND ?`,
		delta, key.StoreID, key.ProductID, delta, MaxQuantity)
	if err != nil {
		return model.Stock{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Stock{}, err
	}
	if n == 0 {
		if _, err := getStock(ctx, tx, key); err != nil {
			return model.Stock{}, err
		}
		return model.Stock{}, ErrQuantityUnderflow
	}
	s, err := getStock(ctx, tx, key)
	if err != nil {
		return model.Stock{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Stock{}, err
	}
	committed = true
	return s, nil
}

// SetQuantity overwrites the quantity of key. quantity must be >= 0; the
// caller validates it.
func (r *StockRepo) SetQuantity(ctx context.Context, key model.StockKey, quantity int) (model.Stock, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stocks SET quantity = ? WHERE store_id = ? AND product_id = ?`,
		quantity, key.StoreID, key.ProductID)
	if err != nil {
		return model.Stock{}, err
	}
	if err := requireAffected(res, ErrStockNotFound); err != nil {
		return model.Stock{}, err
	}
	return r.Get(ctx, key)
}

// Delete removes the stock row for key or returns ErrStockNotFound.
func (r *StockRepo) Delete(ctx context.Context, key model.StockKey) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM stocks WHERE store_id = ? AND product_id = ?`, key.StoreID, key.ProductID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrStockNotFound)
}
