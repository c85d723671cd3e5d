package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// OrderItemRepo provides data access to order_items. Rows are keyed by
// the composite (order_id, item_id) primary key.
type OrderItemRepo struct {
	db *sql.DB
}

// NewOrderItemRepo returns a new OrderItemRepo bound to the given database.
func NewOrderItemRepo(db *sql.DB) *OrderItemRepo { return &OrderItemRepo{db: db} }

const orderItemSelect = `SELECT order_id, item_id, product_id, quantity, list_price, discount FROM order_items`

func (r *OrderItemRepo) list(ctx context.Context, query string, args ...any) ([]model.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderItem{}
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.OrderID, &it.ItemID, &it.ProductID, &it.Quantity, &it.ListPrice, &it.Discount); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// Create inserts a line item. A duplicate (order, item) pair fails with
// ErrConflict.
func (r *OrderItemRepo) Create(ctx context.Context, it *model.OrderItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO order_items (order_id, item_id, product_id, quantity, list_price, discount) VALUES (?, ?, ?, ?, ?, ?)`,
		it.OrderID, it.ItemID, it.ProductID, it.Quantity, it.ListPrice, it.Discount)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// Get returns the line item for key or ErrOrderItemNotFound.
func (r *OrderItemRepo) Get(ctx context.Context, key model.OrderItemKey) (model.OrderItem, error) {
	var it model.OrderItem
	err := r.db.QueryRowContext(ctx, orderItemSelect+` WHERE order_id = ? AND item_id = ?`, key.OrderID, key.ItemID).
		Scan(&it.OrderID, &it.ItemID, &it.ProductID, &it.Quantity, &it.ListPrice, &it.Discount)
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrOrderItemNotFound
	}
	return it, err
}

// ListByOrder returns the lines of one order ordered by item id.
func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	return r.list(ctx, orderItemSelect+` WHERE order_id = ? ORDER BY item_id`, orderID)
}

// List returns every line item.
func (r *OrderItemRepo) List(ctx context.Context) ([]model.OrderItem, error) {
	return r.list(ctx, orderItemSelect+` ORDER BY order_id, item_id`)
}

// Update overwrites product, quantity, list price and discount of key.
func (r *OrderItemRepo) Update(ctx context.Context, it *model.OrderItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE order_items SET product_id = ?, quantity = ?, list_price = ?, discount = ? WHERE order_id = ? AND item_id = ?`,
		it.ProductID, it.Quantity, it.ListPrice, it.Discount, it.OrderID, it.ItemID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOrderItemNotFound)
}

// Delete removes the line item for key.
func (r *OrderItemRepo) Delete(ctx context.Context, key model.OrderItemKey) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ? AND item_id = ?`, key.OrderID, key.ItemID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOrderItemNotFound)
}
