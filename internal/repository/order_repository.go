package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// OrderRepo provides CRUD operations for orders. Order items live in
// their own repository; deleting an order removes its items in the same
// transaction.
type OrderRepo struct {
	db *sql.DB
}

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderSelect = `SELECT id, customer_id, status, order_date, required_date, shipped_date, store_id, staff_id FROM orders`

func scanOrder(row interface{ Scan(...any) error }) (model.Order, error) {
	var (
		o       model.Order
		shipped sql.NullTime
		staff   sql.NullInt64
	)
	if err := row.Scan(&o.ID, &o.CustomerID, &o.Status, &o.OrderDate, &o.RequiredDate, &shipped, &o.StoreID, &staff); err != nil {
		return o, err
	}
	if shipped.Valid {
		t := shipped.Time
		o.ShippedDate = &t
	}
	if staff.Valid {
		id := staff.Int64
		o.StaffID = &id
	}
	return o, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (r *OrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Create inserts an order and populates its generated ID. The caller is
// responsible for resolving the customer beforehand.
func (r *OrderRepo) Create(ctx context.Context, o *model.Order) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (customer_id, status, order_date, required_date, shipped_date, store_id, staff_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		o.CustomerID, o.Status, o.OrderDate.UTC(), o.RequiredDate.UTC(), nullTime(o.ShippedDate), o.StoreID, nullInt64(o.StaffID))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	o.ID = id
	return nil
}

// GetByID returns a single order or ErrOrderNotFound.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (model.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, orderSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrOrderNotFound
	}
	return o, err
}

// List returns every order, oldest first.
func (r *OrderRepo) List(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, orderSelect+` ORDER BY id`)
}

// ListByCustomer returns the orders of one customer, oldest first.
func (r *OrderRepo) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	return r.list(ctx, orderSelect+` WHERE customer_id = ? ORDER BY id`, customerID)
}

// Update overwrites status, dates and store/staff references. Nil
// pointers are written as NULL.
func (r *OrderRepo) Update(ctx context.Context, o *model.Order) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, order_date = ?, required_date = ?, shipped_date = ?, store_id = ?, staff_id = ?
		 WHERE id = ?`,
		o.Status, o.OrderDate.UTC(), o.RequiredDate.UTC(), nullTime(o.ShippedDate), o.StoreID, nullInt64(o.StaffID), o.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrOrderNotFound)
}

// Delete removes an order together with all of its items.
func (r *OrderRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, ErrOrderNotFound); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
