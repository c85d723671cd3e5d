package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// CustomerRepo persists customers. Emails are normalized to lower case
// before they reach the database so the unique index is case-insensitive.
type CustomerRepo struct{ DB *sql.DB }

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{DB: db} }

const customerColumns = "id,first_name,last_name,phone,email,street,city,state,zip_code,password_hash,role,created_at"

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

func scanCustomer(row interface{ Scan(...any) error }) (model.Customer, error) {
	var c model.Customer
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Phone, &c.Email, &c.Street,
		&c.City, &c.State, &c.ZipCode, &c.PasswordHash, &c.Role, &c.CreatedAt)
	return c, err
}

// Create inserts a customer and sets its generated ID. The password must
// already be hashed.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.Email = NormalizeEmail(c.Email)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO customers (first_name,last_name,phone,email,street,city,state,zip_code,password_hash,role,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		c.FirstName, c.LastName, c.Phone, c.Email, c.Street, c.City, c.State, c.ZipCode,
		c.PasswordHash, c.Role, c.CreatedAt)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

// GetByID fetches a customer by id.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (model.Customer, error) {
	c, err := scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCustomerNotFound
	}
	return c, err
}

// GetByEmail fetches a customer by normalized email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (model.Customer, error) {
	c, err := scanCustomer(r.DB.QueryRowContext(ctx,
		"SELECT "+customerColumns+" FROM customers WHERE email=? LIMIT 1", NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCustomerNotFound
	}
	return c, err
}

// List returns all customers ordered by id.
func (r *CustomerRepo) List(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+customerColumns+" FROM customers ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Update overwrites every mutable column of the customer.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	c.Email = NormalizeEmail(c.Email)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE customers SET first_name=?,last_name=?,phone=?,email=?,street=?,city=?,state=?,zip_code=?,password_hash=?
		 WHERE id=?`,
		c.FirstName, c.LastName, c.Phone, c.Email, c.Street, c.City, c.State, c.ZipCode, c.PasswordHash, c.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res, ErrCustomerNotFound)
}

// Delete removes a customer and their refresh tokens. Customers that
// still own orders are not removed; ErrConflict is returned instead.
func (r *CustomerRepo) Delete(ctx context.Context, id int64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var found int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM customers WHERE id=?", id).Scan(&found); err != nil {
		return err
	}
	if found == 0 {
		return ErrCustomerNotFound
	}
	var orders int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE customer_id=?", id).Scan(&orders); err != nil {
		return err
	}
	if orders > 0 {
		return ErrConflict
	}
	if err := deleteTokensTx(ctx, tx, "customer", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM customers WHERE id=?", id); err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// requireAffected returns notFound when the statement touched no rows.
func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
