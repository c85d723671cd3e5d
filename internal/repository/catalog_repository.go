// This file holds the catalog repositories: brands, categories, products
// and stores. They are plain single-key CRUD tables; the only rule beyond
// existence is that a row still referenced by other rows cannot be
// deleted.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// countRefs runs a COUNT(*) query and reports whether any row matched.
func countRefs(ctx context.Context, tx *sql.Tx, q string, id int64) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// deleteUnreferenced deletes a row by id inside a transaction unless one
// of refQueries finds a dependent row.
func deleteUnreferenced(ctx context.Context, db *sql.DB, del string, id int64, notFound error, refQueries ...string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	for _, q := range refQueries {
		used, err := countRefs(ctx, tx, q, id)
		if err != nil {
			return err
		}
		if used {
			return ErrConflict
		}
	}
	res, err := tx.ExecContext(ctx, del, id)
	if err != nil {
		return err
	}
	if err := requireAffected(res, notFound); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

func lastID(res sql.Result, err error) (int64, error) {
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrConflict
		}
		return 0, err
	}
	return res.LastInsertId()
}

// BrandRepo persists brands.
type BrandRepo struct{ db *sql.DB }

func NewBrandRepo(db *sql.DB) *BrandRepo { return &BrandRepo{db: db} }

func (r *BrandRepo) Create(ctx context.Context, b *model.Brand) error {
	id, err := lastID(r.db.ExecContext(ctx, "INSERT INTO brands (name) VALUES (?)", b.Name))
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *BrandRepo) GetByID(ctx context.Context, id int64) (model.Brand, error) {
	var b model.Brand
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM brands WHERE id = ?", id).Scan(&b.ID, &b.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrBrandNotFound
	}
	return b, err
}

func (r *BrandRepo) List(ctx context.Context) ([]model.Brand, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM brands ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Brand{}
	for rows.Next() {
		var b model.Brand
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BrandRepo) Update(ctx context.Context, b *model.Brand) error {
	res, err := r.db.ExecContext(ctx, "UPDATE brands SET name = ? WHERE id = ?", b.Name, b.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrBrandNotFound)
}

// Delete removes a brand that no product references.
func (r *BrandRepo) Delete(ctx context.Context, id int64) error {
	return deleteUnreferenced(ctx, r.db, "DELETE FROM brands WHERE id = ?", id, ErrBrandNotFound,
		"SELECT COUNT(*) FROM products WHERE brand_id = ?")
}

// CategoryRepo persists categories.
type CategoryRepo struct{ db *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) Create(ctx context.Context, c *model.Category) error {
	id, err := lastID(r.db.ExecContext(ctx, "INSERT INTO categories (name) VALUES (?)", c.Name))
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM categories WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrCategoryNotFound
	}
	return c, err
}

func (r *CategoryRepo) List(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM categories ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, c *model.Category) error {
	res, err := r.db.ExecContext(ctx, "UPDATE categories SET name = ? WHERE id = ?", c.Name, c.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrCategoryNotFound)
}

// Delete removes a category that no product references.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	return deleteUnreferenced(ctx, r.db, "DELETE FROM categories WHERE id = ?", id, ErrCategoryNotFound,
		"SELECT COUNT(*) FROM products WHERE category_id = ?")
}

// ProductRepo persists products. Brand and category existence is checked
// by the service layer before writes.
type ProductRepo struct{ db *sql.DB }

func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productSelect = "SELECT id, name, brand_id, category_id, model_year, list_price FROM products"

func scanProduct(row interface{ Scan(...any) error }) (model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.BrandID, &p.CategoryID, &p.ModelYear, &p.ListPrice)
	return p, err
}

func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	id, err := lastID(r.db.ExecContext(ctx,
		"INSERT INTO products (name, brand_id, category_id, model_year, list_price) VALUES (?, ?, ?, ?, ?)",
		p.Name, p.BrandID, p.CategoryID, p.ModelYear, p.ListPrice))
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (model.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, productSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrProductNotFound
	}
	return p, err
}

func (r *ProductRepo) List(ctx context.Context) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx, productSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE products SET name = ?, brand_id = ?, category_id = ?, model_year = ?, list_price = ? WHERE id = ?",
		p.Name, p.BrandID, p.CategoryID, p.ModelYear, p.ListPrice, p.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrProductNotFound)
}

// Delete removes a product that is neither stocked nor ordered.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	return deleteUnreferenced(ctx, r.db, "DELETE FROM products WHERE id = ?", id, ErrProductNotFound,
		"SELECT COUNT(*) FROM stocks WHERE product_id = ?",
		"SELECT COUNT(*) FROM order_items WHERE product_id = ?")
}

// StoreRepo persists stores.
type StoreRepo struct{ db *sql.DB }

func NewStoreRepo(db *sql.DB) *StoreRepo { return &StoreRepo{db: db} }

const storeSelect = "SELECT id, name, phone, email, street, city, state, zip_code FROM stores"

func scanStore(row interface{ Scan(...any) error }) (model.Store, error) {
	var s model.Store
	err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Email, &s.Street, &s.City, &s.State, &s.ZipCode)
	return s, err
}

func (r *StoreRepo) Create(ctx context.Context, s *model.Store) error {
	id, err := lastID(r.db.ExecContext(ctx,
		"INSERT INTO stores (name, phone, email, street, city, state, zip_code) VALUES (?, ?, ?, ?, ?, ?, ?)",
		s.Name, s.Phone, s.Email, s.Street, s.City, s.State, s.ZipCode))
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

func (r *StoreRepo) GetByID(ctx context.Context, id int64) (model.Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, storeSelect+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStoreNotFound
	}
	return s, err
}

func (r *StoreRepo) List(ctx context.Context) ([]model.Store, error) {
	rows, err := r.db.QueryContext(ctx, storeSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Store{}
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StoreRepo) Update(ctx context.Context, s *model.Store) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE stores SET name = ?, phone = ?, email = ?, street = ?, city = ?, state = ?, zip_code = ? WHERE id = ?",
		s.Name, s.Phone, s.Email, s.Street, s.City, s.State, s.ZipCode, s.ID)
	if err != nil {
		return err
	}
	return requireAffected(res, ErrStoreNotFound)
}

// Delete removes a store that has no stock, staff or orders.
func (r *StoreRepo) Delete(ctx context.Context, id int64) error {
	return deleteUnreferenced(ctx, r.db, "DELETE FROM stores WHERE id = ?", id, ErrStoreNotFound,
		"SELECT COUNT(*) FROM stocks WHERE store_id = ?",
		"SELECT COUNT(*) FROM staffs WHERE store_id = ?",
		"SELECT COUNT(*) FROM orders WHERE store_id = ?")
}
