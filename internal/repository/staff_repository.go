package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/bike-store-inventory/internal/model"
)

// StaffRepo persists staff members. The email namespace of staff is
// independent of the customer one.
type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

const staffColumns = "id,first_name,last_name,email,phone,active,store_id,manager_id,password_hash,role,created_at"

func scanStaff(row interface{ Scan(...any) error }) (model.Staff, error) {
	var (
		s       model.Staff
		manager sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Active,
		&s.StoreID, &manager, &s.PasswordHash, &s.Role, &s.CreatedAt)
	if manager.Valid {
		m := manager.Int64
		s.ManagerID = &m
	}
	return s, err
}

func nullInt64(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// Create inserts a staff member and sets its generated ID.
func (r *StaffRepo) Create(ctx context.Context, s *model.Staff) error {
	s.Email = NormalizeEmail(s.Email)
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO staffs (first_name,last_name,email,phone,active,store_id,manager_id,password_hash,role,created_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Active, s.StoreID, nullInt64(s.ManagerID),
		s.PasswordHash, s.Role, s.CreatedAt)
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
	s.ID = id
	return nil
}

// GetByID fetches a staff member by id.
func (r *StaffRepo) GetByID(ctx context.Context, id int64) (model.Staff, error) {
	s, err := scanStaff(r.DB.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staffs WHERE id=? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStaffNotFound
	}
	return s, err
}

// GetByEmail fetches a staff member by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (model.Staff, error) {
	s, err := scanStaff(r.DB.QueryRowContext(ctx,
		"SELECT "+staffColumns+" FROM staffs WHERE email=? LIMIT 1", NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return s, ErrStaffNotFound
	}
	return s, err
}

// List returns all staff ordered by id.
func (r *StaffRepo) List(ctx context.Context) ([]model.Staff, error) {
	rows, err := r.DB.QueryContext(ctx, "SELECT "+staffColumns+" FROM staffs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Staff{}
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Update overwrites every mutable column of the staff member.
func (r *StaffRepo) Update(ctx context.Context, s *model.Staff) error {
	s.Email = NormalizeEmail(s.Email)
	res, err := r.DB.ExecContext(ctx,
		`UPDATE staffs SET first_name=?,last_name=?,email=?,phone=?,active=?,store_id=?,manager_id=?,password_hash=?
		 WHERE id=?`,
		s.FirstName, s.LastName, s.Email, s.Phone, s.Active, s.StoreID, nullInt64(s.ManagerID), s.PasswordHash, s.ID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return requireAffected(res, ErrStaffNotFound)
}

// Delete removes a staff member and their refresh tokens. Subordinates lose their manager and
// orders handled by the staff member keep a NULL staff reference.
func (r *StaffRepo) Delete(ctx context.Context, id int64) error {
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
	if _, err := tx.ExecContext(ctx, "UPDATE staffs SET manager_id=NULL WHERE manager_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE orders SET staff_id=NULL WHERE staff_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM staffs WHERE id=?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	if err := requireAffected(res, ErrStaffNotFound); err != nil {
		return err
	}
	if err := deleteTokensTx(ctx, tx, "staff", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
