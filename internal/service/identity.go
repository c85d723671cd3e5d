package service

import (
	"context"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
	"github.com/iliyamo/bike-store-inventory/internal/utils"
)

// IdentityService manages customer and staff records. Passwords arrive in
// plain text and are stored as bcrypt hashes.
type IdentityService struct {
	customers  *repository.CustomerRepo
	staff      *repository.StaffRepo
	stores     *repository.StoreRepo
	bcryptCost int
}

func NewIdentityService(customers *repository.CustomerRepo, staff *repository.StaffRepo, stores *repository.StoreRepo, bcryptCost int) *IdentityService {
	return &IdentityService{customers: customers, staff: staff, stores: stores, bcryptCost: bcryptCost}
}

func (s *IdentityService) hash(password string) (string, error) {
	if password == "" {
		return "", pkgerrors.Wrap(ErrInvalidInput, "password required")
	}
	return utils.HashPassword(password, s.bcryptCost)
}

// CreateCustomer registers a customer with the USER role.
func (s *IdentityService) CreateCustomer(ctx context.Context, c *model.Customer, password string) error {
	h, err := s.hash(password)
	if err != nil {
		return err
	}
	c.PasswordHash = h
	c.Role = string(access.RoleUser)
	return pkgerrors.Wrapf(s.customers.Create(ctx, c), "customer %s", c.Email)
}

func (s *IdentityService) GetCustomer(ctx context.Context, id int64) (model.Customer, error) {
	c, err := s.customers.GetByID(ctx, id)
	return c, pkgerrors.Wrapf(err, "customer %d", id)
}

func (s *IdentityService) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	return s.customers.List(ctx)
}

// UpdateCustomer overwrites the profile of c.ID. The password is
// re-hashed only when a new one is supplied.
func (s *IdentityService) UpdateCustomer(ctx context.Context, c *model.Customer, password string) error {
	cur, err := s.customers.GetByID(ctx, c.ID)
	if err != nil {
		return pkgerrors.Wrapf(err, "customer %d", c.ID)
	}
	c.PasswordHash = cur.PasswordHash
	if password != "" {
		if c.PasswordHash, err = s.hash(password); err != nil {
			return err
		}
	}
	c.Role = cur.Role
	c.CreatedAt = cur.CreatedAt
	return pkgerrors.Wrapf(s.customers.Update(ctx, c), "customer %d", c.ID)
}

// DeleteCustomer removes a customer without orders.
func (s *IdentityService) DeleteCustomer(ctx context.Context, id int64) error {
	err := s.customers.Delete(ctx, id)
	return pkgerrors.Wrapf(err, "customer %d", id)
}

func (s *IdentityService) checkStaffRefs(ctx context.Context, st *model.Staff) error {
	if _, err := s.stores.GetByID(ctx, st.StoreID); err != nil {
		return pkgerrors.Wrapf(err, "store %d", st.StoreID)
	}
	if st.ManagerID == nil {
		return nil
	}
	if st.ID != 0 && *st.ManagerID == st.ID {
		return pkgerrors.Wrap(ErrInvalidInput, "staff cannot manage itself")
	}
	if _, err := s.staff.GetByID(ctx, *st.ManagerID); err != nil {
		return pkgerrors.Wrapf(err, "manager %d", *st.ManagerID)
	}
	return nil
}

// CreateStaff adds a staff member with the ADMIN role. The store and the
// manager, when given, must exist.
func (s *IdentityService) CreateStaff(ctx context.Context, st *model.Staff, password string) error {
	if err := s.checkStaffRefs(ctx, st); err != nil {
		return err
	}
	h, err := s.hash(password)
	if err != nil {
		return err
	}
	st.PasswordHash = h
	st.Role = string(access.RoleAdmin)
	return pkgerrors.Wrapf(s.staff.Create(ctx, st), "staff %s", st.Email)
}

func (s *IdentityService) GetStaff(ctx context.Context, id int64) (model.Staff, error) {
	st, err := s.staff.GetByID(ctx, id)
	return st, pkgerrors.Wrapf(err, "staff %d", id)
}

func (s *IdentityService) ListStaff(ctx context.Context) ([]model.Staff, error) {
	return s.staff.List(ctx)
}

// UpdateStaff overwrites the record of st.ID, re-hashing the password
// only when a new one is supplied.
func (s *IdentityService) UpdateStaff(ctx context.Context, st *model.Staff, password string) error {
	cur, err := s.staff.GetByID(ctx, st.ID)
	if err != nil {
		return pkgerrors.Wrapf(err, "staff %d", st.ID)
	}
	if err := s.checkStaffRefs(ctx, st); err != nil {
		return err
	}
	st.PasswordHash = cur.PasswordHash
	if password != "" {
		if st.PasswordHash, err = s.hash(password); err != nil {
			return err
		}
	}
	st.Role = cur.Role
	st.CreatedAt = cur.CreatedAt
	return pkgerrors.Wrapf(s.staff.Update(ctx, st), "staff %d", st.ID)
}

func (s *IdentityService) DeleteStaff(ctx context.Context, id int64) error {
	return pkgerrors.Wrapf(s.staff.Delete(ctx, id), "staff %d", id)
}
