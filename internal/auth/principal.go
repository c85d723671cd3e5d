// Package auth resolves a login name to a principal drawn from one of the
// two identity sources: customers and staff. The sources are looked up in
// order and the first hit wins, so a customer shadows a staff member that
// shares the same email.
package auth

import (
	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/utils"
)

// Kind tags which identity source a principal came from.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindStaff    Kind = "staff"
)

// Principal is an authenticated identity with its role.
type Principal struct {
	Kind   Kind
	ID     int64
	Email  string
	Role   access.Role
	Active bool

	hash string
}

// Verify reports whether plaintext matches the principal's password.
func (p Principal) Verify(plaintext string) bool {
	if p.hash == "" {
		return false
	}
	return utils.VerifyPassword(p.hash, plaintext)
}

func fromCustomer(c model.Customer) Principal {
	return Principal{
		Kind:   KindCustomer,
		ID:     c.ID,
		Email:  c.Email,
		Role:   access.RoleUser,
		Active: true,
		hash:   c.PasswordHash,
	}
}

func fromStaff(s model.Staff) Principal {
	return Principal{
		Kind:   KindStaff,
		ID:     s.ID,
		Email:  s.Email,
		Role:   access.RoleAdmin,
		Active: s.Active,
		hash:   s.PasswordHash,
	}
}
