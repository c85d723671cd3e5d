package auth

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

// ErrPrincipalNotFound is returned when no identity source knows a name.
var ErrPrincipalNotFound = errors.New("principal not found")

// CustomerSource looks customers up.
type CustomerSource interface {
	GetByEmail(ctx context.Context, email string) (model.Customer, error)
	GetByID(ctx context.Context, id int64) (model.Customer, error)
}

// StaffSource looks staff members up.
type StaffSource interface {
	GetByEmail(ctx context.Context, email string) (model.Staff, error)
	GetByID(ctx context.Context, id int64) (model.Staff, error)
}

// Authenticator resolves principals from the customer and staff sources.
type Authenticator struct {
	customers CustomerSource
	staff     StaffSource
}

func NewAuthenticator(customers CustomerSource, staff StaffSource) *Authenticator {
	return &Authenticator{customers: customers, staff: staff}
}

// ResolvePrincipal looks username up as a customer email, then as a staff
// email. The customer wins when both match.
func (a *Authenticator) ResolvePrincipal(ctx context.Context, username string) (Principal, error) {
	c, err := a.customers.GetByEmail(ctx, username)
	if err == nil {
		return fromCustomer(c), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Principal{}, pkgerrors.Wrap(err, "lookup customer")
	}
	s, err := a.staff.GetByEmail(ctx, username)
	if err == nil {
		return fromStaff(s), nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return Principal{}, pkgerrors.Wrap(err, "lookup staff")
	}
	return Principal{}, pkgerrors.Wrapf(ErrPrincipalNotFound, "no principal for %q", username)
}

// PrincipalByID loads a principal of a known kind, as found in a token.
func (a *Authenticator) PrincipalByID(ctx context.Context, kind Kind, id int64) (Principal, error) {
	var err error
	switch kind {
	case KindCustomer:
		var c model.Customer
		if c, err = a.customers.GetByID(ctx, id); err == nil {
			return fromCustomer(c), nil
		}
	case KindStaff:
		var s model.Staff
		if s, err = a.staff.GetByID(ctx, id); err == nil {
			return fromStaff(s), nil
		}
	default:
		return Principal{}, pkgerrors.Wrapf(ErrPrincipalNotFound, "unknown principal kind %q", kind)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return Principal{}, pkgerrors.Wrapf(ErrPrincipalNotFound, "%s %d", kind, id)
	}
	return Principal{}, err
}
