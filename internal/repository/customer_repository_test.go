package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/testutil"
)

func TestCustomerRepo_EmailIsNormalizedAndUnique(t *testing.T) {
	repo := NewCustomerRepo(testutil.NewDB(t))
	ctx := context.Background()

	c := &model.Customer{FirstName: "Ada", LastName: "L", Email: "  Ada@Example.com ", PasswordHash: "x", Role: "USER"}
	require.NoError(t, repo.Create(ctx, c))
	assert.Equal(t, "ada@example.com", c.Email)

	got, err := repo.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	dup := &model.Customer{FirstName: "B", LastName: "B", Email: "ada@example.com", PasswordHash: "y", Role: "USER"}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrConflict)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCustomerRepo_DeleteBlockedByOrders(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCustomerRepo(db)
	orders := NewOrderRepo(db)
	ctx := context.Background()

	c := &model.Customer{FirstName: "A", LastName: "B", Email: "a@b.c", PasswordHash: "x", Role: "USER"}
	require.NoError(t, repo.Create(ctx, c))
	o := &model.Order{CustomerID: c.ID, Status: "pending", OrderDate: time.Now(), RequiredDate: time.Now(), StoreID: 1}
	require.NoError(t, orders.Create(ctx, o))

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrConflict)

	require.NoError(t, orders.Delete(ctx, o.ID))
	require.NoError(t, repo.Delete(ctx, c.ID))
	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrCustomerNotFound)
}

func TestStaffRepo_DeleteDetachesReports(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewStaffRepo(db)
	ctx := context.Background()

	boss := &model.Staff{FirstName: "B", LastName: "B", Email: "boss@shop.io", Active: true, StoreID: 1, PasswordHash: "x", Role: "ADMIN"}
	require.NoError(t, repo.Create(ctx, boss))
	clerk := &model.Staff{FirstName: "C", LastName: "C", Email: "clerk@shop.io", Active: true, StoreID: 1, ManagerID: &boss.ID, PasswordHash: "x", Role: "ADMIN"}
	require.NoError(t, repo.Create(ctx, clerk))

	require.NoError(t, repo.Delete(ctx, boss.ID))
	got, err := repo.GetByID(ctx, clerk.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ManagerID)
	assert.True(t, got.Active)

	_, err = repo.GetByID(ctx, boss.ID)
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestDelete_DropsRefreshTokens(t *testing.T) {
	db := testutil.NewDB(t)
	customers := NewCustomerRepo(db)
	staff := NewStaffRepo(db)
	tokens := NewTokenRepo(db)
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	c := &model.Customer{FirstName: "A", LastName: "B", Email: "gone@b.c", PasswordHash: "x", Role: "USER"}
	require.NoError(t, customers.Create(ctx, c))
	s := &model.Staff{FirstName: "S", LastName: "T", Email: "gone@shop.io", Active: true, StoreID: 1, PasswordHash: "x", Role: "ADMIN"}
	require.NoError(t, staff.Create(ctx, s))
	require.NoError(t, tokens.StoreRefresh(ctx, "customer", c.ID, "h-customer", exp))
	require.NoError(t, tokens.StoreRefresh(ctx, "staff", s.ID, "h-staff", exp))

	count := func() int {
		var n int
		require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM refresh_tokens").Scan(&n))
		return n
	}

	require.NoError(t, customers.Delete(ctx, c.ID))
	assert.Equal(t, 1, count())
	_, _, err := tokens.ValidateRefresh(ctx, "h-customer")
	assert.ErrorIs(t, err, ErrTokenInvalid)

	require.NoError(t, staff.Delete(ctx, s.ID))
	assert.Zero(t, count())
}

func TestIsForeignKeyViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"row referenced", &mysql.MySQLError{Number: 1451}, true},
		{"missing parent", &mysql.MySQLError{Number: 1452}, true},
		{"duplicate", &mysql.MySQLError{Number: 1062}, false},
		{"sqlite", errors.New("FOREIGN KEY constraint failed"), true},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isForeignKeyViolation(tt.err))
		})
	}
}
