package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

func (f *fixture) order(customerID int64, status string) *model.Order {
	day := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	return &model.Order{CustomerID: customerID, Status: status, OrderDate: day, RequiredDate: day.AddDate(0, 0, 3), StoreID: f.store.ID}
}

func TestOrders_CreateAndListByCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "debra.burks@yahoo.com")

	first := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, first))
	second := f.order(c.ID, "Shipped-ish")
	require.NoError(t, f.orders.Create(ctx, second))

	got, err := f.orders.ListByCustomer(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, "Shipped-ish", got[1].Status)

	require.Len(t, f.events.orders, 2)
	assert.Equal(t, first.ID, f.events.orders[0].OrderID)

	_, err = f.orders.ListByCustomer(ctx, 4242)
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
}

func TestOrders_CreateRequiresCustomer(t *testing.T) {
	f := newFixture(t)
	err := f.orders.Create(context.Background(), f.order(77, "pending"))
	assert.ErrorIs(t, err, repository.ErrCustomerNotFound)
	assert.Empty(t, f.events.orders)
}

func TestOrders_UpdateOverwritesAndKeepsCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "a@b.io")
	o := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, o))

	shipped := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	upd := &model.Order{ID: o.ID, CustomerID: 999, Status: "shipped", OrderDate: o.OrderDate, RequiredDate: o.RequiredDate, ShippedDate: &shipped, StoreID: f.store.ID}
	require.NoError(t, f.orders.Update(ctx, upd))
	assert.Equal(t, c.ID, upd.CustomerID)

	got, err := f.orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "shipped", got.Status)
	assert.Equal(t, c.ID, got.CustomerID)
	require.NotNil(t, got.ShippedDate)

	upd.ID = 555
	assert.ErrorIs(t, f.orders.Update(ctx, upd), repository.ErrOrderNotFound)
}

func TestOrders_StrictStatus(t *testing.T) {
	f := newFixture(t)
	f.orders.StrictStatus = true
	ctx := context.Background()
	c := f.customer(t, "strict@b.io")

	assert.ErrorIs(t, f.orders.Create(ctx, f.order(c.ID, "lost")), ErrInvalidInput)

	o := f.order(c.ID, model.StatusPending)
	require.NoError(t, f.orders.Create(ctx, o))

	tests := []struct {
		to   string
		want error
	}{
		{model.StatusShipped, ErrInvalidStatusTransition},
		{model.StatusProcessing, nil},
		{model.StatusDelivered, ErrInvalidStatusTransition},
		{model.StatusShipped, nil},
		{model.StatusDelivered, nil},
		{model.StatusCancelled, ErrInvalidStatusTransition},
	}
	for _, tt := range tests {
		upd := *o
		upd.Status = tt.to
		err := f.orders.Update(ctx, &upd)
		if tt.want == nil {
			require.NoError(t, err, tt.to)
		} else {
			assert.ErrorIs(t, err, tt.want, tt.to)
		}
	}
}

func TestOrders_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "c@b.io")
	o := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, o))
	require.NoError(t, f.orders.CreateItem(ctx, &model.OrderItem{
		OrderItemKey: model.OrderItemKey{OrderID: o.ID, ItemID: 1},
		ProductID:    f.product.ID, Quantity: 1, ListPrice: f.product.ListPrice,
	}))

	require.NoError(t, f.orders.Delete(ctx, o.ID))
	_, err := f.orders.ItemsByOrder(ctx, o.ID)
	assert.ErrorIs(t, err, repository.ErrOrderItemNotFound)
	assert.ErrorIs(t, f.orders.Delete(ctx, o.ID), repository.ErrOrderNotFound)

	// the customer can be removed once its orders are gone
	require.NoError(t, f.identity.DeleteCustomer(ctx, c.ID))
}

func TestOrderItems_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "items@b.io")
	o := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, o))

	key := model.OrderItemKey{OrderID: o.ID, ItemID: 1}
	in := model.OrderItem{
		OrderItemKey: key,
		ProductID:    f.product.ID,
		Quantity:     2,
		ListPrice:    decimal.RequireFromString("199.99"),
		Discount:     decimal.RequireFromString("0.1"),
	}
	require.NoError(t, f.orders.CreateItem(ctx, &in))

	got, err := f.orders.GetItem(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, in.OrderItemKey, got.OrderItemKey)
	assert.Equal(t, in.ProductID, got.ProductID)
	assert.Equal(t, in.Quantity, got.Quantity)
	assert.True(t, in.ListPrice.Equal(got.ListPrice))
	assert.True(t, in.Discount.Equal(got.Discount))
	assert.True(t, decimal.RequireFromString("359.982").Equal(got.LineTotal()))

	assert.ErrorIs(t, f.orders.CreateItem(ctx, &in), repository.ErrConflict)
}

func TestOrderItems_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "v@b.io")
	o := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, o))

	base := model.OrderItem{OrderItemKey: model.OrderItemKey{OrderID: o.ID, ItemID: 1}, ProductID: f.product.ID, Quantity: 1, ListPrice: decimal.NewFromInt(10)}
	tests := []struct {
		name   string
		mutate func(*model.OrderItem)
		want   error
	}{
		{"zero quantity", func(it *model.OrderItem) { it.Quantity = 0 }, ErrInvalidQuantity},
		{"discount above one", func(it *model.OrderItem) { it.Discount = decimal.RequireFromString("1.5") }, ErrInvalidInput},
		{"negative discount", func(it *model.OrderItem) { it.Discount = decimal.RequireFromString("-0.1") }, ErrInvalidInput},
		{"unknown order", func(it *model.OrderItem) { it.OrderID = 404 }, repository.ErrOrderNotFound},
		{"unknown product", func(it *model.OrderItem) { it.ProductID = 404 }, repository.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := base
			tt.mutate(&it)
			assert.ErrorIs(t, f.orders.CreateItem(ctx, &it), tt.want)
		})
	}
}

func TestOrderItems_UpdateAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "u@b.io")
	o := f.order(c.ID, "pending")
	require.NoError(t, f.orders.Create(ctx, o))
	key := model.OrderItemKey{OrderID: o.ID, ItemID: 3}

	missing := model.OrderItem{OrderItemKey: key, ProductID: f.product.ID, Quantity: 1}
	assert.ErrorIs(t, f.orders.UpdateItem(ctx, &missing), repository.ErrOrderItemNotFound)

	require.NoError(t, f.orders.CreateItem(ctx, &missing))
	missing.Quantity = 4
	require.NoError(t, f.orders.UpdateItem(ctx, &missing))

	items, err := f.orders.ItemsByOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)

	require.NoError(t, f.orders.DeleteItem(ctx, key))
	assert.ErrorIs(t, f.orders.DeleteItem(ctx, key), repository.ErrOrderItemNotFound)
}

func TestOrders_StoreAndStaffMustExist(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "genoveva.baldwin@msn.com")
	clerk := model.Staff{FirstName: "Mireya", LastName: "Copeland", Email: "mireya@bikes.shop", Active: true, StoreID: f.store.ID}
	require.NoError(t, f.identity.CreateStaff(ctx, &clerk, "pw"))
	missing := int64(8888)

	placed := f.order(c.ID, "pending")
	placed.StaffID = &clerk.ID
	require.NoError(t, f.orders.Create(ctx, placed))

	tests := []struct {
		name    string
		storeID int64
		staffID *int64
		want    error
	}{
		{"unknown store", 9999, nil, repository.ErrStoreNotFound},
		{"unknown staff", f.store.ID, &missing, repository.ErrStaffNotFound},
	}
	for _, tt := range tests {
		t.Run("create "+tt.name, func(t *testing.T) {
			o := f.order(c.ID, "pending")
			o.StoreID, o.StaffID = tt.storeID, tt.staffID
			assert.ErrorIs(t, f.orders.Create(ctx, o), tt.want)
			assert.Zero(t, o.ID)
		})
		t.Run("update "+tt.name, func(t *testing.T) {
			upd := *placed
			upd.StoreID, upd.StaffID = tt.storeID, tt.staffID
			assert.ErrorIs(t, f.orders.Update(ctx, &upd), tt.want)

			got, err := f.orders.GetByID(ctx, placed.ID)
			require.NoError(t, err)
			assert.Equal(t, f.store.ID, got.StoreID)
			require.NotNil(t, got.StaffID)
			assert.Equal(t, clerk.ID, *got.StaffID)
		})
	}

	all, err := f.orders.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Len(t, f.events.orders, 1)
}
