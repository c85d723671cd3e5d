package service

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

func TestInventory_CreateThenReadByKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}

	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 27}))

	got, err := f.inventory.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 27, got.Quantity)

	byStore, err := f.inventory.GetByStore(ctx, f.store.ID)
	require.NoError(t, err)
	require.Len(t, byStore, 1)
	assert.Equal(t, key, byStore[0].StockKey)
}

func TestInventory_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}

	tests := []struct {
		name  string
		stock model.Stock
		want  error
	}{
		{"negative", model.Stock{StockKey: key, Quantity: -1}, ErrInvalidQuantity},
		{"unknown store", model.Stock{StockKey: model.StockKey{StoreID: 99, ProductID: f.product.ID}}, repository.ErrStoreNotFound},
		{"unknown product", model.Stock{StockKey: model.StockKey{StoreID: f.store.ID, ProductID: 99}}, repository.ErrProductNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.inventory.Create(ctx, &tt.stock)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 1}))
	err := f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 5})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestInventory_EmptyLookupsAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.inventory.GetByStore(ctx, f.store.ID)
	assert.ErrorIs(t, err, repository.ErrStockNotFound)
	_, err = f.inventory.GetByProduct(ctx, f.product.ID)
	assert.ErrorIs(t, err, repository.ErrStockNotFound)

	all, err := f.inventory.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInventory_AdjustIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}
	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 3}))

	_, err := f.inventory.Adjust(ctx, key, 4)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	got, err := f.inventory.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
	assert.Empty(t, f.events.stocks)

	s, err := f.inventory.Adjust(ctx, key, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Quantity)
	require.Len(t, f.events.stocks, 1)
	assert.Equal(t, 3, f.events.stocks[0].Delta)
	assert.Equal(t, 0, f.events.stocks[0].Quantity)

	s, err = f.inventory.Adjust(ctx, key, -10)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Quantity)

	_, err = f.inventory.Adjust(ctx, model.StockKey{StoreID: 5, ProductID: 5}, 1)
	assert.ErrorIs(t, err, repository.ErrStockNotFound)
}

func TestInventory_SetQuantityAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}
	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 3}))

	_, err := f.inventory.SetQuantity(ctx, key, -2)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	s, err := f.inventory.SetQuantity(ctx, key, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, s.Quantity)
	require.Len(t, f.events.stocks, 1)
	assert.Equal(t, -5, f.events.stocks[0].Delta)

	require.NoError(t, f.inventory.Delete(ctx, key))
	assert.ErrorIs(t, f.inventory.Delete(ctx, key), repository.ErrStockNotFound)
}

func TestInventory_PublishFailureDoesNotFailAdjust(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}
	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 3}))
	f.events.err = assert.AnError

	s, err := f.inventory.Adjust(ctx, key, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Quantity)
}

func TestInventory_AdjustRejectsOutOfRangeDelta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	key := model.StockKey{StoreID: f.store.ID, ProductID: f.product.ID}
	require.NoError(t, f.inventory.Create(ctx, &model.Stock{StockKey: key, Quantity: 4}))

	for _, delta := range []int{math.MinInt64, math.MaxInt64, repository.MaxQuantity + 1, -repository.MaxQuantity - 1} {
		_, err := f.inventory.Adjust(ctx, key, delta)
		assert.ErrorIs(t, err, ErrInvalidQuantity, "delta %d", delta)
	}
	_, err := f.inventory.SetQuantity(ctx, key, repository.MaxQuantity+1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	s, err := f.inventory.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Quantity)
	assert.Empty(t, f.events.stocks)
}
