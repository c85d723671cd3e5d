package service

import (
	"context"

	pkgerrors "github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

var one = decimal.NewFromInt(1)

func validateItem(it *model.OrderItem) error {
	if it.Quantity <= 0 {
		return pkgerrors.Wrapf(ErrInvalidQuantity, "item quantity %d", it.Quantity)
	}
	if it.ListPrice.IsNegative() {
		return pkgerrors.Wrapf(ErrInvalidInput, "list price %s", it.ListPrice)
	}
	if it.Discount.IsNegative() || it.Discount.GreaterThan(one) {
		return pkgerrors.Wrapf(ErrInvalidInput, "discount %s outside [0, 1]", it.Discount)
	}
	return nil
}

// CreateItem adds a line to an existing order. The product must exist and
// the (order, item) pair must be new.
func (l *OrderLedger) CreateItem(ctx context.Context, it *model.OrderItem) error {
	if err := validateItem(it); err != nil {
		return err
	}
	if _, err := l.orders.GetByID(ctx, it.OrderID); err != nil {
		return pkgerrors.Wrapf(err, "order %d", it.OrderID)
	}
	if _, err := l.products.GetByID(ctx, it.ProductID); err != nil {
		return pkgerrors.Wrapf(err, "product %d", it.ProductID)
	}
	return pkgerrors.Wrapf(l.items.Create(ctx, it), "order item %s", it.OrderItemKey)
}

func (l *OrderLedger) GetItem(ctx context.Context, key model.OrderItemKey) (model.OrderItem, error) {
	it, err := l.items.Get(ctx, key)
	return it, pkgerrors.Wrapf(err, "order item %s", key)
}

// ItemsByOrder returns the lines of an order. An order without lines
// yields ErrOrderItemNotFound.
func (l *OrderLedger) ItemsByOrder(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out, err := l.items.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pkgerrors.Wrapf(repository.ErrOrderItemNotFound, "no items for order %d", orderID)
	}
	return out, nil
}

// ListItems returns every line item.
func (l *OrderLedger) ListItems(ctx context.Context) ([]model.OrderItem, error) {
	return l.items.List(ctx)
}

// UpdateItem overwrites product, quantity, list price and discount of an
// existing line.
func (l *OrderLedger) UpdateItem(ctx context.Context, it *model.OrderItem) error {
	if _, err := l.items.Get(ctx, it.OrderItemKey); err != nil {
		return pkgerrors.Wrapf(err, "order item %s", it.OrderItemKey)
	}
	if err := validateItem(it); err != nil {
		return err
	}
	if _, err := l.products.GetByID(ctx, it.ProductID); err != nil {
		return pkgerrors.Wrapf(err, "product %d", it.ProductID)
	}
	return pkgerrors.Wrapf(l.items.Update(ctx, it), "order item %s", it.OrderItemKey)
}

func (l *OrderLedger) DeleteItem(ctx context.Context, key model.OrderItemKey) error {
	return pkgerrors.Wrapf(l.items.Delete(ctx, key), "order item %s", key)
}

// OwnerOf returns the customer id owning order orderID.
func (l *OrderLedger) OwnerOf(ctx context.Context, orderID int64) (int64, error) {
	o, err := l.GetByID(ctx, orderID)
	if err != nil {
		return 0, err
	}
	return o.CustomerID, nil
}
