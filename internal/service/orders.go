package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	q "github.com/iliyamo/bike-store-inventory/internal/queue"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

// OrderLedger owns orders and their line items.
//
// Status is free text unless StrictStatus is set, in which case only the
// known statuses are accepted and updates must follow model.CanTransition.
type OrderLedger struct {
	orders    *repository.OrderRepo
	items     *repository.OrderItemRepo
	customers *repository.CustomerRepo
	products  *repository.ProductRepo
	stores    *repository.StoreRepo
	staff     *repository.StaffRepo
	events    EventPublisher
	log       *slog.Logger

	StrictStatus bool
}

// OrderRefs are the repositories an order points into.
type OrderRefs struct {
	Customers *repository.CustomerRepo
	Products  *repository.ProductRepo
	Stores    *repository.StoreRepo
	Staff     *repository.StaffRepo
}

func NewOrderLedger(orders *repository.OrderRepo, items *repository.OrderItemRepo, refs OrderRefs,
	events EventPublisher, logger *slog.Logger) *OrderLedger {
	if events == nil {
		events = NopPublisher{}
	}
	return &OrderLedger{
		orders:    orders,
		items:     items,
		customers: refs.Customers,
		products:  refs.Products,
		stores:    refs.Stores,
		staff:     refs.Staff,
		events:    events,
		log:       logger,
	}
}

// checkPlacement resolves the store and the optional staff member of o.
func (l *OrderLedger) checkPlacement(ctx context.Context, o *model.Order) error {
	if _, err := l.stores.GetByID(ctx, o.StoreID); err != nil {
		return pkgerrors.Wrapf(err, "store %d", o.StoreID)
	}
	if o.StaffID != nil {
		if _, err := l.staff.GetByID(ctx, *o.StaffID); err != nil {
			return pkgerrors.Wrapf(err, "staff %d", *o.StaffID)
		}
	}
	return nil
}

var knownStatuses = map[string]bool{
	model.StatusPending:    true,
	model.StatusProcessing: true,
	model.StatusShipped:    true,
	model.StatusDelivered:  true,
	model.StatusCancelled:  true,
}

func (l *OrderLedger) checkStatus(status string) error {
	if !l.StrictStatus {
		return nil
	}
	if !knownStatuses[strings.ToLower(strings.TrimSpace(status))] {
		return pkgerrors.Wrapf(ErrInvalidInput, "unknown order status %q", status)
	}
	return nil
}

// Create stores an order after resolving its customer, store and staff
// member. Status and dates
// are stored as given.
func (l *OrderLedger) Create(ctx context.Context, o *model.Order) error {
	if _, err := l.customers.GetByID(ctx, o.CustomerID); err != nil {
		return pkgerrors.Wrapf(err, "customer %d", o.CustomerID)
	}
	if err := l.checkPlacement(ctx, o); err != nil {
		return err
	}
	if err := l.checkStatus(o.Status); err != nil {
		return err
	}
	if err := l.orders.Create(ctx, o); err != nil {
		return err
	}
	ev := q.OrderCreatedEvent{
		EventID:      uuid.NewString(),
		OrderID:      o.ID,
		CustomerID:   o.CustomerID,
		StoreID:      o.StoreID,
		Status:       o.Status,
		OrderDate:    o.OrderDate.Format(time.DateOnly),
		RequiredDate: o.RequiredDate.Format(time.DateOnly),
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	if err := l.events.PublishOrderCreated(ctx, ev); err != nil {
		l.log.Warn("publish order.created failed", "order_id", o.ID, "error", err)
	}
	return nil
}

func (l *OrderLedger) GetByID(ctx context.Context, id int64) (model.Order, error) {
	o, err := l.orders.GetByID(ctx, id)
	return o, pkgerrors.Wrapf(err, "order %d", id)
}

// List returns all orders, oldest first.
func (l *OrderLedger) List(ctx context.Context) ([]model.Order, error) {
	return l.orders.List(ctx)
}

// ListByCustomer returns the orders of an existing customer, oldest first.
func (l *OrderLedger) ListByCustomer(ctx context.Context, customerID int64) ([]model.Order, error) {
	if _, err := l.customers.GetByID(ctx, customerID); err != nil {
		return nil, pkgerrors.Wrapf(err, "customer %d", customerID)
	}
	return l.orders.ListByCustomer(ctx, customerID)
}

// Update overwrites status, dates and store/staff references of the order
// o.ID. The owning customer never changes; o.CustomerID is refreshed from
// the stored order.
func (l *OrderLedger) Update(ctx context.Context, o *model.Order) error {
	cur, err := l.orders.GetByID(ctx, o.ID)
	if err != nil {
		return pkgerrors.Wrapf(err, "order %d", o.ID)
	}
	if err := l.checkStatus(o.Status); err != nil {
		return err
	}
	if l.StrictStatus && !model.CanTransition(cur.Status, o.Status) {
		return pkgerrors.Wrapf(ErrInvalidStatusTransition, "%s -> %s", cur.Status, o.Status)
	}
	if err := l.checkPlacement(ctx, o); err != nil {
		return err
	}
	o.CustomerID = cur.CustomerID
	return pkgerrors.Wrapf(l.orders.Update(ctx, o), "order %d", o.ID)
}

// Delete removes an order and its items.
func (l *OrderLedger) Delete(ctx context.Context, id int64) error {
	return pkgerrors.Wrapf(l.orders.Delete(ctx, id), "order %d", id)
}
