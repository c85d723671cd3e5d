package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	q "github.com/iliyamo/bike-store-inventory/internal/queue"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
)

// InventoryLedger owns stock rows. Every mutation keeps quantity >= 0.
type InventoryLedger struct {
	stocks   *repository.StockRepo
	stores   *repository.StoreRepo
	products *repository.ProductRepo
	events   EventPublisher
	log      *slog.Logger
}

func NewInventoryLedger(stocks *repository.StockRepo, stores *repository.StoreRepo, products *repository.ProductRepo,
	events EventPublisher, logger *slog.Logger) *InventoryLedger {
	if events == nil {
		events = NopPublisher{}
	}
	return &InventoryLedger{stocks: stocks, stores: stores, products: products, events: events, log: logger}
}

// GetByStore returns the stock of a store in insertion order. A store
// without stock yields ErrStockNotFound.
func (l *InventoryLedger) GetByStore(ctx context.Context, storeID int64) ([]model.Stock, error) {
	out, err := l.stocks.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pkgerrors.Wrapf(repository.ErrStockNotFound, "no stock for store %d", storeID)
	}
	return out, nil
}

// GetByProduct returns the stock of a product across stores. A product
// stocked nowhere yields ErrStockNotFound.
func (l *InventoryLedger) GetByProduct(ctx context.Context, productID int64) ([]model.Stock, error) {
	out, err := l.stocks.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, pkgerrors.Wrapf(repository.ErrStockNotFound, "no stock for product %d", productID)
	}
	return out, nil
}

// List returns every stock row; an empty inventory is not an error.
func (l *InventoryLedger) List(ctx context.Context) ([]model.Stock, error) {
	return l.stocks.List(ctx)
}

func (l *InventoryLedger) Get(ctx context.Context, key model.StockKey) (model.Stock, error) {
	s, err := l.stocks.Get(ctx, key)
	return s, pkgerrors.Wrapf(err, "stock %s", key)
}

// Create stores a new (store, product) row. The store and product must
// exist and the pair must be new.
func (l *InventoryLedger) Create(ctx context.Context, s *model.Stock) error {
	if s.Quantity < 0 || s.Quantity > repository.MaxQuantity {
		return pkgerrors.Wrapf(ErrInvalidQuantity, "quantity %d", s.Quantity)
	}
	if _, err := l.stores.GetByID(ctx, s.StoreID); err != nil {
		return pkgerrors.Wrapf(err, "store %d", s.StoreID)
	}
	if _, err := l.products.GetByID(ctx, s.ProductID); err != nil {
		return pkgerrors.Wrapf(err, "product %d", s.ProductID)
	}
	s.CreatedAt = time.Now().UTC()
	return pkgerrors.Wrapf(l.stocks.Create(ctx, s), "stock %s", s.StockKey)
}

// Adjust removes delta units from key (a negative delta restocks). The
// change is applied atomically; if it would leave a negative quantity
// nothing is written and ErrInvalidQuantity is returned.
func (l *InventoryLedger) Adjust(ctx context.Context, key model.StockKey, delta int) (model.Stock, error) {
	if delta > repository.MaxQuantity || delta < -repository.MaxQuantity {
		return model.Stock{}, pkgerrors.Wrapf(ErrInvalidQuantity, "delta %d out of range", delta)
	}
	s, err := l.stocks.Adjust(ctx, key, delta)
	if errors.Is(err, repository.ErrQuantityUnderflow) {
		return model.Stock{}, pkgerrors.Wrapf(ErrInvalidQuantity, "stock %s cannot give %d", key, delta)
	}
	if err != nil {
		return model.Stock{}, pkgerrors.Wrapf(err, "stock %s", key)
	}
	l.publishAdjusted(ctx, s, delta)
	return s, nil
}

// SetQuantity overwrites the quantity of key.
func (l *InventoryLedger) SetQuantity(ctx context.Context, key model.StockKey, quantity int) (model.Stock, error) {
	if quantity < 0 || quantity > repository.MaxQuantity {
		return model.Stock{}, pkgerrors.Wrapf(ErrInvalidQuantity, "quantity %d", quantity)
	}
	before, err := l.stocks.Get(ctx, key)
	if err != nil {
		return model.Stock{}, pkgerrors.Wrapf(err, "stock %s", key)
	}
	s, err := l.stocks.SetQuantity(ctx, key, quantity)
	if err != nil {
		return model.Stock{}, pkgerrors.Wrapf(err, "stock %s", key)
	}
	l.publishAdjusted(ctx, s, before.Quantity-quantity)
	return s, nil
}

func (l *InventoryLedger) Delete(ctx context.Context, key model.StockKey) error {
	return pkgerrors.Wrapf(l.stocks.Delete(ctx, key), "stock %s", key)
}

func (l *InventoryLedger) publishAdjusted(ctx context.Context, s model.Stock, delta int) {
	ev := q.StockAdjustedEvent{
		EventID:    uuid.NewString(),
		StoreID:    s.StoreID,
		ProductID:  s.ProductID,
		Delta:      delta,
		Quantity:   s.Quantity,
		AdjustedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := l.events.PublishStockAdjusted(ctx, ev); err != nil {
		l.log.Warn("publish stock.adjusted failed", "stock", s.StockKey.String(), "error", err)
	}
}
