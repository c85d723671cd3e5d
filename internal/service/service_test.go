package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	q "github.com/iliyamo/bike-store-inventory/internal/queue"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
	"github.com/iliyamo/bike-store-inventory/internal/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	orders []q.OrderCreatedEvent
	stocks []q.StockAdjustedEvent
	err    error
}

func (p *recordingPublisher) PublishOrderCreated(_ context.Context, ev q.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, ev)
	return p.err
}

func (p *recordingPublisher) PublishStockAdjusted(_ context.Context, ev q.StockAdjustedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stocks = append(p.stocks, ev)
	return p.err
}

type fixture struct {
	db        *sql.DB
	events    *recordingPublisher
	inventory *InventoryLedger
	orders    *OrderLedger
	identity  *IdentityService
	catalog   *CatalogService

	store   model.Store
	product model.Product
}

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// newFixture wires every service over a fresh database seeded with one
// store and one product.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()

	brands := repository.NewBrandRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	stores := repository.NewStoreRepo(db)
	customers := repository.NewCustomerRepo(db)
	staff := repository.NewStaffRepo(db)
	events := &recordingPublisher{}

	f := &fixture{
		db:        db,
		events:    events,
		inventory: NewInventoryLedger(repository.NewStockRepo(db), stores, products, events, discardLogger()),
		orders: NewOrderLedger(repository.NewOrderRepo(db), repository.NewOrderItemRepo(db),
			OrderRefs{Customers: customers, Products: products, Stores: stores, Staff: staff}, events, discardLogger()),
		identity: NewIdentityService(customers, staff, stores, 4),
		catalog:  NewCatalogService(brands, categories, products, stores),
	}

	b := &model.Brand{Name: "Electra"}
	require.NoError(t, brands.Create(ctx, b))
	c := &model.Category{Name: "Cruisers"}
	require.NoError(t, categories.Create(ctx, c))
	f.product = model.Product{Name: "Townie 7D", BrandID: b.ID, CategoryID: c.ID, ModelYear: 2023, ListPrice: decimal.RequireFromString("549.99")}
	require.NoError(t, f.catalog.CreateProduct(ctx, &f.product))
	f.store = model.Store{Name: "Baldwin Bikes", City: "Baldwin", State: "NY"}
	require.NoError(t, stores.Create(ctx, &f.store))
	return f
}

func (f *fixture) customer(t *testing.T, email string) model.Customer {
	t.Helper()
	c := model.Customer{FirstName: "Debra", LastName: "Burks", Email: email}
	require.NoError(t, f.identity.CreateCustomer(context.Background(), &c, "pw"))
	return c
}
