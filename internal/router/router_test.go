package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/auth"
	"github.com/iliyamo/bike-store-inventory/internal/config"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/repository"
	"github.com/iliyamo/bike-store-inventory/internal/service"
	"github.com/iliyamo/bike-store-inventory/internal/testutil"
	"github.com/iliyamo/bike-store-inventory/internal/utils"
)

const secret = "router-test-secret"

type env struct {
	e       *echo.Echo
	store   model.Store
	product model.Product
	brand   model.Brand

	admin, alice, bob string // bearer headers
	aliceID, bobID    int64
	staffID           int64
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	customers := repository.NewCustomerRepo(db)
	staff := repository.NewStaffRepo(db)
	brands := repository.NewBrandRepo(db)
	categories := repository.NewCategoryRepo(db)
	products := repository.NewProductRepo(db)
	stores := repository.NewStoreRepo(db)

	identity := service.NewIdentityService(customers, staff, stores, 4)
	catalog := service.NewCatalogService(brands, categories, products, stores)
	inventory := service.NewInventoryLedger(repository.NewStockRepo(db), stores, products, service.NopPublisher{}, logger)
	orders := service.NewOrderLedger(repository.NewOrderRepo(db), repository.NewOrderItemRepo(db),
		service.OrderRefs{Customers: customers, Products: products, Stores: stores, Staff: staff}, service.NopPublisher{}, logger)

	cfg := config.Config{JWTSecret: secret, AccessTTLMin: 5, RefreshTTLDays: 1, BcryptCost: 4}
	ev := &env{}
	ev.e = New(Deps{JWTSecret: secret, Gate: access.NewGate(nil), Logger: logger}, Handlers{
		Health:   handler.NewHealth(db, nil),
		Auth:     handler.NewAuthHandler(cfg, auth.NewAuthenticator(customers, staff), identity, repository.NewTokenRepo(db)),
		Stock:    handler.NewStockHandler(inventory),
		Order:    handler.NewOrderHandler(orders),
		Identity: handler.NewIdentityHandler(identity),
		Catalog:  handler.NewCatalogHandler(catalog),
	})

	ev.brand = model.Brand{Name: "Trek"}
	require.NoError(t, brands.Create(ctx, &ev.brand))
	cat := model.Category{Name: "Mountain Bikes"}
	require.NoError(t, categories.Create(ctx, &cat))
	ev.product = model.Product{Name: "Trek 820 - 2016", BrandID: ev.brand.ID, CategoryID: cat.ID, ModelYear: 2016,
		ListPrice: decimal.RequireFromString("379.99")}
	require.NoError(t, catalog.CreateProduct(ctx, &ev.product))
	ev.store = model.Store{Name: "Santa Cruz Bikes", City: "Santa Cruz", State: "CA"}
	require.NoError(t, stores.Create(ctx, &ev.store))

	st := model.Staff{FirstName: "Fabiola", LastName: "Jackson", Email: "fabiola@bikes.test", Active: true, StoreID: ev.store.ID}
	require.NoError(t, identity.CreateStaff(ctx, &st, "secret1"))
	alice := model.Customer{FirstName: "Alice", LastName: "Lee", Email: "alice@bikes.test"}
	require.NoError(t, identity.CreateCustomer(ctx, &alice, "secret1"))
	bob := model.Customer{FirstName: "Bob", LastName: "Ray", Email: "bob@bikes.test"}
	require.NoError(t, identity.CreateCustomer(ctx, &bob, "secret1"))

	ev.admin, ev.staffID = bearer(t, st.ID, "staff", "ADMIN"), st.ID
	ev.alice, ev.aliceID = bearer(t, alice.ID, "customer", "USER"), alice.ID
	ev.bob, ev.bobID = bearer(t, bob.ID, "customer", "USER"), bob.ID
	return ev
}

func bearer(t *testing.T, id int64, kind, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, id, kind, role, 5)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func (ev *env) do(t *testing.T, method, path, authz string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(bs)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	ev.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	ev := newEnv(t)
	rec := ev.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]string](t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["redis"])
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestStocks(t *testing.T) {
	ev := newEnv(t)
	storePath := fmt.Sprintf("/v1/stocks/store/%d", ev.store.ID)
	keyPath := fmt.Sprintf("/v1/stocks/%d/%d", ev.store.ID, ev.product.ID)
	quantity := func() int {
		rec := ev.do(t, http.MethodGet, storePath, ev.alice, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		out := decode[[]model.Stock](t, rec)
		require.Len(t, out, 1)
		return out[0].Quantity
	}

	create := echo.Map{"store_id": ev.store.ID, "product_id": ev.product.ID, "quantity": 5}
	rec := ev.do(t, http.MethodPost, "/v1/stocks/create", ev.alice, create)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = ev.do(t, http.MethodPost, "/v1/stocks/create", ev.admin, create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = ev.do(t, http.MethodPost, "/v1/stocks/create", ev.admin, create)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, 5, quantity())

	t.Run("customer cannot delete", func(t *testing.T) {
		rec := ev.do(t, http.MethodDelete, fmt.Sprintf("/v1/stocks/delete/%d/%d", ev.store.ID, ev.product.ID), ev.alice, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, 5, quantity())
	})

	t.Run("missing store is plain text 404", func(t *testing.T) {
		rec := ev.do(t, http.MethodGet, "/v1/stocks/store/999", ev.alice, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
		assert.Contains(t, rec.Body.String(), "stock not found")
	})

	t.Run("update", func(t *testing.T) {
		tests := []struct {
			name      string
			body      echo.Map
			want      int
			wantQty   int
			deprecate bool
		}{
			{"delta removes", echo.Map{"delta": 2}, http.StatusOK, 3, false},
			{"underflow rejected", echo.Map{"delta": 10}, http.StatusBadRequest, 3, false},
			{"negative delta restocks", echo.Map{"delta": -4}, http.StatusOK, 7, false},
			{"both fields rejected", echo.Map{"delta": 1, "quantity": 2}, http.StatusBadRequest, 7, false},
			{"empty body rejected", echo.Map{}, http.StatusBadRequest, 7, false},
			{"out of range delta rejected", echo.Map{"delta": int64(math.MinInt64)}, http.StatusBadRequest, 7, false},
			{"quantity alone sets", echo.Map{"quantity": 1}, http.StatusOK, 1, true},
			{"negative quantity rejected", echo.Map{"quantity": -1}, http.StatusBadRequest, 1, false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := ev.do(t, http.MethodPut, keyPath, ev.admin, tt.body)
				assert.Equal(t, tt.want, rec.Code, rec.Body.String())
				assert.Equal(t, tt.wantQty, quantity())
				if tt.deprecate {
					assert.Equal(t, "true", rec.Header().Get("Deprecation"))
				}
			})
		}
	})

	rec = ev.do(t, http.MethodPut, fmt.Sprintf("/v1/stocks/%d/999", ev.store.ID), ev.admin, echo.Map{"delta": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ev.do(t, http.MethodPost, "/v1/stocks/create", ev.admin, echo.Map{"store_id": 999, "product_id": ev.product.ID})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	del := fmt.Sprintf("/v1/stocks/delete/%d/%d", ev.store.ID, ev.product.ID)
	assert.Equal(t, http.StatusNoContent, ev.do(t, http.MethodDelete, del, ev.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ev.do(t, http.MethodDelete, del, ev.admin, nil).Code)

	rec = ev.do(t, http.MethodGet, "/v1/stocks/all", ev.alice, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]model.Stock](t, rec))
}

func orderBody(ev *env) echo.Map {
	return echo.Map{
		"order_status":  "pending",
		"order_date":    "2024-01-02",
		"required_date": "2024-01-05",
		"store_id":      ev.store.ID,
	}
}

func TestOrders_Ownership(t *testing.T) {
	ev := newEnv(t)

	rec := ev.do(t, http.MethodPost, "/v1/orders/create", ev.alice, orderBody(ev))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[model.Order](t, rec)
	assert.Equal(t, ev.aliceID, o.CustomerID)

	forBob := orderBody(ev)
	forBob["customer_id"] = ev.bobID
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodPost, "/v1/orders/create", ev.alice, forBob).Code)
	assert.Equal(t, http.StatusCreated, ev.do(t, http.MethodPost, "/v1/orders/create", ev.admin, forBob).Code)

	orderPath := fmt.Sprintf("/v1/orders/%d", o.ID)
	byAlice := fmt.Sprintf("/v1/orders/bycustomer/%d", ev.aliceID)
	tests := []struct {
		name  string
		path  string
		authz string
		want  int
	}{
		{"owner reads order", orderPath, ev.alice, http.StatusOK},
		{"other customer reads order", orderPath, ev.bob, http.StatusForbidden},
		{"staff reads order", orderPath, ev.admin, http.StatusOK},
		{"owner lists own", byAlice, ev.alice, http.StatusOK},
		{"other customer lists", byAlice, ev.bob, http.StatusForbidden},
		{"unknown customer", "/v1/orders/bycustomer/999", ev.admin, http.StatusNotFound},
		{"unknown order", "/v1/orders/999", ev.admin, http.StatusNotFound},
		{"customer lists all", "/v1/orders/all", ev.alice, http.StatusForbidden},
		{"staff lists all", "/v1/orders/all", ev.admin, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ev.do(t, http.MethodGet, tt.path, tt.authz, nil).Code)
		})
	}

	rec = ev.do(t, http.MethodGet, byAlice, ev.alice, nil)
	assert.Len(t, decode[[]model.Order](t, rec), 1)
}

func TestOrders_UpdateDeleteAndItems(t *testing.T) {
	ev := newEnv(t)
	rec := ev.do(t, http.MethodPost, "/v1/orders/create", ev.alice, orderBody(ev))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[model.Order](t, rec)

	bad := orderBody(ev)
	bad["order_date"] = "02/01/2024"
	assert.Equal(t, http.StatusBadRequest, ev.do(t, http.MethodPost, "/v1/orders/create", ev.alice, bad).Code)

	upd := orderBody(ev)
	upd["order_status"] = "shipped"
	upd["shipped_date"] = "2024-01-04T10:00:00Z"
	updPath := fmt.Sprintf("/v1/orders/update/%d", o.ID)
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodPut, updPath, ev.alice, upd).Code)
	rec = ev.do(t, http.MethodPut, updPath, ev.admin, upd)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[model.Order](t, rec)
	assert.Equal(t, "shipped", got.Status)
	assert.Equal(t, ev.aliceID, got.CustomerID)
	require.NotNil(t, got.ShippedDate)

	item := echo.Map{"order_id": o.ID, "item_id": 1, "product_id": ev.product.ID, "quantity": 2, "list_price": 199.99, "discount": 0.1}
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodPost, "/v1/orderitems/create", ev.alice, item).Code)
	rec = ev.do(t, http.MethodPost, "/v1/orderitems/create", ev.admin, item)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, "359.982", created["line_total"])
	assert.Equal(t, http.StatusConflict, ev.do(t, http.MethodPost, "/v1/orderitems/create", ev.admin, item).Code)

	itemsPath := fmt.Sprintf("/v1/orderitems/all/%d", o.ID)
	rec = ev.do(t, http.MethodGet, itemsPath, ev.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]map[string]any](t, rec), 1)
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodGet, itemsPath, ev.bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, ev.do(t, http.MethodGet, fmt.Sprintf("/v1/orderitems/%d/2", o.ID), ev.alice, nil).Code)
	assert.Equal(t, http.StatusOK, ev.do(t, http.MethodGet, fmt.Sprintf("/v1/orderitems/%d/1", o.ID), ev.alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodGet, "/v1/orderitems/all", ev.alice, nil).Code)

	itemPath := fmt.Sprintf("/v1/orderitems/update/%d/1", o.ID)
	item["quantity"] = 0
	assert.Equal(t, http.StatusBadRequest, ev.do(t, http.MethodPut, itemPath, ev.admin, item).Code)
	item["quantity"] = 3
	assert.Equal(t, http.StatusOK, ev.do(t, http.MethodPut, itemPath, ev.admin, item).Code)

	assert.Equal(t, http.StatusNoContent, ev.do(t, http.MethodDelete, fmt.Sprintf("/v1/orders/delete/%d", o.ID), ev.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ev.do(t, http.MethodGet, itemsPath, ev.admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, ev.do(t, http.MethodDelete, fmt.Sprintf("/v1/orders/delete/%d", o.ID), ev.admin, nil).Code)
}

func TestOrders_UnknownStoreOrStaff(t *testing.T) {
	ev := newEnv(t)
	withStaff := orderBody(ev)
	withStaff["staff_id"] = ev.staffID
	withStaff["customer_id"] = ev.aliceID
	rec := ev.do(t, http.MethodPost, "/v1/orders/create", ev.admin, withStaff)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	o := decode[model.Order](t, rec)
	updPath := fmt.Sprintf("/v1/orders/update/%d", o.ID)

	tests := []struct {
		name  string
		field string
		value int64
		want  string
	}{
		{"unknown store", "store_id", 9999, "store not found"},
		{"unknown staff", "staff_id", 8888, "staff not found"},
	}
	for _, tt := range tests {
		body := orderBody(ev)
		body[tt.field] = tt.value
		t.Run("create "+tt.name, func(t *testing.T) {
			rec := ev.do(t, http.MethodPost, "/v1/orders/create", ev.alice, body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Header().Get(echo.HeaderContentType), echo.MIMETextPlain)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
		t.Run("update "+tt.name, func(t *testing.T) {
			rec := ev.do(t, http.MethodPut, updPath, ev.admin, body)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.want)
		})
	}

	rec = ev.do(t, http.MethodGet, fmt.Sprintf("/v1/orders/bycustomer/%d", ev.aliceID), ev.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Order](t, rec), 1)
}

type authResp struct {
	User struct {
		ID   int64  `json:"id"`
		Kind string `json:"kind"`
		Role string `json:"role"`
	} `json:"user"`
	Access  struct{ Token string } `json:"access"`
	Refresh struct{ Token string } `json:"refresh"`
}

func TestAuthFlow(t *testing.T) {
	ev := newEnv(t)

	reg := echo.Map{"email": "Carol@Bikes.test", "password": "secret12", "first_name": "Carol", "last_name": "Diaz"}
	rec := ev.do(t, http.MethodPost, "/v1/auth/register", "", reg)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	r := decode[authResp](t, rec)
	assert.Equal(t, "customer", r.User.Kind)
	assert.Equal(t, "USER", r.User.Role)
	assert.Equal(t, http.StatusConflict, ev.do(t, http.MethodPost, "/v1/auth/register", "", reg).Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		ev.do(t, http.MethodPost, "/v1/auth/register", "", echo.Map{"email": "x@bikes.test"}).Code)

	login := func(email, pw string) *httptest.ResponseRecorder {
		return ev.do(t, http.MethodPost, "/v1/auth/login", "", echo.Map{"email": email, "password": pw})
	}
	assert.Equal(t, http.StatusUnauthorized, login("carol@bikes.test", "wrong").Code)
	assert.Equal(t, http.StatusUnauthorized, login("nobody@bikes.test", "secret12").Code)

	rec = login("carol@bikes.test", "secret12")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	r = decode[authResp](t, rec)

	rec = ev.do(t, http.MethodGet, "/v1/me", "Bearer "+r.Access.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[map[string]any](t, rec)
	assert.Equal(t, "customer", me["kind"])
	assert.Equal(t, "USER", me["role"])

	rec = login("fabiola@bikes.test", "secret1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ADMIN", decode[authResp](t, rec).User.Role)

	// rotation: the old refresh token is spent
	rec = ev.do(t, http.MethodPost, "/v1/auth/refresh", "", echo.Map{"refresh_token": r.Refresh.Token})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rotated := decode[authResp](t, rec)
	assert.NotEqual(t, r.Refresh.Token, rotated.Refresh.Token)
	assert.Equal(t, http.StatusUnauthorized,
		ev.do(t, http.MethodPost, "/v1/auth/refresh", "", echo.Map{"refresh_token": r.Refresh.Token}).Code)

	assert.Equal(t, http.StatusNoContent,
		ev.do(t, http.MethodPost, "/v1/auth/logout", "", echo.Map{"refresh_token": rotated.Refresh.Token}).Code)
	assert.Equal(t, http.StatusUnauthorized,
		ev.do(t, http.MethodPost, "/v1/auth/refresh", "", echo.Map{"refresh_token": rotated.Refresh.Token}).Code)
	assert.Equal(t, http.StatusBadRequest, ev.do(t, http.MethodPost, "/v1/auth/logout", "", echo.Map{}).Code)
}

func TestCatalogAndIdentityRoutes(t *testing.T) {
	ev := newEnv(t)

	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodPost, "/v1/brands/create", ev.alice, echo.Map{"brand_name": "Surly"}).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, ev.do(t, http.MethodPost, "/v1/brands/create", ev.admin, echo.Map{}).Code)
	rec := ev.do(t, http.MethodPost, "/v1/brands/create", ev.admin, echo.Map{"brand_name": "Surly"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = ev.do(t, http.MethodGet, "/v1/brands/all", ev.alice, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Brand](t, rec), 2)
	assert.Equal(t, http.StatusNotFound, ev.do(t, http.MethodGet, "/v1/brands/999", ev.alice, nil).Code)
	assert.Equal(t, http.StatusConflict,
		ev.do(t, http.MethodDelete, fmt.Sprintf("/v1/brands/delete/%d", ev.brand.ID), ev.admin, nil).Code)

	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodGet, "/v1/stores/all", ev.alice, nil).Code)
	assert.Equal(t, http.StatusOK, ev.do(t, http.MethodGet, "/v1/stores/all", ev.admin, nil).Code)
	assert.Equal(t, http.StatusOK, ev.do(t, http.MethodGet, fmt.Sprintf("/v1/products/%d", ev.product.ID), ev.bob, nil).Code)

	profile := echo.Map{"first_name": "Alice", "last_name": "Lee-Smith", "email": "alice@bikes.test"}
	assert.Equal(t, http.StatusForbidden,
		ev.do(t, http.MethodPut, fmt.Sprintf("/v1/customers/update/%d", ev.aliceID), ev.bob, profile).Code)
	rec = ev.do(t, http.MethodPut, fmt.Sprintf("/v1/customers/update/%d", ev.aliceID), ev.alice, profile)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Lee-Smith", decode[model.Customer](t, rec).LastName)

	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodGet, "/v1/customers/all", ev.alice, nil).Code)
	assert.Equal(t, http.StatusForbidden, ev.do(t, http.MethodGet, "/v1/staffs/all", ev.alice, nil).Code)
	assert.Equal(t, http.StatusOK, ev.do(t, http.MethodGet, "/v1/staffs/all", ev.admin, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, ev.do(t, http.MethodGet, "/v1/staffs/all", "", nil).Code)
}
