package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/bike-store-inventory/internal/middleware"
	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/service"
)

// OrderHandler serves /v1/orders and /v1/orderitems.
type OrderHandler struct {
	Ledger *service.OrderLedger
}

func NewOrderHandler(l *service.OrderLedger) *OrderHandler { return &OrderHandler{Ledger: l} }

// orderReq is the create/update body. Dates accept "2006-01-02" or RFC3339.
// customer_id may be omitted by customers; it defaults to the caller.
type orderReq struct {
	CustomerID   int64  `json:"customer_id" validate:"gte=0"`
	Status       string `json:"order_status" validate:"required"`
	OrderDate    string `json:"order_date" validate:"required"`
	RequiredDate string `json:"required_date" validate:"required"`
	ShippedDate  string `json:"shipped_date"`
	StoreID      int64  `json:"store_id" validate:"required,gt=0"`
	StaffID      *int64 `json:"staff_id"`
}

type orderItemReq struct {
	OrderID   int64           `json:"order_id" validate:"required,gt=0"`
	ItemID    int64           `json:"item_id" validate:"required,gt=0"`
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity"`
	ListPrice decimal.Decimal `json:"list_price"`
	Discount  decimal.Decimal `json:"discount"`
}

type orderItemResp struct {
	model.OrderItem
	LineTotal decimal.Decimal `json:"line_total"`
}

func toItemResp(it model.OrderItem, _ int) orderItemResp {
	return orderItemResp{OrderItem: it, LineTotal: it.LineTotal()}
}

func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, pkgerrors.Wrapf(errBadRequest, "invalid %s %q", field, v)
	}
	return t.UTC(), nil
}

func (r orderReq) toModel() (model.Order, error) {
	o := model.Order{CustomerID: r.CustomerID, Status: r.Status, StoreID: r.StoreID, StaffID: r.StaffID}
	var err error
	if o.OrderDate, err = parseDate("order_date", r.OrderDate); err != nil {
		return o, err
	}
	if o.RequiredDate, err = parseDate("required_date", r.RequiredDate); err != nil {
		return o, err
	}
	if strings.TrimSpace(r.ShippedDate) != "" {
		t, err := parseDate("shipped_date", r.ShippedDate)
		if err != nil {
			return o, err
		}
		o.ShippedDate = &t
	}
	return o, nil
}

func itemKey(c echo.Context) (model.OrderItemKey, error) {
	orderID, err := paramID(c, "orderId")
	if err != nil {
		return model.OrderItemKey{}, err
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return model.OrderItemKey{}, err
	}
	return model.OrderItemKey{OrderID: orderID, ItemID: itemID}, nil
}

// ----- orders -----

// Create handles POST /orders/create. Customers may only order for
// themselves.
func (h *OrderHandler) Create(c echo.Context) error {
	var req orderReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if caller, ok := middleware.CallerFrom(c); ok && caller.IsCustomer() && req.CustomerID == 0 {
		req.CustomerID = caller.ID
	}
	if req.CustomerID == 0 {
		return writeError(c, pkgerrors.Wrap(errBadRequest, "customer_id required"))
	}
	if err := requireOwner(c, req.CustomerID); err != nil {
		return writeError(c, err)
	}
	o, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Create(ctx, &o); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// Get handles GET /orders/:orderId.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := paramID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	o, err := h.Ledger.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if err := requireOwner(c, o.CustomerID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// All handles GET /orders/all.
func (h *OrderHandler) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ByCustomer handles GET /orders/bycustomer/:customerId.
func (h *OrderHandler) ByCustomer(c echo.Context) error {
	id, err := paramID(c, "customerId")
	if err != nil {
		return writeError(c, err)
	}
	if err := requireOwner(c, id); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.ListByCustomer(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /orders/update/:orderId. Every field is overwritten;
// an absent shipped_date or staff_id clears the stored value.
func (h *OrderHandler) Update(c echo.Context) error {
	id, err := paramID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	var req orderReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	o, err := req.toModel()
	if err != nil {
		return writeError(c, err)
	}
	o.ID = id

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Update(ctx, &o); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

// Delete handles DELETE /orders/delete/:orderId.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := paramID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Delete(ctx, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ----- order items -----

// CreateItem handles POST /orderitems/create.
func (h *OrderHandler) CreateItem(c echo.Context) error {
	var req orderItemReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	it := model.OrderItem{
		OrderItemKey: model.OrderItemKey{OrderID: req.OrderID, ItemID: req.ItemID},
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		ListPrice:    req.ListPrice,
		Discount:     req.Discount,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.CreateItem(ctx, &it); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toItemResp(it, 0))
}

// GetItem handles GET /orderitems/:orderId/:itemId.
func (h *OrderHandler) GetItem(c echo.Context) error {
	key, err := itemKey(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.checkOrderOwner(ctx, c, key.OrderID); err != nil {
		return writeError(c, err)
	}
	it, err := h.Ledger.GetItem(ctx, key)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResp(it, 0))
}

// ItemsByOrder handles GET /orderitems/all/:orderId.
func (h *OrderHandler) ItemsByOrder(c echo.Context) error {
	id, err := paramID(c, "orderId")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.checkOrderOwner(ctx, c, id); err != nil {
		return writeError(c, err)
	}
	out, err := h.Ledger.ItemsByOrder(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(out, toItemResp))
}

// AllItems handles GET /orderitems/all.
func (h *OrderHandler) AllItems(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.ListItems(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, lo.Map(out, toItemResp))
}

// UpdateItem handles PUT /orderitems/update/:orderId/:itemId.
func (h *OrderHandler) UpdateItem(c echo.Context) error {
	key, err := itemKey(c)
	if err != nil {
		return writeError(c, err)
	}
	var req orderItemReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, pkgerrors.Wrap(errBadRequest, "invalid body"))
	}
	it := model.OrderItem{
		OrderItemKey: key,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		ListPrice:    req.ListPrice,
		Discount:     req.Discount,
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.UpdateItem(ctx, &it); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toItemResp(it, 0))
}

// DeleteItem handles DELETE /orderitems/delete/:orderId/:itemId.
func (h *OrderHandler) DeleteItem(c echo.Context) error {
	key, err := itemKey(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.DeleteItem(ctx, key); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// checkOrderOwner resolves the owner of orderID and applies requireOwner.
// Staff skip the lookup.
func (h *OrderHandler) checkOrderOwner(ctx context.Context, c echo.Context, orderID int64) error {
	caller, ok := middleware.CallerFrom(c)
	if ok && !caller.IsCustomer() {
		return nil
	}
	owner, err := h.Ledger.OwnerOf(ctx, orderID)
	if err != nil {
		return err
	}
	return requireOwner(c, owner)
}
