package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	pkgerrors "github.com/pkg/errors"

	"github.com/iliyamo/bike-store-inventory/internal/model"
	"github.com/iliyamo/bike-store-inventory/internal/service"
)

// StockHandler serves /v1/stocks.
type StockHandler struct {
	Ledger *service.InventoryLedger
}

func NewStockHandler(l *service.InventoryLedger) *StockHandler { return &StockHandler{Ledger: l} }

type stockCreateReq struct {
	StoreID   int64 `json:"store_id" validate:"required,gt=0"`
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity"`
}

// stockUpdateReq carries either a delta (units removed, negative to
// restock) or, deprecated, an absolute quantity. Sending both is rejected.
type stockUpdateReq struct {
	Delta    *int `json:"delta"`
	Quantity *int `json:"quantity"`
}

func stockKey(c echo.Context) (model.StockKey, error) {
	storeID, err := paramID(c, "storeId")
	if err != nil {
		return model.StockKey{}, err
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return model.StockKey{}, err
	}
	return model.StockKey{StoreID: storeID, ProductID: productID}, nil
}

// Create handles POST /stocks/create.
func (h *StockHandler) Create(c echo.Context) error {
	var req stockCreateReq
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s := model.Stock{StockKey: model.StockKey{StoreID: req.StoreID, ProductID: req.ProductID}, Quantity: req.Quantity}
	if err := h.Ledger.Create(ctx, &s); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// ByStore handles GET /stocks/store/:storeId.
func (h *StockHandler) ByStore(c echo.Context) error {
	id, err := paramID(c, "storeId")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.GetByStore(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ByProduct handles GET /stocks/product/:productId.
func (h *StockHandler) ByProduct(c echo.Context) error {
	id, err := paramID(c, "productId")
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.GetByProduct(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// All handles GET /stocks/all.
func (h *StockHandler) All(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	out, err := h.Ledger.List(ctx)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Update handles PUT /stocks/:storeId/:productId.
func (h *StockHandler) Update(c echo.Context) error {
	key, err := stockKey(c)
	if err != nil {
		return writeError(c, err)
	}
	var req stockUpdateReq
	if err := c.Bind(&req); err != nil {
		return writeError(c, pkgerrors.Wrap(errBadRequest, "invalid body"))
	}
	switch {
	case req.Delta != nil && req.Quantity != nil:
		return writeError(c, pkgerrors.Wrap(errBadRequest, "send either delta or quantity, not both"))
	case req.Delta == nil && req.Quantity == nil:
		return writeError(c, pkgerrors.Wrap(errBadRequest, "delta required"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	var s model.Stock
	if req.Delta != nil {
		s, err = h.Ledger.Adjust(ctx, key, *req.Delta)
	} else {
		c.Response().Header().Set("Deprecation", "true")
		s, err = h.Ledger.SetQuantity(ctx, key, *req.Quantity)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Delete handles DELETE /stocks/delete/:storeId/:productId.
func (h *StockHandler) Delete(c echo.Context) error {
	key, err := stockKey(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Ledger.Delete(ctx, key); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
