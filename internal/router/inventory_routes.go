package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bike-store-inventory/internal/access"
	"github.com/iliyamo/bike-store-inventory/internal/handler"
)

// RegisterInventory registers the stock endpoints. Reads are open to
// customers and staff; writes are staff only.
func RegisterInventory(e *echo.Echo, d Deps, h *handler.StockHandler) {
	g := protected(e, d)

	g.POST("/stocks/create", h.Create, allow(d, access.Stock, access.Create))
	g.GET("/stocks/store/:storeId", h.ByStore, allow(d, access.Stock, access.Read))
	g.GET("/stocks/product/:productId", h.ByProduct, allow(d, access.Stock, access.Read))
	g.GET("/stocks/all", h.All, allow(d, access.Stock, access.List))
	g.PUT("/stocks/:storeId/:productId", h.Update, allow(d, access.Stock, access.Update))
	g.DELETE("/stocks/delete/:storeId/:productId", h.Delete, allow(d, access.Stock, access.Delete))
}
