package model

import (
    "fmt"
    "strings"
    "time"

    "github.com/shopspring/decimal"
)

// Order status values.  The column is free text; these are the values
// understood by the strict transition check.
const (
    StatusPending    = "pending"
    StatusProcessing = "processing"
    StatusShipped    = "shipped"
    StatusDelivered  = "delivered"
    StatusCancelled  = "cancelled"
)

// orderTransitions lists the statuses reachable from each non-terminal status.
var orderTransitions = map[string][]string{
    StatusPending:    {StatusProcessing, StatusCancelled},
    StatusProcessing: {StatusShipped, StatusCancelled},
    StatusShipped:    {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from status `from` to
// status `to`.  Keeping the same status is always allowed.  Delivered and
// cancelled are terminal.
func CanTransition(from, to string) bool {
    from = strings.ToLower(strings.TrimSpace(from))
    to = strings.ToLower(strings.TrimSpace(to))
    if from == to {
        return true
    }
    for _, next := range orderTransitions[from] {
        if next == to {
            return true
        }
    }
    return false
}

// Order records a sale to exactly one customer.
//
// Fields:
//  ID           – primary key identifier.
//  CustomerID   – owning customer; required.
//  Status       – free text status tag (pending, shipped, ...).
//  ShippedDate  – nil until the order is fulfilled.
//  StaffID      – staff member handling the order; nullable.
type Order struct {
    ID           int64      `json:"order_id"`               // orders.id
    CustomerID   int64      `json:"customer_id"`            // orders.customer_id
    Status       string     `json:"order_status"`           // orders.status
    OrderDate    time.Time  `json:"order_date"`             // orders.order_date
    RequiredDate time.Time  `json:"required_date"`          // orders.required_date
    ShippedDate  *time.Time `json:"shipped_date,omitempty"` // orders.shipped_date (nullable)
    StoreID      int64      `json:"store_id"`               // orders.store_id
    StaffID      *int64     `json:"staff_id,omitempty"`     // orders.staff_id (nullable)
}

// OrderItemKey identifies a line of an order by the (order, item) pair.
type OrderItemKey struct {
    OrderID int64 `json:"order_id"`
    ItemID  int64 `json:"item_id"`
}

func (k OrderItemKey) String() string { return fmt.Sprintf("%d:%d", k.OrderID, k.ItemID) }

// Less orders keys by order first, then item.
func (k OrderItemKey) Less(o OrderItemKey) bool {
    if k.OrderID != o.OrderID {
        return k.OrderID < o.OrderID
    }
    return k.ItemID < o.ItemID
}

// OrderItem is a single line of an order.  Discount is a fraction in
// [0, 1] applied to ListPrice.
type OrderItem struct {
    OrderItemKey
    ProductID int64           `json:"product_id"` // order_items.product_id
    Quantity  int             `json:"quantity"`   // order_items.quantity
    ListPrice decimal.Decimal `json:"list_price"` // order_items.list_price
    Discount  decimal.Decimal `json:"discount"`   // order_items.discount
}

// LineTotal returns quantity * list price * (1 - discount).
func (i OrderItem) LineTotal() decimal.Decimal {
    return i.ListPrice.Mul(decimal.NewFromInt(int64(i.Quantity))).Mul(decimal.NewFromInt(1).Sub(i.Discount))
}
