// Package queue defines message payloads exchanged over the message broker
// and the audit consumer that records them.
package queue

// Queue names. Each event type has its own durable queue; the routing key
// on the default exchange equals the queue name.
const (
    OrderCreatedQueue  = "order.created"
    StockAdjustedQueue = "stock.adjusted"
)

// OrderCreatedEvent is published after an order has been stored. It holds
// enough for consumers to log or notify without reading the database.
type OrderCreatedEvent struct {
    EventID      string `json:"event_id"`
    OrderID      int64  `json:"order_id"`
    CustomerID   int64  `json:"customer_id"`
    StoreID      int64  `json:"store_id"`
    Status       string `json:"order_status"`
    OrderDate    string `json:"order_date"`
    RequiredDate string `json:"required_date"`
    CreatedAt    string `json:"created_at"`
}

// StockAdjustedEvent is published after a stock quantity changed. Delta is
// the amount removed (negative for restocks); Quantity is the new value.
type StockAdjustedEvent struct {
    EventID    string `json:"event_id"`
    StoreID    int64  `json:"store_id"`
    ProductID  int64  `json:"product_id"`
    Delta      int    `json:"delta"`
    Quantity   int    `json:"quantity"`
    AdjustedAt string `json:"adjusted_at"`
}
