package model

import (
    "fmt"
    "time"
)

// StockKey identifies a stock row by the (store, product) pair.  It is a
// comparable value type so it can be used directly as a map key.
type StockKey struct {
    StoreID   int64 `json:"store_id"`
    ProductID int64 `json:"product_id"`
}

func (k StockKey) String() string { return fmt.Sprintf("%d:%d", k.StoreID, k.ProductID) }

// Less orders keys by store first, then product.
func (k StockKey) Less(o StockKey) bool {
    if k.StoreID != o.StoreID {
        return k.StoreID < o.StoreID
    }
    return k.ProductID < o.ProductID
}

// Stock is the quantity of one product held by one store.  Quantity is
// never negative.
type Stock struct {
    StockKey
    Quantity  int       `json:"quantity"`   // stocks.quantity
    CreatedAt time.Time `json:"created_at"` // stocks.created_at, used for insertion ordering
}
