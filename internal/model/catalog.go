package model

import "github.com/shopspring/decimal"

// Brand, Category, Product and Store are the catalog reference entities.
// They are plain single-key records; stocks and order items point at
// products and stores by id.

type Brand struct {
    ID   int64  `json:"brand_id"`   // brands.id
    Name string `json:"brand_name" validate:"required"` // brands.name
}

type Category struct {
    ID   int64  `json:"category_id"`   // categories.id
    Name string `json:"category_name" validate:"required"` // categories.name
}

// Product is a sellable bicycle or accessory.
type Product struct {
    ID         int64           `json:"product_id"`   // products.id
    Name       string          `json:"product_name" validate:"required"` // products.name
    BrandID    int64           `json:"brand_id" validate:"gt=0"`     // products.brand_id
    CategoryID int64           `json:"category_id" validate:"gt=0"`  // products.category_id
    ModelYear  int             `json:"model_year"`   // products.model_year
    ListPrice  decimal.Decimal `json:"list_price"`   // products.list_price
}

// Store is a physical shop location that carries stock.
type Store struct {
    ID      int64  `json:"store_id"`   // stores.id
    Name    string `json:"store_name" validate:"required"` // stores.name
    Phone   string `json:"phone"`      // stores.phone
    Email   string `json:"email" validate:"omitempty,email"` // stores.email
    Street  string `json:"street"`     // stores.street
    City    string `json:"city"`       // stores.city
    State   string `json:"state"`      // stores.state
    ZipCode string `json:"zip_code"`   // stores.zip_code
}
