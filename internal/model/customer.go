package model

import "time"

// Customer represents a shopper record as stored in the `customers`
// table.  Customers authenticate with their email address and always
// carry the USER role.  The password is never stored in plain text;
// PasswordHash holds the bcrypt digest.
//
// Fields:
//  ID           – primary key identifier, assigned on insert and immutable.
//  Email        – unique (within customers) lower-cased email address.
//  PasswordHash – bcrypt hashed password.
//  Role         – always USER for customers.
type Customer struct {
    ID           int64     `json:"customer_id"` // customers.id
    FirstName    string    `json:"first_name"`  // customers.first_name
    LastName     string    `json:"last_name"`   // customers.last_name
    Phone        string    `json:"phone"`       // customers.phone
    Email        string    `json:"email"`       // customers.email
    Street       string    `json:"street"`      // customers.street
    City         string    `json:"city"`        // customers.city
    State        string    `json:"state"`       // customers.state
    ZipCode      string    `json:"zip_code"`    // customers.zip_code
    PasswordHash string    `json:"-"`           // customers.password_hash
    Role         string    `json:"role"`        // customers.role
    CreatedAt    time.Time `json:"created_at"`  // customers.created_at
}
