package model

import "time"

// Staff is an employee of a store.  Staff members authenticate with the
// ADMIN role.  ManagerID references another staff row and is nil for staff
// without a manager.
type Staff struct {
    ID           int64     `json:"staff_id"`             // staffs.id
    FirstName    string    `json:"first_name"`           // staffs.first_name
    LastName     string    `json:"last_name"`            // staffs.last_name
    Email        string    `json:"email"`                // staffs.email (unique within staffs)
    Phone        string    `json:"phone"`                // staffs.phone
    Active       bool      `json:"active"`               // staffs.active
    StoreID      int64     `json:"store_id"`             // staffs.store_id
    ManagerID    *int64    `json:"manager_id,omitempty"` // staffs.manager_id (nullable)
    PasswordHash string    `json:"-"`                    // staffs.password_hash
    Role         string    `json:"role"`                 // staffs.role
    CreatedAt    time.Time `json:"created_at"`           // staffs.created_at
}
