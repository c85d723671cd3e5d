// Package access holds the role matrix that decides which role may run
// which operation on which resource. The matrix is plain data; Gate only
// looks things up in it and denies anything it does not list.
package access

import "github.com/samber/lo"

// Role is the role tag carried by an authenticated principal.
type Role string

const (
	RoleAdmin Role = "ADMIN" // staff
	RoleUser  Role = "USER"  // customer
)

// Resource names a class of records guarded by the gate.
type Resource string

const (
	Brand     Resource = "brand"
	Category  Resource = "category"
	Product   Resource = "product"
	Store     Resource = "store"
	Stock     Resource = "stock"
	Customer  Resource = "customer"
	Staff     Resource = "staff"
	Order     Resource = "order"
	OrderItem Resource = "order_item"
)

// Operation names an action on a resource.
type Operation string

const (
	Create Operation = "create"
	Read   Operation = "read"
	List   Operation = "list"
	Update Operation = "update"
	Delete Operation = "delete"
	// ListByOwner lists the records that belong to one owner, such as the
	// orders of a customer or the items of an order.
	ListByOwner Operation = "list_by_owner"
)

// RoleSet is the set of roles allowed to run an operation.
type RoleSet map[Role]struct{}

// Roles builds a RoleSet.
func Roles(roles ...Role) RoleSet {
	return lo.SliceToMap(roles, func(r Role) (Role, struct{}) { return r, struct{}{} })
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

// Matrix maps every guarded (resource, operation) pair to its role set.
type Matrix map[Resource]map[Operation]RoleSet

var (
	adminOnly   = Roles(RoleAdmin)
	adminOrUser = Roles(RoleAdmin, RoleUser)
)

func catalogOps() map[Operation]RoleSet {
	return map[Operation]RoleSet{
		Create: adminOnly,
		Update: adminOnly,
		Delete: adminOnly,
		Read:   adminOrUser,
		List:   adminOrUser,
	}
}

func adminOps() map[Operation]RoleSet {
	return map[Operation]RoleSet{
		Create: adminOnly,
		Read:   adminOnly,
		List:   adminOnly,
		Update: adminOnly,
		Delete: adminOnly,
	}
}

// DefaultMatrix returns the role matrix of the store API.
func DefaultMatrix() Matrix {
	return Matrix{
		Brand:    catalogOps(),
		Category: catalogOps(),
		Product:  catalogOps(),
		Store:    adminOps(),
		Staff:    adminOps(),
		Stock: {
			Create:      adminOnly,
			Update:      adminOnly,
			Delete:      adminOnly,
			Read:        adminOrUser,
			List:        adminOrUser,
			ListByOwner: adminOrUser,
		},
		Customer: {
			Create: adminOrUser,
			Update: adminOrUser,
			Read:   adminOnly,
			List:   adminOnly,
			Delete: adminOnly,
		},
		Order: {
			Create:      adminOrUser,
			Read:        adminOrUser,
			ListByOwner: adminOrUser,
			List:        adminOnly,
			Update:      adminOnly,
			Delete:      adminOnly,
		},
		OrderItem: {
			Create:      adminOnly,
			Update:      adminOnly,
			Delete:      adminOnly,
			List:        adminOnly,
			Read:        adminOrUser,
			ListByOwner: adminOrUser,
		},
	}
}
