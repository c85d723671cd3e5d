package access

import "errors"

// ErrForbidden is returned when the caller's role may not run the
// requested operation.
var ErrForbidden = errors.New("forbidden")

// Gate answers permission questions against a Matrix.
type Gate struct {
	matrix Matrix
}

// NewGate returns a Gate over m. A nil m uses DefaultMatrix.
func NewGate(m Matrix) *Gate {
	if m == nil {
		m = DefaultMatrix()
	}
	return &Gate{matrix: m}
}

// Allowed reports whether role may run op on res. Unknown roles,
// resources and operations are denied.
func (g *Gate) Allowed(role Role, res Resource, op Operation) bool {
	ops, ok := g.matrix[res]
	if !ok {
		return false
	}
	roles, ok := ops[op]
	if !ok {
		return false
	}
	return roles.Has(role)
}

// Check is Allowed returning ErrForbidden on denial.
func (g *Gate) Check(role Role, res Resource, op Operation) error {
	if !g.Allowed(role, res, op) {
		return ErrForbidden
	}
	return nil
}
