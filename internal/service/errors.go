// Package service holds the ledgers and services that enforce the
// business rules on top of the repositories: stock quantities never go
// negative, orders always belong to an existing customer, order items
// always point at an existing order and product.
package service

import "errors"

var (
	// ErrInvalidQuantity is returned for negative stock quantities, stock
	// adjustments that would go below zero and non-positive item quantities.
	ErrInvalidQuantity = errors.New("invalid quantity")
	// ErrInvalidStatusTransition is returned by strict status checking
	// when an order cannot move to the requested status.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	// ErrInvalidInput is returned for field values the ledgers reject,
	// such as a discount outside [0, 1] or a staff member managing itself.
	ErrInvalidInput = errors.New("invalid input")
)
