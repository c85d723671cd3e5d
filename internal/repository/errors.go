// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services and handlers to distinguish between different failure
// scenarios. Every "not found" sentinel unwraps to ErrNotFound so the
// transport layer can map the whole family to HTTP 404, while
// ErrConflict signals a unique key collision or an operation blocked by
// dependent records.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the parent of every per-resource not found error.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an insert or update collides with an
// existing unique key (email, composite key) or when a delete is blocked
// by dependent records. Handlers should translate this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrQuantityUnderflow is returned by conditional stock updates that would
// leave a negative quantity, or one above MaxQuantity. Nothing is written
// in that case.
var ErrQuantityUnderflow = errors.New("quantity out of range")

// MaxQuantity is the largest quantity a stocks row can hold (INT column).
const MaxQuantity = 1<<31 - 1

type notFoundError struct{ resource string }

func (e *notFoundError) Error() string { return e.resource + " not found" }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

func notFound(resource string) error { return &notFoundError{resource: resource} }

var (
	ErrCustomerNotFound  = notFound("customer")
	ErrStaffNotFound     = notFound("staff")
	ErrStockNotFound     = notFound("stock")
	ErrOrderNotFound     = notFound("order")
	ErrOrderItemNotFound = notFound("order item")
	ErrBrandNotFound     = notFound("brand")
	ErrCategoryNotFound  = notFound("category")
	ErrProductNotFound   = notFound("product")
	ErrStoreNotFound     = notFound("store")
)

// isDuplicateKey reports whether err is a unique constraint violation.
// MySQL reports error 1062; the SQLite driver used by tests reports
// "UNIQUE constraint failed".
func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate entry") || strings.Contains(msg, "unique constraint failed")
}

// isForeignKeyViolation reports whether err is a MySQL foreign key failure:
// 1451 (row still referenced) or 1452 (reference to a missing row).
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1451 || me.Number == 1452
	}
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "foreign key constraint failed")
}
