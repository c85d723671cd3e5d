// Package testutil provides an in-memory SQLite database carrying the
// same tables as migrations/001_init.sql, for repository, service and
// handler tests.
package testutil

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE brands (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE categories (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);
CREATE TABLE products (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    brand_id    INTEGER NOT NULL,
    category_id INTEGER NOT NULL,
    model_year  INTEGER NOT NULL,
    list_price  DECIMAL(10,2) NOT NULL
);
CREATE TABLE stores (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL,
    phone    TEXT NOT NULL DEFAULT '',
    email    TEXT NOT NULL DEFAULT '',
    street   TEXT NOT NULL DEFAULT '',
    city     TEXT NOT NULL DEFAULT '',
    state    TEXT NOT NULL DEFAULT '',
    zip_code TEXT NOT NULL DEFAULT ''
);
CREATE TABLE customers (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    phone         TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL UNIQUE,
    street        TEXT NOT NULL DEFAULT '',
    city          TEXT NOT NULL DEFAULT '',
    state         TEXT NOT NULL DEFAULT '',
    zip_code      TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'USER',
    created_at    DATETIME NOT NULL
);
CREATE TABLE staffs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    first_name    TEXT NOT NULL,
    last_name     TEXT NOT NULL,
    email         TEXT NOT NULL UNIQUE,
    phone         TEXT NOT NULL DEFAULT '',
    active        BOOLEAN NOT NULL DEFAULT 1,
    store_id      INTEGER NOT NULL,
    manager_id    INTEGER NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'ADMIN',
    created_at    DATETIME NOT NULL
);
CREATE TABLE stocks (
    store_id   INTEGER NOT NULL,
    product_id INTEGER NOT NULL,
    quantity   INTEGER NOT NULL CHECK (quantity >= 0),
    created_at DATETIME NOT NULL,
    PRIMARY KEY (store_id, product_id)
);
CREATE TABLE orders (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id   INTEGER NOT NULL,
    status        TEXT NOT NULL,
    order_date    DATETIME NOT NULL,
    required_date DATETIME NOT NULL,
    shipped_date  DATETIME NULL,
    store_id      INTEGER NOT NULL,
    staff_id      INTEGER NULL
);
CREATE TABLE order_items (
    order_id   INTEGER NOT NULL,
    item_id    INTEGER NOT NULL,
    product_id INTEGER NOT NULL,
    quantity   INTEGER NOT NULL,
    list_price DECIMAL(10,2) NOT NULL,
    discount   DECIMAL(4,2) NOT NULL DEFAULT 0,
    PRIMARY KEY (order_id, item_id)
);
CREATE TABLE refresh_tokens (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    principal_kind TEXT NOT NULL,
    principal_id   INTEGER NOT NULL,
    token_hash     TEXT NOT NULL UNIQUE,
    expires_at     DATETIME NOT NULL,
    revoked_at     DATETIME NULL,
    created_at     DATETIME NOT NULL
);
`

var seq atomic.Int64

// NewDB opens a fresh in-memory database with the schema applied. The
// database is closed when the test ends.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:memdb%d?mode=memory&cache=shared", seq.Add(1))
	db, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(schema)
	require.NoError(t, err)
	return db
}
