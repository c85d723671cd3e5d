// Package migrations embeds the MySQL schema files.
package migrations

import "embed"

// FS holds the *.sql files, applied in name order.
//
//go:embed *.sql
var FS embed.FS
