// Package migrations embeds the SQL schema migrations so the binary is
// self-contained.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
