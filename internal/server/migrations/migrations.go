// Package migrations embeds the goose migrations of the collector's
// PostgreSQL receipt ledger.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
