// Package migrations embeds the goose SQL migrations of the build ledger.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
