// Package migrations embeds the versioned SQL schema for the stocks and sales tables.
package migrations

import "embed"

// FS holds the *.up.sql / *.down.sql files in golang-migrate naming.
//
//go:embed *.sql
var FS embed.FS
