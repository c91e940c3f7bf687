// Package migrations embeds the numbered schema scripts of the pubminer store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql scripts.
//
//go:embed *.sql
var FS embed.FS
