// Package migrations embeds the SQL schema for the records API.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
