// Package migrations embeds the remote schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
