// Package migrations embeds the goose SQL migrations so the server can apply
// them at startup and tests can migrate a scratch database.
package migrations

import "embed"

// FS holds the *.sql migrations in version order.
//
//go:embed *.sql
var FS embed.FS
