// Package migrations embeds the schema of the contact database written by
// the fixture builder.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
