// Package migrations embeds the goose SQL migrations so binaries can apply
// them without a deploy-time file copy.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
