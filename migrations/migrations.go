// Package migrations embeds the versioned SQL schema of every supported database.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
