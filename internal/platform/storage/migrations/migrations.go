// Package migrations embeds the schema for both SQL engines. Each directory
// holds the same logical layout.
package migrations

import "embed"

//go:embed postgres/*.sql
var Postgres embed.FS

//go:embed sqlite/*.sql
var SQLite embed.FS
