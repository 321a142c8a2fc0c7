// Package migrations contains the embedded goose migrations, one directory
// per SQL dialect. Both directories must describe the same schema.
package migrations

import "embed"

//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
