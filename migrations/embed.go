// Package migrations embeds the SQL schema migrations into the binary
// and registers them with the database layer.
package migrations

import (
	"embed"

	"github.com/mulsemedia/sensory-core/internal/infrastructure/database"
)

//go:embed *.sql
var files embed.FS

func init() {
	database.MigrationsFS = files
	database.MigrationsDir = "."
}
