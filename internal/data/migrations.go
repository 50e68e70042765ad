package data

import (
	"context"
	"database/sql"

	"github.com/vanvan/vanvan-auth/internal/migrate"
)

// RunMigrations executes database migrations to set up the identity schema by delegating to the migrate package.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return ErrDBRequired
	}
	return migrate.Run(ctx, db)
}
