package users

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// UserIndexes holds the index definitions for the users table. The partial
// unique indexes scope username/email uniqueness to non-deleted rows: a
// soft-deleted user's username and email become reusable.
var UserIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_active_idx ON users (username) WHERE NOT is_deleted`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_active_idx ON users (email) WHERE NOT is_deleted`,
	`CREATE INDEX IF NOT EXISTS users_role_idx ON users (role) WHERE NOT is_deleted`,
}

// CreateTables creates the users table if it does not exist
func CreateTables(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*UserSchema)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	return nil
}

// CreateIndexes creates the users table indexes
func CreateIndexes(ctx context.Context, db *bun.DB) error {
	for _, indexSQL := range UserIndexes {
		_, err := db.ExecContext(ctx, indexSQL)
		if err != nil {
			return fmt.Errorf("failed to create index with SQL %q: %w", indexSQL, err)
		}
	}

	return nil
}
