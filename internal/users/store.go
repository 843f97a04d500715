package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserSchema represents the users table schema in PostgreSQL. Uniqueness of
// username and email among non-deleted rows is enforced by partial unique
// indexes (see migrations.go); they are the backstop when two requests race
// past the application-level checks.
type UserSchema struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username     string    `bun:"username,notnull" json:"username"`
	Email        string    `bun:"email,notnull" json:"email"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	PhoneNumber  *string   `bun:"phone_number" json:"phone_number,omitempty"`
	Role         string    `bun:"role,notnull" json:"role"`
	Status       string    `bun:"status,notnull" json:"status"`
	IsDeleted    bool      `bun:"is_deleted,notnull,default:false" json:"is_deleted"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// PostgresUserStore implements the UserStore interface over bun
type PostgresUserStore struct {
	db *bun.DB
}

// NewPostgresUserStore creates a new PostgreSQL user store
func NewPostgresUserStore(db *bun.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

// Create persists a new user record
func (s *PostgresUserStore) Create(ctx context.Context, user *User) error {
	schema := userToSchema(user)

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().
			Model(schema).
			Exec(ctx)
		return err
	})
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID returns the active user with the given id, or nil when absent
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("id = ?", id).
		Where("is_deleted = FALSE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return schemaToUser(&schema), nil
}

// GetByUsername returns the active user with the given username, or nil when absent
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("username = ?", username).
		Where("is_deleted = FALSE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return schemaToUser(&schema), nil
}

// GetByEmail returns the active user with the given email, or nil when absent
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	var schema UserSchema
	err := s.db.NewSelect().
		Model(&schema).
		Where("email = ?", email).
		Where("is_deleted = FALSE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return schemaToUser(&schema), nil
}

// List returns all active users. No explicit sort is applied; ordering is
// store-defined and stable within a single read.
func (s *PostgresUserStore) List(ctx context.Context) ([]*User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Where("is_deleted = FALSE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return schemasToUsers(schemas), nil
}

// ListByRole returns all active users with the given role
func (s *PostgresUserStore) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	var schemas []UserSchema
	err := s.db.NewSelect().
		Model(&schemas).
		Where("role = ?", string(role)).
		Where("is_deleted = FALSE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	return schemasToUsers(schemas), nil
}

// UpdateWithin loads the active user with the given id, applies fn to the
// freshly read record and writes the result back, all inside one transaction
// with the row locked. Concurrent updates to the same id serialize on the
// lock, so each one merges onto the state the previous one committed.
// Returns false without calling fn when no active record matched; an error
// from fn aborts the write.
func (s *PostgresUserStore) UpdateWithin(ctx context.Context, id uuid.UUID, fn func(user *User) error) (bool, error) {
	var matched bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var schema UserSchema
		err := tx.NewSelect().
			Model(&schema).
			Where("id = ?", id).
			Where("is_deleted = FALSE").
			For("UPDATE").
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}

		user := schemaToUser(&schema)
		if err := fn(user); err != nil {
			return err
		}
		user.UpdatedAt = time.Now()

		_, err = tx.NewUpdate().
			Model(userToSchema(user)).
			Column("username", "email", "password_hash", "phone_number", "role", "status", "updated_at").
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		matched = true
		return nil
	})
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return false, mapped
		}
		var userErr *UserError
		if errors.As(err, &userErr) {
			return false, err
		}
		return false, fmt.Errorf("failed to update user: %w", err)
	}

	return matched, nil
}

// SoftDelete flags the active user with the given id as deleted. The record
// is never physically removed. Returns false when no active record matched,
// so a second delete of the same id reports not found.
func (s *PostgresUserStore) SoftDelete(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now()

	var matched bool
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		result, err := tx.NewUpdate().
			Model((*UserSchema)(nil)).
			Set("is_deleted = TRUE").
			Set("updated_at = ?", now).
			Where("id = ?", id).
			Where("is_deleted = FALSE").
			Exec(ctx)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		matched = rowsAffected > 0
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete user: %w", err)
	}

	return matched, nil
}

// UsernameInUse reports whether an active user other than excludeID holds the username
func (s *PostgresUserStore) UsernameInUse(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	query := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("username = ?", username).
		Where("is_deleted = FALSE")
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	exists, err := query.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// EmailInUse reports whether an active user other than excludeID holds the email
func (s *PostgresUserStore) EmailInUse(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	query := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("email = ?", email).
		Where("is_deleted = FALSE")
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	exists, err := query.Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// UsernameExists reports whether any record, deleted or not, holds the
// username. Deliberately not filtered by is_deleted.
func (s *PostgresUserStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("username = ?", username).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

// EmailExists reports whether any record, deleted or not, holds the email.
// Deliberately not filtered by is_deleted.
func (s *PostgresUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	exists, err := s.db.NewSelect().
		Model((*UserSchema)(nil)).
		Where("email = ?", email).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

// mapConstraintError translates a partial-unique-index violation into the
// matching domain error, or returns nil for anything else.
func mapConstraintError(err error) error {
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value violates unique constraint") {
		return nil
	}
	if strings.Contains(msg, "users_username_active_idx") {
		return NewUsernameExistsError()
	}
	if strings.Contains(msg, "users_email_active_idx") {
		return NewEmailExistsError()
	}
	return nil
}

// Helper conversion functions

func userToSchema(user *User) *UserSchema {
	return &UserSchema{
		ID:           user.ID,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		PhoneNumber:  user.PhoneNumber,
		Role:         string(user.Role),
		Status:       string(user.Status),
		IsDeleted:    user.IsDeleted,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}
}

func schemaToUser(schema *UserSchema) *User {
	return &User{
		ID:           schema.ID,
		Username:     schema.Username,
		Email:        schema.Email,
		PasswordHash: schema.PasswordHash,
		PhoneNumber:  schema.PhoneNumber,
		Role:         Role(schema.Role),
		Status:       Status(schema.Status),
		IsDeleted:    schema.IsDeleted,
		CreatedAt:    schema.CreatedAt,
		UpdatedAt:    schema.UpdatedAt,
	}
}

func schemasToUsers(schemas []UserSchema) []*User {
	out := make([]*User, len(schemas))
	for i := range schemas {
		out[i] = schemaToUser(&schemas[i])
	}
	return out
}
