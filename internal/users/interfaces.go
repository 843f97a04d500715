package users

import (
	"context"

	"github.com/google/uuid"
)

// UserStore defines the interface for user persistence operations
type UserStore interface {
	// Create persists a new user record
	Create(ctx context.Context, user *User) error

	// GetByID returns the active user with the given id, or nil when absent
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)

	// GetByUsername returns the active user with the given username, or nil when absent
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail returns the active user with the given email, or nil when absent
	GetByEmail(ctx context.Context, email string) (*User, error)

	// List returns all active users in store-defined order
	List(ctx context.Context) ([]*User, error)

	// ListByRole returns all active users with the given role, in the same
	// relative order as List
	ListByRole(ctx context.Context, role Role) ([]*User, error)

	// UpdateWithin loads the active user with the given id, applies fn to the
	// freshly read record and writes the result back, all inside one
	// transaction with the row locked. Returns false without calling fn when
	// no active record matched; an error from fn aborts the write.
	UpdateWithin(ctx context.Context, id uuid.UUID, fn func(user *User) error) (bool, error)

	// SoftDelete flags the active user with the given id as deleted. Returns
	// false when no active record matched.
	SoftDelete(ctx context.Context, id uuid.UUID) (bool, error)

	// UsernameInUse reports whether an active user other than excludeID holds
	// the username. Pass uuid.Nil to check against every active record.
	UsernameInUse(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)

	// EmailInUse reports whether an active user other than excludeID holds
	// the email. Pass uuid.Nil to check against every active record.
	EmailInUse(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// UsernameExists reports whether any record, deleted or not, holds the username
	UsernameExists(ctx context.Context, username string) (bool, error)

	// EmailExists reports whether any record, deleted or not, holds the email
	EmailExists(ctx context.Context, email string) (bool, error)
}

// UserService defines the interface for user lifecycle operations
type UserService interface {
	CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	ListUsersByRole(ctx context.Context, role Role) ([]*User, error)
	UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
