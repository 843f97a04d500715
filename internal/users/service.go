package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/corebank/userservice/internal/audit"
)

// Service implements the UserService interface, orchestrating validation,
// persistence and audit notification for the user lifecycle.
type Service struct {
	store    UserStore
	notifier audit.Notifier
	logger   *zap.Logger
}

// NewService creates a new user service
func NewService(store UserStore, notifier audit.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateUser creates a new user. Username uniqueness is checked before email,
// so a request violating both reports the username conflict. Both checks are
// scoped to non-deleted records; the partial unique indexes are the backstop
// when two creates race.
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	inUse, err := s.store.UsernameInUse(ctx, req.Username, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if inUse {
		return nil, NewUsernameExistsError()
	}

	inUse, err = s.store.EmailInUse(ctx, req.Email, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if inUse {
		return nil, NewEmailExistsError()
	}

	user := NewUserFromRequest(req)
	user.ID = uuid.New()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash

	if err := s.store.Create(ctx, user); err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	// Best-effort: the notifier never returns an error and must never block
	// or fail the create.
	s.notifier.UserCreated(ctx, user.ID, user.Username, string(user.Role))

	return user, nil
}

// GetUserByID returns the active user with the given id
func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewUserNotFoundError("id", id)
	}
	return user, nil
}

// GetUserByUsername returns the active user with the given username
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewUserNotFoundError("username", username)
	}
	return user, nil
}

// GetUserByEmail returns the active user with the given email
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NewUserNotFoundError("email", email)
	}
	return user, nil
}

// ListUsers returns all active users
func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.store.List(ctx)
}

// ListUsersByRole returns all active users with the given role, in the same
// relative order as ListUsers
func (s *Service) ListUsersByRole(ctx context.Context, role Role) ([]*User, error) {
	if !role.IsValid() {
		return nil, NewInvalidRequestError(fmt.Sprintf("Invalid role: %s", role))
	}
	return s.store.ListByRole(ctx, role)
}

// UpdateUser applies a partial update to the active user with the given id.
// The read, uniqueness checks, merge and write all run inside one store
// transaction with the row locked, so a concurrent update to the same id
// merges onto the committed state instead of overwriting it. Only present
// fields are touched. Username and email changes re-run the uniqueness check
// excluding the user's own record, so updating a field to its current value
// never self-conflicts.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, req *UpdateUserRequest) (*User, error) {
	var (
		updated       *User
		statusChanged bool
		roleChanged   bool
	)

	matched, err := s.store.UpdateWithin(ctx, id, func(user *User) error {
		if req.Username != nil && *req.Username != user.Username {
			inUse, err := s.store.UsernameInUse(ctx, *req.Username, user.ID)
			if err != nil {
				return fmt.Errorf("failed to check username: %w", err)
			}
			if inUse {
				return NewUsernameExistsError()
			}
		}

		if req.Email != nil && *req.Email != user.Email {
			inUse, err := s.store.EmailInUse(ctx, *req.Email, user.ID)
			if err != nil {
				return fmt.Errorf("failed to check email: %w", err)
			}
			if inUse {
				return NewEmailExistsError()
			}
		}

		statusChanged = req.Status != nil && *req.Status != user.Status
		roleChanged = req.Role != nil && *req.Role != user.Role

		if req.Password != nil {
			hash, err := HashPassword(*req.Password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = hash
		}

		ApplyUpdate(req, user)
		updated = user
		return nil
	})
	if err != nil {
		var userErr *UserError
		if errors.As(err, &userErr) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if !matched {
		return nil, NewUserNotFoundError("id", id)
	}

	s.logger.Info("User updated",
		zap.String("user_id", updated.ID.String()),
		zap.String("username", updated.Username))

	s.notifier.UserUpdated(ctx, updated.ID, updated.Username)
	if statusChanged {
		s.notifier.UserStatusChanged(ctx, updated.ID, updated.Username, string(updated.Status))
	}
	if roleChanged {
		s.notifier.UserRoleChanged(ctx, updated.ID, updated.Username, string(updated.Role))
	}

	return updated, nil
}

// DeleteUser soft-deletes the active user with the given id. The transition
// is one-way: a second delete of the same id reports not found because the
// record is no longer visible to active lookups.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	user, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return NewUserNotFoundError("id", id)
	}

	matched, err := s.store.SoftDelete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !matched {
		return NewUserNotFoundError("id", id)
	}

	s.logger.Info("User deleted",
		zap.String("user_id", id.String()),
		zap.String("username", user.Username))

	s.notifier.UserDeleted(ctx, id, user.Username)

	return nil
}

// ExistsByUsername reports whether any record, deleted or not, holds the
// username. Unlike the uniqueness checks at create/update time this does NOT
// filter soft-deleted records; the asymmetry matches the upstream contract
// and exposes historical identity reservation.
func (s *Service) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return s.store.UsernameExists(ctx, username)
}

// ExistsByEmail reports whether any record, deleted or not, holds the email.
// Same deletion-scope quirk as ExistsByUsername.
func (s *Service) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.store.EmailExists(ctx, email)
}
