package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier reports user lifecycle events to an external audit collector.
// Delivery is strictly best-effort: no method returns an error, and a failed
// notification never affects the operation that triggered it.
type Notifier interface {
	UserCreated(ctx context.Context, userID uuid.UUID, username string, role string)
	UserUpdated(ctx context.Context, userID uuid.UUID, username string)
	UserDeleted(ctx context.Context, userID uuid.UUID, username string)
	UserStatusChanged(ctx context.Context, userID uuid.UUID, username string, newStatus string)
	UserRoleChanged(ctx context.Context, userID uuid.UUID, username string, newRole string)
	UserLoggedIn(ctx context.Context, userID uuid.UUID, username string)
}

// HTTPNotifier implements Notifier by POSTing JSON events to a configured endpoint
type HTTPNotifier struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPNotifier creates a notifier targeting the given collector URL
func NewHTTPNotifier(url string, timeout time.Duration, logger *zap.Logger) *HTTPNotifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNotifier{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// UserCreated reports a user creation
func (n *HTTPNotifier) UserCreated(ctx context.Context, userID uuid.UUID, username string, role string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionCreate,
		EntityType:  EntityUser,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User created: %s with role %s", username, role),
	})
}

// UserUpdated reports a user update
func (n *HTTPNotifier) UserUpdated(ctx context.Context, userID uuid.UUID, username string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionUpdate,
		EntityType:  EntityUser,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User updated: %s", username),
	})
}

// UserDeleted reports a user soft deletion
func (n *HTTPNotifier) UserDeleted(ctx context.Context, userID uuid.UUID, username string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionDelete,
		EntityType:  EntityUser,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User deleted: %s", username),
	})
}

// UserStatusChanged reports a status transition
func (n *HTTPNotifier) UserStatusChanged(ctx context.Context, userID uuid.UUID, username string, newStatus string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionUpdate,
		EntityType:  EntityUserStatus,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User status changed: %s to %s", username, newStatus),
	})
}

// UserRoleChanged reports a role transition
func (n *HTTPNotifier) UserRoleChanged(ctx context.Context, userID uuid.UUID, username string, newRole string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionUpdate,
		EntityType:  EntityUserRole,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User role changed: %s to %s", username, newRole),
	})
}

// UserLoggedIn reports a login event
func (n *HTTPNotifier) UserLoggedIn(ctx context.Context, userID uuid.UUID, username string) {
	n.send(ctx, Event{
		UserID:      userID,
		ActionType:  ActionLogin,
		EntityType:  EntityUser,
		EntityID:    userID.String(),
		Description: fmt.Sprintf("User logged in: %s", username),
	})
}

// send delivers one event. Transport and serialization failures are logged
// and swallowed; they must never reach the caller.
func (n *HTTPNotifier) send(ctx context.Context, event Event) {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to encode audit event", zap.Error(err))
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.logger.Error("Failed to build audit request", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		n.logger.Error("Error sending audit log",
			zap.String("action_type", event.ActionType),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Error("Audit collector rejected event",
			zap.Int("status", resp.StatusCode),
			zap.String("action_type", event.ActionType),
			zap.String("entity_id", event.EntityID))
		return
	}

	n.logger.Debug("Audit log sent successfully",
		zap.String("action_type", event.ActionType),
		zap.String("entity_id", event.EntityID))
}

// NopNotifier discards every event. Used when no collector is configured and
// in tests.
type NopNotifier struct{}

// NewNopNotifier creates a notifier that discards events
func NewNopNotifier() *NopNotifier {
	return &NopNotifier{}
}

func (NopNotifier) UserCreated(context.Context, uuid.UUID, string, string)       {}
func (NopNotifier) UserUpdated(context.Context, uuid.UUID, string)               {}
func (NopNotifier) UserDeleted(context.Context, uuid.UUID, string)               {}
func (NopNotifier) UserStatusChanged(context.Context, uuid.UUID, string, string) {}
func (NopNotifier) UserRoleChanged(context.Context, uuid.UUID, string, string)   {}
func (NopNotifier) UserLoggedIn(context.Context, uuid.UUID, string)              {}
