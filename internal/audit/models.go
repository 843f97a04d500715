package audit

import (
	"github.com/google/uuid"
)

// Action types reported to the audit collector
const (
	ActionCreate = "CREATE"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionLogin  = "LOGIN"
)

// Entity types reported to the audit collector
const (
	EntityUser       = "USER"
	EntityUserStatus = "USER_STATUS"
	EntityUserRole   = "USER_ROLE"
)

// Event is the wire shape of one audit record POSTed to the collector
type Event struct {
	UserID      uuid.UUID `json:"userId"`
	ActionType  string    `json:"actionType"`
	EntityType  string    `json:"entityType"`
	EntityID    string    `json:"entityId"`
	Description string    `json:"description"`
}
