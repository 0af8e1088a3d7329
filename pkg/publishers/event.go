package publishers

import (
	"strconv"
	"time"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
)

// Event types emitted by the users API.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserPatched = "user.patched"
	EventUserDeleted = "user.deleted"
	EventUsersReset  = "users.reset"
)

// EventTypes lists every event a publisher can subscribe to.
var EventTypes = []string{EventUserCreated, EventUserUpdated, EventUserPatched, EventUserDeleted, EventUsersReset}

// Event represents the payload published downstream.
type Event struct {
	Type       string       `json:"type"`
	UserID     int          `json:"user_id,omitempty"`
	User       *domain.User `json:"user,omitempty"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// NewUserEvent constructs an Event describing a change to user.
func NewUserEvent(typ string, user domain.User) Event {
	return Event{
		Type:       typ,
		UserID:     user.ID,
		User:       &user,
		OccurredAt: time.Now().UTC(),
	}
}

// NewDeletedEvent constructs the event emitted when a user is soft-deleted.
func NewDeletedEvent(id int) Event {
	return Event{Type: EventUserDeleted, UserID: id, OccurredAt: time.Now().UTC()}
}

// NewResetEvent constructs the event emitted when fixtures are restored.
func NewResetEvent() Event {
	return Event{Type: EventUsersReset, OccurredAt: time.Now().UTC()}
}

// attributes are attached to queue and topic messages so subscribers can filter without decoding.
func (e Event) attributes() map[string]string {
	attrs := map[string]string{"event_type": e.Type}
	if e.UserID > 0 {
		attrs["user_id"] = strconv.Itoa(e.UserID)
	}
	return attrs
}
