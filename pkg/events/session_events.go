package events

import (
	"time"

	"github.com/google/uuid"
)

// Session lifecycle event types published to the bus for external
// consumers (analytics, moderation). Nothing in this process subscribes.
const (
	TypeSessionCreated  = "session.created"
	TypeSessionVerified = "session.verified"
	TypeStageAdvanced   = "session.stage_advanced"
	TypeSessionDeleted  = "session.deleted"
)

func NewSessionCreated(userID int64) Event {
	return BaseEvent{
		Type:       TypeSessionCreated,
		Data:       map[string]interface{}{"event_id": uuid.NewString(), "user_id": userID},
		OccurredAt: time.Now(),
	}
}

func NewSessionVerified(userID int64, email string) Event {
	return BaseEvent{
		Type:       TypeSessionVerified,
		Data:       map[string]interface{}{"event_id": uuid.NewString(), "user_id": userID, "email": email},
		OccurredAt: time.Now(),
	}
}

func NewStageAdvanced(userID int64, state string) Event {
	return BaseEvent{
		Type:       TypeStageAdvanced,
		Data:       map[string]interface{}{"event_id": uuid.NewString(), "user_id": userID, "state": state},
		OccurredAt: time.Now(),
	}
}

func NewSessionDeleted(userID int64) Event {
	return BaseEvent{
		Type:       TypeSessionDeleted,
		Data:       map[string]interface{}{"event_id": uuid.NewString(), "user_id": userID},
		OccurredAt: time.Now(),
	}
}
