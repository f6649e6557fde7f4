package contract

import (
	"context"

	"ai-legal-assistant-be/pkg/llm"
)

// DialogueRepository owns the transient ordered turn history used while an
// analysis stage is active. Implementations must treat each user's history
// as owned by that user's event stream; the service layer serializes access
// per user, so no additional locking is required here beyond what the
// backing store needs for map safety.
type DialogueRepository interface {
	// Get returns the stored turns for the user, or (nil, false, nil) when
	// no context exists yet.
	Get(ctx context.Context, userID int64) ([]llm.Message, bool, error)
	Save(ctx context.Context, userID int64, turns []llm.Message) error
	Clear(ctx context.Context, userID int64) error
}
