package contract

import (
	"context"

	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/repository/specification"
)

// SessionRepository is the session store adapter consumed by the state
// machine. Every call may fail (storage unavailable); callers degrade to an
// error response and leave the previous persisted state authoritative.
type SessionRepository interface {
	Exists(ctx context.Context, userID int64) (bool, error)
	Create(ctx context.Context, session *entity.Session) error
	// Update persists the full session row, including nil-ing out cleared
	// fields (email, verification code, case materials).
	Update(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, userID int64) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
