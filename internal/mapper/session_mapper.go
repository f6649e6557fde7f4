package mapper

import (
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

// ToEntity maps the persistence row into the domain entity. The raw state
// string is copied as-is; callers validate it via ParseConversationState so
// a corrupted value is detected at the dispatch site, not silently here.
func (m *SessionMapper) ToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		UserId:            s.UserId,
		Email:             s.Email,
		VerificationCode:  s.VerificationCode,
		ConversationState: entity.ConversationState(s.ConversationState),
		CaseText:          s.CaseText,
		IssuesText:        s.IssuesText,
		AspectsText:       s.AspectsText,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		UserId:            s.UserId,
		Email:             s.Email,
		VerificationCode:  s.VerificationCode,
		ConversationState: string(s.ConversationState),
		CaseText:          s.CaseText,
		IssuesText:        s.IssuesText,
		AspectsText:       s.AspectsText,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SessionMapper) ToEntities(sessions []*model.Session) []*entity.Session {
	entities := make([]*entity.Session, len(sessions))
	for i, s := range sessions {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
