package entity

import (
	"fmt"
	"time"
)

// ConversationState is the closed set of per-user states. Values are stored
// as text, but every read goes through ParseConversationState so an
// unrecognized value surfaces as a corrupted-state error instead of being
// coerced into a valid state.
type ConversationState string

const (
	StateStarted         ConversationState = "STARTED"
	StateAwaitingEmail   ConversationState = "AWAITING_EMAIL"
	StateAwaitingCode    ConversationState = "AWAITING_VERIFICATION_CODE"
	StateVerified        ConversationState = "VERIFIED"
	StateAwaitingCase    ConversationState = "AWAITING_CASE"
	StateStage1          ConversationState = "STAGE_1"
	StateAwaitingIssues  ConversationState = "AWAITING_ISSUES"
	StateStage2          ConversationState = "STAGE_2"
	StateAwaitingAspects ConversationState = "AWAITING_ASPECTS"
	StateStage3          ConversationState = "STAGE_3"
)

// ErrCorruptedState marks a persisted conversation_state value outside the
// closed set. Fatal for that user's session only; never auto-recovered.
type ErrCorruptedState struct {
	UserID int64
	Raw    string
}

func (e *ErrCorruptedState) Error() string {
	return fmt.Sprintf("corrupted conversation state %q for user %d", e.Raw, e.UserID)
}

var allStates = map[ConversationState]struct{}{
	StateStarted:         {},
	StateAwaitingEmail:   {},
	StateAwaitingCode:    {},
	StateVerified:        {},
	StateAwaitingCase:    {},
	StateStage1:          {},
	StateAwaitingIssues:  {},
	StateStage2:          {},
	StateAwaitingAspects: {},
	StateStage3:          {},
}

func ParseConversationState(userID int64, raw string) (ConversationState, error) {
	s := ConversationState(raw)
	if _, ok := allStates[s]; !ok {
		return "", &ErrCorruptedState{UserID: userID, Raw: raw}
	}
	return s, nil
}

func (s ConversationState) Valid() bool {
	_, ok := allStates[s]
	return ok
}

// Stage returns 1..3 for the analysis states and 0 otherwise.
func (s ConversationState) Stage() int {
	switch s {
	case StateStage1:
		return 1
	case StateStage2:
		return 2
	case StateStage3:
		return 3
	default:
		return 0
	}
}

// Registration reports whether the state belongs to the registration flow,
// where the Cancel callback is allowed to reset everything back to STARTED.
func (s ConversationState) Registration() bool {
	switch s {
	case StateStarted, StateAwaitingEmail, StateAwaitingCode:
		return true
	default:
		return false
	}
}

// Session is the durable per-user record of registration and case-analysis
// progress. UserId is the stable external identifier from the chat transport.
type Session struct {
	UserId            int64
	Email             *string
	VerificationCode  *string
	ConversationState ConversationState
	CaseText          *string
	IssuesText        *string
	AspectsText       *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClearRegistration wipes everything the cancel transition must clear.
func (s *Session) ClearRegistration() {
	s.Email = nil
	s.VerificationCode = nil
	s.CaseText = nil
	s.IssuesText = nil
	s.AspectsText = nil
	s.ConversationState = StateStarted
}
