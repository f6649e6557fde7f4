package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ai-legal-assistant-be/internal/constant"
	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/repository/contract"
	"ai-legal-assistant-be/pkg/llm"
)

// ErrEmptyModelResponse is returned when the model stream completed but
// produced no text. Treated as a model failure, not a valid answer.
var ErrEmptyModelResponse = errors.New("model returned an empty response")

// IAnalysisService drives one exchange of an active analysis stage: it
// seeds the dialogue context on first use, sends the full history to the
// model, and commits the user and assistant turns together only when the
// model produced a non-empty answer.
type IAnalysisService interface {
	RunStage(ctx context.Context, session *entity.Session, userInput string) (string, error)
	ResetDialogue(ctx context.Context, userID int64) error
}

type analysisService struct {
	dialogueRepo contract.DialogueRepository
	llmProvider  llm.LLMProvider
	publisher    IPublisherService
	logger       logger.ILogger
}

func NewAnalysisService(
	dialogueRepo contract.DialogueRepository,
	llmProvider llm.LLMProvider,
	publisher IPublisherService,
	log logger.ILogger,
) IAnalysisService {
	return &analysisService{
		dialogueRepo: dialogueRepo,
		llmProvider:  llmProvider,
		publisher:    publisher,
		logger:       log,
	}
}

func (as *analysisService) RunStage(ctx context.Context, session *entity.Session, userInput string) (string, error) {
	stage := session.ConversationState.Stage()
	if stage == 0 {
		return "", fmt.Errorf("user %d is not in an analysis stage (state %s)", session.UserId, session.ConversationState)
	}

	history, found, err := as.dialogueRepo.Get(ctx, session.UserId)
	if err != nil {
		return "", fmt.Errorf("load dialogue context: %w", err)
	}
	if !found {
		history = seedHistory(session, stage)
	}

	// The user turn joins the stored history only after the model answers;
	// a failed exchange must leave the context exactly as it was.
	candidate := append(append([]llm.Message{}, history...), llm.Message{
		Role:    llm.RoleUser,
		Content: userInput,
	})

	stream, err := as.llmProvider.ChatStream(ctx, candidate)
	if err != nil {
		return "", fmt.Errorf("start model stream: %w", err)
	}

	answer, err := llm.Collect(stream)
	if err != nil {
		return "", fmt.Errorf("consume model stream: %w", err)
	}
	if strings.TrimSpace(answer) == "" {
		return "", ErrEmptyModelResponse
	}

	committed := append(candidate, llm.Message{
		Role:    llm.RoleAssistant,
		Content: answer,
	})
	if err := as.dialogueRepo.Save(ctx, session.UserId, committed); err != nil {
		return "", fmt.Errorf("save dialogue context: %w", err)
	}

	if err := as.publisher.PublishAnalysisCompleted(ctx, dto.AnalysisCompletedMessage{
		UserID:       session.UserId,
		Stage:        stage,
		InputLength:  len(userInput),
		OutputLength: len(answer),
	}); err != nil {
		// The exchange already succeeded; a lost audit record is not worth
		// failing the user's reply over.
		as.logger.Warn("AnalysisService", "Failed to publish audit message", map[string]interface{}{
			"user_id": session.UserId,
			"error":   err.Error(),
		})
	}

	return answer, nil
}

// ResetDialogue drops the transient context so the next stage (or a case
// resubmission) starts from a fresh seed.
func (as *analysisService) ResetDialogue(ctx context.Context, userID int64) error {
	return as.dialogueRepo.Clear(ctx, userID)
}

// seedHistory builds the initial dialogue for a stage: the stage's system
// prompt, then the persisted case materials as separate prior user turns in
// submission order. Later stages carry everything the earlier stages
// collected.
func seedHistory(session *entity.Session, stage int) []llm.Message {
	var prompt string
	switch stage {
	case 1:
		prompt = constant.SystemPromptStage1
	case 2:
		prompt = constant.SystemPromptStage2
	default:
		prompt = constant.SystemPromptStage3
	}

	history := []llm.Message{{Role: llm.RoleSystem, Content: prompt}}

	if session.CaseText != nil {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: *session.CaseText})
	}
	if stage >= 2 && session.IssuesText != nil {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: *session.IssuesText})
	}
	if stage >= 3 && session.AspectsText != nil {
		history = append(history, llm.Message{Role: llm.RoleUser, Content: *session.AspectsText})
	}

	return history
}
