package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-legal-assistant-be/internal/constant"
	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/pkg/locker"
	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/pkg/mailer"
	"ai-legal-assistant-be/internal/repository/specification"
	"ai-legal-assistant-be/internal/repository/unitofwork"
	"ai-legal-assistant-be/pkg/codegen"
	"ai-legal-assistant-be/pkg/events"
	"ai-legal-assistant-be/pkg/extract"
	pktNats "ai-legal-assistant-be/pkg/nats"
)

// ErrAnalysisFailed tags model failures so the transports can reply with a
// retryable message instead of a storage error.
var ErrAnalysisFailed = errors.New("analysis failed")

// IConversationService applies one chat event against the user's persisted
// state and returns the reply. Events from the same user are serialized;
// everything validation or a guard rejects leaves the stored state untouched.
type IConversationService interface {
	HandleEvent(ctx context.Context, event *dto.ChatEvent) (*dto.ChatReply, error)
}

type conversationService struct {
	uowFactory      unitofwork.RepositoryFactory
	analysisService IAnalysisService
	emailService    mailer.IEmailService
	codeGenerator   *codegen.Generator
	extractor       *extract.Extractor
	locks           *locker.KeyedLocker
	natsPub         *pktNats.Publisher
	logger          logger.ILogger
	allowedDomains  []string
}

func NewConversationService(
	uowFactory unitofwork.RepositoryFactory,
	analysisService IAnalysisService,
	emailService mailer.IEmailService,
	codeGenerator *codegen.Generator,
	extractor *extract.Extractor,
	natsPub *pktNats.Publisher,
	log logger.ILogger,
	allowedDomains []string,
) IConversationService {
	return &conversationService{
		uowFactory:      uowFactory,
		analysisService: analysisService,
		emailService:    emailService,
		codeGenerator:   codeGenerator,
		extractor:       extractor,
		locks:           locker.New(),
		natsPub:         natsPub,
		logger:          log,
		allowedDomains:  allowedDomains,
	}
}

// stateRank orders the states along the registration-then-analysis flow so
// guards can ask "has the user reached X yet".
var stateRank = map[entity.ConversationState]int{
	entity.StateStarted:         0,
	entity.StateAwaitingEmail:   1,
	entity.StateAwaitingCode:    2,
	entity.StateVerified:        3,
	entity.StateAwaitingCase:    4,
	entity.StateStage1:          5,
	entity.StateAwaitingIssues:  6,
	entity.StateStage2:          7,
	entity.StateAwaitingAspects: 8,
	entity.StateStage3:          9,
}

func reached(state, target entity.ConversationState) bool {
	return stateRank[state] >= stateRank[target]
}

var (
	choiceRegister = dto.Choice{Label: constant.ChoiceRegister, Data: constant.CallbackRegister}
	choiceCancel   = dto.Choice{Label: constant.ChoiceCancel, Data: constant.CallbackCancelRegistration}
	choiceResend   = dto.Choice{Label: constant.ChoiceResend, Data: constant.CallbackResendVerification}
	choiceStage1   = dto.Choice{Label: constant.ChoiceStage1, Data: constant.CallbackStartStage1}
	choiceStage2   = dto.Choice{Label: constant.ChoiceStage2, Data: constant.CallbackStartStage2}
	choiceStage3   = dto.Choice{Label: constant.ChoiceStage3, Data: constant.CallbackStartStage3}
)

func (cs *conversationService) HandleEvent(ctx context.Context, event *dto.ChatEvent) (*dto.ChatReply, error) {
	cs.locks.Lock(event.UserID)
	defer cs.locks.Unlock(event.UserID)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sess, err := uow.SessionRepository().FindOne(ctx, specification.ByUserID{UserID: event.UserID})
	if err != nil {
		return nil, fmt.Errorf("load session for user %d: %w", event.UserID, err)
	}

	if sess == nil {
		return cs.handleNoSession(ctx, uow, event)
	}

	// Re-validate on every read. A value outside the closed set is fatal
	// for this user's session and is never coerced into a valid state.
	state, err := entity.ParseConversationState(sess.UserId, string(sess.ConversationState))
	if err != nil {
		return nil, err
	}
	sess.ConversationState = state

	switch event.Kind {
	case dto.EventKindCommand:
		return cs.handleCommand(ctx, uow, sess, event)
	case dto.EventKindCallback:
		return cs.handleCallback(ctx, uow, sess, event)
	case dto.EventKindText:
		return cs.handleText(ctx, uow, sess, event)
	case dto.EventKindDocument:
		return cs.handleDocument(ctx, uow, sess, event)
	default:
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}
}

// handleNoSession covers the only transitions available before a session
// row exists: /start creates one, /delete is a no-op, everything else points
// the user at /start.
func (cs *conversationService) handleNoSession(ctx context.Context, uow unitofwork.UnitOfWork, event *dto.ChatEvent) (*dto.ChatReply, error) {
	switch {
	case event.Kind == dto.EventKindCommand && event.Payload == constant.CommandStart:
		now := time.Now()
		sess := &entity.Session{
			UserId:            event.UserID,
			ConversationState: entity.StateStarted,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := cs.createSession(ctx, uow, sess); err != nil {
			return nil, err
		}
		cs.publishEvent(ctx, events.NewSessionCreated(event.UserID))
		return cs.reply(event, constant.ReplyWelcomeRegister, choiceRegister), nil

	case event.Kind == dto.EventKindCommand && event.Payload == constant.CommandDelete:
		return cs.reply(event, constant.ReplyDeleted), nil

	default:
		return cs.reply(event, constant.ReplyUseStartFirst), nil
	}
}

func (cs *conversationService) handleCommand(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	switch event.Payload {
	case constant.CommandStart:
		return cs.startForState(event, sess), nil
	case constant.CommandMenu:
		return cs.menuForState(event, sess), nil
	case constant.CommandDelete:
		return cs.deleteSession(ctx, uow, sess, event)
	default:
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}
}

// startForState makes /start safe to repeat: it re-prompts for whatever the
// current state is waiting on instead of restarting the flow.
func (cs *conversationService) startForState(event *dto.ChatEvent, sess *entity.Session) *dto.ChatReply {
	switch sess.ConversationState {
	case entity.StateStarted:
		return cs.reply(event, constant.ReplyAlreadyStarted, choiceRegister)
	case entity.StateAwaitingEmail:
		return cs.reply(event, constant.ReplyAskEmail, choiceCancel)
	case entity.StateAwaitingCode:
		return cs.reply(event, constant.ReplyAskCode, choiceResend, choiceCancel)
	default:
		return cs.reply(event, constant.ReplyVerifiedHint)
	}
}

// menuForState lists only the stages the user can legally enter from the
// current state.
func (cs *conversationService) menuForState(event *dto.ChatEvent, sess *entity.Session) *dto.ChatReply {
	state := sess.ConversationState
	if state.Registration() {
		if state == entity.StateStarted {
			return cs.reply(event, constant.ReplyFinishSignup, choiceRegister)
		}
		return cs.reply(event, constant.ReplyFinishSignup)
	}

	choices := []dto.Choice{choiceStage1}
	if reached(state, entity.StateStage1) {
		choices = append(choices, choiceStage2)
	}
	if reached(state, entity.StateStage2) {
		choices = append(choices, choiceStage3)
	}
	return cs.reply(event, constant.ReplyChooseOption, choices...)
}

func (cs *conversationService) deleteSession(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin delete for user %d: %w", sess.UserId, err)
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().Delete(ctx, sess.UserId); err != nil {
		return nil, fmt.Errorf("delete session for user %d: %w", sess.UserId, err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete for user %d: %w", sess.UserId, err)
	}

	if err := cs.analysisService.ResetDialogue(ctx, sess.UserId); err != nil {
		cs.logger.Warn("ConversationService", "Failed to clear dialogue on delete", map[string]interface{}{
			"user_id": sess.UserId,
			"error":   err.Error(),
		})
	}

	cs.publishEvent(ctx, events.NewSessionDeleted(sess.UserId))
	return cs.reply(event, constant.ReplyDeleted), nil
}

func (cs *conversationService) handleCallback(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	switch event.Payload {
	case constant.CallbackRegister:
		return cs.register(ctx, uow, sess, event)
	case constant.CallbackCancelRegistration:
		return cs.cancelRegistration(ctx, uow, sess, event)
	case constant.CallbackResendVerification:
		return cs.resendVerification(ctx, uow, sess, event)
	case constant.CallbackStartStage1:
		return cs.startStage(ctx, uow, sess, event, 1)
	case constant.CallbackStartStage2:
		return cs.startStage(ctx, uow, sess, event, 2)
	case constant.CallbackStartStage3:
		return cs.startStage(ctx, uow, sess, event, 3)
	default:
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}
}

func (cs *conversationService) register(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	switch sess.ConversationState {
	case entity.StateStarted:
		sess.ConversationState = entity.StateAwaitingEmail
		if err := cs.saveSession(ctx, uow, sess); err != nil {
			return nil, err
		}
		return cs.reply(event, constant.ReplyAskEmail, choiceCancel), nil
	case entity.StateAwaitingEmail:
		return cs.reply(event, constant.ReplyAskEmail, choiceCancel), nil
	case entity.StateAwaitingCode:
		return cs.reply(event, constant.ReplyAskCode, choiceResend, choiceCancel), nil
	default:
		return cs.reply(event, constant.ReplyAlreadyVerified), nil
	}
}

// cancelRegistration aborts an in-flight registration and wipes everything
// collected so far. Once verified it is a no-op.
func (cs *conversationService) cancelRegistration(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	if !sess.ConversationState.Registration() {
		return cs.reply(event, constant.ReplyAlreadyVerified), nil
	}

	sess.ClearRegistration()
	if err := cs.saveSession(ctx, uow, sess); err != nil {
		return nil, err
	}
	if err := cs.analysisService.ResetDialogue(ctx, sess.UserId); err != nil {
		cs.logger.Warn("ConversationService", "Failed to clear dialogue on cancel", map[string]interface{}{
			"user_id": sess.UserId,
			"error":   err.Error(),
		})
	}
	return cs.reply(event, constant.ReplyCancelled, choiceRegister), nil
}

// resendVerification regenerates the code before sending, so a stale email
// can never verify. Harmless once verified.
func (cs *conversationService) resendVerification(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	switch sess.ConversationState {
	case entity.StateAwaitingCode:
		if sess.Email == nil {
			return nil, fmt.Errorf("user %d awaiting code without an email on record", sess.UserId)
		}

		code, err := cs.codeGenerator.Generate()
		if err != nil {
			return nil, err
		}
		sess.VerificationCode = &code
		if err := cs.saveSession(ctx, uow, sess); err != nil {
			return nil, err
		}

		if err := cs.emailService.SendVerificationCode(*sess.Email, code); err != nil {
			cs.logger.Error("ConversationService", "Failed to resend verification email", map[string]interface{}{
				"user_id": sess.UserId,
				"error":   err.Error(),
			})
			return cs.reply(event, constant.ReplyMailFailed, choiceResend), nil
		}

		text := fmt.Sprintf(constant.ReplyCodeResent, *sess.Email, time.Now().Format("15:04:05"))
		return cs.reply(event, text, choiceResend, choiceCancel), nil

	case entity.StateStarted, entity.StateAwaitingEmail:
		return cs.reply(event, constant.ReplyFinishSignup), nil

	default:
		return cs.reply(event, constant.ReplyAlreadyVerified), nil
	}
}

// startStage begins (or deliberately restarts) a stage. Entering a stage the
// user already passed is a resubmission: the assistant asks for that stage's
// input again and the dialogue context is dropped.
func (cs *conversationService) startStage(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent, stage int) (*dto.ChatReply, error) {
	if sess.ConversationState.Registration() {
		return cs.reply(event, constant.ReplyFinishSignup), nil
	}

	var target entity.ConversationState
	var text string
	switch stage {
	case 1:
		target = entity.StateAwaitingCase
		text = constant.ReplyAskCase
	case 2:
		if !reached(sess.ConversationState, entity.StateStage1) {
			return cs.reply(event, constant.ReplyNeedStage1First), nil
		}
		target = entity.StateAwaitingIssues
		text = constant.ReplyAskIssues
	case 3:
		if !reached(sess.ConversationState, entity.StateStage2) {
			return cs.reply(event, constant.ReplyNeedStage2First), nil
		}
		target = entity.StateAwaitingAspects
		text = constant.ReplyAskAspects
	default:
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}

	sess.ConversationState = target
	if err := cs.saveSession(ctx, uow, sess); err != nil {
		return nil, err
	}
	if err := cs.analysisService.ResetDialogue(ctx, sess.UserId); err != nil {
		cs.logger.Warn("ConversationService", "Failed to clear dialogue on stage start", map[string]interface{}{
			"user_id": sess.UserId,
			"error":   err.Error(),
		})
	}

	cs.publishEvent(ctx, events.NewStageAdvanced(sess.UserId, string(target)))
	return cs.reply(event, text), nil
}

func (cs *conversationService) handleText(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	text := strings.TrimSpace(event.Payload)
	if text == "" {
		// Rejected before any state change or model call.
		return cs.reply(event, constant.ReplyEmptyMessage), nil
	}

	switch sess.ConversationState {
	case entity.StateStarted:
		return cs.reply(event, constant.ReplyAlreadyStarted, choiceRegister), nil

	case entity.StateAwaitingEmail:
		return cs.acceptEmail(ctx, uow, sess, event, text)

	case entity.StateAwaitingCode:
		return cs.acceptCode(ctx, uow, sess, event, text)

	case entity.StateVerified:
		return cs.reply(event, fmt.Sprintf(constant.ReplyStartStageFirst, 1)), nil

	case entity.StateAwaitingCase:
		return cs.acceptCase(ctx, uow, sess, event, text)

	case entity.StateAwaitingIssues:
		// New issues invalidate aspects derived from the old ones.
		sess.IssuesText = &text
		sess.AspectsText = nil
		sess.ConversationState = entity.StateStage2
		if err := cs.saveSession(ctx, uow, sess); err != nil {
			return nil, err
		}
		cs.publishEvent(ctx, events.NewStageAdvanced(sess.UserId, string(entity.StateStage2)))
		return cs.reply(event, constant.ReplyIssuesReceived, choiceStage3), nil

	case entity.StateAwaitingAspects:
		sess.AspectsText = &text
		sess.ConversationState = entity.StateStage3
		if err := cs.saveSession(ctx, uow, sess); err != nil {
			return nil, err
		}
		cs.publishEvent(ctx, events.NewStageAdvanced(sess.UserId, string(entity.StateStage3)))
		return cs.reply(event, constant.ReplyAspectsReceived), nil

	case entity.StateStage1, entity.StateStage2, entity.StateStage3:
		answer, err := cs.analysisService.RunStage(ctx, sess, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
		}
		return cs.reply(event, answer), nil

	default:
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}
}

func (cs *conversationService) acceptEmail(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent, text string) (*dto.ChatReply, error) {
	email := strings.ToLower(text)
	if !cs.emailAllowed(email) {
		return cs.reply(event, constant.ReplyInvalidEmail, choiceCancel), nil
	}

	code, err := cs.codeGenerator.Generate()
	if err != nil {
		return nil, err
	}

	sess.Email = &email
	sess.VerificationCode = &code
	sess.ConversationState = entity.StateAwaitingCode
	if err := cs.saveSession(ctx, uow, sess); err != nil {
		return nil, err
	}

	// Email and code are already durable, so a mail failure still leaves
	// the user one resend away from a working code.
	if err := cs.emailService.SendVerificationCode(email, code); err != nil {
		cs.logger.Error("ConversationService", "Failed to send verification email", map[string]interface{}{
			"user_id": sess.UserId,
			"error":   err.Error(),
		})
		return cs.reply(event, constant.ReplyMailFailed, choiceResend), nil
	}

	return cs.reply(event, fmt.Sprintf(constant.ReplyCodeSent, email), choiceResend, choiceCancel), nil
}

func (cs *conversationService) acceptCode(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent, text string) (*dto.ChatReply, error) {
	if sess.VerificationCode == nil || text != *sess.VerificationCode {
		return cs.reply(event, constant.ReplyWrongCode, choiceResend, choiceCancel), nil
	}

	sess.VerificationCode = nil
	sess.ConversationState = entity.StateVerified
	if err := cs.saveSession(ctx, uow, sess); err != nil {
		return nil, err
	}

	email := ""
	if sess.Email != nil {
		email = *sess.Email
	}
	cs.publishEvent(ctx, events.NewSessionVerified(sess.UserId, email))
	return cs.reply(event, constant.ReplyVerified, choiceStage1), nil
}

func (cs *conversationService) acceptCase(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent, text string) (*dto.ChatReply, error) {
	// A new case invalidates whatever was derived from the old one.
	sess.CaseText = &text
	sess.IssuesText = nil
	sess.AspectsText = nil
	sess.ConversationState = entity.StateStage1
	if err := cs.saveSession(ctx, uow, sess); err != nil {
		return nil, err
	}
	cs.publishEvent(ctx, events.NewStageAdvanced(sess.UserId, string(entity.StateStage1)))
	return cs.reply(event, constant.ReplyCaseReceived, choiceStage2), nil
}

// handleDocument accepts a case file only while the assistant is waiting for
// the case. Extraction problems are user-visible validation replies, never
// state changes.
func (cs *conversationService) handleDocument(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session, event *dto.ChatEvent) (*dto.ChatReply, error) {
	if sess.ConversationState != entity.StateAwaitingCase {
		return cs.reply(event, constant.ReplyUnknownInteraction), nil
	}
	if event.Document == nil {
		return cs.reply(event, constant.ReplyEmptyMessage), nil
	}

	kind := extract.KindFromFileName(event.Document.FileName)
	if kind == "" {
		return cs.reply(event, constant.ReplyUnsupportedDoc), nil
	}

	data, err := base64.StdEncoding.DecodeString(event.Document.Data)
	if err != nil {
		return cs.reply(event, constant.ReplyDocExtractFailed), nil
	}

	text, err := cs.extractor.Text(data, kind)
	if err != nil {
		var unsupported *extract.ErrUnsupportedKind
		if errors.As(err, &unsupported) {
			return cs.reply(event, constant.ReplyUnsupportedDoc), nil
		}
		cs.logger.Warn("ConversationService", "Document extraction failed", map[string]interface{}{
			"user_id":   sess.UserId,
			"file_name": event.Document.FileName,
			"error":     err.Error(),
		})
		return cs.reply(event, constant.ReplyDocExtractFailed), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return cs.reply(event, constant.ReplyDocNoText), nil
	}

	return cs.acceptCase(ctx, uow, sess, event, text)
}

func (cs *conversationService) emailAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	for _, allowed := range cs.allowedDomains {
		if domain == allowed {
			return true
		}
	}
	return false
}

func (cs *conversationService) createSession(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session) error {
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin create for user %d: %w", sess.UserId, err)
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().Create(ctx, sess); err != nil {
		return fmt.Errorf("create session for user %d: %w", sess.UserId, err)
	}
	return uow.Commit()
}

func (cs *conversationService) saveSession(ctx context.Context, uow unitofwork.UnitOfWork, sess *entity.Session) error {
	sess.UpdatedAt = time.Now()

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin update for user %d: %w", sess.UserId, err)
	}
	defer uow.Rollback()

	if err := uow.SessionRepository().Update(ctx, sess); err != nil {
		return fmt.Errorf("update session for user %d: %w", sess.UserId, err)
	}
	return uow.Commit()
}

func (cs *conversationService) publishEvent(ctx context.Context, event events.Event) {
	if cs.natsPub == nil {
		return
	}
	if err := cs.natsPub.Publish(ctx, event); err != nil {
		cs.logger.Warn("ConversationService", "Failed to publish session event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}

func (cs *conversationService) reply(event *dto.ChatEvent, text string, choices ...dto.Choice) *dto.ChatReply {
	return &dto.ChatReply{
		ChatID:  event.ChatID,
		Text:    text,
		Choices: choices,
	}
}
