package controller

import (
	"errors"

	"ai-legal-assistant-be/internal/constant"
	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type IConversationController interface {
	RegisterRoutes(r fiber.Router)
	HandleEvent(ctx *fiber.Ctx) error
}

type conversationController struct {
	service   service.IConversationService
	validator *validator.Validate
	logger    logger.ILogger
}

func NewConversationController(svc service.IConversationService, log logger.ILogger) IConversationController {
	return &conversationController{
		service:   svc,
		validator: validator.New(),
		logger:    log,
	}
}

func (c *conversationController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/conversation")
	h.Post("/events", c.HandleEvent)
}

func (c *conversationController) HandleEvent(ctx *fiber.Ctx) error {
	var req dto.ChatEvent
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": "invalid request body",
		})
	}

	if err := c.validator.Struct(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"code":    400,
			"message": err.Error(),
		})
	}

	reply, err := c.service.HandleEvent(ctx.Context(), &req)
	if err != nil {
		reply = c.failureReply(&req, err)
	}

	return ctx.JSON(fiber.Map{
		"success": true,
		"code":    200,
		"message": "ok",
		"data":    reply,
	})
}

// failureReply maps internal failures to the generic retryable messages the
// chat client shows. The cause is logged, never sent to the user.
func (c *conversationController) failureReply(req *dto.ChatEvent, err error) *dto.ChatReply {
	c.logger.Error("ConversationController", "Event handling failed", map[string]interface{}{
		"user_id": req.UserID,
		"kind":    req.Kind,
		"error":   err.Error(),
	})

	text := constant.ReplyStorageFailed
	var corrupted *entity.ErrCorruptedState
	switch {
	case errors.As(err, &corrupted):
		text = constant.ReplyUnexpectedState
	case errors.Is(err, service.ErrAnalysisFailed):
		text = constant.ReplyModelFailed
	}

	return &dto.ChatReply{
		ChatID: req.ChatID,
		Text:   text,
	}
}
