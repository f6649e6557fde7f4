package websocket

import (
	"strconv"

	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler exposes the conversation over a websocket, mirroring the HTTP
// event endpoint for clients that keep a connection open.
type ChatHandler struct {
	service service.IConversationService
	logger  logger.ILogger
}

func NewChatHandler(svc service.IConversationService, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		service: svc,
		logger:  log,
	}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/conversation/ws", h.ServeWs)
}

// ServeWs upgrades the connection and runs the read/write pumps until the
// peer goes away. Identity comes from the user_id query parameter, the same
// external id the chat transport uses everywhere else.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil || userID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing or invalid user_id"})
	}

	chatID, _ := strconv.ParseInt(c.Query("chat_id"), 10, 64)
	if chatID == 0 {
		chatID = userID
	}

	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})

		client := &Client{
			Conn:    conn,
			UserID:  userID,
			ChatID:  chatID,
			Send:    make(chan []byte, 256),
			service: h.service,
			logger:  h.logger,
		}

		go client.writePump()
		client.readPump()

		close(client.Send)
		h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}
