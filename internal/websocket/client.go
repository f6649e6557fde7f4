package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-legal-assistant-be/internal/constant"
	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/entity"
	"ai-legal-assistant-be/internal/pkg/logger"
	"ai-legal-assistant-be/internal/service"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024 * 1024 // documents arrive base64-encoded inline

	eventTimeout = 5 * time.Minute // stage exchanges wait on the model
)

// Client is a middleman between one websocket connection and the
// conversation service.
type Client struct {
	Conn *websocket.Conn

	// UserID associated with this connection
	UserID int64
	ChatID int64

	// Buffered channel of outbound replies.
	Send chan []byte

	service service.IConversationService
	logger  logger.ILogger
}

// readPump pumps chat events from the websocket connection into the
// conversation service and queues the replies.
func (c *Client) readPump() {
	defer c.Conn.Close()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket", "Unexpected close", map[string]interface{}{
					"user_id": c.UserID,
					"error":   err.Error(),
				})
			}
			break
		}

		var event dto.ChatEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			c.queueReply(&dto.ChatReply{ChatID: c.ChatID, Text: constant.ReplyUnknownInteraction})
			continue
		}

		// The connection owns the identity; a payload cannot speak for
		// another user.
		event.UserID = c.UserID
		event.ChatID = c.ChatID

		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		reply, err := c.service.HandleEvent(ctx, &event)
		cancel()
		if err != nil {
			reply = c.failureReply(&event, err)
		}
		c.queueReply(reply)
	}
}

func (c *Client) failureReply(event *dto.ChatEvent, err error) *dto.ChatReply {
	c.logger.Error("WebSocket", "Event handling failed", map[string]interface{}{
		"user_id": c.UserID,
		"kind":    event.Kind,
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

	return &dto.ChatReply{ChatID: c.ChatID, Text: text}
}

func (c *Client) queueReply(reply *dto.ChatReply) {
	data, err := json.Marshal(reply)
	if err != nil {
		return
	}
	select {
	case c.Send <- data:
	default:
		c.logger.Warn("WebSocket", "Send buffer full, dropping reply", map[string]interface{}{"user_id": c.UserID})
	}
}

// writePump pumps queued replies to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
