package service

import (
	"context"
	"encoding/json"

	"ai-legal-assistant-be/internal/dto"
	"ai-legal-assistant-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IAuditService consumes analysis-completed messages from the in-process bus
// and writes them to the isolated audit log, keeping the main log clean and
// the request path free of file IO.
type IAuditService interface {
	Consume(ctx context.Context) error
}

type auditService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewAuditService(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IAuditService {
	return &auditService{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (as *auditService) Consume(ctx context.Context) error {
	messages, err := as.pubSub.Subscribe(ctx, as.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			as.processMessage(msg)
		}
	}()

	return nil
}

func (as *auditService) processMessage(msg *message.Message) {
	var payload dto.AnalysisCompletedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		as.logger.Error("AuditService", "Failed to unmarshal audit message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	as.logger.Info("AuditService", "Stage analysis completed", map[string]interface{}{
		"user_id":       payload.UserID,
		"stage":         payload.Stage,
		"input_length":  payload.InputLength,
		"output_length": payload.OutputLength,
		"model":         payload.Model,
	})

	msg.Ack()
}
