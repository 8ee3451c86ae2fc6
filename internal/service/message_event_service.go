package service

import (
	"context"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/pkg/events"
)

// EventPublisher is satisfied by the NATS publisher.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// MessageNotifier pushes message changes to live subscribers of a chat.
type MessageNotifier interface {
	NotifyMessageUpdated(chatId int64, event *dto.MessageEvent)
}

type IMessageEventService interface {
	EditCompleted(ctx context.Context, msg *entity.Message)
	EditFailed(ctx context.Context, msg *entity.Message)
}

type messageEventService struct {
	publisher EventPublisher
	logger    logger.ILogger
}

// NewMessageEventService publishes edit outcomes. A nil publisher turns every call into a no-op.
func NewMessageEventService(publisher EventPublisher, log logger.ILogger) IMessageEventService {
	return &messageEventService{publisher: publisher, logger: log}
}

func (s *messageEventService) EditCompleted(ctx context.Context, msg *entity.Message) {
	data := map[string]interface{}{
		"message_id": msg.Id,
		"chat_id":    msg.ChatId,
	}
	if msg.EditedImageUrl != nil {
		data["edited_image_url"] = *msg.EditedImageUrl
	}
	if msg.Metadata != nil && msg.Metadata.Seed != nil {
		data["seed"] = *msg.Metadata.Seed
	}
	s.publish(ctx, events.New(constant.EventMessageEditCompleted, data))
}

func (s *messageEventService) EditFailed(ctx context.Context, msg *entity.Message) {
	data := map[string]interface{}{
		"message_id": msg.Id,
		"chat_id":    msg.ChatId,
	}
	if msg.Metadata != nil {
		data["error"] = msg.Metadata.Error
	}
	s.publish(ctx, events.New(constant.EventMessageEditFailed, data))
}

func (s *messageEventService) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
