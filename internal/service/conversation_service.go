package service

import (
	"context"
	"fmt"
	"strings"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/mapper"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/unitofwork"
)

type IConversationService interface {
	// PostMessage stores a client message and the assistant's reply, if any.
	// A user message with an image and a prompt gets a processing reply whose
	// edit runs in the background; other user messages get guidance; assistant
	// messages get no reply.
	PostMessage(ctx context.Context, chatId int64, req *dto.CreateMessageRequest) ([]*dto.MessageResponse, error)
}

type conversationService struct {
	messageService IMessageService
	jobPublisher   IEditJobPublisher
	uowFactory     unitofwork.RepositoryFactory
	mapper         *mapper.ChatMapper
	logger         logger.ILogger
}

func NewConversationService(
	messageService IMessageService,
	jobPublisher IEditJobPublisher,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		messageService: messageService,
		jobPublisher:   jobPublisher,
		uowFactory:     uowFactory,
		mapper:         mapper.NewChatMapper(),
		logger:         log,
	}
}

func (s *conversationService) PostMessage(ctx context.Context, chatId int64, req *dto.CreateMessageRequest) ([]*dto.MessageResponse, error) {
	posted, err := s.messageService.CreateMessage(ctx, chatId, req)
	if err != nil {
		return nil, err
	}

	if !posted.IsUserMessage() {
		return s.mapper.MessagesToResponse([]*entity.Message{posted}), nil
	}

	var reply *entity.Message
	if wantsEdit(posted) {
		reply, err = s.startEdit(ctx, posted)
	} else {
		reply, err = s.messageService.CreateMessage(ctx, chatId, &dto.CreateMessageRequest{
			Role:    string(entity.MessageRoleAssistant),
			Content: constant.AssistantGuidanceMessage,
		})
	}
	if err != nil {
		return nil, err
	}

	return s.mapper.MessagesToResponse([]*entity.Message{posted, reply}), nil
}

func wantsEdit(msg *entity.Message) bool {
	return msg.HasImage() && strings.TrimSpace(msg.Content) != ""
}

// startEdit creates the processing placeholder and dispatches the job. When
// dispatch fails the placeholder is moved to error right away.
func (s *conversationService) startEdit(ctx context.Context, posted *entity.Message) (*entity.Message, error) {
	placeholder, err := s.messageService.CreateMessage(ctx, posted.ChatId, &dto.CreateMessageRequest{
		Role:    string(entity.MessageRoleAssistant),
		Content: constant.AssistantProcessingMessage,
		Metadata: &dto.MessageMetadataDTO{
			Status: string(entity.MessageStatusProcessing),
		},
	})
	if err != nil {
		return nil, err
	}

	job := dto.ImageEditJobMessage{
		MessageId: placeholder.Id,
		ChatId:    posted.ChatId,
		ImageUrl:  *posted.ImageUrl,
		Prompt:    posted.Content,
	}
	if err := s.jobPublisher.Publish(ctx, job); err != nil {
		s.logger.Error("CONVERSATION", "Failed to dispatch image edit", map[string]interface{}{
			"message_id": placeholder.Id,
			"error":      err.Error(),
		})

		uow := s.uowFactory.NewUnitOfWork(ctx)
		failed, updateErr := uow.MessageRepository().Update(ctx, placeholder.Id, entity.MessagePatch{
			Metadata: entity.Set(entity.MessageMetadata{
				Status: entity.MessageStatusError,
				Error:  constant.AssistantDispatchFailedError,
			}),
		})
		if updateErr != nil {
			return nil, fmt.Errorf("mark dispatch failure: %w", updateErr)
		}
		if failed == nil {
			return placeholder, nil
		}
		return failed, nil
	}

	s.logger.Info("CONVERSATION", "Image edit dispatched", map[string]interface{}{
		"message_id": placeholder.Id,
		"chat_id":    posted.ChatId,
	})
	return placeholder, nil
}
