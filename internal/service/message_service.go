package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/mapper"
	"dreambees-be/internal/metrics"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/repository/contract"
	"dreambees-be/internal/repository/unitofwork"
)

type IMessageService interface {
	// CreateMessage stores one message. It never starts an image edit.
	CreateMessage(ctx context.Context, chatId int64, req *dto.CreateMessageRequest) (*entity.Message, error)
	GetMessages(ctx context.Context, chatId int64) ([]*dto.MessageResponse, error)
	GetMessageStatus(ctx context.Context, id int64) (*dto.MessageStatusResponse, error)
}

type messageService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ChatMapper
	metrics    *metrics.Metrics
}

func NewMessageService(uowFactory unitofwork.RepositoryFactory, m *metrics.Metrics) IMessageService {
	return &messageService{
		uowFactory: uowFactory,
		mapper:     mapper.NewChatMapper(),
		metrics:    m,
	}
}

func (s *messageService) CreateMessage(ctx context.Context, chatId int64, req *dto.CreateMessageRequest) (*entity.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, apperror.Validation("content is required")
	}
	role := entity.MessageRole(req.Role)
	if !role.IsValid() {
		return nil, apperror.Validation("role must be one of: user, assistant")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindById(ctx, chatId)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}

	msg, err := uow.MessageRepository().Create(ctx, contract.CreateMessageData{
		ChatId:         chatId,
		Role:           role,
		Content:        req.Content,
		ImageUrl:       nonEmpty(req.ImageUrl),
		EditedImageUrl: nonEmpty(req.EditedImageUrl),
		Metadata:       s.mapper.MetadataFromDTO(req.Metadata),
	})
	if errors.Is(err, contract.ErrChatNotFound) {
		// chat deleted after the lookup above
		return nil, apperror.NotFound("Chat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.metrics.MessageCreated(string(role))
	return msg, nil
}

func (s *messageService) GetMessages(ctx context.Context, chatId int64) ([]*dto.MessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindById(ctx, chatId)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}

	messages, err := uow.MessageRepository().FindByChatId(ctx, chatId)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return s.mapper.MessagesToResponse(messages), nil
}

func (s *messageService) GetMessageStatus(ctx context.Context, id int64) (*dto.MessageStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	msg, err := uow.MessageRepository().FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find message: %w", err)
	}
	if msg == nil {
		return nil, apperror.NotFound("Message not found")
	}
	return s.mapper.MessageStatusToResponse(msg), nil
}

// nonEmpty maps "" to nil so optional URLs are either set or absent.
func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
