package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dreambees-be/internal/constant"
	"dreambees-be/internal/dto"
	"dreambees-be/internal/entity"
	"dreambees-be/internal/mapper"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/logger"
	"dreambees-be/internal/repository/contract"
	"dreambees-be/internal/repository/unitofwork"
)

type IChatService interface {
	CreateChat(ctx context.Context, req *dto.CreateChatRequest) (*dto.ChatResponse, error)
	GetChats(ctx context.Context) ([]*dto.ChatResponse, error)
	GetChat(ctx context.Context, id int64) (*dto.ChatResponse, error)
	DeleteChat(ctx context.Context, id int64) error
}

type chatService struct {
	uowFactory unitofwork.RepositoryFactory
	mapper     *mapper.ChatMapper
	logger     logger.ILogger
	now        func() time.Time
}

func NewChatService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IChatService {
	return &chatService{
		uowFactory: uowFactory,
		mapper:     mapper.NewChatMapper(),
		logger:     log,
		now:        time.Now,
	}
}

// DefaultChatTitle is used when a chat is created without a title.
func DefaultChatTitle(now time.Time) string {
	return constant.DefaultChatTitlePrefix + now.Format(constant.DefaultChatTitleLayout)
}

// CreateChat stores the chat together with its welcome message.
func (s *chatService) CreateChat(ctx context.Context, req *dto.CreateChatRequest) (*dto.ChatResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultChatTitle(s.now())
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().Create(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	_, err = uow.MessageRepository().Create(ctx, contract.CreateMessageData{
		ChatId:  chat.Id,
		Role:    entity.MessageRoleAssistant,
		Content: constant.ChatWelcomeMessage,
	})
	if err != nil {
		// the memory backend cannot roll back, drop the orphan explicitly
		_, _ = uow.ChatRepository().Delete(ctx, chat.Id)
		return nil, fmt.Errorf("create welcome message: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit chat: %w", err)
	}

	s.logger.Info("CHAT", "Chat created", map[string]interface{}{"chat_id": chat.Id})
	return s.mapper.ChatToResponse(chat), nil
}

func (s *chatService) GetChats(ctx context.Context) ([]*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chats, err := uow.ChatRepository().FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return s.mapper.ChatsToResponse(chats), nil
}

func (s *chatService) GetChat(ctx context.Context, id int64) (*dto.ChatResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	chat, err := uow.ChatRepository().FindById(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return nil, apperror.NotFound("Chat not found")
	}
	return s.mapper.ChatToResponse(chat), nil
}

// DeleteChat removes the chat and every message in it.
func (s *chatService) DeleteChat(ctx context.Context, id int64) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	chat, err := uow.ChatRepository().FindById(ctx, id)
	if err != nil {
		return fmt.Errorf("find chat: %w", err)
	}
	if chat == nil {
		return apperror.NotFound("Chat not found")
	}

	removed, err := uow.MessageRepository().DeleteByChatId(ctx, id)
	if err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if _, err := uow.ChatRepository().Delete(ctx, id); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}

	s.logger.Info("CHAT", "Chat deleted", map[string]interface{}{"chat_id": id, "messages": removed})
	return nil
}
