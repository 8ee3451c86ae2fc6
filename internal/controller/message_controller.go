package controller

import (
	"dreambees-be/internal/dto"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/serverutils"
	"dreambees-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IMessageController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
}

type messageController struct {
	messageService      service.IMessageService
	conversationService service.IConversationService
}

func NewMessageController(messageService service.IMessageService, conversationService service.IConversationService) IMessageController {
	return &messageController{
		messageService:      messageService,
		conversationService: conversationService,
	}
}

func (c *messageController) RegisterRoutes(r fiber.Router) {
	r.Get("/chats/:chatId/messages", c.GetAll)
	r.Post("/chats/:chatId/messages", c.Create)
	r.Get("/messages/:messageId/status", c.Status)
}

func (c *messageController) GetAll(ctx *fiber.Ctx) error {
	chatId, err := parseID(ctx, "chatId", "chat")
	if err != nil {
		return err
	}

	res, err := c.messageService.GetMessages(ctx.UserContext(), chatId)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

// Create responds with the stored message followed by the assistant reply, if any.
func (c *messageController) Create(ctx *fiber.Ctx) error {
	chatId, err := parseID(ctx, "chatId", "chat")
	if err != nil {
		return err
	}

	var req dto.CreateMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.conversationService.PostMessage(ctx.UserContext(), chatId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *messageController) Status(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "messageId", "message")
	if err != nil {
		return err
	}

	res, err := c.messageService.GetMessageStatus(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
