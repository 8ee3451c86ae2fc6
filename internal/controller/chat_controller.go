package controller

import (
	"dreambees-be/internal/dto"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/pkg/serverutils"
	"dreambees-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chats")
	h.Get("", c.GetAll)
	h.Post("", c.Create)
	h.Get(":chatId", c.Show)
	h.Delete(":chatId", c.Delete)
}

func (c *chatController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.GetChats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateChatRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return apperror.BadRequest("Invalid request body")
		}
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CreateChat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(res)
}

func (c *chatController) Show(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "chatId", "chat")
	if err != nil {
		return err
	}

	res, err := c.service.GetChat(ctx.UserContext(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}

func (c *chatController) Delete(ctx *fiber.Ctx) error {
	id, err := parseID(ctx, "chatId", "chat")
	if err != nil {
		return err
	}

	if err := c.service.DeleteChat(ctx.UserContext(), id); err != nil {
		return err
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
