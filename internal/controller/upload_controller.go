package controller

import (
	"dreambees-be/internal/constant"
	"dreambees-be/internal/pkg/apperror"
	"dreambees-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Upload(ctx *fiber.Ctx) error
}

type uploadController struct {
	service service.IUploadService
}

func NewUploadController(service service.IUploadService) IUploadController {
	return &uploadController{service: service}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	r.Post("/upload", c.Upload)
}

func (c *uploadController) Upload(ctx *fiber.Ctx) error {
	file, err := ctx.FormFile(constant.UploadFormField)
	if err != nil {
		return apperror.BadRequest("No image file provided")
	}

	res, err := c.service.UploadImage(ctx.UserContext(), file)
	if err != nil {
		return err
	}

	return ctx.JSON(res)
}
