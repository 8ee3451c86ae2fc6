package controller

import (
	"strconv"

	"dreambees-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// parseID reads a positive integer route param.
func parseID(ctx *fiber.Ctx, param, label string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params(param), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}
