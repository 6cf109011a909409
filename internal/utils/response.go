package utils

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
)

// SendError отправляет ответ {success:false,error} со статусом по коду ошибки
func SendError(c fiber.Ctx, err error) error {
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeStorageFailure {
		log.Errorf("Ошибка при обработке %s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code.HTTPStatus()).JSON(fiber.Map{
		"success": false,
		"error":   apperrors.PublicMessage(err),
		"code":    code,
	})
}

// SendOK отправляет ответ {success:true,...}
func SendOK(c fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler обработчик ошибок приложения Fiber в формате API
func ErrorHandler(c fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"success": false,
			"error":   fiberErr.Message,
		})
	}
	return SendError(c, err)
}
