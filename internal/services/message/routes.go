package message

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты переписки
func (s *MessageService) SetupRoutes(api fiber.Router) {
	api.Post("/messages", s.SendMessage)
	api.Get("/swaps/:id/messages", s.GetMessages)
}
