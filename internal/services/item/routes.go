package item

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты каталога вещей
func (s *ItemService) SetupRoutes(api fiber.Router) {
	items := api.Group("/items")
	items.Post("/", s.CreateItem)
	items.Get("/", s.GetItems)
	items.Get("/:id", s.GetItem)

	// Вещи текущего пользователя
	api.Get("/user/items", s.GetMyItems)
}
