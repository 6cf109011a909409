package swap

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты для API обменов.
// api уже защищен middleware авторизации
func (s *SwapService) SetupRoutes(api fiber.Router) {
	swaps := api.Group("/swaps")

	swaps.Post("/", s.CreateSwapRequest)
	swaps.Get("/", s.GetMySwapRequests)

	// Смена статуса: общий путь и отдельное завершение
	swaps.Post("/status", s.UpdateSwapStatus)
	swaps.Post("/complete", s.CompleteSwapRequest)

	swaps.Get("/:id", s.GetSwapRequest)
}
