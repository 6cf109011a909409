package impact

import "github.com/gofiber/fiber/v3"

// SetupRoutes настраивает маршруты показателей влияния
func (s *ImpactService) SetupRoutes(api fiber.Router) {
	api.Get("/impact", s.GetMyImpact)
	api.Get("/impact/community", s.GetCommunityImpact)
	api.Get("/badges", s.GetBadgeCatalog)
}
