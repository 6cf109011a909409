package auth

import "github.com/gofiber/fiber/v3"

// SetupPublicRoutes регистрирует маршруты без авторизации.
// Вызывается до подключения middleware к группе /api
func (s *AuthService) SetupPublicRoutes(app *fiber.App) {
	app.Post("/api/auth/telegram", s.TelegramAuthHandler)
}

// SetupRoutes регистрирует защищенные маршруты
func (s *AuthService) SetupRoutes(api fiber.Router) {
	api.Get("/profile", s.ProfileHandler)
}
