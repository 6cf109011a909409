package upload

import "github.com/gofiber/fiber/v3"

// SetupRoutes регистрирует маршруты загрузки изображений
func (s *UploadService) SetupRoutes(api fiber.Router) {
	api.Post("/upload", s.UploadHandler)
	api.Get("/upload/params", s.UploadParamsHandler)
}
