package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

const (
	userIDKey   = "userID"
	identityKey = "identity"
)

// UserEnsurer создает пользователя при первом обращении
type UserEnsurer interface {
	EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error)
}

// AuthMiddleware создаёт middleware для проверки JWT.
// Запрос без валидного токена отклоняется до любых обращений к хранилищу
func AuthMiddleware(jwtService *utils.JWTService, users UserEnsurer) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.SendError(c, apperrors.Unauthenticated("Требуется авторизация"))
		}

		// Проверяем Bearer токен
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return utils.SendError(c, apperrors.Unauthenticated("Неверный формат заголовка авторизации"))
		}

		identity, err := jwtService.ExtractIdentity(parts[1])
		if err != nil {
			return utils.SendError(c, apperrors.Unauthenticated("Недействительный или просроченный токен"))
		}

		// Создаем пользователя при первом обращении
		if users != nil {
			ctx, cancel := utils.GetContext()
			_, err := users.EnsureUser(ctx, identity)
			cancel()
			if err != nil {
				return utils.SendError(c, apperrors.Storage("Ошибка при сохранении пользователя", err))
			}
		}

		// Добавляем userID в контекст
		c.Locals(userIDKey, identity.ID)
		c.Locals(identityKey, identity)

		return c.Next()
	}
}

// UserID возвращает ID авторизованного пользователя или пустую строку
func UserID(c fiber.Ctx) string {
	userID, _ := c.Locals(userIDKey).(string)
	return userID
}

// CurrentIdentity возвращает данные авторизованного пользователя
func CurrentIdentity(c fiber.Ctx) (models.Identity, bool) {
	identity, ok := c.Locals(identityKey).(models.Identity)
	return identity, ok
}
