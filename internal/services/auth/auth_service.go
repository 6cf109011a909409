package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// InitDataTTL срок действия initData от Telegram
const InitDataTTL = 24 * time.Hour

// AuthService – структура для обработки авторизации
type AuthService struct {
	botToken   string
	jwtService *utils.JWTService
	store      storage.Queries
}

// NewAuthService – конструктор AuthService
func NewAuthService(botToken string, jwtService *utils.JWTService, store storage.Queries) *AuthService {
	return &AuthService{
		botToken:   botToken,
		jwtService: jwtService,
		store:      store,
	}
}

// Login проверяет initData, сохраняет пользователя и выпускает JWT
func (s *AuthService) Login(ctx context.Context, rawInitData string) (string, *models.User, error) {
	if rawInitData == "" {
		return "", nil, apperrors.InvalidInput("Необходимо передать init_data")
	}
	if s.botToken == "" {
		return "", nil, apperrors.Unauthenticated("Вход через Telegram не настроен")
	}

	// Проверяем initData
	if err := initdata.Validate(rawInitData, s.botToken, InitDataTTL); err != nil {
		log.Warnf("Неверные данные Telegram: %v", err)
		return "", nil, apperrors.Unauthenticated("Неверные данные Telegram")
	}

	// Парсим данные
	data, err := initdata.Parse(rawInitData)
	if err != nil {
		return "", nil, apperrors.InvalidInput("Не удалось разобрать init_data")
	}
	if data.User.ID == 0 {
		return "", nil, apperrors.InvalidInput("В init_data нет пользователя")
	}

	user, err := s.store.UpsertTelegramUser(ctx, storage.TelegramUser{
		TelegramID: data.User.ID,
		FirstName:  data.User.FirstName,
		LastName:   data.User.LastName,
		PhotoURL:   data.User.PhotoURL,
	})
	if err != nil {
		return "", nil, apperrors.Storage("Ошибка сохранения пользователя", err)
	}

	// Генерируем JWT
	token, err := s.jwtService.GenerateToken(models.Identity{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Picture:   user.ProfileImage,
	})
	if err != nil {
		return "", nil, apperrors.Storage("Ошибка создания токена", err)
	}

	log.Infof("Пользователь %s вошел через Telegram", user.ID)
	return token, user, nil
}

// TelegramAuthHandler проверяет initData, создает JWT и возвращает его
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}
	if err := c.Bind().Body(&payload); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	token, user, err := s.Login(ctx, payload.InitData)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"token": token, "user": user})
}

// ProfileHandler возвращает профиль текущего пользователя
func (s *AuthService) ProfileHandler(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	user, err := s.store.GetUser(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return utils.SendError(c, apperrors.NotFound("Пользователь не найден"))
		}
		return utils.SendError(c, apperrors.Storage("Ошибка получения профиля", err))
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"user": user})
}
