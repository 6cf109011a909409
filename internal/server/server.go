// Package server собирает хранилище, сервисы и маршруты в приложение Fiber.
package server

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/db"
	"github.com/rajivgeraev/flippy-swaps/internal/db/sqlite"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/services/auth"
	"github.com/rajivgeraev/flippy-swaps/internal/services/impact"
	"github.com/rajivgeraev/flippy-swaps/internal/services/item"
	"github.com/rajivgeraev/flippy-swaps/internal/services/message"
	"github.com/rajivgeraev/flippy-swaps/internal/services/swap"
	"github.com/rajivgeraev/flippy-swaps/internal/services/upload"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// OpenStore открывает хранилище по STORAGE_DRIVER и применяет миграции
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер хранилища %q", cfg.StorageDriver)
	}
}

// New создает приложение со всеми маршрутами API
func New(cfg *config.Config, store storage.Store) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		AppName:      "Flippy Swaps",
		ErrorHandler: utils.ErrorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	retry := utils.RetryPolicyFromConfig(cfg.RetryConfig)
	jwtService := utils.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)

	var uploader upload.Uploader
	if cfg.CloudinaryConfig.Enabled() {
		cld, err := upload.NewCloudinaryUploader(cfg.CloudinaryConfig)
		if err != nil {
			return nil, err
		}
		uploader = cld
	} else {
		log.Warn("⚠️ Cloudinary не настроен, загрузка возвращает заглушки")
	}

	// Создаём сервисы
	engine := swap.NewEngine(store, retry, cfg.ImpactPointsPerSwap)
	authService := auth.NewAuthService(cfg.TelegramBotToken, jwtService, store)
	services := []interface{ SetupRoutes(fiber.Router) }{
		authService,
		item.NewItemService(item.NewCatalog(store, retry)),
		swap.NewSwapService(engine),
		message.NewMessageService(message.NewMessaging(store, engine, retry)),
		impact.NewImpactService(impact.NewAccounting(store, retry, impact.DefaultCatalog())),
		upload.NewUploadService(cfg.CloudinaryConfig, uploader),
	}

	// Открытые маршруты регистрируются до группы с авторизацией
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	authService.SetupPublicRoutes(app)

	api := app.Group("/api", middleware.AuthMiddleware(jwtService, store))
	for _, service := range services {
		service.SetupRoutes(api)
	}

	return app, nil
}
