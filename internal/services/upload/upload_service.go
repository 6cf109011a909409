package upload

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// Uploader сохраняет файл во внешнем хранилище и возвращает его URL
type Uploader interface {
	Upload(ctx context.Context, name string, file io.Reader) (string, error)
}

// cloudinaryUploader загружает изображения в Cloudinary
type cloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryUploader создает загрузчик по ключам из конфигурации
func NewCloudinaryUploader(cfg config.CloudinaryConfig) (Uploader, error) {
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("ошибка инициализации Cloudinary: %w", err)
	}
	return &cloudinaryUploader{cld: cld, folder: cfg.UploadFolder}, nil
}

func (u *cloudinaryUploader) Upload(ctx context.Context, name string, file io.Reader) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: u.folder})
	if err != nil {
		return "", fmt.Errorf("ошибка загрузки %s в Cloudinary: %w", name, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", res.Error.Message)
	}
	return res.SecureURL, nil
}

// UploadService выдает URL изображений и параметры прямой загрузки
type UploadService struct {
	cfg      config.CloudinaryConfig
	uploader Uploader
	now      func() time.Time
}

// NewUploadService создает сервис. Без uploader возвращаются URL-заглушки
func NewUploadService(cfg config.CloudinaryConfig, up Uploader) *UploadService {
	return &UploadService{cfg: cfg, uploader: up, now: time.Now}
}

// PlaceholderURL заглушка изображения, уникальная по времени
func (s *UploadService) PlaceholderURL() string {
	return fmt.Sprintf("/placeholder.svg?height=300&width=300&text=Image&timestamp=%d", s.now().UnixMilli())
}

// GenerateSignature создаёт подпись для Cloudinary
func (s *UploadService) GenerateSignature(params map[string]string) string {
	// Сортируем ключи параметров
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	signParts := make([]string, 0, len(keys))
	for _, k := range keys {
		signParts = append(signParts, fmt.Sprintf("%s=%s", k, params[k]))
	}

	// Секрет дописывается в конец строки
	h := sha1.New()
	h.Write([]byte(strings.Join(signParts, "&") + s.cfg.APISecret))
	return hex.EncodeToString(h.Sum(nil))
}

// UploadParams параметры для загрузки с клиента напрямую в Cloudinary
func (s *UploadService) UploadParams(itemID string) (fiber.Map, error) {
	if !s.cfg.Enabled() {
		return nil, apperrors.InvalidState("Загрузка в Cloudinary не настроена")
	}
	if itemID == "" {
		itemID = uuid.NewString()
	}

	timestamp := fmt.Sprintf("%d", s.now().Unix())
	params := map[string]string{
		"timestamp": timestamp,
		"folder":    s.cfg.UploadFolder,
	}
	if s.cfg.UploadPreset != "" {
		params["upload_preset"] = s.cfg.UploadPreset
	}

	return fiber.Map{
		"timestamp":     timestamp,
		"signature":     s.GenerateSignature(params),
		"api_key":       s.cfg.APIKey,
		"cloud_name":    s.cfg.CloudName,
		"folder":        s.cfg.UploadFolder,
		"upload_preset": s.cfg.UploadPreset,
		"item_id":       itemID,
	}, nil
}

// UploadHandler принимает файл и возвращает URL изображения
func (s *UploadService) UploadHandler(c fiber.Ctx) error {
	if middleware.UserID(c) == "" {
		return utils.SendError(c, apperrors.Unauthenticated("Требуется авторизация"))
	}

	header, err := c.FormFile("file")
	if err != nil || s.uploader == nil {
		return utils.SendOK(c, fiber.StatusOK, fiber.Map{"url": s.PlaceholderURL()})
	}

	file, err := header.Open()
	if err != nil {
		return utils.SendError(c, apperrors.Storage("Не удалось загрузить изображение", err))
	}
	defer file.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url, err := s.uploader.Upload(ctx, header.Filename, file)
	if err != nil {
		log.Errorf("Ошибка загрузки изображения %s: %v", header.Filename, err)
		return utils.SendError(c, apperrors.Storage("Не удалось загрузить изображение", err))
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"url": url})
}

// UploadParamsHandler возвращает подписанные параметры загрузки
func (s *UploadService) UploadParamsHandler(c fiber.Ctx) error {
	params, err := s.UploadParams(c.Query("item_id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendOK(c, fiber.StatusOK, params)
}
