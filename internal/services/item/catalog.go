package item

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"
	"golang.org/x/text/cases"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// Catalog каталог вещей для обмена
type Catalog struct {
	store storage.Queries
	retry utils.RetryPolicy
	now   func() time.Time
}

// NewCatalog создает новый экземпляр Catalog
func NewCatalog(store storage.Queries, retry utils.RetryPolicy) *Catalog {
	return &Catalog{
		store: store,
		retry: retry,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput данные новой вещи
type CreateInput struct {
	Title       string
	Description string
	Condition   models.ItemCondition
	Category    string
	Tags        []string
	Images      []string
	Latitude    *float64
	Longitude   *float64
}

// Create выставляет вещь владельца на обмен
func (c *Catalog) Create(ctx context.Context, ownerID string, in CreateInput) (*models.Item, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)

	// Валидация обязательных полей
	if title == "" {
		return nil, apperrors.InvalidInput("Название обязательно")
	}
	if description == "" {
		return nil, apperrors.InvalidInput("Описание обязательно")
	}
	if in.Condition == "" {
		return nil, apperrors.InvalidInput("Состояние обязательно")
	}
	if !in.Condition.Valid() {
		return nil, apperrors.InvalidInput("Недопустимое состояние вещи")
	}
	if category == "" {
		return nil, apperrors.InvalidInput("Категория обязательна")
	}

	item := &models.Item{
		ID:          uuid.NewString(),
		UserID:      ownerID,
		Title:       title,
		Description: description,
		Condition:   in.Condition,
		Category:    category,
		Tags:        NormalizeTags(in.Tags),
		Images:      cleanImages(in.Images),
		IsAvailable: true,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		CreatedAt:   c.now(),
	}
	if err := c.store.CreateItem(ctx, item); err != nil {
		return nil, apperrors.Storage("Ошибка сохранения вещи", err)
	}

	log.Infof("Пользователь %s выставил вещь %s", ownerID, item.ID)
	return item, nil
}

// Get возвращает вещь вместе с владельцем
func (c *Catalog) Get(ctx context.Context, id string) (*models.Item, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID вещи")
	}

	item, err := utils.WithRetry(ctx, c.retry, "получение вещи", func() (*models.Item, error) {
		return c.store.GetItem(ctx, id)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Вещь не найдена")
		}
		return nil, apperrors.Storage("Ошибка получения вещи", err)
	}

	owner, err := c.store.GetUser(ctx, item.UserID)
	if err != nil {
		log.Warnf("Не удалось получить владельца вещи %s: %v", item.ID, err)
	} else {
		item.Owner = owner
	}
	return item, nil
}

// List возвращает вещи по фильтру, новые первыми.
// Без владельца в выборку попадают только доступные вещи
func (c *Catalog) List(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.OwnerID = strings.TrimSpace(filter.OwnerID)
	filter.Query = strings.TrimSpace(filter.Query)
	filter.TagQuery = foldTag(filter.Query)
	if filter.OwnerID == "" {
		filter.AvailableOnly = true
	}
	if filter.Limit <= 0 || filter.Limit > storage.DefaultItemLimit {
		filter.Limit = storage.DefaultItemLimit
	}

	items, err := utils.WithRetry(ctx, c.retry, "получение списка вещей", func() ([]models.Item, error) {
		return c.store.ListItems(ctx, filter)
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка получения списка вещей", err)
	}
	return items, nil
}

// ListMine возвращает доступные вещи владельца
func (c *Catalog) ListMine(ctx context.Context, ownerID string) ([]models.Item, error) {
	if ownerID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}
	return c.List(ctx, models.ItemFilter{OwnerID: ownerID, AvailableOnly: true})
}

// NormalizeTags приводит теги к единому регистру и убирает повторы
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		folded := foldTag(tag)
		if folded == "" {
			continue
		}
		if _, ok := seen[folded]; ok {
			continue
		}
		seen[folded] = struct{}{}
		out = append(out, folded)
	}
	return out
}

func foldTag(tag string) string {
	return cases.Fold().String(strings.TrimSpace(tag))
}

func cleanImages(images []string) []string {
	out := make([]string, 0, len(images))
	for _, image := range images {
		if image = strings.TrimSpace(image); image != "" {
			out = append(out, image)
		}
	}
	return out
}
