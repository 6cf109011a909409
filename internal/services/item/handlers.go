package item

import (
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// ItemService HTTP-обработчики каталога вещей
type ItemService struct {
	catalog *Catalog
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(catalog *Catalog) *ItemService {
	return &ItemService{catalog: catalog}
}

// CreateItem обрабатывает создание новой вещи
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	var requestData struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Condition   string   `json:"condition"`
		Category    string   `json:"category"`
		Tags        []string `json:"tags"`
		Images      []string `json:"images"`
		Latitude    *float64 `json:"latitude"`
		Longitude   *float64 `json:"longitude"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	item, err := s.catalog.Create(ctx, middleware.UserID(c), CreateInput{
		Title:       requestData.Title,
		Description: requestData.Description,
		Condition:   models.ItemCondition(requestData.Condition),
		Category:    requestData.Category,
		Tags:        requestData.Tags,
		Images:      requestData.Images,
		Latitude:    requestData.Latitude,
		Longitude:   requestData.Longitude,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusCreated, fiber.Map{"item": item})
}

// GetItems возвращает каталог с фильтрами category, q, owner и limit
func (s *ItemService) GetItems(c fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "0"))
	if err != nil || limit < 0 {
		return utils.SendError(c, apperrors.InvalidInput("Неверное значение limit"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	items, err := s.catalog.List(ctx, models.ItemFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		OwnerID:  c.Query("owner"),
		Limit:    limit,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"items": items})
}

// GetItem возвращает вещь по ID
func (s *ItemService) GetItem(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	item, err := s.catalog.Get(ctx, c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"item": item})
}

// GetMyItems возвращает доступные вещи текущего пользователя
func (s *ItemService) GetMyItems(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	items, err := s.catalog.ListMine(ctx, middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"items": items})
}
