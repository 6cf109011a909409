package swap

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// SwapService HTTP-обработчики запросов на обмен
type SwapService struct {
	engine *Engine
}

// NewSwapService создает новый экземпляр SwapService
func NewSwapService(engine *Engine) *SwapService {
	return &SwapService{engine: engine}
}

// CreateSwapRequest создает новый запрос на обмен
func (s *SwapService) CreateSwapRequest(c fiber.Ctx) error {
	var requestData struct {
		ItemID        string `json:"item_id"`
		ReceiverID    string `json:"receiver_id"`
		Message       string `json:"message"`
		OfferedItemID string `json:"offered_item_id"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	swap, err := s.engine.Create(ctx, CreateInput{
		ItemID:        requestData.ItemID,
		ReceiverID:    requestData.ReceiverID,
		RequesterID:   middleware.UserID(c),
		Message:       requestData.Message,
		OfferedItemID: requestData.OfferedItemID,
	})
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusCreated, fiber.Map{"swap_request": swap})
}

// GetMySwapRequests возвращает исходящие и входящие запросы пользователя
func (s *SwapService) GetMySwapRequests(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	list, err := s.engine.ListForUser(ctx, middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{
		"sent":     list.Sent,
		"received": list.Received,
	})
}

// GetSwapRequest возвращает запрос на обмен с перепиской
func (s *SwapService) GetSwapRequest(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	swap, err := s.engine.GetByID(ctx, c.Params("id"), middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"swap_request": swap})
}

// UpdateSwapStatus меняет статус запроса на обмен
func (s *SwapService) UpdateSwapStatus(c fiber.Ctx) error {
	var requestData struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	swap, err := s.engine.Transition(ctx, requestData.ID, middleware.UserID(c), models.SwapStatus(requestData.Status))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"swap_request": swap})
}

// CompleteSwapRequest завершает принятый запрос на обмен
func (s *SwapService) CompleteSwapRequest(c fiber.Ctx) error {
	var requestData struct {
		ID string `json:"id"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	swap, err := s.engine.Complete(ctx, requestData.ID, middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"swap_request": swap})
}
