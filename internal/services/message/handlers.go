package message

import (
	"github.com/gofiber/fiber/v3"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/middleware"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// MessageService HTTP-обработчики переписки
type MessageService struct {
	messaging *Messaging
}

// NewMessageService создает новый экземпляр MessageService
func NewMessageService(messaging *Messaging) *MessageService {
	return &MessageService{messaging: messaging}
}

// SendMessage отправляет сообщение в переписку по обмену
func (s *MessageService) SendMessage(c fiber.Ctx) error {
	var requestData struct {
		SwapRequestID string `json:"swap_request_id"`
		Content       string `json:"content"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return utils.SendError(c, apperrors.InvalidInput("Неверный формат данных"))
	}

	ctx, cancel := utils.GetContext()
	defer cancel()

	msg, err := s.messaging.Post(ctx, requestData.SwapRequestID, middleware.UserID(c), requestData.Content)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusCreated, fiber.Map{"message": msg})
}

// GetMessages возвращает переписку по обмену
func (s *MessageService) GetMessages(c fiber.Ctx) error {
	ctx, cancel := utils.GetContext()
	defer cancel()

	messages, err := s.messaging.List(ctx, c.Params("id"), middleware.UserID(c))
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendOK(c, fiber.StatusOK, fiber.Map{"messages": messages})
}
