package message

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// ParticipantGuard проверяет участие пользователя в запросе на обмен
type ParticipantGuard interface {
	AuthorizeParticipant(ctx context.Context, swapRequestID, userID string) (*models.SwapRequest, error)
}

// Messaging переписка по запросу на обмен
type Messaging struct {
	store storage.Queries
	guard ParticipantGuard
	retry utils.RetryPolicy
	now   func() time.Time
}

// NewMessaging создает новый экземпляр Messaging
func NewMessaging(store storage.Queries, guard ParticipantGuard, retry utils.RetryPolicy) *Messaging {
	return &Messaging{
		store: store,
		guard: guard,
		retry: retry,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Post добавляет сообщение участника в переписку. Статус обмена не проверяется
func (m *Messaging) Post(ctx context.Context, swapRequestID, senderID, content string) (*models.Message, error) {
	if senderID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}
	swapRequestID = strings.TrimSpace(swapRequestID)
	if swapRequestID == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID запроса на обмен")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.InvalidInput("Сообщение не может быть пустым")
	}

	if _, err := m.guard.AuthorizeParticipant(ctx, swapRequestID, senderID); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Storage("Ошибка генерации ID", err)
	}
	msg := &models.Message{
		ID:            id.String(),
		SwapRequestID: swapRequestID,
		SenderID:      senderID,
		Content:       content,
		CreatedAt:     m.now(),
	}
	if err := m.store.CreateMessage(ctx, msg); err != nil {
		return nil, apperrors.Storage("Ошибка сохранения сообщения", err)
	}

	log.Infof("Сообщение %s добавлено в обмен %s", msg.ID, swapRequestID)
	return msg, nil
}

// List возвращает переписку по обмену в порядке отправки
func (m *Messaging) List(ctx context.Context, swapRequestID, callerID string) ([]models.Message, error) {
	if _, err := m.guard.AuthorizeParticipant(ctx, swapRequestID, callerID); err != nil {
		return nil, err
	}

	messages, err := utils.WithRetry(ctx, m.retry, "получение сообщений", func() ([]models.Message, error) {
		return m.store.ListMessages(ctx, swapRequestID)
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка получения сообщений", err)
	}
	return messages, nil
}
