package swap

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/log"
	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// DefaultPointsPerSwap очки влияния каждому участнику завершённого обмена
const DefaultPointsPerSwap = 10

// Engine управляет жизненным циклом запросов на обмен
type Engine struct {
	store         storage.Store
	retry         utils.RetryPolicy
	pointsPerSwap int
	now           func() time.Time
}

// NewEngine создает новый экземпляр Engine
func NewEngine(store storage.Store, retry utils.RetryPolicy, pointsPerSwap int) *Engine {
	if pointsPerSwap <= 0 {
		pointsPerSwap = DefaultPointsPerSwap
	}
	return &Engine{
		store:         store,
		retry:         retry,
		pointsPerSwap: pointsPerSwap,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput данные для создания запроса на обмен
type CreateInput struct {
	ItemID        string
	ReceiverID    string
	RequesterID   string
	Message       string
	OfferedItemID string
}

// Create создает запрос на обмен и, если задано, первое сообщение
func (e *Engine) Create(ctx context.Context, in CreateInput) (*models.SwapRequest, error) {
	if in.RequesterID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}
	in.ItemID = strings.TrimSpace(in.ItemID)
	in.ReceiverID = strings.TrimSpace(in.ReceiverID)
	in.OfferedItemID = strings.TrimSpace(in.OfferedItemID)
	if in.ItemID == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID вещи")
	}
	if in.ReceiverID == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID получателя")
	}

	swapID, err := uuid.NewV7()
	if err != nil {
		return nil, apperrors.Storage("Ошибка генерации ID", err)
	}

	now := e.now()
	swap := &models.SwapRequest{
		ID:          swapID.String(),
		RequesterID: in.RequesterID,
		ReceiverID:  in.ReceiverID,
		ItemID:      in.ItemID,
		Status:      models.SwapPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.OfferedItemID != "" {
		offered := in.OfferedItemID
		swap.OfferedItemID = &offered
	}

	err = e.store.InTx(ctx, func(q storage.Queries) error {
		// Проверяем, что запрашиваемая вещь существует и принадлежит получателю
		item, err := q.GetItem(ctx, in.ItemID)
		if err != nil {
			return classify(err, "Вещь не найдена")
		}
		if item.UserID != in.ReceiverID {
			return apperrors.InvalidInput("Вещь не принадлежит указанному получателю")
		}

		// Предложенная вещь должна принадлежать инициатору
		if swap.OfferedItemID != nil {
			offered, err := q.GetItem(ctx, *swap.OfferedItemID)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return apperrors.Storage("Ошибка проверки предложенной вещи", err)
			}
			if offered == nil || offered.UserID != in.RequesterID {
				return apperrors.NotFound("Предложенная вещь не найдена или не принадлежит вам")
			}
		}

		if err := q.CreateSwapRequest(ctx, swap); err != nil {
			return apperrors.Storage("Ошибка сохранения запроса на обмен", err)
		}

		if content := strings.TrimSpace(in.Message); content != "" {
			msgID, err := uuid.NewV7()
			if err != nil {
				return apperrors.Storage("Ошибка генерации ID", err)
			}
			msg := models.Message{
				ID:            msgID.String(),
				SwapRequestID: swap.ID,
				SenderID:      in.RequesterID,
				Content:       content,
				CreatedAt:     now,
			}
			if err := q.CreateMessage(ctx, &msg); err != nil {
				return apperrors.Storage("Ошибка сохранения сообщения", err)
			}
			swap.Messages = []models.Message{msg}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "")
	}

	log.Infof("Создан запрос на обмен %s: %s -> %s", swap.ID, swap.RequesterID, swap.ReceiverID)
	return swap, nil
}

// Transition переводит запрос в новый статус.
// Завершение применяет побочные эффекты в той же транзакции
func (e *Engine) Transition(ctx context.Context, id, actingUserID string, target models.SwapStatus) (*models.SwapRequest, error) {
	if actingUserID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}
	if !IsTargetStatus(target) {
		return nil, apperrors.InvalidInput("Недопустимый статус")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID запроса на обмен")
	}

	var updated *models.SwapRequest
	err := e.store.InTx(ctx, func(q storage.Queries) error {
		swap, err := q.GetSwapRequest(ctx, id)
		if err != nil {
			return classify(err, "Запрос на обмен не найден")
		}
		if err := assertReceiver(swap, actingUserID); err != nil {
			return err
		}
		if !CanTransition(swap.Status, target) {
			return invalidTransition(swap.Status, target)
		}

		at := e.now()
		ok, err := q.UpdateSwapStatus(ctx, swap.ID, swap.Status, target, at)
		if err != nil {
			return apperrors.Storage("Ошибка обновления статуса", err)
		}
		if !ok {
			// Статус успел измениться в параллельном запросе
			return apperrors.InvalidState("Статус запроса уже изменен")
		}

		if target == models.SwapCompleted {
			if err := e.applyCompletion(ctx, q, swap); err != nil {
				return err
			}
		}

		swap.Status = target
		swap.UpdatedAt = at
		updated = swap
		return nil
	})
	if err != nil {
		return nil, classify(err, "")
	}

	log.Infof("Запрос на обмен %s переведен в статус %s", updated.ID, updated.Status)
	return updated, nil
}

// Complete завершает принятый запрос на обмен
func (e *Engine) Complete(ctx context.Context, id, actingUserID string) (*models.SwapRequest, error) {
	return e.Transition(ctx, id, actingUserID, models.SwapCompleted)
}

// applyCompletion снимает вещи с обмена и начисляет очки обоим участникам
func (e *Engine) applyCompletion(ctx context.Context, q storage.Queries, swap *models.SwapRequest) error {
	if err := q.MarkItemUnavailable(ctx, swap.ItemID); err != nil {
		return apperrors.Storage("Ошибка обновления доступности вещи", err)
	}
	if swap.OfferedItemID != nil {
		if err := q.MarkItemUnavailable(ctx, *swap.OfferedItemID); err != nil {
			return apperrors.Storage("Ошибка обновления доступности предложенной вещи", err)
		}
	}
	for _, userID := range []string{swap.RequesterID, swap.ReceiverID} {
		if err := q.AddImpactPoints(ctx, userID, e.pointsPerSwap); err != nil {
			return apperrors.Storage("Ошибка начисления очков влияния", err)
		}
	}
	return nil
}

// AuthorizeParticipant возвращает запрос, если пользователь его участник
func (e *Engine) AuthorizeParticipant(ctx context.Context, id, userID string) (*models.SwapRequest, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Необходимо указать ID запроса на обмен")
	}

	swap, err := utils.WithRetry(ctx, e.retry, "получение запроса на обмен", func() (*models.SwapRequest, error) {
		return e.store.GetSwapRequest(ctx, id)
	})
	if err != nil {
		return nil, classify(err, "Запрос на обмен не найден")
	}
	if err := assertParticipant(swap, userID); err != nil {
		return nil, err
	}
	return swap, nil
}

// GetByID возвращает запрос с вещами, участниками и перепиской.
// Ошибка хранилища отдается как NotFound
func (e *Engine) GetByID(ctx context.Context, id, callerID string) (*models.SwapRequest, error) {
	swap, err := e.AuthorizeParticipant(ctx, id, callerID)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeStorageFailure {
			log.Errorf("Ошибка получения запроса на обмен %s: %v", id, err)
			return nil, apperrors.NotFound("Запрос на обмен не найден")
		}
		return nil, err
	}

	l := newLoader(ctx, e)
	swap.Item = l.item(swap.ItemID)
	if swap.OfferedItemID != nil {
		swap.OfferedItem = l.item(*swap.OfferedItemID)
	}
	swap.Requester = l.user(swap.RequesterID)
	swap.Receiver = l.user(swap.ReceiverID)

	messages, err := utils.WithRetry(ctx, e.retry, "получение сообщений", func() ([]models.Message, error) {
		return e.store.ListMessages(ctx, swap.ID)
	})
	if err != nil {
		log.Errorf("Ошибка получения сообщений обмена %s: %v", swap.ID, err)
		messages = []models.Message{}
	}
	for i := range messages {
		messages[i].Sender = l.user(messages[i].SenderID)
	}
	swap.Messages = messages
	return swap, nil
}

// ListForUser возвращает исходящие и входящие запросы пользователя, новые первыми.
// Ошибки хранилища дают пустые списки
func (e *Engine) ListForUser(ctx context.Context, userID string) (*models.SwapList, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}

	sent, err := utils.WithRetry(ctx, e.retry, "получение исходящих запросов", func() ([]models.SwapRequest, error) {
		return e.store.ListSwapRequestsByRequester(ctx, userID)
	})
	if err != nil {
		log.Errorf("Ошибка получения исходящих запросов пользователя %s: %v", userID, err)
		sent = []models.SwapRequest{}
	}

	received, err := utils.WithRetry(ctx, e.retry, "получение входящих запросов", func() ([]models.SwapRequest, error) {
		return e.store.ListSwapRequestsByReceiver(ctx, userID)
	})
	if err != nil {
		log.Errorf("Ошибка получения входящих запросов пользователя %s: %v", userID, err)
		received = []models.SwapRequest{}
	}

	l := newLoader(ctx, e)
	for i := range sent {
		l.preview(&sent[i])
		sent[i].Receiver = l.user(sent[i].ReceiverID)
	}
	for i := range received {
		l.preview(&received[i])
		received[i].Requester = l.user(received[i].RequesterID)
	}

	return &models.SwapList{Sent: sent, Received: received}, nil
}

// classify переводит ошибку хранилища в доменную
func classify(err error, notFoundMessage string) error {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, storage.ErrNotFound) && notFoundMessage != "" {
		return apperrors.NotFound(notFoundMessage)
	}
	return apperrors.Storage("Ошибка базы данных", err)
}

func invalidTransition(from, to models.SwapStatus) error {
	if to == models.SwapCompleted && from != models.SwapAccepted {
		return apperrors.InvalidState("Завершить можно только принятый запрос на обмен")
	}
	return apperrors.InvalidState("Недопустимый переход статуса из " + string(from) + " в " + string(to))
}
