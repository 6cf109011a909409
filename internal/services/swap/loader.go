package swap

import (
	"context"

	"github.com/gofiber/fiber/v3/log"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// loader подгружает связанные вещи, пользователей и первые сообщения.
// Ошибки только логируются: связанные данные не обязательны для ответа
type loader struct {
	ctx   context.Context
	e     *Engine
	items map[string]*models.Item
	users map[string]*models.User
}

func newLoader(ctx context.Context, e *Engine) *loader {
	return &loader{
		ctx:   ctx,
		e:     e,
		items: make(map[string]*models.Item),
		users: make(map[string]*models.User),
	}
}

func (l *loader) item(id string) *models.Item {
	if item, ok := l.items[id]; ok {
		return item
	}
	item, err := utils.WithRetry(l.ctx, l.e.retry, "получение вещи", func() (*models.Item, error) {
		return l.e.store.GetItem(l.ctx, id)
	})
	if err != nil {
		log.Warnf("Не удалось получить вещь %s: %v", id, err)
		item = nil
	}
	l.items[id] = item
	return item
}

func (l *loader) user(id string) *models.User {
	if user, ok := l.users[id]; ok {
		return user
	}
	user, err := utils.WithRetry(l.ctx, l.e.retry, "получение пользователя", func() (*models.User, error) {
		return l.e.store.GetUser(l.ctx, id)
	})
	if err != nil {
		log.Warnf("Не удалось получить пользователя %s: %v", id, err)
		user = nil
	}
	l.users[id] = user
	return user
}

// preview заполняет вещи и первое сообщение для списка запросов
func (l *loader) preview(swap *models.SwapRequest) {
	swap.Item = l.item(swap.ItemID)
	if swap.OfferedItemID != nil {
		swap.OfferedItem = l.item(*swap.OfferedItemID)
	}

	first, err := utils.WithRetry(l.ctx, l.e.retry, "получение первого сообщения", func() (*models.Message, error) {
		return l.e.store.FirstMessage(l.ctx, swap.ID)
	})
	if err != nil {
		swap.Messages = []models.Message{}
		return
	}
	swap.Messages = []models.Message{*first}
}
