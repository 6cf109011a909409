// Package storage описывает контракт постоянного хранилища сервиса обменов.
// Реализации: internal/db (Postgres) и internal/db/sqlite (встроенная SQLite).
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

// ErrNotFound запись не найдена
var ErrNotFound = errors.New("record not found")

// TelegramUser данные пользователя из Telegram init data
type TelegramUser struct {
	TelegramID int64
	FirstName  string
	LastName   string
	PhotoURL   string
}

// Queries операции чтения и записи, доступные и вне, и внутри транзакции
type Queries interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	// EnsureUser создаёт пользователя при первом обращении и не меняет существующего
	EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error)
	UpsertTelegramUser(ctx context.Context, tgUser TelegramUser) (*models.User, error)
	AddImpactPoints(ctx context.Context, userID string, delta int) error
	CountUsers(ctx context.Context) (int, error)

	CreateItem(ctx context.Context, item *models.Item) error
	GetItem(ctx context.Context, id string) (*models.Item, error)
	ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error)
	MarkItemUnavailable(ctx context.Context, id string) error
	// CountItems считает вещи владельца, для пустого ownerID считаются все вещи
	CountItems(ctx context.Context, ownerID string) (int, error)

	CreateSwapRequest(ctx context.Context, swap *models.SwapRequest) error
	GetSwapRequest(ctx context.Context, id string) (*models.SwapRequest, error)
	ListSwapRequestsByRequester(ctx context.Context, userID string) ([]models.SwapRequest, error)
	ListSwapRequestsByReceiver(ctx context.Context, userID string) ([]models.SwapRequest, error)
	// UpdateSwapStatus меняет статус только если текущий равен from.
	// Возвращает false, если строка не обновлена
	UpdateSwapStatus(ctx context.Context, id string, from, to models.SwapStatus, at time.Time) (bool, error)
	// CountCompletedSwaps для пользователя суммирует завершённые обмены, где он
	// инициатор, и где он получатель. Для пустого userID считаются все завершённые обмены
	CountCompletedSwaps(ctx context.Context, userID string) (int, error)

	CreateMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, swapRequestID string) ([]models.Message, error)
	FirstMessage(ctx context.Context, swapRequestID string) (*models.Message, error)
}

// Store хранилище с поддержкой транзакций
type Store interface {
	Queries
	// InTx выполняет fn в одной транзакции. Ошибка fn откатывает транзакцию
	InTx(ctx context.Context, fn func(q Queries) error) error
	Close() error
}

// DefaultItemLimit ограничение выборки каталога по умолчанию
const DefaultItemLimit = 100
