// Package impact считает показатели влияния и значки пользователей.
// Все значения вычисляются при каждом запросе и нигде не хранятся.
package impact

import (
	"context"
	"errors"

	"github.com/rajivgeraev/flippy-swaps/internal/apperrors"
	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
	"github.com/rajivgeraev/flippy-swaps/internal/utils"
)

// CO2PerSwap сэкономленный CO2 в кг на один завершенный обмен
const CO2PerSwap = 5.2

// Accounting расчет показателей влияния
type Accounting struct {
	store   storage.Queries
	retry   utils.RetryPolicy
	catalog []models.Badge
}

// NewAccounting создает новый экземпляр Accounting
func NewAccounting(store storage.Queries, retry utils.RetryPolicy, catalog []models.Badge) *Accounting {
	return &Accounting{store: store, retry: retry, catalog: catalog}
}

// Catalog возвращает все значки
func (a *Accounting) Catalog() []models.Badge {
	return a.catalog
}

// Stats возвращает показатели пользователя
func (a *Accounting) Stats(ctx context.Context, userID string) (*models.ImpactStats, error) {
	if userID == "" {
		return nil, apperrors.Unauthenticated("Пользователь не авторизован")
	}

	user, err := utils.WithRetry(ctx, a.retry, "получение пользователя", func() (*models.User, error) {
		return a.store.GetUser(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apperrors.NotFound("Пользователь не найден")
		}
		return nil, apperrors.Storage("Ошибка получения пользователя", err)
	}

	swaps, err := utils.WithRetry(ctx, a.retry, "подсчет обменов", func() (int, error) {
		return a.store.CountCompletedSwaps(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка подсчета обменов", err)
	}

	items, err := utils.WithRetry(ctx, a.retry, "подсчет вещей", func() (int, error) {
		return a.store.CountItems(ctx, userID)
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка подсчета вещей", err)
	}

	return &models.ImpactStats{
		UserID:         userID,
		SwapsCompleted: swaps,
		ItemsListed:    items,
		CO2Saved:       float64(swaps) * CO2PerSwap,
		ImpactPoints:   user.ImpactPoints,
	}, nil
}

// Badges возвращает показатели и заработанные значки пользователя
func (a *Accounting) Badges(ctx context.Context, userID string) (*models.ImpactStats, []models.Badge, error) {
	stats, err := a.Stats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return stats, Earned(a.catalog, *stats), nil
}

// Community возвращает суммарные показатели сообщества
func (a *Accounting) Community(ctx context.Context) (*models.CommunityStats, error) {
	users, err := utils.WithRetry(ctx, a.retry, "подсчет пользователей", func() (int, error) {
		return a.store.CountUsers(ctx)
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка подсчета пользователей", err)
	}

	items, err := utils.WithRetry(ctx, a.retry, "подсчет вещей", func() (int, error) {
		return a.store.CountItems(ctx, "")
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка подсчета вещей", err)
	}

	swaps, err := utils.WithRetry(ctx, a.retry, "подсчет обменов", func() (int, error) {
		return a.store.CountCompletedSwaps(ctx, "")
	})
	if err != nil {
		return nil, apperrors.Storage("Ошибка подсчета обменов", err)
	}

	return &models.CommunityStats{
		TotalUsers:     users,
		TotalItems:     items,
		SwapsCompleted: swaps,
		CO2Saved:       float64(swaps) * CO2PerSwap,
	}, nil
}
