package db

import (
	"context"
	"fmt"
	"time"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

const swapColumns = `id, requester_id, receiver_id, item_id, offered_item_id, status, created_at, updated_at`

func scanSwap(row interface{ Scan(...any) error }) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	err := row.Scan(
		&swap.ID, &swap.RequesterID, &swap.ReceiverID, &swap.ItemID,
		&swap.OfferedItemID, &swap.Status, &swap.CreatedAt, &swap.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &swap, nil
}

// CreateSwapRequest сохраняет новый запрос на обмен
func (s *queries) CreateSwapRequest(ctx context.Context, swap *models.SwapRequest) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO swap_requests (
			id, requester_id, receiver_id, item_id, offered_item_id, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		swap.ID, swap.RequesterID, swap.ReceiverID, swap.ItemID,
		swap.OfferedItemID, swap.Status, swap.CreatedAt, swap.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при создании запроса на обмен: %w", err)
	}
	return nil
}

// GetSwapRequest получает запрос на обмен по ID
func (s *queries) GetSwapRequest(ctx context.Context, id string) (*models.SwapRequest, error) {
	row := s.q.QueryRow(ctx, `SELECT `+swapColumns+` FROM swap_requests WHERE id = $1`, id)
	swap, err := scanSwap(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении запроса на обмен %s: %w", id, err)
	}
	return swap, nil
}

// ListSwapRequestsByRequester исходящие запросы пользователя, новые первыми
func (s *queries) ListSwapRequestsByRequester(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	return s.listSwaps(ctx, `requester_id`, userID)
}

// ListSwapRequestsByReceiver входящие запросы пользователя, новые первыми
func (s *queries) ListSwapRequestsByReceiver(ctx context.Context, userID string) ([]models.SwapRequest, error) {
	return s.listSwaps(ctx, `receiver_id`, userID)
}

func (s *queries) listSwaps(ctx context.Context, column, userID string) ([]models.SwapRequest, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+swapColumns+`
		FROM swap_requests
		WHERE `+column+` = $1
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении запросов на обмен: %w", err)
	}
	defer rows.Close()

	swaps := []models.SwapRequest{}
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при чтении запроса на обмен: %w", err)
		}
		swaps = append(swaps, *swap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}
	return swaps, nil
}

// UpdateSwapStatus переводит статус, если текущий равен from
func (s *queries) UpdateSwapStatus(ctx context.Context, id string, from, to models.SwapStatus, at time.Time) (bool, error) {
	tag, err := s.q.Exec(ctx, `
		UPDATE swap_requests
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
	`, to, at, id, from)
	if err != nil {
		return false, fmt.Errorf("ошибка при обновлении статуса обмена %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// CountCompletedSwaps считает завершенные обмены пользователя или всего сообщества
func (s *queries) CountCompletedSwaps(ctx context.Context, userID string) (int, error) {
	var total int
	var err error
	if userID == "" {
		err = s.q.QueryRow(ctx, `
			SELECT COUNT(*) FROM swap_requests WHERE status = 'completed'
		`).Scan(&total)
	} else {
		// Обмен с самим собой учитывается дважды: как инициатор и как получатель
		err = s.q.QueryRow(ctx, `
			SELECT
				(SELECT COUNT(*) FROM swap_requests WHERE status = 'completed' AND requester_id = $1) +
				(SELECT COUNT(*) FROM swap_requests WHERE status = 'completed' AND receiver_id = $1)
		`, userID).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета завершенных обменов: %w", err)
	}
	return total, nil
}
