package db

import (
	"context"
	"fmt"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
)

const messageColumns = `id, swap_request_id, sender_id, content, created_at`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var msg models.Message
	if err := row.Scan(&msg.ID, &msg.SwapRequestID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &msg, nil
}

// CreateMessage сохраняет сообщение в переписке
func (s *queries) CreateMessage(ctx context.Context, msg *models.Message) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO messages (id, swap_request_id, sender_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, msg.SwapRequestID, msg.SenderID, msg.Content, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("ошибка при сохранении сообщения: %w", err)
	}
	return nil
}

// ListMessages возвращает переписку по обмену в порядке отправки
func (s *queries) ListMessages(ctx context.Context, swapRequestID string) ([]models.Message, error) {
	rows, err := s.q.Query(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE swap_request_id = $1
		ORDER BY created_at ASC, id ASC
	`, swapRequestID)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении сообщений: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при чтении сообщения: %w", err)
		}
		messages = append(messages, *msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}
	return messages, nil
}

// FirstMessage возвращает первое сообщение переписки
func (s *queries) FirstMessage(ctx context.Context, swapRequestID string) (*models.Message, error) {
	row := s.q.QueryRow(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE swap_request_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT 1
	`, swapRequestID)
	msg, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении первого сообщения: %w", err)
	}
	return msg, nil
}
