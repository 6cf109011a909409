package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
)

const itemColumns = `id, user_id, title, description, condition, category, tags, images, is_available, latitude, longitude, created_at`

func scanItem(row interface{ Scan(...any) error }) (*models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.UserID, &item.Title, &item.Description, &item.Condition,
		&item.Category, &item.Tags, &item.Images, &item.IsAvailable,
		&item.Latitude, &item.Longitude, &item.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}
	return &item, nil
}

// CreateItem сохраняет новую вещь
func (s *queries) CreateItem(ctx context.Context, item *models.Item) error {
	// NULL в TEXT[] нарушает NOT NULL
	if item.Tags == nil {
		item.Tags = []string{}
	}
	if item.Images == nil {
		item.Images = []string{}
	}

	_, err := s.q.Exec(ctx, `
		INSERT INTO items (
			id, user_id, title, description, condition, category,
			tags, images, is_available, latitude, longitude, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		item.ID, item.UserID, item.Title, item.Description, item.Condition, item.Category,
		item.Tags, item.Images, item.IsAvailable, item.Latitude, item.Longitude, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("ошибка при создании вещи: %w", err)
	}
	return nil
}

// GetItem получает вещь по ID
func (s *queries) GetItem(ctx context.Context, id string) (*models.Item, error) {
	row := s.q.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении вещи %s: %w", id, err)
	}
	return item, nil
}

// ListItems возвращает вещи по фильтру, новые первыми
func (s *queries) ListItems(ctx context.Context, filter models.ItemFilter) ([]models.Item, error) {
	// Формируем запрос с учетом фильтров
	query := `SELECT ` + itemColumns + ` FROM items WHERE 1=1`
	var args []any
	argIndex := 1

	if filter.AvailableOnly {
		query += " AND is_available = TRUE"
	}

	if filter.OwnerID != "" {
		query += fmt.Sprintf(" AND user_id = $%d", argIndex)
		args = append(args, filter.OwnerID)
		argIndex++
	}

	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, filter.Category)
		argIndex++
	}

	if q := strings.TrimSpace(filter.Query); q != "" {
		query += fmt.Sprintf(" AND (title ILIKE $%d OR description ILIKE $%d OR $%d = ANY(tags))",
			argIndex, argIndex, argIndex+1)
		tag := filter.TagQuery
		if tag == "" {
			tag = q
		}
		args = append(args, "%"+q+"%", tag)
		argIndex += 2
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = storage.DefaultItemLimit
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", argIndex)
	args = append(args, limit)

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении списка вещей: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка при чтении вещи: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при обработке результатов: %w", err)
	}
	return items, nil
}

// MarkItemUnavailable снимает вещь с обмена
func (s *queries) MarkItemUnavailable(ctx context.Context, id string) error {
	tag, err := s.q.Exec(ctx, `UPDATE items SET is_available = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка при обновлении вещи %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("вещь %s: %w", id, storage.ErrNotFound)
	}
	return nil
}

// CountItems считает вещи владельца или все вещи
func (s *queries) CountItems(ctx context.Context, ownerID string) (int, error) {
	var total int
	var err error
	if ownerID == "" {
		err = s.q.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&total)
	} else {
		err = s.q.QueryRow(ctx, `SELECT COUNT(*) FROM items WHERE user_id = $1`, ownerID).Scan(&total)
	}
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчета вещей: %w", err)
	}
	return total, nil
}
