package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/rajivgeraev/flippy-swaps/internal/models"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
)

const userColumns = `id, telegram_id, email, first_name, last_name, profile_image, impact_points, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.TelegramID, &user.Email, &user.FirstName, &user.LastName,
		&user.ProfileImage, &user.ImpactPoints, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// GetUser получает пользователя по ID
func (s *queries) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := s.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при получении пользователя %s: %w", id, err)
	}
	return user, nil
}

// EnsureUser создает пользователя при первом обращении
func (s *queries) EnsureUser(ctx context.Context, identity models.Identity) (*models.User, error) {
	_, err := s.q.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, profile_image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, identity.ID, identity.Email, identity.FirstName, identity.LastName, identity.Picture)
	if err != nil {
		return nil, fmt.Errorf("ошибка при создании пользователя: %w", err)
	}
	return s.GetUser(ctx, identity.ID)
}

// UpsertTelegramUser создает пользователя Telegram или обновляет его профиль
func (s *queries) UpsertTelegramUser(ctx context.Context, tgUser storage.TelegramUser) (*models.User, error) {
	row := s.q.QueryRow(ctx, `
		INSERT INTO users (id, telegram_id, first_name, last_name, profile_image)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (telegram_id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			profile_image = EXCLUDED.profile_image,
			updated_at = NOW()
		RETURNING `+userColumns,
		uuid.NewString(), tgUser.TelegramID, tgUser.FirstName, tgUser.LastName, tgUser.PhotoURL)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка при сохранении Telegram пользователя: %w", err)
	}
	return user, nil
}

// AddImpactPoints увеличивает очки влияния пользователя
func (s *queries) AddImpactPoints(ctx context.Context, userID string, delta int) error {
	tag, err := s.q.Exec(ctx, `
		UPDATE users
		SET impact_points = impact_points + $1, updated_at = NOW()
		WHERE id = $2
	`, delta, userID)
	if err != nil {
		return fmt.Errorf("ошибка при начислении очков пользователю %s: %w", userID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("пользователь %s: %w", userID, storage.ErrNotFound)
	}
	return nil
}

// CountUsers возвращает количество пользователей
func (s *queries) CountUsers(ctx context.Context) (int, error) {
	var total int
	if err := s.q.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета пользователей: %w", err)
	}
	return total, nil
}
