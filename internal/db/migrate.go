package db

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3/log"

	"github.com/rajivgeraev/flippy-swaps/internal/db/migrations"
	"github.com/rajivgeraev/flippy-swaps/internal/storage"
)

// Migrate применяет встроенные миграции, каждую не более одного раза
func (s *Store) Migrate(ctx context.Context) error {
	list, err := storage.LoadMigrations(migrations.FS)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS `+storage.MigrationTable+` (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("ошибка при создании таблицы миграций: %w", err)
	}

	for _, m := range list {
		err := s.InTx(ctx, func(q storage.Queries) error {
			tx := q.(*queries).q

			tag, err := tx.Exec(ctx, `
				INSERT INTO `+storage.MigrationTable+` (name) VALUES ($1)
				ON CONFLICT (name) DO NOTHING
			`, m.Name)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return nil // Миграция уже применена
			}

			if _, err := tx.Exec(ctx, m.Up); err != nil {
				return err
			}
			log.Infof("Применена миграция %s", m.Name)
			return nil
		})
		if err != nil {
			return fmt.Errorf("ошибка миграции %s: %w", m.Name, err)
		}
	}
	return nil
}
