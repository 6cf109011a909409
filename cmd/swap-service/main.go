package main

import (
	"context"
	"os"

	"github.com/gofiber/fiber/v3/log"
	"github.com/spf13/cobra"

	"github.com/rajivgeraev/flippy-swaps/internal/config"
	"github.com/rajivgeraev/flippy-swaps/internal/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "flippy-swaps",
		Short:        "Flippy Swaps - обмен вещами в сообществе",
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newMigrateCommand())
	return cmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Запустить HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Загружаем конфигурацию
			cfg, err := config.LoadConfig()
			if err != nil {
				log.Fatalf("❌ Ошибка конфигурации: %v", err)
			}

			store, err := server.OpenStore(context.Background(), cfg)
			if err != nil {
				log.Fatalf("❌ Ошибка при инициализации хранилища: %v", err)
			}
			defer store.Close()

			app, err := server.New(cfg, store)
			if err != nil {
				return err
			}

			// Запускаем сервер
			log.Infof("✅ Flippy Swaps запущен на порту %s (%s)", cfg.Port, cfg.StorageDriver)
			return app.Listen(":" + cfg.Port)
		},
	}
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Применить миграции и выйти",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			store, err := server.OpenStore(context.Background(), cfg)
			if err != nil {
				return err
			}
			log.Infof("✅ Миграции применены (%s)", cfg.StorageDriver)
			return store.Close()
		},
	}
}
