package storage

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// MigrationTable таблица учета примененных миграций
const MigrationTable = "schema_migrations"

// Migration одна миграция схемы
type Migration struct {
	Name string
	Up   string
}

// LoadMigrations читает *.sql из корня migrationFS в порядке имен
func LoadMigrations(migrationFS fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		content, err := fs.ReadFile(migrationFS, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		up := ExtractUpMigration(string(content))
		if strings.TrimSpace(up) == "" {
			continue
		}
		migrations = append(migrations, Migration{Name: name, Up: up})
	}
	return migrations, nil
}

// ExtractUpMigration возвращает SQL из секции -- +migrate Up
func ExtractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}
