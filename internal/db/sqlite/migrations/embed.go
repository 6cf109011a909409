package migrations

import "embed"

// FS миграции схемы SQLite
//
//go:embed *.sql
var FS embed.FS
