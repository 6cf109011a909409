package migrations

import "embed"

// FS миграции схемы Postgres
//
//go:embed *.sql
var FS embed.FS
