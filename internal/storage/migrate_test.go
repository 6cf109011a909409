package storage

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractUpMigration(t *testing.T) {
	content := "-- +migrate Up\nCREATE TABLE a (id TEXT);\n-- +migrate Down\nDROP TABLE a;\n"
	assert.Equal(t, "\nCREATE TABLE a (id TEXT);\n", ExtractUpMigration(content))
	assert.Equal(t, "SELECT 1;", ExtractUpMigration("SELECT 1;"))
	assert.Equal(t, "\nSELECT 1;", ExtractUpMigration("-- +migrate Up\nSELECT 1;"))
}

func TestLoadMigrationsSortsAndSkipsEmpty(t *testing.T) {
	fsys := fstest.MapFS{
		"002_second.sql": {Data: []byte("-- +migrate Up\nSELECT 2;")},
		"001_first.sql":  {Data: []byte("SELECT 1;")},
		"003_empty.sql":  {Data: []byte("-- +migrate Up\n-- +migrate Down\nSELECT 3;")},
		"README.md":      {Data: []byte("ignored")},
	}

	migrations, err := LoadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_first.sql", migrations[0].Name)
	assert.Equal(t, "002_second.sql", migrations[1].Name)
}
