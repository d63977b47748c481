package main

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repoMigrationsDir(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	require.True(t, ok, "runtime.Caller failed")
	return filepath.Join(filepath.Dir(thisFile), "..", "..", "db", "migrations")
}

// splitGoose returns the Up and Down sections of a goose SQL migration.
func splitGoose(t *testing.T, sql string) (up, down string) {
	t.Helper()
	_, rest, ok := strings.Cut(sql, "-- +goose Up")
	require.True(t, ok, "missing '-- +goose Up'")
	up, down, ok = strings.Cut(rest, "-- +goose Down")
	require.True(t, ok, "missing '-- +goose Down'")
	return up, down
}

func TestMigrations_Collect(t *testing.T) {
	migrations, err := goose.CollectMigrations(repoMigrationsDir(t), 0, goose.MaxVersion)
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Equal(t, int64(1), migrations[0].Version)
}

func TestMigrations_KVStoreSchema(t *testing.T) {
	b, err := os.ReadFile(filepath.Join(repoMigrationsDir(t), "00001_create_kv_store.sql"))
	require.NoError(t, err)

	up, down := splitGoose(t, string(b))

	assert.Regexp(t, regexp.MustCompile(`(?i)CREATE TABLE IF NOT EXISTS kv_store`), up)
	for _, column := range []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bkey\s+TEXT\s+PRIMARY KEY`),
		regexp.MustCompile(`(?i)\bvalue\s+TEXT\s+NOT NULL`),
		regexp.MustCompile(`(?i)\bupdated_at\s+TIMESTAMPTZ\s+NOT NULL`),
	} {
		assert.Regexp(t, column, up)
	}
	assert.Regexp(t, regexp.MustCompile(`(?i)DROP TABLE IF EXISTS kv_store`), down)
	assert.NotContains(t, strings.ToUpper(down), "CREATE")
}

func TestMigrations_EverySQLFileReversible(t *testing.T) {
	dir := repoMigrationsDir(t)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".sql" {
			continue
		}
		t.Run(e.Name(), func(t *testing.T) {
			b, err := os.ReadFile(filepath.Join(dir, e.Name()))
			require.NoError(t, err)

			up, down := splitGoose(t, string(b))
			assert.NotEmpty(t, strings.TrimSpace(up))
			assert.NotEmpty(t, strings.TrimSpace(down))
		})
	}
}
