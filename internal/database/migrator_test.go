package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationNamesAreOrdered(t *testing.T) {
	names, err := MigrationNames()
	require.NoError(t, err)
	require.Equal(t, []string{"001_init.sql", "002_project_changes_notify.sql"}, names)
}

func TestInitMigrationGuardsTrialFloor(t *testing.T) {
	sql, err := ReadMigration("001_init.sql")
	require.NoError(t, err)

	assert.Contains(t, sql, "CHECK (free_clips_remaining >= 0)")
	assert.Contains(t, sql, "UNIQUE (project_id, sort_order)")
	assert.Contains(t, sql, "ON DELETE CASCADE")
	assert.Contains(t, sql, "char_length(title) BETWEEN 1 AND 200")
	assert.Contains(t, sql, "char_length(theme) <= 100")
	assert.Contains(t, sql, "char_length(listing_url) <= 2048")
}

func TestNotifyMigrationUsesListenerChannel(t *testing.T) {
	sql, err := ReadMigration("002_project_changes_notify.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(sql, "pg_notify('project_changes'"))
}

func TestNotifyMigrationSendsBoundedColumns(t *testing.T) {
	sql, err := ReadMigration("002_project_changes_notify.sql")
	require.NoError(t, err)

	assert.NotContains(t, sql, "row_to_json")
	assert.NotContains(t, sql, "'listing_url'")
	assert.Contains(t, sql, "'status', OLD.status")
}

func TestReadMigrationUnknown(t *testing.T) {
	_, err := ReadMigration("999_missing.sql")
	assert.Error(t, err)
}
