package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func createTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// firstSchema is the layout written before soft deletion existed.
func firstSchema() *DatabaseSchema {
	s := GetCurrentSchema()
	return &DatabaseSchema{
		Version: 1,
		Tables: []string{
			`CREATE TABLE IF NOT EXISTS history (
				id TEXT PRIMARY KEY,
				timestamp INTEGER NOT NULL,
				duration INTEGER NOT NULL,
				exit INTEGER NOT NULL,
				command TEXT NOT NULL,
				cwd TEXT NOT NULL,
				session TEXT NOT NULL,
				hostname TEXT NOT NULL
			)`,
			s.Tables[1],
		},
		Indexes:         s.Indexes[:4],
		RequiredTables:  s.RequiredTables,
		RequiredIndexes: s.RequiredIndexes,
	}
}

func TestGetCurrentSchema(t *testing.T) {
	schema := GetCurrentSchema()

	assert.Equal(t, CurrentSchemaVersion, schema.Version)
	assert.Len(t, schema.Tables, 2)
	assert.Contains(t, schema.Tables[0], "deleted_at INTEGER")
	assert.Contains(t, schema.Migrations, CurrentSchemaVersion)
}

func TestMigrator_InitializeSchema(t *testing.T) {
	db := createTestDB(t)
	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))

	version, err := m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	require.NoError(t, m.InitializeSchema())
	require.NoError(t, m.ValidateSchema())

	version, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)
}

func TestMigrator_MigrateToLatest_FreshDatabase(t *testing.T) {
	db := createTestDB(t)
	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))

	require.NoError(t, m.MigrateToLatest())
	require.NoError(t, m.MigrateToLatest(), "second run is a no-op")

	history, err := m.GetMigrationHistory()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "Initial schema creation", history[0].Description)
}

func TestMigrator_MigrateToLatest_FromFirstVersion(t *testing.T) {
	db := createTestDB(t)
	require.NoError(t, NewMigrator(db, firstSchema(), quietLogger(t)).InitializeSchema())

	_, err := db.Exec(`INSERT INTO history (id, timestamp, duration, exit, command, cwd, session, hostname)
		VALUES ('a', 1, 0, 0, 'ls', '/', 's', 'h:u')`)
	require.NoError(t, err)

	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))
	require.NoError(t, m.MigrateToLatest())
	require.NoError(t, m.ValidateSchema())

	var deletedAt sql.NullInt64
	require.NoError(t, db.QueryRow(`SELECT deleted_at FROM history WHERE id = 'a'`).Scan(&deletedAt))
	assert.False(t, deletedAt.Valid)

	history, err := m.GetMigrationHistory()
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[1].Version)
}

func TestMigrator_RejectsNewerDatabase(t *testing.T) {
	db := createTestDB(t)
	newer := GetCurrentSchema()
	newer.Version = CurrentSchemaVersion + 1
	require.NoError(t, NewMigrator(db, newer, quietLogger(t)).InitializeSchema())

	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))
	assert.Error(t, m.MigrateToLatest())
	assert.Error(t, m.ValidateSchema())
}

func TestMigrator_ValidateSchema_MissingTable(t *testing.T) {
	db := createTestDB(t)
	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))

	err := m.ValidateSchema()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history")
}

func TestMigrator_CheckIntegrity(t *testing.T) {
	db := createTestDB(t)
	m := NewMigrator(db, GetCurrentSchema(), quietLogger(t))
	require.NoError(t, m.InitializeSchema())

	assert.NoError(t, m.CheckIntegrity())
}
