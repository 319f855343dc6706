package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NeverVane/ccsearch/internal/logger"
)

// Migrator handles database schema migrations
type Migrator struct {
	db     *sql.DB
	schema *DatabaseSchema
	logger *logger.Logger
}

// NewMigrator creates a new database migrator
func NewMigrator(db *sql.DB, schema *DatabaseSchema, log *logger.Logger) *Migrator {
	if log == nil {
		log = logger.GetLogger().Database()
	}
	return &Migrator{
		db:     db,
		schema: schema,
		logger: log,
	}
}

// GetCurrentVersion returns the current schema version from the database
func (m *Migrator) GetCurrentVersion() (int, error) {
	var tableExists int
	checkTableQuery := `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'`
	if err := m.db.QueryRow(checkTableQuery).Scan(&tableExists); err != nil {
		return 0, fmt.Errorf("failed to check if schema_version table exists: %w", err)
	}
	if tableExists == 0 {
		return 0, nil
	}

	var version int
	err := m.db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get current schema version: %w", err)
	}

	return version, nil
}

// InitializeSchema creates the initial database schema
func (m *Migrator) InitializeSchema() error {
	m.logger.Debug().Int("version", m.schema.Version).Msg("Initializing database schema")

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i, table := range m.schema.Tables {
		if _, err := tx.Exec(table); err != nil {
			return fmt.Errorf("failed to create table %d: %w", i, err)
		}
	}

	for i, index := range m.schema.Indexes {
		if _, err := tx.Exec(index); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i, err)
		}
	}

	if err := m.recordSchemaVersion(tx, m.schema.Version, "Initial schema creation"); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema initialization: %w", err)
	}

	m.logger.Info().Int("version", m.schema.Version).Msg("Database schema initialized")
	return nil
}

// MigrateToLatest migrates the database to the latest schema version
func (m *Migrator) MigrateToLatest() error {
	currentVersion, err := m.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	targetVersion := m.schema.Version

	if currentVersion == 0 {
		return m.InitializeSchema()
	}

	if currentVersion == targetVersion {
		m.logger.Debug().Int("version", currentVersion).Msg("Database schema is up to date")
		return nil
	}

	if currentVersion > targetVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", currentVersion, targetVersion)
	}

	for version := currentVersion + 1; version <= targetVersion; version++ {
		if err := m.applyMigration(version); err != nil {
			return fmt.Errorf("failed to apply migration to version %d: %w", version, err)
		}
	}

	return nil
}

func (m *Migrator) applyMigration(version int) error {
	statements, exists := m.schema.Migrations[version]
	if !exists {
		return fmt.Errorf("no migration found for version %d", version)
	}

	m.logger.Info().Int("version", version).Msg("Applying database migration")

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, statement := range statements {
		if _, err := tx.Exec(statement); err != nil {
			return fmt.Errorf("failed to execute migration statement %d for version %d: %w", i, version, err)
		}
	}

	if err := m.recordSchemaVersion(tx, version, fmt.Sprintf("Migration to version %d", version)); err != nil {
		return fmt.Errorf("failed to record migration version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}

	return nil
}

func (m *Migrator) recordSchemaVersion(tx *sql.Tx, version int, description string) error {
	query := `INSERT INTO schema_version (version, applied_at, description) VALUES (?, ?, ?)`
	_, err := tx.Exec(query, version, time.Now().UnixMilli(), description)
	return err
}

// ValidateSchema checks that the required tables and indexes exist and the
// recorded version is supported
func (m *Migrator) ValidateSchema() error {
	for _, table := range m.schema.RequiredTables {
		if err := m.validateObjectExists("table", table); err != nil {
			return fmt.Errorf("table validation failed: %w", err)
		}
	}

	for _, index := range m.schema.RequiredIndexes {
		if err := m.validateObjectExists("index", index); err != nil {
			return fmt.Errorf("index validation failed: %w", err)
		}
	}

	if err := m.validateSchemaVersion(); err != nil {
		return fmt.Errorf("schema version validation failed: %w", err)
	}

	return nil
}

func (m *Migrator) validateObjectExists(kind, name string) error {
	var found string
	err := m.db.QueryRow(`SELECT name FROM sqlite_master WHERE type=? AND name=?`, kind, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("required %s %s does not exist", kind, name)
	}
	if err != nil {
		return fmt.Errorf("failed to check %s %s: %w", kind, name, err)
	}
	return nil
}

func (m *Migrator) validateSchemaVersion() error {
	currentVersion, err := m.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	if currentVersion < MinSupportedVersion {
		return fmt.Errorf("schema version %d is below minimum supported version %d", currentVersion, MinSupportedVersion)
	}

	if currentVersion > m.schema.Version {
		return fmt.Errorf("schema version %d is newer than application version %d", currentVersion, m.schema.Version)
	}

	return nil
}

// GetMigrationHistory returns the migration history
func (m *Migrator) GetMigrationHistory() ([]SchemaVersion, error) {
	rows, err := m.db.Query(`SELECT version, applied_at, description FROM schema_version ORDER BY version ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query migration history: %w", err)
	}
	defer rows.Close()

	var versions []SchemaVersion
	for rows.Next() {
		var sv SchemaVersion
		if err := rows.Scan(&sv.Version, &sv.AppliedAt, &sv.Description); err != nil {
			return nil, fmt.Errorf("failed to scan migration history row: %w", err)
		}
		versions = append(versions, sv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating migration history: %w", err)
	}

	return versions, nil
}

// CheckIntegrity runs PRAGMA integrity_check
func (m *Migrator) CheckIntegrity() error {
	var result string
	if err := m.db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to run integrity check: %w", err)
	}

	if result != "ok" {
		return fmt.Errorf("database integrity check failed: %s", result)
	}

	return nil
}
