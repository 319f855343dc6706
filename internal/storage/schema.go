package storage

// DatabaseSchema contains all SQL statements for database initialization
type DatabaseSchema struct {
	// Current schema version
	Version int

	// DDL statements
	Tables  []string
	Indexes []string

	// Statements upgrading from version-1 to the keyed version
	Migrations map[int][]string

	// Objects ValidateSchema requires
	RequiredTables  []string
	RequiredIndexes []string
}

// SchemaVersion represents the schema version tracking
type SchemaVersion struct {
	Version     int    `db:"version"`
	AppliedAt   int64  `db:"applied_at"`
	Description string `db:"description"`
}

// Constants for database constraints and limits
const (
	MaxCommandLength = 65536

	// Schema version constants
	CurrentSchemaVersion = 2
	MinSupportedVersion  = 1
)

// GetCurrentSchema returns the current database schema
func GetCurrentSchema() *DatabaseSchema {
	return &DatabaseSchema{
		Version: CurrentSchemaVersion,
		Tables: []string{
			`CREATE TABLE IF NOT EXISTS history (
				id TEXT PRIMARY KEY,
				timestamp INTEGER NOT NULL,
				duration INTEGER NOT NULL,
				exit INTEGER NOT NULL,
				command TEXT NOT NULL,
				cwd TEXT NOT NULL,
				session TEXT NOT NULL,
				hostname TEXT NOT NULL,
				deleted_at INTEGER
			)`,

			`CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at INTEGER NOT NULL,
				description TEXT
			)`,
		},

		Indexes: []string{
			`CREATE INDEX IF NOT EXISTS idx_history_timestamp ON history(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_history_command ON history(command)`,
			`CREATE INDEX IF NOT EXISTS idx_history_session ON history(session)`,
			`CREATE INDEX IF NOT EXISTS idx_history_hostname ON history(hostname)`,
			`CREATE INDEX IF NOT EXISTS idx_history_cwd ON history(cwd)`,
			`CREATE INDEX IF NOT EXISTS idx_history_command_timestamp ON history(command, timestamp)`,
		},

		Migrations: map[int][]string{
			2: {
				`ALTER TABLE history ADD COLUMN deleted_at INTEGER`,
				`CREATE INDEX IF NOT EXISTS idx_history_cwd ON history(cwd)`,
				`CREATE INDEX IF NOT EXISTS idx_history_command_timestamp ON history(command, timestamp)`,
			},
		},

		RequiredTables: []string{"history", "schema_version"},
		RequiredIndexes: []string{
			"idx_history_timestamp",
			"idx_history_command",
			"idx_history_session",
			"idx_history_hostname",
		},
	}
}
