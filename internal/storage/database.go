package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/logger"
)

// ErrDatabaseClosed is returned by operations on a closed Database.
var ErrDatabaseClosed = errors.New("database is closed")

// Database wraps sql.DB with the history schema and connection settings
type Database struct {
	db       *sql.DB
	config   *config.DatabaseConfig
	logger   *logger.Logger
	migrator *Migrator
	path     string
}

// DatabaseOptions contains options for database initialization
type DatabaseOptions struct {
	Config          *config.DatabaseConfig
	Logger          *logger.Logger
	CreateIfMissing bool
	MigrateOnOpen   bool
	ValidateSchema  bool
}

// NewDatabase opens the history database described by cfg
func NewDatabase(cfg *config.Config, opts *DatabaseOptions) (*Database, error) {
	if opts == nil {
		opts = &DatabaseOptions{
			CreateIfMissing: true,
			MigrateOnOpen:   true,
			ValidateSchema:  true,
		}
	}
	if opts.Config == nil {
		opts.Config = &cfg.Database
	}
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().Database()
	}

	db := &Database{
		config: opts.Config,
		logger: log,
		path:   opts.Config.Path,
	}

	if err := db.initialize(opts); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return db, nil
}

func (db *Database) initialize(opts *DatabaseOptions) error {
	if db.path == "" {
		return fmt.Errorf("database path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(db.path), 0700); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	dbExists := true
	if _, err := os.Stat(db.path); os.IsNotExist(err) {
		dbExists = false
		if !opts.CreateIfMissing {
			return fmt.Errorf("database file does not exist: %s", db.path)
		}
	}

	dsn := db.buildConnectionString()
	db.logger.Debug().
		Str("path", db.path).
		Str("dsn", dsn).
		Msg("Opening database connection")

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.db = sqlDB
	db.configureConnectionPool()

	// The file only exists once the first connection is made
	if err := db.ping(); err != nil {
		db.db.Close()
		return fmt.Errorf("database connection test failed: %w", err)
	}

	if err := db.setSecurePermissions(); err != nil {
		db.db.Close()
		return fmt.Errorf("failed to set secure permissions: %w", err)
	}

	db.migrator = NewMigrator(db.db, GetCurrentSchema(), db.logger)

	if !dbExists {
		db.logger.Info().Str("path", db.path).Msg("Creating new database")
		if err := db.migrator.InitializeSchema(); err != nil {
			db.db.Close()
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	} else if opts.MigrateOnOpen {
		db.logger.Debug().Msg("Checking for database migrations")
		if err := db.migrator.MigrateToLatest(); err != nil {
			db.db.Close()
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	if opts.ValidateSchema {
		if err := db.migrator.ValidateSchema(); err != nil {
			db.db.Close()
			return fmt.Errorf("schema validation failed: %w", err)
		}
	}

	db.logger.Debug().
		Str("path", db.path).
		Bool("new_database", !dbExists).
		Msg("Database initialized")

	return nil
}

// buildConnectionString creates the modernc DSN. Pragmas given as _pragma
// parameters run on every new connection of the pool.
func (db *Database) buildConnectionString() string {
	pragmas := []string{
		fmt.Sprintf("busy_timeout(%d)", db.config.BusyTimeoutMS),
		"foreign_keys(1)",
		"synchronous(" + strings.ToUpper(db.config.SyncMode) + ")",
		"temp_store(MEMORY)",
	}
	if db.config.WALMode {
		pragmas = append(pragmas, "journal_mode(WAL)")
	}

	params := make([]string, 0, len(pragmas))
	for _, p := range pragmas {
		params = append(params, "_pragma="+p)
	}

	return "file:" + db.path + "?" + strings.Join(params, "&")
}

func (db *Database) configureConnectionPool() {
	db.db.SetMaxOpenConns(db.config.MaxOpenConns)
	db.db.SetMaxIdleConns(db.config.MaxIdleConns)
	db.db.SetConnMaxLifetime(30 * time.Minute)
	db.db.SetConnMaxIdleTime(5 * time.Minute)
}

// setSecurePermissions restricts the database and its WAL files to the owner
func (db *Database) setSecurePermissions() error {
	if err := os.Chmod(db.path, 0600); err != nil {
		return fmt.Errorf("failed to set database file permissions: %w", err)
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		p := db.path + suffix
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := os.Chmod(p, 0600); err != nil {
			db.logger.Warn().Err(err).Str("file", p).Msg("Failed to set file permissions")
		}
	}

	return nil
}

func (db *Database) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping failed: %w", err)
	}

	var result int
	if err := db.db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("test query failed: %w", err)
	}
	if result != 1 {
		return fmt.Errorf("test query returned unexpected result: %d", result)
	}

	return nil
}

// GetDB returns the underlying sql.DB instance
func (db *Database) GetDB() *sql.DB {
	return db.db
}

// GetMigrator returns the database migrator
func (db *Database) GetMigrator() *Migrator {
	return db.migrator
}

// GetPath returns the database file path
func (db *Database) GetPath() string {
	return db.path
}

// IsConnected returns true if the database connection is active
func (db *Database) IsConnected() bool {
	if db.db == nil {
		return false
	}
	return db.ping() == nil
}

// conn returns the open handle or ErrDatabaseClosed
func (db *Database) conn() (*sql.DB, error) {
	if db == nil || db.db == nil {
		return nil, ErrDatabaseClosed
	}
	return db.db, nil
}

// BeginTx starts a transaction bound to ctx
func (db *Database) BeginTx(ctx context.Context) (*sql.Tx, error) {
	conn, err := db.conn()
	if err != nil {
		return nil, err
	}
	return conn.BeginTx(ctx, nil)
}

// CheckIntegrity runs SQLite's integrity check
func (db *Database) CheckIntegrity() error {
	if _, err := db.conn(); err != nil {
		return err
	}
	return db.migrator.CheckIntegrity()
}

// Close checkpoints the WAL and closes the connection pool
func (db *Database) Close() error {
	if db.db == nil {
		return nil
	}

	db.logger.Debug().Msg("Closing database connection")

	if db.config.WALMode {
		if _, err := db.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			db.logger.Warn().Err(err).Msg("Failed to perform final WAL checkpoint")
		}
	}

	if err := db.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.db = nil
	return nil
}
