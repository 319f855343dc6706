package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
	"github.com/NeverVane/ccsearch/internal/search"
)

const recordColumns = "id, timestamp, duration, exit, command, cwd, session, hostname, deleted_at"

// With one max() aggregate SQLite takes the bare columns from the row
// holding the maximum, so a grouped query yields each command's newest run.
const uniqueColumns = "id, max(timestamp) AS last_run, duration, exit, command, cwd, session, hostname, deleted_at"

// HistoryStore serves history queries for search sessions from the
// SQLite database.
type HistoryStore struct {
	db     *Database
	logger *logger.Logger
}

var _ search.Store = (*HistoryStore)(nil)

// NewHistoryStore creates a store over an open database.
func NewHistoryStore(db *Database) *HistoryStore {
	return &HistoryStore{
		db:     db,
		logger: db.logger,
	}
}

// Save stores one record. A record whose id is already stored is ignored.
func (s *HistoryStore) Save(ctx context.Context, record *history.Record) error {
	return s.SaveBulk(ctx, []*history.Record{record})
}

// SaveBulk stores records in one transaction.
func (s *HistoryStore) SaveBulk(ctx context.Context, records []*history.Record) error {
	for _, r := range records {
		if !r.IsValid() {
			return fmt.Errorf("invalid history record %q", r.Command)
		}
		if len(r.Command) > MaxCommandLength {
			return fmt.Errorf("command exceeds maximum length of %d bytes", MaxCommandLength)
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO history
		(id, timestamp, duration, exit, command, cwd, session, hostname, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		var deletedAt sql.NullInt64
		if r.DeletedAt != nil {
			deletedAt = sql.NullInt64{Int64: *r.DeletedAt, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, r.Timestamp, r.Duration, r.ExitCode, r.Command,
			r.WorkingDir, r.SessionID, r.Hostname, deletedAt,
		); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	s.logger.Debug().Int("records", len(records)).Msg("Saved history records")
	return nil
}

// Delete marks a record as deleted. Deleted records are hidden from every
// query but kept in the table.
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	conn, err := s.db.conn()
	if err != nil {
		return err
	}

	res, err := conn.ExecContext(ctx,
		`UPDATE history SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete record %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("record %s not found", id)
	}
	return nil
}

// HistoryCount returns the number of records not marked deleted.
func (s *HistoryStore) HistoryCount(ctx context.Context) (int64, error) {
	conn, err := s.db.conn()
	if err != nil {
		return 0, err
	}

	var count int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(1) FROM history WHERE deleted_at IS NULL`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return count, nil
}

// List returns the history visible under filter, newest first. With
// opts.Unique only the newest run of each command is returned.
func (s *HistoryStore) List(ctx context.Context, filter modes.FilterMode, hctx history.Context, opts history.QueryOptions) ([]*history.Record, error) {
	q := &selectQuery{}
	q.and("deleted_at IS NULL")
	q.scope(filter, hctx)

	var b strings.Builder
	orderBy := "timestamp"
	if opts.Unique {
		b.WriteString("SELECT " + uniqueColumns + " FROM history")
		orderBy = "last_run"
	} else {
		b.WriteString("SELECT " + recordColumns + " FROM history")
	}
	b.WriteString(q.whereClause())
	if opts.Unique {
		b.WriteString(" GROUP BY command")
	}
	args := page(&b, q.args, orderBy, opts)

	return s.queryRecords(ctx, "list", b.String(), args)
}

// Search returns the newest run of every command matching query under mode,
// restricted to the history visible under filter.
func (s *HistoryStore) Search(ctx context.Context, mode modes.SearchMode, filter modes.FilterMode, hctx history.Context, query string, opts history.QueryOptions) ([]*history.Record, error) {
	q := &selectQuery{}
	q.and("deleted_at IS NULL")
	q.scope(filter, hctx)
	q.matchCommand(mode, query)

	var b strings.Builder
	b.WriteString("SELECT " + uniqueColumns + " FROM history")
	b.WriteString(q.whereClause())
	b.WriteString(" GROUP BY command")
	args := page(&b, q.args, "last_run", opts)

	return s.queryRecords(ctx, "search", b.String(), args)
}

// AllWithCount returns one record per command and exit code with the number
// of runs. Host, session and directory fields hold every value the command
// ran with, joined by the history package separators.
func (s *HistoryStore) AllWithCount(ctx context.Context) ([]history.CountedRecord, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	query := `SELECT id, max(timestamp) AS last_run, duration, exit, command,
		group_concat(cwd, ?), group_concat(session, ?), group_concat(hostname, ?),
		count(*)
		FROM history
		WHERE deleted_at IS NULL
		GROUP BY command, exit
		ORDER BY last_run DESC`

	rows, err := conn.QueryContext(ctx, query,
		history.DirSeparator, history.SessionSeparator, history.HostnameSeparator)
	if err != nil {
		return nil, fmt.Errorf("failed to query history with counts: %w", err)
	}
	defer rows.Close()

	var out []history.CountedRecord
	for rows.Next() {
		r := &history.Record{}
		var count int
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Duration, &r.ExitCode, &r.Command,
			&r.WorkingDir, &r.SessionID, &r.Hostname, &count); err != nil {
			return nil, fmt.Errorf("failed to scan counted record: %w", err)
		}
		out = append(out, history.CountedRecord{Record: r, Count: count})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counted records: %w", err)
	}

	s.logger.Performance("all_with_count", time.Since(start), map[string]interface{}{
		"commands": len(out),
	})
	return out, nil
}

func (s *HistoryStore) queryRecords(ctx context.Context, op, query string, args []interface{}) ([]*history.Record, error) {
	conn, err := s.db.conn()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to %s history: %w", op, err)
	}
	defer rows.Close()

	var records []*history.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}

	s.logger.Performance(op, time.Since(start), map[string]interface{}{
		"rows": len(records),
	})
	return records, nil
}

func scanRecord(rows *sql.Rows) (*history.Record, error) {
	r := &history.Record{}
	var deletedAt sql.NullInt64
	if err := rows.Scan(&r.ID, &r.Timestamp, &r.Duration, &r.ExitCode, &r.Command,
		&r.WorkingDir, &r.SessionID, &r.Hostname, &deletedAt); err != nil {
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}
	if deletedAt.Valid {
		v := deletedAt.Int64
		r.DeletedAt = &v
	}
	return r, nil
}
