// Package history holds the history record model shared by the store, the
// ranking code and the search session.
package history

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Separators used when the store aggregates the context fields of every
// execution of one command into a single record.
const (
	HostnameSeparator = ","
	SessionSeparator  = ","
	DirSeparator      = "\x1f" // unit separator, since ":" is legal in paths
)

// Record is one executed command. Records are created by the store and never
// mutated once handed to a search session.
type Record struct {
	ID         string `json:"id"`
	Command    string `json:"command"`
	ExitCode   int    `json:"exit_code"`
	Duration   int64  `json:"duration_ms"`  // Execution duration in milliseconds
	Timestamp  int64  `json:"timestamp_ms"` // Unix timestamp in milliseconds
	WorkingDir string `json:"working_dir"`
	SessionID  string `json:"session_id"`
	Hostname   string `json:"hostname"` // host:user
	DeletedAt  *int64 `json:"deleted_at_ms,omitempty"`
}

// CountedRecord is a record together with how many times its command ran.
// For aggregated records Hostname, SessionID and WorkingDir hold every
// distinct value joined by the separators above.
type CountedRecord struct {
	Record *Record
	Count  int
}

// NewRecord creates a record for a command that just finished in ctx.
func NewRecord(command string, exitCode int, duration int64, ctx Context) *Record {
	return &Record{
		ID:         uuid.NewString(),
		Command:    command,
		ExitCode:   exitCode,
		Duration:   duration,
		Timestamp:  time.Now().UnixMilli(),
		WorkingDir: ctx.WorkingDir,
		SessionID:  ctx.SessionID,
		Hostname:   ctx.Hostname,
	}
}

// IsValid validates that the record has the fields the store indexes on.
func (r *Record) IsValid() bool {
	return r != nil &&
		r.ID != "" &&
		strings.TrimSpace(r.Command) != "" &&
		r.SessionID != "" &&
		r.Hostname != "" &&
		r.Timestamp > 0
}

// Time returns the execution time.
func (r *Record) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// Hostnames splits an aggregated hostname field.
func (r *Record) Hostnames() []string {
	return splitNonEmpty(r.Hostname, HostnameSeparator)
}

// Sessions splits an aggregated session field.
func (r *Record) Sessions() []string {
	return splitNonEmpty(r.SessionID, SessionSeparator)
}

// Dirs splits an aggregated working directory field.
func (r *Record) Dirs() []string {
	return splitNonEmpty(r.WorkingDir, DirSeparator)
}

func splitNonEmpty(s, sep string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// QueryOptions bounds a List or Search call.
type QueryOptions struct {
	Limit   int
	Offset  int
	Reverse bool // oldest first
	Unique  bool // one row per command, the newest
}
