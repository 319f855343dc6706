package history

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/NeverVane/ccsearch/internal/logger"
)

// importNamespace seeds the deterministic ids of imported records so that
// importing the same file twice stores every command once.
var importNamespace = uuid.MustParse("6f1c2a52-5d0c-4b7e-9a43-3c1f0b9e7d21")

const importBatchSize = 1000

// Saver stores records in bulk.
type Saver interface {
	SaveBulk(ctx context.Context, records []*Record) error
}

// ImportOptions contains options for history import operations
type ImportOptions struct {
	Deduplicate      bool
	MaxRecords       int
	MaxCommandLength int
	SessionID        string
	Hostname         string
	// Now anchors the timestamps of commands without one. Defaults to time.Now.
	Now func() time.Time
}

// ImportResult contains the result of an import operation
type ImportResult struct {
	TotalRecords    int
	ImportedRecords int
	SkippedRecords  int
}

type importedLine struct {
	command   string
	timestamp int64 // ms, 0 when unknown
	duration  int64 // ms
}

// ImportFile reads the history file of shell and stores its commands.
func ImportFile(ctx context.Context, saver Saver, shell, path string, opts *ImportOptions) (*ImportResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s history file: %w", shell, err)
	}
	defer file.Close()

	return Import(ctx, saver, shell, file, opts)
}

// Import parses a bash or zsh history stream and stores its commands, oldest
// first. Commands without a timestamp are placed one millisecond apart ending
// just before Now so their order survives.
func Import(ctx context.Context, saver Saver, shell string, r io.Reader, opts *ImportOptions) (*ImportResult, error) {
	var parse func(io.Reader) ([]importedLine, error)
	switch strings.ToLower(shell) {
	case "bash":
		parse = parseBash
	case "zsh":
		parse = parseZsh
	default:
		return nil, fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}

	if opts == nil {
		opts = &ImportOptions{Deduplicate: true}
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	hostname := opts.Hostname
	if hostname == "" {
		hostname = HostID()
	}

	lines, err := parse(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %s history: %w", shell, err)
	}

	log := logger.GetLogger().WithComponent("import")
	result := &ImportResult{TotalRecords: len(lines)}
	base := now().UnixMilli() - int64(len(lines))
	seen := make(map[string]bool)
	batch := make([]*Record, 0, importBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := saver.SaveBulk(ctx, batch); err != nil {
			return fmt.Errorf("failed to store imported commands: %w", err)
		}
		result.ImportedRecords += len(batch)
		batch = batch[:0]
		return nil
	}

	for i, line := range lines {
		if opts.MaxRecords > 0 && result.ImportedRecords+len(batch) >= opts.MaxRecords {
			result.SkippedRecords += len(lines) - i
			break
		}
		if strings.TrimSpace(line.command) == "" ||
			(opts.MaxCommandLength > 0 && len(line.command) > opts.MaxCommandLength) {
			result.SkippedRecords++
			continue
		}
		if opts.Deduplicate {
			if seen[line.command] {
				result.SkippedRecords++
				continue
			}
			seen[line.command] = true
		}

		timestamp := line.timestamp
		if timestamp <= 0 {
			timestamp = base + int64(i)
		}
		key := fmt.Sprintf("%s\x00%d\x00%d\x00%s", shell, i, line.timestamp, line.command)

		batch = append(batch, &Record{
			ID:        uuid.NewSHA1(importNamespace, []byte(key)).String(),
			Command:   line.command,
			Duration:  line.duration,
			Timestamp: timestamp,
			SessionID: sessionID,
			Hostname:  hostname,
		})
		if len(batch) == importBatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}
	if err := flush(); err != nil {
		return result, err
	}

	log.Info().
		Str("shell", shell).
		Int("imported", result.ImportedRecords).
		Int("skipped", result.SkippedRecords).
		Msg("History imported")
	return result, nil
}

// parseBash reads bash history, with or without HISTTIMEFORMAT "#<epoch>"
// lines.
func parseBash(r io.Reader) ([]importedLine, error) {
	scanner := newHistoryScanner(r)

	var lines []importedLine
	var timestamp int64
	for scanner.Scan() {
		text := scanner.Text()
		if strings.HasPrefix(text, "#") {
			if ts, err := strconv.ParseInt(strings.TrimPrefix(text, "#"), 10, 64); err == nil {
				timestamp = ts * 1000
				continue
			}
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, importedLine{command: strings.TrimSpace(text), timestamp: timestamp})
		timestamp = 0
	}
	return lines, scanner.Err()
}

// parseZsh reads zsh history in the extended ": <epoch>:<seconds>;command"
// format or the plain one. A trailing backslash continues the command on the
// next line.
func parseZsh(r io.Reader) ([]importedLine, error) {
	scanner := newHistoryScanner(r)

	var lines []importedLine
	var pending *importedLine
	for scanner.Scan() {
		text := scanner.Text()

		if pending != nil {
			pending.command += "\n" + text
		} else {
			line := importedLine{command: text}
			if meta, command, ok := strings.Cut(text, ";"); ok && strings.HasPrefix(meta, ": ") {
				if ts, dur, ok := parseZshMeta(meta); ok {
					line = importedLine{command: command, timestamp: ts * 1000, duration: dur * 1000}
				}
			}
			pending = &line
		}

		if strings.HasSuffix(pending.command, "\\") {
			pending.command = strings.TrimSuffix(pending.command, "\\")
			continue
		}
		if strings.TrimSpace(pending.command) != "" {
			pending.command = strings.TrimSpace(pending.command)
			lines = append(lines, *pending)
		}
		pending = nil
	}
	if pending != nil && strings.TrimSpace(pending.command) != "" {
		pending.command = strings.TrimSpace(pending.command)
		lines = append(lines, *pending)
	}
	return lines, scanner.Err()
}

func parseZshMeta(meta string) (int64, int64, bool) {
	fields := strings.SplitN(strings.TrimPrefix(meta, ": "), ":", 2)
	ts, err := strconv.ParseInt(strings.TrimSpace(fields[0]), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	var dur int64
	if len(fields) == 2 {
		dur, _ = strconv.ParseInt(strings.TrimSpace(fields[1]), 10, 64)
	}
	return ts, dur, true
}

func newHistoryScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return scanner
}

// DetectHistoryFile returns the history file of shell, honouring HISTFILE.
func DetectHistoryFile(shell string) (string, error) {
	var candidates []string
	if histfile := os.Getenv("HISTFILE"); histfile != "" {
		candidates = append(candidates, histfile)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	switch strings.ToLower(shell) {
	case "bash":
		candidates = append(candidates, filepath.Join(homeDir, ".bash_history"))
	case "zsh":
		candidates = append(candidates,
			filepath.Join(homeDir, ".zsh_history"),
			filepath.Join(homeDir, ".zhistory"))
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s history file not found", shell)
}
