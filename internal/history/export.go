package history

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ExportFormat represents the export format type
type ExportFormat string

const (
	FormatJSON  ExportFormat = "json"
	FormatBash  ExportFormat = "bash"
	FormatZsh   ExportFormat = "zsh"
	FormatCSV   ExportFormat = "csv"
	FormatPlain ExportFormat = "plain"
)

// SupportedFormats lists the export formats in help order.
func SupportedFormats() []ExportFormat {
	return []ExportFormat{FormatJSON, FormatBash, FormatZsh, FormatCSV, FormatPlain}
}

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	for _, f := range SupportedFormats() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	names := make([]string, 0, len(SupportedFormats()))
	for _, f := range SupportedFormats() {
		names = append(names, string(f))
	}
	return "", fmt.Errorf("unsupported export format %q (supported: %s)", s, strings.Join(names, ", "))
}

// Export writes records to w in format, in the order given. The bash and zsh
// formats are the ones Import reads.
func Export(w io.Writer, records []*Record, format ExportFormat) error {
	switch format {
	case FormatJSON:
		if records == nil {
			records = []*Record{}
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	case FormatCSV:
		return exportCSV(w, records)
	case FormatBash, FormatZsh, FormatPlain:
		return exportLines(w, records, format)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

func exportLines(w io.Writer, records []*Record, format ExportFormat) error {
	bw := bufio.NewWriter(w)
	for _, r := range records {
		var err error
		switch format {
		case FormatBash:
			_, err = fmt.Fprintf(bw, "#%d\n%s\n", r.Time().Unix(), r.Command)
		case FormatZsh:
			// zsh continues multi-line commands with a trailing backslash
			command := strings.ReplaceAll(r.Command, "\n", "\\\n")
			_, err = fmt.Fprintf(bw, ": %d:%d;%s\n", r.Time().Unix(), r.Duration/1000, command)
		default:
			_, err = fmt.Fprintf(bw, "[%s] %s\n", r.Time().Format("2006-01-02 15:04:05"), r.Command)
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

func exportCSV(w io.Writer, records []*Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"timestamp", "command", "exit_code", "duration_ms", "working_dir", "session_id", "hostname"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{
			r.Time().UTC().Format(time.RFC3339),
			r.Command,
			strconv.Itoa(r.ExitCode),
			strconv.FormatInt(r.Duration, 10),
			r.WorkingDir,
			r.SessionID,
			r.Hostname,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
