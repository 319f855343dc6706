// Package output prints CLI messages and non-interactive search results.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/search"
	"github.com/NeverVane/ccsearch/internal/stats"
)

// Formatter provides a high-level interface for CLI output formatting
type Formatter struct {
	colorFormatter *ColorFormatter
	out            io.Writer
	errOut         io.Writer
	verboseMode    bool
	quietMode      bool
}

// NewFormatter creates a formatter writing results to stdout and diagnostics
// to stderr
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{
		colorFormatter: NewColorFormatter(cfg.TUI.Colors, os.Stdout),
		out:            os.Stdout,
		errOut:         os.Stderr,
	}
}

// NewWriterFormatter creates an uncolored formatter writing to out and errOut
func NewWriterFormatter(out, errOut io.Writer) *Formatter {
	return &Formatter{
		colorFormatter: &ColorFormatter{},
		out:            out,
		errOut:         errOut,
	}
}

// SetFlags configures the formatter based on command line flags
func (f *Formatter) SetFlags(verbose, quiet, noColor bool) {
	f.verboseMode = verbose
	f.quietMode = quiet
	f.colorFormatter.SetNoColor(noColor)
}

// Success prints a success message (always shown unless quiet)
func (f *Formatter) Success(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.errOut, f.colorFormatter.Success(fmt.Sprintf(format, args...)))
	}
}

// Error prints an error message (always shown)
func (f *Formatter) Error(format string, args ...interface{}) {
	fmt.Fprintln(f.errOut, f.colorFormatter.Error(fmt.Sprintf(format, args...)))
}

// Warning prints a warning message (always shown unless quiet)
func (f *Formatter) Warning(format string, args ...interface{}) {
	if !f.quietMode {
		fmt.Fprintln(f.errOut, f.colorFormatter.Warning(fmt.Sprintf(format, args...)))
	}
}

// Verbose prints a message only in verbose mode
func (f *Formatter) Verbose(format string, args ...interface{}) {
	if f.verboseMode && !f.quietMode {
		fmt.Fprintln(f.errOut, f.colorFormatter.Info(fmt.Sprintf(format, args...)))
	}
}

// Println writes one plain line to stdout
func (f *Formatter) Println(format string, args ...interface{}) {
	fmt.Fprintf(f.out, format+"\n", args...)
}

// Result writes the line handed back to the shell. Nothing is written for an
// empty result so the shell keeps its own line.
func (f *Formatter) Result(result string) {
	if result != "" {
		fmt.Fprintln(f.out, result)
	}
}

// Entries writes search results oldest first so the best match ends up next
// to the prompt. cmdOnly drops the time, duration and exit columns.
func (f *Formatter) Entries(entries []*search.Entry, cmdOnly bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if cmdOnly {
			fmt.Fprintln(f.out, e.Command())
			continue
		}

		when := time.UnixMilli(e.Record.Timestamp).Format("2006-01-02 15:04:05")
		status := f.colorFormatter.Colorize("ok  ", StatusSuccess)
		if e.Record.ExitCode != 0 {
			status = f.colorFormatter.Colorize(fmt.Sprintf("%-4d", e.Record.ExitCode), StatusError)
		}
		command := strings.ReplaceAll(e.Command(), "\n", " ")

		fmt.Fprintf(f.out, "%s  %s  %8s  %s\n",
			f.colorFormatter.Colorize(when, StatusMuted),
			status,
			(time.Duration(e.Record.Duration) * time.Millisecond).String(),
			command)
	}
}

// Stats writes the usage summary followed by the top commands table
func (f *Formatter) Stats(result *stats.Result) {
	fmt.Fprintf(f.out, "%s %d (%d unique)\n", f.colorFormatter.Bold("Commands:"), result.TotalCommands, result.UniqueCommands)
	fmt.Fprintf(f.out, "%s %.1f%% (%d failed)\n", f.colorFormatter.Bold("Success:"), result.OverallSuccessRate, result.FailedCommands)
	fmt.Fprintf(f.out, "%s %d hosts, %d sessions, %d directories\n", f.colorFormatter.Bold("Seen in:"),
		result.TotalHosts, result.TotalSessions, result.TotalDirectories)

	if len(result.TopCommands) == 0 {
		return
	}

	fmt.Fprintln(f.out)
	for i, cs := range result.TopCommands {
		success := f.colorFormatter.Colorize(fmt.Sprintf("%5.1f%%", cs.SuccessRate), StatusSuccess)
		if cs.FailedRuns > 0 {
			success = f.colorFormatter.Colorize(fmt.Sprintf("%5.1f%%", cs.SuccessRate), StatusWarning)
		}
		fmt.Fprintf(f.out, "%3d. %6d  %s  %s\n", i+1, cs.Count, success,
			strings.ReplaceAll(cs.Command, "\n", " "))
	}
}

// IsVerbose returns whether verbose mode is active
func (f *Formatter) IsVerbose() bool {
	return f.verboseMode
}

// IsQuiet returns whether quiet mode is active
func (f *Formatter) IsQuiet() bool {
	return f.quietMode
}
