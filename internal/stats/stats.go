// Package stats summarises command usage from the counted history.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/NeverVane/ccsearch/internal/history"
)

// CommandStats represents statistics for a specific command
type CommandStats struct {
	Command        string    `json:"command"`
	Count          int       `json:"count"`
	SuccessfulRuns int       `json:"successful_runs"`
	FailedRuns     int       `json:"failed_runs"`
	SuccessRate    float64   `json:"success_rate"`
	LastUsed       time.Time `json:"last_used"`
}

// Result represents overall statistics plus the most used commands
type Result struct {
	TotalCommands      int             `json:"total_commands"`
	UniqueCommands     int             `json:"unique_commands"`
	FailedCommands     int             `json:"failed_commands"`
	OverallSuccessRate float64         `json:"overall_success_rate"`
	TotalHosts         int             `json:"total_hosts"`
	TotalSessions      int             `json:"total_sessions"`
	TotalDirectories   int             `json:"total_directories"`
	TopCommands        []*CommandStats `json:"top_commands"`
}

// Options controls Compute.
type Options struct {
	// Limit caps TopCommands; zero keeps every command.
	Limit int
	// BaseCommand groups by program name ("git" for "git push") instead of
	// the whole command line.
	BaseCommand bool
}

// Compute aggregates counted records, as returned by the history store, into
// usage statistics. TopCommands is ordered by count, then most recent use.
func Compute(records []history.CountedRecord, opts Options) *Result {
	result := &Result{}
	commands := make(map[string]*CommandStats)
	unique := make(map[string]struct{})
	hosts := make(map[string]struct{})
	sessions := make(map[string]struct{})
	dirs := make(map[string]struct{})

	for _, cr := range records {
		if cr.Record == nil || cr.Count <= 0 {
			continue
		}
		r := cr.Record

		result.TotalCommands += cr.Count
		if r.ExitCode != 0 {
			result.FailedCommands += cr.Count
		}
		unique[r.Command] = struct{}{}
		addAll(hosts, r.Hostnames())
		addAll(sessions, r.Sessions())
		addAll(dirs, r.Dirs())

		key := r.Command
		if opts.BaseCommand {
			key = BaseCommand(r.Command)
		}
		if key == "" {
			continue
		}

		cs, ok := commands[key]
		if !ok {
			cs = &CommandStats{Command: key}
			commands[key] = cs
		}
		cs.Count += cr.Count
		if r.ExitCode == 0 {
			cs.SuccessfulRuns += cr.Count
		} else {
			cs.FailedRuns += cr.Count
		}
		if t := r.Time(); t.After(cs.LastUsed) {
			cs.LastUsed = t
		}
	}

	result.UniqueCommands = len(unique)
	result.TotalHosts = len(hosts)
	result.TotalSessions = len(sessions)
	result.TotalDirectories = len(dirs)
	if result.TotalCommands > 0 {
		result.OverallSuccessRate = rate(result.TotalCommands-result.FailedCommands, result.TotalCommands)
	}

	top := make([]*CommandStats, 0, len(commands))
	for _, cs := range commands {
		cs.SuccessRate = rate(cs.SuccessfulRuns, cs.Count)
		top = append(top, cs)
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		if !top[i].LastUsed.Equal(top[j].LastUsed) {
			return top[i].LastUsed.After(top[j].LastUsed)
		}
		return top[i].Command < top[j].Command
	})
	if opts.Limit > 0 && len(top) > opts.Limit {
		top = top[:opts.Limit]
	}
	result.TopCommands = top

	return result
}

// BaseCommand extracts the program name from a command line, skipping sudo
// and any leading path.
func BaseCommand(command string) string {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return ""
	}

	base := parts[0]
	if base == "sudo" && len(parts) > 1 {
		base = parts[1]
	}
	if i := strings.LastIndex(base, "/"); i >= 0 && i < len(base)-1 {
		base = base[i+1:]
	}
	return base
}

func addAll(set map[string]struct{}, values []string) {
	for _, v := range values {
		set[v] = struct{}{}
	}
}

func rate(part, total int) float64 {
	return float64(part) / float64(total) * 100.0
}
