package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/deletion"
	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
	"github.com/NeverVane/ccsearch/internal/output"
	"github.com/NeverVane/ccsearch/internal/ranking"
	"github.com/NeverVane/ccsearch/internal/search"
	"github.com/NeverVane/ccsearch/internal/sentry"
	"github.com/NeverVane/ccsearch/internal/shell"
	"github.com/NeverVane/ccsearch/internal/stats"
	"github.com/NeverVane/ccsearch/internal/storage"
	"github.com/NeverVane/ccsearch/internal/tui"
	"github.com/NeverVane/ccsearch/internal/updater"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			if sentry.IsEnabled() {
				sentry.CaptureError(fmt.Errorf("panic: %v", r), "main", "panic_recovery")
				sentry.Flush(2 * time.Second)
			}
			fmt.Fprintf(os.Stderr, "ccsearch encountered a fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	// Monitoring problems never stop the CLI
	if err := sentry.Initialize(cfg, version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to initialize error monitoring: %v\n", err)
	}
	if sentry.IsEnabled() {
		logger.AddHook(sentry.NewGlobalHook())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCmd := newRootCmd(cfg, output.NewFormatter(cfg))
	err = rootCmd.ExecuteContext(ctx)
	stop()

	sentry.Close()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ccsearch",
		Short: "Interactive incremental search over your shell history",
		Long: `ccsearch keeps a local SQLite history of the commands you run and lets you
search it as you type, scoped globally or to this host, session or directory.

Get started:
  eval "$(ccsearch init zsh)"        Record commands and bind ctrl-r
  ccsearch import zsh                Load your existing history
  ccsearch search -i                 Open the interactive search
  ccsearch search git push           Print matching commands`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			noColor, _ := cmd.Flags().GetBool("no-color")
			formatter.SetFlags(verbose, false, noColor)

			if verbose {
				loggerConfig := cfg.Logging
				loggerConfig.Level = "debug"
				return logger.Init(&loggerConfig)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(searchCmd(cfg, formatter))
	rootCmd.AddCommand(recordCmd(cfg, formatter))
	rootCmd.AddCommand(countCmd(cfg, formatter))
	rootCmd.AddCommand(initCmd(formatter))
	rootCmd.AddCommand(importCmd(cfg, formatter))
	rootCmd.AddCommand(exportCmd(cfg, formatter))
	rootCmd.AddCommand(statsCmd(cfg, formatter))
	rootCmd.AddCommand(deleteCmd(cfg, formatter))
	rootCmd.AddCommand(versionCmd(formatter))

	// Report failures once, for every subcommand
	for _, sub := range rootCmd.Commands() {
		run := sub.RunE
		name := sub.Name()
		sub.RunE = func(cmd *cobra.Command, args []string) error {
			err := run(cmd, args)
			if err != nil {
				sentry.CaptureError(err, "cli", name)
				formatter.Error("%v", err)
			}
			return err
		}
	}

	return rootCmd
}

// openStore opens the history database. The caller closes the database.
func openStore(cfg *config.Config) (*storage.Database, *storage.HistoryStore, error) {
	db, err := storage.NewDatabase(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	return db, storage.NewHistoryStore(db), nil
}

func currentContext(cfg *config.Config) (history.Context, error) {
	sessions, err := history.NewSessionManager(cfg.DataDir)
	if err != nil {
		return history.Context{}, err
	}
	return history.CurrentContext(sessions)
}

func searchCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Search command history",
		Long: `Search command history. With --interactive the search screen is drawn on
stderr and the chosen command is printed on stdout for the shell widget to
insert; otherwise the matching commands are printed, best match last.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.GetLogger().Search()

			interactive, _ := cmd.Flags().GetBool("interactive")
			cmdOnly, _ := cmd.Flags().GetBool("cmd-only")
			limit, _ := cmd.Flags().GetInt("limit")

			settings, err := searchSettings(cmd, cfg)
			if err != nil {
				return err
			}

			hctx, err := currentContext(cfg)
			if err != nil {
				return err
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			state, err := search.New(ctx, search.Options{
				Store:    store,
				Ranker:   ranking.NewFuzzy(nil),
				Settings: settings,
				Context:  hctx,
				Query:    args,
				Logger:   log,
			})
			if err != nil {
				return err
			}

			if !interactive {
				entries := state.Results()
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				formatter.Entries(entries, cmdOnly)
				return nil
			}

			opts := &tui.Options{Version: "v" + version}
			if cfg.Update.Check {
				opts.Updater = updater.NewUpdater(nil, version, updater.UpdaterConfig{
					RepoOwner: cfg.Update.RepoOwner,
					RepoName:  cfg.Update.RepoName,
					Timeout:   cfg.GetUpdateTimeout(),
				})
			}

			result, err := tui.Launch(ctx, cfg, state, opts)
			if err != nil {
				if errors.Is(err, tui.ErrNotTerminal) {
					return fmt.Errorf("interactive search needs a terminal on stderr")
				}
				return err
			}
			formatter.Result(result)
			return nil
		},
	}

	cmd.Flags().BoolP("interactive", "i", false, "Open the interactive search screen")
	cmd.Flags().String("filter-mode", "", "Filter mode: global, host, session or directory")
	cmd.Flags().String("search-mode", "", "Search mode: prefix, fulltext or fuzzy")
	cmd.Flags().Bool("shell-up-key-binding", false, "Started from the shell's up arrow binding")
	cmd.Flags().Bool("cmd-only", false, "Print only the command text")
	cmd.Flags().IntP("limit", "l", 0, "Print at most this many results")

	return cmd
}

// searchSettings applies the search flags on top of the configured settings
func searchSettings(cmd *cobra.Command, cfg *config.Config) (search.Settings, error) {
	settings := cfg.SearchSettings()

	if value, _ := cmd.Flags().GetString("filter-mode"); value != "" {
		mode, err := modes.ParseFilterMode(value)
		if err != nil {
			return settings, err
		}
		settings.FilterMode = mode
		settings.FilterModeShellUpKeyBinding = nil
	}
	if value, _ := cmd.Flags().GetString("search-mode"); value != "" {
		mode, err := modes.ParseSearchMode(value)
		if err != nil {
			return settings, err
		}
		settings.SearchMode = mode
		settings.SearchModeShellUpKeyBinding = nil
	}
	if up, _ := cmd.Flags().GetBool("shell-up-key-binding"); up {
		settings.ShellUpKeyBinding = true
	}

	return settings, nil
}

func recordCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:    "record [flags] -- command",
		Short:  "Record a finished command (used by shell hooks)",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			exitCode, _ := cmd.Flags().GetInt("exit")
			duration, _ := cmd.Flags().GetInt64("duration")

			command := strings.TrimSpace(strings.Join(args, " "))
			if command == "" {
				return fmt.Errorf("command is required")
			}
			if len(command) > storage.MaxCommandLength {
				return fmt.Errorf("command exceeds %d bytes", storage.MaxCommandLength)
			}

			hctx, err := currentContext(cfg)
			if err != nil {
				return err
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			record := history.NewRecord(command, exitCode, duration, hctx)
			if err := store.Save(cmd.Context(), record); err != nil {
				return err
			}

			formatter.Verbose("Recorded %s in session %s", record.ID, record.SessionID)
			return nil
		},
	}

	cmd.Flags().Int("exit", 0, "Exit code of the command")
	cmd.Flags().Int64("duration", 0, "Duration of the command in milliseconds")

	return cmd
}

func countCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of recorded commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			count, err := store.HistoryCount(cmd.Context())
			if err != nil {
				return err
			}
			formatter.Println("%d", count)
			return nil
		},
	}
}

func initCmd(formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init <bash|zsh>",
		Short: "Print the shell integration script",
		Long: `Print the shell integration script. Add this to your shell rc file:

  eval "$(ccsearch init zsh)"

The script records every command with its exit code and duration and binds
ctrl-r and the up arrow to the interactive search.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{shell.Bash, shell.Zsh},
		RunE: func(cmd *cobra.Command, args []string) error {
			disableCtrlR, _ := cmd.Flags().GetBool("disable-ctrl-r")
			disableUp, _ := cmd.Flags().GetBool("disable-up-arrow")

			binary, err := os.Executable()
			if err != nil {
				binary = "ccsearch"
			}

			script, err := shell.Script(args[0], shell.ScriptOptions{
				BinaryPath:     binary,
				DisableCtrlR:   disableCtrlR,
				DisableUpArrow: disableUp,
			})
			if err != nil {
				return err
			}
			formatter.Println("%s", strings.TrimSuffix(script, "\n"))
			return nil
		},
	}

	cmd.Flags().Bool("disable-ctrl-r", false, "Keep the shell's own ctrl-r binding")
	cmd.Flags().Bool("disable-up-arrow", false, "Keep the shell's own up arrow binding")

	return cmd
}

func importCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [bash|zsh]",
		Short: "Import an existing shell history file",
		Long: `Import an existing shell history file. The shell defaults to the one in
$SHELL and the file to the shell's usual history file. Importing the same
file again does not duplicate commands.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			noDedup, _ := cmd.Flags().GetBool("no-dedup")
			limit, _ := cmd.Flags().GetInt("limit")

			sh := filepath.Base(os.Getenv("SHELL"))
			if len(args) == 1 {
				sh = args[0]
			}

			if path == "" {
				detected, err := history.DetectHistoryFile(sh)
				if err != nil {
					return err
				}
				path = detected
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := history.ImportFile(cmd.Context(), store, sh, path, &history.ImportOptions{
				Deduplicate:      !noDedup,
				MaxRecords:       limit,
				MaxCommandLength: storage.MaxCommandLength,
			})
			if err != nil {
				return err
			}

			formatter.Success("Imported %d commands from %s (%d skipped)",
				result.ImportedRecords, path, result.SkippedRecords)
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "History file to import")
	cmd.Flags().Bool("no-dedup", false, "Keep repeated commands")
	cmd.Flags().IntP("limit", "l", 0, "Import at most this many commands")

	return cmd
}

func exportCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export command history",
		Long: `Export command history, oldest first, to stdout or a file. The bash and zsh
formats can be read back with 'ccsearch import'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatValue, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("output")
			filterValue, _ := cmd.Flags().GetString("filter-mode")

			format, err := history.ParseExportFormat(formatValue)
			if err != nil {
				return err
			}
			filter, err := modes.ParseFilterMode(filterValue)
			if err != nil {
				return err
			}
			hctx, err := currentContext(cfg)
			if err != nil {
				return err
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := store.List(cmd.Context(), filter, hctx, history.QueryOptions{Reverse: true})
			if err != nil {
				return err
			}

			if path == "" {
				return history.Export(cmd.OutOrStdout(), records, format)
			}

			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := history.Export(file, records, format); err != nil {
				file.Close()
				return fmt.Errorf("failed to export history: %w", err)
			}
			if err := file.Close(); err != nil {
				return err
			}

			formatter.Success("Exported %d commands to %s", len(records), path)
			return nil
		},
	}

	cmd.Flags().String("format", string(history.FormatZsh), "Export format: json, bash, zsh, csv or plain")
	cmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	cmd.Flags().String("filter-mode", "global", "Export global, host, session or directory history")

	return cmd
}

func statsCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show command usage statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			base, _ := cmd.Flags().GetBool("base")

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := store.AllWithCount(cmd.Context())
			if err != nil {
				return err
			}

			formatter.Stats(stats.Compute(records, stats.Options{Limit: limit, BaseCommand: base}))
			return nil
		},
	}

	cmd.Flags().IntP("limit", "l", 10, "Number of top commands to show")
	cmd.Flags().Bool("base", false, "Group by program name instead of full command")

	return cmd
}

func deleteCmd(cfg *config.Config, formatter *output.Formatter) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete [id...]",
		Short: "Delete commands from history",
		Long: `Delete commands from history, either by record id or by a shell-style
pattern matched against the whole command:

  ccsearch delete --pattern 'export AWS_SECRET*' --dry-run
  ccsearch delete --pattern 'export AWS_SECRET*' --filter-mode session`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern, _ := cmd.Flags().GetString("pattern")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			filterValue, _ := cmd.Flags().GetString("filter-mode")

			if pattern == "" && len(args) == 0 {
				return fmt.Errorf("give record ids or --pattern")
			}
			if pattern != "" && len(args) > 0 {
				return fmt.Errorf("record ids and --pattern are exclusive")
			}

			filter, err := modes.ParseFilterMode(filterValue)
			if err != nil {
				return err
			}
			hctx, err := currentContext(cfg)
			if err != nil {
				return err
			}

			db, store, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			result, err := deletion.NewService(store).Execute(cmd.Context(), deletion.Request{
				IDs:     args,
				Pattern: pattern,
				Filter:  filter,
				Context: hctx,
				DryRun:  dryRun,
			})
			if err != nil {
				return err
			}

			if dryRun {
				entries := make([]*search.Entry, len(result.MatchedRecords))
				for i, r := range result.MatchedRecords {
					entries[i] = search.NewEntry(r, 1)
				}
				formatter.Entries(entries, false)
				formatter.Warning("%d commands would be deleted", len(result.MatchedRecords))
				return nil
			}

			formatter.Success("Deleted %d commands", result.DeletedCount)
			return nil
		},
	}

	cmd.Flags().StringP("pattern", "p", "", "Delete every command matching this pattern (* and ?)")
	cmd.Flags().Bool("dry-run", false, "Show what would be deleted")
	cmd.Flags().String("filter-mode", "global", "Restrict a pattern to global, host, session or directory")

	return cmd
}

func versionCmd(formatter *output.Formatter) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter.Println("ccsearch %s", version)
			formatter.Println("Commit:      %s", commit)
			formatter.Println("Build Date:  %s", date)
			formatter.Println("OS/Arch:     %s/%s", runtime.GOOS, runtime.GOARCH)
			formatter.Println("Go Version:  %s", runtime.Version())
			return nil
		},
	}
}
