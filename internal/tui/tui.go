// Package tui draws an interactive search session with bubbletea. It only
// translates terminal input into search events and renders the session's
// View; all search behaviour lives in package search.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Masterminds/semver/v3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/search"
)

// ErrNotTerminal is returned by Launch when stderr is not a terminal.
var ErrNotTerminal = errors.New("tui: stderr is not a terminal")

// VersionChecker looks up a newer release. A nil version means up to date.
type VersionChecker interface {
	CheckForUpdate(ctx context.Context) (*semver.Version, error)
}

// Options holds the optional parts of a TUI run
type Options struct {
	// Updater feeds the header's update notice; nil skips the check
	Updater VersionChecker

	// Version is shown next to the title
	Version string
}

// Launch runs state interactively until it ends and returns the line to hand
// back to the shell. The screen is drawn on stderr so stdout stays free for
// the result.
func Launch(ctx context.Context, cfg *config.Config, state *search.State, opts *Options) (string, error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return "", ErrNotTerminal
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	log := logger.GetLogger().TUI()
	lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stderr))

	programOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
	}
	if cfg.TUI.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if cfg.TUI.MouseWheel {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	m := newModel(ctx, cfg, state, opts)
	log.Debug().
		Bool("invert", cfg.Search.Invert).
		Str("filter_mode", state.Search().FilterMode.String()).
		Str("search_mode", state.Search().SearchMode.String()).
		Msg("Launching search interface")

	final, err := tea.NewProgram(m, programOpts...).Run()
	if err != nil {
		return "", fmt.Errorf("TUI execution failed: %w", err)
	}

	fm, ok := final.(model)
	if !ok {
		return "", nil
	}
	return fm.result, nil
}
