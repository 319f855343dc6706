package search

import (
	"github.com/NeverVane/ccsearch/internal/editor"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// DefaultWordChars are the characters word motions treat as part of a word.
const DefaultWordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Settings are fixed for the lifetime of a session. A copy is taken by New.
type Settings struct {
	FilterMode modes.FilterMode
	// FilterModeShellUpKeyBinding replaces FilterMode when the search was
	// opened from the shell's up-arrow binding.
	FilterModeShellUpKeyBinding *modes.FilterMode
	SearchMode                  modes.SearchMode
	SearchModeShellUpKeyBinding *modes.SearchMode
	ShellUpKeyBinding           bool

	// SearchModes is the cycle for CycleSearchMode.
	SearchModes []modes.SearchMode

	ScrollContextLines int
	WordChars          string
	WordJumpMode       editor.WordJumpMode
	ExitMode           modes.ExitMode
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		FilterMode:         modes.FilterGlobal,
		SearchMode:         modes.SearchFuzzy,
		SearchModes:        append([]modes.SearchMode(nil), modes.DefaultSearchModeCycle...),
		ScrollContextLines: 1,
		WordChars:          DefaultWordChars,
		WordJumpMode:       editor.WordJumpEmacs,
		ExitMode:           modes.ExitReturnOriginal,
	}
}

// InitialFilterMode resolves the filter mode a session starts in.
func (s Settings) InitialFilterMode() modes.FilterMode {
	if s.ShellUpKeyBinding && s.FilterModeShellUpKeyBinding != nil {
		return *s.FilterModeShellUpKeyBinding
	}
	return s.FilterMode
}

// InitialSearchMode resolves the search mode a session starts in.
func (s Settings) InitialSearchMode() modes.SearchMode {
	if s.ShellUpKeyBinding && s.SearchModeShellUpKeyBinding != nil {
		return *s.SearchModeShellUpKeyBinding
	}
	return s.SearchMode
}

func (s Settings) pageSize(capacity int) int {
	n := capacity - s.ScrollContextLines
	if n < 0 {
		return 0
	}
	return n
}
