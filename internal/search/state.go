package search

import (
	"github.com/NeverVane/ccsearch/internal/editor"
	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// SearchState is the editable part of a session.
type SearchState struct {
	Input      *editor.Cursor
	FilterMode modes.FilterMode
	SearchMode modes.SearchMode

	// SwitchedMode is true only after the event that changed a mode.
	SwitchedMode bool

	// Context is captured when the session starts and never changes.
	Context history.Context
}

// Query is an immutable copy of what a refresh needs from SearchState.
type Query struct {
	Text       string
	FilterMode modes.FilterMode
	SearchMode modes.SearchMode
	Context    history.Context
}

// Query snapshots the state for a refresh.
func (s *SearchState) Query() Query {
	return Query{
		Text:       s.Input.String(),
		FilterMode: s.FilterMode,
		SearchMode: s.SearchMode,
		Context:    s.Context,
	}
}
