// Package search implements the interactive search session: the event
// reducer, the refresh policy that queries the store, and the batching that
// keeps typing fast while the store is slow.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/NeverVane/ccsearch/internal/editor"
	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
)

// ResultLimit caps list and search results.
const ResultLimit = 200

// ErrNoStore is returned by New when no store is given.
var ErrNoStore = errors.New("search: no history store")

// Options configure a new session.
type Options struct {
	Store Store
	// Ranker ranks the fuzzy snapshot. Without one, fuzzy queries go to the
	// store like the other modes.
	Ranker   Ranker
	Settings Settings
	Context  history.Context
	// Query holds the initial words, joined with spaces.
	Query  []string
	Logger *logger.Logger
}

// State is one search session.
type State struct {
	store    Store
	ranker   Ranker
	settings Settings
	logger   *logger.Logger

	historyCount int64
	list         ListState
	results      []*Entry
	updateNeeded *semver.Version
	search       SearchState

	snapshot       []*Entry
	snapshotLoaded bool
}

// New starts a session: the input holds the joined query with the caret at
// the end, the modes are resolved from settings, and the first refresh runs.
func New(ctx context.Context, opts Options) (*State, error) {
	if opts.Store == nil {
		return nil, ErrNoStore
	}

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger().Search()
	}

	settings := opts.Settings
	if settings.WordChars == "" {
		settings.WordChars = DefaultWordChars
	}

	s := &State{
		store:    opts.Store,
		ranker:   opts.Ranker,
		settings: settings,
		logger:   log.WithSessionID(opts.Context.SessionID),
		search: SearchState{
			Input:      editor.New(strings.Join(opts.Query, " ")),
			FilterMode: settings.InitialFilterMode(),
			SearchMode: settings.InitialSearchMode(),
			Context:    opts.Context,
		},
	}

	count, err := s.store.HistoryCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count history: %w", err)
	}
	s.historyCount = count

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}

	return s, nil
}

// Settings returns the session settings.
func (s *State) Settings() Settings {
	return s.settings
}

// Search exposes the editable state.
func (s *State) Search() *SearchState {
	return &s.search
}

// Results returns the visible entries.
func (s *State) Results() []*Entry {
	return s.results
}

// Selected returns the selected index.
func (s *State) Selected() int {
	return s.list.selected
}

// SelectedEntry returns the selected entry, if any.
func (s *State) SelectedEntry() (*Entry, bool) {
	if s.list.selected < len(s.results) {
		return s.results[s.list.selected], true
	}
	return nil, false
}
