package search

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/modes"
)

func TestNew_RequiresStore(t *testing.T) {
	_, err := New(context.Background(), Options{})
	assert.ErrorIs(t, err, ErrNoStore)
}

func TestNew_Bootstrap(t *testing.T) {
	store := newFakeStore("git commit -m init", "ls")
	s := newTestState(t, store, prefixSettings(), "git", "commit")

	assert.Equal(t, 1, store.countCalls)
	assert.Equal(t, int64(2), s.View().HistoryCount)
	assert.Equal(t, 1, store.searchCalls)
	assert.Equal(t, "git commit", store.lastQuery)
	require.Len(t, s.Results(), 1)
	assert.Equal(t, 0, s.Selected())
}

func TestNew_ShellUpKeyBindingOverrides(t *testing.T) {
	settings := prefixSettings()
	session := modes.FilterSession
	fulltext := modes.SearchFullText
	settings.FilterModeShellUpKeyBinding = &session
	settings.SearchModeShellUpKeyBinding = &fulltext

	s := newTestState(t, newFakeStore(), settings)
	assert.Equal(t, modes.FilterGlobal, s.Search().FilterMode, "override ignored without the binding")
	assert.Equal(t, modes.SearchPrefix, s.Search().SearchMode)

	settings.ShellUpKeyBinding = true
	s = newTestState(t, newFakeStore(), settings)
	assert.Equal(t, modes.FilterSession, s.Search().FilterMode)
	assert.Equal(t, modes.SearchFullText, s.Search().SearchMode)

	settings.FilterModeShellUpKeyBinding = nil
	s = newTestState(t, newFakeStore(), settings)
	assert.Equal(t, modes.FilterGlobal, s.Search().FilterMode, "falls back to filter_mode")
}

func TestNew_StoreErrors(t *testing.T) {
	store := newFakeStore("ls")
	store.err = errors.New("disk I/O error")

	_, err := New(context.Background(), Options{Store: store, Logger: testLogger(t)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}

func TestRefresh_EmptyQueryLists(t *testing.T) {
	commands := make([]string, 250)
	for i := range commands {
		commands[i] = fmt.Sprintf("echo %d", i)
	}
	store := newFakeStore(commands...)
	s := newTestState(t, store, prefixSettings())

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 0, store.searchCalls)
	assert.Equal(t, ResultLimit, store.lastListOpts.Limit)
	assert.True(t, store.lastListOpts.Unique)
	assert.False(t, store.lastListOpts.Reverse)

	require.Len(t, s.Results(), ResultLimit)
	assert.Equal(t, "echo 0", s.Results()[0].Command(), "newest first")
	for _, e := range s.Results() {
		assert.Equal(t, 1, e.Count)
	}
}

func TestRefresh_EmptyQueryListsEvenInFuzzyMode(t *testing.T) {
	store := newFakeStore("ls")
	ranker := &countingRanker{}
	s, err := New(context.Background(), Options{
		Store:    store,
		Ranker:   ranker,
		Settings: DefaultSettings(),
		Logger:   testLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.listCalls)
	assert.Equal(t, 0, store.allCalls)
	assert.Equal(t, 0, ranker.calls)
	assert.Len(t, s.Results(), 1)
}

func TestRefresh_FuzzySnapshotLoadedOnce(t *testing.T) {
	store := newFakeStore("git push", "git pull", "ls")
	ranker := &countingRanker{}
	s, err := New(context.Background(), Options{
		Store:    store,
		Ranker:   ranker,
		Settings: DefaultSettings(),
		Query:    []string{"git"},
		Logger:   testLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.allCalls)
	assert.Equal(t, 1, ranker.calls)
	require.Len(t, s.Results(), 2)
	assert.Equal(t, 3, s.Results()[0].Count)

	s.Handle(InsertString{Text: " pu"})
	require.NoError(t, s.Refresh(context.Background()))

	assert.Equal(t, 1, store.allCalls, "snapshot is not fetched again")
	assert.Equal(t, 2, ranker.calls)
	assert.Len(t, ranker.lastSnapshot, 3)
	assert.Equal(t, 0, store.searchCalls)

	// entries in the results are the snapshot's entries
	assert.Same(t, ranker.lastSnapshot[0], s.Results()[0])
}

func TestRefresh_FuzzyWithoutRankerSearchesStore(t *testing.T) {
	store := newFakeStore("git push")
	s := newTestState(t, store, DefaultSettings(), "git")

	assert.Equal(t, 0, store.allCalls)
	assert.Equal(t, 1, store.searchCalls)
	assert.Equal(t, modes.SearchFuzzy, store.lastMode)
	assert.Len(t, s.Results(), 1)
}

func TestRefresh_SearchStrategy(t *testing.T) {
	store := newFakeStore("docker ps", "docker run", "ls")
	settings := prefixSettings()
	settings.FilterMode = modes.FilterDirectory
	s := newTestState(t, store, settings, "docker")

	assert.Equal(t, 1, store.searchCalls)
	assert.Equal(t, modes.SearchPrefix, store.lastMode)
	assert.Equal(t, modes.FilterDirectory, store.lastFilter)
	assert.Equal(t, ResultLimit, store.lastSearchOpts.Limit)
	assert.Len(t, s.Results(), 2)
}

func TestRefresh_ResetsSelection(t *testing.T) {
	store := newFakeStore("a", "b", "c")
	s := newTestState(t, store, prefixSettings())
	s.Handle(MoveSelection{Toward: TowardOlder, By: ByRow})
	require.Equal(t, 1, s.Selected())

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 0, s.Selected())
}

func TestRefresh_ErrorKeepsResults(t *testing.T) {
	store := newFakeStore("a", "b")
	s := newTestState(t, store, prefixSettings())
	before := s.Results()

	store.err = errors.New("database is locked")
	s.Handle(InsertChar{Char: 'a'})
	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.Equal(t, before, s.Results())
}

func TestPreparedRefresh_RunDoesNotTouchState(t *testing.T) {
	store := newFakeStore("git push", "ls")
	s := newTestState(t, store, prefixSettings())

	s.Handle(InsertString{Text: "git"})
	prepared := s.PrepareRefresh()
	assert.Equal(t, StrategySearch, prepared.Strategy)
	assert.Equal(t, "git", prepared.Query.Text)

	// typing continues while the refresh runs
	s.Handle(InsertChar{Char: 'x'})

	res, err := prepared.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, s.Results(), 2, "state unchanged until Apply")

	s.Apply(res)
	require.Len(t, s.Results(), 1)
	assert.Equal(t, "gitx", s.Search().Input.String())
}

func TestStrategyString(t *testing.T) {
	assert.Equal(t, "list", StrategyList.String())
	assert.Equal(t, "fuzzy", StrategyFuzzy.String())
	assert.Equal(t, "search", StrategySearch.String())
}

func TestView(t *testing.T) {
	store := newFakeStore("a", "b")
	s := newTestState(t, store, prefixSettings(), "a")

	v := s.View()
	assert.Equal(t, int64(2), v.HistoryCount)
	assert.Equal(t, s.Results(), v.Results)
	assert.Equal(t, "a", v.Search.Input.String())

	v.List.SetCapacity(7)
	assert.Equal(t, 7, s.View().List.Capacity(), "list handle is shared")
}

func TestEntry_CountFloor(t *testing.T) {
	e := NewEntry(&history.Record{Command: "ls"}, 0)
	assert.Equal(t, 1, e.Count)
}
