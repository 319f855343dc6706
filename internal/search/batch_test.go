package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatch_FiveCharsRefreshOnce(t *testing.T) {
	store := newFakeStore("grep foo", "git")
	s := newTestState(t, store, prefixSettings())
	baseline := store.refreshCalls()

	b := s.StartBatch()
	for _, r := range "grep " {
		requireContinue(t, b.Handle(InsertChar{Char: r}))
	}
	refreshed, err := b.Finish(context.Background())
	require.NoError(t, err)

	assert.True(t, refreshed)
	assert.Equal(t, baseline+1, store.refreshCalls())
	assert.Equal(t, "grep ", store.lastQuery)
}

func TestBatch_NoObservableChangeSkipsRefresh(t *testing.T) {
	cases := map[string][]Event{
		"empty":        nil,
		"search mode":  {CycleSearchMode{}},
		"caret only":   {MoveCaret{Dir: Left, By: ByChar}, MoveCaret{Dir: Right, By: ToLineEdge}},
		"selection":    {MoveSelection{Toward: TowardOlder, By: ByRow}},
		"edit undone":  {InsertChar{Char: 'z'}, Delete{Dir: Left, By: ByChar}},
		"version only": {VersionNotice{}},
	}

	for name, events := range cases {
		t.Run(name, func(t *testing.T) {
			store := newFakeStore("ls", "ls -la")
			s := newTestState(t, store, prefixSettings(), "ls")
			baseline := store.refreshCalls()

			b := s.StartBatch()
			for _, ev := range events {
				requireContinue(t, b.Handle(ev))
			}
			assert.False(t, b.Changed())

			refreshed, err := b.Finish(context.Background())
			require.NoError(t, err)
			assert.False(t, refreshed)
			assert.Equal(t, baseline, store.refreshCalls())
		})
	}
}

func TestBatch_FilterModeChangeRefreshes(t *testing.T) {
	store := newFakeStore("ls")
	s := newTestState(t, store, prefixSettings())
	baseline := store.refreshCalls()

	b := s.StartBatch()
	b.Handle(CycleFilterMode{})
	refreshed, err := b.Finish(context.Background())
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, baseline+1, store.refreshCalls())
}

func TestBatch_FilterModeFullCycleIsNoChange(t *testing.T) {
	store := newFakeStore("ls")
	s := newTestState(t, store, prefixSettings())
	baseline := store.refreshCalls()

	b := s.StartBatch()
	for i := 0; i < 4; i++ {
		b.Handle(CycleFilterMode{})
	}
	refreshed, err := b.Finish(context.Background())
	require.NoError(t, err)
	assert.False(t, refreshed)
	assert.Equal(t, baseline, store.refreshCalls())
}

func TestBatch_BreakPropagates(t *testing.T) {
	store := newFakeStore("ls")
	s := newTestState(t, store, prefixSettings())
	baseline := store.refreshCalls()

	b := s.StartBatch()
	b.Handle(InsertChar{Char: 'l'})
	out := b.Handle(Cancel{})
	assert.Equal(t, "", requireBreak(t, out))
	assert.Equal(t, baseline, store.refreshCalls())
}

func TestBatch_FinishError(t *testing.T) {
	store := newFakeStore("ls")
	s := newTestState(t, store, prefixSettings())

	b := s.StartBatch()
	b.Handle(InsertChar{Char: 'l'})
	store.err = errors.New("boom")

	refreshed, err := b.Finish(context.Background())
	assert.Error(t, err)
	assert.False(t, refreshed)
	assert.Same(t, s, b.State())
}
