package search

import (
	"context"

	"github.com/NeverVane/ccsearch/internal/modes"
)

// Batch applies a run of events and refreshes at most once at the end.
// Only the input text and the filter mode invalidate the results; a search
// mode change alone does not.
type Batch struct {
	state         *State
	initialInput  string
	initialFilter modes.FilterMode
	events        int
}

// StartBatch checkpoints the input text and filter mode.
func (s *State) StartBatch() *Batch {
	return &Batch{
		state:         s,
		initialInput:  s.search.Input.String(),
		initialFilter: s.search.FilterMode,
	}
}

// Handle applies ev. A Break is returned as is and the batch should not be
// finished.
func (b *Batch) Handle(ev Event) Outcome {
	b.events++
	return b.state.Handle(ev)
}

// Changed reports whether the input text or filter mode moved since the
// checkpoint.
func (b *Batch) Changed() bool {
	return b.state.search.Input.String() != b.initialInput ||
		b.state.search.FilterMode != b.initialFilter
}

// Finish refreshes once if Changed and reports whether it did.
func (b *Batch) Finish(ctx context.Context) (bool, error) {
	if !b.Changed() {
		b.state.logger.Debug().Int("events", b.events).Msg("Batch unchanged, refresh skipped")
		return false, nil
	}
	if err := b.state.Refresh(ctx); err != nil {
		return false, err
	}
	b.state.logger.Debug().Int("events", b.events).Msg("Batch refreshed")
	return true, nil
}

// State returns the session the batch works on.
func (b *Batch) State() *State {
	return b.state
}
