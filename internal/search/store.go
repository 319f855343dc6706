package search

import (
	"context"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// Store is the history backend a session queries.
type Store interface {
	// HistoryCount returns the number of stored records.
	HistoryCount(ctx context.Context) (int64, error)

	// List returns records scoped by filter, newest first unless opts.Reverse.
	List(ctx context.Context, filter modes.FilterMode, hctx history.Context, opts history.QueryOptions) ([]*history.Record, error)

	// Search returns records matching query under mode, scoped by filter.
	Search(ctx context.Context, mode modes.SearchMode, filter modes.FilterMode, hctx history.Context, query string, opts history.QueryOptions) ([]*history.Record, error)

	// AllWithCount returns every distinct command with its run count.
	AllWithCount(ctx context.Context) ([]history.CountedRecord, error)
}

// Ranker orders the in-memory snapshot for the fuzzy search mode. It does not
// fail: problems are logged and an empty result returned.
type Ranker interface {
	Rank(ctx context.Context, q Query, snapshot []*Entry) []*Entry
}

// RankerFunc adapts a function to Ranker.
type RankerFunc func(ctx context.Context, q Query, snapshot []*Entry) []*Entry

func (f RankerFunc) Rank(ctx context.Context, q Query, snapshot []*Entry) []*Entry {
	return f(ctx, q, snapshot)
}
