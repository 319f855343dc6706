package search

import (
	"context"
	"fmt"
	"time"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// Strategy is the retrieval path a refresh takes.
type Strategy int

const (
	// StrategyList lists recent history for an empty query.
	StrategyList Strategy = iota
	// StrategyFuzzy ranks the in-memory snapshot.
	StrategyFuzzy
	// StrategySearch runs a store search.
	StrategySearch
)

func (s Strategy) String() string {
	switch s {
	case StrategyList:
		return "list"
	case StrategyFuzzy:
		return "fuzzy"
	case StrategySearch:
		return "search"
	}
	return "unknown"
}

// PreparedRefresh is a refresh detached from its State. Run may be called on
// another goroutine while the State keeps handling events; Apply must then
// be called from the goroutine that owns the State.
type PreparedRefresh struct {
	Query    Query
	Strategy Strategy

	store          Store
	ranker         Ranker
	logger         *logger.Logger
	snapshot       []*Entry
	snapshotLoaded bool
}

// RefreshResult is the output of PreparedRefresh.Run.
type RefreshResult struct {
	Query    Query
	Strategy Strategy
	Results  []*Entry

	// Snapshot is set when this run loaded the fuzzy snapshot.
	Snapshot []*Entry
}

// PrepareRefresh copies what a refresh needs out of the state.
func (s *State) PrepareRefresh() *PreparedRefresh {
	q := s.search.Query()

	strategy := StrategySearch
	switch {
	case q.Text == "":
		strategy = StrategyList
	case q.SearchMode == modes.SearchFuzzy && s.ranker != nil:
		strategy = StrategyFuzzy
	}

	return &PreparedRefresh{
		Query:          q,
		Strategy:       strategy,
		store:          s.store,
		ranker:         s.ranker,
		logger:         s.logger,
		snapshot:       s.snapshot,
		snapshotLoaded: s.snapshotLoaded,
	}
}

// Run queries the store. It does not touch the State it was prepared from.
func (r *PreparedRefresh) Run(ctx context.Context) (*RefreshResult, error) {
	start := time.Now()
	res := &RefreshResult{Query: r.Query, Strategy: r.Strategy}
	q := r.Query

	switch r.Strategy {
	case StrategyList:
		records, err := r.store.List(ctx, q.FilterMode, q.Context, history.QueryOptions{
			Limit:  ResultLimit,
			Unique: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}
		res.Results = wrapRecords(records)

	case StrategyFuzzy:
		snapshot := r.snapshot
		if !r.snapshotLoaded {
			counted, err := r.store.AllWithCount(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load history snapshot: %w", err)
			}
			snapshot = wrapCounted(counted)
			res.Snapshot = snapshot
			r.logger.Debug().Int("entries", len(snapshot)).Msg("Loaded fuzzy snapshot")
		}
		res.Results = r.ranker.Rank(ctx, q, snapshot)

	default:
		records, err := r.store.Search(ctx, q.SearchMode, q.FilterMode, q.Context, q.Text, history.QueryOptions{
			Limit: ResultLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search history: %w", err)
		}
		res.Results = wrapRecords(records)
	}

	r.logger.Performance("refresh", time.Since(start), map[string]interface{}{
		"strategy": r.Strategy.String(),
		"filter":   q.FilterMode.String(),
		"mode":     q.SearchMode.String(),
		"results":  len(res.Results),
	})

	return res, nil
}

// Apply installs a refresh result and selects the first entry.
func (s *State) Apply(res *RefreshResult) {
	if res.Snapshot != nil && !s.snapshotLoaded {
		s.snapshot = res.Snapshot
		s.snapshotLoaded = true
	}
	s.results = res.Results
	s.list.Select(0)
	s.list.SetOffset(0)
}

// Refresh re-queries the store for the current input and modes. On error the
// visible results are left as they were.
func (s *State) Refresh(ctx context.Context) error {
	res, err := s.PrepareRefresh().Run(ctx)
	if err != nil {
		s.logger.WithError(err).Error().Msg("Refresh failed")
		return err
	}
	s.Apply(res)
	return nil
}
