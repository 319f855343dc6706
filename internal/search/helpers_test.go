package search

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
)

// fakeStore serves records newest first and counts every call.
type fakeStore struct {
	records []*history.Record
	err     error

	countCalls  int
	listCalls   int
	searchCalls int
	allCalls    int

	lastListOpts   history.QueryOptions
	lastSearchOpts history.QueryOptions
	lastFilter     modes.FilterMode
	lastMode       modes.SearchMode
	lastQuery      string
}

func newFakeStore(commands ...string) *fakeStore {
	fs := &fakeStore{}
	for i, c := range commands {
		fs.records = append(fs.records, &history.Record{
			ID:        fmt.Sprintf("id-%d", i),
			Command:   c,
			Timestamp: int64(1000 - i),
			SessionID: "session",
			Hostname:  "host:user",
		})
	}
	return fs
}

func (f *fakeStore) HistoryCount(ctx context.Context) (int64, error) {
	f.countCalls++
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.records)), nil
}

func (f *fakeStore) List(ctx context.Context, filter modes.FilterMode, hctx history.Context, opts history.QueryOptions) ([]*history.Record, error) {
	f.listCalls++
	f.lastListOpts = opts
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return limit(f.records, opts.Limit), nil
}

func (f *fakeStore) Search(ctx context.Context, mode modes.SearchMode, filter modes.FilterMode, hctx history.Context, query string, opts history.QueryOptions) ([]*history.Record, error) {
	f.searchCalls++
	f.lastSearchOpts = opts
	f.lastFilter = filter
	f.lastMode = mode
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	var out []*history.Record
	for _, r := range f.records {
		if strings.Contains(r.Command, query) {
			out = append(out, r)
		}
	}
	return limit(out, opts.Limit), nil
}

func (f *fakeStore) AllWithCount(ctx context.Context) ([]history.CountedRecord, error) {
	f.allCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]history.CountedRecord, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, history.CountedRecord{Record: r, Count: 3})
	}
	return out, nil
}

func (f *fakeStore) refreshCalls() int {
	return f.listCalls + f.searchCalls + f.allCalls
}

func limit(records []*history.Record, n int) []*history.Record {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

// countingRanker keeps snapshot entries whose command contains the query.
type countingRanker struct {
	calls        int
	lastSnapshot []*Entry
}

func (r *countingRanker) Rank(ctx context.Context, q Query, snapshot []*Entry) []*Entry {
	r.calls++
	r.lastSnapshot = snapshot
	var out []*Entry
	for _, e := range snapshot {
		if strings.Contains(e.Command(), q.Text) {
			out = append(out, e)
		}
	}
	return out
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, _, err := logger.New(&logger.Config{Level: "disabled", Output: "none"})
	require.NoError(t, err)
	return l
}

func newTestState(t *testing.T, store *fakeStore, settings Settings, query ...string) *State {
	t.Helper()
	s, err := New(context.Background(), Options{
		Store:    store,
		Settings: settings,
		Context:  history.Context{SessionID: "session", Hostname: "host:user", WorkingDir: "/tmp"},
		Query:    query,
		Logger:   testLogger(t),
	})
	require.NoError(t, err)
	return s
}

func prefixSettings() Settings {
	s := DefaultSettings()
	s.SearchMode = modes.SearchPrefix
	return s
}
