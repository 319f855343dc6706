// Package ranking orders the in-memory history snapshot for fuzzy search.
package ranking

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
	"github.com/NeverVane/ccsearch/internal/search"
)

// Fuzzy ranks entries by subsequence match score, then run count, then
// recency. Every whitespace separated term of the query must match.
type Fuzzy struct {
	logger *logger.Logger
	limit  int
}

// NewFuzzy creates a ranker returning at most search.ResultLimit entries.
func NewFuzzy(log *logger.Logger) *Fuzzy {
	if log == nil {
		log = logger.GetLogger().Ranking()
	}
	return &Fuzzy{logger: log, limit: search.ResultLimit}
}

// commandSource implements fuzzy.Source over snapshot entries
type commandSource []*search.Entry

func (s commandSource) String(i int) string {
	return s[i].Record.Command
}

func (s commandSource) Len() int {
	return len(s)
}

type scored struct {
	entry *search.Entry
	score int
}

// Rank implements search.Ranker.
func (f *Fuzzy) Rank(ctx context.Context, q search.Query, snapshot []*search.Entry) []*search.Entry {
	start := time.Now()

	candidates := commandSource(inScope(q, snapshot))
	terms := strings.Fields(q.Text)
	if len(terms) == 0 {
		return f.truncate(candidates)
	}

	scores := make(map[int]int, len(candidates))
	hits := make(map[int]int, len(candidates))
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			f.logger.WithError(err).Debug().Msg("Ranking cancelled")
			return nil
		}
		for _, m := range fuzzy.FindFrom(term, candidates) {
			scores[m.Index] += m.Score
			hits[m.Index]++
		}
	}

	matched := make([]scored, 0, len(hits))
	for i := range candidates {
		if hits[i] == len(terms) {
			matched = append(matched, scored{entry: candidates[i], score: scores[i]})
		}
	}

	sort.SliceStable(matched, func(a, b int) bool {
		x, y := matched[a], matched[b]
		if x.score != y.score {
			return x.score > y.score
		}
		if x.entry.Count != y.entry.Count {
			return x.entry.Count > y.entry.Count
		}
		return x.entry.Record.Timestamp > y.entry.Record.Timestamp
	})

	out := make([]*search.Entry, 0, min(len(matched), f.limit))
	for _, m := range matched {
		if len(out) == f.limit {
			break
		}
		out = append(out, m.entry)
	}

	f.logger.Performance("fuzzy_rank", time.Since(start), map[string]interface{}{
		"candidates": len(candidates),
		"matches":    len(matched),
	})
	return out
}

func (f *Fuzzy) truncate(entries []*search.Entry) []*search.Entry {
	if len(entries) > f.limit {
		return entries[:f.limit]
	}
	return entries
}

// inScope keeps the entries visible under the query's filter mode. Snapshot
// entries carry every host, session and directory the command ran in.
func inScope(q search.Query, snapshot []*search.Entry) []*search.Entry {
	if q.FilterMode == modes.FilterGlobal {
		return snapshot
	}

	out := make([]*search.Entry, 0, len(snapshot))
	for _, e := range snapshot {
		var ok bool
		switch q.FilterMode {
		case modes.FilterHost:
			ok = slices.ContainsFunc(e.Record.Hostnames(), func(h string) bool {
				return strings.EqualFold(h, q.Context.Hostname)
			})
		case modes.FilterSession:
			ok = slices.Contains(e.Record.Sessions(), q.Context.SessionID)
		case modes.FilterDirectory:
			ok = slices.Contains(e.Record.Dirs(), q.Context.WorkingDir)
		default:
			ok = true
		}
		if ok {
			out = append(out, e)
		}
	}
	return out
}
