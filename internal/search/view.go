package search

import "github.com/Masterminds/semver/v3"

// View is what the renderer reads. List is shared with the State so the
// renderer can record the viewport size and scroll offset.
type View struct {
	HistoryCount int64
	List         *ListState
	UpdateNeeded *semver.Version
	Results      []*Entry
	Search       *SearchState
}

// View returns the current projection of the state.
func (s *State) View() View {
	return View{
		HistoryCount: s.historyCount,
		List:         &s.list,
		UpdateNeeded: s.updateNeeded,
		Results:      s.results,
		Search:       &s.search,
	}
}
