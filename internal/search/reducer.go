package search

import "github.com/NeverVane/ccsearch/internal/modes"

// Handle applies one event. It never fails and never touches the store.
func (s *State) Handle(ev Event) Outcome {
	s.search.SwitchedMode = false

	input := s.search.Input
	wordChars := s.settings.WordChars
	jump := s.settings.WordJumpMode

	switch e := ev.(type) {
	case InsertChar:
		input.Insert(e.Char)

	case InsertString:
		input.InsertString(e.Text)

	case MoveSelection:
		n := 1
		if e.By == ByPage {
			n = s.settings.pageSize(s.list.capacity)
		}
		if e.Toward == TowardNewer {
			if e.By == ByRow && s.list.selected == 0 {
				return Break{}
			}
			s.list.moveNewer(n, len(s.results))
		} else {
			s.list.moveOlder(n, len(s.results))
		}

	case MoveCaret:
		switch {
		case e.Dir == Left && e.By == ByChar:
			input.Left()
		case e.Dir == Left && e.By == ByWord:
			input.PrevWord(wordChars, jump)
		case e.Dir == Left:
			input.Start()
		case e.By == ByChar:
			input.Right()
		case e.By == ByWord:
			input.NextWord(wordChars, jump)
		default:
			input.End()
		}

	case Delete:
		switch {
		case e.Dir == Left && e.By == ByChar:
			input.Back()
		case e.Dir == Left && e.By == ByWord:
			input.RemovePrevWord(wordChars, jump)
		case e.Dir == Left:
			input.RemoveToStart()
		case e.By == ByChar:
			input.Remove()
		case e.By == ByWord:
			input.RemoveNextWord(wordChars, jump)
		default:
			input.RemoveToEnd()
		}

	case KillUnixWord:
		input.RemoveUnixWord()

	case ClearAll:
		input.Clear()

	case Cancel:
		return Break{}

	case Exit:
		if s.settings.ExitMode == modes.ExitReturnQuery {
			return Break{Result: input.String()}
		}
		return Break{}

	case Accept:
		if command, ok := s.takeResult(s.list.selected); ok {
			return Break{Result: command}
		}
		return Break{Result: input.String()}

	case VersionNotice:
		s.updateNeeded = e.Version

	case JumpSelect:
		i := s.list.selected + e.Offset
		if i >= 0 && i < len(s.results) {
			return Break{Result: input.String()}
		}
		// Offsets past the list take nothing and the session goes on.
		if command, ok := s.takeResult(i); ok {
			return Break{Result: command}
		}

	case CycleFilterMode:
		s.search.FilterMode = s.search.FilterMode.Next()
		s.search.SwitchedMode = true

	case CycleSearchMode:
		s.search.SearchMode = s.search.SearchMode.Next(s.settings.SearchModes)
		s.search.SwitchedMode = true
	}

	return Continue{State: s}
}

// takeResult removes entry i from the visible results and returns its
// command. Indexes outside the list leave it untouched.
func (s *State) takeResult(i int) (string, bool) {
	if i < 0 || i >= len(s.results) {
		return "", false
	}
	command := s.results[i].Command()
	s.results = append(s.results[:i:i], s.results[i+1:]...)
	s.list.clamp(len(s.results))
	return command, true
}
