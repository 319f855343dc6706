package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/NeverVane/ccsearch/internal/search"
)

type keyMap struct {
	Cancel      key.Binding
	Exit        key.Binding
	Accept      key.Binding
	Jump        []key.Binding
	Left        key.Binding
	Right       key.Binding
	Home        key.Binding
	End         key.Binding
	WordLeft    key.Binding
	WordRight   key.Binding
	Backspace   key.Binding
	Delete      key.Binding
	DeleteWord  key.Binding
	DeleteNext  key.Binding
	DeleteStart key.Binding
	DeleteEnd   key.Binding
	UnixWord    key.Binding
	Clear       key.Binding
	DeleteOrEOF key.Binding
	FilterMode  key.Binding
	SearchMode  key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding

	// invert swaps what up and down mean in the result list
	invert bool
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Exit, k.FilterMode, k.SearchMode, k.Jump[0]}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Accept, k.Exit, k.Cancel, k.Jump[0]},
		{k.Left, k.Right, k.Home, k.End, k.WordLeft, k.WordRight},
		{k.Backspace, k.Delete, k.DeleteWord, k.DeleteNext, k.DeleteStart, k.DeleteEnd, k.UnixWord, k.Clear},
		{k.FilterMode, k.SearchMode},
	}
}

// newKeyMap builds the emacs style bindings. ctrlN moves the row jump keys
// from alt+N to ctrl+N.
func newKeyMap(ctrlN, invert bool) keyMap {
	modifier := "alt"
	if ctrlN {
		modifier = "ctrl"
	}

	jump := make([]key.Binding, 9)
	for i := range jump {
		k := fmt.Sprintf("%s+%d", modifier, i+1)
		jump[i] = key.NewBinding(key.WithKeys(k), key.WithHelp(modifier+"+1-9", "jump"))
	}

	return keyMap{
		Cancel: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+g"),
			key.WithHelp("ctrl+c", "cancel"),
		),
		Exit: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "exit"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter", "accept"),
		),
		Jump: jump,
		Left: key.NewBinding(
			key.WithKeys("left", "ctrl+b"),
			key.WithHelp("←/ctrl+b", "left"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "ctrl+f"),
			key.WithHelp("→/ctrl+f", "right"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("ctrl+a", "line start"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("ctrl+e", "line end"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("alt+b", "ctrl+left", "alt+left"),
			key.WithHelp("alt+b", "word left"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("alt+f", "ctrl+right", "alt+right"),
			key.WithHelp("alt+f", "word right"),
		),
		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("backspace", "delete left"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete"),
			key.WithHelp("delete", "delete right"),
		),
		DeleteWord: key.NewBinding(
			key.WithKeys("alt+backspace", "alt+ctrl+h"),
			key.WithHelp("alt+backspace", "delete word left"),
		),
		DeleteNext: key.NewBinding(
			key.WithKeys("alt+d", "alt+delete"),
			key.WithHelp("alt+d", "delete word right"),
		),
		DeleteStart: key.NewBinding(
			key.WithKeys("alt+u"),
			key.WithHelp("alt+u", "delete to start"),
		),
		DeleteEnd: key.NewBinding(
			key.WithKeys("alt+k"),
			key.WithHelp("alt+k", "delete to end"),
		),
		UnixWord: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "rubout word"),
		),
		Clear: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "clear"),
		),
		DeleteOrEOF: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "delete right or cancel"),
		),
		FilterMode: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "filter mode"),
		),
		SearchMode: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "search mode"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "ctrl+p", "ctrl+k"),
			key.WithHelp("↑/ctrl+p", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "ctrl+n", "ctrl+j"),
			key.WithHelp("↓/ctrl+n", "down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("pgup", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("pgdown", "page down"),
		),
		invert: invert,
	}
}

// vertical returns the list direction of a visual up or down move. The
// newest entry is drawn next to the input, at the bottom unless inverted.
func (k keyMap) vertical(up bool) search.ListDirection {
	if up != k.invert {
		return search.TowardOlder
	}
	return search.TowardNewer
}

// event translates a key press. inputEmpty selects between the two meanings
// of ctrl+d.
func (k keyMap) event(msg tea.KeyMsg, inputEmpty bool) (search.Event, bool) {
	switch {
	case key.Matches(msg, k.Cancel):
		return search.Cancel{}, true
	case key.Matches(msg, k.Exit):
		return search.Exit{}, true
	case key.Matches(msg, k.Accept):
		return search.Accept{}, true
	case key.Matches(msg, k.Left):
		return search.MoveCaret{Dir: search.Left, By: search.ByChar}, true
	case key.Matches(msg, k.Right):
		return search.MoveCaret{Dir: search.Right, By: search.ByChar}, true
	case key.Matches(msg, k.Home):
		return search.MoveCaret{Dir: search.Left, By: search.ToLineEdge}, true
	case key.Matches(msg, k.End):
		return search.MoveCaret{Dir: search.Right, By: search.ToLineEdge}, true
	case key.Matches(msg, k.WordLeft):
		return search.MoveCaret{Dir: search.Left, By: search.ByWord}, true
	case key.Matches(msg, k.WordRight):
		return search.MoveCaret{Dir: search.Right, By: search.ByWord}, true
	case key.Matches(msg, k.Backspace):
		return search.Delete{Dir: search.Left, By: search.ByChar}, true
	case key.Matches(msg, k.Delete):
		return search.Delete{Dir: search.Right, By: search.ByChar}, true
	case key.Matches(msg, k.DeleteWord):
		return search.Delete{Dir: search.Left, By: search.ByWord}, true
	case key.Matches(msg, k.DeleteNext):
		return search.Delete{Dir: search.Right, By: search.ByWord}, true
	case key.Matches(msg, k.DeleteStart):
		return search.Delete{Dir: search.Left, By: search.ToLineEdge}, true
	case key.Matches(msg, k.DeleteEnd):
		return search.Delete{Dir: search.Right, By: search.ToLineEdge}, true
	case key.Matches(msg, k.UnixWord):
		return search.KillUnixWord{}, true
	case key.Matches(msg, k.Clear):
		return search.ClearAll{}, true
	case key.Matches(msg, k.DeleteOrEOF):
		if inputEmpty {
			return search.Cancel{}, true
		}
		return search.Delete{Dir: search.Right, By: search.ByChar}, true
	case key.Matches(msg, k.FilterMode):
		return search.CycleFilterMode{}, true
	case key.Matches(msg, k.SearchMode):
		return search.CycleSearchMode{}, true
	case key.Matches(msg, k.Up):
		return search.MoveSelection{Toward: k.vertical(true), By: search.ByRow}, true
	case key.Matches(msg, k.Down):
		return search.MoveSelection{Toward: k.vertical(false), By: search.ByRow}, true
	case key.Matches(msg, k.PageUp):
		return search.MoveSelection{Toward: k.vertical(true), By: search.ByPage}, true
	case key.Matches(msg, k.PageDown):
		return search.MoveSelection{Toward: k.vertical(false), By: search.ByPage}, true
	}

	for i, b := range k.Jump {
		if key.Matches(msg, b) {
			return search.JumpSelect{Offset: i + 1}, true
		}
	}

	switch msg.Type {
	case tea.KeySpace:
		return search.InsertChar{Char: ' '}, true
	case tea.KeyRunes:
		if msg.Alt {
			return nil, false
		}
		if len(msg.Runes) == 1 && !msg.Paste {
			return search.InsertChar{Char: msg.Runes[0]}, true
		}
		if len(msg.Runes) > 0 {
			return search.InsertString{Text: string(msg.Runes)}, true
		}
	}

	return nil, false
}
