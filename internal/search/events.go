package search

import "github.com/Masterminds/semver/v3"

// Event is an input to State.Handle. The set is closed.
type Event interface {
	isEvent()
}

// ListDirection is a direction in the result list.
type ListDirection int

const (
	// TowardOlder moves away from the newest entry.
	TowardOlder ListDirection = iota
	// TowardNewer moves toward index 0.
	TowardNewer
)

// ListStep is how far a selection move goes.
type ListStep int

const (
	ByRow ListStep = iota
	ByPage
)

// CaretDirection is a direction in the input line.
type CaretDirection int

const (
	Left CaretDirection = iota
	Right
)

// CaretUnit is the granularity of caret moves and deletions.
type CaretUnit int

const (
	ByChar CaretUnit = iota
	ByWord
	ToLineEdge
)

type (
	// InsertChar types one character at the caret.
	InsertChar struct{ Char rune }

	// InsertString inserts pasted text at the caret.
	InsertString struct{ Text string }

	MoveSelection struct {
		Toward ListDirection
		By     ListStep
	}

	MoveCaret struct {
		Dir CaretDirection
		By  CaretUnit
	}

	// Delete removes text next to the caret.
	Delete struct {
		Dir CaretDirection
		By  CaretUnit
	}

	// KillUnixWord removes back to the previous whitespace.
	KillUnixWord struct{}

	ClearAll struct{}

	// Cancel ends the session with an empty result.
	Cancel struct{}

	// Exit ends the session according to the exit mode.
	Exit struct{}

	// Accept ends the session with the selected command.
	Accept struct{}

	// VersionNotice carries a newer release, or nil when up to date.
	VersionNotice struct{ Version *semver.Version }

	// JumpSelect is the alt+N shortcut, N rows past the selection.
	JumpSelect struct{ Offset int }

	CycleFilterMode struct{}
	CycleSearchMode struct{}
)

func (InsertChar) isEvent()      {}
func (InsertString) isEvent()    {}
func (MoveSelection) isEvent()   {}
func (MoveCaret) isEvent()       {}
func (Delete) isEvent()          {}
func (KillUnixWord) isEvent()    {}
func (ClearAll) isEvent()        {}
func (Cancel) isEvent()          {}
func (Exit) isEvent()            {}
func (Accept) isEvent()          {}
func (VersionNotice) isEvent()   {}
func (JumpSelect) isEvent()      {}
func (CycleFilterMode) isEvent() {}
func (CycleSearchMode) isEvent() {}

// Outcome is the result of handling one event: Continue or Break.
type Outcome interface {
	isOutcome()
}

// Continue means the session goes on with State.
type Continue struct {
	State *State
}

// Break ends the session. Result is the text handed back to the shell.
type Break struct {
	Result string
}

func (Continue) isOutcome() {}
func (Break) isOutcome()    {}
