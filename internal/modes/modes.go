// Package modes defines the filter, search and exit modes of a search session
// and the order in which the interactive UI cycles through them.
package modes

import (
	"fmt"
	"strings"
)

// FilterMode scopes history queries.
type FilterMode int

const (
	FilterGlobal FilterMode = iota
	FilterHost
	FilterSession
	FilterDirectory
)

// FilterModeCycle is the order ctrl+r walks through. It is kept separate from
// the constant values so reordering the constants never changes the cycle.
var FilterModeCycle = [...]FilterMode{
	FilterGlobal,
	FilterHost,
	FilterSession,
	FilterDirectory,
}

// Next returns the filter mode that follows m in FilterModeCycle, wrapping
// around at the end. Unknown values restart the cycle.
func (m FilterMode) Next() FilterMode {
	for i, mode := range FilterModeCycle {
		if mode == m {
			return FilterModeCycle[(i+1)%len(FilterModeCycle)]
		}
	}
	return FilterModeCycle[0]
}

func (m FilterMode) String() string {
	switch m {
	case FilterGlobal:
		return "global"
	case FilterHost:
		return "host"
	case FilterSession:
		return "session"
	case FilterDirectory:
		return "directory"
	default:
		return fmt.Sprintf("FilterMode(%d)", int(m))
	}
}

// Label is the upper-case name shown in the UI.
func (m FilterMode) Label() string {
	return strings.ToUpper(m.String())
}

// MarshalText implements encoding.TextMarshaler.
func (m FilterMode) MarshalText() ([]byte, error) {
	if _, err := ParseFilterMode(m.String()); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *FilterMode) UnmarshalText(text []byte) error {
	parsed, err := ParseFilterMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseFilterMode parses the configuration name of a filter mode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "global":
		return FilterGlobal, nil
	case "host":
		return FilterHost, nil
	case "session":
		return FilterSession, nil
	case "directory":
		return FilterDirectory, nil
	}
	return FilterGlobal, fmt.Errorf("invalid filter mode %q (valid: global, host, session, directory)", s)
}

// SearchMode is the matching strategy used for non-empty queries.
type SearchMode int

const (
	SearchPrefix SearchMode = iota
	SearchFullText
	SearchFuzzy
)

// DefaultSearchModeCycle is used when no enabled list is configured.
var DefaultSearchModeCycle = []SearchMode{SearchPrefix, SearchFullText, SearchFuzzy}

// Next returns the mode following m within enabled, wrapping around. A mode
// missing from enabled moves to the first enabled mode.
func (m SearchMode) Next(enabled []SearchMode) SearchMode {
	if len(enabled) == 0 {
		enabled = DefaultSearchModeCycle
	}
	for i, mode := range enabled {
		if mode == m {
			return enabled[(i+1)%len(enabled)]
		}
	}
	return enabled[0]
}

func (m SearchMode) String() string {
	switch m {
	case SearchPrefix:
		return "prefix"
	case SearchFullText:
		return "fulltext"
	case SearchFuzzy:
		return "fuzzy"
	default:
		return fmt.Sprintf("SearchMode(%d)", int(m))
	}
}

// Label is the short upper-case name shown in the UI.
func (m SearchMode) Label() string {
	switch m {
	case SearchPrefix:
		return "PREFIX"
	case SearchFullText:
		return "FULLTXT"
	case SearchFuzzy:
		return "FUZZY"
	}
	return m.String()
}

// MarshalText implements encoding.TextMarshaler.
func (m SearchMode) MarshalText() ([]byte, error) {
	if _, err := ParseSearchMode(m.String()); err != nil {
		return nil, err
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *SearchMode) UnmarshalText(text []byte) error {
	parsed, err := ParseSearchMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseSearchMode parses the configuration name of a search mode.
func ParseSearchMode(s string) (SearchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prefix":
		return SearchPrefix, nil
	case "fulltext", "full-text":
		return SearchFullText, nil
	case "fuzzy":
		return SearchFuzzy, nil
	}
	return SearchFuzzy, fmt.Errorf("invalid search mode %q (valid: prefix, fulltext, fuzzy)", s)
}

// ExitMode decides what escape returns.
type ExitMode int

const (
	// ExitReturnOriginal returns an empty string so the shell keeps its line.
	ExitReturnOriginal ExitMode = iota
	// ExitReturnQuery returns the text typed into the search box.
	ExitReturnQuery
)

func (m ExitMode) String() string {
	switch m {
	case ExitReturnOriginal:
		return "return-original"
	case ExitReturnQuery:
		return "return-query"
	default:
		return fmt.Sprintf("ExitMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m ExitMode) MarshalText() ([]byte, error) {
	switch m {
	case ExitReturnOriginal, ExitReturnQuery:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid exit mode %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *ExitMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "return-original":
		*m = ExitReturnOriginal
	case "return-query":
		*m = ExitReturnQuery
	default:
		return fmt.Errorf("invalid exit mode %q (valid: return-original, return-query)", string(text))
	}
	return nil
}
