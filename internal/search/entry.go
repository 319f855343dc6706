package search

import "github.com/NeverVane/ccsearch/internal/history"

// Entry is a history record paired with its run count. Entries are shared by
// pointer between the visible results and the fuzzy snapshot and are never
// modified after creation.
type Entry struct {
	Record *history.Record
	Count  int
}

// NewEntry wraps r. Counts below one are raised to one.
func NewEntry(r *history.Record, count int) *Entry {
	if count < 1 {
		count = 1
	}
	return &Entry{Record: r, Count: count}
}

// Command returns the command text of the wrapped record.
func (e *Entry) Command() string {
	return e.Record.Command
}

func wrapRecords(records []*history.Record) []*Entry {
	entries := make([]*Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, NewEntry(r, 1))
	}
	return entries
}

func wrapCounted(records []history.CountedRecord) []*Entry {
	entries := make([]*Entry, 0, len(records))
	for _, cr := range records {
		entries = append(entries, NewEntry(cr.Record, cr.Count))
	}
	return entries
}
