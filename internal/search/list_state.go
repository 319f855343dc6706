package search

// ListState tracks the selected row and the viewport the renderer draws.
// The selection is an index into the visible results, 0 being the newest.
type ListState struct {
	selected int
	offset   int
	capacity int
}

// Selected returns the selected index.
func (l *ListState) Selected() int {
	return l.selected
}

// Select sets the selected index, flooring it at zero.
func (l *ListState) Select(i int) {
	if i < 0 {
		i = 0
	}
	l.selected = i
}

// Capacity is the number of rows the renderer can show.
func (l *ListState) Capacity() int {
	return l.capacity
}

// SetCapacity is called by the renderer whenever the list area is resized.
func (l *ListState) SetCapacity(rows int) {
	if rows < 0 {
		rows = 0
	}
	l.capacity = rows
}

// Offset is the index of the first visible row.
func (l *ListState) Offset() int {
	return l.offset
}

// SetOffset stores the renderer's scroll position.
func (l *ListState) SetOffset(offset int) {
	if offset < 0 {
		offset = 0
	}
	l.offset = offset
}

// ScrollIntoView adjusts the offset so the selection is visible and returns
// the new offset.
func (l *ListState) ScrollIntoView() int {
	if l.capacity <= 0 {
		l.offset = l.selected
		return l.offset
	}
	if l.selected < l.offset {
		l.offset = l.selected
	} else if l.selected >= l.offset+l.capacity {
		l.offset = l.selected - l.capacity + 1
	}
	return l.offset
}

func (l *ListState) moveNewer(n, length int) {
	l.Select(l.selected - n)
	l.clamp(length)
}

func (l *ListState) moveOlder(n, length int) {
	l.Select(l.selected + n)
	l.clamp(length)
}

func (l *ListState) clamp(length int) {
	last := length - 1
	if last < 0 {
		last = 0
	}
	if l.selected > last {
		l.selected = last
	}
	if l.selected < 0 {
		l.selected = 0
	}
}
