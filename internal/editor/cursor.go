// Package editor implements the single-line query buffer used by the search box.
package editor

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// WordJumpMode selects how word-wise motions treat separator runs.
type WordJumpMode int

const (
	// WordJumpEmacs skips separators and stops at the far edge of the next word.
	WordJumpEmacs WordJumpMode = iota
	// WordJumpSubl stops at token boundaries and also skips the whitespace that follows.
	WordJumpSubl
)

func (m WordJumpMode) String() string {
	switch m {
	case WordJumpEmacs:
		return "emacs"
	case WordJumpSubl:
		return "subl"
	default:
		return fmt.Sprintf("WordJumpMode(%d)", int(m))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m WordJumpMode) MarshalText() ([]byte, error) {
	switch m {
	case WordJumpEmacs, WordJumpSubl:
		return []byte(m.String()), nil
	}
	return nil, fmt.Errorf("invalid word jump mode %d", int(m))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *WordJumpMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "emacs":
		*m = WordJumpEmacs
	case "subl":
		*m = WordJumpSubl
	default:
		return fmt.Errorf("invalid word jump mode %q (valid: emacs, subl)", string(text))
	}
	return nil
}

// Cursor is a text buffer with a caret. Positions reported by Index and Len
// count runes; the caret is stored as a byte offset on a rune boundary.
type Cursor struct {
	source string
	index  int
}

// New creates a cursor holding text with the caret at the end.
func New(text string) *Cursor {
	return &Cursor{source: text, index: len(text)}
}

// String returns the buffer without copying it.
func (c *Cursor) String() string {
	return c.source
}

// Index returns the caret position in runes, in [0, Len()].
func (c *Cursor) Index() int {
	return utf8.RuneCountInString(c.source[:c.index])
}

// ByteIndex returns the caret position as a byte offset into String().
func (c *Cursor) ByteIndex() int {
	return c.index
}

// Len returns the buffer length in runes.
func (c *Cursor) Len() int {
	return utf8.RuneCountInString(c.source)
}

// IsEmpty reports whether the buffer holds no text.
func (c *Cursor) IsEmpty() bool {
	return c.source == ""
}

// Substring returns the text left of the caret.
func (c *Cursor) Substring() string {
	return c.source[:c.index]
}

// Char returns the rune under the caret.
func (c *Cursor) Char() (rune, bool) {
	if c.index >= len(c.source) {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(c.source[c.index:])
	return r, true
}

// Left moves the caret one rune left. It reports whether the caret moved.
func (c *Cursor) Left() bool {
	if c.index == 0 {
		return false
	}
	_, size := utf8.DecodeLastRuneInString(c.source[:c.index])
	c.index -= size
	return true
}

// Right moves the caret one rune right. It reports whether the caret moved.
func (c *Cursor) Right() bool {
	if c.index >= len(c.source) {
		return false
	}
	_, size := utf8.DecodeRuneInString(c.source[c.index:])
	c.index += size
	return true
}

func (c *Cursor) Start() {
	c.index = 0
}

func (c *Cursor) End() {
	c.index = len(c.source)
}

// Insert places r at the caret and moves the caret past it.
func (c *Cursor) Insert(r rune) {
	if !utf8.ValidRune(r) {
		r = utf8.RuneError
	}
	c.InsertString(string(r))
}

// InsertString places s at the caret and moves the caret past it.
func (c *Cursor) InsertString(s string) {
	if s == "" {
		return
	}
	s = strings.ToValidUTF8(s, string(utf8.RuneError))
	c.source = c.source[:c.index] + s + c.source[c.index:]
	c.index += len(s)
}

// Remove deletes the rune under the caret and returns it.
func (c *Cursor) Remove() (rune, bool) {
	if c.index >= len(c.source) {
		return 0, false
	}
	r, size := utf8.DecodeRuneInString(c.source[c.index:])
	c.source = c.source[:c.index] + c.source[c.index+size:]
	return r, true
}

// Back deletes the rune left of the caret and returns it.
func (c *Cursor) Back() (rune, bool) {
	if !c.Left() {
		return 0, false
	}
	return c.Remove()
}

func (c *Cursor) RemoveToStart() {
	c.source = c.source[c.index:]
	c.index = 0
}

func (c *Cursor) RemoveToEnd() {
	c.source = c.source[:c.index]
}

func (c *Cursor) Clear() {
	c.source = ""
	c.index = 0
}

// NextWord moves the caret to the next word position.
func (c *Cursor) NextWord(wordChars string, mode WordJumpMode) {
	c.index = c.nextWordPos(wordChars, mode)
}

// PrevWord moves the caret to the previous word position.
func (c *Cursor) PrevWord(wordChars string, mode WordJumpMode) {
	c.index = c.prevWordPos(wordChars, mode)
}

// RemoveNextWord deletes from the caret up to the next word position.
func (c *Cursor) RemoveNextWord(wordChars string, mode WordJumpMode) {
	next := c.nextWordPos(wordChars, mode)
	c.source = c.source[:c.index] + c.source[next:]
}

// RemovePrevWord deletes from the previous word position up to the caret.
func (c *Cursor) RemovePrevWord(wordChars string, mode WordJumpMode) {
	prev := c.prevWordPos(wordChars, mode)
	c.source = c.source[:prev] + c.source[c.index:]
	c.index = prev
}

// RemoveUnixWord deletes whitespace left of the caret and then everything
// back to the previous whitespace, like readline's unix-word-rubout.
func (c *Cursor) RemoveUnixWord() {
	start := c.index
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(c.source[:start])
		if !unicode.IsSpace(r) {
			break
		}
		start -= size
	}
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(c.source[:start])
		if unicode.IsSpace(r) {
			break
		}
		start -= size
	}
	c.source = c.source[:start] + c.source[c.index:]
	c.index = start
}

type charClass int

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classify(r rune, wordChars string) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case strings.ContainsRune(wordChars, r):
		return classWord
	default:
		return classPunct
	}
}

func isWord(r rune, wordChars string) bool {
	return strings.ContainsRune(wordChars, r)
}

func (c *Cursor) nextWordPos(wordChars string, mode WordJumpMode) int {
	i := c.index
	n := len(c.source)
	if mode == WordJumpSubl {
		if i >= n {
			return n
		}
		first, _ := utf8.DecodeRuneInString(c.source[i:])
		class := classify(first, wordChars)
		for i < n {
			r, size := utf8.DecodeRuneInString(c.source[i:])
			if classify(r, wordChars) != class {
				break
			}
			i += size
		}
		for i < n {
			r, size := utf8.DecodeRuneInString(c.source[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		return i
	}

	for i < n {
		r, size := utf8.DecodeRuneInString(c.source[i:])
		if isWord(r, wordChars) {
			break
		}
		i += size
	}
	for i < n {
		r, size := utf8.DecodeRuneInString(c.source[i:])
		if !isWord(r, wordChars) {
			break
		}
		i += size
	}
	return i
}

func (c *Cursor) prevWordPos(wordChars string, mode WordJumpMode) int {
	i := c.index
	if mode == WordJumpSubl {
		for i > 0 {
			r, size := utf8.DecodeLastRuneInString(c.source[:i])
			if !unicode.IsSpace(r) {
				break
			}
			i -= size
		}
		if i == 0 {
			return 0
		}
		last, _ := utf8.DecodeLastRuneInString(c.source[:i])
		class := classify(last, wordChars)
		for i > 0 {
			r, size := utf8.DecodeLastRuneInString(c.source[:i])
			if classify(r, wordChars) != class {
				break
			}
			i -= size
		}
		return i
	}

	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(c.source[:i])
		if isWord(r, wordChars) {
			break
		}
		i -= size
	}
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(c.source[:i])
		if !isWord(r, wordChars) {
			break
		}
		i -= size
	}
	return i
}
