package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/NeverVane/ccsearch/internal/search"
)

// Rows drawn besides the result list: header, status and input.
const fixedRows = 3

func (m model) listHeight() int {
	rows := m.height - fixedRows
	if m.tuiCfg.ShowHelp {
		rows--
	}
	if rows < 0 {
		return 0
	}
	return rows
}

// View implements tea.Model
func (m model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}

	v := m.state.View()
	results := m.renderResults(v)
	input := m.renderInput(v.Search)
	status := m.renderStatus(v)

	var sections []string
	sections = append(sections, m.renderHeader(v))
	if m.keys.invert {
		sections = append(sections, input, status)
		sections = append(sections, results...)
	} else {
		sections = append(sections, results...)
		sections = append(sections, status, input)
	}
	if m.tuiCfg.ShowHelp {
		m.help.Width = m.width
		sections = append(sections, m.help.View(m.keys))
	}

	return strings.Join(sections, "\n")
}

// renderHeader renders the title with the update notice or history size
func (m model) renderHeader(v search.View) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(m.colors.Header)).
		Render("ccsearch")
	if m.opts.Version != "" {
		title += " " + m.muted().Render(m.opts.Version)
	}

	right := ""
	switch {
	case v.UpdateNeeded != nil:
		right = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.colors.Update)).
			Render(fmt.Sprintf("update available: v%s", v.UpdateNeeded.String()))
	case m.tuiCfg.ShowCounts:
		right = lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.colors.Count)).
			Render(fmt.Sprintf("history: %d", v.HistoryCount))
	}

	padding := m.width - lipgloss.Width(title) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return title + strings.Repeat(" ", padding) + right
}

// renderResults returns exactly one line per list row. The newest entry sits
// next to the input line.
func (m model) renderResults(v search.View) []string {
	capacity := v.List.Capacity()
	lines := make([]string, 0, capacity)
	if capacity == 0 {
		return lines
	}

	offset := v.List.ScrollIntoView()
	for i := offset; i < len(v.Results) && len(lines) < capacity; i++ {
		lines = append(lines, m.renderRow(v.Results[i], i == v.List.Selected()))
	}
	for len(lines) < capacity {
		lines = append(lines, "")
	}

	if !m.keys.invert {
		for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
			lines[i], lines[j] = lines[j], lines[i]
		}
	}
	return lines
}

func (m model) renderRow(e *search.Entry, selected bool) string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	meta := fmt.Sprintf("%5s %6s ", formatTimeAgo(e.Record.Timestamp), formatDuration(e.Record.Duration))
	if m.tuiCfg.ShowCounts {
		count := ""
		if e.Count > 1 {
			count = fmt.Sprintf("%d×", e.Count)
		}
		meta += fmt.Sprintf("%4s ", count)
	}

	command := strings.ReplaceAll(e.Command(), "\n", " ")
	room := m.width - runewidth.StringWidth(indicator) - runewidth.StringWidth(meta)
	if room < 1 {
		room = 1
	}
	command = runewidth.Truncate(command, room, "…")

	metaStyle := m.muted()
	if e.Record.ExitCode != 0 {
		metaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Error))
	}

	if selected {
		sel := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.colors.Selected))
		return sel.Render(indicator) + metaStyle.Render(meta) + sel.Render(command)
	}
	return indicator + metaStyle.Render(meta) + command
}

// renderStatus shows the last refresh error, or the result count
func (m model) renderStatus(v search.View) string {
	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color(m.colors.Error)).
			Render(runewidth.Truncate(fmt.Sprintf("error: %v", m.err), m.width, "…"))
	}
	if m.refreshing {
		return m.muted().Render("searching…")
	}
	if !m.tuiCfg.ShowCounts {
		return ""
	}

	var parts []string
	if len(v.Results) > 0 {
		parts = append(parts, fmt.Sprintf("%d/%d", v.List.Selected()+1, len(v.Results)))
	} else {
		parts = append(parts, "no matches")
	}
	if m.lastRefresh > 0 {
		parts = append(parts, m.lastRefresh.Truncate(time.Millisecond).String())
	}
	return m.muted().Render(strings.Join(parts, " · "))
}

// renderInput renders the mode badges and the query with a block caret
func (m model) renderInput(s *search.SearchState) string {
	badgeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.colors.Prompt))
	badges := badgeStyle.Render(fmt.Sprintf("[ %s ] [%s]", s.FilterMode.Label(), s.SearchMode.Label()))
	prompt := badges + " > "

	text := s.Input.String()
	before, after := text[:s.Input.ByteIndex()], text[s.Input.ByteIndex():]

	caret := " "
	if r, size := utf8.DecodeRuneInString(after); size > 0 {
		caret = string(r)
		after = after[size:]
	}

	avail := m.width - lipgloss.Width(prompt) - runewidth.StringWidth(caret)
	if avail < 1 {
		avail = 1
	}
	if w := runewidth.StringWidth(before); w > avail {
		before = "…" + dropLeft(before, w-avail+1)
	}
	if room := avail - runewidth.StringWidth(before); room > 0 {
		after = runewidth.Truncate(after, room, "…")
	} else {
		after = ""
	}

	return prompt + before + lipgloss.NewStyle().Reverse(true).Render(caret) + after
}

// dropLeft removes leading runes until at least cells columns are gone
func dropLeft(s string, cells int) string {
	for i, r := range s {
		if cells <= 0 {
			return s[i:]
		}
		cells -= runewidth.RuneWidth(r)
	}
	return ""
}

func (m model) muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(m.colors.Muted))
}

func formatTimeAgo(timestamp int64) string {
	duration := time.Since(time.UnixMilli(timestamp))

	switch {
	case duration < time.Minute:
		return "now"
	case duration < time.Hour:
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	case duration < 24*time.Hour:
		return fmt.Sprintf("%dh", int(duration.Hours()))
	case duration < 365*24*time.Hour:
		return fmt.Sprintf("%dd", int(duration.Hours()/24))
	default:
		return fmt.Sprintf("%dy", int(duration.Hours()/(24*365)))
	}
}

func formatDuration(durationMs int64) string {
	if durationMs < 1000 {
		return fmt.Sprintf("%dms", durationMs)
	} else if durationMs < 60000 {
		seconds := float64(durationMs) / 1000
		if seconds < 10 {
			return fmt.Sprintf("%.1fs", seconds)
		}
		return fmt.Sprintf("%.0fs", seconds)
	}
	return fmt.Sprintf("%.1fm", float64(durationMs)/60000)
}
