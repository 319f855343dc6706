package output

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/NeverVane/ccsearch/internal/config"
)

// ColorFormatter colors CLI output with the configured palette
type ColorFormatter struct {
	enabled bool
	isTTY   bool
	colors  map[StatusType]string
}

// StatusType selects the palette entry used for a piece of output
type StatusType string

const (
	StatusSuccess StatusType = "success"
	StatusError   StatusType = "error"
	StatusWarning StatusType = "warning"
	StatusInfo    StatusType = "info"
	StatusMuted   StatusType = "muted"
)

// ANSI color codes
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"
)

// NewColorFormatter creates a formatter that colors only when out is a terminal
func NewColorFormatter(colors config.ColorConfig, out *os.File) *ColorFormatter {
	cf := &ColorFormatter{
		isTTY: out != nil && term.IsTerminal(int(out.Fd())),
		colors: map[StatusType]string{
			StatusSuccess: hexToAnsi(colors.Count),
			StatusError:   hexToAnsi(colors.Error),
			StatusWarning: hexToAnsi(colors.Update),
			StatusInfo:    hexToAnsi(colors.Prompt),
			StatusMuted:   hexToAnsi(colors.Muted),
		},
	}
	cf.enabled = cf.isTTY

	// NO_COLOR disables colors regardless of the terminal
	if os.Getenv("NO_COLOR") != "" {
		cf.enabled = false
	}
	return cf
}

// SetNoColor disables color output (for --no-color flag)
func (cf *ColorFormatter) SetNoColor(noColor bool) {
	cf.enabled = !noColor && cf.isTTY && os.Getenv("NO_COLOR") == ""
}

func (cf *ColorFormatter) Success(message string) string {
	return cf.formatStatus("[OK]", message, StatusSuccess)
}

func (cf *ColorFormatter) Error(message string) string {
	return cf.formatStatus("[FAIL]", message, StatusError)
}

func (cf *ColorFormatter) Warning(message string) string {
	return cf.formatStatus("[WARN]", message, StatusWarning)
}

func (cf *ColorFormatter) Info(message string) string {
	return cf.formatStatus("[INFO]", message, StatusInfo)
}

func (cf *ColorFormatter) formatStatus(indicator, message string, statusType StatusType) string {
	return cf.Colorize(indicator, statusType) + " " + message
}

// Colorize applies color to text based on status type
func (cf *ColorFormatter) Colorize(text string, statusType StatusType) string {
	if !cf.enabled {
		return text
	}

	colorCode := cf.colors[statusType]
	if colorCode == "" {
		return text
	}
	return colorCode + text + Reset
}

// Bold makes text bold (if colors are enabled)
func (cf *ColorFormatter) Bold(text string) string {
	if !cf.enabled {
		return text
	}
	return Bold + text + Reset
}

// IsEnabled returns whether colors are currently enabled
func (cf *ColorFormatter) IsEnabled() bool {
	return cf.enabled
}

// hexToAnsi converts a #RRGGBB color to a 24-bit foreground escape sequence
func hexToAnsi(hex string) string {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string(hex[0]) + string(hex[0]) + string(hex[1]) + string(hex[1]) + string(hex[2]) + string(hex[2])
	}
	if len(hex) != 6 {
		return ""
	}

	r, err1 := strconv.ParseUint(hex[0:2], 16, 8)
	g, err2 := strconv.ParseUint(hex[2:4], 16, 8)
	b, err3 := strconv.ParseUint(hex[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return ""
	}

	return fmt.Sprintf("\033[38;2;%d;%d;%dm", r, g, b)
}
