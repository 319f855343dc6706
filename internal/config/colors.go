package config

import (
	"fmt"
	"strings"
)

// ColorConfig contains the hex colors of the search screen
type ColorConfig struct {
	Selected string `toml:"selected"` // Selected row
	Prompt   string `toml:"prompt"`   // Input prompt and mode badges
	Header   string `toml:"header"`   // Title line
	Update   string `toml:"update"`   // New release notice
	Count    string `toml:"count"`    // Run counts and history totals
	Error    string `toml:"error"`    // Refresh failures
	Muted    string `toml:"muted"`    // Help line and timestamps
}

// DefaultColors returns the built-in palette
func DefaultColors() ColorConfig {
	return ColorConfig{
		Selected: "#00FFFF", // cyan
		Prompt:   "#FF00FF", // magenta
		Header:   "#FFFFFF", // white
		Update:   "#FF0000", // red
		Count:    "#80FF80", // bright green
		Error:    "#FF8080", // bright red
		Muted:    "#888888", // gray
	}
}

func (c *ColorConfig) fillDefaults() {
	def := DefaultColors()
	for _, f := range []struct {
		value *string
		def   string
	}{
		{&c.Selected, def.Selected},
		{&c.Prompt, def.Prompt},
		{&c.Header, def.Header},
		{&c.Update, def.Update},
		{&c.Count, def.Count},
		{&c.Error, def.Error},
		{&c.Muted, def.Muted},
	} {
		if *f.value == "" {
			*f.value = f.def
		}
	}
}

// Validate checks that every color is a #RRGGBB code
func (c ColorConfig) Validate() error {
	for name, value := range map[string]string{
		"selected": c.Selected,
		"prompt":   c.Prompt,
		"header":   c.Header,
		"update":   c.Update,
		"count":    c.Count,
		"error":    c.Error,
		"muted":    c.Muted,
	} {
		if !IsValidHexColor(value) {
			return fmt.Errorf("%s: invalid color %q, expected #RRGGBB", name, value)
		}
	}
	return nil
}

// IsValidHexColor checks if a color code has the #RRGGBB form
func IsValidHexColor(code string) bool {
	if len(code) != 7 || code[0] != '#' {
		return false
	}
	return strings.Trim(strings.ToLower(code[1:]), "0123456789abcdef") == ""
}
