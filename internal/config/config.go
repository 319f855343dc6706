package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/NeverVane/ccsearch/internal/editor"
	"github.com/NeverVane/ccsearch/internal/logger"
	"github.com/NeverVane/ccsearch/internal/modes"
	"github.com/NeverVane/ccsearch/internal/search"
)

// Environment variables that override file locations.
const (
	EnvConfigPath = "CCS_CONFIG"
	EnvDataDir    = "CCS_DATA_DIR"
)

// Config represents the complete configuration for ccsearch
type Config struct {
	// Database configuration
	Database DatabaseConfig `toml:"database"`

	// Interactive search behaviour
	Search SearchConfig `toml:"search"`

	// TUI configuration
	TUI TUIConfig `toml:"tui"`

	// Logging configuration
	Logging logger.Config `toml:"logging"`

	// Update check configuration
	Update UpdateConfig `toml:"update"`

	// Sentry configuration
	Sentry SentryConfig `toml:"sentry"`

	// Directory paths (computed, not stored in TOML)
	DataDir   string `toml:"-"`
	ConfigDir string `toml:"-"`
}

// DatabaseConfig contains database-related settings
type DatabaseConfig struct {
	// Path to the SQLite database file
	Path string `toml:"path"`

	// Connection pool settings
	MaxOpenConns int `toml:"max_open_conns"`
	MaxIdleConns int `toml:"max_idle_conns"`

	// WAL mode settings
	WALMode bool `toml:"wal_mode"`

	// Synchronous mode (OFF, NORMAL, FULL)
	SyncMode string `toml:"sync_mode"`

	// How long a connection waits on a locked database
	BusyTimeoutMS int `toml:"busy_timeout_ms"`
}

// SearchConfig holds the settings of an interactive search session
type SearchConfig struct {
	FilterMode                  modes.FilterMode  `toml:"filter_mode"`
	FilterModeShellUpKeyBinding *modes.FilterMode `toml:"filter_mode_shell_up_key_binding,omitempty"`
	SearchMode                  modes.SearchMode  `toml:"search_mode"`
	SearchModeShellUpKeyBinding *modes.SearchMode `toml:"search_mode_shell_up_key_binding,omitempty"`

	// Set by the shell widget bound to the up arrow
	ShellUpKeyBinding bool `toml:"shell_up_key_binding"`

	// Modes ctrl+s cycles through
	SearchModes []modes.SearchMode `toml:"search_modes"`

	// Rows kept visible from the previous page on page up/down
	ScrollContextLines int `toml:"scroll_context_lines"`

	WordChars    string              `toml:"word_chars"`
	WordJumpMode editor.WordJumpMode `toml:"word_jump_mode"`
	ExitMode     modes.ExitMode      `toml:"exit_mode"`

	// Use ctrl+N instead of alt+N to jump to a row
	CtrlNShortcuts bool `toml:"ctrl_n_shortcuts"`

	// Draw the input at the top and the newest entry first
	Invert bool `toml:"invert"`

	// Upper bound for one refresh round trip, 0 disables
	RefreshTimeoutMS int `toml:"refresh_timeout_ms"`
}

// TUIConfig contains TUI interface settings
type TUIConfig struct {
	AltScreen  bool `toml:"alt_screen"`
	ShowHelp   bool `toml:"show_help"`
	ShowCounts bool `toml:"show_counts"`
	MouseWheel bool `toml:"mouse_wheel"`

	// Hex colors for the search screen
	Colors ColorConfig `toml:"colors"`
}

// UpdateConfig controls the new release check shown in the search header
type UpdateConfig struct {
	Check          bool   `toml:"check"`
	RepoOwner      string `toml:"repo_owner"`
	RepoName       string `toml:"repo_name"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// SentryConfig contains Sentry error monitoring settings
type SentryConfig struct {
	// Enable Sentry error monitoring
	Enabled bool `toml:"enabled"`

	// Sentry DSN for error reporting
	DSN string `toml:"dsn"`

	// Environment name (development, staging, production)
	Environment string `toml:"environment"`

	// Sample rate for error reporting (0.0 to 1.0)
	SampleRate float64 `toml:"sample_rate"`

	// Release version for error grouping
	Release string `toml:"release"`

	// Debug mode for Sentry SDK
	Debug bool `toml:"debug"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	configDir := filepath.Join(homeDir, ".config", "ccsearch")
	dataDir := filepath.Join(homeDir, ".local", "share", "ccsearch")
	if env := os.Getenv(EnvDataDir); env != "" {
		dataDir = env
	}

	return &Config{
		Database: DatabaseConfig{
			Path:          filepath.Join(dataDir, "history.db"),
			MaxOpenConns:  4,
			MaxIdleConns:  2,
			WALMode:       true,
			SyncMode:      "NORMAL",
			BusyTimeoutMS: 5000,
		},
		Search: SearchConfig{
			FilterMode:         modes.FilterGlobal,
			SearchMode:         modes.SearchFuzzy,
			SearchModes:        append([]modes.SearchMode(nil), modes.DefaultSearchModeCycle...),
			ScrollContextLines: 1,
			WordChars:          search.DefaultWordChars,
			WordJumpMode:       editor.WordJumpEmacs,
			ExitMode:           modes.ExitReturnOriginal,
			RefreshTimeoutMS:   2000,
		},
		TUI: TUIConfig{
			AltScreen:  true,
			ShowHelp:   true,
			ShowCounts: true,
			MouseWheel: true,
			Colors:     DefaultColors(),
		},
		Logging: *logger.DefaultConfig(),
		Update: UpdateConfig{
			Check:          true,
			RepoOwner:      "NeverVane",
			RepoName:       "ccsearch",
			TimeoutSeconds: 5,
		},
		Sentry: SentryConfig{
			Enabled:     false,
			Environment: "production",
			SampleRate:  1.0,
		},
		DataDir:   dataDir,
		ConfigDir: configDir,
	}
}

// DefaultPath returns the config file location, honouring CCS_CONFIG.
func DefaultPath() string {
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config", "ccsearch", "config.toml")
}

// Load loads configuration from the specified file path
func Load(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		configPath = DefaultPath()
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if _, err := toml.DecodeFile(configPath, config); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
			}
			config.ConfigDir = filepath.Dir(configPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
		}
	}

	// Apply defaults to fill in any missing values
	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := config.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the specified file path
func (c *Config) Save(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config as TOML: %w", err)
	}

	return nil
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must be set")
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns must be non-negative")
	}
	validSyncModes := map[string]bool{"OFF": true, "NORMAL": true, "FULL": true}
	if !validSyncModes[strings.ToUpper(c.Database.SyncMode)] {
		return fmt.Errorf("database.sync_mode must be one of: OFF, NORMAL, FULL")
	}
	if c.Database.BusyTimeoutMS < 0 {
		return fmt.Errorf("database.busy_timeout_ms must be non-negative")
	}

	if _, err := c.Search.FilterMode.MarshalText(); err != nil {
		return fmt.Errorf("search.filter_mode: %w", err)
	}
	if _, err := c.Search.SearchMode.MarshalText(); err != nil {
		return fmt.Errorf("search.search_mode: %w", err)
	}
	if len(c.Search.SearchModes) == 0 {
		return fmt.Errorf("search.search_modes must list at least one mode")
	}
	seen := make(map[modes.SearchMode]bool, len(c.Search.SearchModes))
	for _, m := range c.Search.SearchModes {
		if seen[m] {
			return fmt.Errorf("search.search_modes lists %s twice", m)
		}
		seen[m] = true
	}
	if c.Search.ScrollContextLines < 0 {
		return fmt.Errorf("search.scroll_context_lines must be non-negative")
	}
	if c.Search.WordChars == "" {
		return fmt.Errorf("search.word_chars must not be empty")
	}
	if c.Search.RefreshTimeoutMS < 0 {
		return fmt.Errorf("search.refresh_timeout_ms must be non-negative")
	}

	if err := c.TUI.Colors.Validate(); err != nil {
		return fmt.Errorf("tui.colors: %w", err)
	}

	if c.Update.Check && (c.Update.RepoOwner == "" || c.Update.RepoName == "") {
		return fmt.Errorf("update.repo_owner and update.repo_name are required when update.check is enabled")
	}
	if c.Update.TimeoutSeconds <= 0 {
		return fmt.Errorf("update.timeout_seconds must be positive")
	}

	if c.Sentry.Enabled && c.Sentry.DSN == "" {
		return fmt.Errorf("sentry.dsn is required when sentry is enabled")
	}
	if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		return fmt.Errorf("sentry.sample_rate must be between 0.0 and 1.0")
	}

	return nil
}

// EnsureDirectories creates necessary directories for the configuration
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.DataDir,
		filepath.Dir(c.Database.Path),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ApplyDefaults applies default values for all configuration sections
// This ensures that TOML decoding doesn't override defaults with zero values
func (c *Config) ApplyDefaults() {
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "history.db")
	}
	if c.Database.MaxOpenConns <= 0 {
		c.Database.MaxOpenConns = 4
	}
	if c.Database.SyncMode == "" {
		c.Database.SyncMode = "NORMAL"
	}
	c.Database.SyncMode = strings.ToUpper(c.Database.SyncMode)

	if len(c.Search.SearchModes) == 0 {
		c.Search.SearchModes = append([]modes.SearchMode(nil), modes.DefaultSearchModeCycle...)
	}
	if c.Search.WordChars == "" {
		c.Search.WordChars = search.DefaultWordChars
	}

	c.TUI.Colors.fillDefaults()

	if c.Logging.Level == "" {
		c.Logging.Level = "error"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stderr"
	}

	if c.Update.TimeoutSeconds <= 0 {
		c.Update.TimeoutSeconds = 5
	}
}

// SearchSettings returns the immutable settings handed to a search session.
func (c *Config) SearchSettings() search.Settings {
	s := c.Search
	settings := search.Settings{
		FilterMode:         s.FilterMode,
		SearchMode:         s.SearchMode,
		ShellUpKeyBinding:  s.ShellUpKeyBinding,
		SearchModes:        append([]modes.SearchMode(nil), s.SearchModes...),
		ScrollContextLines: s.ScrollContextLines,
		WordChars:          s.WordChars,
		WordJumpMode:       s.WordJumpMode,
		ExitMode:           s.ExitMode,
	}
	if s.FilterModeShellUpKeyBinding != nil {
		m := *s.FilterModeShellUpKeyBinding
		settings.FilterModeShellUpKeyBinding = &m
	}
	if s.SearchModeShellUpKeyBinding != nil {
		m := *s.SearchModeShellUpKeyBinding
		settings.SearchModeShellUpKeyBinding = &m
	}
	return settings
}

// GetRefreshTimeout returns the refresh bound, zero when disabled
func (c *Config) GetRefreshTimeout() time.Duration {
	return time.Duration(c.Search.RefreshTimeoutMS) * time.Millisecond
}

// GetUpdateTimeout returns the update check timeout as a time.Duration
func (c *Config) GetUpdateTimeout() time.Duration {
	return time.Duration(c.Update.TimeoutSeconds) * time.Second
}

// GetBusyTimeout returns the SQLite busy timeout as a time.Duration
func (c *Config) GetBusyTimeout() time.Duration {
	return time.Duration(c.Database.BusyTimeoutMS) * time.Millisecond
}
