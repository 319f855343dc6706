package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger wraps zerolog.Logger with component helpers
type Logger struct {
	zerolog.Logger
	level zerolog.Level
}

// Config represents logger configuration
type Config struct {
	// Log level (trace, debug, info, warn, error, disabled)
	Level string `toml:"level"`

	// Output destination: stderr, stdout, none, or a file path
	Output string `toml:"output"`

	// Colored console output for stderr/stdout
	Color bool `toml:"color"`

	Timestamp bool `toml:"timestamp"`
	Caller    bool `toml:"caller"`

	// Writer overrides Output when set. Not read from config files.
	Writer io.Writer `toml:"-"`
}

// DefaultConfig returns default logger configuration. Errors only, on stderr,
// so the search screen is not disturbed.
func DefaultConfig() *Config {
	return &Config{
		Level:     "error",
		Output:    "stderr",
		Color:     true,
		Timestamp: true,
	}
}

var (
	globalMu     sync.Mutex
	globalLogger *Logger
	logFile      *os.File
)

// New builds a logger from config without touching the global instance.
func New(config *Config) (*Logger, io.Closer, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %s: %w", config.Level, err)
	}

	var (
		output io.Writer
		closer io.Closer
	)
	switch {
	case config.Writer != nil:
		output = config.Writer
	case config.Output == "" || config.Output == "stderr":
		output = consoleWriter(os.Stderr, config.Color)
	case config.Output == "stdout":
		output = consoleWriter(os.Stdout, config.Color)
	case config.Output == "none":
		output = io.Discard
	default:
		if err := os.MkdirAll(filepath.Dir(config.Output), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		output = file
		closer = file
	}

	zl := zerolog.New(output).Level(level)
	if config.Timestamp {
		zl = zl.With().Timestamp().Logger()
	}
	if config.Caller {
		zl = zl.With().Caller().Logger()
	}

	return &Logger{Logger: zl, level: level}, closer, nil
}

func consoleWriter(out io.Writer, color bool) io.Writer {
	if !color {
		return out
	}
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
	}
}

// Init initializes the global logger with the provided configuration
func Init(config *Config) error {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	l, closer, err := New(config)
	if err != nil {
		return err
	}

	globalMu.Lock()
	defer globalMu.Unlock()

	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
	if f, ok := closer.(*os.File); ok {
		logFile = f
	}

	globalLogger = l
	log.Logger = l.Logger
	return nil
}

// AddHook attaches h to the global logger. Loggers derived before the call
// do not run it.
func AddHook(h zerolog.Hook) {
	l := GetLogger()

	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = &Logger{Logger: l.Logger.Hook(h), level: l.level}
	log.Logger = globalLogger.Logger
}

// Close releases the log file opened by Init, if any.
func Close() error {
	globalMu.Lock()
	defer globalMu.Unlock()

	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	globalMu.Lock()
	l := globalLogger
	globalMu.Unlock()

	if l == nil {
		_ = Init(DefaultConfig())
		globalMu.Lock()
		l = globalLogger
		globalMu.Unlock()
	}
	return l
}

// MinLevel returns the configured minimum level.
func (l *Logger) MinLevel() zerolog.Level {
	return l.level
}

// WithField adds a field to the logger context
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With().Interface(key, value).Logger(),
		level:  l.level,
	}
}

// WithFields adds multiple fields to the logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	ctx := l.Logger.With()
	for key, value := range fields {
		ctx = ctx.Interface(key, value)
	}
	return &Logger{
		Logger: ctx.Logger(),
		level:  l.level,
	}
}

// WithError adds an error field to the logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With().Err(err).Logger(),
		level:  l.level,
	}
}

// WithComponent adds a component field for structured logging
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// WithSessionID tags entries with the shell session being searched.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return l.WithField("session_id", sessionID)
}

func (l *Logger) Search() *Logger {
	return l.WithComponent("search")
}

func (l *Logger) Database() *Logger {
	return l.WithComponent("database")
}

func (l *Logger) Ranking() *Logger {
	return l.WithComponent("ranking")
}

func (l *Logger) TUI() *Logger {
	return l.WithComponent("tui")
}

func (l *Logger) Config() *Logger {
	return l.WithComponent("config")
}

func (l *Logger) Updater() *Logger {
	return l.WithComponent("updater")
}

// Performance logs how long an operation took at debug level.
func (l *Logger) Performance(operation string, duration time.Duration, fields map[string]interface{}) {
	evt := l.Debug().
		Str("perf_operation", operation).
		Dur("duration", duration)

	for key, value := range fields {
		evt = evt.Interface(key, value)
	}
	evt.Msg("performance metric")
}

// Global convenience functions
func Debug() *zerolog.Event {
	return GetLogger().Debug()
}

func Info() *zerolog.Event {
	return GetLogger().Info()
}

func Warn() *zerolog.Event {
	return GetLogger().Warn()
}

func Error() *zerolog.Event {
	return GetLogger().Error()
}

func WithField(key string, value interface{}) *Logger {
	return GetLogger().WithField(key, value)
}

func WithFields(fields map[string]interface{}) *Logger {
	return GetLogger().WithFields(fields)
}

func WithError(err error) *Logger {
	return GetLogger().WithError(err)
}

func WithComponent(component string) *Logger {
	return GetLogger().WithComponent(component)
}

func Performance(operation string, duration time.Duration, fields map[string]interface{}) {
	GetLogger().Performance(operation, duration, fields)
}
