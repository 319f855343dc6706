package sentry

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/config"
)

const testDSN = "https://public@example.com/1"

type recorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

// observe keeps the event and drops it so nothing is sent
func (r *recorder) observe(e *sentry.Event) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func enabledConfig() *config.Config {
	return &config.Config{
		Sentry: config.SentryConfig{
			Enabled:     true,
			DSN:         testDSN,
			Environment: "test",
			SampleRate:  1.0,
		},
	}
}

func newRecordingClient(t *testing.T) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := newClient(enabledConfig(), "1.2.3", rec.observe)
	require.NoError(t, err)
	require.True(t, c.IsEnabled())
	return c, rec
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.Config
		enabled bool
	}{
		{"enabled", enabledConfig(), true},
		{"disabled", &config.Config{Sentry: config.SentryConfig{DSN: testDSN}}, false},
		{"empty dsn", &config.Config{Sentry: config.SentryConfig{Enabled: true}}, false},
		{"nil config", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.config, "1.0.0")
			require.NoError(t, err)
			assert.Equal(t, tt.enabled, c.IsEnabled())
			c.Close()
		})
	}
}

func TestNewClient_InvalidDSN(t *testing.T) {
	cfg := enabledConfig()
	cfg.Sentry.DSN = "not a dsn"
	_, err := NewClient(cfg, "1.0.0")
	assert.Error(t, err)
}

func TestClient_CaptureErrorIsSanitized(t *testing.T) {
	c, rec := newRecordingClient(t)

	c.CaptureError(errors.New(`failed to save "git push --token=abc" in /home/alice/src`), "storage", "save",
		map[string]string{"command": "rm -rf /", "attempt": "2"})

	events := rec.all()
	require.Len(t, events, 1)
	e := events[0]

	require.NotEmpty(t, e.Exception)
	value := e.Exception[len(e.Exception)-1].Value
	assert.NotContains(t, value, "git push")
	assert.NotContains(t, value, "alice")
	assert.Contains(t, value, "failed to save")

	assert.Equal(t, "storage", e.Tags["component"])
	assert.Equal(t, "save", e.Tags["operation"])
	assert.Equal(t, "[REDACTED]", e.Tags["command"])
	assert.Equal(t, "2", e.Tags["attempt"])
	assert.Equal(t, "ccsearch", e.Tags["app.name"])
	assert.Empty(t, e.User.ID)
}

func TestClient_DisabledDoesNothing(t *testing.T) {
	c, err := NewClient(&config.Config{}, "1.0.0")
	require.NoError(t, err)

	c.CaptureError(errors.New("boom"), "search", "refresh", nil)
	c.CaptureMessage("boom", sentry.LevelError, "log")
	c.AddBreadcrumb("log", "step", sentry.LevelInfo)
	assert.True(t, c.Flush(time.Millisecond))
}

func TestSanitizeValue(t *testing.T) {
	c := &Client{}

	tests := []struct {
		in   string
		want string
	}{
		{`record "ls -la" failed`, `record "[REDACTED]" failed`},
		{"open /home/bob/.local/share/db", "open /[USER_HOME]/.local/share/db"},
		{"mail me@example.com", "mail [EMAIL_REDACTED]"},
		{"password=hunter2 rest", "password=[REDACTED] rest"},
		{"plain message", "plain message"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.sanitizeValue(tt.in))
	}
}

func TestSanitizeMap(t *testing.T) {
	c := &Client{}
	got := c.sanitizeMap(map[string]interface{}{
		"cwd":     "/tmp",
		"results": 12,
		"note":    "from /Users/carol/x",
	})

	assert.Equal(t, "[REDACTED]", got["cwd"])
	assert.Equal(t, 12, got["results"])
	assert.Equal(t, "from /[USER_HOME]/x", got["note"])
	assert.Nil(t, c.sanitizeMap(nil))
}

func TestZerologHook(t *testing.T) {
	c, rec := newRecordingClient(t)
	log := zerolog.New(io.Discard).Hook(NewZerologHook(c))

	log.Info().Msg("ignored")
	log.Warn().Msg("slow refresh")
	log.Error().Msg("refresh failed")

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "refresh failed", events[0].Message)
	assert.Equal(t, sentry.LevelError, events[0].Level)
	require.Len(t, events[0].Breadcrumbs, 1)
	assert.Equal(t, "slow refresh", events[0].Breadcrumbs[0].Message)
}

func TestGlobalManager(t *testing.T) {
	t.Cleanup(Close)

	require.NoError(t, Initialize(&config.Config{}, "1.0.0"))
	assert.False(t, IsEnabled())
	CaptureError(errors.New("ignored"), "search", "refresh")

	require.NoError(t, Initialize(enabledConfig(), "1.0.0"))
	assert.True(t, IsEnabled())

	Close()
	assert.False(t, IsEnabled())
	assert.True(t, Flush(time.Millisecond))
	NewGlobalHook().Run(nil, zerolog.ErrorLevel, "no client")
}
