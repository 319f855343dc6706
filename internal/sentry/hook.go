package sentry

import (
	"github.com/getsentry/sentry-go"
	"github.com/rs/zerolog"
)

// ZerologHook forwards error level log entries to Sentry and keeps warnings
// as breadcrumbs for the next reported event.
type ZerologHook struct {
	client *Client
}

// NewZerologHook creates a hook bound to client
func NewZerologHook(client *Client) *ZerologHook {
	return &ZerologHook{client: client}
}

// NewGlobalHook creates a hook bound to the client set up by Initialize
func NewGlobalHook() *ZerologHook {
	return &ZerologHook{}
}

// Run implements zerolog.Hook
func (h *ZerologHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	client := h.client
	if client == nil {
		client = current()
	}
	if client == nil || !client.IsEnabled() {
		return
	}

	switch level {
	case zerolog.ErrorLevel, zerolog.FatalLevel, zerolog.PanicLevel:
		client.CaptureMessage(msg, sentry.LevelError, "log")
	case zerolog.WarnLevel:
		client.AddBreadcrumb("log", msg, sentry.LevelWarning)
	}
}
