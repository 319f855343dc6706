// Package sentry reports store and refresh failures to Sentry when the user
// has enabled it. Every entry point is a no-op otherwise.
package sentry

import (
	"fmt"
	"runtime"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/logger"
)

// Client wraps an isolated Sentry hub with sanitizing hooks
type Client struct {
	hub         *sentry.Hub
	config      config.SentryConfig
	logger      *logger.Logger
	initialized bool
	version     string

	// observe sees each event after sanitization; returning nil drops it
	observe func(*sentry.Event) *sentry.Event
}

// NewClient creates a client. A disabled config or an empty DSN yields a
// client whose methods do nothing.
func NewClient(cfg *config.Config, version string) (*Client, error) {
	return newClient(cfg, version, nil)
}

func newClient(cfg *config.Config, version string, observe func(*sentry.Event) *sentry.Event) (*Client, error) {
	c := &Client{
		logger:  logger.GetLogger().WithComponent("sentry"),
		version: version,
		observe: observe,
	}
	if cfg != nil {
		c.config = cfg.Sentry
	}

	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize Sentry client: %w", err)
	}
	return c, nil
}

func (c *Client) initialize() error {
	if !c.config.Enabled {
		c.logger.Debug().Msg("Sentry monitoring disabled")
		return nil
	}
	if c.config.DSN == "" {
		c.logger.Warn().Msg("Sentry DSN not configured, monitoring disabled")
		return nil
	}

	release := c.version
	if c.config.Release != "" {
		release = c.config.Release
	}

	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:              c.config.DSN,
		Environment:      c.config.Environment,
		Release:          release,
		SampleRate:       c.config.SampleRate,
		Debug:            c.config.Debug,
		AttachStacktrace: true,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			event = c.sanitizeEvent(event)
			if c.observe != nil {
				return c.observe(event)
			}
			return event
		},
		BeforeBreadcrumb: func(breadcrumb *sentry.Breadcrumb, hint *sentry.BreadcrumbHint) *sentry.Breadcrumb {
			return c.sanitizeBreadcrumb(breadcrumb)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry SDK: %w", err)
	}

	c.hub = sentry.NewHub(client, sentry.NewScope())
	c.hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("app.name", "ccsearch")
		scope.SetTag("app.version", c.version)
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
	})

	c.initialized = true
	c.logger.Debug().
		Str("environment", c.config.Environment).
		Str("release", release).
		Msg("Sentry monitoring initialized")
	return nil
}

// CaptureError reports err tagged with the component and operation it came from
func (c *Client) CaptureError(err error, component, operation string, tags map[string]string) {
	if !c.initialized || err == nil {
		return
	}

	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetTag("operation", operation)
		for key, value := range tags {
			scope.SetTag(key, c.sanitizeValue(value))
		}
		c.hub.CaptureException(err)
	})

	c.logger.Debug().
		Str("operation", operation).
		Err(err).
		Msg("Error captured by Sentry")
}

// CaptureMessage reports a message at the given level
func (c *Client) CaptureMessage(message string, level sentry.Level, component string) {
	if !c.initialized {
		return
	}

	c.hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", component)
		scope.SetLevel(level)
		c.hub.CaptureMessage(message)
	})
}

// AddBreadcrumb records a step leading up to a later event
func (c *Client) AddBreadcrumb(category, message string, level sentry.Level) {
	if !c.initialized {
		return
	}

	c.hub.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Level:     level,
		Timestamp: time.Now(),
	}, nil)
}

// Flush waits for pending events
func (c *Client) Flush(timeout time.Duration) bool {
	if !c.initialized {
		return true
	}
	return c.hub.Flush(timeout)
}

// Close flushes and disables the client
func (c *Client) Close() {
	if c.initialized {
		c.Flush(2 * time.Second)
		c.initialized = false
	}
}

// IsEnabled returns whether events are being reported
func (c *Client) IsEnabled() bool {
	return c.initialized
}
