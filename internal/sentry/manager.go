package sentry

import (
	"fmt"
	"sync"
	"time"

	"github.com/NeverVane/ccsearch/internal/config"
)

var (
	globalMu     sync.RWMutex
	globalClient *Client
)

// Initialize sets up the process-wide client used by the package functions
func Initialize(cfg *config.Config, version string) error {
	client, err := NewClient(cfg, version)
	if err != nil {
		return fmt.Errorf("failed to initialize Sentry: %w", err)
	}

	globalMu.Lock()
	old := globalClient
	globalClient = client
	globalMu.Unlock()

	if old != nil {
		old.Close()
	}
	return nil
}

func current() *Client {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalClient
}

// IsEnabled returns whether the global client reports events
func IsEnabled() bool {
	c := current()
	return c != nil && c.IsEnabled()
}

// CaptureError reports err through the global client
func CaptureError(err error, component, operation string) {
	if c := current(); c != nil {
		c.CaptureError(err, component, operation, nil)
	}
}

// Flush waits for the global client's pending events
func Flush(timeout time.Duration) bool {
	if c := current(); c != nil {
		return c.Flush(timeout)
	}
	return true
}

// Close flushes and drops the global client
func Close() {
	globalMu.Lock()
	c := globalClient
	globalClient = nil
	globalMu.Unlock()

	if c != nil {
		c.Close()
	}
}
