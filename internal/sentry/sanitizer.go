package sentry

import (
	"regexp"
	"strings"

	"github.com/getsentry/sentry-go"
)

// SensitivePatterns detect data that must not leave the machine. Shell
// history is private, so quoted text is assumed to be a command line.
var SensitivePatterns = struct {
	Quoted   *regexp.Regexp
	FilePath *regexp.Regexp
	Email    *regexp.Regexp
	Secret   *regexp.Regexp
}{
	Quoted:   regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'[^']*'`),
	FilePath: regexp.MustCompile(`(/home/[^/\s]+|/Users/[^/\s]+|/root)`),
	Email:    regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
	Secret:   regexp.MustCompile(`(?i)(token|secret|password|passwd|key|auth)([:=]\s*)\S+`),
}

// SensitiveFields are tag and extra keys whose values are always dropped
var SensitiveFields = []string{
	"command", "cmd", "query", "cwd", "dir", "path",
	"hostname", "host", "session", "user",
	"password", "secret", "token", "key",
}

func (c *Client) sanitizeValue(value string) string {
	if value == "" {
		return value
	}
	value = SensitivePatterns.Quoted.ReplaceAllString(value, `"[REDACTED]"`)
	value = SensitivePatterns.FilePath.ReplaceAllString(value, "/[USER_HOME]")
	value = SensitivePatterns.Email.ReplaceAllString(value, "[EMAIL_REDACTED]")
	value = SensitivePatterns.Secret.ReplaceAllString(value, "${1}${2}[REDACTED]")
	return value
}

func isSensitiveKey(key string) bool {
	key = strings.ToLower(key)
	for _, field := range SensitiveFields {
		if strings.Contains(key, field) {
			return true
		}
	}
	return false
}

func (c *Client) sanitizeMap(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		return nil
	}

	sanitized := make(map[string]interface{}, len(data))
	for key, value := range data {
		if isSensitiveKey(key) {
			sanitized[key] = "[REDACTED]"
		} else if v, ok := value.(string); ok {
			sanitized[key] = c.sanitizeValue(v)
		} else {
			sanitized[key] = value
		}
	}
	return sanitized
}

func (c *Client) sanitizeEvent(event *sentry.Event) *sentry.Event {
	if event == nil {
		return event
	}

	event.Message = c.sanitizeValue(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = c.sanitizeValue(event.Exception[i].Value)
	}

	for key, value := range event.Tags {
		if isSensitiveKey(key) {
			event.Tags[key] = "[REDACTED]"
		} else {
			event.Tags[key] = c.sanitizeValue(value)
		}
	}

	event.Extra = c.sanitizeMap(event.Extra)
	event.User = sentry.User{}
	event.ServerName = ""

	for i := range event.Breadcrumbs {
		c.sanitizeBreadcrumb(event.Breadcrumbs[i])
	}

	return event
}

func (c *Client) sanitizeBreadcrumb(breadcrumb *sentry.Breadcrumb) *sentry.Breadcrumb {
	if breadcrumb == nil {
		return breadcrumb
	}
	breadcrumb.Message = c.sanitizeValue(breadcrumb.Message)
	breadcrumb.Data = c.sanitizeMap(breadcrumb.Data)
	return breadcrumb
}
