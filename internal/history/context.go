package history

import (
	"fmt"
	"os"
)

// Context identifies where a search runs. Filter modes scope queries with it:
// host mode matches Hostname, session mode SessionID, directory mode WorkingDir.
type Context struct {
	SessionID  string
	Hostname   string
	WorkingDir string
}

// CurrentContext captures the context of the calling process. The session id
// comes from sessions; host and user can be overridden with CCS_HOST_NAME and
// CCS_HOST_USER.
func CurrentContext(sessions *SessionManager) (Context, error) {
	sessionID, err := sessions.GetCurrentSessionID()
	if err != nil {
		return Context{}, fmt.Errorf("failed to resolve session: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return Context{}, fmt.Errorf("failed to get working directory: %w", err)
	}

	return Context{
		SessionID:  sessionID,
		Hostname:   HostID(),
		WorkingDir: cwd,
	}, nil
}

// HostID returns the host:user pair stored with every record.
func HostID() string {
	host := os.Getenv("CCS_HOST_NAME")
	if host == "" {
		host, _ = os.Hostname()
	}
	if host == "" {
		host = "localhost"
	}

	user := os.Getenv("CCS_HOST_USER")
	if user == "" {
		user = os.Getenv("USER")
	}
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	if user == "" {
		user = "unknown"
	}

	return host + ":" + user
}
