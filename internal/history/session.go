package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/NeverVane/ccsearch/internal/logger"
)

// SessionEnv is exported by the shell integration so every command of one
// shell shares a session id.
const SessionEnv = "CCS_SESSION_ID"

// SessionManager resolves and persists the current shell session id.
type SessionManager struct {
	logger     *logger.Logger
	sessionID  string
	sessionDir string
}

// NewSessionManager creates a session manager storing its state under dataDir.
func NewSessionManager(dataDir string) (*SessionManager, error) {
	sessionDir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(sessionDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	return &SessionManager{
		logger:     logger.GetLogger().WithComponent("session"),
		sessionDir: sessionDir,
	}, nil
}

// GetCurrentSessionID returns the current session ID, creating one if needed.
// The environment wins over the persisted file.
func (sm *SessionManager) GetCurrentSessionID() (string, error) {
	if sm.sessionID != "" {
		return sm.sessionID, nil
	}

	if envSessionID := os.Getenv(SessionEnv); envSessionID != "" {
		if validSessionID(envSessionID) {
			sm.sessionID = envSessionID
			return sm.sessionID, nil
		}
		sm.logger.Warn().Str("value", envSessionID).Msg("Ignoring malformed session id from environment")
	}

	if content, err := os.ReadFile(sm.currentFile()); err == nil {
		sessionID := strings.TrimSpace(string(content))
		if validSessionID(sessionID) {
			sm.sessionID = sessionID
			return sm.sessionID, nil
		}
	}

	sessionID, err := sm.NewSession()
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// NewSession generates a fresh session id and persists it.
func (sm *SessionManager) NewSession() (string, error) {
	sessionID := uuid.NewString()

	if err := os.WriteFile(sm.currentFile(), []byte(sessionID), 0600); err != nil {
		return "", fmt.Errorf("failed to persist session id: %w", err)
	}

	sm.sessionID = sessionID
	sm.logger.WithSessionID(sessionID).Debug().Msg("New session created")
	return sessionID, nil
}

// EndCurrentSession forgets the persisted session.
func (sm *SessionManager) EndCurrentSession() error {
	if err := os.Remove(sm.currentFile()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	if sm.sessionID != "" {
		sm.logger.WithSessionID(sm.sessionID).Debug().Msg("Session ended")
	}
	sm.sessionID = ""
	return nil
}

func (sm *SessionManager) currentFile() string {
	return filepath.Join(sm.sessionDir, "current")
}

func validSessionID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil && len(id) == 36
}
