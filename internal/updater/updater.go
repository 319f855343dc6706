// Package updater looks up the latest published release so the search
// screen can tell the user a newer version exists.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/NeverVane/ccsearch/internal/logger"
)

const defaultBaseURL = "https://api.github.com"

// GitHubRelease is the part of a GitHub release response the check reads
type GitHubRelease struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
}

// Updater checks GitHub for newer releases
type Updater struct {
	logger         *logger.Logger
	currentVersion string
	httpClient     *http.Client
	baseURL        string
	repoOwner      string
	repoName       string
}

// UpdaterConfig holds configuration for the updater
type UpdaterConfig struct {
	RepoOwner string
	RepoName  string
	Timeout   time.Duration

	// BaseURL replaces the GitHub API root, for GitHub Enterprise
	BaseURL string
}

// NewUpdater creates a new updater instance
func NewUpdater(log *logger.Logger, currentVersion string, cfg UpdaterConfig) *Updater {
	if log == nil {
		log = logger.GetLogger().Updater()
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Updater{
		logger:         log,
		currentVersion: currentVersion,
		httpClient:     &http.Client{Timeout: timeout},
		baseURL:        baseURL,
		repoOwner:      cfg.RepoOwner,
		repoName:       cfg.RepoName,
	}
}

// CheckForUpdate returns the latest release version when it is newer than
// the running one, and nil when the running version is current.
func (u *Updater) CheckForUpdate(ctx context.Context) (*semver.Version, error) {
	current, err := semver.NewVersion(u.currentVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid current version '%s': %w", u.currentVersion, err)
	}

	release, err := u.getLatestRelease(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest release: %w", err)
	}
	if release.Draft || release.Prerelease {
		return nil, nil
	}

	latest, err := semver.NewVersion(strings.TrimPrefix(release.TagName, "v"))
	if err != nil {
		return nil, fmt.Errorf("invalid latest version '%s': %w", release.TagName, err)
	}

	if !latest.GreaterThan(current) {
		u.logger.Debug().
			Str("current", current.String()).
			Str("latest", latest.String()).
			Msg("No update available")
		return nil, nil
	}

	u.logger.Info().
		Str("current", current.String()).
		Str("latest", latest.String()).
		Msg("Update available")
	return latest, nil
}

func (u *Updater) getLatestRelease(ctx context.Context) (*GitHubRelease, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", u.baseURL, u.repoOwner, u.repoName)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("GitHub API returned status %d", resp.StatusCode)
	}

	var release GitHubRelease
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &release, nil
}

// GetCurrentVersion returns the running version
func (u *Updater) GetCurrentVersion() string {
	return u.currentVersion
}
