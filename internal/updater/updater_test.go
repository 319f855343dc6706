package updater

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/logger"
)

func createMockGitHubServer(t *testing.T, release GitHubRelease, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/test/cli/releases/latest" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(release)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func createTestUpdater(t *testing.T, baseURL, current string) *Updater {
	t.Helper()
	l, _, err := logger.New(&logger.Config{Level: "disabled", Output: "none"})
	require.NoError(t, err)
	return NewUpdater(l, current, UpdaterConfig{
		RepoOwner: "test",
		RepoName:  "cli",
		Timeout:   2 * time.Second,
		BaseURL:   baseURL + "/",
	})
}

func TestCheckForUpdate_NewerRelease(t *testing.T) {
	srv := createMockGitHubServer(t, GitHubRelease{TagName: "v1.2.0"}, http.StatusOK)
	u := createTestUpdater(t, srv.URL, "1.1.3")

	v, err := u.CheckForUpdate(context.Background())
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "1.2.0", v.String())
}

func TestCheckForUpdate_UpToDate(t *testing.T) {
	srv := createMockGitHubServer(t, GitHubRelease{TagName: "v1.1.3"}, http.StatusOK)

	for _, current := range []string{"1.1.3", "v1.1.3", "2.0.0"} {
		v, err := createTestUpdater(t, srv.URL, current).CheckForUpdate(context.Background())
		require.NoError(t, err, current)
		assert.Nil(t, v, current)
	}
}

func TestCheckForUpdate_IgnoresPrerelease(t *testing.T) {
	srv := createMockGitHubServer(t, GitHubRelease{TagName: "v9.0.0-rc.1", Prerelease: true}, http.StatusOK)

	v, err := createTestUpdater(t, srv.URL, "1.0.0").CheckForUpdate(context.Background())
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestCheckForUpdate_Errors(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		srv := createMockGitHubServer(t, GitHubRelease{}, http.StatusInternalServerError)
		_, err := createTestUpdater(t, srv.URL, "1.0.0").CheckForUpdate(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("bad tag", func(t *testing.T) {
		srv := createMockGitHubServer(t, GitHubRelease{TagName: "nightly"}, http.StatusOK)
		_, err := createTestUpdater(t, srv.URL, "1.0.0").CheckForUpdate(context.Background())
		assert.Error(t, err)
	})

	t.Run("development build", func(t *testing.T) {
		srv := createMockGitHubServer(t, GitHubRelease{TagName: "v1.0.0"}, http.StatusOK)
		_, err := createTestUpdater(t, srv.URL, "dev").CheckForUpdate(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		srv := createMockGitHubServer(t, GitHubRelease{TagName: "v2.0.0"}, http.StatusOK)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := createTestUpdater(t, srv.URL, "1.0.0").CheckForUpdate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewUpdater_Defaults(t *testing.T) {
	u := NewUpdater(nil, "1.0.0", UpdaterConfig{RepoOwner: "o", RepoName: "r"})
	assert.Equal(t, defaultBaseURL, u.baseURL)
	assert.Equal(t, 5*time.Second, u.httpClient.Timeout)
	assert.Equal(t, "1.0.0", u.GetCurrentVersion())
}
