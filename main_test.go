package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NeverVane/ccsearch/internal/config"
	"github.com/NeverVane/ccsearch/internal/history"
	"github.com/NeverVane/ccsearch/internal/output"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvDataDir, dir)
	t.Setenv(history.SessionEnv, uuid.NewString())

	cfg := config.DefaultConfig()
	cfg.DataDir = dir
	cfg.Database.Path = filepath.Join(dir, "history.db")
	cfg.Update.Check = false
	return cfg
}

func execute(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(cfg, output.NewWriterFormatter(&out, &errOut))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestRecordCountSearch(t *testing.T) {
	cfg := testConfig(t)

	_, _, err := execute(t, cfg, "record", "--exit", "0", "--duration", "12", "--", "git", "status")
	require.NoError(t, err)
	_, _, err = execute(t, cfg, "record", "--exit", "1", "--", "cargo build")
	require.NoError(t, err)

	out, _, err := execute(t, cfg, "count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, _, err = execute(t, cfg, "search", "--cmd-only", "--search-mode", "prefix", "git")
	require.NoError(t, err)
	assert.Equal(t, "git status\n", out)

	out, _, err = execute(t, cfg, "search", "--cmd-only", "--search-mode", "fuzzy", "crg")
	require.NoError(t, err)
	assert.Equal(t, "cargo build\n", out)

	out, _, err = execute(t, cfg, "search", "--cmd-only")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"git status", "cargo build"}, strings.Split(strings.TrimSuffix(out, "\n"), "\n"))
}

func TestSearchLimitAndColumns(t *testing.T) {
	cfg := testConfig(t)

	for _, c := range []string{"ls", "ls -la", "ls -lh"} {
		_, _, err := execute(t, cfg, "record", "--", c)
		require.NoError(t, err)
	}

	out, _, err := execute(t, cfg, "search", "--search-mode", "prefix", "--limit", "2", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Contains(t, line, "ok  ")
	}
}

func TestSearch_InvalidMode(t *testing.T) {
	cfg := testConfig(t)

	_, errOut, err := execute(t, cfg, "search", "--filter-mode", "workspace", "git")
	require.Error(t, err)
	assert.Contains(t, errOut, "[FAIL]")
	assert.Contains(t, errOut, "workspace")
}

func TestRecord_RequiresCommand(t *testing.T) {
	cfg := testConfig(t)

	_, _, err := execute(t, cfg, "record", "--exit", "0")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := execute(t, cfg, "init", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "add-zsh-hook precmd __ccs_precmd")
	assert.Contains(t, out, "bindkey '^r' __ccs_search")

	out, _, err = execute(t, cfg, "init", "bash", "--disable-up-arrow")
	require.NoError(t, err)
	assert.Contains(t, out, `bind -x '"\C-r": __ccs_search'`)
	assert.NotContains(t, out, `"\e[A"`)

	_, errOut, err := execute(t, cfg, "init", "fish")
	require.Error(t, err)
	assert.Contains(t, errOut, "unsupported shell")
}

func TestImport(t *testing.T) {
	cfg := testConfig(t)
	path := filepath.Join(t.TempDir(), "zsh_history")
	content := ": 1700000000:0;git status\n: 1700000005:2;cargo build\n: 1700000009:0;git status\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	_, errOut, err := execute(t, cfg, "import", "zsh", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Imported 2 commands")

	// importing again stores nothing new
	_, _, err = execute(t, cfg, "import", "zsh", "--file", path)
	require.NoError(t, err)

	out, _, err := execute(t, cfg, "count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	out, _, err = execute(t, cfg, "search", "--cmd-only", "--search-mode", "prefix", "cargo")
	require.NoError(t, err)
	assert.Equal(t, "cargo build\n", out)
}

func TestExportImportRoundTrip(t *testing.T) {
	cfg := testConfig(t)
	for _, c := range []string{"git status", "cargo build"} {
		_, _, err := execute(t, cfg, "record", "--", c)
		require.NoError(t, err)
	}

	out, _, err := execute(t, cfg, "export", "--format", "bash")
	require.NoError(t, err)
	assert.Regexp(t, `^#\d+\ngit status\n#\d+\ncargo build\n$`, out)

	path := filepath.Join(t.TempDir(), "history.zsh")
	_, errOut, err := execute(t, cfg, "export", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 2 commands")

	other := testConfig(t)
	_, _, err = execute(t, other, "import", "zsh", "--file", path)
	require.NoError(t, err)
	out, _, err = execute(t, other, "count")
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	_, _, err = execute(t, cfg, "export", "--format", "xml")
	assert.Error(t, err)
}

func TestStats(t *testing.T) {
	cfg := testConfig(t)

	for _, c := range []string{"git status", "git push", "git status"} {
		_, _, err := execute(t, cfg, "record", "--", c)
		require.NoError(t, err)
	}
	_, _, err := execute(t, cfg, "record", "--exit", "1", "--", "make")
	require.NoError(t, err)

	out, _, err := execute(t, cfg, "stats", "--limit", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Commands: 4 (3 unique)")
	assert.Contains(t, out, "(1 failed)")

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 6)
	assert.True(t, strings.HasSuffix(lines[4], "git status"), lines[4])

	out, _, err = execute(t, cfg, "stats", "--base")
	require.NoError(t, err)
	assert.Contains(t, out, "   3  100.0%  git")
}

func TestDelete(t *testing.T) {
	cfg := testConfig(t)

	for _, c := range []string{"export TOKEN=abc", "git status", "export TOKEN=def"} {
		_, _, err := execute(t, cfg, "record", "--", c)
		require.NoError(t, err)
	}

	out, errOut, err := execute(t, cfg, "delete", "--pattern", "export TOKEN=*", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "export TOKEN=abc")
	assert.NotContains(t, out, "git status")
	assert.Contains(t, errOut, "2 commands would be deleted")

	_, errOut, err = execute(t, cfg, "delete", "--pattern", "export TOKEN=*")
	require.NoError(t, err)
	assert.Contains(t, errOut, "Deleted 2 commands")

	out, _, err = execute(t, cfg, "count")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, _, err = execute(t, cfg, "delete", "--pattern", "*")
	assert.Error(t, err)
	_, _, err = execute(t, cfg, "delete")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, testConfig(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "ccsearch "+version)
}
