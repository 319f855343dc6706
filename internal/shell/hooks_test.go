package shell

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScript_Bash(t *testing.T) {
	script, err := Script("bash", ScriptOptions{
		BinaryPath: "/usr/local/bin/ccsearch",
		SessionID:  "0b5f1c1e-3f4a-4c55-9d0e-8f1b2a3c4d5e",
	})
	require.NoError(t, err)

	assert.Contains(t, script, `export CCS_SESSION_ID="0b5f1c1e-3f4a-4c55-9d0e-8f1b2a3c4d5e"`)
	assert.Contains(t, script, `'/usr/local/bin/ccsearch' record --exit "$exit_code"`)
	assert.Contains(t, script, `'/usr/local/bin/ccsearch' search -i "$@" -- "$READLINE_LINE"`)
	assert.Contains(t, script, `bind -x '"\C-r": __ccs_search'`)
	assert.Contains(t, script, `bind -x '"\e[A": __ccs_search_up'`)
	assert.Contains(t, script, "--shell-up-key-binding")
	assert.NotContains(t, script, "{{")
}

func TestScript_Zsh(t *testing.T) {
	script, err := Script("ZSH", ScriptOptions{})
	require.NoError(t, err)

	assert.Contains(t, script, "add-zsh-hook preexec __ccs_preexec")
	assert.Contains(t, script, "'ccsearch' search -i")
	assert.Contains(t, script, "bindkey '^r' __ccs_search")
	assert.Contains(t, script, "bindkey '^[[A' __ccs_search_up")
	assert.Regexp(t, `export CCS_SESSION_ID="[0-9a-f-]{36}"`, script)
}

func TestScript_DisabledBindings(t *testing.T) {
	for _, sh := range []string{Bash, Zsh} {
		script, err := Script(sh, ScriptOptions{DisableCtrlR: true, DisableUpArrow: true})
		require.NoError(t, err)
		assert.NotContains(t, script, "C-r", sh)
		assert.NotContains(t, script, "'^r'", sh)
		assert.NotContains(t, script, "[A", sh)
	}
}

func TestScript_FreshSessionPerCall(t *testing.T) {
	a, err := Script(Bash, ScriptOptions{})
	require.NoError(t, err)
	b, err := Script(Bash, ScriptOptions{})
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestScript_UnsupportedShell(t *testing.T) {
	_, err := Script("fish", ScriptOptions{})
	assert.ErrorContains(t, err, "unsupported shell: fish")

	_, err = SourceLine("fish")
	assert.Error(t, err)
}

func TestSourceLine(t *testing.T) {
	line, err := SourceLine("zsh")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(line, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, MarkerStart, lines[0])
	assert.Equal(t, `eval "$(ccsearch init zsh)"`, lines[1])
	assert.Equal(t, MarkerEnd, lines[2])
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `'plain'`, quote("plain"))
	assert.Equal(t, `'it'\''s'`, quote("it's"))
}
