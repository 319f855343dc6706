// Package shell generates the integration scripts that record commands and
// bind the interactive search to the shell's history keys.
package shell

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/google/uuid"

	"github.com/NeverVane/ccsearch/internal/history"
)

// Supported shells
const (
	Bash = "bash"
	Zsh  = "zsh"
)

// Markers delimiting the integration block in an rc file
const (
	MarkerStart = "# ccsearch integration - START"
	MarkerEnd   = "# ccsearch integration - END"
)

// ScriptOptions controls the generated integration script.
type ScriptOptions struct {
	// BinaryPath is the ccsearch executable the hooks call.
	BinaryPath string
	// SessionID is exported for every command of the shell. A fresh id is
	// generated when empty.
	SessionID string
	// DisableCtrlR leaves ctrl-r bound to the shell's own search.
	DisableCtrlR bool
	// DisableUpArrow leaves the up arrow bound to the shell's own history.
	DisableUpArrow bool
}

type scriptData struct {
	BinaryPath string
	SessionID  string
	SessionEnv string
	BindCtrlR  bool
	BindUp     bool
}

// Script returns the integration script for shell.
func Script(shell string, opts ScriptOptions) (string, error) {
	var text string
	switch strings.ToLower(shell) {
	case Bash:
		text = bashHookTemplate
	case Zsh:
		text = zshHookTemplate
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}

	if opts.BinaryPath == "" {
		opts.BinaryPath = "ccsearch"
	}
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}

	tmpl, err := template.New(shell).Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s hook template: %w", shell, err)
	}

	var buf strings.Builder
	data := scriptData{
		BinaryPath: quote(opts.BinaryPath),
		SessionID:  opts.SessionID,
		SessionEnv: history.SessionEnv,
		BindCtrlR:  !opts.DisableCtrlR,
		BindUp:     !opts.DisableUpArrow,
	}
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute %s hook template: %w", shell, err)
	}

	return buf.String(), nil
}

// SourceLine is the rc file block that loads the integration on startup.
func SourceLine(shell string) (string, error) {
	switch strings.ToLower(shell) {
	case Bash, Zsh:
		return fmt.Sprintf("%s\neval \"$(ccsearch init %s)\"\n%s\n", MarkerStart, strings.ToLower(shell), MarkerEnd), nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: bash, zsh)", shell)
	}
}

// quote wraps s in single quotes for use as a shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

const bashHookTemplate = `# ccsearch bash integration
# Generated by 'ccsearch init bash'

export {{.SessionEnv}}="{{.SessionID}}"

__ccs_preexec() {
    [[ -n "$COMP_LINE" ]] && return
    [[ -n "$__CCS_COMMAND" ]] && return
    [[ "$BASH_COMMAND" == __ccs_* ]] && return
    __CCS_COMMAND=$(HISTTIMEFORMAT= builtin history 1 | sed 's/^ *[0-9]* *//')
    __CCS_START=$(date +%s%3N 2>/dev/null)
}

__ccs_precmd() {
    local exit_code=$?
    if [[ -n "$__CCS_COMMAND" && "$__CCS_COMMAND" != "$__CCS_LAST" ]]; then
        local duration=0
        local end=$(date +%s%3N 2>/dev/null)
        if [[ "$__CCS_START" =~ ^[0-9]+$ && "$end" =~ ^[0-9]+$ ]]; then
            duration=$(( end - __CCS_START ))
        fi
        ({{.BinaryPath}} record --exit "$exit_code" --duration "$duration" -- "$__CCS_COMMAND" >/dev/null 2>&1 &)
        __CCS_LAST="$__CCS_COMMAND"
    fi
    unset __CCS_COMMAND __CCS_START
}

trap '__ccs_preexec' DEBUG
if [[ "$PROMPT_COMMAND" != *"__ccs_precmd"* ]]; then
    PROMPT_COMMAND="__ccs_precmd${PROMPT_COMMAND:+; $PROMPT_COMMAND}"
fi

__ccs_search() {
    local selected
    selected=$({{.BinaryPath}} search -i "$@" -- "$READLINE_LINE")
    READLINE_LINE="$selected"
    READLINE_POINT=${#READLINE_LINE}
}

__ccs_search_up() {
    __ccs_search --shell-up-key-binding
}

if [[ $- == *i* ]]; then
{{- if .BindCtrlR}}
    bind -x '"\C-r": __ccs_search'
{{- end}}
{{- if .BindUp}}
    bind -x '"\e[A": __ccs_search_up'
    bind -x '"\eOA": __ccs_search_up'
{{- end}}
    :
fi
`

const zshHookTemplate = `# ccsearch zsh integration
# Generated by 'ccsearch init zsh'

export {{.SessionEnv}}="{{.SessionID}}"

autoload -Uz add-zsh-hook

__ccs_preexec() {
    __CCS_COMMAND="$1"
    __CCS_START=$EPOCHREALTIME
}

__ccs_precmd() {
    local exit_code=$?
    [[ -z "$__CCS_COMMAND" ]] && return
    local duration=0
    if [[ -n "$__CCS_START" ]]; then
        local elapsed=$(( (EPOCHREALTIME - __CCS_START) * 1000 ))
        duration=${elapsed%.*}
    fi
    { {{.BinaryPath}} record --exit "$exit_code" --duration "$duration" -- "$__CCS_COMMAND" >/dev/null 2>&1 } &!
    unset __CCS_COMMAND __CCS_START
}

zmodload zsh/datetime 2>/dev/null
if [[ ${preexec_functions[(I)__ccs_preexec]} -eq 0 ]]; then
    add-zsh-hook preexec __ccs_preexec
fi
if [[ ${precmd_functions[(I)__ccs_precmd]} -eq 0 ]]; then
    add-zsh-hook precmd __ccs_precmd
fi

__ccs_search() {
    emulate -L zsh
    zle -I
    local selected
    selected=$({{.BinaryPath}} search -i "$@" -- "$BUFFER" </dev/tty)
    BUFFER="$selected"
    CURSOR=${#BUFFER}
    zle reset-prompt
}

__ccs_search_up() {
    __ccs_search --shell-up-key-binding
}

zle -N __ccs_search
zle -N __ccs_search_up
{{- if .BindCtrlR}}
bindkey '^r' __ccs_search
{{- end}}
{{- if .BindUp}}
bindkey '^[[A' __ccs_search_up
bindkey '^[OA' __ccs_search_up
{{- end}}
`
