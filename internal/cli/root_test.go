package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand is a test helper that runs the CLI with the given args and
// captures both stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	return executeCommandWithInput(nil, args...)
}

// executeCommandWithInput is executeCommand with stdin set to in.
func executeCommandWithInput(in io.Reader, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand()
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)

	if in != nil {
		cmd.SetIn(in)
	}

	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

// isolate runs the test in an empty working and home directory so no
// config or settings file is picked up by accident.
func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)

	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))

	return p
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code, err.Error())
}

const testSettings = `
filterData:
  videoId: ["^bad$"]
  channelId: ["^UCbad$"]
`

// browsePage has one blocked and one allowed video in a shelf.
const browsePage = `{"contents":{"sectionListRenderer":{"contents":[
  {"itemSectionRenderer":{"contents":[{"shelfRenderer":{"content":{"horizontalListRenderer":{"items":[
    {"gridVideoRenderer":{"videoId":"bad"}},
    {"gridVideoRenderer":{"videoId":"ok"}}
  ]}}}}]}}
]}}}`

// blockedChannelPage is the page of a blocked channel.
const blockedChannelPage = `{"header":{"c4TabbedHeaderRenderer":{"channelId":"UCbad","title":"Bad"}},"contents":{}}`

// ---------------------------------------------------------------------------
// Help output
// ---------------------------------------------------------------------------

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"filter", "diff", "validate", "watch", "version", "completion"} {
		assert.Contains(t, stdout, sub, "help should mention %q subcommand", sub)
	}

	for _, flag := range []string{"--config", "--filters", "--log-level", "--log-format", "--no-color", "--quiet"} {
		assert.Contains(t, stdout, flag, "help should mention %q flag", flag)
	}
}

// ---------------------------------------------------------------------------
// Usage and configuration errors → exit code 2
// ---------------------------------------------------------------------------

func TestRootCommand_UnknownFlag(t *testing.T) {
	_, _, err := executeCommand("--nonexistent")
	requireExitCode(t, err, ExitUsage)
}

func TestRootCommand_SilenceErrors(t *testing.T) {
	_, stderr, err := executeCommand("--nonexistent")
	require.Error(t, err)
	assert.Empty(t, stderr, "cobra should not print errors to stderr (SilenceErrors)")
}

func TestRootCommand_InvalidConfig(t *testing.T) {
	_, _, err := executeCommand("--config", "/nonexistent/path.yaml", "filter", "page.json")
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestRootCommand_InvalidLogLevel(t *testing.T) {
	_, _, err := executeCommand("--log-level", "trace", "filter", "page.json")
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestRootCommand_InvalidLogFormat(t *testing.T) {
	_, _, err := executeCommand("--log-format", "xml", "filter", "page.json")
	requireExitCode(t, err, ExitUsage)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestRootCommand_FiltersFromConfigFile(t *testing.T) {
	dir := isolate(t)
	settings := writeFile(t, dir, "mine.yaml", testSettings)
	cfgFile := writeFile(t, dir, "cfg.yaml", "filters: "+settings+"\n")
	doc := writeFile(t, dir, "page.json", browsePage)

	stdout, _, err := executeCommand("--config", cfgFile, "filter", doc)
	require.NoError(t, err)
	assert.NotContains(t, stdout, `"bad"`)
	assert.Contains(t, stdout, `"ok"`)
}

// ---------------------------------------------------------------------------
// ExitError
// ---------------------------------------------------------------------------

func TestExitError_ErrorWithMessage(t *testing.T) {
	err := &ExitError{Code: 1, Err: assert.AnError}
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}

func TestExitError_ErrorWithoutMessage(t *testing.T) {
	err := &ExitError{Code: 42}
	assert.Equal(t, "exit code 42", err.Error())
	assert.Nil(t, err.Unwrap())
}

// ---------------------------------------------------------------------------
// completion
// ---------------------------------------------------------------------------

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := executeCommand("completion", shell)
			require.NoError(t, err)
			assert.Contains(t, stdout, "blocktube")
		})
	}
}

func TestCompletionCommand_UnknownShell(t *testing.T) {
	_, _, err := executeCommand("completion", "tcsh")
	require.Error(t, err)
}
