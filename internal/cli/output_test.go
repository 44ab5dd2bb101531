package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitError(t *testing.T) {
	err := NewExitError(ExitCommandError, "unknown emulator EMU_X")
	assert.Equal(t, "unknown emulator EMU_X", err.Error())
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	wrapped := WrapExitError(ExitFailure, "verification failed", fmt.Errorf("boom"))
	assert.Equal(t, "verification failed: boom", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.EqualError(t, wrapped.Unwrap(), "boom")

	// Non-ExitErrors default to the generic failure code.
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))
}

func TestOutputFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.JSON(map[string]int{"tests": 8}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_ErrorJSON(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "json", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeNotFound, "unknown report", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestOutputFormatter_ErrorText(t *testing.T) {
	var buf bytes.Buffer
	f := &OutputFormatter{Format: "text", Writer: &buf}

	require.NoError(t, f.Error(ErrCodeBadInput, "parse failed", nil))
	assert.Contains(t, buf.String(), "Error [E001]: parse failed")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	var out, errOut bytes.Buffer

	quiet := &OutputFormatter{Format: "text", Writer: &out, Verbose: false}
	quiet.VerboseLog("hidden %d", 1)
	assert.Empty(t, out.String())

	verbose := &OutputFormatter{Format: "json", Writer: &out, ErrWriter: &errOut, Verbose: true}
	verbose.VerboseLog("shown %d", 2)
	assert.Empty(t, out.String(), "verbose output must not corrupt the JSON stream")
	assert.Equal(t, "shown 2\n", errOut.String())
}
