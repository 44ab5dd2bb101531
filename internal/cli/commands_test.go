package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const boardYAML = `
soc: IPQ9574
vendor: Qualcomm
architecture: aarch64
capabilities:
  - id: CAP_WIFI
    name: WiFi 7
    category: wifi
    description: Tri-band WiFi 7 radio
requirements:
  - id: REQ_BOOT
    title: Boot time budget
    description: The system boot must complete within 120 seconds
    severity: critical
`

// execute runs the CLI with args and returns stdout and the error.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeDoc(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	require.NoError(t, os.WriteFile(path, []byte(boardYAML), 0o644))
	return path
}

func TestParseCommand(t *testing.T) {
	doc := writeDoc(t)

	out, err := execute(t, "parse", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "IPQ9574")
	assert.Contains(t, out, "capabilities: 1")
}

func TestParseCommand_BadDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0o644))

	_, err := execute(t, "parse", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestParseCommand_JSONEnvelope(t *testing.T) {
	doc := writeDoc(t)

	out, err := execute(t, "--format", "json", "parse", doc)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCreateGenTestsShowRoundTrip(t *testing.T) {
	dataDir := t.TempDir()
	doc := writeDoc(t)

	out, err := execute(t, "--data-dir", dataDir,
		"create", "--board", "ipq9574-ref", "--emulator-id", "EMU_CLITEST1", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "EMU_CLITEST1")
	assert.Contains(t, out, "ipq9574-ref")

	out, err = execute(t, "--data-dir", dataDir, "gentests", "EMU_CLITEST1")
	require.NoError(t, err)
	assert.Contains(t, out, "BOOT_COLD_001")
	assert.Contains(t, out, "CAP_WIFI_FUNC_001")

	out, err = execute(t, "--data-dir", dataDir, "registry", "show", "EMU_CLITEST1")
	require.NoError(t, err)
	assert.Contains(t, out, "EMU_CLITEST1: ipq9574-ref")
	assert.Contains(t, out, "BOOT_COLD_001")

	out, err = execute(t, "--data-dir", dataDir, "registry", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "configs (1):")
	assert.Contains(t, out, "reports (0):")
}

func TestGenTestsCommand_UnknownEmulator(t *testing.T) {
	_, err := execute(t, "--data-dir", t.TempDir(), "gentests", "EMU_MISSING")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReportCommand_UnknownID(t *testing.T) {
	_, err := execute(t, "--data-dir", t.TempDir(), "report", "RPT_MISSING")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestProfilesCommands(t *testing.T) {
	out, err := execute(t, "profiles", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "IPQ9574")
	assert.Contains(t, out, "RTL9607C")

	out, err = execute(t, "profiles", "list", "--vendor", "mediatek")
	require.NoError(t, err)
	assert.Contains(t, out, "MT7986")
	assert.NotContains(t, out, "IPQ9574")

	out, err = execute(t, "profiles", "show", "s905x4")
	require.NoError(t, err)
	assert.Contains(t, out, "amlogic")
	assert.Contains(t, out, "boot sequence:")

	_, err = execute(t, "profiles", "show", "NOPE9999")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
