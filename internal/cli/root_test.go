package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "firmlab", cmd.Use)
	assert.Contains(t, cmd.Long, "verification report")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"parse", "create", "gentests", "verify", "report", "registry", "profiles"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dataDirFlag := cmd.PersistentFlags().Lookup("data-dir")
	require.NotNil(t, dataDirFlag)
	assert.Equal(t, ".firmlab", dataDirFlag.DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml", "profiles", "list"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVerifyCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	verifyCmd, _, err := cmd.Find([]string{"verify"})
	require.NoError(t, err)

	boardFlag := verifyCmd.Flags().Lookup("board")
	require.NotNil(t, boardFlag)
	assert.Equal(t, "", boardFlag.DefValue)

	docFlag := verifyCmd.Flags().Lookup("doc")
	require.NotNil(t, docFlag)
}

func TestRegistrySubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, path := range [][]string{{"registry", "list"}, {"registry", "show"}} {
		subCmd, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[1], subCmd.Name())
	}
}
