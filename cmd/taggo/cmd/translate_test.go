package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRules(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.txt")
	rules := "anthro: anthropomorphic\nunwanted: .\n"
	require.NoError(t, os.WriteFile(path, []byte(rules), 0o600))
	return path
}

func TestTranslateCommand_TagString(t *testing.T) {
	rules := writeRules(t)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"translate", "--dict", rules, "anthro, unwanted, female"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "anthropomorphic, female")
}

func TestTranslateCommand_File(t *testing.T) {
	rules := writeRules(t)
	tagsFile := filepath.Join(t.TempDir(), "tags.txt")
	require.NoError(t, os.WriteFile(tagsFile, []byte("anthro, female"), 0o600))

	outFile := filepath.Join(t.TempDir(), "out.txt")
	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"translate", "--dict", rules, "--file", tagsFile, "--output", outFile})

	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "anthropomorphic, female")
}

func TestTranslateCommand_NothingToDo(t *testing.T) {
	rules := writeRules(t)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"translate", "--dict", rules})

	assert.Error(t, rootCmd.Execute())
}
