package prompt_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/mdctx/internal/prompt"
)

func TestLoadDefaultPrompt(t *testing.T) {
	text, err := prompt.Load("")
	require.NoError(t, err)
	require.Equal(t, prompt.Default(), text)
	require.NotEmpty(t, text)
}

func TestLoadReturnsFileVerbatim(t *testing.T) {
	promptPath := filepath.Join(t.TempDir(), "prompt.txt")
	content := "Document every flag.\n\n  Keep indentation.\n"
	require.NoError(t, os.WriteFile(promptPath, []byte(content), 0o600))

	text, err := prompt.Load(promptPath)
	require.NoError(t, err)
	require.Equal(t, content, text)
}

func TestLoadMissingFileFails(t *testing.T) {
	missingPath := filepath.Join(t.TempDir(), "absent.txt")
	_, err := prompt.Load(missingPath)
	require.ErrorIs(t, err, prompt.ErrPromptMissing)
	require.Contains(t, err.Error(), missingPath)
}
