// Package prompt loads the text appended after the file sections.
package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
)

const (
	promptMissingErrorFormat = "%w: prompt file %s does not exist"
	promptReadErrorFormat    = "read prompt file %s: %w"
)

// ErrPromptMissing reports that the configured prompt file does not exist.
var ErrPromptMissing = errors.New("missing prompt")

//go:embed default_prompt.md
var defaultPrompt string

// Default returns the built-in prompt text.
func Default() string {
	return defaultPrompt
}

// Load returns the built-in prompt for an empty path and the verbatim file contents otherwise.
func Load(path string) (string, error) {
	if path == "" {
		return defaultPrompt, nil
	}
	// #nosec G304
	content, readError := os.ReadFile(path)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return "", fmt.Errorf(promptMissingErrorFormat, ErrPromptMissing, path)
		}
		return "", fmt.Errorf(promptReadErrorFormat, path, readError)
	}
	return string(content), nil
}
