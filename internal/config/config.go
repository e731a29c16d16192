// Package config loads file-based defaults: the YAML application configuration
// and the exclude pattern file.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	commentPrefix             = "#"
	excludeFileErrorFormat    = "loading %s from %s: %w"
	closeWarningMessageFormat = "Warning: failed to close %s: %v\n"
)

// LoadExcludeFilePatterns reads one exclude substring per line from excludeFilePath.
// Blank lines and lines starting with # are skipped. A missing file yields no patterns.
//
// #nosec G304
func LoadExcludeFilePatterns(excludeFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(excludeFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, closeWarningMessageFormat, excludeFilePath, closeError)
		}
	}()

	var excludePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		excludePatterns = append(excludePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return utils.DeduplicatePatterns(excludePatterns), nil
}

// LoadDirectoryExcludePatterns reads the exclude file that lives in directoryPath.
func LoadDirectoryExcludePatterns(directoryPath string) ([]string, error) {
	excludeFilePath := filepath.Join(directoryPath, utils.ExcludeFileName)
	excludePatterns, loadError := LoadExcludeFilePatterns(excludeFilePath)
	if loadError != nil {
		return nil, fmt.Errorf(excludeFileErrorFormat, utils.ExcludeFileName, directoryPath, loadError)
	}
	return excludePatterns, nil
}
