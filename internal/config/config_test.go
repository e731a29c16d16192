package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tyemirov/mdctx/internal/utils"
)

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingHandle *testing.T, filePath string, content string) {
	testingHandle.Helper()
	if writeError := os.WriteFile(filePath, []byte(content), 0o644); writeError != nil {
		testingHandle.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

func TestLoadExcludeFilePatterns(testingHandle *testing.T) {
	testCases := []struct {
		name             string
		content          string
		expectedPatterns []string
	}{
		{
			name:             "comments_and_blank_lines_skipped",
			content:          "# generated\nnode_modules\n\n  dist/  \n",
			expectedPatterns: []string{"node_modules", "dist/"},
		},
		{
			name:             "duplicates_collapsed",
			content:          "vendor\nvendor\n.env\n",
			expectedPatterns: []string{"vendor", ".env"},
		},
		{
			name:             "only_comments",
			content:          "# nothing here\n",
			expectedPatterns: nil,
		},
	}

	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(testingHandle *testing.T) {
			directory := testingHandle.TempDir()
			writeTestFile(testingHandle, filepath.Join(directory, utils.ExcludeFileName), testCase.content)
			patterns, loadError := LoadDirectoryExcludePatterns(directory)
			if loadError != nil {
				testingHandle.Fatalf("LoadDirectoryExcludePatterns failed: %v", loadError)
			}
			if len(patterns) == 0 && len(testCase.expectedPatterns) == 0 {
				return
			}
			if !reflect.DeepEqual(patterns, testCase.expectedPatterns) {
				testingHandle.Fatalf("unexpected patterns: got %v want %v", patterns, testCase.expectedPatterns)
			}
		})
	}
}

func TestLoadExcludeFilePatternsMissingFile(testingHandle *testing.T) {
	patterns, loadError := LoadDirectoryExcludePatterns(testingHandle.TempDir())
	if loadError != nil {
		testingHandle.Fatalf("expected no error for a missing file, got %v", loadError)
	}
	if len(patterns) != 0 {
		testingHandle.Fatalf("expected no patterns, got %v", patterns)
	}
}

func TestLoadExcludeFilePatternsRejectsDirectory(testingHandle *testing.T) {
	directory := testingHandle.TempDir()
	if makeDirError := os.Mkdir(filepath.Join(directory, utils.ExcludeFileName), 0o755); makeDirError != nil {
		testingHandle.Fatalf("failed to create directory: %v", makeDirError)
	}
	if _, loadError := LoadDirectoryExcludePatterns(directory); loadError == nil {
		testingHandle.Fatalf("expected an error when the exclude file is a directory")
	}
}
