package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/utils"
)

type configTestCase struct {
	name            string
	globalContent   string
	localContent    string
	explicitPath    string
	explicitContent string
	expectMaxSize   string
	expectGit       *bool
	expectListFiles *bool
	expectExclude   []string
	expectPrompt    *bool
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:            "local_overrides_global",
			globalContent:   "max_size: 1MB\ngit: true\nexclude:\n  - vendor\n",
			localContent:    "max_size: 2KB\nls_files: false\nexclude:\n  - dist\n  - dist\n",
			expectMaxSize:   "2KB",
			expectGit:       boolPointer(true),
			expectListFiles: boolPointer(false),
			expectExclude:   []string{"dist"},
		},
		{
			name:            "explicit_path_replaces_local",
			globalContent:   "max_size: 1MB\n",
			localContent:    "max_size: 2KB\n",
			explicitPath:    "custom.yaml",
			explicitContent: "prompt:\n  enabled: false\n",
			expectMaxSize:   "1MB",
			expectPrompt:    boolPointer(false),
		},
		{
			name:          "numeric_size_accepted",
			localContent:  "max_size: 4096\n",
			expectMaxSize: "4096",
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			homeDir := t.TempDir()
			workingDir := t.TempDir()
			configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
			if err := os.MkdirAll(configDir, 0o755); err != nil {
				t.Fatalf("create config dir: %v", err)
			}
			if testCase.globalContent != "" {
				globalPath := filepath.Join(configDir, utils.GlobalConfigFileName)
				if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
					t.Fatalf("write global config: %v", err)
				}
			}
			if testCase.localContent != "" {
				localPath := filepath.Join(workingDir, utils.ConfigFileName)
				if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
					t.Fatalf("write local config: %v", err)
				}
			}
			if testCase.explicitPath != "" {
				target := filepath.Join(workingDir, testCase.explicitPath)
				if err := os.WriteFile(target, []byte(testCase.explicitContent), 0o600); err != nil {
					t.Fatalf("write explicit config: %v", err)
				}
			}

			t.Setenv("HOME", homeDir)
			t.Setenv("USERPROFILE", homeDir)

			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: testCase.explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}

			if loadedConfig.MaximumSize != testCase.expectMaxSize {
				t.Fatalf("expected max_size %q, got %q", testCase.expectMaxSize, loadedConfig.MaximumSize)
			}
			assertBoolPointer(t, "git", testCase.expectGit, loadedConfig.Git)
			assertBoolPointer(t, "ls_files", testCase.expectListFiles, loadedConfig.ListFiles)
			assertBoolPointer(t, "prompt.enabled", testCase.expectPrompt, loadedConfig.Prompt.Enabled)
			if len(testCase.expectExclude) > 0 && !reflect.DeepEqual(loadedConfig.Exclude, testCase.expectExclude) {
				t.Fatalf("expected exclude %v, got %v", testCase.expectExclude, loadedConfig.Exclude)
			}
		})
	}
}

func assertBoolPointer(t *testing.T, key string, expected *bool, actual *bool) {
	t.Helper()
	if expected == nil {
		if actual != nil {
			t.Fatalf("expected no %s override", key)
		}
		return
	}
	if actual == nil || *actual != *expected {
		t.Fatalf("unexpected %s value", key)
	}
}

func TestLoadApplicationConfigurationResolvesRelativePromptPath(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	workingDir := t.TempDir()
	localPath := filepath.Join(workingDir, utils.ConfigFileName)
	if err := os.WriteFile(localPath, []byte("prompt:\n  path: prompts/review.md\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	loadedConfig, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir})
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	expectedPath := filepath.Join(workingDir, "prompts", "review.md")
	if loadedConfig.Prompt.Path != expectedPath {
		t.Fatalf("expected prompt path %s, got %s", expectedPath, loadedConfig.Prompt.Path)
	}
}

func TestLoadApplicationConfigurationRejectsMalformedFile(t *testing.T) {
	homeDir := t.TempDir()
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	workingDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(workingDir, utils.ConfigFileName), []byte("max_size: [unterminated\n"), 0o600); err != nil {
		t.Fatalf("write local config: %v", err)
	}
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected an error for malformed YAML")
	}
}

func TestApplicationConfigurationApply(t *testing.T) {
	fileConfiguration := ApplicationConfiguration{
		Include:       []string{"docs/*.md"},
		Exclude:       []string{"vendor"},
		MaximumSize:   "1MB",
		TruncateLarge: "8KB",
		Git:           boolPointer(true),
		ListFiles:     boolPointer(false),
		Prompt:        PromptConfiguration{Enabled: boolPointer(false), Path: "/tmp/prompt.md"},
	}
	base := types.DefaultConfiguration()
	base.IncludePatterns = []string{"*.go"}

	applied, err := fileConfiguration.Apply(base)
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if !reflect.DeepEqual(applied.IncludePatterns, []string{"*.go", "docs/*.md"}) {
		t.Fatalf("unexpected include patterns %v", applied.IncludePatterns)
	}
	if applied.MaximumTotalSize != utils.MiB || applied.TruncationThreshold != 8*utils.KiB {
		t.Fatalf("unexpected sizes %d %d", applied.MaximumTotalSize, applied.TruncationThreshold)
	}
	if !applied.IncludeGitInformation || applied.ShowRepositoryMap || applied.IncludePrompt {
		t.Fatalf("unexpected switches %+v", applied)
	}
	if applied.PromptPath != "/tmp/prompt.md" {
		t.Fatalf("unexpected prompt path %s", applied.PromptPath)
	}
	if !reflect.DeepEqual(base.IncludePatterns, []string{"*.go"}) {
		t.Fatalf("Apply mutated its input: %v", base.IncludePatterns)
	}
}

func TestApplicationConfigurationApplyRejectsInvalidSize(t *testing.T) {
	_, err := ApplicationConfiguration{MaximumSize: "lots"}.Apply(types.DefaultConfiguration())
	if err == nil {
		t.Fatalf("expected an error for an invalid max_size")
	}
}
