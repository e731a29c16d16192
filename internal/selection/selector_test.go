package selection_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/mdctx/internal/selection"
	"github.com/tyemirov/mdctx/internal/types"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for relativePath, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(relativePath))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0o755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0o600))
	}
}

func selectedPaths(candidates []types.CandidateFile) []string {
	paths := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		paths = append(paths, candidate.Path)
	}
	return paths
}

func newSelector(root string) *selection.Selector {
	return selection.NewSelector(root, selection.NewGlobExpander(root, nil), nil)
}

func TestSelectExpandsGlobsAcrossDirectories(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go":             "package main",
		"internal/cli/cli.go": "package cli",
		"README.md":           "# readme",
		".git/HEAD":           "ref: refs/heads/main",
		"scripts/build.sh":    "#!/bin/sh",
	})

	candidates, err := newSelector(root).Select([]string{"*.go"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"internal/cli/cli.go", "main.go"}, selectedPaths(candidates))
	require.Equal(t, int64(len("package main")), candidates[1].SizeBytes)
	require.Equal(t, filepath.Join(root, "main.go"), candidates[1].SourcePath)
}

func TestSelectMatchesFullRelativePath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"scripts/a.sh":        "a",
		"scripts/nested/b.sh": "b",
		"other/c.sh":          "c",
	})

	candidates, err := newSelector(root).Select([]string{"scripts/*", "./other/*.sh"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"other/c.sh", "scripts/a.sh", "scripts/nested/b.sh"}, selectedPaths(candidates))
}

func TestSelectDeduplicatesAcrossPatterns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a", "b.txt": "b"})

	candidates, err := newSelector(root).Select([]string{"*.txt", "a.txt", "./a.txt", "a*"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"a.txt", "b.txt"}, selectedPaths(candidates))
}

func TestSelectLiteralPathBypassesGlobSemantics(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"weird[1].txt": "literal", "weird1.txt": "glob"})

	candidates, err := newSelector(root).Select([]string{"weird[1].txt"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"weird[1].txt"}, selectedPaths(candidates))
}

func TestSelectExcludeUsesSubstringContainment(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app.go":         "a",
		"src/app_test.go":    "b",
		"vendor/lib/lib.go":  "c",
		"docs/generated.go":  "d",
		"tools/keep/keep.go": "e",
	})

	candidates, err := newSelector(root).Select([]string{"*.go"}, []string{"_test", "vendor/", "ocs/gen", "tools/"})
	require.NoError(t, err)
	require.Equal(t, []string{"src/app.go"}, selectedPaths(candidates))
}

func TestSelectExcludeRemovesLiteralPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"secret.env": "TOKEN=1"})

	candidates, err := newSelector(root).Select([]string{"secret.env"}, []string{"secret.env"})
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestSelectDropsDirectoriesAndBrokenSymlinks(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"pkg/file.txt": "x"})
	require.NoError(t, os.Symlink(filepath.Join(root, "missing.txt"), filepath.Join(root, "dangling.txt")))

	candidates, err := newSelector(root).Select([]string{"pkg", "*"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"pkg/file.txt"}, selectedPaths(candidates))
}

func TestSelectWithoutIncludePatternsIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	candidates, err := newSelector(root).Select(nil, nil)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestSelectUnmatchedPatternIsEmpty(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "a"})

	candidates, err := newSelector(root).Select([]string{"*.rs", "[unterminated"}, nil)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestSelectIsDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"b/z.md": "z", "a/y.md": "y", "c.md": "c", "B.md": "B"})

	first, err := newSelector(root).Select([]string{"*.md"}, nil)
	require.NoError(t, err)
	second, err := newSelector(root).Select([]string{"*.md"}, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, []string{"B.md", "a/y.md", "b/z.md", "c.md"}, selectedPaths(first))
}

type staticExpander map[string][]string

func (expander staticExpander) Expand(pattern string) ([]string, error) {
	return expander[pattern], nil
}

func TestSelectUsesInjectedExpander(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"one.txt": "1", "two.txt": "2"})

	selector := selection.NewSelector(root, staticExpander{"numbers": {"two.txt", "one.txt", "three.txt"}}, nil)
	candidates, err := selector.Select([]string{"numbers"}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{"one.txt", "two.txt"}, selectedPaths(candidates))
}

func TestMatchExclude(t *testing.T) {
	pattern, excluded := selection.MatchExclude("internal/cli/cli_test.go", []string{"vendor", "_test"})
	require.True(t, excluded)
	require.Equal(t, "_test", pattern)

	_, excluded = selection.MatchExclude("internal/cli/cli.go", []string{"vendor", "", "_test"})
	require.False(t, excluded)

	_, excluded = selection.MatchExclude("src/a.go", []string{"./"})
	require.False(t, excluded)
}

func TestSelectDotSlashExcludeKeepsRelativeCandidates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"b.go": "b", "src/a.go": "a"})

	candidates, err := newSelector(root).Select([]string{"*.go"}, []string{"./"})
	require.NoError(t, err)
	require.Equal(t, []string{"b.go", "src/a.go"}, selectedPaths(candidates))
}
