package vcs_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/vcs"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

func runGit(t *testing.T, directory string, arguments ...string) {
	t.Helper()
	command := exec.Command("git", arguments...)
	command.Dir = directory
	command.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Test Author",
		"GIT_AUTHOR_EMAIL=author@example.com",
		"GIT_COMMITTER_NAME=Test Author",
		"GIT_COMMITTER_EMAIL=author@example.com",
		"GIT_CONFIG_GLOBAL="+os.DevNull,
		"GIT_CONFIG_NOSYSTEM=1",
	)
	output, err := command.CombinedOutput()
	require.NoError(t, err, string(output))
}

func TestParseCommitLog(t *testing.T) {
	output := "abc1234\x1fAdd parser\x1fAda\x1f2 days ago\n\nbroken line\ndef5678\x1fFix\x1fBob\x1f3 weeks ago\n"
	commits := vcs.ParseCommitLog(output)
	require.Equal(t, []types.Commit{
		{ShortHash: "abc1234", Subject: "Add parser", Author: "Ada", RelativeDate: "2 days ago"},
		{ShortHash: "def5678", Subject: "Fix", Author: "Bob", RelativeDate: "3 weeks ago"},
	}, commits)
}

func TestParseTrackedFilesKeepsSurroundingSpaces(t *testing.T) {
	output := "src/main.go\r\n notes.txt\n\ntrailing.md \nREADME.md\n"
	require.Equal(t, []string{" notes.txt", "README.md", "src/main.go", "trailing.md "}, vcs.ParseTrackedFiles(output))
}

func TestUnavailable(t *testing.T) {
	var info vcs.Info = vcs.Unavailable{}
	require.False(t, info.Available())
	_, err := info.Branch()
	require.ErrorIs(t, err, vcs.ErrUnavailable)
	_, err = info.TrackedFiles()
	require.ErrorIs(t, err, vcs.ErrUnavailable)
	_, err = info.RecentCommits(3)
	require.ErrorIs(t, err, vcs.ErrUnavailable)
}

func TestGitRepositoryOutsideWorkTreeIsUnavailable(t *testing.T) {
	requireGit(t)
	t.Setenv("GIT_CEILING_DIRECTORIES", filepath.Dir(t.TempDir()))
	repository := vcs.NewGitRepository(t.TempDir(), nil)
	require.False(t, repository.Available())
	_, err := repository.TrackedFiles()
	require.ErrorIs(t, err, vcs.ErrUnavailable)
}

func TestGitRepositoryReadsBranchCommitsAndFiles(t *testing.T) {
	requireGit(t)
	directory := t.TempDir()
	runGit(t, directory, "init", "--quiet", "--initial-branch=trunk")
	require.NoError(t, os.WriteFile(filepath.Join(directory, "b.txt"), []byte("b"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(directory, "dir"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "dir", "a.txt"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(directory, "untracked.txt"), []byte("u"), 0o600))
	runGit(t, directory, "add", "b.txt", "dir/a.txt")
	runGit(t, directory, "commit", "--quiet", "-m", "First commit")
	for _, subject := range []string{"Second", "Third", "Fourth"} {
		runGit(t, directory, "commit", "--quiet", "--allow-empty", "-m", subject)
	}

	repository := vcs.NewGitRepository(directory, nil)
	require.True(t, repository.Available())

	branch, err := repository.Branch()
	require.NoError(t, err)
	require.Equal(t, "trunk", branch)

	commits, err := repository.RecentCommits(3)
	require.NoError(t, err)
	require.Len(t, commits, 3)
	require.Equal(t, "Fourth", commits[0].Subject)
	require.Equal(t, "Test Author", commits[0].Author)
	require.NotEmpty(t, commits[0].ShortHash)
	require.NotEmpty(t, commits[0].RelativeDate)

	trackedFiles, err := repository.TrackedFiles()
	require.NoError(t, err)
	require.Equal(t, []string{"b.txt", "dir/a.txt"}, trackedFiles)
}
