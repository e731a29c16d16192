// Package vcs reads branch, history and tracked files from version control.
// Every query is read-only and failures are reported to the caller, which treats
// them as the absence of version control.
package vcs

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/mdctx/internal/types"
)

const (
	gitExecutableName        = "git"
	commitFieldSeparator     = "\x1f"
	commitLogFormat          = "--pretty=format:%h" + commitFieldSeparator + "%s" + commitFieldSeparator + "%an" + commitFieldSeparator + "%ar"
	commitFieldCount         = 4
	insideWorkTreeOutput     = "true"
	gitCommandErrorFormat    = "git %s: %w: %s"
	gitUnavailableLogMessage = "version control unavailable"
	logFieldDirectory        = "directory"
)

// ErrUnavailable is returned by every query when no repository can be used.
var ErrUnavailable = errors.New("version control unavailable")

// Info is the read-only view of version control used by the renderer.
type Info interface {
	Available() bool
	Branch() (string, error)
	RecentCommits(limit int) ([]types.Commit, error)
	TrackedFiles() ([]string, error)
}

// GitRepository answers queries by running the git binary inside a working directory.
type GitRepository struct {
	workingDirectory string
	executablePath   string
	logger           *zap.Logger
	available        *bool
}

// NewGitRepository constructs a repository reader for workingDirectory.
func NewGitRepository(workingDirectory string, logger *zap.Logger) *GitRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitRepository{workingDirectory: workingDirectory, logger: logger}
}

// Available reports whether git is installed and workingDirectory is inside a work tree.
// The answer is computed once per repository value.
func (repository *GitRepository) Available() bool {
	if repository.available != nil {
		return *repository.available
	}
	available := repository.probe()
	repository.available = &available
	return available
}

func (repository *GitRepository) probe() bool {
	executablePath, lookupError := exec.LookPath(gitExecutableName)
	if lookupError != nil {
		repository.logger.Debug(gitUnavailableLogMessage, zap.Error(lookupError))
		return false
	}
	repository.executablePath = executablePath
	output, runError := repository.run("rev-parse", "--is-inside-work-tree")
	if runError != nil || strings.TrimSpace(output) != insideWorkTreeOutput {
		repository.logger.Debug(gitUnavailableLogMessage, zap.String(logFieldDirectory, repository.workingDirectory), zap.Error(runError))
		return false
	}
	return true
}

// Branch returns the abbreviated name of the checked-out branch.
func (repository *GitRepository) Branch() (string, error) {
	if !repository.Available() {
		return "", ErrUnavailable
	}
	output, runError := repository.run("rev-parse", "--abbrev-ref", "HEAD")
	if runError != nil {
		return "", runError
	}
	return strings.TrimSpace(output), nil
}

// RecentCommits returns up to limit commits, newest first.
func (repository *GitRepository) RecentCommits(limit int) ([]types.Commit, error) {
	if !repository.Available() {
		return nil, ErrUnavailable
	}
	output, runError := repository.run("log", fmt.Sprintf("-n%d", limit), commitLogFormat)
	if runError != nil {
		return nil, runError
	}
	return ParseCommitLog(output), nil
}

// TrackedFiles returns every path known to the index, sorted.
func (repository *GitRepository) TrackedFiles() ([]string, error) {
	if !repository.Available() {
		return nil, ErrUnavailable
	}
	output, runError := repository.run("-c", "core.quotepath=off", "ls-files")
	if runError != nil {
		return nil, runError
	}
	return ParseTrackedFiles(output), nil
}

// ParseTrackedFiles splits ls-files output into sorted paths. Paths keep any
// leading or trailing spaces; only line terminators are removed.
func ParseTrackedFiles(output string) []string {
	var trackedFiles []string
	for _, line := range strings.Split(output, "\n") {
		if trackedPath := strings.TrimSuffix(line, "\r"); trackedPath != "" {
			trackedFiles = append(trackedFiles, trackedPath)
		}
	}
	sort.Strings(trackedFiles)
	return trackedFiles
}

func (repository *GitRepository) run(arguments ...string) (string, error) {
	executable := repository.executablePath
	if executable == "" {
		executable = gitExecutableName
	}
	// #nosec G204
	command := exec.Command(executable, arguments...)
	command.Dir = repository.workingDirectory
	var standardError bytes.Buffer
	command.Stderr = &standardError
	output, runError := command.Output()
	if runError != nil {
		return "", fmt.Errorf(gitCommandErrorFormat, strings.Join(arguments, " "), runError, strings.TrimSpace(standardError.String()))
	}
	return string(output), nil
}

// ParseCommitLog decodes output produced with the unit-separated log format.
func ParseCommitLog(output string) []types.Commit {
	var commits []types.Commit
	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, commitFieldSeparator, commitFieldCount)
		if len(fields) != commitFieldCount {
			continue
		}
		commits = append(commits, types.Commit{
			ShortHash:    fields[0],
			Subject:      fields[1],
			Author:       fields[2],
			RelativeDate: strings.TrimSpace(fields[3]),
		})
	}
	return commits
}

// Unavailable is the Info used when version control must not be consulted.
type Unavailable struct{}

// Available always reports false.
func (Unavailable) Available() bool { return false }

// Branch always fails with ErrUnavailable.
func (Unavailable) Branch() (string, error) { return "", ErrUnavailable }

// RecentCommits always fails with ErrUnavailable.
func (Unavailable) RecentCommits(int) ([]types.Commit, error) { return nil, ErrUnavailable }

// TrackedFiles always fails with ErrUnavailable.
func (Unavailable) TrackedFiles() ([]string, error) { return nil, ErrUnavailable }

var (
	_ Info = (*GitRepository)(nil)
	_ Info = Unavailable{}
)
