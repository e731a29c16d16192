// Package types defines every cross-package data structure used by the mdctx CLI.
package types

import (
	"errors"
	"fmt"
)

// DefaultMaximumTotalSize is the default cap on emitted file bytes (500KB).
const DefaultMaximumTotalSize int64 = 500 * 1024

// ErrInvalidConfiguration reports a configuration that violates its invariants.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Configuration is the fully resolved set of options for a single run.
type Configuration struct {
	IncludePatterns       []string
	ExcludePatterns       []string
	MaximumTotalSize      int64
	TruncationThreshold   int64
	IncludeGitInformation bool
	ShowFileSizes         bool
	ShowRepositoryMap     bool
	IncludePrompt         bool
	PromptPath            string
	IncludeSummary        bool
	CopyToClipboard       bool
	Verbose               bool
}

// DefaultConfiguration returns the configuration used when no flags or files override it.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaximumTotalSize:  DefaultMaximumTotalSize,
		ShowRepositoryMap: true,
		IncludePrompt:     true,
	}
}

// TruncationEnabled reports whether oversized files are cut instead of counted whole.
func (configuration Configuration) TruncationEnabled() bool {
	return configuration.TruncationThreshold > 0
}

// Validate checks the configuration invariants.
func (configuration Configuration) Validate() error {
	if configuration.MaximumTotalSize <= 0 {
		return fmt.Errorf("%w: maximum size must be positive, got %d", ErrInvalidConfiguration, configuration.MaximumTotalSize)
	}
	if configuration.TruncationThreshold < 0 {
		return fmt.Errorf("%w: truncation threshold must not be negative, got %d", ErrInvalidConfiguration, configuration.TruncationThreshold)
	}
	return nil
}

// CandidateFile is one selected file. Path is what the document shows;
// SourcePath is where the bytes are read from.
type CandidateFile struct {
	Path       string
	SourcePath string
	SizeBytes  int64
}

// Commit is one entry of the recent commit log.
type Commit struct {
	ShortHash    string
	Subject      string
	Author       string
	RelativeDate string
}

// GitInformation is the data rendered in the git section.
type GitInformation struct {
	Branch        string
	RecentCommits []Commit
}

// FileSection is everything the renderer needs to emit one file.
// Content holds the bytes to print, already cut when Truncated is set.
// An empty Summary suppresses the summary line.
type FileSection struct {
	Path         string
	SizeBytes    int64
	Content      []byte
	Summary      string
	Truncated    bool
	OmittedBytes int64
	ShowSize     bool
}
