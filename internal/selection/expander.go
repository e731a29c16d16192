package selection

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.uber.org/zap"

	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	currentDirectoryPrefix    = "./"
	walkRootErrorFormat       = "walk %s: %w"
	invalidPatternLogMessage  = "skipping invalid include pattern"
	unreadableEntryLogMessage = "skipping unreadable entry"
	patternExpandedLogMessage = "include pattern expanded"
	logFieldPattern           = "pattern"
	logFieldPath              = "path"
	logFieldMatches           = "matches"
)

// Expander turns one include pattern into the ordered paths it matches.
type Expander interface {
	Expand(pattern string) ([]string, error)
}

// GlobExpander matches patterns against every path below a root directory.
// A wildcard matches any run of characters including the path separator, so
// "*.go" selects Go files at any depth. Each path is tried both bare and with a
// leading "./". The .git directory is never descended.
type GlobExpander struct {
	root          string
	logger        *zap.Logger
	walkedPaths   []string
	walkCompleted bool
	compiled      map[string]glob.Glob
}

// NewGlobExpander constructs an expander rooted at root.
func NewGlobExpander(root string, logger *zap.Logger) *GlobExpander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GlobExpander{
		root:     root,
		logger:   logger,
		compiled: map[string]glob.Glob{},
	}
}

// Expand returns the relative slash paths under the root matched by pattern, in walk order.
// A malformed pattern matches nothing.
func (expander *GlobExpander) Expand(pattern string) ([]string, error) {
	matcher, compileError := expander.compile(pattern)
	if compileError != nil {
		expander.logger.Warn(invalidPatternLogMessage, zap.String(logFieldPattern, pattern), zap.Error(compileError))
		return nil, nil
	}
	walkedPaths, walkError := expander.paths()
	if walkError != nil {
		return nil, walkError
	}

	var matches []string
	for _, relativePath := range walkedPaths {
		if matcher.Match(relativePath) || matcher.Match(currentDirectoryPrefix+relativePath) {
			matches = append(matches, relativePath)
		}
	}
	expander.logger.Debug(patternExpandedLogMessage, zap.String(logFieldPattern, pattern), zap.Int(logFieldMatches, len(matches)))
	return matches, nil
}

func (expander *GlobExpander) compile(pattern string) (glob.Glob, error) {
	if matcher, cached := expander.compiled[pattern]; cached {
		return matcher, nil
	}
	matcher, compileError := glob.Compile(pattern)
	if compileError != nil {
		return nil, compileError
	}
	expander.compiled[pattern] = matcher
	return matcher, nil
}

// paths walks the root once and memoizes every entry below it.
func (expander *GlobExpander) paths() ([]string, error) {
	if expander.walkCompleted {
		return expander.walkedPaths, nil
	}
	walkFunction := func(currentPath string, directoryEntry fs.DirEntry, walkError error) error {
		if walkError != nil {
			if currentPath == expander.root {
				return walkError
			}
			expander.logger.Debug(unreadableEntryLogMessage, zap.String(logFieldPath, currentPath), zap.Error(walkError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if currentPath == expander.root {
			return nil
		}
		if directoryEntry.IsDir() && directoryEntry.Name() == utils.GitDirectoryName {
			return filepath.SkipDir
		}
		relativePath, relativeError := filepath.Rel(expander.root, currentPath)
		if relativeError != nil {
			return nil
		}
		expander.walkedPaths = append(expander.walkedPaths, strings.TrimPrefix(filepath.ToSlash(relativePath), currentDirectoryPrefix))
		return nil
	}
	if walkError := filepath.WalkDir(expander.root, walkFunction); walkError != nil {
		return nil, fmt.Errorf(walkRootErrorFormat, expander.root, walkError)
	}
	expander.walkCompleted = true
	return expander.walkedPaths, nil
}

var _ Expander = (*GlobExpander)(nil)
