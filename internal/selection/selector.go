// Package selection resolves include and exclude patterns into the ordered set of files to render.
package selection

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	literalMatchLogMessage    = "include pattern matched literal path"
	excludedLogMessage        = "excluded candidate"
	skippedIrregularMessage   = "skipping non-regular file"
	skippedUnreadableMessage  = "skipping unreadable file"
	selectionCompletedMessage = "selection completed"
	logFieldExclude           = "exclude"
	logFieldSelected          = "selected"
)

// Selector produces the candidate file set for a run.
type Selector struct {
	root     string
	expander Expander
	logger   *zap.Logger
}

// NewSelector constructs a Selector resolving relative paths against root.
func NewSelector(root string, expander Expander, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Selector{root: root, expander: expander, logger: logger}
}

// Select expands includePatterns, removes every path containing one of excludePatterns,
// sorts the remainder and keeps only regular readable files.
func (selector *Selector) Select(includePatterns []string, excludePatterns []string) ([]types.CandidateFile, error) {
	seenPaths := map[string]struct{}{}
	var candidatePaths []string
	addCandidate := func(candidatePath string) {
		if _, seen := seenPaths[candidatePath]; seen {
			return
		}
		seenPaths[candidatePath] = struct{}{}
		candidatePaths = append(candidatePaths, candidatePath)
	}

	for _, includePattern := range includePatterns {
		if selector.literalExists(includePattern) {
			selector.logger.Debug(literalMatchLogMessage, zap.String(logFieldPattern, includePattern))
			addCandidate(utils.NormalizeCandidatePath(includePattern))
			continue
		}
		expandedPaths, expandError := selector.expander.Expand(includePattern)
		if expandError != nil {
			return nil, expandError
		}
		for _, expandedPath := range expandedPaths {
			addCandidate(utils.NormalizeCandidatePath(expandedPath))
		}
	}

	remainingPaths := candidatePaths[:0]
	for _, candidatePath := range candidatePaths {
		if excludePattern, excluded := MatchExclude(candidatePath, excludePatterns); excluded {
			selector.logger.Debug(excludedLogMessage, zap.String(logFieldPath, candidatePath), zap.String(logFieldExclude, excludePattern))
			continue
		}
		remainingPaths = append(remainingPaths, candidatePath)
	}
	sort.Strings(remainingPaths)

	candidates := make([]types.CandidateFile, 0, len(remainingPaths))
	for _, candidatePath := range remainingPaths {
		sourcePath := selector.resolve(candidatePath)
		fileInformation, statError := os.Stat(sourcePath)
		if statError != nil || !fileInformation.Mode().IsRegular() {
			selector.logger.Debug(skippedIrregularMessage, zap.String(logFieldPath, candidatePath))
			continue
		}
		if !isReadable(sourcePath) {
			selector.logger.Debug(skippedUnreadableMessage, zap.String(logFieldPath, candidatePath))
			continue
		}
		candidates = append(candidates, types.CandidateFile{
			Path:       candidatePath,
			SourcePath: sourcePath,
			SizeBytes:  fileInformation.Size(),
		})
	}
	selector.logger.Debug(selectionCompletedMessage, zap.Int(logFieldSelected, len(candidates)))
	return candidates, nil
}

// MatchExclude reports the first exclude pattern occurring anywhere in candidatePath.
func MatchExclude(candidatePath string, excludePatterns []string) (string, bool) {
	for _, excludePattern := range excludePatterns {
		if excludePattern == "" {
			continue
		}
		if strings.Contains(candidatePath, excludePattern) {
			return excludePattern, true
		}
	}
	return "", false
}

func (selector *Selector) literalExists(pattern string) bool {
	if pattern == "" {
		return false
	}
	_, statError := os.Stat(selector.resolve(pattern))
	return statError == nil
}

func (selector *Selector) resolve(candidatePath string) string {
	nativePath := filepath.FromSlash(candidatePath)
	if filepath.IsAbs(nativePath) || selector.root == "" {
		return nativePath
	}
	return filepath.Join(selector.root, nativePath)
}

func isReadable(path string) bool {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return false
	}
	_ = fileHandle.Close()
	return true
}
