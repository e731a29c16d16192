// Package utils contains general helper functions used across mdctx.
package utils

import (
	"path/filepath"
	"strings"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// TrimPatterns drops blank entries and surrounding whitespace.
func TrimPatterns(patterns []string) []string {
	trimmed := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		value := strings.TrimSpace(pattern)
		if value != "" {
			trimmed = append(trimmed, value)
		}
	}
	return trimmed
}

// NormalizeCandidatePath cleans a user-supplied or walked path and converts it to
// forward-slash form. Relative paths lose any leading "./".
func NormalizeCandidatePath(path string) string {
	return filepath.ToSlash(filepath.Clean(path))
}
