package utils

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Binary size multipliers.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size")

// sizePattern matches size strings like "500", "2KB", "1.5m" or "3 GB".
var sizePattern = regexp.MustCompile(`(?i)^\s*([0-9]+(?:\.[0-9]+)?)\s*([KMGT]?B?)\s*$`)

var fileSizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize converts a byte length into a human-readable upper-case unit string.
func FormatFileSize(bytes int64) string {
	if bytes < 0 {
		return "0B"
	}
	value := float64(bytes)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(fileSizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if unitIndex == 0 {
		return fmt.Sprintf("%dB", bytes)
	}
	if value < 10 {
		formatted := fmt.Sprintf("%.1f", value)
		formatted = strings.TrimSuffix(formatted, ".0")
		return formatted + fileSizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, fileSizeUnits[unitIndex])
}

// ParseFileSize parses a human-readable size into bytes.
// Units are case-insensitive and 1024-based: K/KB, M/MB, G/GB and T/TB.
// A value without a unit is a byte count. Fractions are truncated to whole bytes.
func ParseFileSize(text string) (int64, error) {
	matches := sizePattern.FindStringSubmatch(text)
	if matches == nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, text)
	}
	value, parseError := strconv.ParseFloat(matches[1], 64)
	if parseError != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, text)
	}

	var multiplier int64
	switch strings.TrimSuffix(strings.ToUpper(matches[2]), "B") {
	case "":
		multiplier = 1
	case "K":
		multiplier = KiB
	case "M":
		multiplier = MiB
	case "G":
		multiplier = GiB
	case "T":
		multiplier = TiB
	default:
		return 0, fmt.Errorf("%w: unknown unit in %q", ErrInvalidSize, text)
	}
	product := value * float64(multiplier)
	if product >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q is out of range", ErrInvalidSize, text)
	}
	return int64(product), nil
}
