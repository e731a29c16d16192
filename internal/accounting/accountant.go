// Package accounting tracks how many file bytes a run has emitted and decides
// when a file must be truncated or the run aborted.
package accounting

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	limitExceededMessageFormat = "total size %s exceeds maximum size %s at %s"
	truncationMarkerFormat     = "... [truncated: showing first %s of %s, %s omitted]"
)

// ErrSizeLimitExceeded is matched by every LimitExceededError.
var ErrSizeLimitExceeded = errors.New("size limit exceeded")

// LimitExceededError reports the file that pushed the running total over the maximum.
type LimitExceededError struct {
	Path         string
	TotalBytes   int64
	MaximumBytes int64
}

func (limitError *LimitExceededError) Error() string {
	return fmt.Sprintf(limitExceededMessageFormat,
		utils.FormatFileSize(limitError.TotalBytes),
		utils.FormatFileSize(limitError.MaximumBytes),
		limitError.Path,
	)
}

// Is makes errors.Is(err, ErrSizeLimitExceeded) hold.
func (limitError *LimitExceededError) Is(target error) bool {
	return target == ErrSizeLimitExceeded
}

// Allocation describes how much of a file the renderer may emit.
type Allocation struct {
	EmitBytes    int64
	OmittedBytes int64
	Truncated    bool
}

// Accountant holds the running total for a single run.
type Accountant struct {
	maximumBytes        int64
	truncationThreshold int64
	totalBytes          int64
}

// NewAccountant constructs an accountant. A truncationThreshold of zero disables truncation.
func NewAccountant(maximumBytes int64, truncationThreshold int64) *Accountant {
	return &Accountant{maximumBytes: maximumBytes, truncationThreshold: truncationThreshold}
}

// Account adds the file's counted size to the running total. With truncation enabled a file
// larger than the threshold counts only the threshold. Exceeding the maximum returns a
// *LimitExceededError and leaves the total unchanged.
func (accountant *Accountant) Account(path string, sizeBytes int64) (Allocation, error) {
	allocation := Allocation{EmitBytes: sizeBytes}
	if accountant.truncationThreshold > 0 && sizeBytes > accountant.truncationThreshold {
		allocation = Allocation{
			EmitBytes:    accountant.truncationThreshold,
			OmittedBytes: sizeBytes - accountant.truncationThreshold,
			Truncated:    true,
		}
	}
	nextTotal := accountant.totalBytes + allocation.EmitBytes
	if nextTotal > accountant.maximumBytes {
		return Allocation{}, &LimitExceededError{Path: path, TotalBytes: nextTotal, MaximumBytes: accountant.maximumBytes}
	}
	accountant.totalBytes = nextTotal
	return allocation, nil
}

// TotalBytes returns the bytes accounted so far.
func (accountant *Accountant) TotalBytes() int64 {
	return accountant.totalBytes
}

// Truncate cuts content to at most limit bytes without splitting a UTF-8 sequence.
func Truncate(content []byte, limit int64) []byte {
	if limit < 0 {
		limit = 0
	}
	if int64(len(content)) <= limit {
		return content
	}
	cut := int(limit)
	for steps := 0; cut > 0 && steps < utf8.UTFMax-1 && !utf8.RuneStart(content[cut]); steps++ {
		cut--
	}
	return content[:cut]
}

// TruncationMarker renders the line appended after truncated content.
func TruncationMarker(shownBytes int64, sizeBytes int64) string {
	return fmt.Sprintf(truncationMarkerFormat,
		utils.FormatFileSize(shownBytes),
		utils.FormatFileSize(sizeBytes),
		utils.FormatFileSize(sizeBytes-shownBytes),
	)
}
