// Package summary derives a one-line synopsis for a file from its declarations
// or its leading comment block.
package summary

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	maximumSummaryRunes     = 160
	ellipsis                = "..."
	emptyFileSummary        = "empty file"
	statisticsSummaryFormat = "%d %s, %s"
	lineSingular            = "line"
	linePlural              = "lines"
	summaryPartSeparator    = "; "
	extractorFailedMessage  = "declaration summary failed; falling back to comments"
	logFieldPath            = "path"
)

// Summarizer produces a non-empty synopsis for a file.
type Summarizer interface {
	Summarize(path string, content []byte) string
}

// declarationExtractor returns a description of the constructs a file declares,
// or an empty string when there is nothing worth reporting.
type declarationExtractor func(path string, content []byte) (string, error)

// Service picks a language-aware extractor by file extension and falls back to
// the leading comment block, then to line and size statistics.
type Service struct {
	extractors map[string]declarationExtractor
	logger     *zap.Logger
}

// NewService constructs a Service with every extractor available in this build.
func NewService(logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	extractors := map[string]declarationExtractor{
		goFileExtension: newGoExtractor().describe,
	}
	for extension, extractor := range newTreeSitterExtractors() {
		extractors[extension] = extractor
	}
	return &Service{extractors: extractors, logger: logger}
}

// Summarize implements Summarizer.
func (service *Service) Summarize(path string, content []byte) string {
	if extractor, supported := service.extractors[strings.ToLower(filepath.Ext(path))]; supported {
		description, extractError := extractor(path, content)
		if extractError != nil {
			service.logger.Debug(extractorFailedMessage, zap.String(logFieldPath, path), zap.Error(extractError))
		} else if description != "" {
			return limitRunes(description)
		}
	}
	if comment := LeadingComment(content); comment != "" {
		return limitRunes(comment)
	}
	return Statistics(content)
}

// Statistics describes content by line count and size.
func Statistics(content []byte) string {
	if len(content) == 0 {
		return emptyFileSummary
	}
	lineCount := bytes.Count(content, []byte("\n"))
	if !bytes.HasSuffix(content, []byte("\n")) {
		lineCount++
	}
	unit := linePlural
	if lineCount == 1 {
		unit = lineSingular
	}
	return fmt.Sprintf(statisticsSummaryFormat, lineCount, unit, utils.FormatFileSize(int64(len(content))))
}

func limitRunes(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(text) <= maximumSummaryRunes {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:maximumSummaryRunes-len(ellipsis)])) + ellipsis
}

func joinNames(label string, names []string, limit int) string {
	if len(names) == 0 {
		return ""
	}
	shown := names
	suffix := ""
	if len(names) > limit {
		shown = names[:limit]
		suffix = fmt.Sprintf(" and %d more", len(names)-limit)
	}
	return label + " " + strings.Join(shown, ", ") + suffix
}

var _ Summarizer = (*Service)(nil)
