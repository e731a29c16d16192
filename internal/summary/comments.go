package summary

import (
	"strings"
)

const (
	shebangPrefix     = "#!"
	blockCommentOpen  = "/*"
	blockCommentClose = "*/"
	markupCommentOpen = "<!--"
	markupCommentEnd  = "-->"
)

var lineCommentPrefixes = []string{"///", "//", "#", "--", ";;", ";", "%"}

// LeadingComment returns the text of the comment block at the top of content,
// skipping a shebang line and blank lines. Comment markers are removed.
func LeadingComment(content []byte) string {
	lines := strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n")
	index := 0
	if index < len(lines) && strings.HasPrefix(lines[index], shebangPrefix) {
		index++
	}
	for index < len(lines) && strings.TrimSpace(lines[index]) == "" {
		index++
	}
	if index >= len(lines) {
		return ""
	}

	firstLine := strings.TrimSpace(lines[index])
	switch {
	case strings.HasPrefix(firstLine, blockCommentOpen):
		return collectBlockComment(lines[index:], blockCommentOpen, blockCommentClose)
	case strings.HasPrefix(firstLine, markupCommentOpen):
		return collectBlockComment(lines[index:], markupCommentOpen, markupCommentEnd)
	}

	prefix := lineCommentPrefix(firstLine)
	if prefix == "" {
		return ""
	}
	var collected []string
	for ; index < len(lines); index++ {
		trimmed := strings.TrimSpace(lines[index])
		if !strings.HasPrefix(trimmed, prefix) {
			break
		}
		text := strings.TrimSpace(strings.TrimLeft(trimmed, prefix[:1]))
		if text != "" {
			collected = append(collected, text)
		}
	}
	return strings.Join(collected, " ")
}

func lineCommentPrefix(line string) string {
	for _, prefix := range lineCommentPrefixes {
		if strings.HasPrefix(line, prefix) {
			return prefix
		}
	}
	return ""
}

func collectBlockComment(lines []string, open string, closing string) string {
	var collected []string
	for lineIndex, line := range lines {
		text := strings.TrimSpace(line)
		if lineIndex == 0 {
			text = strings.TrimSpace(strings.TrimPrefix(text, open))
		}
		closed := false
		if closeIndex := strings.Index(text, closing); closeIndex >= 0 {
			text = strings.TrimSpace(text[:closeIndex])
			closed = true
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, "*"))
		if text != "" {
			collected = append(collected, text)
		}
		if closed {
			break
		}
	}
	return strings.Join(collected, " ")
}
