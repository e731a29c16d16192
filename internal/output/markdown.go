// Package output renders the context document.
package output

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tyemirov/mdctx/internal/accounting"
	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	documentTitle            = "# Repository Context"
	gitInformationHeading    = "## Git Information"
	repositoryMapHeading     = "## Repository Map"
	filesHeading             = "## Files"
	promptHeading            = "## Prompt"
	fileHeadingFormat        = "### %s"
	fileHeadingWithSize      = "### %s (%s)"
	branchLineFormat         = "Branch: %s"
	recentCommitsLabel       = "Recent commits:"
	commitLineFormat         = "- %s %s (%s, %s)"
	summaryLineFormat        = "Summary: %s"
	repositoryMapLanguageTag = "text"
	minimumFenceLength       = 3
	fenceCharacter           = "`"
	newline                  = "\n"
)

// MarkdownRenderer writes the document as Markdown. The first write error is
// remembered and returned by every later call.
type MarkdownRenderer struct {
	writer    *bufio.Writer
	lastError error
}

// NewMarkdownRenderer constructs a renderer writing to writer.
func NewMarkdownRenderer(writer io.Writer) *MarkdownRenderer {
	return &MarkdownRenderer{writer: bufio.NewWriter(writer)}
}

// Title writes the top-level heading.
func (renderer *MarkdownRenderer) Title() error {
	return renderer.lines(documentTitle)
}

// GitInformation writes the branch and the recent commit list.
func (renderer *MarkdownRenderer) GitInformation(information types.GitInformation) error {
	renderer.block(gitInformationHeading)
	if information.Branch != "" {
		renderer.block(fmt.Sprintf(branchLineFormat, information.Branch))
	}
	if len(information.RecentCommits) > 0 {
		commitLines := []string{recentCommitsLabel}
		for _, commit := range information.RecentCommits {
			commitLines = append(commitLines, fmt.Sprintf(commitLineFormat, commit.ShortHash, commit.Subject, commit.Author, commit.RelativeDate))
		}
		renderer.block(commitLines...)
	}
	return renderer.lastError
}

// RepositoryMap writes every tracked path, one per line.
func (renderer *MarkdownRenderer) RepositoryMap(trackedFiles []string) error {
	renderer.block(repositoryMapHeading)
	renderer.codeBlock(repositoryMapLanguageTag, []byte(strings.Join(trackedFiles, newline)))
	return renderer.lastError
}

// FilesHeader writes the heading that precedes the file sections.
func (renderer *MarkdownRenderer) FilesHeader() error {
	return renderer.block(filesHeading)
}

// File writes one file section: heading, optional summary, fenced content and
// the truncation marker when the content was cut.
func (renderer *MarkdownRenderer) File(section types.FileSection) error {
	heading := fmt.Sprintf(fileHeadingFormat, section.Path)
	if section.ShowSize {
		heading = fmt.Sprintf(fileHeadingWithSize, section.Path, utils.FormatFileSize(section.SizeBytes))
	}
	renderer.block(heading)
	if section.Summary != "" {
		renderer.block(fmt.Sprintf(summaryLineFormat, section.Summary))
	}
	renderer.codeBlock(LanguageTag(section.Path), section.Content)
	if section.Truncated {
		renderer.block(accounting.TruncationMarker(int64(len(section.Content)), section.SizeBytes))
	}
	return renderer.lastError
}

// Prompt writes the trailing prompt verbatim.
func (renderer *MarkdownRenderer) Prompt(text string) error {
	renderer.block(promptHeading)
	if text == "" {
		return renderer.lastError
	}
	renderer.write(newline + text)
	if !strings.HasSuffix(text, newline) {
		renderer.write(newline)
	}
	return renderer.lastError
}

// Flush pushes buffered output to the underlying writer.
func (renderer *MarkdownRenderer) Flush() error {
	if renderer.lastError != nil {
		return renderer.lastError
	}
	renderer.lastError = renderer.writer.Flush()
	return renderer.lastError
}

// LanguageTag returns the fence info string for path: its extension without the dot.
func LanguageTag(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// Fence returns a backtick fence longer than any backtick run inside content.
func Fence(content []byte) string {
	longestRun := 0
	currentRun := 0
	for _, character := range content {
		if character == '`' {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	fenceLength := minimumFenceLength
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, fenceLength)
}

// block writes a blank separator line followed by values, one per line.
func (renderer *MarkdownRenderer) block(values ...string) error {
	renderer.write(newline)
	return renderer.lines(values...)
}

// codeBlock writes a blank separator line and a fenced block holding content.
func (renderer *MarkdownRenderer) codeBlock(languageTag string, content []byte) {
	fence := Fence(content)
	renderer.block(fence + languageTag)
	renderer.write(string(content))
	if len(content) > 0 && !bytes.HasSuffix(content, []byte(newline)) {
		renderer.write(newline)
	}
	renderer.lines(fence)
}

func (renderer *MarkdownRenderer) lines(values ...string) error {
	for _, value := range values {
		renderer.write(value + newline)
	}
	return renderer.lastError
}

func (renderer *MarkdownRenderer) write(text string) {
	if renderer.lastError != nil {
		return
	}
	_, renderer.lastError = renderer.writer.WriteString(text)
}

var _ DocumentRenderer = (*MarkdownRenderer)(nil)
