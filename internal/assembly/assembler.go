// Package assembly builds the context document: it selects files, plans the
// byte budget, gathers version control data and drives a DocumentRenderer.
package assembly

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/tyemirov/mdctx/internal/accounting"
	"github.com/tyemirov/mdctx/internal/output"
	"github.com/tyemirov/mdctx/internal/summary"
	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/vcs"
)

const (
	recentCommitLimit = 3

	selectionErrorFormat = "select files: %w"
	promptErrorFormat    = "load prompt: %w"
	readFileErrorFormat  = "read %s: %w"
	renderErrorFormat    = "render %s: %w"
	renderSectionTitle   = "title"
	renderSectionGit     = "git information"
	renderSectionMap     = "repository map"
	renderSectionFiles   = "files header"
	renderSectionPrompt  = "prompt"
	renderSectionFlush   = "document"
	branchFailedMessage  = "branch lookup failed; omitting branch"
	commitsFailedMessage = "commit log failed; omitting recent commits"
	trackedFailedMessage = "tracked file listing failed; omitting repository map"
	gitSkippedMessage    = "version control unavailable; skipping git sections"
	fileTruncatedMessage = "truncating file"
	documentReadyMessage = "context document assembled"
	logFieldPath         = "path"
	logFieldSize         = "size_bytes"
	logFieldEmitted      = "emitted_bytes"
	logFieldFiles        = "files"
	logFieldTruncated    = "truncated"
	logFieldTotal        = "total_bytes"
	logFieldMaximum      = "maximum_bytes"
)

// FileSelector resolves patterns into the ordered candidate set.
type FileSelector interface {
	Select(includePatterns []string, excludePatterns []string) ([]types.CandidateFile, error)
}

// PromptLoader returns the prompt text for a configured path.
type PromptLoader func(path string) (string, error)

// Dependencies are the capabilities an Assembler drives.
type Dependencies struct {
	Selector   FileSelector
	Repository vcs.Info
	Summarizer summary.Summarizer
	LoadPrompt PromptLoader
	Logger     *zap.Logger
}

// Report describes a completed run.
type Report struct {
	Files          int
	TruncatedFiles int
	TotalBytes     int64
}

// Assembler produces one document per call to Assemble.
type Assembler struct {
	selector   FileSelector
	repository vcs.Info
	summarizer summary.Summarizer
	loadPrompt PromptLoader
	logger     *zap.Logger
}

// NewAssembler constructs an Assembler. A nil Repository behaves as vcs.Unavailable.
func NewAssembler(dependencies Dependencies) *Assembler {
	assembler := &Assembler{
		selector:   dependencies.Selector,
		repository: dependencies.Repository,
		summarizer: dependencies.Summarizer,
		loadPrompt: dependencies.LoadPrompt,
		logger:     dependencies.Logger,
	}
	if assembler.repository == nil {
		assembler.repository = vcs.Unavailable{}
	}
	if assembler.logger == nil {
		assembler.logger = zap.NewNop()
	}
	return assembler
}

type plannedFile struct {
	candidate  types.CandidateFile
	allocation accounting.Allocation
}

// Assemble renders the document for configuration. Selection, the size budget and
// the prompt are resolved before the first byte is rendered, so a failing run
// leaves the renderer untouched.
func (assembler *Assembler) Assemble(ctx context.Context, configuration types.Configuration, renderer output.DocumentRenderer) (Report, error) {
	if validationError := configuration.Validate(); validationError != nil {
		return Report{}, validationError
	}

	candidates, selectionError := assembler.selector.Select(configuration.IncludePatterns, configuration.ExcludePatterns)
	if selectionError != nil {
		return Report{}, fmt.Errorf(selectionErrorFormat, selectionError)
	}

	accountant := accounting.NewAccountant(configuration.MaximumTotalSize, configuration.TruncationThreshold)
	plannedFiles := make([]plannedFile, 0, len(candidates))
	report := Report{}
	for _, candidate := range candidates {
		allocation, accountError := accountant.Account(candidate.Path, candidate.SizeBytes)
		if accountError != nil {
			return Report{}, accountError
		}
		if allocation.Truncated {
			report.TruncatedFiles++
			assembler.logger.Debug(fileTruncatedMessage,
				zap.String(logFieldPath, candidate.Path),
				zap.Int64(logFieldSize, candidate.SizeBytes),
				zap.Int64(logFieldEmitted, allocation.EmitBytes))
		}
		plannedFiles = append(plannedFiles, plannedFile{candidate: candidate, allocation: allocation})
	}

	var promptText string
	if configuration.IncludePrompt {
		loadedPrompt, promptError := assembler.loadPrompt(configuration.PromptPath)
		if promptError != nil {
			return Report{}, fmt.Errorf(promptErrorFormat, promptError)
		}
		promptText = loadedPrompt
	}

	if renderError := renderer.Title(); renderError != nil {
		return Report{}, fmt.Errorf(renderErrorFormat, renderSectionTitle, renderError)
	}
	if renderError := assembler.renderRepositorySections(configuration, renderer); renderError != nil {
		return Report{}, renderError
	}
	if renderError := renderer.FilesHeader(); renderError != nil {
		return Report{}, fmt.Errorf(renderErrorFormat, renderSectionFiles, renderError)
	}
	for _, planned := range plannedFiles {
		if contextError := ctx.Err(); contextError != nil {
			return Report{}, contextError
		}
		section, sectionError := assembler.buildSection(configuration, planned)
		if sectionError != nil {
			return Report{}, sectionError
		}
		if renderError := renderer.File(section); renderError != nil {
			return Report{}, fmt.Errorf(renderErrorFormat, section.Path, renderError)
		}
	}
	if configuration.IncludePrompt {
		if renderError := renderer.Prompt(promptText); renderError != nil {
			return Report{}, fmt.Errorf(renderErrorFormat, renderSectionPrompt, renderError)
		}
	}
	if flushError := renderer.Flush(); flushError != nil {
		return Report{}, fmt.Errorf(renderErrorFormat, renderSectionFlush, flushError)
	}

	report.Files = len(plannedFiles)
	report.TotalBytes = accountant.TotalBytes()
	assembler.logger.Debug(documentReadyMessage,
		zap.Int(logFieldFiles, report.Files),
		zap.Int(logFieldTruncated, report.TruncatedFiles),
		zap.String(logFieldTotal, humanize.Comma(report.TotalBytes)),
		zap.String(logFieldMaximum, humanize.Comma(configuration.MaximumTotalSize)))
	return report, nil
}

func (assembler *Assembler) renderRepositorySections(configuration types.Configuration, renderer output.DocumentRenderer) error {
	if !configuration.IncludeGitInformation && !configuration.ShowRepositoryMap {
		return nil
	}
	if !assembler.repository.Available() {
		assembler.logger.Debug(gitSkippedMessage)
		return nil
	}
	if configuration.IncludeGitInformation {
		information := assembler.gitInformation()
		if information.Branch != "" || len(information.RecentCommits) > 0 {
			if renderError := renderer.GitInformation(information); renderError != nil {
				return fmt.Errorf(renderErrorFormat, renderSectionGit, renderError)
			}
		}
	}
	if configuration.ShowRepositoryMap {
		trackedFiles, trackedError := assembler.repository.TrackedFiles()
		if trackedError != nil {
			assembler.logger.Debug(trackedFailedMessage, zap.Error(trackedError))
			return nil
		}
		if renderError := renderer.RepositoryMap(trackedFiles); renderError != nil {
			return fmt.Errorf(renderErrorFormat, renderSectionMap, renderError)
		}
	}
	return nil
}

func (assembler *Assembler) gitInformation() types.GitInformation {
	var information types.GitInformation
	branch, branchError := assembler.repository.Branch()
	if branchError != nil {
		assembler.logger.Debug(branchFailedMessage, zap.Error(branchError))
	} else {
		information.Branch = branch
	}
	commits, commitsError := assembler.repository.RecentCommits(recentCommitLimit)
	if commitsError != nil {
		assembler.logger.Debug(commitsFailedMessage, zap.Error(commitsError))
	} else {
		information.RecentCommits = commits
	}
	return information
}

func (assembler *Assembler) buildSection(configuration types.Configuration, planned plannedFile) (types.FileSection, error) {
	content, readError := readPrefix(planned.candidate.SourcePath, planned.allocation.EmitBytes)
	if readError != nil {
		return types.FileSection{}, fmt.Errorf(readFileErrorFormat, planned.candidate.Path, readError)
	}
	if planned.allocation.Truncated {
		content = accounting.Truncate(content, planned.allocation.EmitBytes)
	}
	section := types.FileSection{
		Path:         planned.candidate.Path,
		SizeBytes:    planned.candidate.SizeBytes,
		Content:      content,
		Truncated:    planned.allocation.Truncated,
		OmittedBytes: planned.candidate.SizeBytes - int64(len(content)),
		ShowSize:     configuration.ShowFileSizes,
	}
	if !section.Truncated {
		section.OmittedBytes = 0
	}
	if configuration.IncludeSummary && assembler.summarizer != nil {
		section.Summary = assembler.summarizer.Summarize(planned.candidate.SourcePath, content)
	}
	return section, nil
}

// readPrefix reads at most limit bytes so a file that grew after selection
// cannot exceed its accounted share.
func readPrefix(path string, limit int64) ([]byte, error) {
	// #nosec G304
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return nil, openError
	}
	defer fileHandle.Close()
	return io.ReadAll(io.LimitReader(fileHandle, limit))
}
