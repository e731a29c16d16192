// Package cli provides the command line interface.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tyemirov/mdctx/internal/assembly"
	"github.com/tyemirov/mdctx/internal/config"
	"github.com/tyemirov/mdctx/internal/output"
	"github.com/tyemirov/mdctx/internal/prompt"
	"github.com/tyemirov/mdctx/internal/selection"
	"github.com/tyemirov/mdctx/internal/services/clipboard"
	"github.com/tyemirov/mdctx/internal/summary"
	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/utils"
	"github.com/tyemirov/mdctx/internal/vcs"
)

const (
	includeFlagName       = "include"
	excludeFlagName       = "exclude"
	maximumSizeFlagName   = "max-size"
	gitFlagName           = "git"
	showSizesFlagName     = "show-sizes"
	showFileSizesAlias    = "show-file-sizes"
	noListFilesFlagName   = "no-ls-files"
	promptFlagName        = "prompt"
	noPromptFlagName      = "no-prompt"
	truncateLargeFlagName = "truncate-large"
	summaryFlagName       = "summary"
	copyFlagName          = "copy"
	verboseFlagName       = "verbose"
	versionFlagName       = "version"
	configFlagName        = "config"
	initConfigFlagName    = "init-config"
	forceFlagName         = "force"
	helpFlagName          = "help"
	helpShorthand         = "h"
	shortFlagPrefix       = "-"

	includeFlagDescription       = "include glob pattern or literal path (repeatable)"
	excludeFlagDescription       = "exclude every path containing this substring (repeatable)"
	maximumSizeFlagDescription   = "maximum total size of emitted file content, e.g. 500KB or 2MB"
	gitFlagDescription           = "include branch and recent commits"
	showSizesFlagDescription     = "annotate each file heading with its size"
	noListFilesFlagDescription   = "omit the repository map of tracked files"
	promptFlagDescription        = "file whose contents replace the trailing prompt"
	noPromptFlagDescription      = "omit the trailing prompt"
	truncateLargeFlagDescription = "truncate files larger than SIZE instead of counting them whole"
	summaryFlagDescription       = "add a one-line summary before each file"
	copyFlagDescription          = "also copy the document to the system clipboard"
	verboseFlagDescription       = "log selection and git decisions to stderr"
	versionFlagDescription       = "display application version"
	configFlagDescription        = "configuration file to use instead of ./" + utils.ConfigFileName
	initConfigFlagDescription    = "write a default configuration file (local or global) and exit"
	forceFlagDescription         = "overwrite an existing configuration file with --init-config"

	rootUse              = utils.ApplicationName + " [patterns...]"
	rootShortDescription = "assemble repository files into a Markdown context document"
	rootLongDescription  = `mdctx selects files with include globs and literal paths, drops every path
containing an exclude substring, and prints a single Markdown document with an
optional git summary, a repository map, one fenced block per file and a trailing
prompt. Positional arguments are include patterns. The total emitted size is
capped by --max-size; --truncate-large cuts oversized files instead.`
	rootUsageExample = `  # Every Go file except vendored code, with git information
  mdctx --include='*.go' --exclude=vendor/ --git

  # Documentation sources with sizes, truncating anything above 8KB
  mdctx --show-sizes --truncate-large=8KB 'docs/*.md' README.md

  # Custom prompt, copied to the clipboard as well
  mdctx --prompt=prompts/review.md --copy 'internal/*'`

	versionTemplate             = "%s version: %s\n"
	initConfigWrittenTemplate   = "wrote configuration to %s\n"
	initConfigDefaultTarget     = string(config.InitTargetLocal)
	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	invalidSizeFlagErrorFormat  = "invalid --%s value %q: %w"
	clipboardErrorFormat        = "copy to clipboard: %w"
	runCompletedMessage         = "run completed"
	logFieldFiles               = "files"
	logFieldTruncated           = "truncated"
	logFieldTotal               = "total_bytes"
)

// RepositoryOpener returns the version control view for a working directory.
type RepositoryOpener func(workingDirectory string, logger *zap.Logger) vcs.Info

// Options configures the root command. Zero values select the production behavior.
type Options struct {
	Logger           *zap.Logger
	LogLevel         *zap.AtomicLevel
	WorkingDirectory string
	Stdout           io.Writer
	Stderr           io.Writer
	Copier           clipboard.Copier
	OpenRepository   RepositoryOpener
}

// commandFlags holds the raw flag values; resolveConfiguration folds them over the
// configuration files.
type commandFlags struct {
	includePatterns  []string
	excludePatterns  []string
	maximumSize      string
	truncateLarge    string
	includeGit       bool
	showSizes        bool
	disableListFiles bool
	promptPath       string
	disablePrompt    bool
	includeSummary   bool
	copyToClipboard  bool
	verbose          bool
	showVersion      bool
	configPath       string
	initTarget       string
	forceInit        bool
}

// Execute runs mdctx with the process arguments.
func Execute(ctx context.Context, options Options) error {
	return Run(ctx, options, os.Args[1:])
}

// Run executes the root command with arguments.
func Run(ctx context.Context, options Options, arguments []string) error {
	resolvedOptions, optionsError := options.withDefaults()
	if optionsError != nil {
		return optionsError
	}
	rootCommand := NewRootCommand(resolvedOptions)
	if helpRequested(arguments) {
		return rootCommand.Help()
	}
	rootCommand.SetArgs(joinSwitchLiterals(rootCommand.Flags(), arguments, resolvedOptions.pathExists))
	return rootCommand.ExecuteContext(ctx)
}

// helpRequested reports whether --help or -h appears before any "--" terminator.
// Help wins over every other argument, including unknown flags.
func helpRequested(arguments []string) bool {
	for _, argument := range arguments {
		switch argument {
		case argumentTerminator:
			return false
		case longFlagPrefix + helpFlagName, shortFlagPrefix + helpShorthand:
			return true
		}
	}
	return false
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(options Options) *cobra.Command {
	var flags commandFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			resolvedOptions, optionsError := options.withDefaults()
			if optionsError != nil {
				return optionsError
			}
			if flags.showVersion {
				_, writeError := fmt.Fprintf(command.OutOrStdout(), versionTemplate, utils.ApplicationName, utils.GetApplicationVersion())
				return writeError
			}
			if flags.initTarget != "" {
				writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
					Target:           config.InitTarget(flags.initTarget),
					Force:            flags.forceInit,
					WorkingDirectory: resolvedOptions.WorkingDirectory,
				})
				if initError != nil {
					return initError
				}
				_, writeError := fmt.Fprintf(command.OutOrStdout(), initConfigWrittenTemplate, writtenPath)
				return writeError
			}
			configuration, configurationError := flags.resolveConfiguration(command.Flags(), arguments, resolvedOptions.WorkingDirectory)
			if configurationError != nil {
				return configurationError
			}
			return runAssembly(command, resolvedOptions, configuration)
		},
	}
	if options.Stdout != nil {
		rootCommand.SetOut(options.Stdout)
	}
	if options.Stderr != nil {
		rootCommand.SetErr(options.Stderr)
	}

	flagSet := rootCommand.Flags()
	flagSet.SetNormalizeFunc(normalizeFlagName)
	flagSet.StringArrayVar(&flags.includePatterns, includeFlagName, nil, includeFlagDescription)
	flagSet.StringArrayVar(&flags.excludePatterns, excludeFlagName, nil, excludeFlagDescription)
	flagSet.StringVar(&flags.maximumSize, maximumSizeFlagName, utils.FormatFileSize(types.DefaultMaximumTotalSize), maximumSizeFlagDescription)
	flagSet.StringVar(&flags.truncateLarge, truncateLargeFlagName, "", truncateLargeFlagDescription)
	registerSwitch(flagSet, &flags.includeGit, gitFlagName, gitFlagDescription)
	registerSwitch(flagSet, &flags.showSizes, showSizesFlagName, showSizesFlagDescription)
	registerSwitch(flagSet, &flags.disableListFiles, noListFilesFlagName, noListFilesFlagDescription)
	flagSet.StringVar(&flags.promptPath, promptFlagName, "", promptFlagDescription)
	registerSwitch(flagSet, &flags.disablePrompt, noPromptFlagName, noPromptFlagDescription)
	registerSwitch(flagSet, &flags.includeSummary, summaryFlagName, summaryFlagDescription)
	registerSwitch(flagSet, &flags.copyToClipboard, copyFlagName, copyFlagDescription)
	registerSwitch(flagSet, &flags.verbose, verboseFlagName, verboseFlagDescription)
	flagSet.BoolVar(&flags.showVersion, versionFlagName, false, versionFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringVar(&flags.initTarget, initConfigFlagName, "", initConfigFlagDescription)
	if lookup := flagSet.Lookup(initConfigFlagName); lookup != nil {
		lookup.NoOptDefVal = initConfigDefaultTarget
	}
	flagSet.BoolVar(&flags.forceInit, forceFlagName, false, forceFlagDescription)
	return rootCommand
}

// canonicalFlagName maps accepted aliases onto their registered flag name.
func canonicalFlagName(name string) string {
	if name == showFileSizesAlias {
		return showSizesFlagName
	}
	return name
}

func normalizeFlagName(flagSet *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(canonicalFlagName(name))
}

// resolveConfiguration layers defaults, configuration files, the exclude file and
// explicitly set flags, in that order.
func (flags commandFlags) resolveConfiguration(flagSet *pflag.FlagSet, arguments []string, workingDirectory string) (types.Configuration, error) {
	fileConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flags.configPath,
	})
	if loadError != nil {
		return types.Configuration{}, loadError
	}
	configuration, applyError := fileConfiguration.Apply(types.DefaultConfiguration())
	if applyError != nil {
		return types.Configuration{}, applyError
	}
	excludeFilePatterns, excludeFileError := config.LoadDirectoryExcludePatterns(workingDirectory)
	if excludeFileError != nil {
		return types.Configuration{}, excludeFileError
	}

	configuration.IncludePatterns = append(configuration.IncludePatterns, flags.includePatterns...)
	configuration.IncludePatterns = utils.DeduplicatePatterns(append(configuration.IncludePatterns, arguments...))
	configuration.ExcludePatterns = append(configuration.ExcludePatterns, excludeFilePatterns...)
	configuration.ExcludePatterns = utils.DeduplicatePatterns(append(configuration.ExcludePatterns, flags.excludePatterns...))

	if flagSet.Changed(maximumSizeFlagName) {
		maximumSize, parseError := utils.ParseFileSize(flags.maximumSize)
		if parseError != nil {
			return types.Configuration{}, fmt.Errorf(invalidSizeFlagErrorFormat, maximumSizeFlagName, flags.maximumSize, parseError)
		}
		configuration.MaximumTotalSize = maximumSize
	}
	if flagSet.Changed(truncateLargeFlagName) {
		threshold, parseError := utils.ParseFileSize(flags.truncateLarge)
		if parseError != nil {
			return types.Configuration{}, fmt.Errorf(invalidSizeFlagErrorFormat, truncateLargeFlagName, flags.truncateLarge, parseError)
		}
		configuration.TruncationThreshold = threshold
	}
	if flagSet.Changed(gitFlagName) {
		configuration.IncludeGitInformation = flags.includeGit
	}
	if flagSet.Changed(showSizesFlagName) {
		configuration.ShowFileSizes = flags.showSizes
	}
	if flagSet.Changed(noListFilesFlagName) {
		configuration.ShowRepositoryMap = !flags.disableListFiles
	}
	if flagSet.Changed(promptFlagName) {
		configuration.PromptPath = resolveAgainst(workingDirectory, flags.promptPath)
		configuration.IncludePrompt = true
	}
	if flagSet.Changed(noPromptFlagName) {
		configuration.IncludePrompt = !flags.disablePrompt
	}
	if flagSet.Changed(summaryFlagName) {
		configuration.IncludeSummary = flags.includeSummary
	}
	if flagSet.Changed(copyFlagName) {
		configuration.CopyToClipboard = flags.copyToClipboard
	}
	configuration.Verbose = flags.verbose

	if validationError := configuration.Validate(); validationError != nil {
		return types.Configuration{}, validationError
	}
	return configuration, nil
}

func runAssembly(command *cobra.Command, options Options, configuration types.Configuration) error {
	if configuration.Verbose && options.LogLevel != nil {
		options.LogLevel.SetLevel(zapcore.DebugLevel)
	}
	logger := options.Logger
	workingDirectory := options.WorkingDirectory

	assembler := assembly.NewAssembler(assembly.Dependencies{
		Selector:   selection.NewSelector(workingDirectory, selection.NewGlobExpander(workingDirectory, logger), logger),
		Repository: options.OpenRepository(workingDirectory, logger),
		Summarizer: summary.NewService(logger),
		LoadPrompt: prompt.Load,
		Logger:     logger,
	})

	var documentBuffer bytes.Buffer
	documentWriter := command.OutOrStdout()
	if configuration.CopyToClipboard {
		documentWriter = io.MultiWriter(documentWriter, &documentBuffer)
	}
	report, assembleError := assembler.Assemble(command.Context(), configuration, output.NewMarkdownRenderer(documentWriter))
	if assembleError != nil {
		return assembleError
	}
	if configuration.CopyToClipboard {
		if copyError := options.Copier.Copy(documentBuffer.String()); copyError != nil {
			return fmt.Errorf(clipboardErrorFormat, copyError)
		}
	}
	logger.Debug(runCompletedMessage,
		zap.Int(logFieldFiles, report.Files),
		zap.Int(logFieldTruncated, report.TruncatedFiles),
		zap.Int64(logFieldTotal, report.TotalBytes))
	return nil
}

func (options Options) withDefaults() (Options, error) {
	resolved := options
	if resolved.Logger == nil {
		resolved.Logger = zap.NewNop()
	}
	if resolved.WorkingDirectory == "" {
		workingDirectory, workingDirectoryError := os.Getwd()
		if workingDirectoryError != nil {
			return Options{}, fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
		}
		resolved.WorkingDirectory = workingDirectory
	}
	if resolved.Copier == nil {
		resolved.Copier = clipboard.NewService()
	}
	if resolved.OpenRepository == nil {
		resolved.OpenRepository = func(workingDirectory string, logger *zap.Logger) vcs.Info {
			return vcs.NewGitRepository(workingDirectory, logger)
		}
	}
	return resolved, nil
}

func (options Options) pathExists(path string) bool {
	_, statError := os.Stat(resolveAgainst(options.WorkingDirectory, path))
	return statError == nil
}

func resolveAgainst(workingDirectory string, path string) string {
	if path == "" || filepath.IsAbs(path) || workingDirectory == "" {
		return path
	}
	return filepath.Join(workingDirectory, path)
}
