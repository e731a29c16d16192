package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/tyemirov/mdctx/internal/types"
	"github.com/tyemirov/mdctx/internal/utils"
)

const (
	workingDirectoryErrorFormat = "determine working directory: %w"
	resolvePathErrorFormat      = "resolve configuration path %s: %w"
	statErrorFormat             = "stat configuration %s: %w"
	directoryPathErrorFormat    = "configuration path %s is a directory"
	readErrorFormat             = "read configuration from %s: %w"
	decodeErrorFormat           = "decode configuration from %s: %w"
	sizeKeyErrorFormat          = "configuration key %s: %w"
	maximumSizeKey              = "max_size"
	truncateLargeKey            = "truncate_large"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds the defaults read from configuration files.
// A nil pointer or empty value means the key was not set.
type ApplicationConfiguration struct {
	Include       []string            `mapstructure:"include"`
	Exclude       []string            `mapstructure:"exclude"`
	MaximumSize   string              `mapstructure:"max_size"`
	TruncateLarge string              `mapstructure:"truncate_large"`
	Git           *bool               `mapstructure:"git"`
	ShowSizes     *bool               `mapstructure:"show_sizes"`
	ListFiles     *bool               `mapstructure:"ls_files"`
	Summary       *bool               `mapstructure:"summary"`
	Copy          *bool               `mapstructure:"copy"`
	Prompt        PromptConfiguration `mapstructure:"prompt"`
}

// PromptConfiguration controls the trailing prompt section.
type PromptConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoadApplicationConfiguration loads configuration from the global file and then
// the local (or explicit) file, later sources overriding earlier ones.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(workingDirectoryErrorFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if globalPath := GlobalConfigurationPath(); globalPath != "" {
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		if localConfig.Prompt.Path != "" && !filepath.IsAbs(localConfig.Prompt.Path) {
			localConfig.Prompt.Path = filepath.Join(filepath.Dir(localPath), localConfig.Prompt.Path)
		}
		merged = merged.Merge(localConfig)
	}

	merged.Include = utils.DeduplicatePatterns(utils.TrimPatterns(merged.Include))
	merged.Exclude = utils.DeduplicatePatterns(utils.TrimPatterns(merged.Exclude))

	return merged, nil
}

// GlobalConfigurationPath returns the per-user configuration file path, or an
// empty string when no home directory is known.
func GlobalConfigurationPath() string {
	homeDirectory, err := os.UserHomeDir()
	if err != nil || homeDirectory == "" {
		return ""
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf(resolvePathErrorFormat, explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(statErrorFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(directoryPathErrorFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(readErrorFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(decodeErrorFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if len(override.Include) > 0 {
		result.Include = append([]string{}, override.Include...)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, override.Exclude...)
	}
	if override.MaximumSize != "" {
		result.MaximumSize = override.MaximumSize
	}
	if override.TruncateLarge != "" {
		result.TruncateLarge = override.TruncateLarge
	}
	if override.Git != nil {
		result.Git = cloneBool(override.Git)
	}
	if override.ShowSizes != nil {
		result.ShowSizes = cloneBool(override.ShowSizes)
	}
	if override.ListFiles != nil {
		result.ListFiles = cloneBool(override.ListFiles)
	}
	if override.Summary != nil {
		result.Summary = cloneBool(override.Summary)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	result.Prompt = result.Prompt.merge(override.Prompt)
	return result
}

func (config PromptConfiguration) merge(override PromptConfiguration) PromptConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Path != "" {
		result.Path = override.Path
	}
	return result
}

// Apply overlays the file configuration onto configuration and returns the result.
// Size values are parsed with utils.ParseFileSize.
func (config ApplicationConfiguration) Apply(configuration types.Configuration) (types.Configuration, error) {
	result := configuration
	result.IncludePatterns = append(append([]string{}, configuration.IncludePatterns...), config.Include...)
	result.ExcludePatterns = append(append([]string{}, configuration.ExcludePatterns...), config.Exclude...)
	if config.MaximumSize != "" {
		maximumSize, parseError := utils.ParseFileSize(config.MaximumSize)
		if parseError != nil {
			return configuration, fmt.Errorf(sizeKeyErrorFormat, maximumSizeKey, parseError)
		}
		result.MaximumTotalSize = maximumSize
	}
	if config.TruncateLarge != "" {
		threshold, parseError := utils.ParseFileSize(config.TruncateLarge)
		if parseError != nil {
			return configuration, fmt.Errorf(sizeKeyErrorFormat, truncateLargeKey, parseError)
		}
		result.TruncationThreshold = threshold
	}
	applyBool(&result.IncludeGitInformation, config.Git)
	applyBool(&result.ShowFileSizes, config.ShowSizes)
	applyBool(&result.ShowRepositoryMap, config.ListFiles)
	applyBool(&result.IncludeSummary, config.Summary)
	applyBool(&result.CopyToClipboard, config.Copy)
	applyBool(&result.IncludePrompt, config.Prompt.Enabled)
	if config.Prompt.Path != "" {
		result.PromptPath = config.Prompt.Path
	}
	return result, nil
}

func applyBool(target *bool, value *bool) {
	if value != nil {
		*target = *value
	}
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
