package utils

const (
	// ApplicationName is the binary name used in usage text and configuration paths.
	ApplicationName = "mdctx"
	// ConfigFileName is the name of the local configuration file.
	ConfigFileName = ".mdctx.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".mdctx"
	// GlobalConfigFileName is the file inside GlobalConfigDirectoryName holding global configuration.
	GlobalConfigFileName = "config.yaml"
	// ExcludeFileName lists additional exclude substrings, one per line.
	ExcludeFileName = ".mdctxignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"

	// LoggerInitializationFailedMessageFormat reports a logger construction failure.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes fatal application errors.
	ApplicationExecutionFailedMessage = "mdctx failed"
)
