// Package errors holds the sentinel errors shared across updflow and the small
// vocabulary of outcome codes that workflow steps terminate a context with.
package errors

import "fmt"

// Common error types.
var (
	// Config errors.
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename temporary config file")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config to YAML")

	// Settings validation errors.
	ErrInvalidOSValue       = fmt.Errorf("invalid OS value")
	ErrInvalidArchValue     = fmt.Errorf("invalid architecture value")
	ErrInvalidScopeValue    = fmt.Errorf("invalid scope value")
	ErrInvalidInstallerType = fmt.Errorf("invalid installer type")
	ErrInvalidLocale        = fmt.Errorf("invalid locale")
	ErrInvalidOutputFormat  = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel      = fmt.Errorf("invalid log level")
	ErrMaxConcurrentInvalid = fmt.Errorf("max_concurrent must be at least 1")

	// Source errors.
	ErrEmptySourceName = fmt.Errorf("source name cannot be empty")
	ErrSourcePathEmpty = fmt.Errorf("source path cannot be empty")
	ErrSourceExists    = fmt.Errorf("source already exists")
	ErrSourceNotFound  = fmt.Errorf("source not found")

	// Catalog and state errors.
	ErrInvalidPath      = fmt.Errorf("invalid path")
	ErrManifestInvalid  = fmt.Errorf("invalid manifest")
	ErrVersionNotFound  = fmt.Errorf("version not found")
	ErrPackageNotFound  = fmt.Errorf("package not found")
	ErrNotInstalled     = fmt.Errorf("package is not installed")
	ErrNoArgsSpecified  = fmt.Errorf("no package specified and --all flag not used")
	ErrExecutorMissing  = fmt.Errorf("installer executor is not configured")
	ErrPolicyScript     = fmt.Errorf("update policy script error")
	ErrPolicyCompile    = fmt.Errorf("failed to compile update policy")
	ErrBatchHasFailures = fmt.Errorf("one or more packages failed")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidOSValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidOSValueWithDetails(value string, validOS []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidOSValue, value, validOS)
}

// ErrInvalidArchValueWithDetails is a helper to create a wrapped error with the invalid value and valid options.
func ErrInvalidArchValueWithDetails(value string, validArch []string) error {
	return fmt.Errorf("%w: %s. Valid values are: %v", ErrInvalidArchValue, value, validArch)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrSourceExistsWithName is a helper to create a wrapped error with the source name.
func ErrSourceExistsWithName(name string) error {
	return fmt.Errorf("source '%s': %w", name, ErrSourceExists)
}

// ErrSourcePathEmptyWithName is a helper to create a wrapped error with the source name.
func ErrSourcePathEmptyWithName(name string) error {
	return fmt.Errorf("source '%s': %w", name, ErrSourcePathEmpty)
}

// ErrEmptySourceNameWithIndex is a helper to create a wrapped error with the source position.
func ErrEmptySourceNameWithIndex(i int) error {
	return fmt.Errorf("source %d: %w", i, ErrEmptySourceName)
}
