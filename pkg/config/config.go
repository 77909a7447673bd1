// Package config provides configuration management for updflow.
// It handles loading, validating and saving the manifest sources and the
// settings that shape installer selection. Configuration is stored as YAML.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/glorpus-work/updflow/pkg/catalog"
	"github.com/glorpus-work/updflow/pkg/comparator"
	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/fsutil"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/platform"
)

// Config represents the application configuration.
type Config struct {
	// Manifest sources
	Sources []*SourceConfig `yaml:"sources"`

	// General settings
	Settings Settings `yaml:"settings"`
}

// SourceConfig represents a single manifest source.
type SourceConfig struct {
	Name     string `yaml:"name"`
	Path     string `yaml:"path"`
	Priority int    `yaml:"priority,omitempty"`
	// Enabled defaults to true when omitted.
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the source takes part in searches.
func (s *SourceConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// PlatformConfig represents platform-specific configuration.
type PlatformConfig struct {
	// OS overrides the target operating system (e.g., "windows", "linux", "darwin")
	// If empty, the system will auto-detect the current OS
	OS string `yaml:"os,omitempty"`

	// Arch overrides the target architecture (e.g., "amd64", "arm64", "386")
	// If empty, the system will auto-detect the current architecture
	Arch string `yaml:"arch,omitempty"`
}

// InstallerConfig holds the installer preferences and requirements.
type InstallerConfig struct {
	Scope         string   `yaml:"scope,omitempty"`
	RequireScope  bool     `yaml:"require_scope,omitempty"`
	Locales       []string `yaml:"locales,omitempty"`
	RequireLocale bool     `yaml:"require_locale,omitempty"`
	Types         []string `yaml:"types,omitempty"`
	Architectures []string `yaml:"architectures,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// StateDir holds the installed-package database.
	StateDir string `yaml:"state_dir,omitempty"`

	MaxConcurrent int `yaml:"max_concurrent"`

	Platform  PlatformConfig  `yaml:"platform,omitempty"`
	Installer InstallerConfig `yaml:"installer,omitempty"`

	// UpdatePolicy is the path of a Tengo script consulted before each update.
	UpdatePolicy string `yaml:"update_policy,omitempty"`

	// Output settings
	OutputFormat string `yaml:"output_format"` // text, json
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
}

// Default configuration values.
const (
	// DefaultMaxConcurrent is the default number of packages evaluated in parallel.
	DefaultMaxConcurrent = 4

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2

	databaseFile = "installed.json"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	stateDir, err := fsutil.GetStateDir()
	if err != nil {
		stateDir = filepath.Join(os.TempDir(), fsutil.AppName, "state")
	}

	return &Config{
		Sources: []*SourceConfig{},
		Settings: Settings{
			StateDir:      stateDir,
			MaxConcurrent: DefaultMaxConcurrent,
			OutputFormat:  "text",
			LogLevel:      "info",
			Platform: PlatformConfig{
				OS:   runtime.GOOS,
				Arch: runtime.GOARCH,
			},
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureFileDir(absPath); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	tempPath := absPath + ".tmp"
	file, err := os.OpenFile(tempPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(YAMLIndent)

	if err := encoder.Encode(c); err != nil {
		_ = file.Close()
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigEncode, err.Error())
	}

	_ = encoder.Close()
	_ = file.Close()

	if err := os.Rename(tempPath, absPath); err != nil {
		_ = os.Remove(tempPath)
		return errors.Wrap(errors.ErrConfigFileRename, err.Error())
	}

	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigMarshal, err.Error())
	}
	return data, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	if err := validateSources(c.Sources); err != nil {
		return err
	}
	if err := validatePlatform(c.Settings.Platform); err != nil {
		return err
	}
	if err := validateInstaller(c.Settings.Installer); err != nil {
		return err
	}
	return validateSettings(c.Settings)
}

func validateSources(sources []*SourceConfig) error {
	names := make(map[string]bool)
	for i, src := range sources {
		if src.Name == "" {
			return errors.ErrEmptySourceNameWithIndex(i)
		}
		if src.Path == "" {
			return errors.ErrSourcePathEmptyWithName(src.Name)
		}
		if names[src.Name] {
			return errors.ErrSourceExistsWithName(src.Name)
		}
		names[src.Name] = true
	}
	return nil
}

func validatePlatform(p PlatformConfig) error {
	if p.OS != "" && !slices.Contains(platform.ValidOS(), platform.NormalizeOS(p.OS)) {
		return errors.ErrInvalidOSValueWithDetails(p.OS, platform.ValidOS())
	}
	if p.Arch != "" && !slices.Contains(platform.ValidArch(), platform.NormalizeArch(p.Arch)) {
		return errors.ErrInvalidArchValueWithDetails(p.Arch, platform.ValidArch())
	}
	return nil
}

func validateInstaller(ic InstallerConfig) error {
	if ic.Scope != "" && model.ParseScope(ic.Scope) == model.ScopeUnknown {
		return fmt.Errorf("%w: %s", errors.ErrInvalidScopeValue, ic.Scope)
	}
	if ic.RequireScope && ic.Scope == "" {
		return fmt.Errorf("%w: require_scope needs a scope", errors.ErrInvalidScopeValue)
	}
	for _, l := range ic.Locales {
		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("%w: %s", errors.ErrInvalidLocale, l)
		}
	}
	if ic.RequireLocale && len(ic.Locales) == 0 {
		return fmt.Errorf("%w: require_locale needs at least one locale", errors.ErrInvalidLocale)
	}
	for _, t := range ic.Types {
		if !slices.Contains(model.ValidInstallerTypes(), model.ParseInstallerType(t)) {
			return fmt.Errorf("%w: %s", errors.ErrInvalidInstallerType, t)
		}
	}
	for _, a := range ic.Architectures {
		arch := platform.NormalizeArch(a)
		if arch != platform.AnyArch && !slices.Contains(platform.ValidArch(), arch) {
			return errors.ErrInvalidArchValueWithDetails(a, platform.ValidArch())
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.MaxConcurrent < 1 {
		return errors.ErrMaxConcurrentInvalid
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := fsutil.GetConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "config.yaml"), nil
}

// AddSource adds a source to the configuration.
// Returns an error if a source with the same name already exists.
func (c *Config) AddSource(name, path string, priority int) error {
	if c.GetSource(name) != nil {
		return errors.ErrSourceExistsWithName(name)
	}
	c.Sources = append(c.Sources, &SourceConfig{Name: name, Path: path, Priority: priority})
	return nil
}

// RemoveSource removes a source from the configuration.
func (c *Config) RemoveSource(name string) bool {
	for i, src := range c.Sources {
		if src.Name == name {
			c.Sources = slices.Delete(c.Sources, i, i+1)
			return true
		}
	}
	return false
}

// GetSource gets a source configuration by name.
func (c *Config) GetSource(name string) *SourceConfig {
	for _, src := range c.Sources {
		if src.Name == name {
			return src
		}
	}
	return nil
}

// EnableSource enables or disables a source.
func (c *Config) EnableSource(name string, enabled bool) bool {
	src := c.GetSource(name)
	if src == nil {
		return false
	}
	src.Enabled = &enabled
	return true
}

// CatalogSources returns the enabled sources for catalog.Load.
func (c *Config) CatalogSources() []catalog.Source {
	var out []catalog.Source
	for _, src := range c.Sources {
		if src.IsEnabled() {
			out = append(out, catalog.Source{Name: src.Name, Path: src.Path, Priority: src.Priority})
		}
	}
	return out
}

// ComparatorOptions builds the installer selection options from the settings.
func (c *Config) ComparatorOptions() comparator.Options {
	s := c.Settings
	opts := comparator.Options{
		Platform: platform.Platform{
			OS:   platform.NormalizeOS(s.Platform.OS),
			Arch: platform.NormalizeArch(s.Platform.Arch),
		},
		PreferredScope:   model.ParseScope(s.Installer.Scope),
		PreferredLocales: slices.Clone(s.Installer.Locales),
	}
	if s.Installer.RequireScope {
		opts.RequiredScope = opts.PreferredScope
	}
	if s.Installer.RequireLocale {
		opts.RequiredLocales = slices.Clone(s.Installer.Locales)
	}
	for _, a := range s.Installer.Architectures {
		opts.Architectures = append(opts.Architectures, platform.NormalizeArch(a))
	}
	for _, t := range s.Installer.Types {
		opts.InstallerTypes = append(opts.InstallerTypes, model.ParseInstallerType(t))
	}
	return opts
}

// GetDatabasePath returns the path to the installed packages database.
func (c *Config) GetDatabasePath() string {
	stateDir := c.Settings.StateDir
	if stateDir == "" {
		stateDir = DefaultConfig().Settings.StateDir
	}
	return filepath.Join(stateDir, databaseFile)
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.MaxConcurrent == 0 {
		c.Settings.MaxConcurrent = defaults.Settings.MaxConcurrent
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.StateDir == "" {
		c.Settings.StateDir = defaults.Settings.StateDir
	}
	if c.Settings.Platform.OS == "" {
		c.Settings.Platform.OS = defaults.Settings.Platform.OS
	}
	if c.Settings.Platform.Arch == "" {
		c.Settings.Platform.Arch = defaults.Settings.Platform.Arch
	}
	if c.Sources == nil {
		c.Sources = []*SourceConfig{}
	}
}
