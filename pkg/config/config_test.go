package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/updflow/pkg/errors"
	"github.com/glorpus-work/updflow/pkg/fsutil"
	"github.com/glorpus-work/updflow/pkg/model"
	"github.com/glorpus-work/updflow/pkg/platform"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.Equal(t, DefaultMaxConcurrent, cfg.Settings.MaxConcurrent)
	assert.NotEmpty(t, cfg.Settings.StateDir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `sources:
  - name: main
    path: /srv/manifests
    priority: 10
  - name: archived
    path: /srv/old.tar.gz
    enabled: false
settings:
  log_level: debug
  max_concurrent: 8
  platform:
    os: windows
    arch: amd64
  installer:
    scope: machine
    require_scope: true
    locales: [en-US, de-DE]
    types: [msi, exe]
    architectures: [x64]
  update_policy: /etc/updflow/policy.tengo`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Len(t, cfg.Sources, 2)
	assert.True(t, cfg.Sources[0].IsEnabled())
	assert.False(t, cfg.Sources[1].IsEnabled())
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, 8, cfg.Settings.MaxConcurrent)
	assert.Equal(t, "text", cfg.Settings.OutputFormat, "defaults are applied")
	assert.Equal(t, "/etc/updflow/policy.tengo", cfg.Settings.UpdatePolicy)

	t.Run("CatalogSources", func(t *testing.T) {
		srcs := cfg.CatalogSources()
		require.Len(t, srcs, 1)
		assert.Equal(t, "main", srcs[0].Name)
		assert.Equal(t, 10, srcs[0].Priority)
	})

	t.Run("ComparatorOptions", func(t *testing.T) {
		opts := cfg.ComparatorOptions()
		assert.Equal(t, platform.Platform{OS: "windows", Arch: "amd64"}, opts.Platform)
		assert.Equal(t, model.ScopeMachine, opts.PreferredScope)
		assert.Equal(t, model.ScopeMachine, opts.RequiredScope)
		assert.Equal(t, []string{"en-US", "de-DE"}, opts.PreferredLocales)
		assert.Empty(t, opts.RequiredLocales)
		assert.Equal(t, []string{"amd64"}, opts.Architectures)
		assert.Equal(t, []model.InstallerType{model.InstallerTypeMSI, model.InstallerTypeExe}, opts.InstallerTypes)
	})
}

func TestLoadConfig_Missing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Settings.LogLevel, cfg.Settings.LogLevel)

	_, err = LoadConfig("")
	assert.ErrorIs(t, err, errors.ErrEmptyConfigPath)
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.Platform.OS = "linux"
	cfg.Settings.Platform.Arch = "arm64"
	require.NoError(t, cfg.AddSource("main", "/srv/manifests", 1))

	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "sources:"))
	assert.NoFileExists(t, configPath+".tmp")

	loaded, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.Settings.LogLevel)
	assert.Equal(t, "arm64", loaded.Settings.Platform.Arch)
	require.NotNil(t, loaded.GetSource("main"))
}

func TestValidateConfig(t *testing.T) {
	withSettings := func(mod func(*Config)) *Config {
		cfg := DefaultConfig()
		mod(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "valid config", config: DefaultConfig()},
		{
			name:    "invalid OS",
			config:  withSettings(func(c *Config) { c.Settings.Platform.OS = "invalid-os" }),
			wantErr: errors.ErrInvalidOSValue,
		},
		{
			name:    "invalid arch",
			config:  withSettings(func(c *Config) { c.Settings.Platform.Arch = "invalid-arch" }),
			wantErr: errors.ErrInvalidArchValue,
		},
		{
			name:    "arch alias accepted",
			config:  withSettings(func(c *Config) { c.Settings.Platform.Arch = "x64" }),
			wantErr: nil,
		},
		{
			name:    "invalid scope",
			config:  withSettings(func(c *Config) { c.Settings.Installer.Scope = "global" }),
			wantErr: errors.ErrInvalidScopeValue,
		},
		{
			name:    "required scope without scope",
			config:  withSettings(func(c *Config) { c.Settings.Installer.RequireScope = true }),
			wantErr: errors.ErrInvalidScopeValue,
		},
		{
			name:    "invalid locale",
			config:  withSettings(func(c *Config) { c.Settings.Installer.Locales = []string{"not a locale!"} }),
			wantErr: errors.ErrInvalidLocale,
		},
		{
			name:    "invalid installer type",
			config:  withSettings(func(c *Config) { c.Settings.Installer.Types = []string{"rpm"} }),
			wantErr: errors.ErrInvalidInstallerType,
		},
		{
			name:    "max concurrent",
			config:  withSettings(func(c *Config) { c.Settings.MaxConcurrent = 0 }),
			wantErr: errors.ErrMaxConcurrentInvalid,
		},
		{
			name:    "output format",
			config:  withSettings(func(c *Config) { c.Settings.OutputFormat = "table" }),
			wantErr: errors.ErrInvalidOutputFormat,
		},
		{
			name:    "log level",
			config:  withSettings(func(c *Config) { c.Settings.LogLevel = "trace" }),
			wantErr: errors.ErrInvalidLogLevel,
		},
		{
			name: "duplicate source",
			config: withSettings(func(c *Config) {
				c.Sources = []*SourceConfig{{Name: "a", Path: "/x"}, {Name: "a", Path: "/y"}}
			}),
			wantErr: errors.ErrSourceExists,
		},
		{
			name:    "source without path",
			config:  withSettings(func(c *Config) { c.Sources = []*SourceConfig{{Name: "a"}} }),
			wantErr: errors.ErrSourcePathEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetDatabasePath(t *testing.T) {
	cfg := &Config{Settings: Settings{StateDir: "/var/lib/updflow"}}
	assert.Equal(t, filepath.Join("/var/lib/updflow", "installed.json"), cfg.GetDatabasePath())

	t.Setenv("XDG_DATA_HOME", "/test/data/home")
	cfg = &Config{}
	assert.Equal(t, filepath.Join("/test/data/home", "updflow", "state", "installed.json"), cfg.GetDatabasePath())
}

func TestSourceManagement(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.AddSource("main", "/srv/manifests", 0))
	assert.ErrorIs(t, cfg.AddSource("main", "/srv/other", 0), errors.ErrSourceExists)

	src := cfg.GetSource("main")
	require.NotNil(t, src)
	assert.True(t, src.IsEnabled())

	assert.True(t, cfg.EnableSource("main", false))
	assert.False(t, cfg.GetSource("main").IsEnabled())
	assert.Empty(t, cfg.CatalogSources())
	assert.False(t, cfg.EnableSource("missing", true))

	assert.True(t, cfg.RemoveSource("main"))
	assert.False(t, cfg.RemoveSource("main"))
	assert.Empty(t, cfg.Sources)
}

func TestGetSetValue(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.SetValue("installer.locales", "en-US, fr-FR"))
	require.NoError(t, cfg.SetValue("installer.require_locale", "true"))
	require.NoError(t, cfg.SetValue("max_concurrent", "2"))

	assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.Settings.Installer.Locales)
	assert.Equal(t, []string{"en-US", "fr-FR"}, cfg.ComparatorOptions().RequiredLocales)

	v, err := cfg.GetValue("installer.locales")
	require.NoError(t, err)
	assert.Equal(t, "en-US,fr-FR", v)
	assert.Equal(t, "2", cfg.ToMap()["max_concurrent"])

	assert.Error(t, cfg.SetValue("max_concurrent", "many"))
	assert.Error(t, cfg.SetValue("nope", "x"))
	_, err = cfg.GetValue("nope")
	assert.Error(t, err)
}
