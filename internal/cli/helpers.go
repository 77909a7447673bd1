package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/glorpus-work/updflow/internal/logger"
	"github.com/glorpus-work/updflow/pkg/catalog"
	"github.com/glorpus-work/updflow/pkg/config"
	"github.com/glorpus-work/updflow/pkg/installed"
)

// TabWidth is the padding of tabular output.
const TabWidth = 2

// readConfig loads the configuration file as stored and initializes logging.
// Commands that save the configuration use it so flags are never persisted.
func readConfig() (*config.Config, error) {
	path := getConfigPath()
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, format := cfg.Settings.LogLevel, cfg.Settings.OutputFormat
	if verbose {
		level = "debug"
	}
	if outputFormat != "" {
		format = outputFormat
	}
	logger.InitLogger(level, logger.OutputFormat(format))
	logger.Debug("configuration loaded", logger.Fields{"path": path, "sources": len(cfg.Sources)})
	return cfg, nil
}

// loadConfig loads the configuration with the global flags applied.
func loadConfig() (*config.Config, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	if outputFormat != "" {
		cfg.Settings.OutputFormat = outputFormat
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	if verbose {
		cfg.Settings.LogLevel = "debug"
	}
	return cfg, nil
}

func getConfigPath() string {
	if configPath != "" {
		return configPath
	}

	defaultPath, err := config.GetDefaultConfigPath()
	if err != nil {
		// An empty path makes the load or save report a descriptive error.
		logger.Warn("Failed to get default config path, using empty path", logger.Fields{"error": err})
		return ""
	}
	return defaultPath
}

func openInstalled(cfg *config.Config) (*installed.Store, error) {
	store, err := installed.Open(cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to load installed database: %w", err)
	}
	return store, nil
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Load(ctx, cfg.CatalogSources())
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	return cat, nil
}

func isJSON(cfg *config.Config) bool {
	return cfg.Settings.OutputFormat == "json"
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
