package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys lists the settings reachable through GetValue and SetValue.
var Keys = []string{
	"state_dir",
	"log_level",
	"output_format",
	"max_concurrent",
	"update_policy",
	"platform.os",
	"platform.arch",
	"installer.scope",
	"installer.require_scope",
	"installer.locales",
	"installer.require_locale",
	"installer.types",
	"installer.architectures",
}

// SetValue sets a configuration value by key. List values are comma separated.
// The result is not validated; call Validate afterwards.
func (c *Config) SetValue(key, value string) error {
	s := &c.Settings
	switch key {
	case "state_dir":
		s.StateDir = value
	case "log_level":
		s.LogLevel = value
	case "output_format":
		s.OutputFormat = value
	case "max_concurrent":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		s.MaxConcurrent = n
	case "update_policy":
		s.UpdatePolicy = value
	case "platform.os":
		s.Platform.OS = value
	case "platform.arch":
		s.Platform.Arch = value
	case "installer.scope":
		s.Installer.Scope = value
	case "installer.require_scope":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.Installer.RequireScope = b
	case "installer.locales":
		s.Installer.Locales = splitList(value)
	case "installer.require_locale":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		s.Installer.RequireLocale = b
	case "installer.types":
		s.Installer.Types = splitList(value)
	case "installer.architectures":
		s.Installer.Architectures = splitList(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// GetValue returns the value of key as a string.
func (c *Config) GetValue(key string) (string, error) {
	s := c.Settings
	switch key {
	case "state_dir":
		return s.StateDir, nil
	case "log_level":
		return s.LogLevel, nil
	case "output_format":
		return s.OutputFormat, nil
	case "max_concurrent":
		return strconv.Itoa(s.MaxConcurrent), nil
	case "update_policy":
		return s.UpdatePolicy, nil
	case "platform.os":
		return s.Platform.OS, nil
	case "platform.arch":
		return s.Platform.Arch, nil
	case "installer.scope":
		return s.Installer.Scope, nil
	case "installer.require_scope":
		return strconv.FormatBool(s.Installer.RequireScope), nil
	case "installer.locales":
		return strings.Join(s.Installer.Locales, ","), nil
	case "installer.require_locale":
		return strconv.FormatBool(s.Installer.RequireLocale), nil
	case "installer.types":
		return strings.Join(s.Installer.Types, ","), nil
	case "installer.architectures":
		return strings.Join(s.Installer.Architectures, ","), nil
	default:
		return "", fmt.Errorf("unknown configuration key: %s", key)
	}
}

// ToMap returns every setting keyed by its dotted name.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string, len(Keys))
	for _, k := range Keys {
		v, _ := c.GetValue(k)
		result[k] = v
	}
	return result
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
