package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents the translator configuration
type Config struct {
	// Translation settings
	Translation struct {
		StackSize int `toml:"stack_size"`
		ScanTime  int `toml:"scan_time"`
	} `toml:"translation"`

	// Output settings
	Output struct {
		RungComments bool `toml:"rung_comments"`
		EmitScanLoop bool `toml:"emit_scan_loop"`
	} `toml:"output"`

	// Warning settings
	Warnings struct {
		UnsupportedInstructions bool `toml:"unsupported_instructions"`
		SkippedTags             bool `toml:"skipped_tags"`
	} `toml:"warnings"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Translation defaults
	cfg.Translation.StackSize = 1000
	cfg.Translation.ScanTime = 100 // milliseconds

	// Output defaults
	cfg.Output.RungComments = true
	cfg.Output.EmitScanLoop = true

	// Warning defaults
	cfg.Warnings.UnsupportedInstructions = true
	cfg.Warnings.SkippedTags = true

	return cfg
}

// GetConfigPath returns the platform-specific config file path
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		// Windows: %APPDATA%\l5x2c\config.toml
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "l5x2c")

	case "darwin", "linux":
		// macOS/Linux: ~/.config/l5x2c/config.toml
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to current directory
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "l5x2c")

	default:
		// Unknown platform: use current directory
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from the specified file
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read and parse config file
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to the specified file
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close config file: %w", closeErr)
		}
	}()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
