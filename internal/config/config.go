// Package config provides configuration management for calc.
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the calc configuration.
type Config struct {
	Service ServiceConfig `yaml:"service" toml:"service"`
	API     APIConfig     `yaml:"api" toml:"api"`
	MCP     MCPConfig     `yaml:"mcp" toml:"mcp"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Display DisplayConfig `yaml:"display" toml:"display"`
}

// ServiceConfig contains service-level settings.
type ServiceConfig struct {
	Host    string `yaml:"host" toml:"host"`
	Port    int    `yaml:"port" toml:"port"`
	DataDir string `yaml:"data_dir" toml:"data_dir"`
}

// APIConfig contains API settings.
type APIConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	APIKey  string `yaml:"api_key" toml:"api_key"`
}

// MCPConfig contains MCP server settings.
type MCPConfig struct {
	// Enabled mounts the streamable HTTP MCP endpoint on the API server.
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

// LoggingConfig contains log writer settings.
type LoggingConfig struct {
	Level      string   `yaml:"level" toml:"level"`
	Format     string   `yaml:"format" toml:"format"` // json or text
	Output     []string `yaml:"output" toml:"output"` // stdout, file, both
	TimeFormat string   `yaml:"time_format" toml:"time_format"`
	MaxSizeMB  int      `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int      `yaml:"max_backups" toml:"max_backups"`
}

// DisplayConfig contains calculator display settings.
type DisplayConfig struct {
	// MaxDigits caps digits per operand; 0 means unlimited.
	MaxDigits int `yaml:"max_digits" toml:"max_digits"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Host:    "127.0.0.1",
			Port:    8421,
			DataDir: DefaultDataDir(),
		},
		API: APIConfig{
			Enabled: true,
			APIKey:  "", // Empty = no auth for localhost
		},
		MCP: MCPConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
		Display: DisplayConfig{
			MaxDigits: 0,
		},
	}
}

// DefaultDataDir returns the default data directory based on OS.
func DefaultDataDir() string {
	switch runtime.GOOS {
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "calc")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "AppData", "Roaming", "calc")
	case "darwin":
		home, _ := os.UserHomeDir()
		return filepath.Join(home, "Library", "Application Support", "calc")
	default: // linux and others
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			return filepath.Join(xdgData, "calc")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".calc")
	}
}

// DefaultConfigPath returns the default config file path.
// CALC_CONFIG overrides it.
func DefaultConfigPath() string {
	if p := os.Getenv("CALC_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(DefaultDataDir(), "config.yaml")
}

// isTOML reports whether path should be read and written as TOML.
func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Load loads configuration from a YAML or TOML file, chosen by extension.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	if isTOML(path) {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	} else if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if strings.HasPrefix(cfg.Service.DataDir, "~/") {
		home, _ := os.UserHomeDir()
		cfg.Service.DataDir = filepath.Join(home, cfg.Service.DataDir[2:])
	}

	return cfg, nil
}

// Save saves the configuration to a file in the format its extension names.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Address returns the full address string for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.Port)
}

// LogPath returns the path to the service log file.
func (c *Config) LogPath() string {
	return filepath.Join(c.Service.DataDir, "logs", "calc.log")
}

// PIDPath returns the path to the service PID file.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Service.DataDir, "calc.pid")
}

// EnsureDirectories creates all necessary directories.
func (c *Config) EnsureDirectories() error {
	dirs := []string{
		c.Service.DataDir,
		filepath.Dir(c.LogPath()),
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	return nil
}
