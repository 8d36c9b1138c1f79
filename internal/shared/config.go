package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Email      string            `toml:"email"`
	Toggl      TogglConfig       `toml:"toggl"`
	Clockify   ClockifyConfig    `toml:"clockify"`
	Workspaces []WorkspaceConfig `toml:"workspaces"`
	Database   DatabaseConfig    `toml:"database"`
	Transfer   TransferConfig    `toml:"transfer"`
}

// TogglConfig contains Toggl API credentials.
type TogglConfig struct {
	APIToken string `toml:"api_token"`
	BaseURL  string `toml:"base_url"`
}

// ClockifyConfig contains Clockify API credentials.
type ClockifyConfig struct {
	APIToken string `toml:"api_token"`
	BaseURL  string `toml:"base_url"`
}

// WorkspaceConfig declares one workspace to migrate and the years to pull
// time entries for.
type WorkspaceConfig struct {
	Name  string `toml:"name"`
	Years []int  `toml:"years"`
}

// DatabaseConfig contains settings for the local run-history database.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TransferConfig tunes the pacing of the transfer engine. Zero values fall
// back to the engine defaults (25 entries per batch, 1s between entity
// creations, 5s between batches).
type TransferConfig struct {
	BatchSize         int `toml:"batch_size"`
	EntryPauseSeconds int `toml:"entry_pause_seconds"`
	BatchPauseSeconds int `toml:"batch_pause_seconds"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// Validate checks the parts of the configuration every transfer depends on.
// It runs before any network call so a malformed file never produces a
// partial migration.
func (c *Config) Validate() error {
	if c.Email == "" {
		return fmt.Errorf("%w: email is required (Toggl reports identify the requester by it)", ErrInvalidConfig)
	}
	if c.Toggl.APIToken == "" {
		return fmt.Errorf("%w: toggl.api_token is required", ErrMissingCredentials)
	}
	if c.Clockify.APIToken == "" {
		return fmt.Errorf("%w: clockify.api_token is required", ErrMissingCredentials)
	}
	if len(c.Workspaces) == 0 {
		return fmt.Errorf("%w: at least one [[workspaces]] entry is required", ErrInvalidConfig)
	}
	for i, ws := range c.Workspaces {
		if ws.Name == "" {
			return fmt.Errorf("%w: workspaces[%d] is missing a name", ErrInvalidConfig, i)
		}
		if len(ws.Years) == 0 {
			return fmt.Errorf("%w: workspace %q has no years configured", ErrInvalidConfig, ws.Name)
		}
	}
	return nil
}

// WorkspaceNamed returns the configured workspace entry with the given name.
// Matching is exact and case sensitive.
func (c *Config) WorkspaceNamed(name string) (WorkspaceConfig, bool) {
	for _, ws := range c.Workspaces {
		if ws.Name == name {
			return ws, true
		}
	}
	return WorkspaceConfig{}, false
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
