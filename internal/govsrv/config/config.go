package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	connector "github.com/syncflow/syncflow/internal/connector/config"
)

// ConfigFormatVersion is the current version of the configuration file format
const ConfigFormatVersion = "0.1.0"

// WarehouseConfig holds warehouse related configuration
type WarehouseConfig struct {
	DSN string `toml:"dsn" validate:"required"` // Postgres connection string
}

// SyncConfig holds sync scheduling configuration
type SyncConfig struct {
	Interval         string `toml:"interval"`          // Sync cadence, e.g. "15m"
	RetryAttempts    uint   `toml:"retry_attempts"`    // Catalog API retry budget
	TableConcurrency int    `toml:"table_concurrency"` // Parallel table detail fetches per schema
}

// GetInterval returns the sync interval as a time.Duration. Zero means the
// config did not set one and the runner default applies.
func (s *SyncConfig) GetInterval() (time.Duration, error) {
	if s.Interval == "" {
		return 0, nil
	}
	return ParseInterval(s.Interval)
}

// ConnectorConfig holds the source workspace settings
type ConnectorConfig struct {
	WorkspaceURL  string `toml:"workspace_url" validate:"required,url"` // Workspace base URL
	AccessToken   string `toml:"access_token" validate:"required"`      // Bearer token
	CatalogFilter string `toml:"catalog_filter"`                        // Comma-separated allow-list
}

// Settings converts the TOML section into connector settings.
func (c *ConnectorConfig) Settings() connector.Settings {
	return connector.Settings{
		WorkspaceURL:  c.WorkspaceURL,
		AccessToken:   c.AccessToken,
		CatalogFilter: c.CatalogFilter,
	}
}

// ConfigParam holds all configuration parameters for the syncflow daemon
type ConfigParam struct {
	FormatVersion string `toml:"format_version" validate:"required"` // Version of this configuration file format

	ServerHostName string `toml:"server_hostname"`                         // Hostname for the server
	ServerPort     string `toml:"server_port" validate:"required,numeric"` // Port for the server
	HandleCORS     bool   `toml:"handle_cors"`                             // Whether to handle CORS

	Warehouse WarehouseConfig `toml:"warehouse"`
	Sync      SyncConfig      `toml:"sync"`
	Connector ConnectorConfig `toml:"connector"`
}

var cfg *ConfigParam
var validate = validator.New()

// Config returns the current configuration
func Config() *ConfigParam {
	return cfg
}

// ParseInterval reads durations in Go syntax ("90s", "15m", "1h") plus a day
// unit ("1d") for long cadences.
func ParseInterval(input string) (time.Duration, error) {
	if d, err := time.ParseDuration(input); err == nil {
		return d, nil
	}
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid duration format: %q", input)
	}
	unit := input[len(input)-1:]
	value, err := strconv.Atoi(input[:len(input)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}
	if unit != "d" {
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}
	return time.Duration(value) * 24 * time.Hour, nil
}

// ValidateConfig checks if all required configuration values are present and valid
func ValidateConfig(cfg *ConfigParam) error {
	if cfg.FormatVersion != ConfigFormatVersion {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	if err := validate.Struct(cfg); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			e := ve[0]
			return fmt.Errorf("invalid %s: failed %s check", e.Namespace(), e.Tag())
		}
		return err
	}
	if _, err := cfg.Sync.GetInterval(); err != nil {
		return fmt.Errorf("invalid sync.interval: %v", err)
	}
	if cfg.Sync.TableConcurrency < 0 {
		return fmt.Errorf("sync.table_concurrency must not be negative")
	}
	if err := cfg.Connector.Settings().Validate(); err != nil {
		return fmt.Errorf("invalid connector settings: %v", err)
	}
	return nil
}

// LoadConfig loads configuration from a file
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}
	c := &ConfigParam{}
	if _, err := toml.Decode(string(content), c); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}
	if err := ValidateConfig(c); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}
	cfg = c
	return nil
}

// TestInit installs a minimal configuration for tests.
func TestInit() {
	cfg = &ConfigParam{
		FormatVersion: ConfigFormatVersion,
		ServerPort:    "8080",
		HandleCORS:    true,
		Warehouse:     WarehouseConfig{DSN: "postgres://postgres@localhost:5432/syncflow_test"},
		Connector: ConnectorConfig{
			WorkspaceURL: "https://dbc-test.cloud.example.com",
			AccessToken:  "test-token",
		},
	}
}
