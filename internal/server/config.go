package server

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/anagilla/retail-lakehouse-demo/pkg/warehouse"
)

const (
	defaultAddress         = ":8080"
	defaultShutdownTimeout = 10 * time.Second

	// defaultCatalog names the catalog rendered into physical relation
	// names when the configuration does not set one.
	defaultCatalog = "main"
)

// Config holds the complete service configuration.
type Config struct {
	Server    ServerConfig     `yaml:"server"`
	Warehouse warehouse.Config `yaml:"warehouse"`

	// CatalogPrefix is rendered into the physical relation names of
	// every registered dataset.
	CatalogPrefix string `yaml:"catalog_prefix"`

	// DatasetsFile optionally points at a YAML file of dataset
	// overrides layered over the builtins.
	DatasetsFile string `yaml:"datasets_file"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoadConfig loads configuration from a file.
// The path is expected to come from command line arguments, controlled by the administrator.
func LoadConfig(path string) (*Config, error) {
	// #nosec G304 -- path is from CLI args, controlled by admin
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Apply defaults
	applyDefaults(&cfg)

	return &cfg, nil
}

// expandEnvVars expands ${VAR} patterns in the string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// applyDefaults applies default values to the config.
func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.Warehouse.Driver == "" {
		cfg.Warehouse.Driver = warehouse.DriverTrino
	}
	if cfg.CatalogPrefix == "" {
		cfg.CatalogPrefix = defaultCatalog
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Warehouse.Validate(); err != nil {
		errs = append(errs, err.Error())
	}
	if c.CatalogPrefix == "" {
		errs = append(errs, "catalog_prefix is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}

	return nil
}
