// Package app composes the film bot from the core runtime and the domain packages.
package app

import (
	"fmt"
	"strings"

	coreconfig "github.com/m3rciful/filmbot/core/config"
)

// DefaultCatalogPath is used when catalog.path is not set.
const DefaultCatalogPath = "data.json"

// CatalogConfig locates the JSON film catalog.
type CatalogConfig struct {
	Path string `yaml:"path" envconfig:"CATALOG_PATH"`
	// CreateIfMissing writes an empty catalog at start-up when none exists.
	CreateIfMissing bool `yaml:"create_if_missing" envconfig:"CATALOG_CREATE_IF_MISSING"`
}

// Config is the bot configuration: the core sections plus the catalog.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Catalog CatalogConfig `yaml:"catalog"`
}

// LoadConfig reads path, overlays the environment and normalizes the result.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the core sections and fills catalog defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	c.Catalog.Path = strings.TrimSpace(c.Catalog.Path)
	if c.Catalog.Path == "" {
		c.Catalog.Path = DefaultCatalogPath
	}
	if strings.HasSuffix(c.Catalog.Path, "/") {
		return fmt.Errorf("catalog.path %q must name a file", c.Catalog.Path)
	}
	return nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}
