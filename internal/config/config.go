package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the complete configuration for the reputation hub service.
type Config struct {
	// HTTP
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	// Cache
	CacheTTLSec    int    `yaml:"cache_ttl_sec" json:"cache_ttl_sec"`
	CacheNamespace string `yaml:"cache_namespace" json:"cache_namespace"`
	CacheSize      int    `yaml:"cache_size" json:"cache_size"`

	// Lookup budgets
	RequestTimeoutSec  int     `yaml:"request_timeout_sec" json:"request_timeout_sec"`
	ProviderTimeoutSec int     `yaml:"provider_timeout_sec" json:"provider_timeout_sec"`
	ProviderRate       float64 `yaml:"provider_rate" json:"provider_rate"`
	ProviderBurst      int     `yaml:"provider_burst" json:"provider_burst"`

	// Observability
	MetricsAddr  string `yaml:"metrics_addr" json:"metrics_addr"`
	OTELEndpoint string `yaml:"otel_endpoint" json:"otel_endpoint"`
	OTELInsecure bool   `yaml:"otel_insecure" json:"otel_insecure"`
	OTELService  string `yaml:"otel_service" json:"otel_service"`

	// Redis
	RedisAddr string `yaml:"redis_addr" json:"redis_addr"`
}

// SetDefaults fills in defaults for unset fields.
func (c *Config) SetDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.CacheTTLSec == 0 {
		c.CacheTTLSec = 86400
	}
	if c.CacheNamespace == "" {
		c.CacheNamespace = "reputation-hub"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 8192
	}
	if c.RequestTimeoutSec == 0 {
		c.RequestTimeoutSec = 25
	}
	if c.ProviderTimeoutSec == 0 {
		c.ProviderTimeoutSec = 10
	}
	if c.ProviderRate == 0 {
		c.ProviderRate = 1.0
	}
	if c.ProviderBurst == 0 {
		c.ProviderBurst = 3
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = ":9090"
	}
	if c.OTELService == "" {
		c.OTELService = "repuhub"
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is required")
	}
	if c.CacheTTLSec < 1 {
		return fmt.Errorf("cache_ttl_sec must be at least 1")
	}
	if c.RequestTimeoutSec < 1 {
		return fmt.Errorf("request_timeout_sec must be at least 1")
	}
	if c.ProviderTimeoutSec < 1 {
		return fmt.Errorf("provider_timeout_sec must be at least 1")
	}
	if c.ProviderTimeoutSec > c.RequestTimeoutSec {
		return fmt.Errorf("provider_timeout_sec must not exceed request_timeout_sec")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (use .yaml, .yml, or .json)", ext)
	}

	config.SetDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// MergeWithFlags merges command-line flags into the configuration.
// Command-line flags take precedence.
func (c *Config) MergeWithFlags(flags map[string]interface{}) {
	if v, ok := flags["listen_addr"].(string); ok && v != "" {
		c.ListenAddr = v
	}
	if v, ok := flags["cache_ttl_sec"].(int); ok && v > 0 {
		c.CacheTTLSec = v
	}
	if v, ok := flags["cache_namespace"].(string); ok && v != "" {
		c.CacheNamespace = v
	}
	if v, ok := flags["request_timeout_sec"].(int); ok && v > 0 {
		c.RequestTimeoutSec = v
	}
	if v, ok := flags["provider_timeout_sec"].(int); ok && v > 0 {
		c.ProviderTimeoutSec = v
	}
	if v, ok := flags["metrics_addr"].(string); ok && v != "" {
		c.MetricsAddr = v
	}
	if v, ok := flags["otel_endpoint"].(string); ok && v != "" {
		c.OTELEndpoint = v
	}
	if v, ok := flags["otel_insecure"].(bool); ok {
		c.OTELInsecure = v
	}
	if v, ok := flags["otel_service"].(string); ok && v != "" {
		c.OTELService = v
	}
	if v, ok := flags["redis_addr"].(string); ok && v != "" {
		c.RedisAddr = v
	}
}

// LoadFromEnv loads configuration from environment variables.
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("CACHE_NAMESPACE"); v != "" {
		c.CacheNamespace = v
	}
}
