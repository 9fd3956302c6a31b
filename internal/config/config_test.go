package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromFile_YAML(t *testing.T) {
	yamlContent := `
listen_addr: ":9999"
cache_ttl_sec: 3600
cache_namespace: staging
request_timeout_sec: 30
provider_timeout_sec: 8
redis_addr: redis.test:6379
`

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configFile, []byte(yamlContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(configFile)
	if err != nil {
		t.Fatalf("failed to load YAML config: %v", err)
	}

	if cfg.ListenAddr != ":9999" {
		t.Errorf("expected listen_addr ':9999', got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTLSec != 3600 {
		t.Errorf("expected cache_ttl_sec 3600, got %d", cfg.CacheTTLSec)
	}
	if cfg.CacheNamespace != "staging" {
		t.Errorf("expected cache_namespace 'staging', got %s", cfg.CacheNamespace)
	}
	if cfg.ProviderTimeoutSec != 8 {
		t.Errorf("expected provider_timeout_sec 8, got %d", cfg.ProviderTimeoutSec)
	}
	if cfg.RedisAddr != "redis.test:6379" {
		t.Errorf("expected redis_addr, got %s", cfg.RedisAddr)
	}
}

func TestLoadFromFile_JSON(t *testing.T) {
	jsonContent := `{
		"listen_addr": ":8081",
		"cache_ttl_sec": 7200,
		"metrics_addr": ":9191"
	}`

	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.json")
	if err := os.WriteFile(configFile, []byte(jsonContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(configFile)
	if err != nil {
		t.Fatalf("failed to load JSON config: %v", err)
	}

	if cfg.ListenAddr != ":8081" {
		t.Errorf("expected listen_addr ':8081', got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTLSec != 7200 {
		t.Errorf("expected cache_ttl_sec 7200, got %d", cfg.CacheTTLSec)
	}
	if cfg.MetricsAddr != ":9191" {
		t.Errorf("expected metrics_addr ':9191', got %s", cfg.MetricsAddr)
	}
}

func TestLoadFromFile_UnsupportedFormat(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.toml")
	if err := os.WriteFile(configFile, []byte("x = 1"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(configFile); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.ListenAddr != ":8080" {
		t.Errorf("expected default listen_addr ':8080', got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTLSec != 86400 {
		t.Errorf("expected default cache_ttl_sec 86400, got %d", cfg.CacheTTLSec)
	}
	if cfg.CacheNamespace != "reputation-hub" {
		t.Errorf("expected default cache_namespace 'reputation-hub', got %s", cfg.CacheNamespace)
	}
	if cfg.RequestTimeoutSec != 25 {
		t.Errorf("expected default request_timeout_sec 25, got %d", cfg.RequestTimeoutSec)
	}
	if cfg.ProviderTimeoutSec != 10 {
		t.Errorf("expected default provider_timeout_sec 10, got %d", cfg.ProviderTimeoutSec)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected default metrics_addr ':9090', got %s", cfg.MetricsAddr)
	}
}

func TestValidate(t *testing.T) {
	valid := Config{}
	valid.SetDefaults()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"missing listen_addr", func(c *Config) { c.ListenAddr = "" }, true},
		{"zero cache ttl", func(c *Config) { c.CacheTTLSec = 0 }, true},
		{"zero request timeout", func(c *Config) { c.RequestTimeoutSec = 0 }, true},
		{"zero provider timeout", func(c *Config) { c.ProviderTimeoutSec = 0 }, true},
		{"provider budget exceeds request budget", func(c *Config) { c.ProviderTimeoutSec = c.RequestTimeoutSec + 1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	flags := map[string]interface{}{
		"listen_addr":   ":7777",
		"cache_ttl_sec": 120,
		"redis_addr":    "redis.flag:6379",
	}

	cfg.MergeWithFlags(flags)

	if cfg.ListenAddr != ":7777" {
		t.Errorf("expected listen_addr override, got %s", cfg.ListenAddr)
	}
	if cfg.CacheTTLSec != 120 {
		t.Errorf("expected cache_ttl_sec override, got %d", cfg.CacheTTLSec)
	}
	if cfg.RedisAddr != "redis.flag:6379" {
		t.Errorf("expected redis_addr override, got %s", cfg.RedisAddr)
	}
	if cfg.CacheNamespace != "reputation-hub" {
		t.Errorf("untouched fields must keep their value, got %s", cfg.CacheNamespace)
	}
}

func TestLoadFromEnv(t *testing.T) {
	os.Setenv("REDIS_ADDR", "redis.env:6379")
	os.Setenv("LISTEN_ADDR", ":6060")
	os.Setenv("CACHE_NAMESPACE", "env-ns")
	defer os.Unsetenv("REDIS_ADDR")
	defer os.Unsetenv("LISTEN_ADDR")
	defer os.Unsetenv("CACHE_NAMESPACE")

	cfg := &Config{}
	cfg.LoadFromEnv()

	if cfg.RedisAddr != "redis.env:6379" {
		t.Errorf("expected RedisAddr from env, got %s", cfg.RedisAddr)
	}
	if cfg.ListenAddr != ":6060" {
		t.Errorf("expected ListenAddr from env, got %s", cfg.ListenAddr)
	}
	if cfg.CacheNamespace != "env-ns" {
		t.Errorf("expected CacheNamespace from env, got %s", cfg.CacheNamespace)
	}
}
