package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.SeedAddrs) != 6 {
		t.Errorf("expected 6 seed addrs, got %d", len(cfg.SeedAddrs))
	}
	if cfg.SeedAddrs[0] != "127.0.0.1:6000" {
		t.Errorf("expected first seed 127.0.0.1:6000, got %s", cfg.SeedAddrs[0])
	}
	if cfg.KeyPrefix != "benchmark:test:" {
		t.Errorf("expected prefix 'benchmark:test:', got '%s'", cfg.KeyPrefix)
	}
	if cfg.RetryDeadline != 30*time.Second {
		t.Errorf("expected 30s retry deadline, got %v", cfg.RetryDeadline)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestLoadFileYAML(t *testing.T) {
	content := `
cluster:
  seed_addrs:
    - "10.0.0.1:7000"
    - "10.0.0.2:7000"
  pool_size: 50
  socket_timeout: 2s
retry:
  initial_backoff: 500ms
  max_backoff: 5s
  deadline: 15s
benchmark:
  small_ops: 200
  medium_ops: 1000
  batch_size: 50
  payload_mb: 10
  chunks: 2
  key_prefix: "bench:alt:"
  key_ttl: 1m
  show_progress: false
output:
  dir: out
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	fileConfig, err := LoadFile(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cfg, err := fileConfig.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to apply config: %v", err)
	}

	if len(cfg.SeedAddrs) != 2 {
		t.Errorf("expected 2 seed addrs, got %d", len(cfg.SeedAddrs))
	}
	if cfg.PoolSize != 50 {
		t.Errorf("expected pool size 50, got %d", cfg.PoolSize)
	}
	if cfg.SocketTimeout != 2*time.Second {
		t.Errorf("expected 2s socket timeout, got %v", cfg.SocketTimeout)
	}
	if cfg.RetryInitialBackoff != 500*time.Millisecond {
		t.Errorf("expected 500ms initial backoff, got %v", cfg.RetryInitialBackoff)
	}
	if cfg.RetryDeadline != 15*time.Second {
		t.Errorf("expected 15s deadline, got %v", cfg.RetryDeadline)
	}
	if cfg.KeyPrefix != "bench:alt:" {
		t.Errorf("expected prefix 'bench:alt:', got '%s'", cfg.KeyPrefix)
	}
	if cfg.ShowProgress {
		t.Error("expected show_progress to be false")
	}
	if cfg.OutputDir != "out" {
		t.Errorf("expected output dir 'out', got '%s'", cfg.OutputDir)
	}
}

func TestApplyPartialOverride(t *testing.T) {
	fileConfig := &FileConfig{}
	fileConfig.Benchmark.SmallOps = 42

	cfg, err := fileConfig.Apply(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to apply config: %v", err)
	}

	if cfg.SmallOps != 42 {
		t.Errorf("expected small_ops 42, got %d", cfg.SmallOps)
	}
	// 未指定の項目はデフォルトのまま
	if cfg.MediumOps != 5000 {
		t.Errorf("expected medium_ops 5000, got %d", cfg.MediumOps)
	}
	if !cfg.ShowProgress {
		t.Error("expected show_progress to keep default true")
	}
}

func TestApplyInvalidDuration(t *testing.T) {
	fileConfig := &FileConfig{}
	fileConfig.Retry.Deadline = "not-a-duration"

	if _, err := fileConfig.Apply(DefaultConfig()); err == nil {
		t.Error("expected error for invalid duration")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty seeds", func(c *Config) { c.SeedAddrs = nil }},
		{"zero pool", func(c *Config) { c.PoolSize = 0 }},
		{"zero ops", func(c *Config) { c.SmallOps = 0 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero payload", func(c *Config) { c.PayloadMB = 0 }},
		{"zero chunks", func(c *Config) { c.Chunks = 0 }},
		{"empty prefix", func(c *Config) { c.KeyPrefix = "" }},
		{"zero deadline", func(c *Config) { c.RetryDeadline = 0 }},
		{"max below initial backoff", func(c *Config) { c.RetryMaxBackoff = c.RetryInitialBackoff / 2 }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := DefaultConfig()
			c.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working dir: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir: %v", err)
	}
	defer func() { _ = os.Chdir(wd) }()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected defaults when no config file, got %v", err)
	}
	if cfg.SmallOps != 1000 {
		t.Errorf("expected default small_ops 1000, got %d", cfg.SmallOps)
	}
}
