package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr = %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.MetricsPath != DefaultMetricsPath {
		t.Errorf("MetricsPath = %q, want %q", cfg.MetricsPath, DefaultMetricsPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("BINDSTORE_ADDR", ":9000")
	t.Setenv("BINDSTORE_STRICT", "true")
	t.Setenv("BINDSTORE_METRICS", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("Addr = %q, want :9000", cfg.Addr)
	}
	if !cfg.Strict {
		t.Error("Expected Strict from environment")
	}
	if cfg.MetricsPath != "" {
		t.Errorf("Expected metrics disabled by empty variable, got %q", cfg.MetricsPath)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "BINDSTORE_SEED=seed.yaml\nBINDSTORE_LOG_LEVEL=debug\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	// godotenv sets variables process-wide; register them for cleanup.
	t.Setenv("BINDSTORE_SEED", "")
	os.Unsetenv("BINDSTORE_SEED")
	t.Setenv("BINDSTORE_LOG_LEVEL", "warn")

	cfg, err := Load(envFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Seed != "seed.yaml" {
		t.Errorf("Seed = %q, want seed.yaml", cfg.Seed)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Existing environment should win over .env, got LogLevel %q", cfg.LogLevel)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("Missing .env should be ignored, got %v", err)
	}
}

func TestLoadInvalidBool(t *testing.T) {
	t.Setenv("BINDSTORE_WATCH", "sometimes")
	_, err := Load("")
	if err == nil || !strings.Contains(err.Error(), "C002") {
		t.Errorf("Expected C002 error, got %v", err)
	}
}

func TestBindFlags(t *testing.T) {
	cfg := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.BindFlags(fs)

	if err := fs.Parse([]string{"--addr", ":8081", "--seed", "s.yaml", "--watch", "--log-format", "json"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8081" || cfg.Seed != "s.yaml" || !cfg.Watch || cfg.LogFormat != "json" {
		t.Errorf("Flags not applied: %+v", cfg)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Unset flag should keep loaded value, got %q", cfg.LogLevel)
	}
}

func TestApplyFlags(t *testing.T) {
	t.Setenv("BINDSTORE_ADDR", ":9000")
	t.Setenv("BINDSTORE_LOG_LEVEL", "debug")

	flags := New()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.BindFlags(fs)
	if err := fs.Parse([]string{"--addr", ":8081"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8081" {
		t.Errorf("Flag should override environment, got %q", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Unset flag must not reset environment value, got %q", cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"watch without seed", func(c *Config) { c.Watch = true }},
		{"relative metrics path", func(c *Config) { c.MetricsPath = "metrics" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.LogFormat = "json"
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger, err := cfg.Logger(&buf)
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "key", "count")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("Expected JSON output, got %q", out)
	}
}
