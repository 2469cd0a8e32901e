package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/vango-dev/bindstore/internal/errors"
)

const (
	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "BINDSTORE_"

	// DefaultAddr is the default inspector listen address.
	DefaultAddr = "localhost:7070"

	// DefaultMetricsPath is the default Prometheus endpoint path.
	DefaultMetricsPath = "/metrics"
)

// Config holds the command settings.
type Config struct {
	// Addr is the inspector listen address.
	Addr string

	// Seed is the YAML seed file loaded at startup. Empty starts an empty store.
	Seed string

	// Watch reloads Seed whenever the file changes.
	Watch bool

	// Strict makes tracked reads of unknown keys fail instead of creating them.
	Strict bool

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFormat is text or json.
	LogFormat string

	// MetricsPath is where Prometheus metrics are served. Empty disables them.
	MetricsPath string
}

// New returns a configuration with defaults.
func New() *Config {
	return &Config{
		Addr:        DefaultAddr,
		LogLevel:    "info",
		LogFormat:   "text",
		MetricsPath: DefaultMetricsPath,
	}
}

// Load returns the defaults overridden by envFile (if it exists) and the
// BINDSTORE_* environment. Variables already set in the environment win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, errors.New("C002").WithDetail(envFile).Wrap(err)
		}
	}

	cfg := New()
	cfg.Addr = getEnvOrDefault("ADDR", cfg.Addr)
	cfg.Seed = getEnvOrDefault("SEED", cfg.Seed)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	if v, ok := os.LookupEnv(EnvPrefix + "METRICS"); ok {
		cfg.MetricsPath = v
	}

	var err error
	if cfg.Watch, err = getEnvBool("WATCH", cfg.Watch); err != nil {
		return nil, err
	}
	if cfg.Strict, err = getEnvBool("STRICT", cfg.Strict); err != nil {
		return nil, err
	}
	return cfg, nil
}

// BindFlags registers flags that override the loaded values.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "inspector listen address")
	fs.StringVar(&c.Seed, "seed", c.Seed, "YAML seed file with initial key values")
	fs.BoolVar(&c.Watch, "watch", c.Watch, "reload the seed file when it changes")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "fail tracked reads of unknown keys")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format (text, json)")
	fs.StringVar(&c.MetricsPath, "metrics", c.MetricsPath, "Prometheus endpoint path, empty to disable")
}

// ApplyFlags copies every flag explicitly set on fs onto c. fs is typically a
// command's flag set bound to a throwaway Config, so that flags override the
// environment even though Load runs after flag parsing.
func (c *Config) ApplyFlags(fs *pflag.FlagSet) error {
	own := pflag.NewFlagSet("config", pflag.ContinueOnError)
	c.BindFlags(own)

	var err error
	fs.Visit(func(f *pflag.Flag) {
		if err != nil || own.Lookup(f.Name) == nil {
			return
		}
		if setErr := own.Set(f.Name, f.Value.String()); setErr != nil {
			err = errors.New("C002").WithDetail("--" + f.Name).Wrap(setErr)
		}
	})
	return err
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("C002").WithDetail("addr must not be empty")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return errors.New("C002").WithDetail(fmt.Sprintf("unknown log format %q", c.LogFormat)).
			WithSuggestion("Use text or json")
	}
	if c.Watch && c.Seed == "" {
		return errors.New("C002").WithDetail("watch requires a seed file").
			WithSuggestion("Pass --seed or set BINDSTORE_SEED")
	}
	if c.MetricsPath != "" && !strings.HasPrefix(c.MetricsPath, "/") {
		return errors.New("C002").WithDetail(fmt.Sprintf("metrics path %q must start with /", c.MetricsPath))
	}
	return nil
}

// Logger builds the slog logger described by the settings.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, errors.New("C002").WithDetail(fmt.Sprintf("unknown log level %q", s)).
			WithSuggestion("Use debug, info, warn or error")
	}
	return level, nil
}

func getEnvOrDefault(name, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + name); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(name string, defaultValue bool) (bool, error) {
	value := os.Getenv(EnvPrefix + name)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.New("C002").WithDetail(fmt.Sprintf("%s%s=%q is not a boolean", EnvPrefix, name, value))
	}
	return b, nil
}
