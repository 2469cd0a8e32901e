package main

import (
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/vango-dev/bindstore/internal/config"
	"github.com/vango-dev/bindstore/internal/seed"
	"github.com/vango-dev/bindstore/pkg/store"
)

// openStore creates the store described by cfg, seeded from cfg.Seed.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.Store, error) {
	var values map[string]any
	if cfg.Seed != "" {
		var err error
		if values, err = seed.Load(cfg.Seed); err != nil {
			return nil, err
		}
	}

	opts := []store.Option{store.WithLogger(logger)}
	if cfg.Strict {
		opts = append(opts, store.WithStrictKeys())
	}
	return store.New(values, opts...), nil
}

// loadConfig resolves the settings: env file, environment, then the flags
// explicitly set on the command.
func loadConfig(envFile string, fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(fs); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
