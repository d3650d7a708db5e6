package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers/internal/config"
	"github.com/mpyw/vssdkanalyzers/internal/logger"
)

// loadConfig reads the configuration named by --config, or the nearest
// one above the working directory, and applies the global flags over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return config.Config{}, err
		}
		found, ok, err := config.Find(wd)
		if err != nil {
			return config.Config{}, err
		}
		if ok {
			path = found
		}
	}

	cfg := config.Default()
	if path != "" {
		if cfg, err = config.Load(path); err != nil {
			return config.Config{}, err
		}
	}

	for _, f := range []struct {
		name string
		dst  *string
	}{
		{name: "color", dst: &cfg.Color},
		{name: "log-level", dst: &cfg.Log.Level},
		{name: "log-format", dst: &cfg.Log.Format},
	} {
		if !flags.Changed(f.name) {
			continue
		}
		if *f.dst, err = flags.GetString(f.name); err != nil {
			return config.Config{}, fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
	}

	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
}
