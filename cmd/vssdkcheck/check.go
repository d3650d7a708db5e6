package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mpyw/vssdkanalyzers"
	"github.com/mpyw/vssdkanalyzers/internal/cache"
	"github.com/mpyw/vssdkanalyzers/internal/config"
	"github.com/mpyw/vssdkanalyzers/internal/engine"
	"github.com/mpyw/vssdkanalyzers/internal/metrics"
	"github.com/mpyw/vssdkanalyzers/internal/report"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [paths...]",
	Short: "Analyze C# sources",
	Long:  `Analyze every .cs file under the given files and directories (default: the working directory)`,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "", "output format (text|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max units analyzed in parallel (0=auto)")
	checkCmd.Flags().String("fail-on", "", "lowest severity that fails the run (error|warning|info|hidden|never)")
	checkCmd.Flags().StringSlice("enable", nil, "enable diagnostic ids that are off by default")
	checkCmd.Flags().StringSlice("disable", nil, "disable diagnostic ids")
	checkCmd.Flags().StringArray("reference", nil, "additional metadata types, e.g. Vendor.Base:Vendor.Root")
	checkCmd.Flags().StringSlice("exclude", nil, "additional path patterns to skip")
	checkCmd.Flags().Bool("no-suppress", false, "ignore suppression directives in source")
	checkCmd.Flags().Bool("no-implicit-usings", false, "do not import the namespaces of references into every file")
	checkCmd.Flags().Bool("cache", false, "reuse results of unchanged units across runs")
	checkCmd.Flags().String("cache-dir", "", "cache directory (default: user cache directory)")
	checkCmd.Flags().Bool("metrics", false, "print run metrics to stderr in Prometheus text format")
}

// applyCheckFlags overrides cfg with the flags the user set.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("format") {
		if cfg.Format, err = flags.GetString("format"); err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if flags.Changed("jobs") {
		if cfg.Jobs, err = flags.GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Changed("fail-on") {
		if cfg.FailOn, err = flags.GetString("fail-on"); err != nil {
			return fmt.Errorf("failed to get fail-on flag: %w", err)
		}
	}
	for _, f := range []struct {
		name string
		dst  *[]string
	}{
		{name: "enable", dst: &cfg.Enable},
		{name: "disable", dst: &cfg.Disable},
		{name: "exclude", dst: &cfg.Exclude},
	} {
		vals, err := flags.GetStringSlice(f.name)
		if err != nil {
			return fmt.Errorf("failed to get %s flag: %w", f.name, err)
		}
		*f.dst = append(*f.dst, vals...)
	}
	refs, err := flags.GetStringArray("reference")
	if err != nil {
		return fmt.Errorf("failed to get reference flag: %w", err)
	}
	cfg.References = append(cfg.References, refs...)

	noSuppress, err := flags.GetBool("no-suppress")
	if err != nil {
		return fmt.Errorf("failed to get no-suppress flag: %w", err)
	}
	if noSuppress {
		cfg.Suppress = false
	}
	noImplicit, err := flags.GetBool("no-implicit-usings")
	if err != nil {
		return fmt.Errorf("failed to get no-implicit-usings flag: %w", err)
	}
	if noImplicit {
		cfg.ImplicitUsings = false
	}
	if flags.Changed("cache") {
		if cfg.Cache.Enabled, err = flags.GetBool("cache"); err != nil {
			return fmt.Errorf("failed to get cache flag: %w", err)
		}
	}
	if flags.Changed("cache-dir") {
		if cfg.Cache.Dir, err = flags.GetString("cache-dir"); err != nil {
			return fmt.Errorf("failed to get cache-dir flag: %w", err)
		}
	}

	return cfg.Validate()
}

func openCache(cfg *config.Config) (*cache.Disk, error) {
	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(vssdkanalyzers.Name); err != nil {
			return nil, err
		}
	}

	return cache.OpenDisk(dir)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyCheckFlags(cmd, &cfg); err != nil {
		return err
	}
	log, err := newLogger(&cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	paths := args
	if len(paths) == 0 {
		paths = []string{"."}
	}

	var opts []engine.Option
	if cfg.Cache.Enabled {
		store, err := openCache(&cfg)
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		log.Debug("cache enabled", zap.String("dir", store.Dir()))
		opts = append(opts, engine.WithCache(store))
	}

	printMetrics, err := cmd.Flags().GetBool("metrics")
	if err != nil {
		return fmt.Errorf("failed to get metrics flag: %w", err)
	}
	reg := prometheus.NewRegistry()
	if printMetrics {
		opts = append(opts, engine.WithMetrics(metrics.New(reg)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	out, err := vssdkanalyzers.Analyze(ctx, &cfg, paths, log, opts...)
	if err != nil {
		return err
	}
	for _, se := range out.SyntaxErrors {
		log.Warn("syntax error", zap.Error(se))
	}

	stdout, _ := cmd.OutOrStdout().(*os.File)
	color := cfg.Color == config.ColorOn
	if stdout != nil {
		color = useColor(cfg.Color, stdout)
	}
	err = report.Write(cmd.OutOrStdout(), out.Report(), report.Options{
		Format: report.Format(cfg.Format),
		Color:  color,
		Tool: report.Tool{
			Name:    vssdkanalyzers.Name,
			Version: vssdkanalyzers.Version,
		},
	})
	if err != nil {
		return err
	}

	if printMetrics {
		if err := metrics.WriteText(cmd.ErrOrStderr(), reg); err != nil {
			return err
		}
	}
	log.Info("run finished",
		zap.Int("units", out.Stats.Units),
		zap.Int("diagnostics", len(out.Diagnostics)),
		zap.Int("cache_hits", out.Stats.CacheHits),
		zap.Duration("duration", out.Stats.Duration))

	failed, err := out.Failed(&cfg)
	if err != nil {
		return err
	}
	if failed {
		return errFindings
	}

	return nil
}
