// Package cmd implements the ocstats CLI commands.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/ocstats/internal/cli"
	"github.com/theirongolddev/ocstats/internal/cli/theme"
	"github.com/theirongolddev/ocstats/internal/config"
	"github.com/theirongolddev/ocstats/internal/logger"
	"github.com/theirongolddev/ocstats/internal/model"
	"github.com/theirongolddev/ocstats/internal/pipeline"
	"github.com/theirongolddev/ocstats/internal/store"
)

// version is overridden at build time with -ldflags "-X".
var version = "0.0.0"

var (
	flagModel   string
	flagFrom    string
	flagTo      string
	flagDataDir string
	flagNoCache bool
	flagQuiet   bool
	flagVerbose bool
)

// appConfig is the configuration loaded before any command runs.
var appConfig = config.DefaultConfig()

var rootCmd = &cobra.Command{
	Use:               "ocstats",
	Short:             "Analyze OpenCode usage statistics",
	Long:              "Summarize OpenCode token usage and cost by day, week, month, year, or model.\nWith no subcommand, shows today's totals.",
	Version:           version,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: initApp,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

// reportError prints the user-facing error lines to w. With --verbose the
// raw error is also logged.
func reportError(w io.Writer, err error) {
	if flagVerbose {
		logger.Error("command failed", "err", err)
	}
	for _, line := range formatCLIError(err) {
		fmt.Fprintln(w, line)
	}
}

func init() {
	// Assigned here rather than in the literal to break the
	// rootCmd -> runToday -> optionalFlag -> rootCmd initialization cycle.
	rootCmd.RunE = runToday

	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Filter by providerID/modelID")
	rootCmd.PersistentFlags().StringVar(&flagFrom, "from", "", "Start date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVar(&flagTo, "to", "", "End date (YYYY-MM-DD)")
	rootCmd.PersistentFlags().StringVarP(&flagDataDir, "data-dir", "d", "", "OpenCode storage directory (default from config or "+config.EnvDataDir+")")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output and verbose logs")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details to stderr")
}

// initApp sets up logging, the environment, config, and theme.
func initApp(_ *cobra.Command, _ []string) error {
	logger.Setup(os.Stderr, logger.LevelFor(flagQuiet, flagVerbose))

	if path := config.LoadEnv(); path != "" {
		logger.Debug("loaded env file", "path", path)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using default config", "err", err)
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	if !theme.SetActive(cfg.Appearance.Theme) {
		logger.Warn("unknown theme, using default", "theme", cfg.Appearance.Theme, "available", theme.Names())
	}
	return nil
}

// dataDir returns the --data-dir flag, falling back to env, config, and default.
func dataDir() string {
	if flagDataDir != "" {
		return flagDataDir
	}
	return config.DataDir(appConfig)
}

// optionalFlag returns a pointer to value only if the flag was given.
func optionalFlag(name, value string) *string {
	if !rootCmd.PersistentFlags().Changed(name) {
		return nil
	}
	return &value
}

// toFilters builds filter options from the shared flags.
func toFilters() model.FilterOptions {
	filters := model.FilterOptions{
		Model: optionalFlag("model", flagModel),
		From:  optionalFlag("from", flagFrom),
		To:    optionalFlag("to", flagTo),
	}
	if filters.Model == nil && appConfig.General.DefaultModel != "" {
		m := appConfig.General.DefaultModel
		filters.Model = &m
	}
	return filters
}

// runAccumulator validates filters by building the accumulator, streams every
// message into it, and returns its result. newAcc is called again if the
// cached load fails partway and the data is reloaded.
func runAccumulator[R any](ctx context.Context, newAcc func() (pipeline.Accumulator[R], error)) (R, error) {
	var zero R

	acc, err := newAcc()
	if err != nil {
		return zero, err
	}

	visit := func(msg model.Message) { acc.Consume(msg) }
	reset := func() error {
		acc, err = newAcc()
		return err
	}
	if err := loadData(ctx, visit, reset); err != nil {
		return zero, err
	}
	return acc.Result(), nil
}

// loadData is the shared data loading path used by all commands.
// Uses the SQLite cache when enabled and falls back to a full parse,
// calling reset first, if the cache cannot be used.
func loadData(ctx context.Context, visit pipeline.Visitor, reset func() error) error {
	dir := dataDir()
	logger.Debug("loading messages", "data_dir", dir)

	spin := cli.StartSpinner(os.Stderr, "Loading OpenCode usage data...", !flagQuiet && cli.SpinnerEnabled(os.Stderr))
	defer spin.Stop()

	progressFn := func(current, total int) {
		if current%100 == 0 || current == total {
			spin.SetLabel(cli.RenderProgress("Parsing", current, total))
		}
	}

	if !flagNoCache && appConfig.General.UseCache {
		cr, err := loadCached(ctx, dir, visit, progressFn)
		if err == nil {
			spin.Stop()
			reportLoad(&cr.LoadResult)
			if cr.TotalFiles > 0 {
				logger.Info("cache stats",
					"hits", cr.CacheHits,
					"reparsed", cr.Reparsed,
					"pruned", cr.Pruned,
					"hit_rate", cli.FormatPercent(float64(cr.CacheHits)/float64(cr.TotalFiles)),
				)
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logger.Warn("cache unavailable, doing full parse", "err", err)
		if err := reset(); err != nil {
			return err
		}
	}

	result, err := pipeline.Load(ctx, dir, visit, progressFn)
	if err != nil {
		return err
	}
	spin.Stop()
	reportLoad(result)
	return nil
}

func loadCached(ctx context.Context, dir string, visit pipeline.Visitor, progressFn pipeline.ProgressFunc) (*pipeline.CachedLoadResult, error) {
	cache, err := store.Open(pipeline.CachePath())
	if err != nil {
		return nil, err
	}
	defer func() { _ = cache.Close() }()

	return pipeline.LoadWithCache(ctx, dir, cache, visit, progressFn)
}

// reportLoad logs load counters. It runs after the spinner has stopped so
// warnings never interleave with the spinner's redraws.
func reportLoad(r *pipeline.LoadResult) {
	for _, fe := range r.Unreadable {
		logger.Warn("skipped unreadable message file", "path", fe.Path, "err", fe.Err)
	}
	if r.FileErrors > 0 {
		logger.Warn("some message files could not be read", "count", r.FileErrors)
	}
	logger.Info("loaded messages",
		"files", r.TotalFiles,
		"messages", r.Messages,
		"sessions", r.SessionCount,
		"skipped", r.Skipped,
		"duplicates", r.Duplicates,
	)
}

// today returns the local date as YYYY-MM-DD.
func today() string {
	return time.Now().Format("2006-01-02")
}

func runToday(cmd *cobra.Command, _ []string) error {
	filters := toFilters()
	now := today()
	if filters.From == nil {
		filters.From = &now
	}
	if filters.To == nil {
		filters.To = &now
	}

	overall, err := runAccumulator(cmd.Context(), func() (pipeline.Accumulator[model.PeriodStats], error) {
		return pipeline.NewOverallAccumulator(filters)
	})
	if err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), cli.RenderToday(overall))
	return nil
}
