package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/storage"
	"namecheck/internal/version"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage accepted diagnostics",
	Long: `Record the current diagnostics so that 'namecheck check --baseline' only
reports new ones. Baselined diagnostics are matched by rule, symbol kind,
container and name, so moving code does not resurface them.

The baseline lives in .namecheck/namecheck.db.`,
}

var baselineSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Record the current diagnostics",
	Run:   runBaselineSave,
}

var baselineClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every baseline entry",
	Run:   runBaselineClear,
}

var baselineStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show baseline statistics",
	Run:   runBaselineStats,
}

// Baseline flags
var (
	baselineFacts  string
	baselineFormat string
)

func init() {
	rootCmd.AddCommand(baselineCmd)

	baselineCmd.AddCommand(baselineSaveCmd)
	baselineCmd.AddCommand(baselineClearCmd)
	baselineCmd.AddCommand(baselineStatsCmd)

	baselineSaveCmd.Flags().StringVar(&baselineFacts, "facts", "", "Symbol facts; default from config")
	baselineStatsCmd.Flags().StringVar(&baselineFormat, "format", "human", "Output format (human, json)")
}

func runBaselineSave(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	if cmd.Flags().Changed("facts") {
		cfg.Facts.Path = baselineFacts
	}
	// Everything currently reported is recorded, including entries that are
	// already baselined.
	cfg.Baseline.Enabled = false

	logger := newLogger(cfg)
	c := &checker{
		repoRoot: repoRoot,
		cfg:      cfg,
		engine:   mustGetEngine(repoRoot, cfg, logger),
		logger:   logger,
	}

	ctx, cancel := newContext()
	defer cancel()

	res, err := c.analyze(ctx)
	if err != nil {
		exitWithError(err)
	}

	db, err := openBaselineDB(repoRoot, logger)
	if err != nil {
		exitWithError(err)
	}
	defer db.Close()

	run, err := storage.NewBaseline(db).Save(ctx, res.Diagnostics, version.Version)
	if err != nil {
		exitWithError(lerrors.New(lerrors.BaselineUnavailable, "Failed to save baseline", err))
	}
	fmt.Printf("Baselined %d new %s from %d %s (run %s)\n",
		run.Entries, plural(run.Entries, "diagnostic", "diagnostics"),
		len(res.Diagnostics), plural(len(res.Diagnostics), "diagnostic", "diagnostics"),
		run.ID)
}

func runBaselineClear(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	db, err := openBaselineDB(repoRoot, logger)
	if err != nil {
		exitWithError(err)
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	removed, err := storage.NewBaseline(db).Clear(ctx)
	if err != nil {
		exitWithError(lerrors.New(lerrors.BaselineUnavailable, "Failed to clear baseline", err))
	}
	fmt.Printf("Removed %d baseline %s\n", removed, plural(removed, "entry", "entries"))
}

func runBaselineStats(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	db, err := openBaselineDB(repoRoot, logger)
	if err != nil {
		exitWithError(err)
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	stats, err := storage.NewBaseline(db).Stats(ctx)
	if err != nil {
		exitWithError(lerrors.New(lerrors.BaselineUnavailable, "Failed to read baseline", err))
	}

	out, err := FormatResponse(buildBaselineStatsResponse(relPath(repoRoot, db.Path()), stats), OutputFormat(baselineFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(baselineFormat) == FormatJSON {
		fmt.Println()
	}
}

func buildBaselineStatsResponse(dbPath string, stats *storage.Stats) *BaselineStatsCLI {
	resp := &BaselineStatsCLI{
		Database: dbPath,
		Runs:     stats.Runs,
		Entries:  stats.Entries,
		ByRule:   stats.ByRule,
	}
	if stats.LastRun != nil {
		resp.LastRunID = stats.LastRun.ID
		resp.LastRunAt = stats.LastRun.CreatedAt.Format(time.RFC3339)
		resp.ToolVersion = stats.LastRun.ToolVersion
	}
	return resp
}
