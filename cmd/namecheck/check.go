package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"namecheck/internal/config"
	"namecheck/internal/engine"
	lerrors "namecheck/internal/errors"
	"namecheck/internal/output"
	"namecheck/internal/rules"
	"namecheck/internal/storage"
	"namecheck/internal/version"
	"namecheck/internal/watcher"
)

var (
	checkFormat      string
	checkOutput      string
	checkFacts       string
	checkFactsFormat string
	checkBaseline    bool
	checkWatch       bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check symbol names against the naming rules",
	Long: `Load symbol facts, evaluate every enabled naming rule and report violations
with collision-safe rename proposals.

Exit status is 1 when violations remain, 2 on a configuration error and 3 when
the facts or the baseline cannot be read.

Examples:
  namecheck check
  namecheck check --facts build/index.scip
  namecheck check --facts src/ --format sarif --output reports/naming.sarif.gz
  namecheck check --baseline
  namecheck check --watch`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "Output format (human, json, sarif); default from config")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "Write the report to a file (.gz and .zst are compressed)")
	checkCmd.Flags().StringVar(&checkFacts, "facts", "", "Symbol facts: .json/.yaml file, .scip index, or C# source directory")
	checkCmd.Flags().StringVar(&checkFactsFormat, "facts-format", "", "Facts format (auto, json, yaml, scip, csharp)")
	checkCmd.Flags().BoolVar(&checkBaseline, "baseline", false, "Hide diagnostics recorded by 'namecheck baseline save'")
	checkCmd.Flags().BoolVarP(&checkWatch, "watch", "w", false, "Re-check whenever the facts change")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	applyCheckFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		exitWithError(err)
	}

	logger := newLogger(cfg)
	c := &checker{
		repoRoot: repoRoot,
		cfg:      cfg,
		engine:   mustGetEngine(repoRoot, cfg, logger),
		logger:   logger,
	}

	ctx, cancel := newContext()
	defer cancel()

	if checkWatch {
		if err := c.watch(ctx); err != nil {
			exitWithError(err)
		}
		return
	}

	code, err := c.run(ctx, nil)
	if err != nil {
		exitWithError(err)
	}
	cancel()
	os.Exit(code)
}

// applyCheckFlags lets explicit flags override the configuration.
func applyCheckFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = checkFormat
	}
	if flags.Changed("output") {
		cfg.Output.Path = checkOutput
	}
	if flags.Changed("facts") {
		cfg.Facts.Path = checkFacts
	}
	if flags.Changed("facts-format") {
		cfg.Facts.Format = checkFactsFormat
	}
	if flags.Changed("baseline") {
		cfg.Baseline.Enabled = checkBaseline
	}
}

// checker runs check passes for one configuration.
type checker struct {
	repoRoot string
	cfg      *config.Config
	engine   *engine.Engine
	logger   *slog.Logger
}

// run performs one pass and writes the report to w, or to the configured
// output when w is nil. It returns the exit code for the pass.
func (c *checker) run(ctx context.Context, w io.Writer) (int, error) {
	start := time.Now()

	res, err := c.analyze(ctx)
	if err != nil {
		return exitFailure, err
	}
	resp := buildCheckResponse(res, time.Since(start))

	if err := c.report(resp, w); err != nil {
		return exitFailure, err
	}
	if res.HasDiagnostics() {
		return exitViolations, nil
	}
	return exitOK, nil
}

func (c *checker) analyze(ctx context.Context) (*engine.Result, error) {
	symbols, err := loadSymbols(ctx, c.repoRoot, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	res, err := c.engine.Analyze(ctx, symbols)
	if err != nil {
		return nil, err
	}
	if c.cfg.Baseline.Enabled {
		if err := c.hideBaselined(ctx, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (c *checker) hideBaselined(ctx context.Context, res *engine.Result) error {
	db, err := openBaselineDB(c.repoRoot, c.logger)
	if err != nil {
		return err
	}
	defer db.Close()

	known, err := storage.NewBaseline(db).Fingerprints(ctx)
	if err != nil {
		return lerrors.New(lerrors.BaselineUnavailable, "Failed to read baseline", err)
	}
	hidden := res.Hide(func(d rules.Diagnostic) bool {
		_, ok := known[storage.Fingerprint(d)]
		return ok
	})
	c.logger.Debug("Applied baseline", "hidden", hidden, "entries", len(known))
	return nil
}

func (c *checker) report(resp *CheckResponseCLI, w io.Writer) error {
	var (
		text string
		err  error
	)
	switch OutputFormat(c.cfg.Output.Format) {
	case FormatSARIF:
		text, err = FormatCheckAsSARIF(resp, c.engine.Registry(), c.repoRoot)
	default:
		text, err = FormatResponse(resp, OutputFormat(c.cfg.Output.Format))
	}
	if err != nil {
		return err
	}

	if w != nil {
		_, err = fmt.Fprintln(w, text)
		return err
	}

	path := c.cfg.Output.Path
	if path != "" && path != "-" {
		path = config.Resolve(c.repoRoot, path)
	}
	out, err := output.OpenWriter(path)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(out, text); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if path != "" && path != "-" {
		c.logger.Info("Report written", "path", path, "format", c.cfg.Output.Format)
	}
	return nil
}

// watch checks once, then again after every debounced change to the facts,
// until ctx is cancelled.
func (c *checker) watch(ctx context.Context) error {
	if _, err := c.run(ctx, nil); err != nil {
		return err
	}

	var mu sync.Mutex
	cfg := watcher.DefaultConfig()
	cfg.DebounceMs = c.cfg.Watch.DebounceMs

	w, err := watcher.New(cfg, c.logger, func(events []watcher.Event) {
		mu.Lock()
		defer mu.Unlock()

		c.logger.Info("Facts changed, re-checking", "events", len(events))
		if _, err := c.run(ctx, nil); err != nil {
			if ctx.Err() != nil {
				return
			}
			fmt.Fprint(os.Stderr, formatError(err))
		}
	})
	if err != nil {
		return err
	}
	if err := w.Watch(factsPath(c.repoRoot, c.cfg)); err != nil {
		w.Close()
		return err
	}
	return w.Run(ctx)
}

func buildCheckResponse(res *engine.Result, elapsed time.Duration) *CheckResponseCLI {
	fixable := 0
	for _, d := range res.Diagnostics {
		if d.HasProposal() {
			fixable++
		}
	}
	return &CheckResponseCLI{
		Tool:        version.ToolName,
		Version:     version.Version,
		Diagnostics: output.Items(res.Diagnostics),
		Fixes:       output.Items(res.Fixes),
		Summary: CheckSummaryCLI{
			Symbols:         res.Symbols,
			Diagnostics:     len(res.Diagnostics),
			Fixable:         fixable,
			Excluded:        res.Excluded,
			Unclassifiable:  res.Unclassifiable,
			SuppressedFixes: res.Suppressed,
			Baselined:       res.Baselined,
			ByRule:          res.CountByRule(),
			Duration:        elapsed,
		},
	}
}

// stateDir is the .namecheck directory of the repository.
func stateDir(repoRoot string) string {
	return filepath.Join(repoRoot, config.Dir)
}

func openBaselineDB(repoRoot string, logger *slog.Logger) (*storage.DB, error) {
	db, err := storage.Open(stateDir(repoRoot), logger)
	if err != nil {
		return nil, lerrors.New(lerrors.BaselineUnavailable, "Failed to open baseline database", err)
	}
	return db, nil
}
