package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"namecheck/internal/config"
	"namecheck/internal/engine"
	lerrors "namecheck/internal/errors"
	"namecheck/internal/facts"
	"namecheck/internal/rules"
	"namecheck/internal/slogutil"
	"namecheck/internal/storage"
	"namecheck/internal/symbol"
	"namecheck/internal/words"
)

// Exit codes.
const (
	exitOK          = 0
	exitViolations  = 1
	exitConfigError = 2
	exitFailure     = 3
)

// getRepoRoot returns the repository root directory.
func getRepoRoot() (string, error) {
	if repoFlag != "" {
		return filepath.Abs(repoFlag)
	}
	return os.Getwd()
}

// mustGetRepoRoot returns the repository root or exits on error.
func mustGetRepoRoot() string {
	repoRoot, err := getRepoRoot()
	if err != nil {
		exitWithError(err)
	}
	return repoRoot
}

// loadConfig reads --config when given, otherwise .namecheck/config.*.
func loadConfig(repoRoot string) (*config.Config, error) {
	if configFlag != "" {
		return config.LoadConfigFromPath(config.Resolve(repoRoot, configFlag))
	}
	return config.LoadConfig(repoRoot)
}

func mustLoadConfig(repoRoot string) *config.Config {
	cfg, err := loadConfig(repoRoot)
	if err != nil {
		exitWithError(err)
	}
	return cfg
}

// newLogger writes to stderr so reports on stdout stay clean. -v and -q take
// precedence over logging.level.
func newLogger(cfg *config.Config) *slog.Logger {
	level := slogutil.LevelFromString(cfg.Logging.Level)
	if verbosity > 0 || quietFlag {
		level = slogutil.LevelFromVerbosity(verbosity, quietFlag)
	}
	logger := slogutil.NewWithFormat(os.Stderr, level, cfg.Logging.Format)
	if cfg.Logging.File == "" {
		return logger
	}

	repoRoot, err := getRepoRoot()
	if err != nil {
		return logger
	}
	f, err := os.OpenFile(config.Resolve(repoRoot, cfg.Logging.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger.Warn("Cannot open log file", "path", cfg.Logging.File, "error", err.Error())
		return logger
	}
	return slog.New(slogutil.NewTeeHandler(
		logger.Handler(),
		slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}),
	))
}

// loadPluralizer merges the project dictionary over the built-in tables. A
// missing dictionary file is not an error.
func loadPluralizer(repoRoot string, cfg *config.Config, logger *slog.Logger) (*words.Pluralizer, error) {
	path := config.Resolve(repoRoot, cfg.Dictionary)
	if path == "" {
		return words.Default(), nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Debug("No word dictionary", "path", path)
		return words.Default(), nil
	}

	dict, err := words.LoadDictionary(path)
	if err != nil {
		return nil, lerrors.New(lerrors.ConfigInvalid, "Invalid word dictionary", err).
			WithDetails(map[string]string{"path": path})
	}
	logger.Debug("Loaded word dictionary",
		"path", path,
		"plurals", len(dict.Plurals),
		"invariant", len(dict.Invariant),
	)
	return words.NewPluralizer(dict), nil
}

func newRegistry(repoRoot string, cfg *config.Config, logger *slog.Logger) (*rules.Registry, error) {
	plural, err := loadPluralizer(repoRoot, cfg, logger)
	if err != nil {
		return nil, err
	}
	return rules.NewRegistry(rules.Options{
		MaxLength:  cfg.MaxLength,
		Rules:      cfg.Rules,
		Pluralizer: plural,
	})
}

func newEngine(repoRoot string, cfg *config.Config, logger *slog.Logger) (*engine.Engine, error) {
	reg, err := newRegistry(repoRoot, cfg, logger)
	if err != nil {
		return nil, err
	}
	return engine.New(reg, engine.Options{
		Exclude: cfg.Exclude,
		Logger:  logger,
	})
}

func mustGetEngine(repoRoot string, cfg *config.Config, logger *slog.Logger) *engine.Engine {
	eng, err := newEngine(repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	return eng
}

// factsPath resolves the configured fact source against the repo root.
func factsPath(repoRoot string, cfg *config.Config) string {
	return config.Resolve(repoRoot, cfg.Facts.Path)
}

func loadSymbols(ctx context.Context, repoRoot string, cfg *config.Config, logger *slog.Logger) ([]*symbol.Symbol, error) {
	format, err := facts.ParseFormat(cfg.Facts.Format)
	if err != nil {
		return nil, lerrors.New(lerrors.ConfigInvalid, "Invalid facts format", err)
	}
	path := factsPath(repoRoot, cfg)
	if !cfg.Facts.Cache {
		return facts.Load(ctx, path, format, logger)
	}
	return loadCachedSymbols(ctx, repoRoot, path, format, logger)
}

// loadCachedSymbols serves SCIP and C# facts from the facts cache while the
// source digest is unchanged. A cache that cannot be used only costs the
// decode.
func loadCachedSymbols(ctx context.Context, repoRoot, path string, format facts.Format, logger *slog.Logger) ([]*symbol.Symbol, error) {
	if format == facts.FormatAuto {
		if detected, err := facts.DetectFormat(path); err == nil {
			format = detected
		}
	}
	if !facts.IsCacheable(format) {
		return facts.Load(ctx, path, format, logger)
	}

	digest, err := facts.Digest(path)
	if err != nil {
		// Load reports the missing or unreadable source.
		return facts.Load(ctx, path, format, logger)
	}

	db, err := storage.Open(stateDir(repoRoot), logger)
	if err != nil {
		logger.Warn("Facts cache unavailable", "error", err.Error())
		return facts.Load(ctx, path, format, logger)
	}
	defer db.Close()

	cache := storage.NewFactsCache(db)
	symbols, ok, err := cache.Get(ctx, path, digest)
	switch {
	case err != nil:
		logger.Warn("Ignoring facts cache", "error", err.Error())
	case ok:
		return symbols, nil
	}

	symbols, err = facts.Load(ctx, path, format, logger)
	if err != nil {
		return nil, err
	}
	if err := cache.Put(ctx, path, digest, string(format), symbols); err != nil {
		logger.Warn("Failed to cache facts", "error", err.Error())
	}
	return symbols, nil
}

// newContext returns a context cancelled on SIGINT or SIGTERM.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if lerrors.IsConfigError(err) {
		return exitConfigError
	}
	return exitFailure
}

func exitWithError(err error) {
	fmt.Fprint(os.Stderr, formatError(err))
	os.Exit(exitCode(err))
}

// formatError renders an error with its suggested fixes.
func formatError(err error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n", err)

	var le *lerrors.LintError
	if errors.As(err, &le) && len(le.SuggestedFixes) > 0 {
		b.WriteString("Suggested fixes:\n")
		for _, fix := range le.SuggestedFixes {
			fmt.Fprintf(&b, "  - %s\n", fix.Description)
			if fix.Command != "" {
				fmt.Fprintf(&b, "    $ %s\n", fix.Command)
			}
		}
	}
	return b.String()
}
