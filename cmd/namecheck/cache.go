package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	lerrors "namecheck/internal/errors"
	"namecheck/internal/storage"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the facts cache",
	Long: `Decoded SCIP indexes and C# source trees are cached in
.namecheck/namecheck.db and reused while the source is unchanged. Set
facts.cache = false to turn the cache off.`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached fact sources",
	Run:   runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached fact source",
	Run:   runCacheClear,
}

var cacheFormat string

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	cacheListCmd.Flags().StringVar(&cacheFormat, "format", "human", "Output format (human, json)")
}

func runCacheList(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	db, err := storage.Open(stateDir(repoRoot), logger)
	if err != nil {
		exitWithError(lerrors.New(lerrors.InternalError, "Failed to open state database", err))
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	entries, err := storage.NewFactsCache(db).Entries(ctx)
	if err != nil {
		exitWithError(lerrors.New(lerrors.InternalError, "Failed to read facts cache", err))
	}

	resp := &CacheResponseCLI{Entries: make([]CacheEntryCLI, 0, len(entries))}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, CacheEntryCLI{
			Source:    relPath(repoRoot, e.Source),
			Format:    e.Format,
			Symbols:   e.Symbols,
			Bytes:     e.Bytes,
			CreatedAt: e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	out, err := FormatResponse(resp, OutputFormat(cacheFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(cacheFormat) == FormatJSON {
		fmt.Println()
	}
}

func runCacheClear(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	db, err := storage.Open(stateDir(repoRoot), logger)
	if err != nil {
		exitWithError(lerrors.New(lerrors.InternalError, "Failed to open state database", err))
	}
	defer db.Close()

	ctx, cancel := newContext()
	defer cancel()

	removed, err := storage.NewFactsCache(db).Clear(ctx)
	if err != nil {
		exitWithError(lerrors.New(lerrors.InternalError, "Failed to clear facts cache", err))
	}
	fmt.Printf("Removed %d cached fact %s\n", removed, plural(removed, "source", "sources"))
}
