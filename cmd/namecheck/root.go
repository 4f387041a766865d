package main

import (
	"github.com/spf13/cobra"

	"namecheck/internal/version"
)

var (
	// verbosity counts -v flags; quietFlag silences logging entirely.
	verbosity int
	quietFlag bool

	repoFlag   string
	configFlag string
)

var rootCmd = &cobra.Command{
	Use:   "namecheck",
	Short: "namecheck - naming-convention linter for .NET symbols",
	Long: `namecheck checks declared symbol names against a catalog of naming rules
and proposes collision-safe renames.

Symbols come from a facts file (JSON or YAML), a SCIP index, or C# source
parsed with tree-sitter. namecheck never edits source text.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.SetVersionTemplate("namecheck version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().StringVar(&repoFlag, "repo", "", "Repository root (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Config file (default: .namecheck/config.{toml,yaml,json})")
}
