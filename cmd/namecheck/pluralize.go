package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"namecheck/internal/words"
)

var (
	pluralizeFormat   string
	pluralizeSingular bool
)

var pluralizeCmd = &cobra.Command{
	Use:   "pluralize WORD...",
	Short: "Inflect words with the built-in tables and the project dictionary",
	Long: `Pluralize (or, with --singular, singularize) words the way the
pluralization rules do. Entries from .namecheck/WORDS.toml are applied.

Examples:
  namecheck pluralize Index Status Criterion
  namecheck pluralize --singular Matrices People`,
	Args: cobra.MinimumNArgs(1),
	Run:  runPluralize,
}

func init() {
	pluralizeCmd.Flags().StringVar(&pluralizeFormat, "format", "human", "Output format (human, json)")
	pluralizeCmd.Flags().BoolVar(&pluralizeSingular, "singular", false, "Singularize instead")
	rootCmd.AddCommand(pluralizeCmd)
}

func runPluralize(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	p, err := loadPluralizer(repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}

	out, err := FormatResponse(buildPluralizeResponse(p, args, pluralizeSingular), OutputFormat(pluralizeFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(pluralizeFormat) == FormatJSON {
		fmt.Println()
	}
}

func buildPluralizeResponse(p *words.Pluralizer, in []string, singular bool) *PluralizeResponseCLI {
	resp := &PluralizeResponseCLI{Mode: "plural", Words: make([]InflectedWordCLI, 0, len(in))}
	inflect := p.Pluralize
	if singular {
		resp.Mode = "singular"
		inflect = p.Singularize
	}
	for _, w := range in {
		resp.Words = append(resp.Words, InflectedWordCLI{Word: w, Result: inflect(w)})
	}
	return resp
}
