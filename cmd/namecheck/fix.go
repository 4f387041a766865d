package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"namecheck/internal/config"
	lerrors "namecheck/internal/errors"
	"namecheck/internal/facts"
	"namecheck/internal/fix"
	"namecheck/internal/output"
	"namecheck/internal/symbol"
)

var (
	fixFormat string
	fixFacts  string
	fixRule   string
	fixWrite  string
)

var fixCmd = &cobra.Command{
	Use:   "fix",
	Short: "List collision-safe renames, optionally applying them to a facts copy",
	Long: `List the renames proposed by the naming rules. Proposals that would collide
with another name in the same scope are never listed.

With --write, the renames are applied to a copy of the symbol facts which is
written as JSON or YAML (chosen by extension). Source files are never edited.

Examples:
  namecheck fix
  namecheck fix --rule NC1031
  namecheck fix --write build/renamed.json`,
	Run: runFix,
}

func init() {
	fixCmd.Flags().StringVar(&fixFormat, "format", "human", "Output format (human, json)")
	fixCmd.Flags().StringVar(&fixFacts, "facts", "", "Symbol facts; default from config")
	fixCmd.Flags().StringVar(&fixRule, "rule", "", "Only list renames proposed by this rule")
	fixCmd.Flags().StringVar(&fixWrite, "write", "", "Write renamed facts to this .json or .yaml file")
	rootCmd.AddCommand(fixCmd)
}

func runFix(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	if cmd.Flags().Changed("facts") {
		cfg.Facts.Path = fixFacts
	}
	logger := newLogger(cfg)
	eng := mustGetEngine(repoRoot, cfg, logger)

	if fixRule != "" {
		if _, ok := eng.Registry().Rule(fixRule); !ok {
			exitWithError(lerrors.NewLintError(lerrors.UnknownRule,
				fmt.Sprintf("Unknown rule %q", fixRule), nil,
				[]lerrors.FixAction{{
					Type:        lerrors.RunCommand,
					Command:     "namecheck rules",
					Safe:        true,
					Description: "List the available rules",
				}}))
		}
	}

	ctx, cancel := newContext()
	defer cancel()

	symbols, err := loadSymbols(ctx, repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	res, err := eng.Analyze(ctx, symbols)
	if err != nil {
		exitWithError(err)
	}

	resp := &FixResponseCLI{Fixes: output.Items(filterFixes(res.Fixes, fixRule))}

	if fixWrite != "" {
		path := config.Resolve(repoRoot, fixWrite)
		renamed, applied := applyFixes(symbols, resp.Fixes, logger)
		if err := facts.WriteFile(path, renamed); err != nil {
			exitWithError(lerrors.New(lerrors.InternalError, "Failed to write renamed facts", err))
		}
		resp.Written = path
		resp.Applied = applied
		logger.Info("Renamed facts written", "path", path, "applied", applied, "proposed", len(resp.Fixes))
	}

	out, err := FormatResponse(resp, OutputFormat(fixFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(fixFormat) == FormatJSON {
		fmt.Println()
	}
}

func filterFixes(fixes []fix.Replacement, ruleID string) []fix.Replacement {
	if ruleID == "" {
		return fixes
	}
	out := make([]fix.Replacement, 0, len(fixes))
	for _, f := range fixes {
		if f.RuleID == ruleID {
			out = append(out, f)
		}
	}
	return out
}

// applyFixes returns symbols with the renames applied and the number applied.
// A rename that no longer applies, for example because an earlier rename took
// the symbol or its new name, is skipped.
func applyFixes(symbols []*symbol.Symbol, fixes []fix.Replacement, logger *slog.Logger) ([]*symbol.Symbol, int) {
	out := make([]*symbol.Symbol, len(symbols))
	index := make(map[string]int, len(symbols))
	for i, s := range symbols {
		out[i] = s
		if s != nil {
			index[declarationKey(s.ID, s.Location, s.Name)] = i
		}
	}

	applied := 0
	for _, f := range fixes {
		i, ok := index[declarationKey(f.SymbolID, f.Location, f.OldName)]
		if !ok {
			logger.Warn("Rename target not found", "symbol", f.OldName, "rule", f.RuleID)
			continue
		}
		renamed, err := fix.Apply(f, out[i])
		if err != nil {
			logger.Warn("Skipping rename", "rule", f.RuleID, "error", err)
			continue
		}
		out[i] = renamed
		renameSibling(out, i, f.OldName, f.NewName)
		if renamed.ID == "" {
			delete(index, declarationKey("", f.Location, f.OldName))
			index[declarationKey("", renamed.Location, renamed.Name)] = i
		}
		applied++
	}
	return out, applied
}

// renameSibling updates the sibling lists of the symbols sharing a scope with
// symbols[i] so later renames see the new name.
func renameSibling(symbols []*symbol.Symbol, i int, oldName, newName string) {
	for j, s := range symbols {
		if j == i || s == nil || !s.HasSibling(oldName) {
			continue
		}
		c := s.WithName(s.Name)
		for k, sib := range c.Siblings {
			if sib == oldName {
				c.Siblings[k] = newName
				break
			}
		}
		symbols[j] = c
	}
}

func declarationKey(id string, loc symbol.Location, name string) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("%s:%d:%d:%s", loc.Path, loc.Line, loc.Column, name)
}
