package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"namecheck/internal/rules"
)

var (
	rulesFormat  string
	rulesEnabled bool
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the naming rules",
	Long: `List every naming rule with its family, the symbol kinds it applies to,
whether it is enabled by the current configuration and whether it proposes
renames.

Examples:
  namecheck rules
  namecheck rules --enabled
  namecheck rules --format json`,
	Run: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesFormat, "format", "human", "Output format (human, json)")
	rulesCmd.Flags().BoolVar(&rulesEnabled, "enabled", false, "Only list enabled rules")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) {
	repoRoot := mustGetRepoRoot()
	cfg := mustLoadConfig(repoRoot)
	logger := newLogger(cfg)

	reg, err := newRegistry(repoRoot, cfg, logger)
	if err != nil {
		exitWithError(err)
	}

	out, err := FormatResponse(buildRulesResponse(reg, rulesEnabled), OutputFormat(rulesFormat))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(exitFailure)
	}
	fmt.Print(out)
	if OutputFormat(rulesFormat) == FormatJSON {
		fmt.Println()
	}
}

func buildRulesResponse(reg *rules.Registry, enabledOnly bool) *RulesResponseCLI {
	all := reg.All()
	resp := &RulesResponseCLI{Rules: make([]RuleCLI, 0, len(all))}
	for _, r := range all {
		enabled := reg.IsEnabled(r.ID)
		if enabledOnly && !enabled {
			continue
		}
		kinds := make([]string, 0, len(r.Kinds))
		for _, k := range r.Kinds {
			kinds = append(kinds, string(k))
		}
		resp.Rules = append(resp.Rules, RuleCLI{
			ID:             r.ID,
			Name:           r.Name,
			Family:         string(r.Family),
			Description:    r.Description,
			Kinds:          kinds,
			Enabled:        enabled,
			Fixable:        r.HasFix(),
			ContractExempt: r.IsContractExempt(),
		})
	}
	return resp
}
